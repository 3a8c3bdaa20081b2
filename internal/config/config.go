package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the service.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	PostgresURL string `mapstructure:"POSTGRES_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`

	CrawlWorkers      int `mapstructure:"CRAWL_WORKERS"`
	FetchTimeout      int `mapstructure:"FETCH_TIMEOUT"` // seconds
	MaxRetries        int `mapstructure:"MAX_RETRIES"`
	RequestsPerMinute int `mapstructure:"REQUESTS_PER_MINUTE"`

	ResultsWanted int  `mapstructure:"RESULTS_WANTED"`
	MaxPages      int  `mapstructure:"MAX_PAGES"`
	ScrapeDetails bool `mapstructure:"SCRAPE_DETAILS"`

	ProxyURLs       string `mapstructure:"PROXY_URLS"` // comma-separated
	BrowserFallback bool   `mapstructure:"BROWSER_FALLBACK"`
	SeenTTLDays     int    `mapstructure:"SEEN_TTL_DAYS"`
}

// Load reads configuration from a .env file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// The .env file is optional; production configures purely through
	// the environment.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CRAWL_WORKERS", 5)
	viper.SetDefault("FETCH_TIMEOUT", 30)
	viper.SetDefault("MAX_RETRIES", 5)
	viper.SetDefault("REQUESTS_PER_MINUTE", 120)
	viper.SetDefault("RESULTS_WANTED", 100)
	viper.SetDefault("MAX_PAGES", 20)
	viper.SetDefault("SCRAPE_DETAILS", true)
	viper.SetDefault("BROWSER_FALLBACK", false)
	viper.SetDefault("SEEN_TTL_DAYS", 2)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Proxies splits the configured proxy list.
func (c *Config) Proxies() []string {
	if strings.TrimSpace(c.ProxyURLs) == "" {
		return nil
	}
	parts := strings.Split(c.ProxyURLs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
