package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"zameencrawler/internal/api"
	"zameencrawler/internal/config"
	"zameencrawler/internal/crawler"
	"zameencrawler/internal/fetch"
	"zameencrawler/internal/monitoring"
	"zameencrawler/internal/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	pgStore, err := storage.NewPostgresStore(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pgStore.Close()
	redisStore := storage.NewRedisStore(cfg.RedisAddr)

	metrics := monitoring.NewMetrics()

	fetchTimeout := time.Duration(cfg.FetchTimeout) * time.Second
	pool := fetch.NewSessionPool(cfg.Proxies(), fetchTimeout)
	var renderer *fetch.Renderer
	if cfg.BrowserFallback {
		renderer = fetch.NewRenderer(fetchTimeout)
	}
	engine := fetch.NewEngine(pool, cfg.RequestsPerMinute, renderer, metrics, logger)

	coreCrawler := crawler.NewCrawler(cfg, engine, pgStore, redisStore, metrics, logger)

	server := api.NewServer(cfg, coreCrawler, pgStore, redisStore, metrics, logger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coreCrawler.Stop()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
