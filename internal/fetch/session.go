package fetch

import (
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Session is one network identity: a cookie jar, a user agent and a
// proxy. Retiring it forces new connection parameters on the next
// attempt, so a retry never reuses a blocked identity.
type Session struct {
	client    *http.Client
	userAgent string
	retired   bool
	mu        sync.Mutex
}

func (s *Session) Retire() {
	s.mu.Lock()
	s.retired = true
	s.client.CloseIdleConnections()
	s.mu.Unlock()
}

func (s *Session) Retired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retired
}

// SessionPool hands out sessions and replaces retired ones, rotating
// through the configured proxies sequentially.
type SessionPool struct {
	mu         sync.Mutex
	proxies    []string
	proxyIndex int
	timeout    time.Duration
	current    *Session
	rand       *rand.Rand
}

func NewSessionPool(proxies []string, timeout time.Duration) *SessionPool {
	return &SessionPool{
		proxies: proxies,
		timeout: timeout,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Get returns the live session, minting a fresh one when none exists or
// the previous one was retired.
func (p *SessionPool) Get() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && !p.current.Retired() {
		return p.current
	}
	p.current = p.newSession()
	return p.current
}

func (p *SessionPool) newSession() *Session {
	jar, _ := cookiejar.New(nil)
	transport := &http.Transport{}
	if proxy := p.nextProxy(); proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &Session{
		client: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   p.timeout,
		},
		userAgent: userAgents[p.rand.Intn(len(userAgents))],
	}
}

func (p *SessionPool) nextProxy() string {
	if len(p.proxies) == 0 {
		return ""
	}
	proxy := p.proxies[p.proxyIndex]
	p.proxyIndex = (p.proxyIndex + 1) % len(p.proxies)
	return proxy
}
