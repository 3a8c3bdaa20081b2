// Package fetch is the HTTP engine behind the router: sessions with
// rotated identities, a shared request-rate ceiling, block detection on
// every body, and an optional rendered fetch for stubborn detail pages.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"zameencrawler/internal/domain"
	"zameencrawler/internal/monitoring"
)

const maxBodyBytes = 10 << 20

// Response is what a task's handler receives.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Engine fetches tasks. Safe for concurrent use by the worker pool.
type Engine struct {
	pool     *SessionPool
	limiter  *rate.Limiter
	renderer *Renderer // nil unless browser fallback is enabled
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

func NewEngine(pool *SessionPool, requestsPerMinute int, renderer *Renderer, m *monitoring.Metrics, l *zap.Logger) *Engine {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &Engine{
		pool:     pool,
		limiter:  rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute/6+1),
		renderer: renderer,
		metrics:  m,
		logger:   l,
	}
}

// Do fetches one task. On a retryable status or a detected block the
// current session is retired before the error is returned, so the
// retry runs with a fresh identity.
func (e *Engine) Do(ctx context.Context, task *domain.Task) (*Response, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// A detail task that already failed once may go through the
	// headless renderer, which defeats markup-level blocking.
	if e.renderer != nil && task.Label == domain.LabelDetail && task.Retry > 0 {
		return e.rendered(ctx, task)
	}

	session := e.pool.Get()

	method := task.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(task.Body) > 0 {
		body = bytes.NewReader(task.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, task.URL, body)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", session.userAgent)
	req.Header.Set("Accept-Language", "en")
	for k, v := range task.Headers {
		req.Header.Set(k, v)
	}

	resp, err := session.client.Do(req)
	if err != nil {
		session.Retire()
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	e.metrics.IncPagesFetched(string(task.Label))

	if retryableStatus(resp.StatusCode) {
		session.Retire()
		e.metrics.IncErrors("bad_status")
		return nil, &BadStatusError{Code: resp.StatusCode, URL: task.URL}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		session.Retire()
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	if IsBlocked(data) {
		session.Retire()
		e.metrics.IncBlocksDetected()
		e.logger.Warn("block heuristic matched, session retired",
			zap.String("url", task.URL), zap.String("label", string(task.Label)))
		return nil, ErrBlocked
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (e *Engine) rendered(ctx context.Context, task *domain.Task) (*Response, error) {
	html, err := e.renderer.Render(task.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch: render: %w", err)
	}
	body := []byte(html)
	e.metrics.IncPagesFetched(string(task.Label))
	if IsBlocked(body) {
		e.metrics.IncBlocksDetected()
		return nil, ErrBlocked
	}
	return &Response{StatusCode: http.StatusOK, Body: body, Header: http.Header{}}, nil
}

// Deadline guards a single fetch so a stalled connection cannot pin a
// worker forever.
func Deadline(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(parent, timeout)
}
