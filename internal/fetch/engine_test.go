package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"zameencrawler/internal/domain"
	"zameencrawler/internal/monitoring"
)

var testMetrics = monitoring.NewMetrics()

func testEngine() (*Engine, *SessionPool) {
	pool := NewSessionPool(nil, 5*time.Second)
	// High limit so the limiter never delays a test.
	return NewEngine(pool, 60000, nil, testMetrics, zap.NewNop()), pool
}

func testServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>5 Marla House</h1></body></html>"))
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/blocked", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<title>Pardon Our Interruption</title>"))
	})
	return httptest.NewServer(mux)
}

func TestDoReturnsBody(t *testing.T) {
	srv := testServer()
	defer srv.Close()
	engine, pool := testEngine()

	resp, err := engine.Do(context.Background(), &domain.Task{URL: srv.URL + "/ok", Label: domain.LabelDetail})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if len(resp.Body) == 0 {
		t.Error("empty body")
	}
	if pool.Get().Retired() {
		t.Error("session retired after a clean fetch")
	}
}

func TestDoRetiresSessionOnBadStatus(t *testing.T) {
	srv := testServer()
	defer srv.Close()
	engine, pool := testEngine()
	before := pool.Get()

	_, err := engine.Do(context.Background(), &domain.Task{URL: srv.URL + "/forbidden", Label: domain.LabelList})
	var bs *BadStatusError
	if !errors.As(err, &bs) || bs.Code != 403 {
		t.Fatalf("err = %v, want BadStatusError 403", err)
	}
	if !before.Retired() {
		t.Error("session not retired on 403")
	}
	if pool.Get() == before {
		t.Error("pool handed out the retired session")
	}
}

func TestDoRetiresSessionOnBlockedBody(t *testing.T) {
	srv := testServer()
	defer srv.Close()
	engine, pool := testEngine()
	before := pool.Get()

	_, err := engine.Do(context.Background(), &domain.Task{URL: srv.URL + "/blocked", Label: domain.LabelDetail})
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("err = %v, want ErrBlocked", err)
	}
	if !before.Retired() {
		t.Error("session not retired on blocked body")
	}
}

func TestDoSendsTaskHeadersAndBody(t *testing.T) {
	var gotHeader string
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Algolia-Application-Id")
		gotMethod = r.Method
		w.Write([]byte(`{"hits":[]}`))
	}))
	defer srv.Close()
	engine, _ := testEngine()

	_, err := engine.Do(context.Background(), &domain.Task{
		URL:     srv.URL,
		Label:   domain.LabelAlgoliaQuery,
		Method:  http.MethodPost,
		Headers: map[string]string{"X-Algolia-Application-Id": "APP123"},
		Body:    []byte(`{"params":"page=0"}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotHeader != "APP123" {
		t.Errorf("header = %q, want APP123", gotHeader)
	}
}

func TestSessionPoolRotatesProxies(t *testing.T) {
	pool := NewSessionPool([]string{"http://p1:8080", "http://p2:8080"}, time.Second)
	first := pool.Get()
	first.Retire()
	second := pool.Get()
	if first == second {
		t.Error("retired session reused")
	}
}
