package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
	"github.com/noor961/Meme-coin--7/internal/server/handler"
)

type fakeEngine struct {
	triggers int
}

func (f *fakeEngine) Status() domain.EngineStatus {
	return domain.EngineStatus{
		Budget:        domain.BudgetSnapshot{Used: 1, Limit: 10},
		OpenPositions: 0,
	}
}
func (f *fakeEngine) Positions() []domain.Position { return nil }
func (f *fakeEngine) Trigger()                     { f.triggers++ }

type fakeLimiter struct {
	allow bool
	err   error
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return f.allow, f.err
}
func (f *fakeLimiter) Wait(ctx context.Context, key string) error { return nil }

func newTestServer(cfg Config, limiter domain.RateLimiter) (*Server, *fakeEngine) {
	logger := slog.New(slog.DiscardHandler)
	engine := &fakeEngine{}
	handlers := Handlers{
		Health:    handler.NewHealthHandler(logger),
		Status:    handler.NewStatusHandler(engine, "trade", "sim", time.Now()),
		Positions: handler.NewPositionHandler(engine),
		Cycle:     handler.NewCycleHandler(engine, logger),
	}
	return NewServer(cfg, handlers, nil, limiter, logger), engine
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	srv, engine := newTestServer(Config{Port: 8080}, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/status", http.StatusOK},
		{http.MethodGet, "/status", http.StatusOK},
		{http.MethodGet, "/api/positions", http.StatusOK},
		{http.MethodPost, "/api/cycle/trigger", http.StatusAccepted},
		{http.MethodGet, "/api/trades", http.StatusNotFound},   // no journal wired
		{http.MethodGet, "/api/archives", http.StatusNotFound}, // no blob wired
		{http.MethodGet, "/api/nope", http.StatusNotFound},
		{http.MethodPost, "/api/health", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(srv, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if engine.triggers != 1 {
		t.Errorf("triggers = %d, want 1", engine.triggers)
	}
}

func TestStatusTextBody(t *testing.T) {
	srv, _ := newTestServer(Config{Port: 8080}, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/status", nil))
	if got := rec.Body.String(); got != "operations 1/10, positions 0\n" {
		t.Errorf("body = %q", got)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(Config{Port: 8080, APIKey: "sekret"}, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without key = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-API-Key", "sekret")
	if rec := serve(srv, req); rec.Code != http.StatusOK {
		t.Errorf("status with X-API-Key = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	if rec := serve(srv, req); rec.Code != http.StatusOK {
		t.Errorf("status with bearer token = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-API-Key", "wrong")
	if rec := serve(srv, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("status with wrong key = %d, want 401", rec.Code)
	}
}

func TestAuthExemptsProbes(t *testing.T) {
	srv, _ := newTestServer(Config{Port: 8080, APIKey: "sekret"}, nil)

	for _, path := range []string{"/api/health", "/status"} {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s without key = %d, want 200 for probes", path, rec.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(Config{Port: 8080, CORSOrigins: []string{"https://dash.example.com"}}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/status", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := serve(srv, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want Origin", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/status", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(srv, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin for unlisted origin = %q, want empty", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary for unlisted origin = %q, want Origin", got)
	}
}

func TestRateLimitDenied(t *testing.T) {
	srv, _ := newTestServer(Config{Port: 8080, RateLimit: 5}, &fakeLimiter{allow: false})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	if !strings.Contains(rec.Body.String(), "rate limit exceeded") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	srv, _ := newTestServer(Config{Port: 8080, RateLimit: 5}, &fakeLimiter{err: context.DeadlineExceeded})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when the limiter errors", rec.Code)
	}
}
