// Package server exposes the bot's HTTP and WebSocket API: health and status
// probes, open positions, trade history, a manual cycle trigger, and the
// decision event stream.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
	"github.com/noor961/Meme-coin--7/internal/server/handler"
	"github.com/noor961/Meme-coin--7/internal/server/middleware"
	"github.com/noor961/Meme-coin--7/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string        // if empty, authentication is disabled
	RateLimit   int           // requests per RateWindow per client IP; 0 disables
	RateWindow  time.Duration // defaults to one second when RateLimit is set
}

// Handlers aggregates all HTTP handlers that the server needs to register.
// Trades and Archives may be nil when their backends are not configured;
// those routes are then not registered.
type Handlers struct {
	Health    *handler.HealthHandler
	Status    *handler.StatusHandler
	Positions *handler.PositionHandler
	Trades    *handler.TradeHandler
	Archives  *handler.ArchiveHandler
	Cycle     *handler.CycleHandler
}

// Server is the headless HTTP + WebSocket API server for the trading bot.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (CORS, logging, rate limiting, auth) and attaches
// the WebSocket hub. The limiter is optional; when nil or when
// cfg.RateLimit is 0, requests are not rate limited.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Engine status, JSON and operator plain text.
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)
	mux.HandleFunc("GET /status", handlers.Status.GetStatusText)

	// Open positions.
	mux.HandleFunc("GET /api/positions", handlers.Positions.ListPositions)

	// Trade history, journal-backed.
	if handlers.Trades != nil {
		mux.HandleFunc("GET /api/trades", handlers.Trades.ListTrades)
	}

	// Exported archives, blob-backed.
	if handlers.Archives != nil {
		mux.HandleFunc("GET /api/archives", handlers.Archives.ListArchives)
		mux.HandleFunc("GET /api/archives/{key...}", handlers.Archives.DownloadArchive)
	}

	// Manual cycle trigger.
	mux.HandleFunc("POST /api/cycle/trigger", handlers.Cycle.TriggerCycle)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first. Probe endpoints stay
	// reachable without credentials.
	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey, "/api/health", "/status")(h)

	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Second
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}

	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
