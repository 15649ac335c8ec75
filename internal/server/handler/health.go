package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// checkTimeout bounds each backend ping so one stuck dependency cannot hold
// the health endpoint open.
const checkTimeout = 2 * time.Second

// Pinger is implemented by backend clients that can verify connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health-check endpoint. Optional backend checks are
// attached with WithCheck; a failing backend degrades the report but does not
// change the HTTP status, because the engine trades without the optional
// backends.
type HealthHandler struct {
	checks map[string]Pinger
	order  []string
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler with the provided logger.
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checks: make(map[string]Pinger),
		logger: logHandler(logger, "health"),
	}
}

// WithCheck registers a named backend to ping on every health request.
func (h *HealthHandler) WithCheck(name string, p Pinger) *HealthHandler {
	if _, ok := h.checks[name]; !ok {
		h.order = append(h.order, name)
	}
	h.checks[name] = p
	return h
}

// HealthCheck responds with the server liveness and the state of each
// registered backend.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := make(map[string]string, len(h.checks))

	for _, name := range h.order {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := h.checks[name].Ping(ctx)
		cancel()

		if err != nil {
			status = "degraded"
			checks[name] = err.Error()
			h.logger.WarnContext(r.Context(), "handler: backend check failed",
				slog.String("backend", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	writeJSON(w, http.StatusOK, body)
}
