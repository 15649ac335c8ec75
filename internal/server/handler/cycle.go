package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// CycleTrigger requests an immediate engine cycle. Requests made while a
// trigger is already pending are coalesced by the engine.
type CycleTrigger interface {
	Trigger()
}

// CycleHandler serves the manual cycle trigger endpoint.
type CycleHandler struct {
	engine CycleTrigger
	logger *slog.Logger
}

// NewCycleHandler creates a CycleHandler with the given engine and logger.
func NewCycleHandler(engine CycleTrigger, logger *slog.Logger) *CycleHandler {
	return &CycleHandler{
		engine: engine,
		logger: logHandler(logger, "cycle"),
	}
}

// TriggerCycle enqueues one engine cycle and returns immediately. The cycle
// runs asynchronously; its outcome is observable on the status endpoint and
// the event stream.
// POST /api/cycle/trigger
func (h *CycleHandler) TriggerCycle(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "handler: cycle trigger requested")
	h.engine.Trigger()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"message":      "cycle trigger enqueued",
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}
