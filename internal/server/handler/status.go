package handler

import (
	"net/http"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// StatusSource provides the engine state snapshot the status endpoints render.
type StatusSource interface {
	Status() domain.EngineStatus
}

// StatusHandler serves the engine status for dashboards and operators.
type StatusHandler struct {
	engine    StatusSource
	mode      string
	venue     string
	startedAt time.Time
}

// NewStatusHandler creates a StatusHandler reporting for the given run mode
// and execution venue.
func NewStatusHandler(engine StatusSource, mode, venue string, startedAt time.Time) *StatusHandler {
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	return &StatusHandler{
		engine:    engine,
		mode:      mode,
		venue:     venue,
		startedAt: startedAt,
	}
}

// GetStatus responds with the full engine status as JSON.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Status()

	uptime := int64(time.Since(h.startedAt).Seconds())
	if uptime < 0 {
		uptime = 0
	}

	var lastCycle string
	if !s.LastCycleAt.IsZero() {
		lastCycle = s.LastCycleAt.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":           h.mode,
		"venue":          h.venue,
		"dry_run":        s.DryRun,
		"uptime_seconds": uptime,
		"budget": map[string]any{
			"used":      s.Budget.Used,
			"limit":     s.Budget.Limit,
			"remaining": s.Budget.Remaining(),
			"resets_at": s.Budget.ResetsAt.UTC().Format(time.RFC3339),
		},
		"open_positions": s.OpenPositions,
		"cycles_run":     s.CyclesRun,
		"ticks_dropped":  s.TicksDropped,
		"last_cycle_at":  lastCycle,
	})
}

// GetStatusText responds with the compact one-line operator status.
// GET /status
func (h *StatusHandler) GetStatusText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.engine.Status().String() + "\n"))
}
