package handler

import (
	"net/http"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// PositionSource defines the methods that the position handler requires.
type PositionSource interface {
	Positions() []domain.Position
}

// PositionHandler serves the open-position endpoint.
type PositionHandler struct {
	engine PositionSource
}

// NewPositionHandler creates a PositionHandler backed by the engine's
// in-memory tracker.
func NewPositionHandler(engine PositionSource) *PositionHandler {
	return &PositionHandler{engine: engine}
}

// positionResponse is the wire form of one open position.
type positionResponse struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	TokenAddress     string  `json:"token_address,omitempty"`
	EntryPrice       float64 `json:"entry_price"`
	TargetPrice      float64 `json:"target_price"`
	Size             float64 `json:"size"`
	TargetMultiplier float64 `json:"target_multiplier"`
	EntryTx          string  `json:"entry_tx,omitempty"`
	OpenedAt         string  `json:"opened_at"`
	AgeSeconds       int64   `json:"age_seconds"`
}

// listPositionsResponse wraps the list positions response.
type listPositionsResponse struct {
	Positions []positionResponse `json:"positions"`
}

// ListPositions returns the currently open positions in entry order.
// GET /api/positions
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	positions := h.engine.Positions()
	out := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, positionResponse{
			ID:               p.ID,
			Symbol:           p.Symbol,
			TokenAddress:     p.TokenAddress,
			EntryPrice:       p.EntryPrice,
			TargetPrice:      p.TargetPrice(),
			Size:             p.Size,
			TargetMultiplier: p.TargetMultiplier,
			EntryTx:          p.EntryTx,
			OpenedAt:         p.OpenedAt.UTC().Format(time.RFC3339),
			AgeSeconds:       int64(p.Age(now).Seconds()),
		})
	}

	writeJSON(w, http.StatusOK, listPositionsResponse{Positions: out})
}
