package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// TradeSource defines the journal methods that the trade handler requires.
type TradeSource interface {
	ListRecent(ctx context.Context, limit int) ([]domain.TradeRecord, error)
}

// TradeHandler serves journaled trade history. It is only registered when the
// journal backend is configured.
type TradeHandler struct {
	journal TradeSource
	logger  *slog.Logger
}

// NewTradeHandler creates a TradeHandler with the given journal and logger.
func NewTradeHandler(journal TradeSource, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		journal: journal,
		logger:  logHandler(logger, "trades"),
	}
}

// tradeResponse is the wire form of one journaled trade.
type tradeResponse struct {
	ID               string   `json:"id"`
	Symbol           string   `json:"symbol"`
	TokenAddress     string   `json:"token_address,omitempty"`
	EntryPrice       float64  `json:"entry_price"`
	ExitPrice        *float64 `json:"exit_price"`
	Size             float64  `json:"size"`
	TargetMultiplier float64  `json:"target_multiplier"`
	ProfitPct        *float64 `json:"profit_pct"`
	Status           string   `json:"status"`
	CloseReason      string   `json:"close_reason,omitempty"`
	EntryTx          string   `json:"entry_tx,omitempty"`
	ExitTx           string   `json:"exit_tx,omitempty"`
	OpenedAt         string   `json:"opened_at"`
	ClosedAt         *string  `json:"closed_at"`
}

// listTradesResponse wraps the list trades response.
type listTradesResponse struct {
	Trades []tradeResponse `json:"trades"`
}

// ListTrades returns the most recent journaled trades, newest first.
// GET /api/trades?limit=50
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 500)

	records, err := h.journal.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list trades failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}

	out := make([]tradeResponse, 0, len(records))
	for _, rec := range records {
		var closedAt *string
		if rec.ClosedAt != nil {
			s := rec.ClosedAt.UTC().Format(time.RFC3339)
			closedAt = &s
		}
		out = append(out, tradeResponse{
			ID:               rec.ID,
			Symbol:           rec.Symbol,
			TokenAddress:     rec.TokenAddress,
			EntryPrice:       rec.EntryPrice,
			ExitPrice:        rec.ExitPrice,
			Size:             rec.Size,
			TargetMultiplier: rec.TargetMultiplier,
			ProfitPct:        rec.ProfitPct,
			Status:           string(rec.Status),
			CloseReason:      rec.CloseReason,
			EntryTx:          rec.EntryTx,
			ExitTx:           rec.ExitTx,
			OpenedAt:         rec.OpenedAt.UTC().Format(time.RFC3339),
			ClosedAt:         closedAt,
		})
	}

	writeJSON(w, http.StatusOK, listTradesResponse{Trades: out})
}
