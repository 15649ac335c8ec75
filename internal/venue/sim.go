// Package venue holds the execution backends behind domain.ExecutionVenue:
// a simulator that fabricates fills and an EVM router that signs and
// broadcasts real swaps.
package venue

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// Simulator acknowledges every order without touching a chain. It is the
// default venue so a fresh install trades on paper until someone deliberately
// configures the router.
type Simulator struct {
	logger *slog.Logger
}

var _ domain.ExecutionVenue = (*Simulator)(nil)

// NewSimulator creates a Simulator.
func NewSimulator(logger *slog.Logger) *Simulator {
	return &Simulator{
		logger: logger.With(slog.String("component", "venue_sim")),
	}
}

// Name implements domain.ExecutionVenue.
func (s *Simulator) Name() string { return "sim" }

// SubmitBuy fabricates a fill at the snapshot price.
func (s *Simulator) SubmitBuy(ctx context.Context, snap domain.MarketSnapshot, sizeBase float64) (domain.TradeReceipt, error) {
	receipt := s.receipt()
	s.logger.Info("simulated buy",
		slog.String("symbol", snap.Symbol),
		slog.Float64("price_usd", snap.PriceUSD),
		slog.Float64("size_base", sizeBase),
		slog.String("tx", receipt.TxHash),
	)
	return receipt, nil
}

// SubmitSell fabricates a full exit at the snapshot price.
func (s *Simulator) SubmitSell(ctx context.Context, pos domain.Position, snap domain.MarketSnapshot) (domain.TradeReceipt, error) {
	receipt := s.receipt()
	s.logger.Info("simulated sell",
		slog.String("symbol", pos.Symbol),
		slog.Float64("entry_usd", pos.EntryPrice),
		slog.Float64("exit_usd", snap.PriceUSD),
		slog.String("tx", receipt.TxHash),
	)
	return receipt, nil
}

func (s *Simulator) receipt() domain.TradeReceipt {
	return domain.TradeReceipt{
		TxHash:      "sim-" + uuid.NewString(),
		Venue:       "sim",
		Simulated:   true,
		SubmittedAt: time.Now().UTC(),
	}
}
