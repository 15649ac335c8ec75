package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// Verdict classifies one admission check.
type Verdict int

const (
	// VerdictAdmit means the snapshot satisfies the entry bands.
	VerdictAdmit Verdict = iota
	// VerdictReject means live data was available but outside the bands.
	VerdictReject
	// VerdictNoData means no usable data came back. Logged differently from
	// a rejection, handled identically in control flow: the buy is blocked.
	VerdictNoData
)

// String returns the verdict name for logs and reports.
func (v Verdict) String() string {
	switch v {
	case VerdictAdmit:
		return "admit"
	case VerdictReject:
		return "reject"
	default:
		return "no-data"
	}
}

// Gate wraps the market data collaborator with the buy admission bands. Every
// check fetches a fresh snapshot; verdicts are never cached across cycles.
type Gate struct {
	market       domain.MarketData
	priceCeiling float64
	capTarget    float64
	capBand      float64
	timeout      time.Duration
	logger       *slog.Logger
}

// NewGate creates a Gate using the engine config's admission bands.
func NewGate(market domain.MarketData, cfg Config, logger *slog.Logger) *Gate {
	return &Gate{
		market:       market,
		priceCeiling: cfg.PriceCeiling,
		capTarget:    cfg.CapTarget,
		capBand:      cfg.CapBand,
		timeout:      cfg.CallTimeout,
		logger:       logger.With(slog.String("component", "gate")),
	}
}

// Admit fetches a fresh snapshot for symbol and applies the buy admission
// predicate: price strictly positive, price strictly under the ceiling, and
// market cap within the configured band around the target. The reason string
// explains the verdict for reporting.
func (g *Gate) Admit(ctx context.Context, symbol string) (domain.MarketSnapshot, Verdict, string) {
	snap, err := g.Snapshot(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrNoMarketData) {
			g.logger.InfoContext(ctx, "gate: no market data for symbol",
				slog.String("symbol", symbol),
			)
			return domain.MarketSnapshot{}, VerdictNoData, "no market data"
		}
		g.logger.WarnContext(ctx, "gate: market lookup failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		return domain.MarketSnapshot{}, VerdictNoData, "market lookup failed"
	}

	if snap.PriceUSD <= 0 {
		return snap, VerdictReject, fmt.Sprintf("price %.6f not positive", snap.PriceUSD)
	}
	if snap.PriceUSD >= g.priceCeiling {
		return snap, VerdictReject, fmt.Sprintf("price %.6f at or above ceiling %.6f", snap.PriceUSD, g.priceCeiling)
	}

	lo := g.capTarget * (1 - g.capBand)
	hi := g.capTarget * (1 + g.capBand)
	if snap.MarketCapUSD < lo || snap.MarketCapUSD > hi {
		return snap, VerdictReject, fmt.Sprintf("market cap %.0f outside band [%.0f, %.0f]", snap.MarketCapUSD, lo, hi)
	}

	return snap, VerdictAdmit, fmt.Sprintf("price %.6f under %.6f, cap %.0f within [%.0f, %.0f]",
		snap.PriceUSD, g.priceCeiling, snap.MarketCapUSD, lo, hi)
}

// Snapshot fetches a fresh snapshot without admission checks, for the
// liquidation sweep. The per-call timeout applies; a timeout surfaces as an
// error the caller treats as missing data.
func (g *Gate) Snapshot(ctx context.Context, symbol string) (domain.MarketSnapshot, error) {
	cctx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.market.Lookup(cctx, symbol)
}
