package domain

import (
	"math"
	"time"
)

// Position is an open holding in a single token. At most one position exists
// per symbol; the exit target is fixed at entry and never re-derived. The ID
// doubles as the journal row key.
type Position struct {
	ID               string
	Symbol           string
	TokenAddress     string
	PairAddress      string
	EntryPrice       float64
	Size             float64 // base-currency units committed at entry
	TargetMultiplier float64
	EntryTx          string
	OpenedAt         time.Time
}

// TargetPrice returns the price at which the position exits.
func (p Position) TargetPrice() float64 {
	return p.EntryPrice * p.TargetMultiplier
}

// HitTarget reports whether the given price satisfies the exit condition.
// The comparison is non-strict: exactly the target price sells.
func (p Position) HitTarget(price float64) bool {
	return price >= p.TargetPrice()
}

// ProfitPercent returns the profit at the given price as a percentage of the
// entry price, rounded half away from zero to two decimals.
func (p Position) ProfitPercent(price float64) float64 {
	pct := (price - p.EntryPrice) / p.EntryPrice * 100
	return math.Round(pct*100) / 100
}

// Age returns how long the position has been open as of now.
func (p Position) Age(now time.Time) time.Duration {
	return now.Sub(p.OpenedAt)
}
