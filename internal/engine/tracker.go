package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// Tracker owns the set of open positions. At most one position exists per
// symbol; iteration always follows insertion order so the liquidation sweep
// is deterministic.
type Tracker struct {
	mu        sync.RWMutex
	positions map[string]domain.Position
	order     []string
	maxOpen   int
}

// NewTracker creates an empty Tracker. maxOpen caps the number of concurrent
// positions; zero or negative means unlimited.
func NewTracker(maxOpen int) *Tracker {
	return &Tracker{
		positions: make(map[string]domain.Position),
		maxOpen:   maxOpen,
	}
}

// CanOpen reports whether a position for symbol could be opened right now.
// It returns domain.ErrPositionExists for duplicates and
// domain.ErrPositionLimit when the tracker is full.
func (t *Tracker) CanOpen(symbol string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.canOpenLocked(symbol)
}

// TryOpen creates and tracks a position from an admitted snapshot. The
// target multiplier is fixed at entry and never revisited. Duplicate symbols
// and a full tracker are rejections, not errors to retry.
func (t *Tracker) TryOpen(snap domain.MarketSnapshot, size, multiplier float64, entryTx string, now time.Time) (domain.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.canOpenLocked(snap.Symbol); err != nil {
		return domain.Position{}, err
	}
	if snap.PriceUSD <= 0 {
		return domain.Position{}, fmt.Errorf("tracker: entry price must be positive, got %v", snap.PriceUSD)
	}

	pos := domain.Position{
		ID:               uuid.NewString(),
		Symbol:           snap.Symbol,
		TokenAddress:     snap.TokenAddress,
		PairAddress:      snap.PairAddress,
		EntryPrice:       snap.PriceUSD,
		Size:             size,
		TargetMultiplier: multiplier,
		EntryTx:          entryTx,
		OpenedAt:         now,
	}
	t.positions[pos.Symbol] = pos
	t.order = append(t.order, pos.Symbol)
	return pos, nil
}

// Get returns the open position for symbol, if any.
func (t *Tracker) Get(symbol string) (domain.Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.positions[symbol]
	return pos, ok
}

// Close removes and returns the position for symbol. Callers close only
// after the venue confirmed the sell submission.
func (t *Tracker) Close(symbol string) (domain.Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, ok := t.positions[symbol]
	if !ok {
		return domain.Position{}, false
	}
	delete(t.positions, symbol)
	for i, s := range t.order {
		if s == symbol {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return pos, true
}

// Symbols returns the tracked symbols in insertion order.
func (t *Tracker) Symbols() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// List returns all open positions in insertion order.
func (t *Tracker) List() []domain.Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Position, 0, len(t.order))
	for _, s := range t.order {
		out = append(out, t.positions[s])
	}
	return out
}

// Len returns the number of open positions.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.positions)
}

func (t *Tracker) canOpenLocked(symbol string) error {
	if _, ok := t.positions[symbol]; ok {
		return domain.ErrPositionExists
	}
	if t.maxOpen > 0 && len(t.positions) >= t.maxOpen {
		return domain.ErrPositionLimit
	}
	return nil
}

// ExitAction is the outcome of an exit evaluation.
type ExitAction int

const (
	ActionHold ExitAction = iota
	ActionSell
	ActionExpire
)

// String returns the action name for logs and reports.
func (a ExitAction) String() string {
	switch a {
	case ActionSell:
		return "sell"
	case ActionExpire:
		return "expire"
	default:
		return "hold"
	}
}

// EvaluateExit decides what the liquidation sweep does with a position at the
// given fresh price. The target comparison is non-strict: exactly the target
// price sells. Expiry only applies when maxHold is positive and never
// outranks a hit target. Callers must not invoke this without a fresh price;
// missing market data always holds.
func EvaluateExit(pos domain.Position, price float64, age, maxHold time.Duration) (ExitAction, string) {
	if pos.HitTarget(price) {
		return ActionSell, fmt.Sprintf("price %.6f reached target %.6f (x%.1f)",
			price, pos.TargetPrice(), pos.TargetMultiplier)
	}
	if maxHold > 0 && age >= maxHold {
		return ActionExpire, fmt.Sprintf("held %s, max hold %s exceeded",
			age.Round(time.Minute), maxHold)
	}
	return ActionHold, fmt.Sprintf("price %.6f below target %.6f", price, pos.TargetPrice())
}
