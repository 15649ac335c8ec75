package engine

import (
	"sync"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// ResetMode selects how the operation budget window resets.
type ResetMode string

const (
	// ResetUTCMidnight starts a fresh window at every UTC date boundary.
	ResetUTCMidnight ResetMode = "utc-midnight"
	// ResetInterval starts a fresh window a fixed duration after the
	// previous window began.
	ResetInterval ResetMode = "interval"
)

// Budget caps the number of completed operations (buys plus sells) per
// window. The count only moves on settled operations; rejected or failed
// attempts never consume budget. Resets are applied lazily on access.
type Budget struct {
	mu          sync.Mutex
	count       int
	limit       int
	mode        ResetMode
	window      time.Duration
	windowStart time.Time

	now func() time.Time
}

// NewBudget creates a Budget with the given per-window limit. The window
// duration is only used in ResetInterval mode.
func NewBudget(limit int, mode ResetMode, window time.Duration) *Budget {
	b := &Budget{
		limit:  limit,
		mode:   mode,
		window: window,
		now:    time.Now,
	}
	b.windowStart = b.startFor(b.now().UTC())
	return b
}

// CanAct reports whether another operation fits in the current window.
func (b *Budget) CanAct() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeReset()
	return b.count < b.limit
}

// Record counts one settled operation. Callers must have checked CanAct in
// the same decision pass; the count never exceeds the limit.
func (b *Budget) Record() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeReset()
	if b.count < b.limit {
		b.count++
	}
}

// Snapshot returns the current window state for status reporting.
func (b *Budget) Snapshot() domain.BudgetSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeReset()
	return domain.BudgetSnapshot{
		Used:        b.count,
		Limit:       b.limit,
		WindowStart: b.windowStart,
		ResetsAt:    b.resetAt(),
	}
}

// maybeReset rolls the window forward when it has elapsed. Callers hold mu.
func (b *Budget) maybeReset() {
	now := b.now().UTC()
	if now.Before(b.resetAt()) {
		return
	}
	b.count = 0
	b.windowStart = b.startFor(now)
}

// startFor returns the window start covering the given instant.
func (b *Budget) startFor(now time.Time) time.Time {
	if b.mode == ResetUTCMidnight {
		return now.Truncate(24 * time.Hour)
	}
	return now
}

// resetAt returns when the current window ends. Callers hold mu.
func (b *Budget) resetAt() time.Time {
	if b.mode == ResetUTCMidnight {
		return b.windowStart.Add(24 * time.Hour)
	}
	return b.windowStart.Add(b.window)
}
