package domain

import (
	"fmt"
	"time"
)

// BudgetSnapshot is a point-in-time view of the operation budget.
type BudgetSnapshot struct {
	Used        int
	Limit       int
	WindowStart time.Time
	ResetsAt    time.Time
}

// Remaining returns how many operations are still allowed in the window.
func (b BudgetSnapshot) Remaining() int {
	if b.Used >= b.Limit {
		return 0
	}
	return b.Limit - b.Used
}

// EngineStatus is a summary of the trading engine's current state.
type EngineStatus struct {
	Budget        BudgetSnapshot
	OpenPositions int
	CyclesRun     int64
	TicksDropped  int64
	LastCycleAt   time.Time
	DryRun        bool
}

// String renders the compact operator status line used by the plain-text
// status endpoint and the Telegram /status command.
func (s EngineStatus) String() string {
	return fmt.Sprintf("operations %d/%d, positions %d",
		s.Budget.Used, s.Budget.Limit, s.OpenPositions)
}
