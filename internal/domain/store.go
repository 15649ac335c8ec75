package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// TradeStatus tracks whether a journaled trade is still open.
type TradeStatus string

const (
	TradeStatusOpen   TradeStatus = "open"
	TradeStatusClosed TradeStatus = "closed"
)

// TradeRecord is the journaled history of one position round trip. The journal
// is write-behind history only; the engine never reads it back.
type TradeRecord struct {
	ID               string
	Symbol           string
	TokenAddress     string
	EntryPrice       float64
	ExitPrice        *float64
	Size             float64
	TargetMultiplier float64
	ProfitPct        *float64
	Status           TradeStatus
	CloseReason      string
	EntryTx          string
	ExitTx           string
	OpenedAt         time.Time
	ClosedAt         *time.Time
}

// TradeJournal persists trade history.
type TradeJournal interface {
	RecordOpen(ctx context.Context, rec TradeRecord) error
	RecordClose(ctx context.Context, id string, exitPrice, profitPct float64, exitTx, reason string, closedAt time.Time) error
	ListRecent(ctx context.Context, limit int) ([]TradeRecord, error)
	ListClosedBefore(ctx context.Context, before time.Time, limit int) ([]TradeRecord, error)
	DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error)
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
	ListBefore(ctx context.Context, before time.Time, limit int) ([]AuditEntry, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
