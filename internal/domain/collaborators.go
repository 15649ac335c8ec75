package domain

import (
	"context"
	"time"
)

// SocialFeed searches the social platform for recent posts matching a query.
// Errors are transient platform trouble; callers degrade to an empty scan.
type SocialFeed interface {
	Search(ctx context.Context, query string, limit int) ([]Post, error)
}

// MarketData resolves a symbol to a live market snapshot. Lookup returns
// ErrNoMarketData (possibly wrapped) when the provider has no pair for the
// symbol; any other error is transient provider trouble.
type MarketData interface {
	Lookup(ctx context.Context, symbol string) (MarketSnapshot, error)
}

// TradeReceipt is the venue's acknowledgement of a submitted trade.
type TradeReceipt struct {
	TxHash      string
	Venue       string
	Simulated   bool
	SubmittedAt time.Time
}

// ExecutionVenue submits buys and sells. The default implementation simulates
// fills; the EVM implementation signs and broadcasts router swaps.
type ExecutionVenue interface {
	Name() string
	SubmitBuy(ctx context.Context, snap MarketSnapshot, sizeBase float64) (TradeReceipt, error)
	SubmitSell(ctx context.Context, pos Position, snap MarketSnapshot) (TradeReceipt, error)
}
