package domain

import "time"

// MarketSnapshot is a point-in-time view of a token's market state as reported
// by the market data provider. Snapshots are fetched fresh for every decision
// and never cached.
type MarketSnapshot struct {
	Symbol       string
	Name         string
	TokenAddress string
	PairAddress  string
	PriceUSD     float64
	MarketCapUSD float64
	LiquidityUSD float64
	FetchedAt    time.Time
}
