package dexscreener

import (
	"strconv"
	"strings"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// APIToken identifies one side of a trading pair.
type APIToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// APILiquidity carries pooled liquidity figures for a pair.
type APILiquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// APIPair represents a pair as returned by the DexScreener search API.
// Prices arrive as decimal strings; cap figures as numbers.
type APIPair struct {
	ChainID       string       `json:"chainId"`
	DexID         string       `json:"dexId"`
	URL           string       `json:"url"`
	PairAddress   string       `json:"pairAddress"`
	BaseToken     APIToken     `json:"baseToken"`
	QuoteToken    APIToken     `json:"quoteToken"`
	PriceNative   string       `json:"priceNative"`
	PriceUSD      string       `json:"priceUsd"`
	Liquidity     APILiquidity `json:"liquidity"`
	FDV           float64      `json:"fdv"`
	MarketCap     float64      `json:"marketCap"`
	PairCreatedAt int64        `json:"pairCreatedAt"`
}

// searchResponse is the envelope of /latest/dex/search.
type searchResponse struct {
	SchemaVersion string    `json:"schemaVersion"`
	Pairs         []APIPair `json:"pairs"`
}

// matchesSymbol reports whether the pair's base token carries the symbol.
func (p *APIPair) matchesSymbol(symbol string) bool {
	return strings.EqualFold(p.BaseToken.Symbol, symbol)
}

// ToDomain maps the pair onto a market snapshot. The circulating market cap
// is preferred; pairs that only report fully-diluted value fall back to FDV.
func (p *APIPair) ToDomain(fetchedAt time.Time) domain.MarketSnapshot {
	price, _ := strconv.ParseFloat(p.PriceUSD, 64)

	cap := p.MarketCap
	if cap <= 0 {
		cap = p.FDV
	}

	return domain.MarketSnapshot{
		Symbol:       strings.ToUpper(p.BaseToken.Symbol),
		Name:         p.BaseToken.Name,
		TokenAddress: p.BaseToken.Address,
		PairAddress:  p.PairAddress,
		PriceUSD:     price,
		MarketCapUSD: cap,
		LiquidityUSD: p.Liquidity.USD,
		FetchedAt:    fetchedAt,
	}
}
