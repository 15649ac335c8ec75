// Package dexscreener is the REST client for the DexScreener search API, the
// market data source behind admission checks and exit sweeps. Lookups are
// always live; the engine's no-caching rule starts here.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// DefaultBaseURL is the public DexScreener API root.
const DefaultBaseURL = "https://api.dexscreener.com"

// Client is the DexScreener REST client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a DexScreener client. baseURL falls back to the public
// API root when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Lookup resolves a symbol to a fresh market snapshot. When several pairs
// carry the symbol, the deepest-liquidity pair wins: thin clone pools would
// otherwise shadow the real market. Returns domain.ErrNoMarketData (wrapped)
// when no pair matches.
func (c *Client) Lookup(ctx context.Context, symbol string) (domain.MarketSnapshot, error) {
	params := url.Values{}
	params.Set("q", symbol)
	path := "/latest/dex/search?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("dexscreener: search %s: %w", symbol, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("dexscreener: decode search results: %w", err)
	}

	var best *APIPair
	for i := range resp.Pairs {
		p := &resp.Pairs[i]
		if !p.matchesSymbol(symbol) {
			continue
		}
		if best == nil || p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	if best == nil {
		return domain.MarketSnapshot{}, fmt.Errorf("dexscreener: %w: symbol=%s", domain.ErrNoMarketData, symbol)
	}

	return best.ToDomain(time.Now().UTC()), nil
}

// doGet sends an unauthenticated GET request to the DexScreener API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNoMarketData, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
