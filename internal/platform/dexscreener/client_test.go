package dexscreener

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

func TestLookupPicksDeepestLiquidity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "FOO" {
			t.Errorf("query q = %q, want FOO", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"schemaVersion": "1.0.0",
			"pairs": [
				{
					"pairAddress": "0xthin",
					"baseToken": {"address": "0xclone", "name": "Foo Clone", "symbol": "FOO"},
					"priceUsd": "0.009",
					"liquidity": {"usd": 120},
					"fdv": 4000
				},
				{
					"pairAddress": "0xdeep",
					"baseToken": {"address": "0xreal", "name": "Foo", "symbol": "FOO"},
					"priceUsd": "0.005",
					"liquidity": {"usd": 9000},
					"marketCap": 5000
				},
				{
					"pairAddress": "0xother",
					"baseToken": {"address": "0xbar", "name": "Bar", "symbol": "BAR"},
					"priceUsd": "1.5",
					"liquidity": {"usd": 99999}
				}
			]
		}`))
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL).Lookup(context.Background(), "FOO")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if snap.PairAddress != "0xdeep" {
		t.Errorf("PairAddress = %s, want the deepest FOO pair 0xdeep", snap.PairAddress)
	}
	if snap.PriceUSD != 0.005 {
		t.Errorf("PriceUSD = %v, want 0.005", snap.PriceUSD)
	}
	if snap.MarketCapUSD != 5000 {
		t.Errorf("MarketCapUSD = %v, want 5000", snap.MarketCapUSD)
	}
	if snap.TokenAddress != "0xreal" {
		t.Errorf("TokenAddress = %s, want 0xreal", snap.TokenAddress)
	}
	if snap.Symbol != "FOO" {
		t.Errorf("Symbol = %s, want FOO", snap.Symbol)
	}
}

func TestLookupFallsBackToFDV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"pairs": [{
			"pairAddress": "0xp",
			"baseToken": {"address": "0xt", "symbol": "foo"},
			"priceUsd": "0.001",
			"liquidity": {"usd": 500},
			"fdv": 4200
		}]}`))
	}))
	defer srv.Close()

	// Symbol match is case-insensitive; cap falls back to FDV when the
	// circulating figure is absent.
	snap, err := NewClient(srv.URL).Lookup(context.Background(), "FOO")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if snap.MarketCapUSD != 4200 {
		t.Errorf("MarketCapUSD = %v, want FDV fallback 4200", snap.MarketCapUSD)
	}
	if snap.Symbol != "FOO" {
		t.Errorf("Symbol = %s, want normalized FOO", snap.Symbol)
	}
}

func TestLookupNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"pairs": [{
			"pairAddress": "0xp",
			"baseToken": {"address": "0xt", "symbol": "BAR"},
			"priceUsd": "0.001",
			"liquidity": {"usd": 500}
		}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Lookup(context.Background(), "FOO")
	if !errors.Is(err, domain.ErrNoMarketData) {
		t.Fatalf("Lookup() error = %v, want ErrNoMarketData", err)
	}
}

func TestLookupEmptyPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"schemaVersion": "1.0.0", "pairs": []}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Lookup(context.Background(), "GONE")
	if !errors.Is(err, domain.ErrNoMarketData) {
		t.Fatalf("Lookup() error = %v, want ErrNoMarketData", err)
	}
}

func TestLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Lookup(context.Background(), "FOO")
	if err == nil {
		t.Fatal("Lookup() error = nil, want transport error")
	}
	if errors.Is(err, domain.ErrNoMarketData) {
		t.Error("server trouble must not masquerade as a missing pair")
	}
}
