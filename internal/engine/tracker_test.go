package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

func snapFor(symbol string, price, cap float64) domain.MarketSnapshot {
	return domain.MarketSnapshot{
		Symbol:       symbol,
		TokenAddress: "0xtoken" + symbol,
		PairAddress:  "0xpair" + symbol,
		PriceUSD:     price,
		MarketCapUSD: cap,
		FetchedAt:    time.Now().UTC(),
	}
}

func TestTrackerTryOpen(t *testing.T) {
	tr := NewTracker(0)
	now := time.Now().UTC()

	pos, err := tr.TryOpen(snapFor("FOO", 0.005, 5000), 0.1, 2, "0xabc", now)
	if err != nil {
		t.Fatalf("TryOpen() error = %v", err)
	}
	if pos.Symbol != "FOO" || pos.EntryPrice != 0.005 || pos.TargetMultiplier != 2 {
		t.Errorf("position = %+v, want FOO @ 0.005 x2", pos)
	}
	if pos.ID == "" {
		t.Error("position ID not assigned")
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestTrackerRejectsDuplicate(t *testing.T) {
	tr := NewTracker(0)
	now := time.Now().UTC()

	if _, err := tr.TryOpen(snapFor("FOO", 0.005, 5000), 0.1, 2, "", now); err != nil {
		t.Fatalf("first TryOpen() error = %v", err)
	}

	_, err := tr.TryOpen(snapFor("FOO", 0.006, 5000), 0.1, 2, "", now)
	if !errors.Is(err, domain.ErrPositionExists) {
		t.Fatalf("second TryOpen() error = %v, want ErrPositionExists", err)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d after duplicate open, want 1", tr.Len())
	}

	// The original position must be untouched.
	pos, ok := tr.Get("FOO")
	if !ok || pos.EntryPrice != 0.005 {
		t.Errorf("Get(FOO) = %+v, %v; want original entry 0.005", pos, ok)
	}
}

func TestTrackerMaxOpen(t *testing.T) {
	tr := NewTracker(2)
	now := time.Now().UTC()

	for _, s := range []string{"AAA", "BBB"} {
		if _, err := tr.TryOpen(snapFor(s, 0.001, 5000), 0.1, 2, "", now); err != nil {
			t.Fatalf("TryOpen(%s) error = %v", s, err)
		}
	}

	_, err := tr.TryOpen(snapFor("CCC", 0.001, 5000), 0.1, 2, "", now)
	if !errors.Is(err, domain.ErrPositionLimit) {
		t.Fatalf("TryOpen at cap error = %v, want ErrPositionLimit", err)
	}

	// Closing one frees a slot.
	if _, ok := tr.Close("AAA"); !ok {
		t.Fatal("Close(AAA) = false, want true")
	}
	if _, err := tr.TryOpen(snapFor("CCC", 0.001, 5000), 0.1, 2, "", now); err != nil {
		t.Errorf("TryOpen after Close error = %v", err)
	}
}

func TestTrackerInsertionOrder(t *testing.T) {
	tr := NewTracker(0)
	now := time.Now().UTC()

	for _, s := range []string{"CCC", "AAA", "BBB"} {
		if _, err := tr.TryOpen(snapFor(s, 0.001, 5000), 0.1, 2, "", now); err != nil {
			t.Fatalf("TryOpen(%s) error = %v", s, err)
		}
	}

	want := []string{"CCC", "AAA", "BBB"}
	got := tr.Symbols()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Symbols() = %v, want %v", got, want)
		}
	}

	// Removal keeps the relative order of the rest.
	tr.Close("AAA")
	got = tr.Symbols()
	want = []string{"CCC", "BBB"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Symbols() after Close = %v, want %v", got, want)
		}
	}
}

func TestEvaluateExit(t *testing.T) {
	pos := domain.Position{
		Symbol:           "FOO",
		EntryPrice:       0.005,
		TargetMultiplier: 2,
	}

	tests := []struct {
		name    string
		price   float64
		age     time.Duration
		maxHold time.Duration
		want    ExitAction
	}{
		{"above target", 0.011, 0, 0, ActionSell},
		{"exactly at target sells", 0.010, 0, 0, ActionSell},
		{"below target", 0.009, 0, 0, ActionHold},
		{"just under target", 0.0099999, 0, 0, ActionHold},
		{"expired below target", 0.002, 80 * time.Hour, 72 * time.Hour, ActionExpire},
		{"old but expiry disabled", 0.002, 800 * time.Hour, 0, ActionHold},
		{"target outranks expiry", 0.011, 80 * time.Hour, 72 * time.Hour, ActionSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := EvaluateExit(pos, tt.price, tt.age, tt.maxHold)
			if got != tt.want {
				t.Errorf("EvaluateExit(price=%v) = %s (%s), want %s", tt.price, got, reason, tt.want)
			}
		})
	}
}

func TestProfitPercent(t *testing.T) {
	pos := domain.Position{EntryPrice: 0.005}

	tests := []struct {
		price float64
		want  float64
	}{
		{0.011, 120.00},
		{0.005, 0.00},
		{0.010, 100.00},
		{0.004, -20.00},
	}

	for _, tt := range tests {
		if got := pos.ProfitPercent(tt.price); got != tt.want {
			t.Errorf("ProfitPercent(%v) = %v, want %v", tt.price, got, tt.want)
		}
	}
}
