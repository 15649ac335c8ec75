package engine

import (
	"testing"
	"time"
)

func TestBudgetLimit(t *testing.T) {
	b := NewBudget(3, ResetInterval, 24*time.Hour)

	for i := 0; i < 3; i++ {
		if !b.CanAct() {
			t.Fatalf("CanAct() = false after %d operations, want true", i)
		}
		b.Record()
	}

	if b.CanAct() {
		t.Error("CanAct() = true at limit, want false")
	}

	// Recording past the limit must not push the count over it.
	b.Record()
	if got := b.Snapshot(); got.Used != 3 || got.Limit != 3 {
		t.Errorf("Snapshot() = %d/%d, want 3/3", got.Used, got.Limit)
	}
}

func TestBudgetIntervalReset(t *testing.T) {
	b := NewBudget(2, ResetInterval, time.Hour)

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	now := base
	b.now = func() time.Time { return now }
	b.windowStart = base

	b.Record()
	b.Record()
	if b.CanAct() {
		t.Fatal("CanAct() = true at limit, want false")
	}

	// Still inside the window: no reset.
	now = base.Add(59 * time.Minute)
	if b.CanAct() {
		t.Fatal("CanAct() = true before window elapsed, want false")
	}

	// Window elapsed: count resets and the new window starts now.
	now = base.Add(61 * time.Minute)
	if !b.CanAct() {
		t.Fatal("CanAct() = false after window elapsed, want true")
	}
	snap := b.Snapshot()
	if snap.Used != 0 {
		t.Errorf("Used = %d after reset, want 0", snap.Used)
	}
	if !snap.WindowStart.Equal(now) {
		t.Errorf("WindowStart = %s, want %s", snap.WindowStart, now)
	}
}

func TestBudgetMidnightReset(t *testing.T) {
	b := NewBudget(1, ResetUTCMidnight, 0)

	now := time.Date(2024, 6, 1, 23, 50, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	b.windowStart = now.Truncate(24 * time.Hour)

	b.Record()
	if b.CanAct() {
		t.Fatal("CanAct() = true at limit, want false")
	}

	snap := b.Snapshot()
	wantReset := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	if !snap.ResetsAt.Equal(wantReset) {
		t.Errorf("ResetsAt = %s, want %s", snap.ResetsAt, wantReset)
	}

	// Cross the UTC date boundary.
	now = time.Date(2024, 6, 2, 0, 10, 0, 0, time.UTC)
	if !b.CanAct() {
		t.Fatal("CanAct() = false after midnight, want true")
	}
	snap = b.Snapshot()
	if snap.Used != 0 {
		t.Errorf("Used = %d after midnight reset, want 0", snap.Used)
	}
	if !snap.WindowStart.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("WindowStart = %s, want start of new UTC day", snap.WindowStart)
	}
}

func TestBudgetSnapshotRemaining(t *testing.T) {
	b := NewBudget(10, ResetUTCMidnight, 0)
	b.Record()
	b.Record()
	b.Record()

	snap := b.Snapshot()
	if snap.Used != 3 || snap.Limit != 10 {
		t.Fatalf("Snapshot() = %d/%d, want 3/10", snap.Used, snap.Limit)
	}
	if got := snap.Remaining(); got != 7 {
		t.Errorf("Remaining() = %d, want 7", got)
	}
}
