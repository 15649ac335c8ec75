package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

type fakeExporter struct {
	trades    int64
	audit     int64
	tradesErr error
	auditErr  error

	tradeCutoff time.Time
}

func (f *fakeExporter) ArchiveTrades(ctx context.Context, before time.Time) (int64, error) {
	f.tradeCutoff = before
	return f.trades, f.tradesErr
}

func (f *fakeExporter) ArchiveAudit(ctx context.Context, before time.Time) (int64, error) {
	return f.audit, f.auditErr
}

type fakePruner struct {
	calls int
	err   error
}

func (f *fakePruner) DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error) {
	f.calls++
	return 3, f.err
}

func (f *fakePruner) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	f.calls++
	return 3, f.err
}

func TestArchiverPrunesAfterExport(t *testing.T) {
	exp := &fakeExporter{trades: 5, audit: 2}
	journal := &fakePruner{}
	audit := &fakePruner{}
	a := NewArchiver(exp, journal, audit, 90, slog.New(slog.DiscardHandler))

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if journal.calls != 1 {
		t.Errorf("journal prune calls = %d, want 1", journal.calls)
	}
	if audit.calls != 1 {
		t.Errorf("audit prune calls = %d, want 1", audit.calls)
	}

	wantCutoff := time.Now().UTC().AddDate(0, 0, -90)
	if diff := exp.tradeCutoff.Sub(wantCutoff); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff = %v, want about %v", exp.tradeCutoff, wantCutoff)
	}
}

func TestArchiverKeepsRowsOnExportFailure(t *testing.T) {
	exp := &fakeExporter{tradesErr: errors.New("bucket gone"), audit: 2}
	journal := &fakePruner{}
	audit := &fakePruner{}
	a := NewArchiver(exp, journal, audit, 30, slog.New(slog.DiscardHandler))

	err := a.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when an export fails")
	}
	if journal.calls != 0 {
		t.Errorf("journal pruned despite failed export (%d calls)", journal.calls)
	}
	// The audit export succeeded independently and may prune.
	if audit.calls != 1 {
		t.Errorf("audit prune calls = %d, want 1", audit.calls)
	}
}

func TestArchiverSkipsPruneWhenNothingExported(t *testing.T) {
	exp := &fakeExporter{}
	journal := &fakePruner{}
	a := NewArchiver(exp, journal, nil, 7, slog.New(slog.DiscardHandler))

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if journal.calls != 0 {
		t.Errorf("pruned with zero exported rows (%d calls)", journal.calls)
	}
}

func TestArchiverNilPruners(t *testing.T) {
	exp := &fakeExporter{trades: 4, audit: 4}
	a := NewArchiver(exp, nil, nil, 7, slog.New(slog.DiscardHandler))

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run with nil pruners: %v", err)
	}
}
