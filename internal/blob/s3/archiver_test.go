package s3blob

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

type fakeWriter struct {
	paths        []string
	contentTypes []string
	bodies       [][]byte
}

func (f *fakeWriter) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.paths = append(f.paths, path)
	f.contentTypes = append(f.contentTypes, contentType)
	f.bodies = append(f.bodies, body)
	return nil
}

type fakeTradeStore struct {
	records []domain.TradeRecord
}

func (f *fakeTradeStore) ListClosedBefore(ctx context.Context, before time.Time, limit int) ([]domain.TradeRecord, error) {
	return f.records, nil
}

type fakeAuditStore struct {
	entries []domain.AuditEntry
	logged  []string
}

func (f *fakeAuditStore) ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.AuditEntry, error) {
	return f.entries, nil
}

func (f *fakeAuditStore) Log(ctx context.Context, event string, detail map[string]any) error {
	f.logged = append(f.logged, event)
	return nil
}

func TestArchiveTrades(t *testing.T) {
	writer := &fakeWriter{}
	trades := &fakeTradeStore{records: []domain.TradeRecord{
		{ID: "t1", Symbol: "PEPE", Status: domain.TradeStatusClosed},
		{ID: "t2", Symbol: "WIF", Status: domain.TradeStatusClosed},
	}}
	audit := &fakeAuditStore{}

	arch := NewArchiver(writer, trades, audit)
	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	count, err := arch.ArchiveTrades(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("ArchiveTrades() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	if len(writer.paths) != 1 {
		t.Fatalf("paths = %v, want one upload", writer.paths)
	}
	if !strings.HasPrefix(writer.paths[0], "archive/trades/2026-06/") || !strings.HasSuffix(writer.paths[0], ".jsonl") {
		t.Errorf("path = %q, want archive/trades/2026-06/<run>.jsonl", writer.paths[0])
	}
	if writer.contentTypes[0] != "application/x-ndjson" {
		t.Errorf("content type = %q", writer.contentTypes[0])
	}

	lines := bytes.Split(bytes.TrimSpace(writer.bodies[0]), []byte("\n"))
	if len(lines) != 2 {
		t.Errorf("got %d JSONL lines, want 2", len(lines))
	}
	if !strings.Contains(string(lines[0]), "PEPE") {
		t.Errorf("first line = %s", lines[0])
	}

	if len(audit.logged) != 1 || audit.logged[0] != "archive.trades" {
		t.Errorf("audit events = %v", audit.logged)
	}
}

func TestArchiveTradesEmpty(t *testing.T) {
	writer := &fakeWriter{}
	arch := NewArchiver(writer, &fakeTradeStore{}, &fakeAuditStore{})

	count, err := arch.ArchiveTrades(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("ArchiveTrades() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if len(writer.paths) != 0 {
		t.Errorf("uploaded %v despite empty result", writer.paths)
	}
}

func TestArchiveAudit(t *testing.T) {
	writer := &fakeWriter{}
	audit := &fakeAuditStore{entries: []domain.AuditEntry{
		{ID: 1, Event: "buy_executed"},
		{ID: 2, Event: "sell_executed"},
		{ID: 3, Event: "cycle_finished"},
	}}

	arch := NewArchiver(writer, &fakeTradeStore{}, audit)
	cutoff := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	count, err := arch.ArchiveAudit(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("ArchiveAudit() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if !strings.HasPrefix(writer.paths[0], "archive/audit/2026-03/") {
		t.Errorf("path = %q, want archive/audit/2026-03/ prefix", writer.paths[0])
	}
	if len(audit.logged) != 1 || audit.logged[0] != "archive.audit" {
		t.Errorf("audit events = %v", audit.logged)
	}
}

func TestArchivePath(t *testing.T) {
	cutoff := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	runA := time.Date(2026, 2, 3, 4, 0, 0, 0, time.UTC)
	runB := runA.Add(24 * time.Hour)

	got := archivePath("trades", cutoff, runA)
	if got != "archive/trades/2026-01/20260203T040000Z.jsonl" {
		t.Errorf("archivePath() = %q", got)
	}
	// Two runs over the same cutoff month must not overwrite each other.
	if archivePath("trades", cutoff, runA) == archivePath("trades", cutoff, runB) {
		t.Error("successive runs produced the same key")
	}
}
