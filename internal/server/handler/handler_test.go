package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

type fakeEngine struct {
	status    domain.EngineStatus
	positions []domain.Position
	triggers  int
}

func (f *fakeEngine) Status() domain.EngineStatus  { return f.status }
func (f *fakeEngine) Positions() []domain.Position { return f.positions }
func (f *fakeEngine) Trigger()                     { f.triggers++ }

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeJournal struct {
	records []domain.TradeRecord
	limit   int
	err     error
}

func (f *fakeJournal) ListRecent(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestHealthCheckOK(t *testing.T) {
	h := NewHealthHandler(discardLogger())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["timestamp"] == "" {
		t.Error("timestamp missing")
	}
	if _, ok := body["checks"]; ok {
		t.Error("checks should be omitted when none are registered")
	}
}

func TestHealthCheckDegraded(t *testing.T) {
	h := NewHealthHandler(discardLogger()).
		WithCheck("redis", fakePinger{}).
		WithCheck("postgres", fakePinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "degraded" {
		t.Errorf("status field = %v, want degraded", body["status"])
	}
	checks := body["checks"].(map[string]any)
	if checks["redis"] != "ok" {
		t.Errorf("redis check = %v, want ok", checks["redis"])
	}
	if got := checks["postgres"].(string); !strings.Contains(got, "connection refused") {
		t.Errorf("postgres check = %q, want the ping error", got)
	}
}

func TestGetStatus(t *testing.T) {
	engine := &fakeEngine{
		status: domain.EngineStatus{
			Budget: domain.BudgetSnapshot{
				Used:     3,
				Limit:    10,
				ResetsAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
			},
			OpenPositions: 2,
			CyclesRun:     7,
			TicksDropped:  1,
			DryRun:        true,
		},
	}
	h := NewStatusHandler(engine, "trade", "sim", time.Now().Add(-time.Minute))

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["mode"] != "trade" || body["venue"] != "sim" {
		t.Errorf("mode/venue = %v/%v", body["mode"], body["venue"])
	}
	if body["dry_run"] != true {
		t.Error("dry_run should be true")
	}
	budget := body["budget"].(map[string]any)
	if budget["used"] != float64(3) || budget["limit"] != float64(10) || budget["remaining"] != float64(7) {
		t.Errorf("budget = %v", budget)
	}
	if budget["resets_at"] != "2026-01-02T15:04:05Z" {
		t.Errorf("resets_at = %v", budget["resets_at"])
	}
	if body["open_positions"] != float64(2) || body["cycles_run"] != float64(7) {
		t.Errorf("counters = %v/%v", body["open_positions"], body["cycles_run"])
	}
	if body["last_cycle_at"] != "" {
		t.Errorf("last_cycle_at = %v, want empty before first cycle", body["last_cycle_at"])
	}
	if body["uptime_seconds"].(float64) < 59 {
		t.Errorf("uptime_seconds = %v, want at least a minute", body["uptime_seconds"])
	}
}

func TestGetStatusText(t *testing.T) {
	engine := &fakeEngine{
		status: domain.EngineStatus{
			Budget:        domain.BudgetSnapshot{Used: 3, Limit: 10},
			OpenPositions: 2,
		},
	}
	h := NewStatusHandler(engine, "trade", "sim", time.Time{})

	rec := httptest.NewRecorder()
	h.GetStatusText(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if got := rec.Body.String(); got != "operations 3/10, positions 2\n" {
		t.Errorf("body = %q", got)
	}
}

func TestListPositions(t *testing.T) {
	opened := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := &fakeEngine{
		positions: []domain.Position{
			{
				ID:               "pos-1",
				Symbol:           "PEPE",
				TokenAddress:     "0xabc",
				EntryPrice:       2.0,
				Size:             50,
				TargetMultiplier: 2.0,
				EntryTx:          "0xtx1",
				OpenedAt:         opened,
			},
			{ID: "pos-2", Symbol: "WOJAK", EntryPrice: 0.5, Size: 25, TargetMultiplier: 3.0, OpenedAt: opened},
		},
	}
	h := NewPositionHandler(engine)

	rec := httptest.NewRecorder()
	h.ListPositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp listPositionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(resp.Positions))
	}
	first := resp.Positions[0]
	if first.Symbol != "PEPE" || first.TargetPrice != 4.0 || first.EntryTx != "0xtx1" {
		t.Errorf("first position = %+v", first)
	}
	if first.OpenedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("opened_at = %q", first.OpenedAt)
	}
	if resp.Positions[1].TargetPrice != 1.5 {
		t.Errorf("second target = %v, want 1.5", resp.Positions[1].TargetPrice)
	}
}

func TestListPositionsEmpty(t *testing.T) {
	h := NewPositionHandler(&fakeEngine{})

	rec := httptest.NewRecorder()
	h.ListPositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions", nil))

	if got := rec.Body.String(); !strings.Contains(got, `"positions":[]`) {
		t.Errorf("body = %q, want empty array not null", got)
	}
}

func TestListTrades(t *testing.T) {
	exitPrice := 4.2
	profit := 110.0
	closedAt := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	journal := &fakeJournal{
		records: []domain.TradeRecord{
			{
				ID:         "t-closed",
				Symbol:     "PEPE",
				EntryPrice: 2.0,
				ExitPrice:  &exitPrice,
				ProfitPct:  &profit,
				Status:     domain.TradeStatusClosed,
				OpenedAt:   closedAt.Add(-time.Hour),
				ClosedAt:   &closedAt,
			},
			{ID: "t-open", Symbol: "WOJAK", EntryPrice: 0.5, Status: domain.TradeStatusOpen, OpenedAt: closedAt},
		},
	}
	h := NewTradeHandler(journal, discardLogger())

	rec := httptest.NewRecorder()
	h.ListTrades(rec, httptest.NewRequest(http.MethodGet, "/api/trades", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if journal.limit != 50 {
		t.Errorf("default limit = %d, want 50", journal.limit)
	}
	var resp listTradesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(resp.Trades))
	}
	closed := resp.Trades[0]
	if closed.Status != "closed" || closed.ExitPrice == nil || *closed.ExitPrice != 4.2 {
		t.Errorf("closed trade = %+v", closed)
	}
	if closed.ClosedAt == nil || *closed.ClosedAt != "2026-04-02T09:00:00Z" {
		t.Errorf("closed_at = %v", closed.ClosedAt)
	}
	open := resp.Trades[1]
	if open.Status != "open" || open.ExitPrice != nil || open.ClosedAt != nil {
		t.Errorf("open trade = %+v", open)
	}
}

func TestListTradesLimitClamped(t *testing.T) {
	journal := &fakeJournal{}
	h := NewTradeHandler(journal, discardLogger())

	rec := httptest.NewRecorder()
	h.ListTrades(rec, httptest.NewRequest(http.MethodGet, "/api/trades?limit=9000", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if journal.limit != 500 {
		t.Errorf("limit = %d, want clamp to 500", journal.limit)
	}
}

func TestListTradesError(t *testing.T) {
	journal := &fakeJournal{err: errors.New("pool closed")}
	h := NewTradeHandler(journal, discardLogger())

	rec := httptest.NewRecorder()
	h.ListTrades(rec, httptest.NewRequest(http.MethodGet, "/api/trades", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed to list trades") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestTriggerCycle(t *testing.T) {
	engine := &fakeEngine{}
	h := NewCycleHandler(engine, discardLogger())

	rec := httptest.NewRecorder()
	h.TriggerCycle(rec, httptest.NewRequest(http.MethodPost, "/api/cycle/trigger", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if engine.triggers != 1 {
		t.Errorf("triggers = %d, want 1", engine.triggers)
	}
	body := decodeBody(t, rec)
	if body["status"] != "accepted" {
		t.Errorf("status field = %v", body["status"])
	}
}

type fakeBlobs struct {
	infos  []domain.BlobInfo
	body   string
	getErr error

	prefix string
	getKey string
}

func (f *fakeBlobs) List(ctx context.Context, prefix string) ([]domain.BlobInfo, error) {
	f.prefix = prefix
	return f.infos, nil
}

func (f *fakeBlobs) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	f.getKey = path
	if f.getErr != nil {
		return nil, f.getErr
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func TestListArchives(t *testing.T) {
	blobs := &fakeBlobs{infos: []domain.BlobInfo{
		{
			Path:         "archive/trades/2026-01/20260203T040000Z.jsonl",
			Size:         2048,
			LastModified: time.Date(2026, 2, 3, 4, 0, 0, 0, time.UTC),
		},
	}}
	h := NewArchiveHandler(blobs, discardLogger())

	rec := httptest.NewRecorder()
	h.ListArchives(rec, httptest.NewRequest(http.MethodGet, "/api/archives", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if blobs.prefix != "archive/" {
		t.Errorf("list prefix = %q, want archive/", blobs.prefix)
	}
	var resp listArchivesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Archives) != 1 {
		t.Fatalf("archives = %d, want 1", len(resp.Archives))
	}
	got := resp.Archives[0]
	if got.Path != "archive/trades/2026-01/20260203T040000Z.jsonl" || got.Size != 2048 {
		t.Errorf("archive = %+v", got)
	}
	if got.LastModified != "2026-02-03T04:00:00Z" {
		t.Errorf("last_modified = %q", got.LastModified)
	}
}

func TestListArchivesKindFilter(t *testing.T) {
	blobs := &fakeBlobs{}
	h := NewArchiveHandler(blobs, discardLogger())

	rec := httptest.NewRecorder()
	h.ListArchives(rec, httptest.NewRequest(http.MethodGet, "/api/archives?kind=audit", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if blobs.prefix != "archive/audit/" {
		t.Errorf("list prefix = %q, want archive/audit/", blobs.prefix)
	}

	rec = httptest.NewRecorder()
	h.ListArchives(rec, httptest.NewRequest(http.MethodGet, "/api/archives?kind=everything", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for unknown kind, want 400", rec.Code)
	}
}

func TestDownloadArchive(t *testing.T) {
	blobs := &fakeBlobs{body: `{"id":"t1"}` + "\n"}
	h := NewArchiveHandler(blobs, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/archives/archive/trades/2026-01/x.jsonl", nil)
	req.SetPathValue("key", "archive/trades/2026-01/x.jsonl")
	rec := httptest.NewRecorder()
	h.DownloadArchive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if blobs.getKey != "archive/trades/2026-01/x.jsonl" {
		t.Errorf("get key = %q", blobs.getKey)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != `{"id":"t1"}`+"\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestDownloadArchiveOutsidePrefix(t *testing.T) {
	blobs := &fakeBlobs{}
	h := NewArchiveHandler(blobs, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/archives/secrets/wallet.json", nil)
	req.SetPathValue("key", "secrets/wallet.json")
	rec := httptest.NewRecorder()
	h.DownloadArchive(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if blobs.getKey != "" {
		t.Errorf("storage was queried for %q outside the archive prefix", blobs.getKey)
	}
}

func TestDownloadArchiveNotFound(t *testing.T) {
	blobs := &fakeBlobs{getErr: fmt.Errorf("s3blob: get: %w", domain.ErrNotFound)}
	h := NewArchiveHandler(blobs, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/archives/archive/trades/gone.jsonl", nil)
	req.SetPathValue("key", "archive/trades/gone.jsonl")
	rec := httptest.NewRecorder()
	h.DownloadArchive(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
