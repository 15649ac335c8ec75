// Package engine implements the decision-and-position-tracking core: ranking
// social candidates, gating entries against live market bands, sweeping open
// positions for profit-multiplier exits, and charging every settled operation
// against a windowed budget. The orchestrator exclusively owns the position
// set and the budget counter; collaborators only report outcomes back.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/noor961/Meme-coin--7/internal/domain"
	"github.com/noor961/Meme-coin--7/internal/rank"
)

// Config carries the engine's decision constants.
type Config struct {
	Interval         time.Duration // cycle cadence
	SearchQuery      string        // social feed search query
	SearchLimit      int           // max posts per scan
	MaxOperations    int           // budget limit per window
	BudgetReset      ResetMode
	BudgetWindow     time.Duration // interval reset mode only
	PriceCeiling     float64
	CapTarget        float64
	CapBand          float64
	TargetMultiplier float64 // exit multiplier fixed at entry
	TradeSize        float64 // base-currency units per entry
	MaxOpenPositions int
	MaxHold          time.Duration // zero disables expiry
	CallTimeout      time.Duration // per feed/market call
	DryRun           bool
}

// Reporter mirrors decisions to the operator notification channel.
// Satisfied by *notify.Notifier.
type Reporter interface {
	Notify(ctx context.Context, event, title, message string) error
}

type nopReporter struct{}

func (nopReporter) Notify(context.Context, string, string, string) error { return nil }

// Deps are the orchestrator's collaborators. Feed, Market, Venue, and Ranker
// are required; the rest degrade gracefully when nil.
type Deps struct {
	Feed     domain.SocialFeed
	Market   domain.MarketData
	Venue    domain.ExecutionVenue
	Ranker   *rank.Ranker
	Reporter Reporter
	Bus      domain.EventBus
	Audit    domain.AuditStore
	Journal  domain.TradeJournal
	Seen     domain.SeenStore
	Locks    domain.LockManager
}

// Orchestrator runs the periodic decision cycle. Each cycle has two phases in
// fixed order: Phase A admits at most one new entry from the freshest scan,
// Phase B sweeps the positions that existed before Phase A for exits. All
// position and budget mutation happens inside the cycle path, which is
// single-flight: overlapping ticks are dropped, not queued.
type Orchestrator struct {
	cfg     Config
	feed    domain.SocialFeed
	gate    *Gate
	venue   domain.ExecutionVenue
	ranker  *rank.Ranker
	rep     Reporter
	bus     domain.EventBus
	audit   domain.AuditStore
	journal domain.TradeJournal
	seen    domain.SeenStore
	locks   domain.LockManager
	logger  *slog.Logger

	budget  *Budget
	tracker *Tracker

	mu        sync.Mutex // single-flight cycle guard
	trigger   chan struct{}
	cycles    atomic.Int64
	dropped   atomic.Int64
	lastCycle atomic.Int64 // unix nanos of last completed cycle

	now func() time.Time
}

// New creates an Orchestrator. The budget and tracker start empty: state is
// process-memory only and rebuilt from live decisions after a restart.
func New(cfg Config, deps Deps, logger *slog.Logger) (*Orchestrator, error) {
	if deps.Feed == nil || deps.Market == nil || deps.Venue == nil || deps.Ranker == nil {
		return nil, errors.New("engine: feed, market, venue, and ranker are required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("engine: interval must be positive, got %s", cfg.Interval)
	}
	if cfg.MaxOperations <= 0 {
		return nil, fmt.Errorf("engine: max operations must be positive, got %d", cfg.MaxOperations)
	}
	rep := deps.Reporter
	if rep == nil {
		rep = nopReporter{}
	}

	log := logger.With(slog.String("component", "engine"))
	return &Orchestrator{
		cfg:     cfg,
		feed:    deps.Feed,
		gate:    NewGate(deps.Market, cfg, logger),
		venue:   deps.Venue,
		ranker:  deps.Ranker,
		rep:     rep,
		bus:     deps.Bus,
		audit:   deps.Audit,
		journal: deps.Journal,
		seen:    deps.Seen,
		locks:   deps.Locks,
		logger:  log,
		budget:  NewBudget(cfg.MaxOperations, cfg.BudgetReset, cfg.BudgetWindow),
		tracker: NewTracker(cfg.MaxOpenPositions),
		trigger: make(chan struct{}, 1),
		now:     time.Now,
	}, nil
}

// Run executes one immediate cycle and then one per interval until ctx ends.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.InfoContext(ctx, "engine: starting",
		slog.Duration("interval", o.cfg.Interval),
		slog.String("query", o.cfg.SearchQuery),
		slog.Bool("dry_run", o.cfg.DryRun),
	)

	o.runTick(ctx)

	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.InfoContext(ctx, "engine: stopping")
			return ctx.Err()
		case <-o.trigger:
			o.runTick(ctx)
		case <-ticker.C:
			o.runTick(ctx)
		}
	}
}

// Trigger requests an immediate cycle without waiting for the next tick.
// Requests while a trigger is already pending are coalesced.
func (o *Orchestrator) Trigger() {
	select {
	case o.trigger <- struct{}{}:
	default:
	}
}

func (o *Orchestrator) runTick(ctx context.Context) {
	if err := o.RunCycle(ctx); err != nil {
		if errors.Is(err, domain.ErrCycleInFlight) {
			o.logger.WarnContext(ctx, "engine: previous cycle still running, tick dropped",
				slog.Int64("dropped_total", o.dropped.Load()),
			)
			return
		}
		o.logger.WarnContext(ctx, "engine: cycle skipped",
			slog.String("reason", err.Error()),
		)
	}
}

// RunCycle runs one full decision cycle. It returns domain.ErrCycleInFlight
// when a cycle is already running and domain.ErrLockHeld when another replica
// holds the distributed cycle lock.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	if !o.mu.TryLock() {
		o.dropped.Add(1)
		return domain.ErrCycleInFlight
	}
	defer o.mu.Unlock()

	if o.locks != nil {
		unlock, err := o.locks.Acquire(ctx, "cycle", o.cfg.Interval)
		switch {
		case errors.Is(err, domain.ErrLockHeld):
			o.dropped.Add(1)
			return domain.ErrLockHeld
		case err != nil:
			// Lock service trouble must not stall trading on a single
			// replica; run locally and let the warning surface it.
			o.logger.WarnContext(ctx, "engine: cycle lock unavailable, continuing",
				slog.String("error", err.Error()),
			)
		default:
			defer unlock()
		}
	}

	o.cycle(ctx)
	return nil
}

// cycle is the synchronous decision path. Caller holds the cycle guard.
func (o *Orchestrator) cycle(ctx context.Context) {
	cycleID := uuid.NewString()[:8]
	start := o.now()
	n := o.cycles.Add(1)

	o.logger.InfoContext(ctx, "engine: cycle started",
		slog.String("cycle_id", cycleID),
		slog.Int64("cycle", n),
	)
	o.publish(ctx, domain.EventCycleStarted, map[string]any{
		"cycle_id": cycleID,
		"cycle":    n,
	})

	// Sells are budget-gated the same as buys, so a spent budget means
	// nothing in either phase could act.
	if !o.budget.CanAct() {
		snap := o.budget.Snapshot()
		o.logger.InfoContext(ctx, "engine: budget exhausted, cycle skipped",
			slog.String("cycle_id", cycleID),
			slog.Int("used", snap.Used),
			slog.Int("limit", snap.Limit),
		)
		o.mirror(ctx, domain.EventBudgetExhausted, "Budget exhausted",
			fmt.Sprintf("operations %d/%d used, window resets %s",
				snap.Used, snap.Limit, snap.ResetsAt.UTC().Format(time.RFC3339)),
			map[string]any{"cycle_id": cycleID, "used": snap.Used, "limit": snap.Limit},
		)
		o.finishCycle(ctx, cycleID, start)
		return
	}

	// Phase B operates on the pre-Phase-A set: a symbol bought this cycle
	// is not a sale candidate until the next one.
	carried := o.tracker.Symbols()

	o.acquirePhase(ctx, cycleID)
	o.liquidatePhase(ctx, cycleID, carried)
	o.finishCycle(ctx, cycleID, start)
}

func (o *Orchestrator) finishCycle(ctx context.Context, cycleID string, start time.Time) {
	o.lastCycle.Store(o.now().UnixNano())
	o.logger.InfoContext(ctx, "engine: cycle finished",
		slog.String("cycle_id", cycleID),
		slog.Duration("took", o.now().Sub(start)),
		slog.Int("open_positions", o.tracker.Len()),
	)
	o.publish(ctx, domain.EventCycleFinished, map[string]any{
		"cycle_id":       cycleID,
		"took_ms":        o.now().Sub(start).Milliseconds(),
		"open_positions": o.tracker.Len(),
	})
}

// acquirePhase scans the feed, ranks candidates, and tries to open at most
// one position from the top-ranked symbol.
func (o *Orchestrator) acquirePhase(ctx context.Context, cycleID string) {
	posts := o.searchPosts(ctx)
	candidates := o.ranker.Rank(posts)
	if len(candidates) == 0 {
		o.logger.InfoContext(ctx, "engine: no candidates this cycle",
			slog.String("cycle_id", cycleID),
			slog.Int("posts", len(posts)),
		)
		o.mirror(ctx, domain.EventScanEmpty, "Scan finished",
			fmt.Sprintf("no candidates found for query %q", o.cfg.SearchQuery),
			map[string]any{"cycle_id": cycleID, "posts": len(posts)},
		)
		return
	}

	top := candidates[0]
	o.logger.InfoContext(ctx, "engine: top candidate",
		slog.String("cycle_id", cycleID),
		slog.String("symbol", top.Symbol),
		slog.Float64("score", top.Score),
		slog.Int("candidates", len(candidates)),
	)
	o.publish(ctx, domain.EventCandidateRanked, map[string]any{
		"cycle_id":   cycleID,
		"symbol":     top.Symbol,
		"score":      top.Score,
		"candidates": len(candidates),
	})

	snap, verdict, reason := o.gate.Admit(ctx, top.Symbol)
	switch verdict {
	case VerdictNoData:
		o.mirror(ctx, domain.EventMarketDataGap, "No market data: $"+top.Symbol, reason,
			map[string]any{"cycle_id": cycleID, "symbol": top.Symbol, "reason": reason},
		)
		return
	case VerdictReject:
		o.mirror(ctx, domain.EventAdmissionBlocked, "Entry blocked: $"+top.Symbol, reason,
			map[string]any{"cycle_id": cycleID, "symbol": top.Symbol, "reason": reason},
		)
		return
	}

	o.mirror(ctx, domain.EventAdmissionPassed, "Entry admitted: $"+top.Symbol, reason,
		map[string]any{
			"cycle_id":   cycleID,
			"symbol":     top.Symbol,
			"price":      snap.PriceUSD,
			"market_cap": snap.MarketCapUSD,
		},
	)

	if err := o.tracker.CanOpen(top.Symbol); err != nil {
		o.logger.InfoContext(ctx, "engine: entry skipped",
			slog.String("cycle_id", cycleID),
			slog.String("symbol", top.Symbol),
			slog.String("reason", err.Error()),
		)
		o.mirror(ctx, domain.EventAdmissionBlocked, "Entry skipped: $"+top.Symbol, err.Error(),
			map[string]any{"cycle_id": cycleID, "symbol": top.Symbol, "reason": err.Error()},
		)
		return
	}

	if o.cfg.DryRun {
		o.mirror(ctx, domain.EventBuyExecuted, "[dry-run] Would buy $"+top.Symbol,
			fmt.Sprintf("entry %.6f, target x%.1f (%.6f), size %.4f",
				snap.PriceUSD, o.cfg.TargetMultiplier, snap.PriceUSD*o.cfg.TargetMultiplier, o.cfg.TradeSize),
			map[string]any{"cycle_id": cycleID, "symbol": top.Symbol, "dry_run": true},
		)
		return
	}

	receipt, err := o.venue.SubmitBuy(ctx, snap, o.cfg.TradeSize)
	if err != nil {
		o.logger.ErrorContext(ctx, "engine: buy submission failed",
			slog.String("cycle_id", cycleID),
			slog.String("symbol", top.Symbol),
			slog.String("error", err.Error()),
		)
		o.mirror(ctx, domain.EventBuyFailed, "Buy failed: $"+top.Symbol, err.Error(),
			map[string]any{"cycle_id": cycleID, "symbol": top.Symbol, "error": err.Error()},
		)
		return
	}

	pos, err := o.tracker.TryOpen(snap, o.cfg.TradeSize, o.cfg.TargetMultiplier, receipt.TxHash, o.now().UTC())
	if err != nil {
		// The pre-check above makes this unreachable inside one cycle;
		// surface it loudly rather than losing a settled buy.
		o.logger.ErrorContext(ctx, "engine: settled buy could not be tracked",
			slog.String("symbol", top.Symbol),
			slog.String("error", err.Error()),
		)
		return
	}
	o.budget.Record()

	if o.journal != nil {
		if err := o.journal.RecordOpen(ctx, openRecord(pos)); err != nil {
			o.logger.WarnContext(ctx, "engine: journal open failed",
				slog.String("position_id", pos.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	o.logger.InfoContext(ctx, "engine: position opened",
		slog.String("cycle_id", cycleID),
		slog.String("symbol", pos.Symbol),
		slog.Float64("entry_price", pos.EntryPrice),
		slog.Float64("target_price", pos.TargetPrice()),
		slog.String("tx", receipt.TxHash),
	)
	o.mirror(ctx, domain.EventBuyExecuted, "Bought $"+pos.Symbol,
		fmt.Sprintf("entry %.6f, target x%.1f (%.6f), size %.4f",
			pos.EntryPrice, pos.TargetMultiplier, pos.TargetPrice(), pos.Size),
		map[string]any{
			"cycle_id":     cycleID,
			"position_id":  pos.ID,
			"symbol":       pos.Symbol,
			"entry_price":  pos.EntryPrice,
			"target_price": pos.TargetPrice(),
			"size":         pos.Size,
			"tx":           receipt.TxHash,
		},
	)
}

// liquidatePhase sweeps the carried positions in insertion order and sells
// the ones whose fresh price hit target or whose hold time expired. Missing
// market data always holds.
func (o *Orchestrator) liquidatePhase(ctx context.Context, cycleID string, carried []string) {
	for _, symbol := range carried {
		pos, ok := o.tracker.Get(symbol)
		if !ok {
			continue
		}

		snap, err := o.gate.Snapshot(ctx, symbol)
		if err != nil {
			o.logger.WarnContext(ctx, "engine: sweep lookup failed, holding",
				slog.String("cycle_id", cycleID),
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			o.mirror(ctx, domain.EventMarketDataGap, "No market data: $"+symbol,
				"holding position, no fresh price",
				map[string]any{"cycle_id": cycleID, "symbol": symbol},
			)
			continue
		}

		action, reason := EvaluateExit(pos, snap.PriceUSD, pos.Age(o.now().UTC()), o.cfg.MaxHold)
		if action == ActionHold {
			o.logger.DebugContext(ctx, "engine: holding",
				slog.String("cycle_id", cycleID),
				slog.String("symbol", symbol),
				slog.String("reason", reason),
			)
			continue
		}

		if !o.budget.CanAct() {
			bs := o.budget.Snapshot()
			o.logger.InfoContext(ctx, "engine: budget exhausted mid-sweep",
				slog.String("cycle_id", cycleID),
				slog.Int("used", bs.Used),
				slog.Int("limit", bs.Limit),
			)
			o.mirror(ctx, domain.EventBudgetExhausted, "Budget exhausted",
				fmt.Sprintf("operations %d/%d used, remaining exits wait for the next window",
					bs.Used, bs.Limit),
				map[string]any{"cycle_id": cycleID, "used": bs.Used, "limit": bs.Limit},
			)
			return
		}

		o.sellPosition(ctx, cycleID, pos, snap, action, reason)
	}
}

func (o *Orchestrator) sellPosition(ctx context.Context, cycleID string, pos domain.Position, snap domain.MarketSnapshot, action ExitAction, reason string) {
	profit := pos.ProfitPercent(snap.PriceUSD)

	if o.cfg.DryRun {
		o.mirror(ctx, domain.EventSellExecuted, "[dry-run] Would sell $"+pos.Symbol,
			fmt.Sprintf("exit %.6f, entry %.6f, profit %+.2f%% (%s)",
				snap.PriceUSD, pos.EntryPrice, profit, reason),
			map[string]any{"cycle_id": cycleID, "symbol": pos.Symbol, "dry_run": true},
		)
		return
	}

	receipt, err := o.venue.SubmitSell(ctx, pos, snap)
	if err != nil {
		o.logger.ErrorContext(ctx, "engine: sell submission failed",
			slog.String("cycle_id", cycleID),
			slog.String("symbol", pos.Symbol),
			slog.String("error", err.Error()),
		)
		o.mirror(ctx, domain.EventSellFailed, "Sell failed: $"+pos.Symbol, err.Error(),
			map[string]any{"cycle_id": cycleID, "symbol": pos.Symbol, "error": err.Error()},
		)
		return
	}

	closed, ok := o.tracker.Close(pos.Symbol)
	if !ok {
		o.logger.ErrorContext(ctx, "engine: sold position missing from tracker",
			slog.String("symbol", pos.Symbol),
		)
		return
	}
	o.budget.Record()

	closedAt := o.now().UTC()
	if o.journal != nil {
		if err := o.journal.RecordClose(ctx, closed.ID, snap.PriceUSD, profit, receipt.TxHash, action.String(), closedAt); err != nil {
			o.logger.WarnContext(ctx, "engine: journal close failed",
				slog.String("position_id", closed.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	event := domain.EventSellExecuted
	title := "Sold $" + closed.Symbol
	if action == ActionExpire {
		event = domain.EventPositionExpired
		title = "Expired $" + closed.Symbol
	}

	o.logger.InfoContext(ctx, "engine: position closed",
		slog.String("cycle_id", cycleID),
		slog.String("symbol", closed.Symbol),
		slog.String("action", action.String()),
		slog.Float64("exit_price", snap.PriceUSD),
		slog.Float64("profit_pct", profit),
		slog.String("tx", receipt.TxHash),
	)
	o.mirror(ctx, event, title,
		fmt.Sprintf("exit %.6f, entry %.6f, profit %+.2f%% (%s)",
			snap.PriceUSD, closed.EntryPrice, profit, reason),
		map[string]any{
			"cycle_id":    cycleID,
			"position_id": closed.ID,
			"symbol":      closed.Symbol,
			"action":      action.String(),
			"exit_price":  snap.PriceUSD,
			"entry_price": closed.EntryPrice,
			"profit_pct":  profit,
			"tx":          receipt.TxHash,
		},
	)
}

// searchPosts queries the social feed with the per-call timeout and filters
// out posts already seen in earlier cycles. Feed trouble degrades to an
// empty scan; dedup trouble fails open and keeps the post.
func (o *Orchestrator) searchPosts(ctx context.Context) []domain.Post {
	cctx := ctx
	if o.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, o.cfg.CallTimeout)
		defer cancel()
	}

	posts, err := o.feed.Search(cctx, o.cfg.SearchQuery, o.cfg.SearchLimit)
	if err != nil {
		o.logger.WarnContext(ctx, "engine: feed search failed, continuing with empty scan",
			slog.String("query", o.cfg.SearchQuery),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if o.seen == nil {
		return posts
	}

	fresh := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		first, err := o.seen.MarkSeen(ctx, p.ID)
		if err != nil {
			o.logger.WarnContext(ctx, "engine: seen-store check failed, keeping post",
				slog.String("post_id", p.ID),
				slog.String("error", err.Error()),
			)
			fresh = append(fresh, p)
			continue
		}
		if first {
			fresh = append(fresh, p)
		}
	}
	return fresh
}

// Status returns the engine state summary for the status surfaces.
func (o *Orchestrator) Status() domain.EngineStatus {
	var last time.Time
	if ns := o.lastCycle.Load(); ns > 0 {
		last = time.Unix(0, ns).UTC()
	}
	return domain.EngineStatus{
		Budget:        o.budget.Snapshot(),
		OpenPositions: o.tracker.Len(),
		CyclesRun:     o.cycles.Load(),
		TicksDropped:  o.dropped.Load(),
		LastCycleAt:   last,
		DryRun:        o.cfg.DryRun,
	}
}

// Positions returns the open positions in insertion order.
func (o *Orchestrator) Positions() []domain.Position {
	return o.tracker.List()
}

// mirror reports one decision everywhere it is observable: the notification
// channel, the decision bus, and the audit log. Reporting never propagates
// errors into the decision path.
func (o *Orchestrator) mirror(ctx context.Context, event, title, message string, fields map[string]any) {
	if err := o.rep.Notify(ctx, event, title, message); err != nil {
		o.logger.WarnContext(ctx, "engine: notify failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
	o.publish(ctx, event, fields)
	if o.audit != nil {
		if err := o.audit.Log(ctx, event, fields); err != nil {
			o.logger.WarnContext(ctx, "engine: audit log failed",
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
		}
	}
}

// publish pushes a decision event onto the bus for dashboard subscribers.
func (o *Orchestrator) publish(ctx context.Context, event string, fields map[string]any) {
	if o.bus == nil {
		return
	}
	payload := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		payload[k] = v
	}
	payload["event"] = event
	payload["at"] = o.now().UTC().Format(time.RFC3339)

	evt, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := o.bus.Publish(ctx, domain.DecisionChannel, evt); err != nil {
		o.logger.WarnContext(ctx, "engine: publish event failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// openRecord maps a new position onto its journal row.
func openRecord(pos domain.Position) domain.TradeRecord {
	return domain.TradeRecord{
		ID:               pos.ID,
		Symbol:           pos.Symbol,
		TokenAddress:     pos.TokenAddress,
		EntryPrice:       pos.EntryPrice,
		Size:             pos.Size,
		TargetMultiplier: pos.TargetMultiplier,
		Status:           domain.TradeStatusOpen,
		EntryTx:          pos.EntryTx,
		OpenedAt:         pos.OpenedAt,
	}
}
