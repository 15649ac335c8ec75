package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	s3blob "github.com/noor961/Meme-coin--7/internal/blob/s3"
	"github.com/noor961/Meme-coin--7/internal/engine"
	"github.com/noor961/Meme-coin--7/internal/notify"
	"github.com/noor961/Meme-coin--7/internal/pipeline"
	"github.com/noor961/Meme-coin--7/internal/server"
	"github.com/noor961/Meme-coin--7/internal/server/handler"
	"github.com/noor961/Meme-coin--7/internal/server/ws"
)

// TradeMode runs the live decision engine: scan, rank, gate, buy, and sweep
// positions for exits on every cycle. The HTTP API and the Telegram command
// poller start alongside when enabled.
func (a *App) TradeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting trade mode")

	g, ctx := errgroup.WithContext(ctx)

	eng, err := a.buildEngine(deps, false)
	if err != nil {
		return fmt.Errorf("trade mode: %w", err)
	}
	g.Go(func() error {
		return eng.Run(ctx)
	})

	a.startCommandPoller(ctx, g, eng)

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, eng)
	}

	return g.Wait()
}

// MonitorMode runs the engine in dry-run: it scans, ranks, gates, and reports
// every decision, but never submits an order and never mutates positions or
// the budget. The API surfaces show what the bot would have done.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode (dry-run)")

	g, ctx := errgroup.WithContext(ctx)

	eng, err := a.buildEngine(deps, true)
	if err != nil {
		return fmt.Errorf("monitor mode: %w", err)
	}
	g.Go(func() error {
		return eng.Run(ctx)
	})

	a.startCommandPoller(ctx, g, eng)

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, eng)
	}

	return g.Wait()
}

// FullMode runs the live engine plus the journal retention archiver that
// exports aged trades and audit rows to object storage and prunes them.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	eng, err := a.buildEngine(deps, false)
	if err != nil {
		return fmt.Errorf("full mode: %w", err)
	}
	g.Go(func() error {
		return eng.Run(ctx)
	})

	if a.cfg.Archive.Enabled {
		if deps.Archiver == nil {
			a.logger.WarnContext(ctx, "archive.enabled is set but the archiver is not wired, skipping retention loop")
		} else {
			arch := pipeline.NewArchiver(deps.Archiver, deps.Journal, deps.Audit, a.cfg.Archive.RetentionDays, a.logger)
			g.Go(func() error {
				return arch.RunLoop(ctx, a.cfg.Archive.Interval.Duration)
			})
		}
	}

	a.startCommandPoller(ctx, g, eng)

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, eng)
	}

	return g.Wait()
}

// buildEngine assembles the decision engine from config and the wired
// collaborators. Entries always target the bottom of the configured
// multiplier range; the top is a config bound, not a runtime input.
func (a *App) buildEngine(deps *Dependencies, dryRun bool) (*engine.Orchestrator, error) {
	ec := a.cfg.Engine
	return engine.New(engine.Config{
		Interval:         ec.Interval.Duration,
		SearchQuery:      ec.SearchQuery,
		SearchLimit:      ec.SearchLimit,
		MaxOperations:    ec.MaxOperations,
		BudgetReset:      engine.ResetMode(ec.BudgetReset),
		BudgetWindow:     ec.BudgetWindow.Duration,
		PriceCeiling:     ec.PriceCeiling,
		CapTarget:        ec.CapTarget,
		CapBand:          ec.CapBand,
		TargetMultiplier: ec.MinMultiplier,
		TradeSize:        ec.TradeSize,
		MaxOpenPositions: ec.MaxOpenPositions,
		MaxHold:          ec.MaxHold.Duration,
		CallTimeout:      ec.CallTimeout.Duration,
		DryRun:           dryRun,
	}, engine.Deps{
		Feed:     deps.Feed,
		Market:   deps.Market,
		Venue:    deps.Venue,
		Ranker:   deps.Ranker,
		Reporter: deps.Notifier,
		Bus:      deps.Bus,
		Audit:    deps.Audit,
		Journal:  deps.Journal,
		Seen:     deps.Seen,
		Locks:    deps.Locks,
	}, a.logger)
}

// startCommandPoller adds the Telegram command poller goroutine when operator
// commands are enabled in config.
func (a *App) startCommandPoller(ctx context.Context, g *errgroup.Group, eng *engine.Orchestrator) {
	if !a.cfg.Notify.CommandsEnabled {
		return
	}
	poller := notify.NewCommandPoller(
		a.cfg.Notify.TelegramToken,
		a.cfg.Notify.TelegramChatID,
		eng,
		a.logger,
	)
	g.Go(func() error {
		return poller.Run(ctx)
	})
}

// startHTTPServer adds the API server goroutines to the group: the server
// itself, a shutdown watcher, and the WebSocket hub when the event bus is
// wired. Handlers for optional backends register only when those backends
// exist; their routes 404 otherwise.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, eng *engine.Orchestrator) {
	startedAt := time.Now().UTC()
	mode := strings.ToLower(a.cfg.Mode)

	health := handler.NewHealthHandler(a.logger)
	if deps.Redis != nil {
		health = health.WithCheck("redis", deps.Redis)
	}
	if deps.Postgres != nil {
		health = health.WithCheck("postgres", deps.Postgres)
	}
	if deps.Blob != nil {
		health = health.WithCheck("s3", deps.Blob)
	}

	handlers := server.Handlers{
		Health:    health,
		Status:    handler.NewStatusHandler(eng, mode, deps.Venue.Name(), startedAt),
		Positions: handler.NewPositionHandler(eng),
		Cycle:     handler.NewCycleHandler(eng, a.logger),
	}
	if deps.Journal != nil {
		handlers.Trades = handler.NewTradeHandler(deps.Journal, a.logger)
	}
	if deps.Blob != nil {
		handlers.Archives = handler.NewArchiveHandler(s3blob.NewReader(deps.Blob), a.logger)
	}

	var hub *ws.Hub
	if deps.Bus != nil {
		hub = ws.NewHub(deps.Bus, eng, a.logger, ws.Config{
			Mode:      mode,
			Venue:     deps.Venue.Name(),
			StartedAt: startedAt,
		})
		g.Go(func() error {
			return hub.Run(ctx)
		})
	} else {
		a.logger.InfoContext(ctx, "event bus not wired, /ws disabled")
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.Limiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
