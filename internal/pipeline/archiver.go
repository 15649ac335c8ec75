// Package pipeline contains the periodic data movers that run beside the
// engine. The only mover in this bot is the journal retention archiver.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// JournalPruner deletes journal rows that have been archived.
// Satisfied by domain.TradeJournal.
type JournalPruner interface {
	DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error)
}

// AuditPruner deletes audit rows that have been archived.
// Satisfied by domain.AuditStore.
type AuditPruner interface {
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// Archiver moves aged journal data to object storage and then prunes it from
// the database. Rows are only deleted after their export succeeded; a failed
// export leaves the rows in place for the next run.
type Archiver struct {
	archiver      domain.Archiver
	journal       JournalPruner
	audit         AuditPruner
	retentionDays int
	logger        *slog.Logger
}

// NewArchiver creates an Archiver. journal and audit may be nil, in which case
// the corresponding rows are exported but never pruned.
func NewArchiver(archiver domain.Archiver, journal JournalPruner, audit AuditPruner, retentionDays int, logger *slog.Logger) *Archiver {
	return &Archiver{
		archiver:      archiver,
		journal:       journal,
		audit:         audit,
		retentionDays: retentionDays,
		logger:        logger.With(slog.String("component", "archiver")),
	}
}

// Run executes a single archive pass. It calculates the cutoff from the
// retention window, exports closed trades and audit entries older than the
// cutoff, and prunes whichever exports succeeded.
func (a *Archiver) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -a.retentionDays)
	a.logger.InfoContext(ctx, "starting archive run",
		slog.Time("cutoff", cutoff),
		slog.Int("retention_days", a.retentionDays),
	)

	tradesArchived, tradesErr := a.archiver.ArchiveTrades(ctx, cutoff)
	if tradesErr != nil {
		a.logger.ErrorContext(ctx, "trade export failed, rows kept",
			slog.String("error", tradesErr.Error()),
		)
	} else if tradesArchived > 0 && a.journal != nil {
		pruned, err := a.journal.DeleteClosedBefore(ctx, cutoff)
		if err != nil {
			a.logger.ErrorContext(ctx, "trade prune failed",
				slog.String("error", err.Error()),
			)
		} else {
			a.logger.InfoContext(ctx, "archived trades",
				slog.Int64("exported", tradesArchived),
				slog.Int64("pruned", pruned),
			)
		}
	}

	auditArchived, auditErr := a.archiver.ArchiveAudit(ctx, cutoff)
	if auditErr != nil {
		a.logger.ErrorContext(ctx, "audit export failed, rows kept",
			slog.String("error", auditErr.Error()),
		)
	} else if auditArchived > 0 && a.audit != nil {
		pruned, err := a.audit.DeleteBefore(ctx, cutoff)
		if err != nil {
			a.logger.ErrorContext(ctx, "audit prune failed",
				slog.String("error", err.Error()),
			)
		} else {
			a.logger.InfoContext(ctx, "archived audit entries",
				slog.Int64("exported", auditArchived),
				slog.Int64("pruned", pruned),
			)
		}
	}

	if tradesErr != nil || auditErr != nil {
		return fmt.Errorf("pipeline: archive run incomplete (trades: %v, audit: %v)", tradesErr, auditErr)
	}

	a.logger.InfoContext(ctx, "archive run complete",
		slog.Int64("trades_archived", tradesArchived),
		slog.Int64("audit_archived", auditArchived),
	)
	return nil
}

// RunLoop runs one archive pass immediately and then one per interval until
// the context is cancelled. Failed passes are logged and retried on the next
// tick rather than stopping the loop.
func (a *Archiver) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	a.logger.InfoContext(ctx, "archiver loop started", slog.Duration("interval", interval))

	if err := a.Run(ctx); err != nil {
		a.logger.WarnContext(ctx, "archive run failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.InfoContext(ctx, "archiver loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := a.Run(ctx); err != nil {
				a.logger.WarnContext(ctx, "archive run failed", slog.String("error", err.Error()))
			}
		}
	}
}
