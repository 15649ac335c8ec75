package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// JournalStore implements domain.TradeJournal using PostgreSQL. The journal is
// write-behind history; the engine never reads it on the trading path.
type JournalStore struct {
	pool *pgxpool.Pool
}

// NewJournalStore creates a new JournalStore backed by the given connection pool.
func NewJournalStore(pool *pgxpool.Pool) *JournalStore {
	return &JournalStore{pool: pool}
}

const tradeSelectCols = `id, symbol, token_address, entry_price, exit_price,
	size, target_multiplier, profit_pct, status, close_reason,
	entry_tx, exit_tx, opened_at, closed_at`

func scanTradeRows(rows pgx.Rows) ([]domain.TradeRecord, error) {
	var recs []domain.TradeRecord
	for rows.Next() {
		var r domain.TradeRecord
		if err := rows.Scan(
			&r.ID, &r.Symbol, &r.TokenAddress, &r.EntryPrice, &r.ExitPrice,
			&r.Size, &r.TargetMultiplier, &r.ProfitPct, &r.Status, &r.CloseReason,
			&r.EntryTx, &r.ExitTx, &r.OpenedAt, &r.ClosedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// RecordOpen inserts a freshly opened trade.
func (s *JournalStore) RecordOpen(ctx context.Context, rec domain.TradeRecord) error {
	const query = `
		INSERT INTO trades (
			id, symbol, token_address, entry_price, size,
			target_multiplier, status, entry_tx, opened_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.Symbol, rec.TokenAddress, rec.EntryPrice, rec.Size,
		rec.TargetMultiplier, domain.TradeStatusOpen, rec.EntryTx, rec.OpenedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: record open %s: %w", rec.Symbol, err)
	}
	return nil
}

// RecordClose marks a journaled trade as closed with its exit details.
func (s *JournalStore) RecordClose(ctx context.Context, id string, exitPrice, profitPct float64, exitTx, reason string, closedAt time.Time) error {
	const query = `
		UPDATE trades
		SET exit_price = $2, profit_pct = $3, exit_tx = $4,
			close_reason = $5, closed_at = $6, status = $7
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		id, exitPrice, profitPct, exitTx, reason, closedAt, domain.TradeStatusClosed,
	)
	if err != nil {
		return fmt.Errorf("postgres: record close %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: record close %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListRecent returns the newest trades first.
func (s *JournalStore) ListRecent(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM trades ORDER BY opened_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent trades: %w", err)
	}
	defer rows.Close()

	recs, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent trades: %w", err)
	}
	return recs, nil
}

// ListClosedBefore returns closed trades whose close time is strictly before
// the given time, oldest first (for archiving).
func (s *JournalStore) ListClosedBefore(ctx context.Context, before time.Time, limit int) ([]domain.TradeRecord, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM trades
		WHERE status = $1 AND closed_at < $2 ORDER BY closed_at ASC`
	args := []any{domain.TradeStatusClosed, before}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list closed trades before: %w", err)
	}
	defer rows.Close()

	recs, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan closed trades before: %w", err)
	}
	return recs, nil
}

// DeleteClosedBefore deletes closed trades whose close time is strictly before
// the given time. Returns the number deleted.
func (s *JournalStore) DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM trades WHERE status = $1 AND closed_at < $2`,
		domain.TradeStatusClosed, before,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete closed trades before: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.TradeJournal = (*JournalStore)(nil)
