package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solarb/internal/domain"
)

// TradeStore implements domain.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *pgxpool.Pool
}

// NewTradeStore creates a TradeStore backed by the given pool.
func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

const tradeSelectCols = `id, config_id, token_a, token_b,
	amount_in, amount_out, profit, profit_pct,
	tx_signature, status, error_message, executed_at, is_mock`

func scanTradeRows(rows pgx.Rows) ([]domain.Trade, error) {
	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		if err := rows.Scan(
			&t.ID, &t.ConfigID, &t.TokenA, &t.TokenB,
			&t.AmountIn, &t.AmountOut, &t.Profit, &t.ProfitPct,
			&t.TxSignature, &t.Status, &t.ErrorMessage, &t.ExecutedAt, &t.IsMock,
		); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Create inserts a trade in its initial state.
func (s *TradeStore) Create(ctx context.Context, t *domain.Trade) error {
	const query = `
		INSERT INTO trades (` + tradeSelectCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := s.pool.Exec(ctx, query,
		t.ID, t.ConfigID, t.TokenA, t.TokenB,
		t.AmountIn, t.AmountOut, t.Profit, t.ProfitPct,
		t.TxSignature, t.Status, t.ErrorMessage, t.ExecutedAt, t.IsMock,
	)
	if err != nil {
		return fmt.Errorf("postgres: create trade: %w", err)
	}
	return nil
}

// UpdateResult writes the terminal state of a trade.
func (s *TradeStore) UpdateResult(ctx context.Context, t *domain.Trade) error {
	const query = `
		UPDATE trades SET
			amount_out = $2, profit = $3, profit_pct = $4,
			tx_signature = $5, status = $6, error_message = $7
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query,
		t.ID, t.AmountOut, t.Profit, t.ProfitPct,
		t.TxSignature, t.Status, t.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("postgres: update trade result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRecent returns the most recent trades, newest first.
func (s *TradeStore) ListRecent(ctx context.Context, limit int) ([]domain.Trade, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT ` + tradeSelectCols + ` FROM trades
		ORDER BY executed_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent trades: %w", err)
	}
	defer rows.Close()

	trades, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent trades: %w", err)
	}
	return trades, nil
}

// ListBefore returns all trades executed strictly before the given time, oldest
// first, for archiving.
func (s *TradeStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Trade, error) {
	const query = `SELECT ` + tradeSelectCols + ` FROM trades
		WHERE executed_at < $1 ORDER BY executed_at ASC`
	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades before: %w", err)
	}
	defer rows.Close()
	return scanTradeRows(rows)
}

// DeleteBefore deletes all trades executed before the given time. Returns the
// number deleted.
func (s *TradeStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trades WHERE executed_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete trades before: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ domain.TradeStore = (*TradeStore)(nil)
