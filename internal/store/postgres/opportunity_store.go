package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solarb/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppSelectCols = `id, config_id, token_a, token_b,
	price_a, price_b, profit_amount, profit_pct, amount_required,
	detected_at, was_executed, trade_id`

func scanOpportunityRows(rows pgx.Rows) ([]domain.Opportunity, error) {
	var opps []domain.Opportunity
	for rows.Next() {
		var o domain.Opportunity
		if err := rows.Scan(
			&o.ID, &o.ConfigID, &o.TokenA, &o.TokenB,
			&o.PriceA, &o.PriceB, &o.ProfitAmount, &o.ProfitPct, &o.AmountRequired,
			&o.DetectedAt, &o.WasExecuted, &o.TradeID,
		); err != nil {
			return nil, err
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

// Create inserts a detected opportunity.
func (s *OpportunityStore) Create(ctx context.Context, o *domain.Opportunity) error {
	const query = `
		INSERT INTO opportunities (` + oppSelectCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := s.pool.Exec(ctx, query,
		o.ID, o.ConfigID, o.TokenA, o.TokenB,
		o.PriceA, o.PriceB, o.ProfitAmount, o.ProfitPct, o.AmountRequired,
		o.DetectedAt, o.WasExecuted, o.TradeID,
	)
	if err != nil {
		return fmt.Errorf("postgres: create opportunity: %w", err)
	}
	return nil
}

// MarkExecuted links a completed trade to its originating opportunity.
func (s *OpportunityStore) MarkExecuted(ctx context.Context, id, tradeID string) error {
	const query = `UPDATE opportunities SET was_executed = TRUE, trade_id = $2 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, tradeID)
	if err != nil {
		return fmt.Errorf("postgres: mark opportunity executed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRecent returns the most recent opportunities, newest first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT ` + oppSelectCols + ` FROM opportunities
		ORDER BY detected_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	opps, err := scanOpportunityRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent opportunities: %w", err)
	}
	return opps, nil
}

// ListBefore returns all opportunities detected strictly before the given
// time, oldest first, for archiving.
func (s *OpportunityStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Opportunity, error) {
	const query = `SELECT ` + oppSelectCols + ` FROM opportunities
		WHERE detected_at < $1 ORDER BY detected_at ASC`
	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities before: %w", err)
	}
	defer rows.Close()
	return scanOpportunityRows(rows)
}

// DeleteBefore deletes all opportunities detected before the given time.
// Returns the number deleted.
func (s *OpportunityStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM opportunities WHERE detected_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete opportunities before: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)
