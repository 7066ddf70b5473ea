package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solarb/internal/domain"
)

// BotConfigStore implements domain.BotConfigStore using PostgreSQL.
type BotConfigStore struct {
	pool *pgxpool.Pool
}

// NewBotConfigStore creates a BotConfigStore backed by the given pool.
func NewBotConfigStore(pool *pgxpool.Pool) *BotConfigStore {
	return &BotConfigStore{pool: pool}
}

const botConfigCols = `id, name,
	token_a_symbol, token_a_mint, token_a_decimals,
	token_b_symbol, token_b_mint, token_b_decimals,
	profit_threshold, max_trade_amount, scan_interval_sec, slippage_bps,
	mock_mode, private_key, active, created_at, updated_at`

func scanBotConfig(row pgx.Row) (*domain.BotConfig, error) {
	var c domain.BotConfig
	err := row.Scan(
		&c.ID, &c.Name,
		&c.TokenASymbol, &c.TokenAMint, &c.TokenADecimals,
		&c.TokenBSymbol, &c.TokenBMint, &c.TokenBDecimals,
		&c.ProfitThreshold, &c.MaxTradeAmount, &c.ScanIntervalSec, &c.SlippageBps,
		&c.MockMode, &c.PrivateKey, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new bot configuration.
func (s *BotConfigStore) Create(ctx context.Context, cfg *domain.BotConfig) error {
	const query = `
		INSERT INTO bot_configs (` + botConfigCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := s.pool.Exec(ctx, query,
		cfg.ID, cfg.Name,
		cfg.TokenASymbol, cfg.TokenAMint, cfg.TokenADecimals,
		cfg.TokenBSymbol, cfg.TokenBMint, cfg.TokenBDecimals,
		cfg.ProfitThreshold, cfg.MaxTradeAmount, cfg.ScanIntervalSec, cfg.SlippageBps,
		cfg.MockMode, cfg.PrivateKey, cfg.Active, cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create bot config: %w", err)
	}
	return nil
}

// Get returns the configuration with the given id, or domain.ErrNotFound.
func (s *BotConfigStore) Get(ctx context.Context, id string) (*domain.BotConfig, error) {
	const query = `SELECT ` + botConfigCols + ` FROM bot_configs WHERE id = $1`
	cfg, err := scanBotConfig(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get bot config: %w", err)
	}
	return cfg, nil
}

// Update rewrites all mutable fields of an existing configuration.
func (s *BotConfigStore) Update(ctx context.Context, cfg *domain.BotConfig) error {
	const query = `
		UPDATE bot_configs SET
			name = $2,
			token_a_symbol = $3, token_a_mint = $4, token_a_decimals = $5,
			token_b_symbol = $6, token_b_mint = $7, token_b_decimals = $8,
			profit_threshold = $9, max_trade_amount = $10,
			scan_interval_sec = $11, slippage_bps = $12,
			mock_mode = $13, private_key = $14, active = $15,
			updated_at = NOW()
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query,
		cfg.ID, cfg.Name,
		cfg.TokenASymbol, cfg.TokenAMint, cfg.TokenADecimals,
		cfg.TokenBSymbol, cfg.TokenBMint, cfg.TokenBDecimals,
		cfg.ProfitThreshold, cfg.MaxTradeAmount, cfg.ScanIntervalSec, cfg.SlippageBps,
		cfg.MockMode, cfg.PrivateKey, cfg.Active,
	)
	if err != nil {
		return fmt.Errorf("postgres: update bot config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns all configurations, newest first.
func (s *BotConfigStore) List(ctx context.Context) ([]domain.BotConfig, error) {
	const query = `SELECT ` + botConfigCols + ` FROM bot_configs ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bot configs: %w", err)
	}
	defer rows.Close()

	var configs []domain.BotConfig
	for rows.Next() {
		cfg, err := scanBotConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan bot config: %w", err)
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

var _ domain.BotConfigStore = (*BotConfigStore)(nil)
