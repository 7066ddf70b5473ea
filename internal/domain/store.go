package domain

import (
	"context"
	"time"
)

// BotConfigStore persists bot configurations.
type BotConfigStore interface {
	Create(ctx context.Context, cfg *BotConfig) error
	Get(ctx context.Context, id string) (*BotConfig, error)
	Update(ctx context.Context, cfg *BotConfig) error
	List(ctx context.Context) ([]BotConfig, error)
}

// OpportunityStore persists detected opportunities. The engine treats all
// writes as best-effort; implementations return errors, the caller decides
// whether to swallow them.
type OpportunityStore interface {
	Create(ctx context.Context, o *Opportunity) error
	// MarkExecuted flips WasExecuted and links the trade id. Called exactly
	// once per opportunity, only after the linked trade completed.
	MarkExecuted(ctx context.Context, id, tradeID string) error
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
	ListBefore(ctx context.Context, before time.Time) ([]Opportunity, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// TradeStore persists trade records.
type TradeStore interface {
	Create(ctx context.Context, t *Trade) error
	// UpdateResult writes the terminal state of a trade: status, amounts,
	// signature, and error message.
	UpdateResult(ctx context.Context, t *Trade) error
	ListRecent(ctx context.Context, limit int) ([]Trade, error)
	ListBefore(ctx context.Context, before time.Time) ([]Trade, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
