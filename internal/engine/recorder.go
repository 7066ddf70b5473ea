package engine

import (
	"context"
	"log/slog"

	"solarb/internal/domain"
)

// Recorder wraps the opportunity and trade stores with the engine's
// persistence policy: every write is best-effort. Storage errors are logged
// and swallowed so they never feed the engine's error budget, which is
// reserved for pricing-path failures.
type Recorder struct {
	opps   domain.OpportunityStore
	trades domain.TradeStore
	logger *slog.Logger
}

// NewRecorder creates a Recorder over the given stores.
func NewRecorder(opps domain.OpportunityStore, trades domain.TradeStore, logger *slog.Logger) *Recorder {
	return &Recorder{
		opps:   opps,
		trades: trades,
		logger: logger.With(slog.String("component", "recorder")),
	}
}

// SaveOpportunity persists a detected opportunity.
func (r *Recorder) SaveOpportunity(ctx context.Context, o *domain.Opportunity) {
	if err := r.opps.Create(ctx, o); err != nil {
		r.logger.ErrorContext(ctx, "persist opportunity failed",
			slog.String("opportunity_id", o.ID),
			slog.String("error", err.Error()),
		)
	}
}

// MarkOpportunityExecuted links a completed trade to its opportunity.
func (r *Recorder) MarkOpportunityExecuted(ctx context.Context, oppID, tradeID string) {
	if err := r.opps.MarkExecuted(ctx, oppID, tradeID); err != nil {
		r.logger.ErrorContext(ctx, "mark opportunity executed failed",
			slog.String("opportunity_id", oppID),
			slog.String("trade_id", tradeID),
			slog.String("error", err.Error()),
		)
	}
}

// SaveTrade persists a freshly created pending trade.
func (r *Recorder) SaveTrade(ctx context.Context, t *domain.Trade) {
	if err := r.trades.Create(ctx, t); err != nil {
		r.logger.ErrorContext(ctx, "persist trade failed",
			slog.String("trade_id", t.ID),
			slog.String("error", err.Error()),
		)
	}
}

// UpdateTrade writes a trade's terminal state.
func (r *Recorder) UpdateTrade(ctx context.Context, t *domain.Trade) {
	if err := r.trades.UpdateResult(ctx, t); err != nil {
		r.logger.ErrorContext(ctx, "update trade failed",
			slog.String("trade_id", t.ID),
			slog.String("status", string(t.Status)),
			slog.String("error", err.Error()),
		)
	}
}
