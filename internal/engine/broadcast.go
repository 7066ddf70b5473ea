package engine

import (
	"context"
	"encoding/json"
	"log/slog"

	"solarb/internal/domain"
)

// Broadcaster publishes engine events on the signal bus, one channel per
// event type. Publishing is fire-and-forget: bus errors are logged, never
// propagated.
type Broadcaster struct {
	bus    domain.SignalBus
	logger *slog.Logger
}

// NewBroadcaster creates a Broadcaster over the given bus.
func NewBroadcaster(bus domain.SignalBus, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		bus:    bus,
		logger: logger.With(slog.String("component", "broadcaster")),
	}
}

// BotStatus publishes a lifecycle transition.
func (b *Broadcaster) BotStatus(ctx context.Context, p domain.BotStatusPayload) {
	b.publish(ctx, domain.EventBotStatus, domain.NewEvent(domain.EventBotStatus, p))
}

// Opportunity publishes a detected opportunity.
func (b *Broadcaster) Opportunity(ctx context.Context, o *domain.Opportunity) {
	b.publish(ctx, domain.EventOpportunity, domain.OpportunityEvent(o))
}

// Trade publishes a trade state transition.
func (b *Broadcaster) Trade(ctx context.Context, t *domain.Trade) {
	b.publish(ctx, domain.EventTrade, domain.TradeEvent(t))
}

func (b *Broadcaster) publish(ctx context.Context, channel string, ev domain.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.ErrorContext(ctx, "marshal event failed",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := b.bus.Publish(ctx, channel, payload); err != nil {
		b.logger.WarnContext(ctx, "publish event failed",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
	}
}
