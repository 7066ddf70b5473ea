package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"solarb/internal/domain"
)

// Event types operators can subscribe to in the notify configuration.
const (
	EventTradeCompleted = "trade_completed"
	EventTradeFailed    = "trade_failed"
	EventBotStopped     = "bot_stopped"
)

// Watcher listens on the signal bus and forwards selected engine events as
// operator notifications.
type Watcher struct {
	bus      domain.SignalBus
	notifier *Notifier
	logger   *slog.Logger
}

// NewWatcher creates a Watcher over the given bus and notifier.
func NewWatcher(bus domain.SignalBus, notifier *Notifier, logger *slog.Logger) *Watcher {
	return &Watcher{
		bus:      bus,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "notify_watcher")),
	}
}

// Run consumes the trade and bot_status channels until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	trades, err := w.bus.Subscribe(ctx, domain.EventTrade)
	if err != nil {
		return fmt.Errorf("notify: subscribe trades: %w", err)
	}
	statuses, err := w.bus.Subscribe(ctx, domain.EventBotStatus)
	if err != nil {
		return fmt.Errorf("notify: subscribe bot status: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-trades:
			if !ok {
				return nil
			}
			w.handleTrade(ctx, data)
		case data, ok := <-statuses:
			if !ok {
				return nil
			}
			w.handleBotStatus(ctx, data)
		}
	}
}

func (w *Watcher) handleTrade(ctx context.Context, data []byte) {
	var ev struct {
		Payload domain.TradePayload `json:"payload"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		w.logger.WarnContext(ctx, "bad trade event", slog.Any("error", err))
		return
	}
	p := ev.Payload

	switch domain.TradeStatus(p.Status) {
	case domain.TradeCompleted:
		msg := fmt.Sprintf("%s/%s: in %d, out %d, profit %d (%.4f%%)\nsignature: %s",
			p.TokenA, p.TokenB, p.AmountIn, p.AmountOut, p.Profit, p.ProfitPercentage, p.TxSignature)
		if p.IsMock {
			msg += "\n(mock)"
		}
		if err := w.notifier.Notify(ctx, EventTradeCompleted, "Trade completed", msg); err != nil {
			w.logger.WarnContext(ctx, "notify failed", slog.Any("error", err))
		}
	case domain.TradeFailed:
		msg := fmt.Sprintf("%s/%s: in %d\n%s", p.TokenA, p.TokenB, p.AmountIn, p.ErrorMessage)
		if err := w.notifier.Notify(ctx, EventTradeFailed, "Trade failed", msg); err != nil {
			w.logger.WarnContext(ctx, "notify failed", slog.Any("error", err))
		}
	}
}

func (w *Watcher) handleBotStatus(ctx context.Context, data []byte) {
	var ev struct {
		Payload domain.BotStatusPayload `json:"payload"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		w.logger.WarnContext(ctx, "bad bot status event", slog.Any("error", err))
		return
	}
	p := ev.Payload

	// Only error shutdowns are notification-worthy; manual stops are routine.
	if p.IsRunning || p.ErrorMessage == "" {
		return
	}
	if err := w.notifier.Notify(ctx, EventBotStopped, "Bot stopped", p.ErrorMessage); err != nil {
		w.logger.WarnContext(ctx, "notify failed", slog.Any("error", err))
	}
}
