package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"solarb/internal/domain"
)

// Evaluator computes round-trip profitability for a pair from two fresh
// quotes. It performs no I/O beyond the quote source and never treats an
// unprofitable result as an error; only plumbing failures (transport, decode)
// come back as errors. A route-less pair yields (nil, nil).
type Evaluator struct {
	quotes domain.QuoteSource
	logger *slog.Logger
}

// NewEvaluator creates an Evaluator over the given quote source.
func NewEvaluator(quotes domain.QuoteSource, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		quotes: quotes,
		logger: logger.With(slog.String("component", "evaluator")),
	}
}

// Evaluate prices one round trip of cfg.MaxTradeAmount through the pair and
// returns the resulting snapshot. The decision math runs in floating point;
// settlement amounts on completed trades come from the executor, not from
// this estimate.
func (ev *Evaluator) Evaluate(ctx context.Context, cfg *domain.BotConfig) (*domain.Opportunity, error) {
	amount := cfg.MaxTradeAmount

	leg1, err := ev.quotes.GetQuote(ctx, cfg.TokenAMint, cfg.TokenBMint, amount, cfg.SlippageBps)
	if err != nil {
		if isNoRoute(err) {
			ev.logger.DebugContext(ctx, "no route for first leg",
				slog.String("pair", cfg.TokenASymbol+"/"+cfg.TokenBSymbol),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("engine: quote leg 1: %w", err)
	}

	leg2, err := ev.quotes.GetQuote(ctx, cfg.TokenBMint, cfg.TokenAMint, leg1.OutAmount, cfg.SlippageBps)
	if err != nil {
		if isNoRoute(err) {
			ev.logger.DebugContext(ctx, "no route for second leg",
				slog.String("pair", cfg.TokenBSymbol+"/"+cfg.TokenASymbol),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("engine: quote leg 2: %w", err)
	}

	profit := int64(leg2.OutAmount) - int64(amount)
	profitPct := float64(profit) / float64(amount) * 100

	return &domain.Opportunity{
		ID:             uuid.NewString(),
		ConfigID:       cfg.ID,
		TokenA:         cfg.TokenASymbol,
		TokenB:         cfg.TokenBSymbol,
		PriceA:         effectivePrice(leg1, cfg.TokenADecimals, cfg.TokenBDecimals),
		PriceB:         effectivePrice(leg2, cfg.TokenBDecimals, cfg.TokenADecimals),
		ProfitAmount:   profit,
		ProfitPct:      profitPct,
		AmountRequired: amount,
		DetectedAt:     time.Now().UTC(),
	}, nil
}

// effectivePrice is the per-leg exchange rate out/in with both amounts scaled
// to whole-token units. Derived solely from the quote, it reflects slippage
// and fees baked into the route, not a mid-market price.
func effectivePrice(q *domain.Quote, inDecimals, outDecimals int) float64 {
	if q.InAmount == 0 {
		return 0
	}
	in := uiAmount(q.InAmount, inDecimals)
	out := uiAmount(q.OutAmount, outDecimals)
	price, _ := out.Div(in).Float64()
	return price
}

// uiAmount converts base units to a whole-token decimal amount.
func uiAmount(base uint64, decimals int) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(base), -int32(decimals))
}

// isNoRoute distinguishes the aggregator's "no route" answer (a valid no-data
// result) from plumbing failures.
func isNoRoute(err error) bool {
	return errors.Is(err, domain.ErrNoRoute)
}
