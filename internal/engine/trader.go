package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"solarb/internal/domain"
)

// defaultMockDelay simulates the latency of a live round trip in mock mode.
const defaultMockDelay = 2 * time.Second

// ExecutionResult is the executor's settlement ground truth for a completed
// round trip. Completed trades record these amounts, not the detection
// estimate.
type ExecutionResult struct {
	AmountOut   uint64
	Profit      int64
	ProfitPct   float64
	TxSignature string
}

// Executor attempts one round-trip trade for an already-detected opportunity,
// honoring the config's mock flag. A returned error is terminal for that
// trade only.
type Executor interface {
	ExecuteRoundTrip(ctx context.Context, cfg *domain.BotConfig, opp *domain.Opportunity) (*ExecutionResult, error)
}

// Trader is the production Executor. In mock mode it re-prices the round trip
// after an artificial delay and reports a synthetic signature; in live mode
// it drives both legs through the aggregator and the chain sequentially.
type Trader struct {
	quotes    domain.QuoteSource
	chain     domain.ChainClient
	evaluator *Evaluator
	logger    *slog.Logger
	mockDelay time.Duration
}

// NewTrader creates a Trader over the quote source and chain client.
func NewTrader(quotes domain.QuoteSource, chain domain.ChainClient, evaluator *Evaluator, logger *slog.Logger) *Trader {
	return &Trader{
		quotes:    quotes,
		chain:     chain,
		evaluator: evaluator,
		logger:    logger.With(slog.String("component", "trader")),
		mockDelay: defaultMockDelay,
	}
}

// ExecuteRoundTrip dispatches to the mock or live path.
func (t *Trader) ExecuteRoundTrip(ctx context.Context, cfg *domain.BotConfig, opp *domain.Opportunity) (*ExecutionResult, error) {
	if cfg.MockMode {
		return t.executeMock(ctx, cfg)
	}
	return t.executeLive(ctx, cfg)
}

// executeMock simulates a trade: wait out the artificial latency, then take a
// second independent pricing snapshot and settle at its numbers. The fresh
// snapshot may differ from the one that triggered the trade.
func (t *Trader) executeMock(ctx context.Context, cfg *domain.BotConfig) (*ExecutionResult, error) {
	select {
	case <-time.After(t.mockDelay):
	case <-ctx.Done():
		return nil, fmt.Errorf("trader: mock delay: %w", ctx.Err())
	}

	opp, err := t.evaluator.Evaluate(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("trader: re-evaluate: %v: %w", err, domain.ErrSimulationFailed)
	}
	if opp == nil {
		return nil, fmt.Errorf("trader: re-evaluate returned no route: %w", domain.ErrSimulationFailed)
	}

	amountOut := int64(cfg.MaxTradeAmount) + opp.ProfitAmount
	if amountOut < 0 {
		amountOut = 0
	}

	return &ExecutionResult{
		AmountOut:   uint64(amountOut),
		Profit:      opp.ProfitAmount,
		ProfitPct:   opp.ProfitPct,
		TxSignature: "MOCK-" + uuid.NewString(),
	}, nil
}

// executeLive drives both legs to confirmation. Each sub-step aborts the
// whole procedure with the failing step named in the error. A failure after
// the first leg confirmed leaves that leg's effect on chain as-is; the first
// leg's signature is carried in the error so an operator can unwind manually.
func (t *Trader) executeLive(ctx context.Context, cfg *domain.BotConfig) (*ExecutionResult, error) {
	if !t.chain.HasWallet() {
		return nil, domain.ErrWalletNotInitialized
	}
	owner := t.chain.PublicKey()
	amount := cfg.MaxTradeAmount

	// Leg 1: tokenA -> tokenB.
	leg1, err := t.quotes.GetQuote(ctx, cfg.TokenAMint, cfg.TokenBMint, amount, cfg.SlippageBps)
	if err != nil {
		return nil, fmt.Errorf("trader: leg 1 quote: %w", err)
	}
	tx1, err := t.quotes.GetSwapTransaction(ctx, leg1, owner)
	if err != nil {
		return nil, fmt.Errorf("trader: leg 1 swap build: %w", err)
	}
	sig1, err := t.chain.ExecuteTransaction(ctx, tx1)
	if err != nil {
		return nil, fmt.Errorf("trader: leg 1 submit: %w", err)
	}
	t.logger.InfoContext(ctx, "first leg confirmed",
		slog.String("signature", sig1),
		slog.Uint64("out_amount", leg1.OutAmount),
	)

	// Leg 2: tokenB -> tokenA, sized by leg 1's actual quoted output.
	leg2, err := t.quotes.GetQuote(ctx, cfg.TokenBMint, cfg.TokenAMint, leg1.OutAmount, cfg.SlippageBps)
	if err != nil {
		return nil, fmt.Errorf("trader: leg 2 quote (first leg confirmed %s): %w", sig1, err)
	}
	tx2, err := t.quotes.GetSwapTransaction(ctx, leg2, owner)
	if err != nil {
		return nil, fmt.Errorf("trader: leg 2 swap build (first leg confirmed %s): %w", sig1, err)
	}
	sig2, err := t.chain.ExecuteTransaction(ctx, tx2)
	if err != nil {
		return nil, fmt.Errorf("trader: leg 2 submit (first leg confirmed %s): %w", sig1, err)
	}

	profit := int64(leg2.OutAmount) - int64(amount)
	return &ExecutionResult{
		AmountOut:   leg2.OutAmount,
		Profit:      profit,
		ProfitPct:   float64(profit) / float64(amount) * 100,
		TxSignature: sig2,
	}, nil
}

// Compile-time interface check.
var _ Executor = (*Trader)(nil)
