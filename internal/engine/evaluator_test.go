package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarb/internal/domain"
)

func TestEvaluator_RoundTripProfit(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	quotes := newFakeQuotes()
	ev := NewEvaluator(quotes, logger)

	cfg := testConfig()
	cfg.MaxTradeAmount = 100_000_000 // 0.1 SOL in
	quotes.out[mintSOL] = 15_000_000 // 15 USDC out
	quotes.out[mintUSDC] = 100_700_000

	opp, err := ev.Evaluate(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, opp)

	assert.Equal(t, int64(700_000), opp.ProfitAmount)
	assert.InDelta(t, 0.7, opp.ProfitPct, 1e-9)
	assert.Equal(t, uint64(100_000_000), opp.AmountRequired)
	assert.Equal(t, "cfg-1", opp.ConfigID)
	assert.Equal(t, "SOL", opp.TokenA)
	assert.Equal(t, "USDC", opp.TokenB)

	// 0.1 SOL bought 15 USDC; 15 USDC bought back 0.1007 SOL.
	assert.InDelta(t, 150.0, opp.PriceA, 1e-9)
	assert.InDelta(t, 0.1007/15.0, opp.PriceB, 1e-12)

	assert.NotEmpty(t, opp.ID)
	assert.False(t, opp.WasExecuted)
	assert.Nil(t, opp.TradeID)
	assert.Equal(t, 2, quotes.quoteCalls)
}

func TestEvaluator_SecondLegSizedByFirst(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	quotes := newFakeQuotes()
	ev := NewEvaluator(quotes, logger)

	cfg := testConfig()
	quotes.out[mintSOL] = 42_000_000
	quotes.out[mintUSDC] = cfg.MaxTradeAmount

	opp, err := ev.Evaluate(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, opp)
	assert.Equal(t, int64(0), opp.ProfitAmount)
	assert.InDelta(t, 0.0, opp.ProfitPct, 1e-9)

	require.Len(t, quotes.calls, 2)
	assert.Equal(t, quoteCall{inputMint: mintSOL, amount: cfg.MaxTradeAmount}, quotes.calls[0])
	assert.Equal(t, quoteCall{inputMint: mintUSDC, amount: 42_000_000}, quotes.calls[1])
}

func TestEvaluator_NoRouteIsNotAnError(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("first leg", func(t *testing.T) {
		quotes := newFakeQuotes()
		quotes.errs[mintSOL] = fmt.Errorf("jupiter: %w", domain.ErrNoRoute)
		ev := NewEvaluator(quotes, logger)

		opp, err := ev.Evaluate(context.Background(), testConfig())
		assert.NoError(t, err)
		assert.Nil(t, opp)
	})

	t.Run("second leg", func(t *testing.T) {
		quotes := newFakeQuotes()
		quotes.out[mintSOL] = 150_000_000
		quotes.errs[mintUSDC] = fmt.Errorf("jupiter: %w", domain.ErrNoRoute)
		ev := NewEvaluator(quotes, logger)

		opp, err := ev.Evaluate(context.Background(), testConfig())
		assert.NoError(t, err)
		assert.Nil(t, opp)
	})
}

func TestEvaluator_TransportErrorPropagates(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	quotes := newFakeQuotes()
	upstream := errors.New("connection reset")
	quotes.errs[mintSOL] = upstream
	ev := NewEvaluator(quotes, logger)

	opp, err := ev.Evaluate(context.Background(), testConfig())
	require.Error(t, err)
	assert.Nil(t, opp)
	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "quote leg 1")
}
