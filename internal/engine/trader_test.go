package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarb/internal/domain"
)

func newTestTrader(quotes *fakeQuotes, chain *fakeChain) *Trader {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	tr := NewTrader(quotes, chain, NewEvaluator(quotes, logger), logger)
	tr.mockDelay = 0
	return tr
}

func TestTrader_MockSettlesAtFreshQuote(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.out[mintSOL] = 150_000_000
	quotes.out[mintUSDC] = 1_007_000_000
	chain := newFakeChain()
	tr := newTestTrader(quotes, chain)

	cfg := testConfig()
	res, err := tr.ExecuteRoundTrip(context.Background(), cfg, &domain.Opportunity{})
	require.NoError(t, err)

	assert.Equal(t, uint64(1_007_000_000), res.AmountOut)
	assert.Equal(t, int64(7_000_000), res.Profit)
	assert.InDelta(t, 0.7, res.ProfitPct, 1e-9)
	assert.True(t, strings.HasPrefix(res.TxSignature, "MOCK-"))
	// Nothing touched the chain.
	assert.Empty(t, chain.executed)
}

func TestTrader_MockReEvaluationFailure(t *testing.T) {
	cfg := testConfig()

	t.Run("quote error", func(t *testing.T) {
		quotes := newFakeQuotes()
		quotes.errs[mintSOL] = errors.New("aggregator unreachable")
		tr := newTestTrader(quotes, newFakeChain())

		res, err := tr.ExecuteRoundTrip(context.Background(), cfg, &domain.Opportunity{})
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrSimulationFailed)
	})

	t.Run("route vanished", func(t *testing.T) {
		quotes := newFakeQuotes()
		quotes.errs[mintSOL] = fmt.Errorf("jupiter: %w", domain.ErrNoRoute)
		tr := newTestTrader(quotes, newFakeChain())

		res, err := tr.ExecuteRoundTrip(context.Background(), cfg, &domain.Opportunity{})
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrSimulationFailed)
	})
}

func TestTrader_MockDelayHonorsContext(t *testing.T) {
	quotes := newFakeQuotes()
	tr := newTestTrader(quotes, newFakeChain())
	tr.mockDelay = defaultMockDelay

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := tr.ExecuteRoundTrip(ctx, testConfig(), &domain.Opportunity{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, quotes.quoteCalls)
}

func TestTrader_LiveRequiresWallet(t *testing.T) {
	cfg := testConfig()
	cfg.MockMode = false

	tr := newTestTrader(newFakeQuotes(), newFakeChain())
	res, err := tr.ExecuteRoundTrip(context.Background(), cfg, &domain.Opportunity{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrWalletNotInitialized)
}

func TestTrader_LiveRoundTrip(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.out[mintSOL] = 150_000_000
	quotes.out[mintUSDC] = 1_007_000_000
	quotes.swapTx = "c2lnbmVkLXR4"

	chain := newFakeChain()
	require.NoError(t, chain.LoadWallet("key"))
	chain.sigs = []string{"sig-leg-1", "sig-leg-2"}

	cfg := testConfig()
	cfg.MockMode = false

	tr := newTestTrader(quotes, chain)
	res, err := tr.ExecuteRoundTrip(context.Background(), cfg, &domain.Opportunity{})
	require.NoError(t, err)

	assert.Equal(t, "sig-leg-2", res.TxSignature)
	assert.Equal(t, uint64(1_007_000_000), res.AmountOut)
	assert.Equal(t, int64(7_000_000), res.Profit)
	assert.InDelta(t, 0.7, res.ProfitPct, 1e-9)
	assert.Len(t, chain.executed, 2)
	assert.Equal(t, 2, quotes.swapCalls)

	// Leg 2 is sized by leg 1's quoted output, not the configured amount.
	require.Len(t, quotes.calls, 2)
	assert.Equal(t, quoteCall{inputMint: mintUSDC, amount: 150_000_000}, quotes.calls[1])
}

func TestTrader_LiveSecondLegFailureNamesFirstSignature(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.out[mintSOL] = 150_000_000
	quotes.out[mintUSDC] = 1_007_000_000
	quotes.swapTx = "c2lnbmVkLXR4"

	chain := newFakeChain()
	require.NoError(t, chain.LoadWallet("key"))
	chain.sigs = []string{"sig-leg-1"}
	chain.failAt = 1
	chain.execErr = errors.New("blockhash expired")

	cfg := testConfig()
	cfg.MockMode = false

	tr := newTestTrader(quotes, chain)
	res, err := tr.ExecuteRoundTrip(context.Background(), cfg, &domain.Opportunity{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "first leg confirmed sig-leg-1")
	assert.Contains(t, err.Error(), "blockhash expired")
}
