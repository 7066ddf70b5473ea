package domain

import "time"

// Opportunity is a detected round-trip pricing snapshot. It is immutable once
// created except for the execution-linkage fields (WasExecuted, TradeID),
// which are set exactly once after the linked trade completes.
type Opportunity struct {
	ID       string
	ConfigID string
	TokenA   string
	TokenB   string

	// PriceA and PriceB are the effective per-leg exchange rates derived from
	// the two quotes, so they include slippage and fees baked into the route.
	PriceA float64
	PriceB float64

	// ProfitAmount is the absolute round-trip gain in tokenA base units.
	// Negative for a loss-making snapshot.
	ProfitAmount int64
	ProfitPct    float64

	// AmountRequired is the input amount the snapshot was priced at.
	AmountRequired uint64

	DetectedAt  time.Time
	WasExecuted bool
	TradeID     *string
}
