package domain

import "time"

// TradeStatus is the lifecycle state of one attempted round-trip execution.
// A trade is created pending and transitions exactly once to completed or
// failed; terminal states are never left.
type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeCompleted TradeStatus = "completed"
	TradeFailed    TradeStatus = "failed"
)

// Trade records one attempted two-leg execution.
type Trade struct {
	ID       string
	ConfigID string
	TokenA   string
	TokenB   string

	// AmountIn is the first-leg input in tokenA base units. AmountOut, Profit
	// and ProfitPct stay zero until the trade resolves; on completion they
	// come from the executor's confirmed amounts, not the detection estimate.
	AmountIn  uint64
	AmountOut uint64
	Profit    int64
	ProfitPct float64

	// TxSignature is set only on success. Mock executions carry a synthetic
	// MOCK- prefixed signature.
	TxSignature  string
	Status       TradeStatus
	ErrorMessage string
	ExecutedAt   time.Time
	IsMock       bool
}
