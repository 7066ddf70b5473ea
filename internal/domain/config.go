// Package domain defines the core types, events, and collaborator interfaces
// shared across the bot: configurations, quotes, opportunities, trades, the
// persistence stores, and the signal bus used for event fan-out.
package domain

import "time"

// BotConfig describes one tradable pair and the parameters governing a single
// engine run. The engine holds a read-only reference to it while running.
type BotConfig struct {
	ID   string
	Name string

	// Token pair. Amounts are denominated in each token's base units
	// (e.g. lamports for a 9-decimal token).
	TokenASymbol   string
	TokenAMint     string
	TokenADecimals int
	TokenBSymbol   string
	TokenBMint     string
	TokenBDecimals int

	// ProfitThreshold is the minimum round-trip gain, in percent, required
	// before a trade is attempted.
	ProfitThreshold float64

	// MaxTradeAmount is the input size of each round trip, in tokenA base units.
	MaxTradeAmount uint64

	// ScanIntervalSec is the delay between scan ticks, in whole seconds (>= 1).
	ScanIntervalSec int

	// SlippageBps is forwarded to the quote aggregator on every quote request.
	SlippageBps int

	// MockMode simulates trade outcomes without submitting any transaction.
	MockMode bool

	// PrivateKey is the trading credential: either a base58-encoded secret key
	// or a bracketed JSON numeric array. Optional in mock mode.
	PrivateKey string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScanInterval returns the scan interval as a time.Duration, never below one
// second.
func (c *BotConfig) ScanInterval() time.Duration {
	sec := c.ScanIntervalSec
	if sec < 1 {
		sec = 1
	}
	return time.Duration(sec) * time.Second
}
