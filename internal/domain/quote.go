package domain

import "encoding/json"

// Quote is the priced result of converting an input amount of one token into
// another through the aggregator. Quotes are ephemeral: produced and consumed
// within a single evaluation, never persisted.
type Quote struct {
	InputMint      string
	InAmount       uint64
	OutputMint     string
	OutAmount      uint64
	SlippageBps    int
	PriceImpactPct float64

	// Raw is the aggregator's full route payload, passed back verbatim when
	// building the swap transaction for this quote.
	Raw json.RawMessage
}
