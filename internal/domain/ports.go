package domain

import "context"

// QuoteSource prices conversions and produces unsigned swap transactions for
// a priced route. Implemented by the Jupiter aggregator client.
type QuoteSource interface {
	// GetQuote prices the conversion of amount base units of inputMint into
	// outputMint. Returns ErrNoRoute (wrapped) when the aggregator knows the
	// pair but has no route for it; any transport or decode problem is a
	// plain error.
	GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*Quote, error)

	// GetSwapTransaction builds the unsigned transaction executing quote for
	// userPublicKey and returns it base64-encoded.
	GetSwapTransaction(ctx context.Context, quote *Quote, userPublicKey string) (string, error)
}

// ChainClient signs, submits, and confirms transactions and reads balances.
// Implemented by the Solana RPC client.
type ChainClient interface {
	// LoadWallet parses credential material (base58 string or bracketed JSON
	// numeric array) and holds the key for subsequent signing.
	LoadWallet(material string) error
	HasWallet() bool
	// PublicKey returns the loaded wallet's public key in base58, or "" when
	// no wallet is loaded.
	PublicKey() string

	// ExecuteTransaction decodes a base64 unsigned transaction, signs it with
	// the loaded wallet, submits it, and blocks until the chain reports a
	// terminal state or the client's own confirmation timeout elapses.
	// Returns the transaction signature in base58.
	ExecuteTransaction(ctx context.Context, base64Tx string) (string, error)

	// GetBalance returns the wallet's balance of the given mint in base units.
	GetBalance(ctx context.Context, mint string) (uint64, error)
}

// SignalBus is the fire-and-forget fan-out transport carrying events from the
// engine to observers. Implemented on Redis Pub/Sub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of raw payloads. The subscription and the
	// returned channel are closed when ctx is cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
