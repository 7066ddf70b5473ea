// Package solana implements domain.ChainClient against a Solana JSON-RPC
// node: it signs aggregator-built transactions with the loaded wallet,
// submits them, and polls signature status until a terminal state.
package solana

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"solarb/internal/domain"
)

// nativeMint is the wrapped-SOL mint; balances for it are read from the
// wallet's lamport balance rather than a token account.
const nativeMint = "So11111111111111111111111111111111111111112"

// ClientConfig holds the RPC endpoint and confirmation parameters.
type ClientConfig struct {
	RPCEndpoint    string
	ConfirmTimeout time.Duration
	ConfirmPoll    time.Duration
	SkipPreflight  bool
}

// Client talks to a Solana RPC node and holds the trading wallet loaded at
// engine start.
type Client struct {
	rpc            *rpc.Client
	confirmTimeout time.Duration
	confirmPoll    time.Duration
	skipPreflight  bool
	logger         *slog.Logger

	mu     sync.RWMutex
	wallet solanago.PrivateKey
}

// NewClient creates a Client for the given RPC endpoint. No wallet is loaded
// yet; LoadWallet installs one before live trading.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	confirmTimeout := cfg.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = 60 * time.Second
	}
	confirmPoll := cfg.ConfirmPoll
	if confirmPoll <= 0 {
		confirmPoll = 500 * time.Millisecond
	}
	return &Client{
		rpc:            rpc.New(cfg.RPCEndpoint),
		confirmTimeout: confirmTimeout,
		confirmPoll:    confirmPoll,
		skipPreflight:  cfg.SkipPreflight,
		logger:         logger.With(slog.String("component", "solana")),
	}
}

// LoadWallet parses credential material and installs the key for signing.
func (c *Client) LoadWallet(material string) error {
	key, err := parsePrivateKey(material)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.wallet = key
	c.mu.Unlock()

	c.logger.Info("wallet loaded", slog.String("pubkey", key.PublicKey().String()))
	return nil
}

// HasWallet reports whether a signing key is loaded.
func (c *Client) HasWallet() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wallet != nil
}

// PublicKey returns the loaded wallet's public key in base58, or "".
func (c *Client) PublicKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.wallet == nil {
		return ""
	}
	return c.wallet.PublicKey().String()
}

// ExecuteTransaction decodes a base64 unsigned transaction, refreshes its
// blockhash, signs it with the loaded wallet, submits it, and blocks until
// the chain reports a terminal state or the confirmation timeout elapses.
func (c *Client) ExecuteTransaction(ctx context.Context, base64Tx string) (string, error) {
	c.mu.RLock()
	wallet := c.wallet
	c.mu.RUnlock()
	if wallet == nil {
		return "", domain.ErrWalletNotInitialized
	}

	raw, err := base64.StdEncoding.DecodeString(base64Tx)
	if err != nil {
		return "", fmt.Errorf("solana: decode transaction: %w", err)
	}

	tx, err := solanago.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", fmt.Errorf("solana: deserialize transaction: %w", err)
	}

	// Aggregator-built transactions can carry a stale blockhash by the time
	// they are signed; always refresh before signing.
	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("solana: get latest blockhash: %w", err)
	}
	tx.Message.RecentBlockhash = recent.Value.Blockhash

	if _, err := tx.Sign(func(key solanago.PublicKey) *solanago.PrivateKey {
		if key.Equals(wallet.PublicKey()) {
			return &wallet
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("solana: sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       c.skipPreflight,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return "", fmt.Errorf("solana: send transaction: %w", err)
	}

	c.logger.Info("transaction submitted", slog.String("signature", sig.String()))

	if err := c.awaitConfirmation(ctx, sig); err != nil {
		return "", err
	}
	return sig.String(), nil
}

// awaitConfirmation polls signature status until the transaction is confirmed
// or finalized, fails on-chain, or the confirmation timeout elapses.
func (c *Client) awaitConfirmation(ctx context.Context, sig solanago.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.confirmPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("solana: %s: confirmation timed out: %w", sig, domain.ErrTxNotConfirmed)
		case <-ticker.C:
			out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				c.logger.Warn("signature status poll failed", slog.String("error", err.Error()))
				continue
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("solana: %s: transaction failed on chain: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}

// GetBalance returns the wallet's balance of the given mint in base units.
// The native mint reads the lamport balance; any other mint reads the
// associated token account.
func (c *Client) GetBalance(ctx context.Context, mint string) (uint64, error) {
	c.mu.RLock()
	wallet := c.wallet
	c.mu.RUnlock()
	if wallet == nil {
		return 0, domain.ErrWalletNotInitialized
	}
	owner := wallet.PublicKey()

	if mint == nativeMint {
		out, err := c.rpc.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
		if err != nil {
			return 0, fmt.Errorf("solana: get balance: %w", err)
		}
		return out.Value, nil
	}

	mintKey, err := solanago.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("solana: parse mint %s: %w", mint, err)
	}
	ata, _, err := solanago.FindAssociatedTokenAddress(owner, mintKey)
	if err != nil {
		return 0, fmt.Errorf("solana: derive token account: %w", err)
	}

	out, err := c.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("solana: get token balance: %w", err)
	}

	var amount uint64
	if _, err := fmt.Sscan(out.Value.Amount, &amount); err != nil {
		return 0, fmt.Errorf("solana: parse token balance %q: %w", out.Value.Amount, err)
	}
	return amount, nil
}

// Compile-time interface check.
var _ domain.ChainClient = (*Client)(nil)
