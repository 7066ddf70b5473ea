package solana

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"solarb/internal/domain"
)

// secretKeyLen is the length of an ed25519 secret key (seed + public half).
const secretKeyLen = 64

// parsePrivateKey accepts the two credential formats operators use: a
// base58-encoded secret key, or the bracketed JSON numeric array written by
// solana-keygen.
func parsePrivateKey(material string) (solana.PrivateKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, fmt.Errorf("solana: empty key material: %w", domain.ErrWalletLoadFailed)
	}

	if strings.HasPrefix(material, "[") {
		return parseKeyArray(material)
	}

	key, err := solana.PrivateKeyFromBase58(material)
	if err != nil {
		return nil, fmt.Errorf("solana: decode base58 key: %v: %w", err, domain.ErrWalletLoadFailed)
	}
	if len(key) != secretKeyLen {
		return nil, fmt.Errorf("solana: key is %d bytes, want %d: %w", len(key), secretKeyLen, domain.ErrWalletLoadFailed)
	}
	return key, nil
}

func parseKeyArray(material string) (solana.PrivateKey, error) {
	var vals []int
	if err := json.Unmarshal([]byte(material), &vals); err != nil {
		return nil, fmt.Errorf("solana: decode key array: %v: %w", err, domain.ErrWalletLoadFailed)
	}
	if len(vals) != secretKeyLen {
		return nil, fmt.Errorf("solana: key array has %d entries, want %d: %w", len(vals), secretKeyLen, domain.ErrWalletLoadFailed)
	}

	key := make(solana.PrivateKey, secretKeyLen)
	for i, v := range vals {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("solana: key array entry %d out of byte range: %w", i, domain.ErrWalletLoadFailed)
		}
		key[i] = byte(v)
	}
	return key, nil
}
