package solana

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarb/internal/domain"
)

func testKeyBytes() []byte {
	raw := make([]byte, secretKeyLen)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return raw
}

func intArrayJSON(t *testing.T, vals []int) string {
	t.Helper()
	out, err := json.Marshal(vals)
	require.NoError(t, err)
	return string(out)
}

func keyArrayJSON(t *testing.T, raw []byte) string {
	t.Helper()
	vals := make([]int, len(raw))
	for i, b := range raw {
		vals[i] = int(b)
	}
	return intArrayJSON(t, vals)
}

func TestParsePrivateKey_Base58(t *testing.T) {
	raw := testKeyBytes()
	encoded := solanago.PrivateKey(raw).String()

	key, err := parsePrivateKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, []byte(key))
}

func TestParsePrivateKey_JSONArray(t *testing.T) {
	raw := testKeyBytes()

	key, err := parsePrivateKey(keyArrayJSON(t, raw))
	require.NoError(t, err)
	assert.Equal(t, raw, []byte(key))
}

func TestParsePrivateKey_TrimsWhitespace(t *testing.T) {
	raw := testKeyBytes()
	key, err := parsePrivateKey("  " + keyArrayJSON(t, raw) + "\n")
	require.NoError(t, err)
	assert.Equal(t, raw, []byte(key))
}

func TestParsePrivateKey_Rejections(t *testing.T) {
	outOfRange := make([]int, secretKeyLen)
	for i := range outOfRange {
		outOfRange[i] = i
	}
	outOfRange[7] = 300

	cases := []struct {
		name     string
		material string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"malformed base58", "not-a-key!"},
		{"truncated base58 key", solanago.PrivateKey(testKeyBytes()[:32]).String()},
		{"short array", keyArrayJSON(t, testKeyBytes()[:secretKeyLen-1])},
		{"array entry out of range", intArrayJSON(t, outOfRange)},
		{"array not json", "[1, 2,"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := parsePrivateKey(tc.material)
			assert.Nil(t, key)
			assert.ErrorIs(t, err, domain.ErrWalletLoadFailed)
		})
	}
}

func TestClient_WalletLifecycle(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	c := NewClient(ClientConfig{RPCEndpoint: "http://127.0.0.1:0"}, logger)

	assert.False(t, c.HasWallet())
	assert.Empty(t, c.PublicKey())

	raw := testKeyBytes()
	require.NoError(t, c.LoadWallet(solanago.PrivateKey(raw).String()))
	assert.True(t, c.HasWallet())
	assert.Equal(t, solanago.PrivateKey(raw).PublicKey().String(), c.PublicKey())

	// A bad reload leaves the previously loaded wallet in place.
	err := c.LoadWallet("definitely wrong")
	assert.ErrorIs(t, err, domain.ErrWalletLoadFailed)
	assert.True(t, c.HasWallet())
}
