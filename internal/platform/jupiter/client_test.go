package jupiter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarb/internal/domain"
)

const (
	mintSOL  = "So11111111111111111111111111111111111111112"
	mintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func TestClient_GetQuote(t *testing.T) {
	quoteBody := `{
		"inputMint": "` + mintSOL + `",
		"inAmount": "1000000000",
		"outputMint": "` + mintUSDC + `",
		"outAmount": "150000000",
		"otherAmountThreshold": "149250000",
		"swapMode": "ExactIn",
		"slippageBps": 50,
		"priceImpactPct": "0.0012",
		"routePlan": [{"percent": 100}]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v6/quote", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, mintSOL, q.Get("inputMint"))
		assert.Equal(t, mintUSDC, q.Get("outputMint"))
		assert.Equal(t, "1000000000", q.Get("amount"))
		assert.Equal(t, "50", q.Get("slippageBps"))
		io.WriteString(w, quoteBody)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	quote, err := c.GetQuote(context.Background(), mintSOL, mintUSDC, 1_000_000_000, 50)
	require.NoError(t, err)

	assert.Equal(t, mintSOL, quote.InputMint)
	assert.Equal(t, uint64(1_000_000_000), quote.InAmount)
	assert.Equal(t, mintUSDC, quote.OutputMint)
	assert.Equal(t, uint64(150_000_000), quote.OutAmount)
	assert.Equal(t, 50, quote.SlippageBps)
	assert.InDelta(t, 0.0012, quote.PriceImpactPct, 1e-12)
	assert.JSONEq(t, quoteBody, string(quote.Raw))
}

func TestClient_GetQuoteNoRoute(t *testing.T) {
	t.Run("error code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"Could not find any route","errorCode":"COULD_NOT_FIND_ANY_ROUTE"}`)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, time.Second)
		quote, err := c.GetQuote(context.Background(), mintSOL, mintUSDC, 1000, 50)
		assert.Nil(t, quote)
		assert.ErrorIs(t, err, domain.ErrNoRoute)
	})

	t.Run("error message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"No route found for the requested pair"}`)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, time.Second)
		_, err := c.GetQuote(context.Background(), mintSOL, mintUSDC, 1000, 50)
		assert.ErrorIs(t, err, domain.ErrNoRoute)
	})

	t.Run("plain server error is not a no-route", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `upstream exploded`)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, time.Second)
		_, err := c.GetQuote(context.Background(), mintSOL, mintUSDC, 1000, 50)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNoRoute)
		assert.Contains(t, err.Error(), "status 500")
	})
}

func TestClient_GetQuoteBadAmounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"inAmount":"1000","outAmount":"not-a-number"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetQuote(context.Background(), mintSOL, mintUSDC, 1000, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outAmount")
}

func TestClient_GetSwapTransaction(t *testing.T) {
	raw := json.RawMessage(`{"inAmount":"1000","outAmount":"990","routePlan":[]}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v6/swap", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			QuoteResponse    json.RawMessage `json:"quoteResponse"`
			UserPublicKey    string          `json:"userPublicKey"`
			WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.JSONEq(t, string(raw), string(req.QuoteResponse))
		assert.Equal(t, "owner-pubkey", req.UserPublicKey)
		assert.True(t, req.WrapAndUnwrapSol)

		io.WriteString(w, `{"swapTransaction":"c2lnbmVkLXR4","lastValidBlockHeight":12345}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	tx, err := c.GetSwapTransaction(context.Background(), &domain.Quote{Raw: raw}, "owner-pubkey")
	require.NoError(t, err)
	assert.Equal(t, "c2lnbmVkLXR4", tx)
}

func TestClient_GetSwapTransactionRequiresRoutePayload(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", time.Second)
	_, err := c.GetSwapTransaction(context.Background(), &domain.Quote{}, "owner-pubkey")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route payload")
}
