package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"solarb/internal/domain"
)

func TestConfigHandler_Create(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		store := new(mockConfigStore)
		var created *domain.BotConfig
		store.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.BotConfig)
		}).Return(nil)

		h := NewConfigHandler(store, testLogger())
		body := `{
			"name": "sol-usdc",
			"tokenASymbol": "SOL",
			"tokenAMint": "So11111111111111111111111111111111111111112",
			"tokenBSymbol": "USDC",
			"tokenBMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			"profitThreshold": 0.5,
			"maxTradeAmount": 100000000,
			"scanIntervalSec": 10,
			"mockMode": false,
			"privateKey": "wallet-secret"
		}`
		rec := httptest.NewRecorder()
		h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/configs", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, created)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "wallet-secret", created.PrivateKey)

		// The key is write-only: never echoed in the response.
		assert.NotContains(t, rec.Body.String(), "wallet-secret")
		assert.NotContains(t, rec.Body.String(), "privateKey")

		var dto map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, "sol-usdc", dto["name"])
	})

	t.Run("live config without key", func(t *testing.T) {
		h := NewConfigHandler(new(mockConfigStore), testLogger())
		body := `{
			"name": "sol-usdc",
			"tokenAMint": "mint-a",
			"tokenBMint": "mint-b",
			"maxTradeAmount": 1000,
			"scanIntervalSec": 10,
			"mockMode": false
		}`
		rec := httptest.NewRecorder()
		h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/configs", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "privateKey is required")
	})

	t.Run("identical mints", func(t *testing.T) {
		h := NewConfigHandler(new(mockConfigStore), testLogger())
		body := `{
			"name": "broken",
			"tokenAMint": "same-mint",
			"tokenBMint": "same-mint",
			"maxTradeAmount": 1000,
			"scanIntervalSec": 10,
			"mockMode": true
		}`
		rec := httptest.NewRecorder()
		h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/configs", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "mints must differ")
	})
}

func TestConfigHandler_Update(t *testing.T) {
	t.Run("empty private key keeps stored key", func(t *testing.T) {
		existing := storedConfig()
		existing.PrivateKey = "stored-secret"
		existing.MockMode = false

		store := new(mockConfigStore)
		store.On("Get", mock.Anything, "cfg-1").Return(existing, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.BotConfig) bool {
			return c.PrivateKey == "stored-secret" && c.ProfitThreshold == 1.0
		})).Return(nil)

		h := NewConfigHandler(store, testLogger())
		body := `{
			"name": "sol-usdc",
			"tokenAMint": "So11111111111111111111111111111111111111112",
			"tokenBMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			"profitThreshold": 1.0,
			"maxTradeAmount": 100000000,
			"scanIntervalSec": 10,
			"mockMode": false
		}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/configs/cfg-1", strings.NewReader(body))
		req.SetPathValue("id", "cfg-1")
		h.Update(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		store.AssertExpectations(t)
		assert.NotContains(t, rec.Body.String(), "stored-secret")
	})

	t.Run("unknown id", func(t *testing.T) {
		store := new(mockConfigStore)
		store.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

		h := NewConfigHandler(store, testLogger())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/configs/ghost", strings.NewReader(`{}`))
		req.SetPathValue("id", "ghost")
		h.Update(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestConfigHandler_List(t *testing.T) {
	store := new(mockConfigStore)
	cfg := storedConfig()
	cfg.PrivateKey = "stored-secret"
	store.On("List", mock.Anything).Return([]domain.BotConfig{*cfg}, nil)

	h := NewConfigHandler(store, testLogger())
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/configs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var dtos []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 1)
	assert.Equal(t, "cfg-1", dtos[0]["id"])
	assert.NotContains(t, rec.Body.String(), "stored-secret")
}
