package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"solarb/internal/domain"
	"solarb/internal/engine"
)

type fakeEngine struct {
	status     engine.Status
	startErr   error
	stopErr    error
	startCalls int
	stopCalls  int
	lastCfg    *domain.BotConfig
}

func (f *fakeEngine) Start(ctx context.Context, cfg *domain.BotConfig) error {
	f.startCalls++
	f.lastCfg = cfg
	if f.startErr != nil {
		return f.startErr
	}
	f.status = engine.Status{Running: true, Config: cfg}
	return nil
}

func (f *fakeEngine) Stop(ctx context.Context) error {
	f.stopCalls++
	if f.stopErr != nil {
		return f.stopErr
	}
	f.status = engine.Status{}
	return nil
}

func (f *fakeEngine) Status() engine.Status {
	return f.status
}

type mockConfigStore struct {
	mock.Mock
}

func (m *mockConfigStore) Create(ctx context.Context, cfg *domain.BotConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *mockConfigStore) Get(ctx context.Context, id string) (*domain.BotConfig, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.BotConfig), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockConfigStore) Update(ctx context.Context, cfg *domain.BotConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *mockConfigStore) List(ctx context.Context) ([]domain.BotConfig, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.BotConfig), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func storedConfig() *domain.BotConfig {
	return &domain.BotConfig{
		ID:              "cfg-1",
		Name:            "sol-usdc",
		TokenAMint:      "So11111111111111111111111111111111111111112",
		TokenBMint:      "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		ProfitThreshold: 0.5,
		MaxTradeAmount:  100_000_000,
		ScanIntervalSec: 10,
		MockMode:        true,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestBotHandler_Status(t *testing.T) {
	eng := &fakeEngine{status: engine.Status{Running: true, ErrorCount: 2}}
	h := NewBotHandler(eng, new(mockConfigStore), "cfg-1", testLogger())

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/bot/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var st engine.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.Running)
	assert.Equal(t, 2, st.ErrorCount)
}

func TestBotHandler_Start(t *testing.T) {
	t.Run("explicit config id", func(t *testing.T) {
		eng := &fakeEngine{}
		store := new(mockConfigStore)
		cfg := storedConfig()
		store.On("Get", mock.Anything, "cfg-1").Return(cfg, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.BotConfig) bool {
			return c.ID == "cfg-1" && c.Active
		})).Return(nil)

		h := NewBotHandler(eng, store, "", testLogger())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/bot/start", strings.NewReader(`{"configId":"cfg-1"}`))
		h.Start(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, eng.startCalls)
		assert.Same(t, cfg, eng.lastCfg)
		store.AssertExpectations(t)
	})

	t.Run("empty body falls back to default", func(t *testing.T) {
		eng := &fakeEngine{}
		store := new(mockConfigStore)
		store.On("Get", mock.Anything, "default-cfg").Return(storedConfig(), nil)
		store.On("Update", mock.Anything, mock.Anything).Return(nil)

		h := NewBotHandler(eng, store, "default-cfg", testLogger())
		rec := httptest.NewRecorder()
		h.Start(rec, httptest.NewRequest(http.MethodPost, "/api/bot/start", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, eng.startCalls)
	})

	t.Run("no config id anywhere", func(t *testing.T) {
		h := NewBotHandler(&fakeEngine{}, new(mockConfigStore), "", testLogger())
		rec := httptest.NewRecorder()
		h.Start(rec, httptest.NewRequest(http.MethodPost, "/api/bot/start", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown config", func(t *testing.T) {
		store := new(mockConfigStore)
		store.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

		h := NewBotHandler(&fakeEngine{}, store, "", testLogger())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/bot/start", strings.NewReader(`{"configId":"ghost"}`))
		h.Start(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("already running", func(t *testing.T) {
		eng := &fakeEngine{startErr: domain.ErrAlreadyRunning}
		store := new(mockConfigStore)
		store.On("Get", mock.Anything, "cfg-1").Return(storedConfig(), nil)

		h := NewBotHandler(eng, store, "cfg-1", testLogger())
		rec := httptest.NewRecorder()
		h.Start(rec, httptest.NewRequest(http.MethodPost, "/api/bot/start", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		store.AssertNotCalled(t, "Update")
	})

	t.Run("wallet load failure", func(t *testing.T) {
		eng := &fakeEngine{startErr: domain.ErrWalletLoadFailed}
		store := new(mockConfigStore)
		store.On("Get", mock.Anything, "cfg-1").Return(storedConfig(), nil)

		h := NewBotHandler(eng, store, "cfg-1", testLogger())
		rec := httptest.NewRecorder()
		h.Start(rec, httptest.NewRequest(http.MethodPost, "/api/bot/start", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestBotHandler_Stop(t *testing.T) {
	t.Run("running engine", func(t *testing.T) {
		cfg := storedConfig()
		eng := &fakeEngine{status: engine.Status{Running: true, Config: cfg}}
		store := new(mockConfigStore)
		store.On("Get", mock.Anything, "cfg-1").Return(cfg, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.BotConfig) bool {
			return !c.Active
		})).Return(nil)

		h := NewBotHandler(eng, store, "cfg-1", testLogger())
		rec := httptest.NewRecorder()
		h.Stop(rec, httptest.NewRequest(http.MethodPost, "/api/bot/stop", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, eng.stopCalls)
		store.AssertExpectations(t)
	})

	t.Run("idle engine", func(t *testing.T) {
		eng := &fakeEngine{}
		store := new(mockConfigStore)

		h := NewBotHandler(eng, store, "cfg-1", testLogger())
		rec := httptest.NewRecorder()
		h.Stop(rec, httptest.NewRequest(http.MethodPost, "/api/bot/stop", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		store.AssertNotCalled(t, "Update")
	})
}
