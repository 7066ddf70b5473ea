package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"solarb/internal/domain"
	"solarb/internal/engine"
)

// BotEngine is the engine surface the bot handler drives.
type BotEngine interface {
	Start(ctx context.Context, cfg *domain.BotConfig) error
	Stop(ctx context.Context) error
	Status() engine.Status
}

// BotHandler exposes engine lifecycle control over HTTP.
type BotHandler struct {
	engine          BotEngine
	configs         domain.BotConfigStore
	defaultConfigID string
	logger          *slog.Logger
}

// NewBotHandler creates a BotHandler. defaultConfigID names the stored
// configuration used when a start request carries no config id.
func NewBotHandler(eng BotEngine, configs domain.BotConfigStore, defaultConfigID string, logger *slog.Logger) *BotHandler {
	return &BotHandler{
		engine:          eng,
		configs:         configs,
		defaultConfigID: defaultConfigID,
		logger:          logger.With(slog.String("handler", "bot")),
	}
}

type startRequest struct {
	ConfigID string `json:"configId"`
}

// Status reports the engine's current state.
// GET /api/bot/status
func (h *BotHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Status())
}

// Start activates the engine for a stored configuration. The body may name a
// config id; otherwise the default configuration is used.
// POST /api/bot/start
func (h *BotHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = h.defaultConfigID
	}
	if configID == "" {
		writeError(w, http.StatusBadRequest, "no config id given and no default configured")
		return
	}

	cfg, err := h.configs.Get(r.Context(), configID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "config not found: "+configID)
			return
		}
		h.logger.ErrorContext(r.Context(), "load config", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load config")
		return
	}

	if err := h.engine.Start(r.Context(), cfg); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyRunning):
			writeError(w, http.StatusConflict, "bot is already running")
		case errors.Is(err, domain.ErrWalletLoadFailed):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.ErrorContext(r.Context(), "start engine", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "failed to start bot")
		}
		return
	}

	// Persisting the active flag is best-effort; the engine is the source
	// of truth for run state.
	cfg.Active = true
	if err := h.configs.Update(r.Context(), cfg); err != nil {
		h.logger.WarnContext(r.Context(), "persist active flag", slog.Any("error", err))
	}

	writeJSON(w, http.StatusOK, h.engine.Status())
}

// Stop deactivates the engine. Stopping an idle engine succeeds.
// POST /api/bot/stop
func (h *BotHandler) Stop(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Status()

	if err := h.engine.Stop(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "stop engine", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to stop bot")
		return
	}

	if st.Running && st.Config != nil {
		if cfg, err := h.configs.Get(r.Context(), st.Config.ID); err == nil {
			cfg.Active = false
			if err := h.configs.Update(r.Context(), cfg); err != nil {
				h.logger.WarnContext(r.Context(), "persist active flag", slog.Any("error", err))
			}
		}
	}

	writeJSON(w, http.StatusOK, h.engine.Status())
}
