package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"solarb/internal/domain"
)

// ConfigHandler serves CRUD for bot configurations.
type ConfigHandler struct {
	configs domain.BotConfigStore
	logger  *slog.Logger
}

// NewConfigHandler creates a ConfigHandler backed by the given store.
func NewConfigHandler(configs domain.BotConfigStore, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{
		configs: configs,
		logger:  logger.With(slog.String("handler", "config")),
	}
}

// configDTO is the wire form of a bot configuration. The private key is
// write-only: accepted on create/update, never echoed back.
type configDTO struct {
	ID              string    `json:"id,omitempty"`
	Name            string    `json:"name"`
	TokenASymbol    string    `json:"tokenASymbol"`
	TokenAMint      string    `json:"tokenAMint"`
	TokenADecimals  int       `json:"tokenADecimals"`
	TokenBSymbol    string    `json:"tokenBSymbol"`
	TokenBMint      string    `json:"tokenBMint"`
	TokenBDecimals  int       `json:"tokenBDecimals"`
	ProfitThreshold float64   `json:"profitThreshold"`
	MaxTradeAmount  uint64    `json:"maxTradeAmount"`
	ScanIntervalSec int       `json:"scanIntervalSec"`
	SlippageBps     int       `json:"slippageBps"`
	MockMode        bool      `json:"mockMode"`
	PrivateKey      string    `json:"privateKey,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt,omitempty"`
}

func toDTO(c *domain.BotConfig) configDTO {
	return configDTO{
		ID:              c.ID,
		Name:            c.Name,
		TokenASymbol:    c.TokenASymbol,
		TokenAMint:      c.TokenAMint,
		TokenADecimals:  c.TokenADecimals,
		TokenBSymbol:    c.TokenBSymbol,
		TokenBMint:      c.TokenBMint,
		TokenBDecimals:  c.TokenBDecimals,
		ProfitThreshold: c.ProfitThreshold,
		MaxTradeAmount:  c.MaxTradeAmount,
		ScanIntervalSec: c.ScanIntervalSec,
		SlippageBps:     c.SlippageBps,
		MockMode:        c.MockMode,
		Active:          c.Active,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (d *configDTO) validate() error {
	switch {
	case d.Name == "":
		return errors.New("name is required")
	case d.TokenAMint == "" || d.TokenBMint == "":
		return errors.New("both token mints are required")
	case d.TokenAMint == d.TokenBMint:
		return errors.New("token mints must differ")
	case d.MaxTradeAmount == 0:
		return errors.New("maxTradeAmount must be positive")
	case d.ScanIntervalSec < 1:
		return errors.New("scanIntervalSec must be at least 1")
	case d.SlippageBps < 0:
		return errors.New("slippageBps must not be negative")
	case !d.MockMode && d.PrivateKey == "":
		return errors.New("privateKey is required when mockMode is false")
	}
	return nil
}

// List returns all stored configurations.
// GET /api/configs
func (h *ConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.configs.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list configs", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list configs")
		return
	}

	dtos := make([]configDTO, 0, len(configs))
	for i := range configs {
		dtos = append(dtos, toDTO(&configs[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Get returns one configuration by id.
// GET /api/configs/{id}
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "config not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get config", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to get config")
		return
	}
	writeJSON(w, http.StatusOK, toDTO(cfg))
}

// Create stores a new configuration.
// POST /api/configs
func (h *ConfigHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto configDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	cfg := &domain.BotConfig{
		ID:              uuid.NewString(),
		Name:            dto.Name,
		TokenASymbol:    dto.TokenASymbol,
		TokenAMint:      dto.TokenAMint,
		TokenADecimals:  dto.TokenADecimals,
		TokenBSymbol:    dto.TokenBSymbol,
		TokenBMint:      dto.TokenBMint,
		TokenBDecimals:  dto.TokenBDecimals,
		ProfitThreshold: dto.ProfitThreshold,
		MaxTradeAmount:  dto.MaxTradeAmount,
		ScanIntervalSec: dto.ScanIntervalSec,
		SlippageBps:     dto.SlippageBps,
		MockMode:        dto.MockMode,
		PrivateKey:      dto.PrivateKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.configs.Create(r.Context(), cfg); err != nil {
		h.logger.ErrorContext(r.Context(), "create config", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to create config")
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(cfg))
}

// Update rewrites an existing configuration. An empty privateKey in the body
// keeps the stored key.
// PUT /api/configs/{id}
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.configs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "config not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get config", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to get config")
		return
	}

	var dto configDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.PrivateKey == "" {
		dto.PrivateKey = existing.PrivateKey
	}
	if err := dto.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing.Name = dto.Name
	existing.TokenASymbol = dto.TokenASymbol
	existing.TokenAMint = dto.TokenAMint
	existing.TokenADecimals = dto.TokenADecimals
	existing.TokenBSymbol = dto.TokenBSymbol
	existing.TokenBMint = dto.TokenBMint
	existing.TokenBDecimals = dto.TokenBDecimals
	existing.ProfitThreshold = dto.ProfitThreshold
	existing.MaxTradeAmount = dto.MaxTradeAmount
	existing.ScanIntervalSec = dto.ScanIntervalSec
	existing.SlippageBps = dto.SlippageBps
	existing.MockMode = dto.MockMode
	existing.PrivateKey = dto.PrivateKey

	if err := h.configs.Update(r.Context(), existing); err != nil {
		h.logger.ErrorContext(r.Context(), "update config", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to update config")
		return
	}
	writeJSON(w, http.StatusOK, toDTO(existing))
}
