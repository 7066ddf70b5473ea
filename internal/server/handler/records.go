package handler

import (
	"log/slog"
	"net/http"

	"solarb/internal/domain"
)

// RecordsHandler serves the detection and trade history endpoints.
type RecordsHandler struct {
	opps   domain.OpportunityStore
	trades domain.TradeStore
	logger *slog.Logger
}

// NewRecordsHandler creates a RecordsHandler over the two history stores.
func NewRecordsHandler(opps domain.OpportunityStore, trades domain.TradeStore, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{
		opps:   opps,
		trades: trades,
		logger: logger.With(slog.String("handler", "records")),
	}
}

// ListOpportunities returns the most recent detected opportunities.
// GET /api/opportunities
func (h *RecordsHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	opps, err := h.opps.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list opportunities", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}
	writeJSON(w, http.StatusOK, opps)
}

// ListTrades returns the most recent trades.
// GET /api/trades
func (h *RecordsHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.trades.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list trades", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}
	if trades == nil {
		trades = []domain.Trade{}
	}
	writeJSON(w, http.StatusOK, trades)
}
