package domain

import "time"

// Event types published on the signal bus. The bus channel for each event
// carries the same name.
const (
	EventBotStatus   = "bot_status"
	EventOpportunity = "opportunity"
	EventTrade       = "trade"
)

// Event is the envelope every broadcast message is wrapped in.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// BotStatusPayload reports an engine lifecycle transition to observers.
type BotStatusPayload struct {
	IsRunning    bool       `json:"isRunning"`
	ConfigID     string     `json:"configId,omitempty"`
	LastScanTime *time.Time `json:"lastScanTime,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// OpportunityPayload is the broadcast form of a detected opportunity.
type OpportunityPayload struct {
	ID                string    `json:"id"`
	TokenA            string    `json:"tokenA"`
	TokenB            string    `json:"tokenB"`
	PriceA            float64   `json:"priceA"`
	PriceB            float64   `json:"priceB"`
	ProfitOpportunity int64     `json:"profitOpportunity"`
	ProfitPercentage  float64   `json:"profitPercentage"`
	AmountRequired    uint64    `json:"amountRequired"`
	DetectedAt        time.Time `json:"detectedAt"`
}

// TradePayload is the broadcast form of a trade state transition.
type TradePayload struct {
	ID               string    `json:"id"`
	TokenA           string    `json:"tokenA"`
	TokenB           string    `json:"tokenB"`
	AmountIn         uint64    `json:"amountIn"`
	AmountOut        uint64    `json:"amountOut"`
	Profit           int64     `json:"profit"`
	ProfitPercentage float64   `json:"profitPercentage"`
	TxSignature      string    `json:"txSignature,omitempty"`
	Status           string    `json:"status"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	ExecutedAt       time.Time `json:"executedAt"`
	IsMock           bool      `json:"isMock"`
}

// NewEvent wraps a payload in an Event envelope stamped with the current time.
func NewEvent(eventType string, payload any) Event {
	return Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// OpportunityEvent builds the broadcast event for a detected opportunity.
func OpportunityEvent(o *Opportunity) Event {
	return NewEvent(EventOpportunity, OpportunityPayload{
		ID:                o.ID,
		TokenA:            o.TokenA,
		TokenB:            o.TokenB,
		PriceA:            o.PriceA,
		PriceB:            o.PriceB,
		ProfitOpportunity: o.ProfitAmount,
		ProfitPercentage:  o.ProfitPct,
		AmountRequired:    o.AmountRequired,
		DetectedAt:        o.DetectedAt,
	})
}

// TradeEvent builds the broadcast event for a trade state transition.
func TradeEvent(t *Trade) Event {
	return NewEvent(EventTrade, TradePayload{
		ID:               t.ID,
		TokenA:           t.TokenA,
		TokenB:           t.TokenB,
		AmountIn:         t.AmountIn,
		AmountOut:        t.AmountOut,
		Profit:           t.Profit,
		ProfitPercentage: t.ProfitPct,
		TxSignature:      t.TxSignature,
		Status:           string(t.Status),
		ErrorMessage:     t.ErrorMessage,
		ExecutedAt:       t.ExecutedAt,
		IsMock:           t.IsMock,
	})
}
