package dto

import (
	"time"

	"brokersim/internal/domain"
)

// TradeRequest represents a buy or sell request payload. Shares arrives as
// a string exactly as submitted; it is parsed and validated once, before any
// business logic runs.
type TradeRequest struct {
	Symbol string `json:"symbol" validate:"required"`
	Shares string `json:"shares" validate:"required"`
}

// TradeOutput represents a committed trade in API responses
type TradeOutput struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Shares     int64  `json:"shares"`
	Type       string `json:"type"`
	Price      string `json:"price"`
	ExecutedAt string `json:"executed_at"`
}

// NewTradeOutput converts a committed trade event to its API representation
func NewTradeOutput(trade *domain.TradeEvent) TradeOutput {
	shares := trade.Shares
	if shares < 0 {
		shares = -shares
	}

	return TradeOutput{
		ID:         trade.ID.String(),
		Symbol:     trade.Symbol,
		Shares:     shares,
		Type:       trade.Type(),
		Price:      trade.Price.StringFixed(2),
		ExecutedAt: trade.CreatedAt.Format(time.RFC3339),
	}
}
