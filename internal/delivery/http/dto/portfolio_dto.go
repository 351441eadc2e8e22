package dto

import (
	"time"

	"brokersim/internal/domain"
)

// Monetary amounts are carried as unrounded decimals through the core and
// rounded to cents only here, when a response is built.

// ValuationOutput represents one valued holding in API responses
type ValuationOutput struct {
	Symbol           string `json:"symbol"`
	NetShares        int64  `json:"net_shares"`
	CurrentPrice     string `json:"current_price,omitempty"`
	PositionValue    string `json:"position_value,omitempty"`
	QuoteUnavailable bool   `json:"quote_unavailable,omitempty"`
}

// PortfolioOutput represents the full portfolio view in API responses
type PortfolioOutput struct {
	Rows       []ValuationOutput `json:"rows"`
	Cash       string            `json:"cash"`
	GrandTotal string            `json:"grand_total"`
}

// NewPortfolioOutput converts a portfolio view to its API representation
func NewPortfolioOutput(view *domain.PortfolioView) PortfolioOutput {
	rows := make([]ValuationOutput, 0, len(view.Rows))
	for _, row := range view.Rows {
		out := ValuationOutput{
			Symbol:           row.Symbol,
			NetShares:        row.NetShares,
			QuoteUnavailable: row.QuoteUnavailable,
		}
		if !row.QuoteUnavailable {
			out.CurrentPrice = row.CurrentPrice.StringFixed(2)
			out.PositionValue = row.PositionValue.StringFixed(2)
		}
		rows = append(rows, out)
	}

	return PortfolioOutput{
		Rows:       rows,
		Cash:       view.Cash.StringFixed(2),
		GrandTotal: view.GrandTotal.StringFixed(2),
	}
}

// HistoryEntryOutput represents one transaction history row in API responses
type HistoryEntryOutput struct {
	Symbol     string `json:"symbol"`
	Shares     int64  `json:"shares"`
	Type       string `json:"type"`
	Price      string `json:"price"`
	ExecutedAt string `json:"executed_at"`
}

// NewHistoryOutput converts history entries to their API representation
func NewHistoryOutput(entries []domain.HistoryEntry) []HistoryEntryOutput {
	out := make([]HistoryEntryOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryOutput{
			Symbol:     e.Symbol,
			Shares:     e.Shares,
			Type:       e.Type,
			Price:      e.Price.StringFixed(2),
			ExecutedAt: e.ExecutedAt.Format(time.RFC3339),
		})
	}
	return out
}

// QuoteOutput represents a live quote in API responses
type QuoteOutput struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}
