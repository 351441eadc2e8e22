package domain

import "github.com/shopspring/decimal"

// Valuation is one active holding joined with its live quote.
// When the quote provider cannot resolve a previously-traded symbol,
// QuoteUnavailable is set and the row is excluded from the grand total
// instead of being silently valued at zero.
type Valuation struct {
	Symbol           string          `json:"symbol"`
	NetShares        int64           `json:"net_shares"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	PositionValue    decimal.Decimal `json:"position_value"`
	QuoteUnavailable bool            `json:"quote_unavailable,omitempty"`
}

// PortfolioView is the full valuation of a user's portfolio, recomputed on
// every read since prices are live.
type PortfolioView struct {
	Rows       []Valuation     `json:"rows"`
	Cash       decimal.Decimal `json:"cash"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}
