package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a live price for a symbol
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// PriceOracle defines the interface for the external quote provider.
// Lookup returns ErrSymbolNotFound for unknown symbols and
// ErrQuoteUnavailable (wrapped) when the provider cannot be reached.
type PriceOracle interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}
