package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"brokersim/internal/domain"
)

// ValuationService joins active holdings with live quotes to produce
// per-holding and grand-total valuations. Results are recomputed on every
// call; prices are live and never cached here.
type ValuationService struct {
	portfolio  *PortfolioService
	ledgerRepo domain.LedgerRepository
	oracle     domain.PriceOracle
}

// NewValuationService creates a new ValuationService
func NewValuationService(portfolio *PortfolioService, ledgerRepo domain.LedgerRepository, oracle domain.PriceOracle) *ValuationService {
	return &ValuationService{
		portfolio:  portfolio,
		ledgerRepo: ledgerRepo,
		oracle:     oracle,
	}
}

// ValuatePortfolio values every active holding at its live quote and returns
// the rows together with cash and the grand total.
//
// A holding whose symbol no longer resolves is returned with
// QuoteUnavailable set and excluded from the grand total; a stale ledger
// entry must not take the whole portfolio view down with it. Monetary values
// stay unrounded decimals; rounding to the display unit happens in the
// delivery layer.
func (s *ValuationService) ValuatePortfolio(ctx context.Context, userID uuid.UUID) (*domain.PortfolioView, error) {
	holdings, err := s.portfolio.ActiveHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active holdings: %w", err)
	}

	cash, err := s.ledgerRepo.GetCash(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cash: %w", err)
	}

	view := &domain.PortfolioView{
		Rows:       make([]domain.Valuation, 0, len(holdings)),
		Cash:       cash,
		GrandTotal: cash,
	}

	for _, h := range holdings {
		row := domain.Valuation{
			Symbol:    h.Symbol,
			NetShares: h.NetShares,
		}

		quote, err := s.oracle.Lookup(ctx, h.Symbol)
		switch {
		case err == nil:
			row.CurrentPrice = quote.Price
			row.PositionValue = quote.Price.Mul(decimal.NewFromInt(h.NetShares))
			view.GrandTotal = view.GrandTotal.Add(row.PositionValue)
		case errors.Is(err, domain.ErrSymbolNotFound), errors.Is(err, domain.ErrQuoteUnavailable):
			log.Printf("WARNING: quote unavailable for held symbol %s: %v", h.Symbol, err)
			row.QuoteUnavailable = true
		default:
			return nil, fmt.Errorf("failed to quote %s: %w", h.Symbol, err)
		}

		view.Rows = append(view.Rows, row)
	}

	return view, nil
}
