package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"brokersim/internal/domain"
)

// PortfolioService derives current holdings from the trade ledger
type PortfolioService struct {
	ledgerRepo domain.LedgerRepository
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(ledgerRepo domain.LedgerRepository) *PortfolioService {
	return &PortfolioService{ledgerRepo: ledgerRepo}
}

// ActiveHoldings returns the user's holdings with strictly positive net
// shares. Closed positions (net zero) and any negative aggregates are
// filtered out, so consumers never render phantom rows. Returns an empty
// slice, not an error, when the user owns nothing.
func (s *PortfolioService) ActiveHoldings(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	all, err := s.ledgerRepo.AggregateHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate holdings: %w", err)
	}

	active := make([]domain.Holding, 0, len(all))
	for _, h := range all {
		if h.Active() {
			active = append(active, h)
		}
	}

	return active, nil
}

// NetShares returns the user's net share count in one symbol, zero when the
// symbol was never traded or the position is closed out.
func (s *PortfolioService) NetShares(ctx context.Context, userID uuid.UUID, symbol string) (int64, error) {
	all, err := s.ledgerRepo.AggregateHoldings(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate holdings: %w", err)
	}

	for _, h := range all {
		if h.Symbol == symbol {
			return h.NetShares, nil
		}
	}

	return 0, nil
}
