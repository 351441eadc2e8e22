package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"brokersim/internal/domain"
)

// HistoryService reconstructs a display-oriented transaction history from
// the raw ledger rows
type HistoryService struct {
	ledgerRepo domain.LedgerRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(ledgerRepo domain.LedgerRepository) *HistoryService {
	return &HistoryService{ledgerRepo: ledgerRepo}
}

// History returns the user's trades in trade order as buy/sell entries with
// positive share counts. The transform builds new values; stored rows keep
// their original sign.
func (s *HistoryService) History(ctx context.Context, userID uuid.UUID) ([]domain.HistoryEntry, error) {
	trades, err := s.ledgerRepo.ListTrades(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(trades))
	for _, t := range trades {
		shares := t.Shares
		if shares < 0 {
			shares = -shares
		}

		entries = append(entries, domain.HistoryEntry{
			Symbol:     t.Symbol,
			Shares:     shares,
			Type:       t.Type(),
			Price:      t.Price,
			ExecutedAt: t.CreatedAt,
		})
	}

	return entries, nil
}
