package service

import (
	"context"
	"fmt"
	"log"

	"brokersim/internal/domain"
)

// AuditService sweeps the ledger for integrity violations. The trade
// executor's invariants make a negative net position impossible, so any hit
// here means corrupted or hand-edited data and is logged loudly for an
// operator to investigate.
type AuditService struct {
	userRepo   domain.UserRepository
	ledgerRepo domain.LedgerRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(userRepo domain.UserRepository, ledgerRepo domain.LedgerRepository) *AuditService {
	return &AuditService{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
	}
}

// AuditLedger aggregates every user's holdings and reports each symbol whose
// net shares are negative. Returns the number of violations found.
func (s *AuditService) AuditLedger(ctx context.Context) (int, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	violations := 0
	for _, user := range users {
		holdings, err := s.ledgerRepo.AggregateHoldings(ctx, user.ID)
		if err != nil {
			return violations, fmt.Errorf("failed to aggregate holdings for user %s: %w", user.ID, err)
		}

		for _, h := range holdings {
			if h.NetShares < 0 {
				violations++
				log.Printf("ALERT: ledger integrity violation: user=%s symbol=%s net_shares=%d",
					user.ID, h.Symbol, h.NetShares)
			}
		}

		if user.Cash.IsNegative() {
			violations++
			log.Printf("ALERT: ledger integrity violation: user=%s cash=%s is negative",
				user.ID, user.Cash)
		}
	}

	if violations == 0 {
		log.Printf("Ledger audit clean: %d user(s) checked", len(users))
	}

	return violations, nil
}
