package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetAll retrieves all users
	GetAll(ctx context.Context) ([]*User, error)
}

// LedgerRepository defines the interface for the append-only trade ledger
// and the cash balance it settles against.
type LedgerRepository interface {
	// AppendTrade durably appends a single trade row
	AppendTrade(ctx context.Context, trade *TradeEvent) error

	// GetCash retrieves the user's current cash balance
	GetCash(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// SetCash overwrites the user's cash balance
	SetCash(ctx context.Context, userID uuid.UUID, cash decimal.Decimal) error

	// CommitTrade appends the trade row and sets the user's cash in one
	// transaction; both mutations commit or neither does
	CommitTrade(ctx context.Context, trade *TradeEvent, newCash decimal.Decimal) error

	// AggregateHoldings returns net shares per symbol ever traded by the
	// user, closed positions included; order is unspecified
	AggregateHoldings(ctx context.Context, userID uuid.UUID) ([]Holding, error)

	// ListTrades returns the user's trade rows in trade order
	ListTrades(ctx context.Context, userID uuid.UUID) ([]*TradeEvent, error)
}
