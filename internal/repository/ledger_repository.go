package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"brokersim/internal/domain"
)

// LedgerRepositoryImpl implements the LedgerRepository interface on the
// append-only trades table
type LedgerRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) domain.LedgerRepository {
	return &LedgerRepositoryImpl{db: db}
}

// AppendTrade durably appends a single trade row
func (r *LedgerRepositoryImpl) AppendTrade(ctx context.Context, trade *domain.TradeEvent) error {
	if err := r.appendTrade(ctx, r.db, trade); err != nil {
		return fmt.Errorf("%w: failed to append trade: %v", domain.ErrStorage, err)
	}
	return nil
}

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *LedgerRepositoryImpl) appendTrade(ctx context.Context, q execQuerier, trade *domain.TradeEvent) error {
	query := `
		INSERT INTO trades (id, user_id, symbol, shares, price, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)
		RETURNING seq
	`

	return q.QueryRow(ctx, query,
		trade.ID,
		trade.UserID,
		trade.Symbol,
		trade.Shares,
		trade.Price.String(),
		trade.CreatedAt,
	).Scan(&trade.Seq)
}

// GetCash retrieves the user's current cash balance
func (r *LedgerRepositoryImpl) GetCash(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT cash::text FROM users WHERE id = $1`

	var cash string
	if err := r.db.QueryRow(ctx, query, userID).Scan(&cash); err != nil {
		return decimal.Zero, fmt.Errorf("%w: failed to get cash: %v", domain.ErrStorage, err)
	}

	balance, err := decimal.NewFromString(cash)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: failed to parse cash: %v", domain.ErrStorage, err)
	}

	return balance, nil
}

// SetCash overwrites the user's cash balance
func (r *LedgerRepositoryImpl) SetCash(ctx context.Context, userID uuid.UUID, cash decimal.Decimal) error {
	query := `UPDATE users SET cash = $1::numeric, updated_at = NOW() WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, cash.String(), userID)
	if err != nil {
		return fmt.Errorf("%w: failed to set cash: %v", domain.ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no such user %s", domain.ErrStorage, userID)
	}

	return nil
}

// CommitTrade appends the trade row and sets the user's cash in a single
// transaction. The user row is locked for the duration so a concurrent
// commit for the same user serializes behind this one.
func (r *LedgerRepositoryImpl) CommitTrade(ctx context.Context, trade *domain.TradeEvent, newCash decimal.Decimal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, trade.UserID).Scan(&locked)
	if err != nil {
		return fmt.Errorf("%w: failed to lock user row: %v", domain.ErrStorage, err)
	}

	if err := r.appendTrade(ctx, tx, trade); err != nil {
		return fmt.Errorf("%w: failed to append trade: %v", domain.ErrStorage, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET cash = $1::numeric, updated_at = NOW() WHERE id = $2`,
		newCash.String(), trade.UserID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update cash: %v", domain.ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit trade: %v", domain.ErrStorage, err)
	}

	return nil
}

// AggregateHoldings returns net shares per symbol ever traded by the user.
// Closed positions come back with zero net shares; filtering is the
// portfolio engine's job, not the store's.
func (r *LedgerRepositoryImpl) AggregateHoldings(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	query := `
		SELECT symbol, SUM(shares)::bigint AS net_shares
		FROM trades
		WHERE user_id = $1
		GROUP BY symbol
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to aggregate holdings: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	holdings := make([]domain.Holding, 0)
	for rows.Next() {
		h := domain.Holding{UserID: userID}
		if err := rows.Scan(&h.Symbol, &h.NetShares); err != nil {
			return nil, fmt.Errorf("%w: failed to scan holding: %v", domain.ErrStorage, err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating holdings: %v", domain.ErrStorage, err)
	}

	return holdings, nil
}

// ListTrades returns the user's trade rows in trade order
func (r *LedgerRepositoryImpl) ListTrades(ctx context.Context, userID uuid.UUID) ([]*domain.TradeEvent, error) {
	query := `
		SELECT id, seq, user_id, symbol, shares, price::text, created_at
		FROM trades
		WHERE user_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query trades: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var trades []*domain.TradeEvent
	for rows.Next() {
		trade := &domain.TradeEvent{}
		var price string
		err := rows.Scan(
			&trade.ID,
			&trade.Seq,
			&trade.UserID,
			&trade.Symbol,
			&trade.Shares,
			&price,
			&trade.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan trade: %v", domain.ErrStorage, err)
		}

		trade.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse trade price: %v", domain.ErrStorage, err)
		}

		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating trades: %v", domain.ErrStorage, err)
	}

	return trades, nil
}
