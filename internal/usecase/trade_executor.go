package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"brokersim/internal/domain"
	"brokersim/internal/service"
)

// TradeExecutor validates and applies buys and sells against the ledger.
// Every committed trade writes the trade row and the new cash balance
// together; every rejection leaves both untouched.
type TradeExecutor struct {
	ledgerRepo domain.LedgerRepository
	portfolio  *service.PortfolioService
	oracle     domain.PriceOracle
	locks      *userLocks
}

// NewTradeExecutor creates a new TradeExecutor
func NewTradeExecutor(ledgerRepo domain.LedgerRepository, portfolio *service.PortfolioService, oracle domain.PriceOracle) *TradeExecutor {
	return &TradeExecutor{
		ledgerRepo: ledgerRepo,
		portfolio:  portfolio,
		oracle:     oracle,
		locks:      newUserLocks(),
	}
}

// ParseShareCount converts a form-submitted share quantity into a positive
// whole number. Fractions, negatives, and non-numeric input are all
// ErrInvalidQuantity. Business logic only ever sees the parsed value.
func ParseShareCount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)

	shares, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", domain.ErrInvalidQuantity, raw)
	}
	if shares <= 0 {
		return 0, fmt.Errorf("%w: share count must be positive, got %d", domain.ErrInvalidQuantity, shares)
	}

	return shares, nil
}

// ExecuteBuy buys shares of symbol at the live quote. The quoted price is
// the committed price; there is no re-quote between validation and commit.
func (e *TradeExecutor) ExecuteBuy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.TradeEvent, error) {
	quote, err := e.quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if shares <= 0 {
		return nil, fmt.Errorf("%w: share count must be positive, got %d", domain.ErrInvalidQuantity, shares)
	}

	cost := quote.Price.Mul(decimal.NewFromInt(shares))

	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	cash, err := e.ledgerRepo.GetCash(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Exact boundary is allowed: cash == cost leaves a zero balance.
	if cash.LessThan(cost) {
		return nil, fmt.Errorf("%w: cost %s exceeds cash %s", domain.ErrInsufficientFunds, cost, cash)
	}

	trade := &domain.TradeEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Symbol:    quote.Symbol,
		Shares:    shares,
		Price:     quote.Price,
		CreatedAt: time.Now(),
	}

	if err := e.ledgerRepo.CommitTrade(ctx, trade, cash.Sub(cost)); err != nil {
		return nil, err
	}

	log.Printf("[OK] Trade committed: user=%s BUY %d %s @ %s", userID, shares, quote.Symbol, quote.Price)
	return trade, nil
}

// ExecuteSell sells shares of symbol at the live quote, capped at the
// user's current net position.
func (e *TradeExecutor) ExecuteSell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.TradeEvent, error) {
	quote, err := e.quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if shares <= 0 {
		return nil, fmt.Errorf("%w: share count must be positive, got %d", domain.ErrInvalidQuantity, shares)
	}

	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	currentNet, err := e.portfolio.NetShares(ctx, userID, quote.Symbol)
	if err != nil {
		return nil, err
	}

	// Selling the whole position exactly is allowed and closes it.
	if shares > currentNet {
		return nil, fmt.Errorf("%w: requested %d, holding %d", domain.ErrInsufficientShares, shares, currentNet)
	}

	cash, err := e.ledgerRepo.GetCash(ctx, userID)
	if err != nil {
		return nil, err
	}

	proceeds := quote.Price.Mul(decimal.NewFromInt(shares))
	trade := &domain.TradeEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Symbol:    quote.Symbol,
		Shares:    -shares,
		Price:     quote.Price,
		CreatedAt: time.Now(),
	}

	if err := e.ledgerRepo.CommitTrade(ctx, trade, cash.Add(proceeds)); err != nil {
		return nil, err
	}

	log.Printf("[OK] Trade committed: user=%s SELL %d %s @ %s", userID, shares, quote.Symbol, quote.Price)
	return trade, nil
}

// quote resolves the symbol before any lock is taken; the oracle may block
// on network I/O and must not hold up other trades for the same user.
func (e *TradeExecutor) quote(ctx context.Context, symbol string) (domain.Quote, error) {
	quote, err := e.oracle.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrSymbolNotFound) {
			return domain.Quote{}, fmt.Errorf("%w: %s", domain.ErrInvalidSymbol, symbol)
		}
		return domain.Quote{}, fmt.Errorf("%w: lookup failed for %s: %v", domain.ErrQuoteUnavailable, symbol, err)
	}
	return quote, nil
}
