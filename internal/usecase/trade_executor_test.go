package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokersim/internal/domain"
	"brokersim/internal/service"
)

// memLedger is an in-memory LedgerRepository. It mirrors the durable
// implementation's guarantees: CommitTrade applies the trade row and the
// cash update as one step.
type memLedger struct {
	mu     sync.Mutex
	seq    int64
	cash   map[uuid.UUID]decimal.Decimal
	trades []*domain.TradeEvent
}

func newMemLedger() *memLedger {
	return &memLedger{cash: make(map[uuid.UUID]decimal.Decimal)}
}

func (m *memLedger) AppendTrade(_ context.Context, trade *domain.TradeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.append(trade)
	return nil
}

func (m *memLedger) append(trade *domain.TradeEvent) {
	m.seq++
	trade.Seq = m.seq
	m.trades = append(m.trades, trade)
}

func (m *memLedger) GetCash(_ context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cash, ok := m.cash[userID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no such user %s", domain.ErrStorage, userID)
	}
	return cash, nil
}

func (m *memLedger) SetCash(_ context.Context, userID uuid.UUID, cash decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cash[userID] = cash
	return nil
}

func (m *memLedger) CommitTrade(_ context.Context, trade *domain.TradeEvent, newCash decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.append(trade)
	m.cash[trade.UserID] = newCash
	return nil
}

func (m *memLedger) AggregateHoldings(_ context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	net := make(map[string]int64)
	order := make([]string, 0)
	for _, t := range m.trades {
		if t.UserID != userID {
			continue
		}
		if _, seen := net[t.Symbol]; !seen {
			order = append(order, t.Symbol)
		}
		net[t.Symbol] += t.Shares
	}
	holdings := make([]domain.Holding, 0, len(order))
	for _, symbol := range order {
		holdings = append(holdings, domain.Holding{UserID: userID, Symbol: symbol, NetShares: net[symbol]})
	}
	return holdings, nil
}

func (m *memLedger) ListTrades(_ context.Context, userID uuid.UUID) ([]*domain.TradeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var trades []*domain.TradeEvent
	for _, t := range m.trades {
		if t.UserID == userID {
			trades = append(trades, t)
		}
	}
	return trades, nil
}

// stubOracle quotes from a fixed price table
type stubOracle struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	down   bool
}

func (o *stubOracle) Lookup(_ context.Context, symbol string) (domain.Quote, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.down {
		return domain.Quote{}, fmt.Errorf("%w: provider down", domain.ErrQuoteUnavailable)
	}
	price, ok := o.prices[symbol]
	if !ok {
		return domain.Quote{}, domain.ErrSymbolNotFound
	}
	return domain.Quote{Symbol: symbol, Price: price}, nil
}

func (o *stubOracle) setPrice(symbol string, price string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[symbol] = decimal.RequireFromString(price)
}

func newFixture(t *testing.T, startingCash string) (*TradeExecutor, *memLedger, *stubOracle, uuid.UUID) {
	t.Helper()
	ledger := newMemLedger()
	oracle := &stubOracle{prices: make(map[string]decimal.Decimal)}
	executor := NewTradeExecutor(ledger, service.NewPortfolioService(ledger), oracle)

	userID := uuid.New()
	require.NoError(t, ledger.SetCash(context.Background(), userID, decimal.RequireFromString(startingCash)))
	return executor, ledger, oracle, userID
}

func TestParseShareCount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "10", want: 10},
		{input: " 3 ", want: 3},
		{input: "1", want: 1},
		{input: "3.5", wantErr: true},
		{input: "-2", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "0", wantErr: true},
		{input: "", wantErr: true},
		{input: "+", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("input=%q", tc.input), func(t *testing.T) {
			got, err := ParseShareCount(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuyThenSellScenario(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "100.00")
	trade, err := executor.ExecuteBuy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), trade.Shares)
	assert.Equal(t, domain.TradeTypeBuy, trade.Type())

	cash, err := ledger.GetCash(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("9000.00")), "cash = %s", cash)

	oracle.setPrice("AAPL", "120.00")
	trade, err = executor.ExecuteSell(ctx, userID, "AAPL", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), trade.Shares)
	assert.Equal(t, domain.TradeTypeSell, trade.Type())

	cash, err = ledger.GetCash(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("9480.00")), "cash = %s", cash)

	holdings, err := service.NewPortfolioService(ledger).ActiveHoldings(ctx, userID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, int64(6), holdings[0].NetShares)

	entries, err := service.NewHistoryService(ledger).History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.TradeTypeBuy, entries[0].Type)
	assert.Equal(t, int64(10), entries[0].Shares)
	assert.Equal(t, domain.TradeTypeSell, entries[1].Type)
	assert.Equal(t, int64(4), entries[1].Shares)
}

func TestBuyRejectsInsufficientFunds(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "100.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "150.00")
	_, err := executor.ExecuteBuy(ctx, userID, "AAPL", 10)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// Rejection leaves ledger and cash untouched
	cash, err := ledger.GetCash(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("100.00")))

	trades, err := ledger.ListTrades(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestBuyExactBoundary(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "1500.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "150.00")
	_, err := executor.ExecuteBuy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)

	cash, err := ledger.GetCash(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cash.IsZero(), "cash = %s", cash)
}

func TestSellRejectsNeverBoughtSymbol(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	oracle.setPrice("NFLX", "400.00")
	_, err := executor.ExecuteSell(ctx, userID, "NFLX", 1)
	require.ErrorIs(t, err, domain.ErrInsufficientShares)

	cash, err := ledger.GetCash(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("10000.00")))
}

func TestSellRejectsBeyondNetShares(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "100.00")
	_, err := executor.ExecuteBuy(ctx, userID, "AAPL", 5)
	require.NoError(t, err)

	_, err = executor.ExecuteSell(ctx, userID, "AAPL", 6)
	require.ErrorIs(t, err, domain.ErrInsufficientShares)

	cash, err := ledger.GetCash(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("9500.00")))

	trades, err := ledger.ListTrades(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestSellWholePositionClosesIt(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "100.00")
	_, err := executor.ExecuteBuy(ctx, userID, "AAPL", 5)
	require.NoError(t, err)
	_, err = executor.ExecuteSell(ctx, userID, "AAPL", 5)
	require.NoError(t, err)

	holdings, err := service.NewPortfolioService(ledger).ActiveHoldings(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, holdings, "closed position must not appear")
}

func TestTradeRejectsUnknownSymbol(t *testing.T) {
	executor, _, _, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	_, err := executor.ExecuteBuy(ctx, userID, "NOPE", 1)
	require.ErrorIs(t, err, domain.ErrInvalidSymbol)

	_, err = executor.ExecuteSell(ctx, userID, "NOPE", 1)
	require.ErrorIs(t, err, domain.ErrInvalidSymbol)
}

func TestTradeRejectsNonPositiveShares(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "100.00")
	_, err := executor.ExecuteBuy(ctx, userID, "AAPL", 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = executor.ExecuteBuy(ctx, userID, "AAPL", -3)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = executor.ExecuteSell(ctx, userID, "AAPL", 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	trades, err := ledger.ListTrades(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestTradeAbortsWhenOracleDown(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "100.00")
	oracle.down = true

	_, err := executor.ExecuteBuy(ctx, userID, "AAPL", 1)
	require.ErrorIs(t, err, domain.ErrQuoteUnavailable)

	trades, err := ledger.ListTrades(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, trades, "aborted trade must not write")
}

func TestCashReplayConservation(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	steps := []struct {
		sell   bool
		symbol string
		price  string
		shares int64
	}{
		{symbol: "AAPL", price: "123.45", shares: 7},
		{symbol: "MSFT", price: "310.10", shares: 3},
		{sell: true, symbol: "AAPL", price: "130.01", shares: 2},
		{symbol: "AAPL", price: "128.99", shares: 1},
		{sell: true, symbol: "MSFT", price: "305.55", shares: 3},
		{sell: true, symbol: "AAPL", price: "131.00", shares: 6},
	}

	expected := decimal.RequireFromString("10000.00")
	for _, step := range steps {
		oracle.setPrice(step.symbol, step.price)
		amount := decimal.RequireFromString(step.price).Mul(decimal.NewFromInt(step.shares))
		if step.sell {
			_, err := executor.ExecuteSell(ctx, userID, step.symbol, step.shares)
			require.NoError(t, err)
			expected = expected.Add(amount)
		} else {
			_, err := executor.ExecuteBuy(ctx, userID, step.symbol, step.shares)
			require.NoError(t, err)
			expected = expected.Sub(amount)
		}
	}

	cash, err := ledger.GetCash(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cash.Equal(expected), "cash drifted: got %s, want %s", cash, expected)
}

func TestDerivationIdempotence(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "100.00")
	_, err := executor.ExecuteBuy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)
	_, err = executor.ExecuteSell(ctx, userID, "AAPL", 4)
	require.NoError(t, err)

	portfolio := service.NewPortfolioService(ledger)
	history := service.NewHistoryService(ledger)

	first, err := portfolio.ActiveHoldings(ctx, userID)
	require.NoError(t, err)
	second, err := portfolio.ActiveHoldings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	h1, err := history.History(ctx, userID)
	require.NoError(t, err)
	h2, err := history.History(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestConcurrentBuysOnlyOneCommits(t *testing.T) {
	// Each buy is individually affordable but the two together are not:
	// exactly one must commit and one must reject.
	executor, ledger, oracle, userID := newFixture(t, "1000.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "150.00")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = executor.ExecuteBuy(ctx, userID, "AAPL", 4) // $600 each
		}(i)
	}
	wg.Wait()

	committed, rejected := 0, 0
	for _, err := range errs {
		if err == nil {
			committed++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			rejected++
		}
	}
	assert.Equal(t, 1, committed, "exactly one buy must commit")
	assert.Equal(t, 1, rejected, "exactly one buy must reject")

	cash, err := ledger.GetCash(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("400.00")), "cash = %s", cash)
}

func TestConcurrentTradesForDifferentUsersProceed(t *testing.T) {
	executor, ledger, oracle, alice := newFixture(t, "1000.00")
	ctx := context.Background()

	bob := uuid.New()
	require.NoError(t, ledger.SetCash(ctx, bob, decimal.RequireFromString("1000.00")))
	oracle.setPrice("AAPL", "100.00")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	users := []uuid.UUID{alice, bob}
	for i, user := range users {
		wg.Add(1)
		go func(i int, user uuid.UUID) {
			defer wg.Done()
			_, errs[i] = executor.ExecuteBuy(ctx, user, "AAPL", 5)
		}(i, user)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "user %d trade failed", i)
	}

	for _, user := range users {
		cash, err := ledger.GetCash(ctx, user)
		require.NoError(t, err)
		assert.True(t, cash.Equal(decimal.RequireFromString("500.00")))
	}
}

func TestCommittedTradeRowInvariants(t *testing.T) {
	executor, ledger, oracle, userID := newFixture(t, "10000.00")
	ctx := context.Background()

	oracle.setPrice("AAPL", "100.00")
	_, err := executor.ExecuteBuy(ctx, userID, "AAPL", 2)
	require.NoError(t, err)
	_, err = executor.ExecuteSell(ctx, userID, "AAPL", 1)
	require.NoError(t, err)

	trades, err := ledger.ListTrades(ctx, userID)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	for _, trade := range trades {
		assert.NotZero(t, trade.Shares)
		assert.True(t, trade.Price.IsPositive())
		assert.False(t, trade.CreatedAt.IsZero())
		assert.WithinDuration(t, time.Now(), trade.CreatedAt, time.Minute)
	}
}
