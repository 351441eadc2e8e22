package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeEvent is one immutable row of the trade ledger. The ledger is the
// sole source of truth for holdings and history; there is no separate
// current-holdings table.
//
// Sign convention: Shares > 0 is a buy, Shares < 0 is a sell. Price is
// always the per-share price at execution time; totals are computed on read.
type TradeEvent struct {
	ID        uuid.UUID       `json:"id"`
	Seq       int64           `json:"seq"` // assigned by storage, defines trade order
	UserID    uuid.UUID       `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// TradeType constants
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// Type derives the display type from the sign of the stored share delta.
func (t *TradeEvent) Type() string {
	if t.Shares < 0 {
		return TradeTypeSell
	}
	return TradeTypeBuy
}

// Holding is a user's net share count in one symbol, derived by summing all
// trade events. Never persisted.
type Holding struct {
	UserID    uuid.UUID `json:"user_id"`
	Symbol    string    `json:"symbol"`
	NetShares int64     `json:"net_shares"`
}

// Active reports whether the holding should appear in portfolio views.
func (h Holding) Active() bool {
	return h.NetShares > 0
}

// HistoryEntry is one display-oriented row of a user's transaction history.
// Shares is always positive; the buy/sell direction lives in Type.
type HistoryEntry struct {
	Symbol     string          `json:"symbol"`
	Shares     int64           `json:"shares"`
	Type       string          `json:"type"`
	Price      decimal.Decimal `json:"price"`
	ExecutedAt time.Time       `json:"executed_at"`
}
