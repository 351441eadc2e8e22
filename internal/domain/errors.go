package domain

import "errors"

// Trade rejection and failure taxonomy. Every rejection leaves the ledger
// and the user's cash unchanged; ErrStorage is the only non-recoverable kind.
var (
	// ErrInvalidSymbol means the requested symbol does not resolve to a
	// quotable instrument.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrInvalidQuantity means the requested share count is not a positive
	// whole number.
	ErrInvalidQuantity = errors.New("invalid share quantity")

	// ErrInsufficientFunds means the buy cost exceeds the user's cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares means the sell quantity exceeds the user's net
	// shares in the symbol.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrSymbolNotFound is returned by the price oracle when a symbol is
	// unknown.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrQuoteUnavailable means the price oracle failed for a symbol that
	// may still be valid (transport failure, provider outage).
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrUsernameTaken means registration requested an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrStorage wraps persistence failures. Callers must not assume any
	// partial write happened.
	ErrStorage = errors.New("storage error")
)

// IsRejection reports whether err is a user-recoverable trade rejection as
// opposed to a fatal storage failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidSymbol) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientShares) ||
		errors.Is(err, ErrQuoteUnavailable)
}
