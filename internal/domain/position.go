package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AccountSnapshot is the brokerage view of the account at read time.
type AccountSnapshot struct {
	BuyingPower decimal.Decimal
}

// NewAccountSnapshot validates a brokerage-reported buying power.
func NewAccountSnapshot(buyingPower decimal.Decimal) (AccountSnapshot, error) {
	if buyingPower.IsNegative() {
		return AccountSnapshot{}, errors.Errorf("buying power must not be negative, got %s", buyingPower.String())
	}
	return AccountSnapshot{BuyingPower: buyingPower}, nil
}

// PositionState is the quantity held for a ticker. Zero means flat.
type PositionState struct {
	Ticker       string
	QuantityHeld decimal.Decimal
}

// FlatPosition is what a brokerage "no position" response translates to.
func FlatPosition(ticker string) PositionState {
	return PositionState{Ticker: ticker, QuantityHeld: decimal.Zero}
}

// IsLong reports whether a strictly positive quantity is held.
func (p PositionState) IsLong() bool {
	return p.QuantityHeld.IsPositive()
}
