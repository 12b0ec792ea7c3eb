// Package sizer converts account equity and a reference price into an order quantity.
package sizer

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

// DefaultRiskFraction is the share of buying power committed per order.
var DefaultRiskFraction = decimal.RequireFromString("0.02")

// ErrInsufficientBuyingPower is returned when the sized quantity rounds below one share.
var ErrInsufficientBuyingPower = errors.New("insufficient buying power")

// Sizer computes whole-share quantities from a fixed risk fraction.
type Sizer struct {
	riskFraction decimal.Decimal
}

// New creates a sizer. The fraction must be in (0, 1].
func New(riskFraction decimal.Decimal) (*Sizer, error) {
	if !riskFraction.IsPositive() || riskFraction.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errors.Errorf("risk fraction must be in (0, 1], got %s", riskFraction.String())
	}
	return &Sizer{riskFraction: riskFraction}, nil
}

// RiskFraction returns the configured fraction.
func (s *Sizer) RiskFraction() decimal.Decimal {
	return s.riskFraction
}

// Size returns floor(buyingPower * riskFraction / price).
func (s *Sizer) Size(buyingPower, price decimal.Decimal) (int64, error) {
	return Size(buyingPower, s.riskFraction, price)
}

// Size returns floor(buyingPower * riskFraction / price). It fails with
// domain.ErrInvalidPriceData for a non-positive price and with
// ErrInsufficientBuyingPower when the result is below one share.
func Size(buyingPower, riskFraction, price decimal.Decimal) (int64, error) {
	if !price.IsPositive() {
		return 0, domain.ErrInvalidPriceData
	}

	qty := buyingPower.Mul(riskFraction).Div(price).Floor()
	if qty.LessThan(decimal.NewFromInt(1)) {
		return 0, errors.Wrapf(ErrInsufficientBuyingPower, "buying power %s allows %s shares at %s",
			buyingPower.String(), qty.String(), price.String())
	}

	return qty.IntPart(), nil
}
