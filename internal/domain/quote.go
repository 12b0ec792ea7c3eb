package domain

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidPriceData is returned when a quote carries no usable price.
var ErrInvalidPriceData = errors.New("invalid price data")

// Quote is the latest top-of-book snapshot for a ticker. A nil field means
// the brokerage did not report that component.
type Quote struct {
	Ask  *decimal.Decimal
	Bid  *decimal.Decimal
	Last *decimal.Decimal
}

// Price resolves the reference price, preferring ask, then bid, then last
// trade. Zero and negative values are skipped.
func (q Quote) Price() (decimal.Decimal, error) {
	for _, p := range []*decimal.Decimal{q.Ask, q.Bid, q.Last} {
		if p != nil && p.IsPositive() {
			return *p, nil
		}
	}
	return decimal.Zero, ErrInvalidPriceData
}

// NewQuoteFromFloats builds a quote from float readings as reported by the
// market data API. Non-positive or non-finite readings are dropped.
func NewQuoteFromFloats(ask, bid, last float64) Quote {
	return Quote{Ask: positive(ask), Bid: positive(bid), Last: positive(last)}
}

func positive(v float64) *decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(v)
	return &d
}
