package domain

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Order type and time-in-force sent with every request.
const (
	OrderTypeMarket = "market"
	TimeInForceGTC  = "gtc"
)

// OpenOrder is a brokerage order not yet in a terminal state.
type OpenOrder struct {
	ID     string
	Ticker string
	Side   Side
	Status string
}

// ClosedOrder is a brokerage order in a terminal state. FilledAt is nil for
// orders that closed without a fill.
type ClosedOrder struct {
	ID       string
	Ticker   string
	Side     Side
	FilledAt *time.Time
}

// FilledOn reports whether the order was filled on the given YYYY-MM-DD day,
// read in the fill timestamp's own location.
func (o ClosedOrder) FilledOn(day string) bool {
	return o.FilledAt != nil && o.FilledAt.Format(time.DateOnly) == day
}

// OrderRequest is the single order the guard may submit per signal.
type OrderRequest struct {
	Ticker        string
	Side          Side
	Quantity      int64
	Type          string
	TimeInForce   string
	ClientOrderID string
}

// NewMarketOrder builds a market GTC order request.
func NewMarketOrder(ticker string, side Side, qty int64, clientOrderID string) (OrderRequest, error) {
	if qty < 1 {
		return OrderRequest{}, errors.Errorf("order quantity must be at least 1, got %d", qty)
	}
	if ticker == "" {
		return OrderRequest{}, errors.New("order ticker is required")
	}

	return OrderRequest{
		Ticker:        ticker,
		Side:          side,
		Quantity:      qty,
		Type:          OrderTypeMarket,
		TimeInForce:   TimeInForceGTC,
		ClientOrderID: clientOrderID,
	}, nil
}

// String returns a human-readable string representation.
func (o OrderRequest) String() string {
	return fmt.Sprintf("%s %d %s %s/%s", o.Side, o.Quantity, o.Ticker, o.Type, o.TimeInForce)
}

// PlacedOrder is the brokerage acknowledgement of an accepted OrderRequest.
type PlacedOrder struct {
	ID            string
	ClientOrderID string
	Status        string
}
