package guard

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

type closedOrderReader interface {
	GetClosedOrders(ctx context.Context, ticker string) ([]domain.ClosedOrder, error)
}

// DayTrade blocks a signal that would close a position opened, or reopen one
// closed, earlier the same day.
type DayTrade struct {
	orders closedOrderReader
}

// NewDayTrade creates the day-trade guard.
func NewDayTrade(orders closedOrderReader) *DayTrade {
	return &DayTrade{orders: orders}
}

func (g *DayTrade) Name() string                      { return "day_trade" }
func (g *DayTrade) State() domain.State               { return domain.StateDayTradeCheck }
func (g *DayTrade) Applies(_ domain.TradeSignal) bool { return true }

// Check implements Guard. Test mode does not bypass it.
func (g *DayTrade) Check(ctx context.Context, sig domain.TradeSignal, now time.Time) (Verdict, error) {
	closed, err := g.orders.GetClosedOrders(ctx, sig.Ticker)
	if err != nil {
		return Verdict{}, errors.Wrap(err, "failed to get closed orders")
	}

	today := now.UTC().Format(time.DateOnly)
	if BlocksRoundTrip(sig.Ticker, sig.Action, closed, today) {
		return Block(domain.Reject(domain.ReasonDayTrade,
			"%s %s was filled on %s", sig.Action.Opposite(), sig.Ticker, today)), nil
	}
	return Pass(), nil
}

// BlocksRoundTrip reports whether any closed order for ticker on the side
// opposite to action was filled on today (YYYY-MM-DD). The fill date is the
// literal date of the timestamp as reported; no time zone conversion is done.
func BlocksRoundTrip(ticker string, action domain.Action, closed []domain.ClosedOrder, today string) bool {
	opposite := action.Opposite().Side()
	for _, o := range closed {
		if o.Ticker != ticker || o.Side != opposite {
			continue
		}
		if o.FilledOn(today) {
			return true
		}
	}
	return false
}
