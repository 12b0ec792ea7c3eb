package guard

import (
	"context"
	"time"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

// BypassMarketHours is reported when test mode skips the market-hours check.
const BypassMarketHours = "market_hours"

type marketCalendar interface {
	IsOpen(now time.Time) bool
}

// MarketHours rejects signals outside the trading window unless in test mode.
type MarketHours struct {
	calendar marketCalendar
}

// NewMarketHours creates the market-hours guard.
func NewMarketHours(calendar marketCalendar) *MarketHours {
	return &MarketHours{calendar: calendar}
}

func (g *MarketHours) Name() string                      { return "market_hours" }
func (g *MarketHours) State() domain.State               { return domain.StateMarketCheck }
func (g *MarketHours) Applies(_ domain.TradeSignal) bool { return true }

// Check implements Guard.
func (g *MarketHours) Check(_ context.Context, sig domain.TradeSignal, now time.Time) (Verdict, error) {
	if sig.TestMode {
		return Pass(BypassMarketHours), nil
	}
	if !g.calendar.IsOpen(now) {
		return Block(domain.Reject(domain.ReasonMarketClosed, "market closed at %s", now.UTC().Format(time.RFC3339))), nil
	}
	return Pass(), nil
}
