package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/tradeguard/internal/domain"
	"github.com/vadiminshakov/tradeguard/internal/services/calendar"
	traderMock "github.com/vadiminshakov/tradeguard/mocks/trader"
)

var (
	tuesdayOpen   = time.Date(2024, 3, 12, 14, 0, 0, 0, time.UTC)
	tuesdayClosed = time.Date(2024, 3, 12, 22, 0, 0, 0, time.UTC)
)

func at(s string) *time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &ts
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator([]string{"imnm", " AAPL "})

	tests := []struct {
		name   string
		sig    domain.TradeSignal
		reason domain.Reason
	}{
		{name: "allowed buy", sig: domain.NewTradeSignal("IMNM", "BUY", false)},
		{name: "allowed sell, lower-case ticker", sig: domain.NewTradeSignal("aapl", "SELL", false)},
		{name: "unknown ticker", sig: domain.NewTradeSignal("TSLA", "BUY", false), reason: domain.ReasonTickerNotAllowed},
		{name: "empty ticker", sig: domain.NewTradeSignal("", "BUY", false), reason: domain.ReasonTickerNotAllowed},
		{name: "bad action", sig: domain.NewTradeSignal("IMNM", "HOLD", false), reason: domain.ReasonInvalidAction},
		{name: "lower-case action", sig: domain.NewTradeSignal("IMNM", "buy", false), reason: domain.ReasonInvalidAction},
		{name: "ticker checked before action", sig: domain.NewTradeSignal("TSLA", "HOLD", false), reason: domain.ReasonTickerNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := v.Validate(tt.sig)
			if tt.reason == domain.ReasonNone {
				assert.Nil(t, r)
				return
			}
			require.NotNil(t, r)
			assert.Equal(t, tt.reason, r.Reason)
		})
	}
}

func TestMarketHours_Check(t *testing.T) {
	g := NewMarketHours(calendar.New())
	ctx := context.Background()

	v, err := g.Check(ctx, domain.NewTradeSignal("IMNM", "BUY", false), tuesdayOpen)
	require.NoError(t, err)
	assert.False(t, v.Blocked())

	v, err = g.Check(ctx, domain.NewTradeSignal("IMNM", "BUY", false), tuesdayClosed)
	require.NoError(t, err)
	require.True(t, v.Blocked())
	assert.Equal(t, domain.ReasonMarketClosed, v.Rejection.Reason)

	v, err = g.Check(ctx, domain.NewTradeSignal("IMNM", "BUY", true), tuesdayClosed)
	require.NoError(t, err)
	assert.False(t, v.Blocked())
	assert.Equal(t, []string{BypassMarketHours}, v.Bypassed)
}

func TestBlocksRoundTrip(t *testing.T) {
	closed := []domain.ClosedOrder{
		{Ticker: "IMNM", Side: domain.SideBuy, FilledAt: at("2024-03-12T14:30:00Z")},
		{Ticker: "AAPL", Side: domain.SideSell, FilledAt: at("2024-03-12T14:30:00Z")},
		{Ticker: "IMNM", Side: domain.SideSell, FilledAt: at("2024-03-11T19:00:00Z")},
		{Ticker: "IMNM", Side: domain.SideSell},
	}

	assert.True(t, BlocksRoundTrip("IMNM", domain.ActionSell, closed, "2024-03-12"), "sell after a same-day buy fill")
	assert.False(t, BlocksRoundTrip("IMNM", domain.ActionBuy, closed, "2024-03-12"), "yesterday's sell does not block")
	assert.True(t, BlocksRoundTrip("IMNM", domain.ActionBuy, closed, "2024-03-11"))
	assert.False(t, BlocksRoundTrip("AAPL", domain.ActionSell, closed, "2024-03-12"), "same side does not block")
	assert.False(t, BlocksRoundTrip("IMNM", domain.ActionSell, nil, "2024-03-12"))
}

func TestBlocksRoundTrip_NoTimezoneNormalisation(t *testing.T) {
	// 2024-03-12T23:30-05:00 is 2024-03-13 in UTC; the literal date is what counts
	closed := []domain.ClosedOrder{
		{Ticker: "IMNM", Side: domain.SideBuy, FilledAt: at("2024-03-12T23:30:00-05:00")},
	}
	assert.True(t, BlocksRoundTrip("IMNM", domain.ActionSell, closed, "2024-03-12"))
	assert.False(t, BlocksRoundTrip("IMNM", domain.ActionSell, closed, "2024-03-13"))
}

func TestDayTrade_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks sell after buy today", func(t *testing.T) {
		tr := traderMock.NewTrader(t)
		tr.On("GetClosedOrders", mock.Anything, "IMNM").Return([]domain.ClosedOrder{
			{Ticker: "IMNM", Side: domain.SideBuy, FilledAt: at("2024-03-12T13:45:00Z")},
		}, nil)

		v, err := NewDayTrade(tr).Check(ctx, domain.NewTradeSignal("IMNM", "SELL", true), tuesdayOpen)
		require.NoError(t, err)
		require.True(t, v.Blocked())
		assert.Equal(t, domain.ReasonDayTrade, v.Rejection.Reason)
	})

	t.Run("passes when no opposite fill", func(t *testing.T) {
		tr := traderMock.NewTrader(t)
		tr.On("GetClosedOrders", mock.Anything, "IMNM").Return(nil, nil)

		v, err := NewDayTrade(tr).Check(ctx, domain.NewTradeSignal("IMNM", "SELL", false), tuesdayOpen)
		require.NoError(t, err)
		assert.False(t, v.Blocked())
	})

	t.Run("propagates brokerage failure", func(t *testing.T) {
		tr := traderMock.NewTrader(t)
		tr.On("GetClosedOrders", mock.Anything, "IMNM").Return(nil, errors.New("boom"))

		_, err := NewDayTrade(tr).Check(ctx, domain.NewTradeSignal("IMNM", "BUY", false), tuesdayOpen)
		require.Error(t, err)
	})
}

func TestBlocksDuplicateBuy(t *testing.T) {
	assert.False(t, BlocksDuplicateBuy(decimal.Zero, false))
	assert.True(t, BlocksDuplicateBuy(decimal.NewFromInt(3), false))
	assert.True(t, BlocksDuplicateBuy(decimal.Zero, true))
	assert.False(t, BlocksDuplicateBuy(decimal.NewFromInt(-2), false))
}

func TestExposure_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("applies to buy only", func(t *testing.T) {
		g := NewExposure(traderMock.NewTrader(t))
		assert.True(t, g.Applies(domain.NewTradeSignal("IMNM", "BUY", false)))
		assert.False(t, g.Applies(domain.NewTradeSignal("IMNM", "SELL", false)))
	})

	t.Run("blocks on held position", func(t *testing.T) {
		tr := traderMock.NewTrader(t)
		tr.On("GetPosition", mock.Anything, "IMNM").Return(domain.PositionState{Ticker: "IMNM", QuantityHeld: decimal.NewFromInt(3)}, nil)
		tr.On("GetOpenOrders", mock.Anything, "IMNM").Return(nil, nil)

		v, err := NewExposure(tr).Check(ctx, domain.NewTradeSignal("IMNM", "BUY", false), tuesdayOpen)
		require.NoError(t, err)
		require.True(t, v.Blocked())
		assert.Equal(t, domain.ReasonDuplicateExposure, v.Rejection.Reason)
	})

	t.Run("blocks on pending buy", func(t *testing.T) {
		tr := traderMock.NewTrader(t)
		tr.On("GetPosition", mock.Anything, "IMNM").Return(domain.FlatPosition("IMNM"), nil)
		tr.On("GetOpenOrders", mock.Anything, "IMNM").Return([]domain.OpenOrder{
			{ID: "1", Ticker: "IMNM", Side: domain.SideSell, Status: "new"},
			{ID: "2", Ticker: "IMNM", Side: domain.SideBuy, Status: "accepted"},
		}, nil)

		v, err := NewExposure(tr).Check(ctx, domain.NewTradeSignal("IMNM", "BUY", false), tuesdayOpen)
		require.NoError(t, err)
		assert.True(t, v.Blocked())
	})

	t.Run("pending sell does not block", func(t *testing.T) {
		tr := traderMock.NewTrader(t)
		tr.On("GetPosition", mock.Anything, "IMNM").Return(domain.FlatPosition("IMNM"), nil)
		tr.On("GetOpenOrders", mock.Anything, "IMNM").Return([]domain.OpenOrder{
			{ID: "1", Ticker: "IMNM", Side: domain.SideSell, Status: "new"},
		}, nil)

		v, err := NewExposure(tr).Check(ctx, domain.NewTradeSignal("IMNM", "BUY", false), tuesdayOpen)
		require.NoError(t, err)
		assert.False(t, v.Blocked())
	})

	t.Run("test mode skips open orders but not position", func(t *testing.T) {
		tr := traderMock.NewTrader(t)
		tr.On("GetPosition", mock.Anything, "IMNM").Return(domain.PositionState{Ticker: "IMNM", QuantityHeld: decimal.NewFromInt(3)}, nil)

		v, err := NewExposure(tr).Check(ctx, domain.NewTradeSignal("IMNM", "BUY", true), tuesdayOpen)
		require.NoError(t, err)
		require.True(t, v.Blocked())
		assert.Equal(t, []string{BypassOpenOrders}, v.Bypassed)
		tr.AssertNotCalled(t, "GetOpenOrders", mock.Anything, mock.Anything)
	})

	t.Run("position read failure", func(t *testing.T) {
		tr := traderMock.NewTrader(t)
		tr.On("GetPosition", mock.Anything, "IMNM").Return(domain.PositionState{}, errors.New("timeout"))

		_, err := NewExposure(tr).Check(ctx, domain.NewTradeSignal("IMNM", "BUY", false), tuesdayOpen)
		require.Error(t, err)
	})
}
