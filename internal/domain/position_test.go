package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{in: "BUY", want: ActionBuy},
		{in: "SELL", want: ActionSell},
		{in: "buy", wantErr: true},
		{in: "HOLD", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAction_SideAndOpposite(t *testing.T) {
	assert.Equal(t, SideBuy, ActionBuy.Side())
	assert.Equal(t, SideSell, ActionSell.Side())
	assert.Equal(t, ActionSell, ActionBuy.Opposite())
	assert.Equal(t, ActionBuy, ActionSell.Opposite())
}

func TestNewTradeSignal(t *testing.T) {
	sig := NewTradeSignal("  imnm ", "BUY", true)
	assert.Equal(t, "IMNM", sig.Ticker)
	assert.Equal(t, ActionBuy, sig.Action)
	assert.True(t, sig.TestMode)
	assert.Equal(t, "BUY IMNM (test)", sig.String())

	raw := NewTradeSignal("IMNM", "buy", false)
	assert.False(t, raw.Action.IsValid())
}

func TestNewAccountSnapshot(t *testing.T) {
	_, err := NewAccountSnapshot(decimal.NewFromInt(-1))
	require.Error(t, err)

	acc, err := NewAccountSnapshot(decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.True(t, acc.BuyingPower.Equal(decimal.NewFromInt(10000)))
}

func TestPositionState_IsLong(t *testing.T) {
	assert.False(t, FlatPosition("IMNM").IsLong())
	assert.True(t, PositionState{Ticker: "IMNM", QuantityHeld: decimal.NewFromInt(3)}.IsLong())
	assert.False(t, PositionState{Ticker: "IMNM", QuantityHeld: decimal.NewFromInt(-3)}.IsLong())
}

func TestClosedOrder_FilledOn(t *testing.T) {
	filled := time.Date(2024, 3, 12, 15, 4, 5, 0, time.UTC)
	o := ClosedOrder{Ticker: "IMNM", Side: SideBuy, FilledAt: &filled}

	assert.True(t, o.FilledOn("2024-03-12"))
	assert.False(t, o.FilledOn("2024-03-13"))
	assert.False(t, ClosedOrder{Ticker: "IMNM", Side: SideBuy}.FilledOn("2024-03-12"))
}

func TestNewMarketOrder(t *testing.T) {
	_, err := NewMarketOrder("IMNM", SideBuy, 0, "id")
	require.Error(t, err)

	req, err := NewMarketOrder("IMNM", SideSell, 5, "id-1")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeMarket, req.Type)
	assert.Equal(t, TimeInForceGTC, req.TimeInForce)
	assert.Equal(t, "sell 5 IMNM market/gtc", req.String())
}

func TestDecision_Lifecycle(t *testing.T) {
	d := Decision{Signal: NewTradeSignal("IMNM", "BUY", false)}
	d.Enter(StateReceived)
	d.Reject(Reject(ReasonDuplicateExposure, "position qty %s", "3"))

	assert.False(t, d.Approved)
	assert.Equal(t, StateRejected, d.State)
	assert.Equal(t, []State{StateReceived, StateRejected}, d.Trail)
	assert.Equal(t, ClassPolicy, d.Class())
	assert.Equal(t, "position qty 3", d.Detail)

	qty := int64(5)
	ok := Decision{Signal: NewTradeSignal("IMNM", "BUY", false), Approved: true, Quantity: &qty}
	assert.Equal(t, ClassNone, ok.Class())
	assert.Equal(t, "Order placed: BUY 5 IMNM", ok.Confirmation())
}

func TestReason_Class(t *testing.T) {
	assert.Equal(t, ClassValidation, ReasonTickerNotAllowed.Class())
	assert.Equal(t, ClassValidation, ReasonInvalidAction.Class())
	assert.Equal(t, ClassPolicy, ReasonMarketClosed.Class())
	assert.Equal(t, ClassPolicy, ReasonDayTrade.Class())
	assert.Equal(t, ClassPricing, ReasonInvalidPrice.Class())
	assert.Equal(t, ClassPricing, ReasonInsufficientBuyingPower.Class())
	assert.Equal(t, ClassDependency, ReasonDependency.Class())
	assert.Equal(t, "dependency", ClassDependency.String())
}
