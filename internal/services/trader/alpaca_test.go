package trader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

func newTestAlpacaTrader(t *testing.T, handler http.HandlerFunc) *AlpacaTrader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   srv.URL,
	})
	tr, err := NewAlpacaTrader(client, nil)
	require.NoError(t, err)
	return tr
}

func TestAlpacaTrader_GetAccount(t *testing.T) {
	tr := newTestAlpacaTrader(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "secret", r.Header.Get("APCA-API-SECRET-KEY"))
		fmt.Fprint(w, `{"id":"acc","buying_power":"10000.50","cash":"5000"}`)
	})

	acc, err := tr.GetAccount(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10000.50").Equal(acc.BuyingPower))
}

func TestAlpacaTrader_GetPosition(t *testing.T) {
	t.Run("held", func(t *testing.T) {
		tr := newTestAlpacaTrader(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/positions/IMNM", r.URL.Path)
			fmt.Fprint(w, `{"symbol":"IMNM","qty":"3","side":"long"}`)
		})

		pos, err := tr.GetPosition(context.Background(), "IMNM")
		require.NoError(t, err)
		assert.True(t, pos.IsLong())
		assert.True(t, decimal.NewFromInt(3).Equal(pos.QuantityHeld))
	})

	t.Run("not found is flat", func(t *testing.T) {
		tr := newTestAlpacaTrader(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":40410000,"message":"position does not exist"}`)
		})

		pos, err := tr.GetPosition(context.Background(), "IMNM")
		require.NoError(t, err)
		assert.Equal(t, "IMNM", pos.Ticker)
		assert.True(t, pos.QuantityHeld.IsZero())
	})

	t.Run("other failures propagate", func(t *testing.T) {
		tr := newTestAlpacaTrader(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"code":40310000,"message":"forbidden"}`)
		})

		_, err := tr.GetPosition(context.Background(), "IMNM")
		require.Error(t, err)
	})
}

func TestAlpacaTrader_Orders(t *testing.T) {
	tr := newTestAlpacaTrader(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/orders", r.URL.Path)
		assert.Equal(t, "IMNM", r.URL.Query().Get("symbols"))
		switch r.URL.Query().Get("status") {
		case "open":
			fmt.Fprint(w, `[{"id":"o1","symbol":"IMNM","side":"buy","status":"new"}]`)
		case "closed":
			fmt.Fprint(w, `[
				{"id":"c1","symbol":"IMNM","side":"sell","status":"filled","filled_at":"2024-03-12T14:30:00Z"},
				{"id":"c2","symbol":"IMNM","side":"buy","status":"canceled"}
			]`)
		default:
			t.Errorf("unexpected status %q", r.URL.Query().Get("status"))
		}
	})

	open, err := tr.GetOpenOrders(context.Background(), "IMNM")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, domain.SideBuy, open[0].Side)
	assert.Equal(t, "new", open[0].Status)

	closed, err := tr.GetClosedOrders(context.Background(), "IMNM")
	require.NoError(t, err)
	require.Len(t, closed, 2)
	assert.Equal(t, domain.SideSell, closed[0].Side)
	assert.True(t, closed[0].FilledOn("2024-03-12"))
	assert.Nil(t, closed[1].FilledAt)
}

func TestAlpacaTrader_PlaceOrder(t *testing.T) {
	tr := newTestAlpacaTrader(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/orders", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "IMNM", body["symbol"])
		assert.Equal(t, "5", body["qty"])
		assert.Equal(t, "buy", body["side"])
		assert.Equal(t, "market", body["type"])
		assert.Equal(t, "gtc", body["time_in_force"])
		assert.Equal(t, "cid-1", body["client_order_id"])

		fmt.Fprint(w, `{"id":"ord-1","client_order_id":"cid-1","symbol":"IMNM","side":"buy","status":"accepted"}`)
	})

	req, err := domain.NewMarketOrder("IMNM", domain.SideBuy, 5, "cid-1")
	require.NoError(t, err)

	placed, err := tr.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ord-1", placed.ID)
	assert.Equal(t, "cid-1", placed.ClientOrderID)
	assert.Equal(t, "accepted", placed.Status)
}

func TestNewAlpacaTrader_RequiresClient(t *testing.T) {
	_, err := NewAlpacaTrader(nil, nil)
	require.Error(t, err)
}
