package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/tradeguard/config"
	"github.com/vadiminshakov/tradeguard/internal/clients"
	"github.com/vadiminshakov/tradeguard/internal/domain"
	"github.com/vadiminshakov/tradeguard/pkg/retrier"
	traderMock "github.com/vadiminshakov/tradeguard/mocks/trader"
)

func simulateConfig(t *testing.T) config.Config {
	conf := config.Default()
	conf.Broker.Platform = config.PlatformSimulate
	conf.Audit.WALDir = filepath.Join(t.TempDir(), "audit")
	conf.Simulate.Prices = map[string]decimal.Decimal{"IMNM": decimal.NewFromInt(40)}
	conf.Simulate.StateDir = ""
	return conf
}

func newSimulated(t *testing.T, conf config.Config) *TradeGuard {
	t.Helper()
	client := clients.NewSimulateClient(conf.Simulate.StartingCash, conf.Simulate.Prices, 0, "")
	g, err := NewTradeGuard(context.Background(), conf, client, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func send(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))
	return rec
}

func TestTradeGuard_SimulatedRoundTrip(t *testing.T) {
	g := newSimulated(t, simulateConfig(t))
	h := g.Server.Handler()

	rec := send(t, h, `{"ticker":"IMNM","action":"BUY","test":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Order placed: BUY 5 IMNM", rec.Body.String())

	rec = send(t, h, `{"ticker":"IMNM","action":"BUY","test":true}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "second buy stacks exposure")

	rec = send(t, h, `{"ticker":"IMNM","action":"SELL","test":true}`)
	assert.Equal(t, http.StatusForbidden, rec.Code, "same-day sell is a day trade")

	rec = send(t, h, `{"ticker":"TSLA","action":"BUY","test":true}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	entries, err := g.wal.RecordsAfter(0)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the placed order is audited")
	assert.Equal(t, domain.ActionBuy, entries[0].Record.Action)
	assert.Equal(t, int64(5), entries[0].Record.Quantity)
	assert.Contains(t, entries[0].Record.Notes, "bypassed=market_hours,open_orders")
}

func TestTradeGuard_GuardToggles(t *testing.T) {
	conf := simulateConfig(t)
	conf.Guards.DayTrade = false
	conf.Guards.DuplicateExposure = false
	h := newSimulated(t, conf).Server.Handler()

	require.Equal(t, http.StatusOK, send(t, h, `{"ticker":"IMNM","action":"BUY","test":true}`).Code)
	assert.Equal(t, http.StatusOK, send(t, h, `{"ticker":"IMNM","action":"BUY","test":true}`).Code)
	assert.Equal(t, http.StatusOK, send(t, h, `{"ticker":"IMNM","action":"SELL","test":true}`).Code)
}

func TestBuildGuards_Order(t *testing.T) {
	conf := config.Default()
	guards := buildGuards(conf, traderMock.NewTrader(t))

	names := make([]string, 0, len(guards))
	for _, g := range guards {
		names = append(names, g.Name())
	}
	assert.Equal(t, []string{"market_hours", "day_trade", "duplicate_exposure"}, names)

	conf.Guards.DayTrade = false
	assert.Len(t, buildGuards(conf, traderMock.NewTrader(t)), 2)
}

func TestNewServiceProvider_UnsupportedClient(t *testing.T) {
	_, err := newServiceProvider("binance", nil)
	assert.Error(t, err)
}

func TestTradeGuard_Probe(t *testing.T) {
	fast := retrier.New(retrier.WithInitialInterval(time.Millisecond), retrier.WithMaxRetries(3))

	t.Run("retries transient failures", func(t *testing.T) {
		broker := traderMock.NewTrader(t)
		broker.On("GetAccount", mock.Anything).Return(domain.AccountSnapshot{}, errors.New("connection reset")).Twice()
		broker.On("GetAccount", mock.Anything).Return(domain.AccountSnapshot{BuyingPower: decimal.NewFromInt(500)}, nil).Once()

		g := &TradeGuard{broker: broker}
		acc, err := g.Probe(context.Background(), fast)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(500).Equal(acc.BuyingPower))
	})

	t.Run("gives up", func(t *testing.T) {
		broker := traderMock.NewTrader(t)
		broker.On("GetAccount", mock.Anything).Return(domain.AccountSnapshot{}, errors.New("down"))

		g := &TradeGuard{broker: broker}
		_, err := g.Probe(context.Background(), fast)
		assert.Error(t, err)
		broker.AssertNumberOfCalls(t, "GetAccount", 4)
	})
}
