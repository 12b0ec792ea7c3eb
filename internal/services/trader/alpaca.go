package trader

import (
	"context"
	"net/http"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

const (
	alpacaOpenOrdersLimit   = 500
	alpacaClosedOrdersLimit = 100
)

// AlpacaTrader reads account state and places orders through the Alpaca trading API.
type AlpacaTrader struct {
	client  *alpaca.Client
	limiter *rate.Limiter
}

// NewAlpacaTrader creates a trader over an Alpaca trading client. A nil
// limiter disables rate limiting.
func NewAlpacaTrader(client *alpaca.Client, limiter *rate.Limiter) (*AlpacaTrader, error) {
	if client == nil {
		return nil, errors.New("alpaca client is required")
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &AlpacaTrader{client: client, limiter: limiter}, nil
}

// GetAccount returns the current buying power.
func (t *AlpacaTrader) GetAccount(ctx context.Context) (domain.AccountSnapshot, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return domain.AccountSnapshot{}, err
	}

	acc, err := t.client.GetAccount()
	if err != nil {
		return domain.AccountSnapshot{}, errors.Wrap(err, "failed to get account")
	}

	return domain.NewAccountSnapshot(acc.BuyingPower)
}

// GetPosition returns the held quantity. Alpaca answers 404 when the account
// is flat in the ticker; that is reported as a zero position.
func (t *AlpacaTrader) GetPosition(ctx context.Context, ticker string) (domain.PositionState, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return domain.PositionState{}, err
	}

	pos, err := t.client.GetPosition(ticker)
	if err != nil {
		if isNotFound(err) {
			return domain.FlatPosition(ticker), nil
		}
		return domain.PositionState{}, errors.Wrapf(err, "failed to get position for %s", ticker)
	}

	return domain.PositionState{Ticker: ticker, QuantityHeld: pos.Qty}, nil
}

// GetOpenOrders returns orders for ticker not yet in a terminal state.
func (t *AlpacaTrader) GetOpenOrders(ctx context.Context, ticker string) ([]domain.OpenOrder, error) {
	orders, err := t.listOrders(ctx, "open", ticker, alpacaOpenOrdersLimit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get open orders for %s", ticker)
	}

	open := make([]domain.OpenOrder, 0, len(orders))
	for _, o := range orders {
		if !strings.EqualFold(o.Symbol, ticker) {
			continue
		}
		open = append(open, domain.OpenOrder{
			ID:     o.ID,
			Ticker: o.Symbol,
			Side:   sideFromAlpaca(o.Side),
			Status: o.Status,
		})
	}
	return open, nil
}

// GetClosedOrders returns the most recent terminal orders for ticker.
func (t *AlpacaTrader) GetClosedOrders(ctx context.Context, ticker string) ([]domain.ClosedOrder, error) {
	orders, err := t.listOrders(ctx, "closed", ticker, alpacaClosedOrdersLimit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get closed orders for %s", ticker)
	}

	closed := make([]domain.ClosedOrder, 0, len(orders))
	for _, o := range orders {
		if !strings.EqualFold(o.Symbol, ticker) {
			continue
		}
		closed = append(closed, domain.ClosedOrder{
			ID:       o.ID,
			Ticker:   o.Symbol,
			Side:     sideFromAlpaca(o.Side),
			FilledAt: o.FilledAt,
		})
	}
	return closed, nil
}

// PlaceOrder submits a whole-share market order.
func (t *AlpacaTrader) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.PlacedOrder, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return domain.PlacedOrder{}, err
	}

	qty := decimal.NewFromInt(req.Quantity)
	order, err := t.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:        req.Ticker,
		Qty:           &qty,
		Side:          alpaca.Side(req.Side),
		Type:          alpaca.OrderType(req.Type),
		TimeInForce:   alpaca.TimeInForce(req.TimeInForce),
		ClientOrderID: req.ClientOrderID,
	})
	if err != nil {
		return domain.PlacedOrder{}, errors.Wrapf(err, "failed to place %s", req.String())
	}

	return domain.PlacedOrder{
		ID:            order.ID,
		ClientOrderID: order.ClientOrderID,
		Status:        order.Status,
	}, nil
}

func (t *AlpacaTrader) listOrders(ctx context.Context, status, ticker string, limit int) ([]alpaca.Order, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return t.client.GetOrders(alpaca.GetOrdersRequest{
		Status:    status,
		Symbols:   []string{ticker},
		Limit:     limit,
		Direction: "desc",
	})
}

func sideFromAlpaca(s alpaca.Side) domain.Side {
	if s == alpaca.Sell {
		return domain.SideSell
	}
	return domain.SideBuy
}

func isNotFound(err error) bool {
	var apiErr *alpaca.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}
