package trader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeguard/internal/domain"
	"github.com/vadiminshakov/tradeguard/internal/storage/simstate"
)

const (
	simStatusNew      = "new"
	simStatusFilled   = "filled"
	simStatusRejected = "rejected"
)

// Quoter defines an interface for getting the latest quote of a ticker.
type Quoter interface {
	GetLatestQuote(ctx context.Context, ticker string) (domain.Quote, error)
}

// SimulateTrader is an in-process paper brokerage. Orders stay open for
// fillDelay and then fill at the quoted price if cash or shares allow.
type SimulateTrader struct {
	mu         sync.Mutex
	logger     *zap.Logger
	quoter     Quoter
	cash       decimal.Decimal
	positions  map[string]decimal.Decimal
	orders     []simOrder
	fillDelay  time.Duration
	now        func() time.Time
	seq        int
	stateStore *simstate.Store
}

type simOrder struct {
	id            string
	clientOrderID string
	ticker        string
	side          domain.Side
	qty           int64
	status        string
	submittedAt   time.Time
	filledAt      *time.Time
	fillPrice     decimal.Decimal
}

// SimulateOption configures a SimulateTrader.
type SimulateOption func(*SimulateTrader)

// WithSimulateClock overrides the time source.
func WithSimulateClock(now func() time.Time) SimulateOption {
	return func(t *SimulateTrader) {
		t.now = now
	}
}

// WithStateStore persists simulator state after every change.
func WithStateStore(store *simstate.Store) SimulateOption {
	return func(t *SimulateTrader) {
		t.stateStore = store
	}
}

// NewSimulateTrader creates a new SimulateTrader.
func NewSimulateTrader(startingCash decimal.Decimal, fillDelay time.Duration, logger *zap.Logger, quoter Quoter, opts ...SimulateOption) (*SimulateTrader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if quoter == nil {
		return nil, errors.New("quoter is required for SimulateTrader")
	}
	if startingCash.IsNegative() {
		return nil, errors.Errorf("starting cash must not be negative, got %s", startingCash.String())
	}

	trader := &SimulateTrader{
		logger:    logger,
		quoter:    quoter,
		cash:      startingCash,
		positions: make(map[string]decimal.Decimal),
		fillDelay: fillDelay,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(trader)
	}

	if err := trader.restoreState(); err != nil {
		logger.Warn("failed to restore simulate state", zap.Error(err))
	}
	logger.Info("simulate init",
		zap.String("cash", trader.cash.String()),
		zap.Int("positions", len(trader.positions)),
		zap.Int("orders", len(trader.orders)),
		zap.Duration("fill_delay", fillDelay))

	return trader, nil
}

// GetAccount reports available cash as buying power.
func (t *SimulateTrader) GetAccount(ctx context.Context) (domain.AccountSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settle(ctx)
	return domain.NewAccountSnapshot(t.cash)
}

// GetPosition returns the simulated holding for ticker.
func (t *SimulateTrader) GetPosition(ctx context.Context, ticker string) (domain.PositionState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settle(ctx)
	qty, ok := t.positions[ticker]
	if !ok {
		return domain.FlatPosition(ticker), nil
	}
	return domain.PositionState{Ticker: ticker, QuantityHeld: qty}, nil
}

// GetOpenOrders returns orders still waiting for their fill delay.
func (t *SimulateTrader) GetOpenOrders(ctx context.Context, ticker string) ([]domain.OpenOrder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settle(ctx)
	var open []domain.OpenOrder
	for _, o := range t.orders {
		if o.ticker == ticker && o.status == simStatusNew {
			open = append(open, domain.OpenOrder{ID: o.id, Ticker: o.ticker, Side: o.side, Status: o.status})
		}
	}
	return open, nil
}

// GetClosedOrders returns filled and rejected orders, newest first.
func (t *SimulateTrader) GetClosedOrders(ctx context.Context, ticker string) ([]domain.ClosedOrder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settle(ctx)
	var closed []domain.ClosedOrder
	for i := len(t.orders) - 1; i >= 0; i-- {
		o := t.orders[i]
		if o.ticker != ticker || o.status == simStatusNew {
			continue
		}
		closed = append(closed, domain.ClosedOrder{ID: o.id, Ticker: o.ticker, Side: o.side, FilledAt: o.filledAt})
	}
	return closed, nil
}

// PlaceOrder accepts a market order. A repeated client order id returns the
// original order instead of creating a second one.
func (t *SimulateTrader) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.PlacedOrder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if req.Quantity < 1 {
		return domain.PlacedOrder{}, fmt.Errorf("order quantity must be positive, got %d", req.Quantity)
	}
	if req.Type != domain.OrderTypeMarket {
		return domain.PlacedOrder{}, fmt.Errorf("unsupported order type: %s", req.Type)
	}

	if req.ClientOrderID != "" {
		for _, o := range t.orders {
			if o.clientOrderID == req.ClientOrderID {
				t.logger.Warn("duplicate client order id, returning existing order",
					zap.String("client_order_id", req.ClientOrderID), zap.String("id", o.id))
				return domain.PlacedOrder{ID: o.id, ClientOrderID: o.clientOrderID, Status: o.status}, nil
			}
		}
	}

	t.seq++
	order := simOrder{
		id:            fmt.Sprintf("sim-%d-%d", t.now().UnixNano(), t.seq),
		clientOrderID: req.ClientOrderID,
		ticker:        req.Ticker,
		side:          req.Side,
		qty:           req.Quantity,
		status:        simStatusNew,
		submittedAt:   t.now(),
	}
	t.orders = append(t.orders, order)
	t.settle(ctx)

	placed := t.orders[len(t.orders)-1]
	t.logger.Info("simulated order accepted",
		zap.String("id", placed.id),
		zap.String("ticker", placed.ticker),
		zap.String("side", placed.side.String()),
		zap.Int64("qty", placed.qty),
		zap.String("status", placed.status))

	return domain.PlacedOrder{ID: placed.id, ClientOrderID: placed.clientOrderID, Status: placed.status}, nil
}

// settle fills every open order whose delay has elapsed. Callers hold t.mu.
func (t *SimulateTrader) settle(ctx context.Context) {
	now := t.now()
	changed := false
	for i := range t.orders {
		o := &t.orders[i]
		if o.status != simStatusNew || now.Sub(o.submittedAt) < t.fillDelay {
			continue
		}

		if err := t.fill(ctx, o, now); err != nil {
			t.logger.Warn("simulated order rejected", zap.String("id", o.id), zap.Error(err))
			o.status = simStatusRejected
		}
		changed = true
	}
	if changed {
		t.persist()
	}
}

func (t *SimulateTrader) fill(ctx context.Context, o *simOrder, now time.Time) error {
	quote, err := t.quoter.GetLatestQuote(ctx, o.ticker)
	if err != nil {
		return errors.Wrap(err, "failed to get price for simulated fill")
	}
	price, err := quote.Price()
	if err != nil {
		return err
	}

	qty := decimal.NewFromInt(o.qty)
	held := t.positions[o.ticker]
	switch o.side {
	case domain.SideBuy:
		cost := qty.Mul(price)
		if cost.GreaterThan(t.cash) {
			return fmt.Errorf("insufficient cash: need %s, have %s", cost.String(), t.cash.String())
		}
		t.cash = t.cash.Sub(cost)
		t.positions[o.ticker] = held.Add(qty)
	case domain.SideSell:
		if qty.GreaterThan(held) {
			return fmt.Errorf("insufficient shares: need %s, have %s", qty.String(), held.String())
		}
		t.cash = t.cash.Add(qty.Mul(price))
		if remaining := held.Sub(qty); remaining.IsZero() {
			delete(t.positions, o.ticker)
		} else {
			t.positions[o.ticker] = remaining
		}
	default:
		return fmt.Errorf("unknown side: %s", o.side)
	}

	filledAt := now.UTC()
	o.filledAt = &filledAt
	o.fillPrice = price
	o.status = simStatusFilled
	return nil
}

func (t *SimulateTrader) persist() {
	if t.stateStore == nil {
		return
	}

	state := simstate.State{
		Cash:      t.cash.String(),
		Positions: make(map[string]string, len(t.positions)),
		Orders:    make([]simstate.StoredOrder, 0, len(t.orders)),
	}
	for ticker, qty := range t.positions {
		state.Positions[ticker] = qty.String()
	}
	for _, o := range t.orders {
		stored := simstate.StoredOrder{
			ID:            o.id,
			ClientOrderID: o.clientOrderID,
			Ticker:        o.ticker,
			Side:          o.side.String(),
			Quantity:      o.qty,
			Status:        o.status,
			SubmittedAt:   o.submittedAt,
			FilledAt:      o.filledAt,
		}
		if o.filledAt != nil {
			stored.FillPrice = o.fillPrice.String()
		}
		state.Orders = append(state.Orders, stored)
	}

	if err := t.stateStore.Save(state); err != nil {
		t.logger.Warn("failed to persist simulate state", zap.Error(err))
	}
}

func (t *SimulateTrader) restoreState() error {
	if t.stateStore == nil {
		return nil
	}

	state, err := t.stateStore.Load()
	if err != nil || state == nil {
		return err
	}

	cash, err := decimal.NewFromString(state.Cash)
	if err != nil {
		return errors.Wrap(err, "decode cash")
	}
	positions, err := state.DecodePositions()
	if err != nil {
		return err
	}

	orders := make([]simOrder, 0, len(state.Orders))
	for _, so := range state.Orders {
		o := simOrder{
			id:            so.ID,
			clientOrderID: so.ClientOrderID,
			ticker:        so.Ticker,
			side:          domain.Side(so.Side),
			qty:           so.Quantity,
			status:        so.Status,
			submittedAt:   so.SubmittedAt,
			filledAt:      so.FilledAt,
		}
		if so.FillPrice != "" {
			if o.fillPrice, err = decimal.NewFromString(so.FillPrice); err != nil {
				return errors.Wrapf(err, "decode fill price of %s", so.ID)
			}
		}
		orders = append(orders, o)
	}

	t.cash = cash
	t.positions = positions
	t.orders = orders
	t.seq = len(orders)
	return nil
}
