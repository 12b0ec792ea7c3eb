// Package dispatcher runs a trade signal through validation, guards, pricing
// and sizing, and places at most one order for it.
package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeguard/internal/domain"
	"github.com/vadiminshakov/tradeguard/internal/metrics"
	"github.com/vadiminshakov/tradeguard/internal/services/guard"
	"github.com/vadiminshakov/tradeguard/internal/services/sizer"
)

const defaultDispatchTimeout = 15 * time.Second

type signalValidator interface {
	Validate(sig domain.TradeSignal) *domain.Rejection
}

type traderService interface {
	GetAccount(ctx context.Context) (domain.AccountSnapshot, error)
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.PlacedOrder, error)
}

type priceService interface {
	GetLatestQuote(ctx context.Context, ticker string) (domain.Quote, error)
}

type positionSizer interface {
	Size(buyingPower, price decimal.Decimal) (int64, error)
}

type auditRecorder interface {
	Record(ctx context.Context, record domain.AuditRecord) error
}

// Dispatcher turns one signal into exactly one Decision.
type Dispatcher struct {
	logger    *zap.Logger
	validator signalValidator
	guards    []guard.Guard
	trader    traderService
	pricer    priceService
	sizer     positionSizer
	audit     auditRecorder

	now             func() time.Time
	newOrderID      func() string
	locks           *tickerLocks
	dispatchTimeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock overrides the time source used for market hours, day boundaries
// and audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithOrderIDs overrides the client order id generator.
func WithOrderIDs(gen func() string) Option {
	return func(d *Dispatcher) {
		d.newOrderID = gen
	}
}

// WithTickerSerialization makes concurrent signals for the same ticker run
// one after another, closing the read-then-act window within this process.
func WithTickerSerialization() Option {
	return func(d *Dispatcher) {
		d.locks = newTickerLocks()
	}
}

// WithDispatchTimeout bounds the order call and the audit append together.
func WithDispatchTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.dispatchTimeout = timeout
		}
	}
}

// New creates a dispatcher. Guards run in the given order.
func New(logger *zap.Logger, validator signalValidator, guards []guard.Guard, trader traderService,
	pricer priceService, sizer positionSizer, recorder auditRecorder, opts ...Option) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		return nil, errors.New("validator is required")
	}
	if trader == nil || pricer == nil {
		return nil, errors.New("trader and pricer are required")
	}
	if sizer == nil {
		return nil, errors.New("sizer is required")
	}
	if recorder == nil {
		return nil, errors.New("audit recorder is required")
	}

	d := &Dispatcher{
		logger:          logger,
		validator:       validator,
		guards:          guards,
		trader:          trader,
		pricer:          pricer,
		sizer:           sizer,
		audit:           recorder,
		now:             time.Now,
		newOrderID:      func() string { return "tg-" + uuid.NewString() },
		dispatchTimeout: defaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Handle decides on sig and, if every check passes, places one market order.
// Brokerage state is read fresh for every signal.
func (d *Dispatcher) Handle(ctx context.Context, sig domain.TradeSignal) domain.Decision {
	started := time.Now()
	dec := domain.Decision{Signal: sig}
	dec.Enter(domain.StateReceived)

	defer func() {
		d.observe(dec, time.Since(started))
	}()

	if r := d.validator.Validate(sig); r != nil {
		dec.Reject(r)
		return dec
	}
	dec.Enter(domain.StateValidated)

	if d.locks != nil {
		unlock := d.locks.lock(sig.Ticker)
		defer unlock()
	}

	now := d.now()
	for _, g := range d.guards {
		if !g.Applies(sig) {
			continue
		}
		dec.Enter(g.State())

		verdict, err := g.Check(ctx, sig, now)
		if err != nil {
			dec.Fail(errors.Wrapf(err, "%s check", g.Name()))
			return dec
		}
		if len(verdict.Bypassed) > 0 {
			dec.Bypassed = append(dec.Bypassed, verdict.Bypassed...)
			d.logger.Warn("check bypassed in test mode",
				zap.String("guard", g.Name()),
				zap.Strings("bypassed", verdict.Bypassed),
				zap.String("ticker", sig.Ticker))
		}
		if verdict.Blocked() {
			dec.Reject(verdict.Rejection)
			return dec
		}
	}

	account, err := d.trader.GetAccount(ctx)
	if err != nil {
		dec.Fail(errors.Wrap(err, "failed to read account"))
		return dec
	}
	quote, err := d.pricer.GetLatestQuote(ctx, sig.Ticker)
	if err != nil {
		dec.Fail(errors.Wrap(err, "failed to read quote"))
		return dec
	}
	price, err := quote.Price()
	if err != nil {
		dec.Reject(domain.Reject(domain.ReasonInvalidPrice, "no usable ask, bid or last for %s", sig.Ticker))
		return dec
	}
	dec.Price = &price
	dec.Enter(domain.StatePriced)

	qty, err := d.sizer.Size(account.BuyingPower, price)
	switch {
	case errors.Is(err, domain.ErrInvalidPriceData):
		dec.Reject(domain.Reject(domain.ReasonInvalidPrice, "%s", err.Error()))
		return dec
	case errors.Is(err, sizer.ErrInsufficientBuyingPower):
		dec.Reject(domain.Reject(domain.ReasonInsufficientBuyingPower, "%s", err.Error()))
		return dec
	case err != nil:
		dec.Fail(errors.Wrap(err, "failed to size order"))
		return dec
	}
	dec.Quantity = &qty
	dec.Enter(domain.StateSized)

	d.dispatch(ctx, &dec, qty, price)
	return dec
}

// dispatch places the order and records it. Both calls run on a context
// detached from the caller so a dropped request cannot leave an order
// without its audit record.
func (d *Dispatcher) dispatch(ctx context.Context, dec *domain.Decision, qty int64, price decimal.Decimal) {
	sig := dec.Signal
	req, err := domain.NewMarketOrder(sig.Ticker, sig.Action.Side(), qty, d.newOrderID())
	if err != nil {
		dec.Fail(errors.Wrap(err, "failed to build order"))
		return
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.dispatchTimeout)
	defer cancel()

	placed, orderErr := d.trader.PlaceOrder(dctx, req)
	dec.Enter(domain.StateDispatched)

	result := "placed"
	if orderErr != nil {
		result = "failed"
	}
	metrics.OrdersTotal.WithLabelValues(sig.Ticker, req.Side.String(), result).Inc()

	record := domain.AuditRecord{
		Timestamp: d.now(),
		Ticker:    sig.Ticker,
		Action:    sig.Action,
		Quantity:  qty,
		Price:     price,
		Notes:     auditNotes(req, placed, orderErr, dec.Bypassed),
	}
	if err := d.audit.Record(dctx, record); err != nil {
		dec.AuditErr = err
		metrics.AuditFailuresTotal.Inc()
		d.logger.Error("failed to record audit entry",
			zap.String("ticker", sig.Ticker),
			zap.String("client_order_id", req.ClientOrderID),
			zap.Error(err))
	}
	dec.Enter(domain.StateLogged)

	if orderErr != nil {
		dec.Fail(errors.Wrap(orderErr, "failed to place order"))
		return
	}

	dec.Approved = true
	dec.Order = &placed
	dec.Enter(domain.StateResponded)
}

func (d *Dispatcher) observe(dec domain.Decision, elapsed time.Duration) {
	outcome := "approved"
	if !dec.Approved {
		outcome = "rejected"
	}
	metrics.DecisionsTotal.WithLabelValues(outcome, string(dec.Reason)).Inc()
	metrics.DecisionSeconds.Observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.String("ticker", dec.Signal.Ticker),
		zap.String("action", dec.Signal.Action.String()),
		zap.Bool("test", dec.Signal.TestMode),
		zap.String("state", string(dec.State)),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case dec.Approved:
		fields = append(fields, zap.Int64("qty", *dec.Quantity), zap.String("price", dec.Price.String()))
		if dec.Order != nil {
			fields = append(fields, zap.String("order_id", dec.Order.ID))
		}
		d.logger.Info("order placed", fields...)
	case dec.Reason.Class() == domain.ClassDependency:
		d.logger.Error("signal failed", append(fields, zap.Error(dec.Err))...)
	default:
		d.logger.Info("signal rejected", append(fields,
			zap.String("reason", string(dec.Reason)),
			zap.String("class", dec.Reason.Class().String()),
			zap.String("detail", dec.Detail))...)
	}
}

func auditNotes(req domain.OrderRequest, placed domain.PlacedOrder, orderErr error, bypassed []string) string {
	var b strings.Builder
	if orderErr != nil {
		fmt.Fprintf(&b, "order failed: %v", orderErr)
	} else {
		fmt.Fprintf(&b, "order placed id=%s status=%s", placed.ID, placed.Status)
	}
	fmt.Fprintf(&b, " client_order_id=%s", req.ClientOrderID)
	if len(bypassed) > 0 {
		fmt.Fprintf(&b, " test mode, bypassed=%s", strings.Join(bypassed, ","))
	}
	return b.String()
}
