package guard

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

// BypassOpenOrders is reported when test mode skips the open-order read.
const BypassOpenOrders = "open_orders"

type exposureReader interface {
	GetPosition(ctx context.Context, ticker string) (domain.PositionState, error)
	GetOpenOrders(ctx context.Context, ticker string) ([]domain.OpenOrder, error)
}

// Exposure blocks a BUY when a long position or a pending buy already exists.
type Exposure struct {
	reader exposureReader
}

// NewExposure creates the duplicate-exposure guard.
func NewExposure(reader exposureReader) *Exposure {
	return &Exposure{reader: reader}
}

func (g *Exposure) Name() string        { return "duplicate_exposure" }
func (g *Exposure) State() domain.State { return domain.StateExposureCheck }

// Applies limits the guard to BUY signals.
func (g *Exposure) Applies(sig domain.TradeSignal) bool {
	return sig.Action == domain.ActionBuy
}

// Check implements Guard. In test mode the position is still read but open
// orders are not.
func (g *Exposure) Check(ctx context.Context, sig domain.TradeSignal, _ time.Time) (Verdict, error) {
	pos, err := g.reader.GetPosition(ctx, sig.Ticker)
	if err != nil {
		return Verdict{}, errors.Wrap(err, "failed to get position")
	}

	var bypassed []string
	hasOpenBuy := false
	if sig.TestMode {
		bypassed = append(bypassed, BypassOpenOrders)
	} else {
		open, err := g.reader.GetOpenOrders(ctx, sig.Ticker)
		if err != nil {
			return Verdict{}, errors.Wrap(err, "failed to get open orders")
		}
		hasOpenBuy = hasOpenSide(open, sig.Ticker, domain.SideBuy)
	}

	if BlocksDuplicateBuy(pos.QuantityHeld, hasOpenBuy) {
		return Verdict{
			Rejection: domain.Reject(domain.ReasonDuplicateExposure,
				"position %s, open buy %t", pos.QuantityHeld.String(), hasOpenBuy),
			Bypassed: bypassed,
		}, nil
	}
	return Pass(bypassed...), nil
}

// BlocksDuplicateBuy reports whether a BUY would stack exposure.
func BlocksDuplicateBuy(positionQty decimal.Decimal, hasOpenBuy bool) bool {
	return positionQty.IsPositive() || hasOpenBuy
}

func hasOpenSide(orders []domain.OpenOrder, ticker string, side domain.Side) bool {
	for _, o := range orders {
		if o.Ticker == ticker && o.Side == side {
			return true
		}
	}
	return false
}
