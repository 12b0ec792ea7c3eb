package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// State is a step of the per-signal decision pipeline.
type State string

const (
	StateReceived      State = "received"
	StateValidated     State = "validated"
	StateMarketCheck   State = "market_check"
	StateDayTradeCheck State = "day_trade_check"
	StateExposureCheck State = "exposure_check"
	StatePriced        State = "priced"
	StateSized         State = "sized"
	StateDispatched    State = "dispatched"
	StateLogged        State = "logged"
	StateResponded     State = "responded"
	StateRejected      State = "rejected"
)

// Decision is the single outcome produced for every signal.
type Decision struct {
	Signal   TradeSignal
	Approved bool
	Reason   Reason
	// Detail is safe to log but not to return to the caller.
	Detail   string
	Quantity *int64
	Price    *decimal.Decimal
	State    State
	// Trail lists every state entered, in order.
	Trail []State
	// Bypassed names checks skipped because of test mode.
	Bypassed []string
	Order    *PlacedOrder
	// AuditErr is set when the order went out but the audit append failed.
	AuditErr error
	// Err holds the underlying dependency failure, if any.
	Err error
}

// Enter moves the decision into the given state.
func (d *Decision) Enter(s State) {
	d.State = s
	d.Trail = append(d.Trail, s)
}

// Reject terminates the decision with the given reason.
func (d *Decision) Reject(r *Rejection) {
	d.Approved = false
	d.Reason = r.Reason
	d.Detail = r.Detail
	d.Enter(StateRejected)
}

// Fail terminates the decision as a dependency failure.
func (d *Decision) Fail(err error) {
	d.Approved = false
	d.Reason = ReasonDependency
	d.Err = err
	if err != nil {
		d.Detail = err.Error()
	}
	d.Enter(StateRejected)
}

// Class returns the fault class behind a rejection, ClassNone when approved.
func (d Decision) Class() Class {
	if d.Approved {
		return ClassNone
	}
	return d.Reason.Class()
}

// Confirmation is the text returned to the caller for an approved decision.
func (d Decision) Confirmation() string {
	var qty int64
	if d.Quantity != nil {
		qty = *d.Quantity
	}
	return fmt.Sprintf("Order placed: %s %d %s", d.Signal.Action, qty, d.Signal.Ticker)
}
