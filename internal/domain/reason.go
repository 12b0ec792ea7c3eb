package domain

import "fmt"

// Reason names why a signal did not result in an order.
type Reason string

const (
	ReasonNone                    Reason = ""
	ReasonTickerNotAllowed        Reason = "ticker not allowed"
	ReasonInvalidAction           Reason = "invalid action"
	ReasonMarketClosed            Reason = "outside market hours"
	ReasonDayTrade                Reason = "day trade blocked"
	ReasonDuplicateExposure       Reason = "duplicate exposure"
	ReasonInvalidPrice            Reason = "invalid price data"
	ReasonInsufficientBuyingPower Reason = "insufficient buying power"
	ReasonDependency              Reason = "dependency failure"
)

// Class groups reasons by the kind of fault behind them.
type Class int

const (
	ClassNone Class = iota
	ClassValidation
	ClassPolicy
	ClassPricing
	ClassDependency
)

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassPolicy:
		return "policy"
	case ClassPricing:
		return "pricing"
	case ClassDependency:
		return "dependency"
	default:
		return "none"
	}
}

// Class returns the fault class the reason belongs to.
func (r Reason) Class() Class {
	switch r {
	case ReasonTickerNotAllowed, ReasonInvalidAction:
		return ClassValidation
	case ReasonMarketClosed, ReasonDayTrade, ReasonDuplicateExposure:
		return ClassPolicy
	case ReasonInvalidPrice, ReasonInsufficientBuyingPower:
		return ClassPricing
	case ReasonDependency:
		return ClassDependency
	default:
		return ClassNone
	}
}

// Rejection is a guard verdict against a signal.
type Rejection struct {
	Reason Reason
	Detail string
}

// Reject builds a rejection with a formatted detail message.
func Reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Error implements error so rejections can travel through error returns.
func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}
