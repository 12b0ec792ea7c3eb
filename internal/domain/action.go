package domain

import "github.com/pkg/errors"

// Action is the trade direction requested by an inbound signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// ErrInvalidAction is returned by ParseAction for anything other than BUY or SELL.
var ErrInvalidAction = errors.New("invalid action")

// ParseAction converts raw signal text into an Action. Matching is exact.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionBuy, ActionSell:
		return Action(s), nil
	}
	return "", ErrInvalidAction
}

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// IsValid checks if the Action value is valid.
func (a Action) IsValid() bool {
	return a == ActionBuy || a == ActionSell
}

// Side maps the action onto the brokerage order side.
func (a Action) Side() Side {
	if a == ActionSell {
		return SideSell
	}
	return SideBuy
}

// Opposite returns the reverse direction.
func (a Action) Opposite() Action {
	if a == ActionSell {
		return ActionBuy
	}
	return ActionSell
}

// Side is the brokerage wording for an order direction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// String returns the string representation.
func (s Side) String() string {
	return string(s)
}
