// Package domain defines the values passed between the guard's components.
package domain

import (
	"fmt"
	"strings"
)

// TradeSignal is an inbound instruction to trade one ticker.
type TradeSignal struct {
	Ticker   string
	Action   Action
	TestMode bool
}

// NewTradeSignal builds a signal from raw request fields. The ticker is
// trimmed and upper-cased; the action is kept verbatim so an unknown value
// still reaches the validator and is rejected there.
func NewTradeSignal(ticker, action string, test bool) TradeSignal {
	return TradeSignal{
		Ticker:   strings.ToUpper(strings.TrimSpace(ticker)),
		Action:   Action(action),
		TestMode: test,
	}
}

// String returns a human-readable string representation.
func (s TradeSignal) String() string {
	if s.TestMode {
		return fmt.Sprintf("%s %s (test)", s.Action, s.Ticker)
	}
	return fmt.Sprintf("%s %s", s.Action, s.Ticker)
}
