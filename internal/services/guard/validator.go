package guard

import (
	"strings"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

// Validator checks signal shape and the ticker allow-list. It never calls out.
type Validator struct {
	allowed map[string]struct{}
}

// NewValidator creates a validator for the given allow-list.
func NewValidator(allowedTickers []string) *Validator {
	allowed := make(map[string]struct{}, len(allowedTickers))
	for _, t := range allowedTickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			allowed[t] = struct{}{}
		}
	}
	return &Validator{allowed: allowed}
}

// Validate rejects unknown tickers first, then unknown actions.
func (v *Validator) Validate(sig domain.TradeSignal) *domain.Rejection {
	if _, ok := v.allowed[sig.Ticker]; !ok {
		return domain.Reject(domain.ReasonTickerNotAllowed, "ticker %q is not in the allow-list", sig.Ticker)
	}
	if !sig.Action.IsValid() {
		return domain.Reject(domain.ReasonInvalidAction, "action %q", sig.Action.String())
	}
	return nil
}
