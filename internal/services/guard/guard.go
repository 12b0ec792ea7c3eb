// Package guard holds the ordered policy checks a signal must pass before sizing.
package guard

import (
	"context"
	"time"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

// Guard is one policy check in the decision pipeline.
type Guard interface {
	// Name identifies the guard in logs and bypass lists.
	Name() string
	// State is the pipeline state entered while the guard runs.
	State() domain.State
	// Applies reports whether the guard is relevant to the signal at all.
	Applies(sig domain.TradeSignal) bool
	// Check evaluates the signal. A non-nil error is a dependency failure.
	Check(ctx context.Context, sig domain.TradeSignal, now time.Time) (Verdict, error)
}

// Verdict is the result of a single guard.
type Verdict struct {
	Rejection *domain.Rejection
	// Bypassed names sub-checks skipped because of test mode.
	Bypassed []string
}

// Pass is a verdict that lets the signal through.
func Pass(bypassed ...string) Verdict {
	return Verdict{Bypassed: bypassed}
}

// Block is a verdict that stops the signal.
func Block(r *domain.Rejection) Verdict {
	return Verdict{Rejection: r}
}

// Blocked reports whether the verdict stops the signal.
func (v Verdict) Blocked() bool {
	return v.Rejection != nil
}
