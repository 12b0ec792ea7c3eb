// Package pricer provides latest-quote lookups for the guard's position sizing.
package pricer

import (
	"context"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

// Pricer returns the latest quote for a ticker.
type Pricer interface {
	GetLatestQuote(ctx context.Context, ticker string) (domain.Quote, error)
}
