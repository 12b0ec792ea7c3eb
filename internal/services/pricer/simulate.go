package pricer

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

// SimulatePricer quotes fixed prices configured per ticker.
type SimulatePricer struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewSimulatePricer creates a pricer over a static price table.
func NewSimulatePricer(prices map[string]decimal.Decimal) *SimulatePricer {
	copied := make(map[string]decimal.Decimal, len(prices))
	for k, v := range prices {
		copied[k] = v
	}
	return &SimulatePricer{prices: copied}
}

// SetPrice replaces the quoted price of ticker.
func (p *SimulatePricer) SetPrice(ticker string, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[ticker] = price
}

// GetLatestQuote returns the configured price as the ask.
func (p *SimulatePricer) GetLatestQuote(_ context.Context, ticker string) (domain.Quote, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	price, ok := p.prices[ticker]
	if !ok {
		return domain.Quote{}, fmt.Errorf("no simulated price for %s", ticker)
	}
	return domain.Quote{Ask: &price}, nil
}
