package clients

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimulateClient carries the settings of the in-process paper brokerage.
type SimulateClient struct {
	StartingCash decimal.Decimal
	// Prices are the static reference prices quoted per ticker.
	Prices map[string]decimal.Decimal
	// FillDelay keeps new orders open for this long before they fill.
	FillDelay time.Duration
	StateDir  string
}

// NewSimulateClient creates a new simulate client.
func NewSimulateClient(startingCash decimal.Decimal, prices map[string]decimal.Decimal, fillDelay time.Duration, stateDir string) *SimulateClient {
	copied := make(map[string]decimal.Decimal, len(prices))
	for k, v := range prices {
		copied[k] = v
	}
	return &SimulateClient{
		StartingCash: startingCash,
		Prices:       copied,
		FillDelay:    fillDelay,
		StateDir:     stateDir,
	}
}
