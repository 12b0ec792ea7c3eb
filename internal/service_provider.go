package internal

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeguard/internal/clients"
	"github.com/vadiminshakov/tradeguard/internal/domain"
	"github.com/vadiminshakov/tradeguard/internal/services/pricer"
	"github.com/vadiminshakov/tradeguard/internal/services/trader"
	"github.com/vadiminshakov/tradeguard/internal/storage/simstate"
)

type brokerService interface {
	GetAccount(ctx context.Context) (domain.AccountSnapshot, error)
	GetPosition(ctx context.Context, ticker string) (domain.PositionState, error)
	GetOpenOrders(ctx context.Context, ticker string) ([]domain.OpenOrder, error)
	GetClosedOrders(ctx context.Context, ticker string) ([]domain.ClosedOrder, error)
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.PlacedOrder, error)
}

type quoteService interface {
	GetLatestQuote(ctx context.Context, ticker string) (domain.Quote, error)
}

// serviceProvider builds the platform-specific brokerage and quote services.
type serviceProvider interface {
	Trader() (brokerService, error)
	Pricer() (quoteService, error)
}

// newServiceProvider dispatches on the client type.
func newServiceProvider(client any, logger *zap.Logger) (serviceProvider, error) {
	switch c := client.(type) {
	case *clients.AlpacaClient:
		return &alpacaProvider{client: c}, nil
	case *clients.SimulateClient:
		return &simulateProvider{client: c, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported client type: %T", client)
	}
}

type alpacaProvider struct {
	client *clients.AlpacaClient
}

func (p *alpacaProvider) Trader() (brokerService, error) {
	return trader.NewAlpacaTrader(p.client.Trading(), p.client.Limiter())
}

func (p *alpacaProvider) Pricer() (quoteService, error) {
	return pricer.NewAlpacaPricer(p.client.MarketData(), p.client.Feed(), p.client.Limiter()), nil
}

type simulateProvider struct {
	client     *clients.SimulateClient
	logger     *zap.Logger
	pricer     *pricer.SimulatePricer
	pricerOnce sync.Once
}

// getPricer shares one price table between the simulated broker's fills and
// the sizer's quotes.
func (p *simulateProvider) getPricer() *pricer.SimulatePricer {
	p.pricerOnce.Do(func() {
		p.pricer = pricer.NewSimulatePricer(p.client.Prices)
	})
	return p.pricer
}

func (p *simulateProvider) Trader() (brokerService, error) {
	var opts []trader.SimulateOption
	if p.client.StateDir != "" {
		store, err := simstate.NewStore(p.client.StateDir, "account")
		if err != nil {
			return nil, err
		}
		opts = append(opts, trader.WithStateStore(store))
	}
	return trader.NewSimulateTrader(p.client.StartingCash, p.client.FillDelay, p.logger, p.getPricer(), opts...)
}

func (p *simulateProvider) Pricer() (quoteService, error) {
	return p.getPricer(), nil
}
