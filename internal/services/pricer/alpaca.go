package pricer

import (
	"context"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

// AlpacaPricer reads quotes from the Alpaca market data API.
type AlpacaPricer struct {
	client  *marketdata.Client
	feed    string
	limiter *rate.Limiter
}

// NewAlpacaPricer creates a pricer. An empty feed uses the account default.
func NewAlpacaPricer(client *marketdata.Client, feed string, limiter *rate.Limiter) *AlpacaPricer {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &AlpacaPricer{client: client, feed: feed, limiter: limiter}
}

// GetLatestQuote fetches the ticker snapshot and keeps its quote and last trade.
func (p *AlpacaPricer) GetLatestQuote(ctx context.Context, ticker string) (domain.Quote, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.Quote{}, err
	}

	snap, err := p.client.GetSnapshot(ticker, marketdata.GetSnapshotRequest{Feed: marketdata.Feed(p.feed)})
	if err != nil {
		return domain.Quote{}, errors.Wrapf(err, "failed to get snapshot for %s", ticker)
	}
	if snap == nil {
		return domain.Quote{}, nil
	}

	var ask, bid, last float64
	if snap.LatestQuote != nil {
		ask, bid = snap.LatestQuote.AskPrice, snap.LatestQuote.BidPrice
	}
	if snap.LatestTrade != nil {
		last = snap.LatestTrade.Price
	}

	return domain.NewQuoteFromFloats(ask, bid, last), nil
}
