package clients

import (
	"net/http"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"golang.org/x/time/rate"
)

const (
	DefaultAlpacaTradingURL = "https://paper-api.alpaca.markets"
	DefaultAlpacaDataURL    = "https://data.alpaca.markets"
	defaultAlpacaTimeout    = 10 * time.Second

	// Alpaca allows 200 requests per minute per account.
	defaultAlpacaRateLimitPerMinute = 180
)

// AlpacaOptions configures both Alpaca API clients.
type AlpacaOptions struct {
	APIKey     string
	APISecret  string
	TradingURL string
	DataURL    string
	Feed       string
	Timeout    time.Duration

	// RateLimitPerMinute caps outbound calls shared by both clients.
	RateLimitPerMinute int
}

// AlpacaClient bundles the trading and market data clients sharing one key pair.
type AlpacaClient struct {
	trading *alpaca.Client
	data    *marketdata.Client
	feed    string
	limiter *rate.Limiter
}

// NewAlpacaClient creates Alpaca trading and market data clients.
func NewAlpacaClient(opts AlpacaOptions) *AlpacaClient {
	if opts.TradingURL == "" {
		opts.TradingURL = DefaultAlpacaTradingURL
	}
	if opts.DataURL == "" {
		opts.DataURL = DefaultAlpacaDataURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultAlpacaTimeout
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = defaultAlpacaRateLimitPerMinute
	}
	httpClient := &http.Client{Timeout: opts.Timeout}

	return &AlpacaClient{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:     opts.APIKey,
			APISecret:  opts.APISecret,
			BaseURL:    opts.TradingURL,
			HTTPClient: httpClient,
		}),
		data: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:     opts.APIKey,
			APISecret:  opts.APISecret,
			BaseURL:    opts.DataURL,
			HTTPClient: httpClient,
		}),
		feed:    opts.Feed,
		limiter: rate.NewLimiter(rate.Limit(float64(opts.RateLimitPerMinute)/60), 5),
	}
}

// Trading returns the trading API client.
func (c *AlpacaClient) Trading() *alpaca.Client {
	return c.trading
}

// MarketData returns the market data API client.
func (c *AlpacaClient) MarketData() *marketdata.Client {
	return c.data
}

// Feed returns the configured market data feed, empty for the account default.
func (c *AlpacaClient) Feed() string {
	return c.feed
}

// Limiter returns the rate limiter every Alpaca call must wait on.
func (c *AlpacaClient) Limiter() *rate.Limiter {
	return c.limiter
}
