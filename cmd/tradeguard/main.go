// Command tradeguard receives trade signals over HTTP and forwards the ones
// that pass its risk checks to the brokerage as market orders.
//
// Usage:
//
//	tradeguard --config config.yaml
//	tradeguard --setup (interactive wizard, writes config.gen.yaml)
//
// Required environment variables for the alpaca platform:
//
//	ALPACA_API_KEY, ALPACA_SECRET_KEY
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/tradeguard/config"
	"github.com/vadiminshakov/tradeguard/internal"
	"github.com/vadiminshakov/tradeguard/internal/clients"
	"github.com/vadiminshakov/tradeguard/internal/setup"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config")
	runSetup := flag.Bool("setup", false, "run the configuration wizard")
	flag.Parse()

	if *runSetup {
		path, err := setup.RunTUI()
		if err != nil {
			log.Fatal(err)
		}
		*configPath = path
	}

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(conf.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var client any
	switch conf.Broker.Platform {
	case config.PlatformAlpaca:
		client = clients.NewAlpacaClient(clients.AlpacaOptions{
			APIKey:             conf.Broker.APIKey.Reveal(),
			APISecret:          conf.Broker.APISecret.Reveal(),
			TradingURL:         conf.Broker.BaseURL,
			DataURL:            conf.Broker.DataURL,
			Feed:               conf.Broker.Feed,
			Timeout:            conf.Broker.Timeout,
			RateLimitPerMinute: conf.Broker.RateLimitPerMinute,
		})
	case config.PlatformSimulate:
		client = clients.NewSimulateClient(conf.Simulate.StartingCash, conf.Simulate.Prices,
			conf.Simulate.FillDelay, conf.Simulate.StateDir)
	default:
		logger.Fatal("unsupported platform", zap.String("platform", conf.Broker.Platform))
	}

	guard, err := internal.NewTradeGuard(ctx, conf, client, logger)
	if err != nil {
		logger.Fatal("failed to build trade guard", zap.Error(err))
	}
	defer func() {
		if err := guard.Close(); err != nil {
			logger.Warn("failed to close trade guard", zap.Error(err))
		}
	}()

	account, err := guard.Probe(ctx, nil)
	if err != nil {
		logger.Fatal("brokerage is unreachable", zap.Error(err))
	}
	logger.Info("brokerage reachable", zap.String("buying_power", account.BuyingPower.String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return guard.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return
	}
	logger.Info("shutdown complete")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
