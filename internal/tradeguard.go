package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/vadiminshakov/tradeguard/config"
	"github.com/vadiminshakov/tradeguard/internal/domain"
	"github.com/vadiminshakov/tradeguard/internal/services/audit"
	"github.com/vadiminshakov/tradeguard/internal/services/calendar"
	"github.com/vadiminshakov/tradeguard/internal/services/dispatcher"
	"github.com/vadiminshakov/tradeguard/internal/services/guard"
	"github.com/vadiminshakov/tradeguard/internal/services/sizer"
	"github.com/vadiminshakov/tradeguard/internal/storage/auditlog"
	"github.com/vadiminshakov/tradeguard/internal/web"
	"github.com/vadiminshakov/tradeguard/pkg/retrier"
)

// TradeGuard wires the decision pipeline to its brokerage, audit sinks and
// HTTP surface.
type TradeGuard struct {
	Dispatcher *dispatcher.Dispatcher
	Server     *web.Server

	conf   config.Config
	broker brokerService
	wal    *auditlog.WALStore
	logger *zap.Logger
}

// NewTradeGuard builds the service for client, which must be a
// *clients.AlpacaClient or a *clients.SimulateClient.
func NewTradeGuard(ctx context.Context, conf config.Config, client any, logger *zap.Logger) (*TradeGuard, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := newServiceProvider(client, logger)
	if err != nil {
		return nil, err
	}
	broker, err := provider.Trader()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trader")
	}
	quotes, err := provider.Pricer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pricer")
	}

	s, err := sizer.New(conf.Trading.RiskFraction)
	if err != nil {
		return nil, err
	}

	wal, err := auditlog.NewWALStore(conf.Audit.WALDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audit journal")
	}
	recorder := audit.NewMulti(logger.Named("audit")).Add("wal", wal)

	if conf.Audit.Sheets.Enabled() {
		var opts []option.ClientOption
		if conf.Audit.Sheets.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(conf.Audit.Sheets.CredentialsFile))
		}
		sheet, err := audit.NewSheetsSink(ctx, conf.Audit.Sheets.SpreadsheetID, conf.Audit.Sheets.Range, opts...)
		if err != nil {
			_ = wal.Close()
			return nil, err
		}
		recorder.Add("sheets", sheet)
	}

	opts := []dispatcher.Option{dispatcher.WithDispatchTimeout(conf.Trading.DispatchTimeout)}
	if conf.Trading.SerializePerTicker {
		opts = append(opts, dispatcher.WithTickerSerialization())
	}

	d, err := dispatcher.New(logger.Named("dispatcher"),
		guard.NewValidator(conf.Trading.AllowedTickers),
		buildGuards(conf, broker),
		broker, quotes, s, recorder, opts...)
	if err != nil {
		_ = wal.Close()
		return nil, err
	}

	server := web.NewServer(conf.Server.Addr, d, logger.Named("web"),
		web.WithAuditReader(wal),
		web.WithPassphrase(conf.Server.Passphrase))

	logger.Info("trade guard configured",
		zap.String("platform", conf.Broker.Platform),
		zap.Strings("tickers", conf.Trading.AllowedTickers),
		zap.String("risk_fraction", conf.Trading.RiskFraction.String()),
		zap.Bool("day_trade_guard", conf.Guards.DayTrade),
		zap.Bool("exposure_guard", conf.Guards.DuplicateExposure),
		zap.Bool("serialize_per_ticker", conf.Trading.SerializePerTicker),
		zap.Int("audit_sinks", recorder.Len()))

	return &TradeGuard{
		Dispatcher: d,
		Server:     server,
		conf:       conf,
		broker:     broker,
		wal:        wal,
		logger:     logger,
	}, nil
}

// buildGuards returns the policy checks in pipeline order. The market-hours
// check is always present; the others follow the config toggles.
func buildGuards(conf config.Config, broker brokerService) []guard.Guard {
	cal := calendar.Calendar{
		OpenHour:    conf.MarketHours.OpenHour,
		CloseHour:   conf.MarketHours.CloseHour,
		OffsetHours: conf.MarketHours.UTCOffsetHours,
	}

	guards := []guard.Guard{guard.NewMarketHours(cal)}
	if conf.Guards.DayTrade {
		guards = append(guards, guard.NewDayTrade(broker))
	}
	if conf.Guards.DuplicateExposure {
		guards = append(guards, guard.NewExposure(broker))
	}
	return guards
}

// Probe reads the account until the brokerage answers, giving up early on
// credential errors.
func (g *TradeGuard) Probe(ctx context.Context, r *retrier.Retrier) (domain.AccountSnapshot, error) {
	if r == nil {
		r = retrier.New(retrier.WithOnRetry(func(attempt int, err error, wait time.Duration) {
			g.logger.Warn("brokerage probe failed, retrying",
				zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
		}))
	}

	return retrier.DoWithData(r, ctx, func(ctx context.Context) (domain.AccountSnapshot, error) {
		acc, err := g.broker.GetAccount(ctx)
		if isAuthError(err) {
			return acc, retrier.Permanent(err)
		}
		return acc, err
	})
}

// Run serves HTTP until ctx is cancelled.
func (g *TradeGuard) Run(ctx context.Context) error {
	if len(g.conf.Server.TLSDomains) > 0 {
		return g.Server.StartWithAutoTLS(ctx, g.conf.Server.TLSDomains, g.conf.Server.CertCacheDir)
	}
	return g.Server.Start(ctx)
}

// Close releases the audit journal.
func (g *TradeGuard) Close() error {
	var errs error
	if g.wal != nil {
		errs = multierr.Append(errs, g.wal.Close())
	}
	return errs
}

func isAuthError(err error) bool {
	var apiErr *alpaca.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}
