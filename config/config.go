// Package config loads the service configuration from YAML and the environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	PlatformAlpaca   = "alpaca"
	PlatformSimulate = "simulate"
)

// Environment variables read on top of the YAML file.
const (
	EnvAlpacaAPIKey      = "ALPACA_API_KEY"
	EnvAlpacaSecretKey   = "ALPACA_SECRET_KEY"
	EnvPassphrase        = "TRADEGUARD_PASSPHRASE"
	EnvSheetsCredentials = "GOOGLE_SHEETS_CREDENTIALS"
	EnvAddr              = "TRADEGUARD_ADDR"
)

// Secret is a credential that never prints its value.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// Reveal returns the raw credential.
func (s Secret) Reveal() string {
	return string(s)
}

type Config struct {
	Server      ServerConfig
	Broker      BrokerConfig
	Trading     TradingConfig
	MarketHours MarketHoursConfig
	Guards      GuardsConfig
	Audit       AuditConfig
	Simulate    SimulateConfig
	LogLevel    string
}

type ServerConfig struct {
	Addr         string
	TLSDomains   []string
	CertCacheDir string
	Passphrase   Secret
}

type BrokerConfig struct {
	Platform           string
	BaseURL            string
	DataURL            string
	Feed               string
	RateLimitPerMinute int
	Timeout            time.Duration
	APIKey             Secret
	APISecret          Secret
}

type TradingConfig struct {
	AllowedTickers     []string
	RiskFraction       decimal.Decimal
	SerializePerTicker bool
	DispatchTimeout    time.Duration
}

type MarketHoursConfig struct {
	OpenHour       int
	CloseHour      int
	UTCOffsetHours int
}

type GuardsConfig struct {
	DayTrade          bool
	DuplicateExposure bool
}

type AuditConfig struct {
	WALDir string
	Sheets SheetsConfig
}

type SheetsConfig struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
}

// Enabled reports whether a spreadsheet sink is configured.
func (s SheetsConfig) Enabled() bool {
	return s.SpreadsheetID != ""
}

type SimulateConfig struct {
	StartingCash decimal.Decimal
	Prices       map[string]decimal.Decimal
	FillDelay    time.Duration
	StateDir     string
}

// ConfigTmp mirrors the YAML file. Decimal values are kept as strings so
// they round-trip without float noise.
type ConfigTmp struct {
	Server      ServerTmp      `yaml:"server"`
	Broker      BrokerTmp      `yaml:"broker"`
	Trading     TradingTmp     `yaml:"trading"`
	MarketHours MarketHoursTmp `yaml:"market_hours"`
	Guards      GuardsTmp      `yaml:"guards"`
	Audit       AuditTmp       `yaml:"audit"`
	Simulate    SimulateTmp    `yaml:"simulate,omitempty"`
	Log         LogTmp         `yaml:"log"`
}

type ServerTmp struct {
	Addr         string   `yaml:"addr"`
	TLSDomains   []string `yaml:"tls_domains,omitempty"`
	CertCacheDir string   `yaml:"cert_cache_dir,omitempty"`
	Passphrase   string   `yaml:"passphrase,omitempty"`
}

type BrokerTmp struct {
	Platform           string        `yaml:"platform"`
	BaseURL            string        `yaml:"base_url,omitempty"`
	DataURL            string        `yaml:"data_url,omitempty"`
	Feed               string        `yaml:"feed,omitempty"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute,omitempty"`
	Timeout            time.Duration `yaml:"timeout,omitempty"`
}

type TradingTmp struct {
	AllowedTickers     []string      `yaml:"allowed_tickers"`
	RiskFraction       string        `yaml:"risk_fraction,omitempty"`
	SerializePerTicker bool          `yaml:"serialize_per_ticker,omitempty"`
	DispatchTimeout    time.Duration `yaml:"dispatch_timeout,omitempty"`
}

type MarketHoursTmp struct {
	OpenHour       *int `yaml:"open_hour,omitempty"`
	CloseHour      *int `yaml:"close_hour,omitempty"`
	UTCOffsetHours *int `yaml:"utc_offset_hours,omitempty"`
}

type GuardsTmp struct {
	DayTrade          *bool `yaml:"day_trade,omitempty"`
	DuplicateExposure *bool `yaml:"duplicate_exposure,omitempty"`
}

type AuditTmp struct {
	WALDir string    `yaml:"wal_dir,omitempty"`
	Sheets SheetsTmp `yaml:"sheets,omitempty"`
}

type SheetsTmp struct {
	SpreadsheetID   string `yaml:"spreadsheet_id,omitempty"`
	Range           string `yaml:"range,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

type SimulateTmp struct {
	StartingCash string            `yaml:"starting_cash,omitempty"`
	Prices       map[string]string `yaml:"prices,omitempty"`
	FillDelay    time.Duration     `yaml:"fill_delay,omitempty"`
	StateDir     string            `yaml:"state_dir,omitempty"`
}

type LogTmp struct {
	Level string `yaml:"level,omitempty"`
}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			CertCacheDir: "./certs",
		},
		Broker: BrokerConfig{
			Platform:           PlatformAlpaca,
			Feed:               "iex",
			RateLimitPerMinute: 180,
			Timeout:            10 * time.Second,
		},
		Trading: TradingConfig{
			AllowedTickers:  []string{"IMNM"},
			RiskFraction:    decimal.RequireFromString("0.02"),
			DispatchTimeout: 15 * time.Second,
		},
		MarketHours: MarketHoursConfig{
			OpenHour:       8,
			CloseHour:      15,
			UTCOffsetHours: -5,
		},
		Guards: GuardsConfig{
			DayTrade:          true,
			DuplicateExposure: true,
		},
		Audit: AuditConfig{
			WALDir: "./wal/audit",
			Sheets: SheetsConfig{Range: "Sheet1!A:F"},
		},
		Simulate: SimulateConfig{
			StartingCash: decimal.NewFromInt(10000),
			Prices:       map[string]decimal.Decimal{},
			StateDir:     "./wal/simulate",
		},
		LogLevel: "info",
	}
}

// Load reads path (if not empty), applies defaults, then overlays the
// environment. A .env file in the working directory is loaded first when present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "failed to load .env")
	}

	var tmp ConfigTmp
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "failed to read config")
		}
		if err := yaml.Unmarshal(data, &tmp); err != nil {
			return Config{}, errors.Wrapf(err, "failed to parse %s", path)
		}
	}

	cfg, err := tmp.build()
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c ConfigTmp) build() (Config, error) {
	cfg := Default()

	if c.Server.Addr != "" {
		cfg.Server.Addr = c.Server.Addr
	}
	cfg.Server.TLSDomains = c.Server.TLSDomains
	if c.Server.CertCacheDir != "" {
		cfg.Server.CertCacheDir = c.Server.CertCacheDir
	}
	cfg.Server.Passphrase = Secret(c.Server.Passphrase)

	if c.Broker.Platform != "" {
		cfg.Broker.Platform = strings.ToLower(c.Broker.Platform)
	}
	cfg.Broker.BaseURL = c.Broker.BaseURL
	cfg.Broker.DataURL = c.Broker.DataURL
	if c.Broker.Feed != "" {
		cfg.Broker.Feed = c.Broker.Feed
	}
	if c.Broker.RateLimitPerMinute > 0 {
		cfg.Broker.RateLimitPerMinute = c.Broker.RateLimitPerMinute
	}
	if c.Broker.Timeout > 0 {
		cfg.Broker.Timeout = c.Broker.Timeout
	}

	if len(c.Trading.AllowedTickers) > 0 {
		cfg.Trading.AllowedTickers = c.Trading.AllowedTickers
	}
	if c.Trading.RiskFraction != "" {
		fraction, err := decimal.NewFromString(c.Trading.RiskFraction)
		if err != nil {
			return Config{}, errors.Wrapf(err, "incorrect 'risk_fraction' param in yaml config (must be a decimal, e.g. 0.02)")
		}
		cfg.Trading.RiskFraction = fraction
	}
	cfg.Trading.SerializePerTicker = c.Trading.SerializePerTicker
	if c.Trading.DispatchTimeout > 0 {
		cfg.Trading.DispatchTimeout = c.Trading.DispatchTimeout
	}

	if c.MarketHours.OpenHour != nil {
		cfg.MarketHours.OpenHour = *c.MarketHours.OpenHour
	}
	if c.MarketHours.CloseHour != nil {
		cfg.MarketHours.CloseHour = *c.MarketHours.CloseHour
	}
	if c.MarketHours.UTCOffsetHours != nil {
		cfg.MarketHours.UTCOffsetHours = *c.MarketHours.UTCOffsetHours
	}

	if c.Guards.DayTrade != nil {
		cfg.Guards.DayTrade = *c.Guards.DayTrade
	}
	if c.Guards.DuplicateExposure != nil {
		cfg.Guards.DuplicateExposure = *c.Guards.DuplicateExposure
	}

	if c.Audit.WALDir != "" {
		cfg.Audit.WALDir = c.Audit.WALDir
	}
	cfg.Audit.Sheets.SpreadsheetID = c.Audit.Sheets.SpreadsheetID
	if c.Audit.Sheets.Range != "" {
		cfg.Audit.Sheets.Range = c.Audit.Sheets.Range
	}
	cfg.Audit.Sheets.CredentialsFile = c.Audit.Sheets.CredentialsFile

	if c.Simulate.StartingCash != "" {
		cash, err := decimal.NewFromString(c.Simulate.StartingCash)
		if err != nil {
			return Config{}, errors.Wrap(err, "incorrect 'starting_cash' param in yaml config (must be a decimal)")
		}
		cfg.Simulate.StartingCash = cash
	}
	for ticker, raw := range c.Simulate.Prices {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return Config{}, errors.Wrapf(err, "incorrect price for %s in yaml config", ticker)
		}
		cfg.Simulate.Prices[strings.ToUpper(strings.TrimSpace(ticker))] = price
	}
	cfg.Simulate.FillDelay = c.Simulate.FillDelay
	if c.Simulate.StateDir != "" {
		cfg.Simulate.StateDir = c.Simulate.StateDir
	}

	if c.Log.Level != "" {
		cfg.LogLevel = c.Log.Level
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAlpacaAPIKey); v != "" {
		c.Broker.APIKey = Secret(v)
	}
	if v := os.Getenv(EnvAlpacaSecretKey); v != "" {
		c.Broker.APISecret = Secret(v)
	}
	if v := os.Getenv(EnvPassphrase); v != "" {
		c.Server.Passphrase = Secret(v)
	}
	if v := os.Getenv(EnvSheetsCredentials); v != "" {
		c.Audit.Sheets.CredentialsFile = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks values that would otherwise fail later at runtime.
func (c Config) Validate() error {
	switch c.Broker.Platform {
	case PlatformAlpaca:
		if c.Broker.APIKey == "" || c.Broker.APISecret == "" {
			return errors.Errorf("%s and %s environment variables must be set", EnvAlpacaAPIKey, EnvAlpacaSecretKey)
		}
	case PlatformSimulate:
		if c.Simulate.StartingCash.IsNegative() {
			return errors.New("simulate.starting_cash must not be negative")
		}
	default:
		return errors.Errorf("unsupported platform: %s", c.Broker.Platform)
	}

	if len(c.Trading.AllowedTickers) == 0 {
		return errors.New("trading.allowed_tickers must not be empty")
	}
	if !c.Trading.RiskFraction.IsPositive() || c.Trading.RiskFraction.GreaterThan(decimal.NewFromInt(1)) {
		return errors.Errorf("trading.risk_fraction must be in (0, 1], got %s", c.Trading.RiskFraction.String())
	}
	if c.MarketHours.OpenHour >= c.MarketHours.CloseHour {
		return errors.Errorf("market_hours.open_hour (%d) must be before close_hour (%d)",
			c.MarketHours.OpenHour, c.MarketHours.CloseHour)
	}
	return nil
}

// Tmp converts the configuration back into its YAML form. Credentials read
// from the environment are not included.
func (c Config) Tmp() ConfigTmp {
	open, closeHour, offset := c.MarketHours.OpenHour, c.MarketHours.CloseHour, c.MarketHours.UTCOffsetHours
	dayTrade, exposure := c.Guards.DayTrade, c.Guards.DuplicateExposure

	tmp := ConfigTmp{
		Server: ServerTmp{
			Addr:         c.Server.Addr,
			TLSDomains:   c.Server.TLSDomains,
			CertCacheDir: c.Server.CertCacheDir,
		},
		Broker: BrokerTmp{
			Platform:           c.Broker.Platform,
			BaseURL:            c.Broker.BaseURL,
			DataURL:            c.Broker.DataURL,
			Feed:               c.Broker.Feed,
			RateLimitPerMinute: c.Broker.RateLimitPerMinute,
			Timeout:            c.Broker.Timeout,
		},
		Trading: TradingTmp{
			AllowedTickers:     c.Trading.AllowedTickers,
			RiskFraction:       c.Trading.RiskFraction.String(),
			SerializePerTicker: c.Trading.SerializePerTicker,
			DispatchTimeout:    c.Trading.DispatchTimeout,
		},
		MarketHours: MarketHoursTmp{OpenHour: &open, CloseHour: &closeHour, UTCOffsetHours: &offset},
		Guards:      GuardsTmp{DayTrade: &dayTrade, DuplicateExposure: &exposure},
		Audit: AuditTmp{
			WALDir: c.Audit.WALDir,
			Sheets: SheetsTmp{
				SpreadsheetID:   c.Audit.Sheets.SpreadsheetID,
				Range:           c.Audit.Sheets.Range,
				CredentialsFile: c.Audit.Sheets.CredentialsFile,
			},
		},
		Log: LogTmp{Level: c.LogLevel},
	}

	if c.Broker.Platform == PlatformSimulate {
		prices := make(map[string]string, len(c.Simulate.Prices))
		for ticker, p := range c.Simulate.Prices {
			prices[ticker] = p.String()
		}
		tmp.Simulate = SimulateTmp{
			StartingCash: c.Simulate.StartingCash.String(),
			Prices:       prices,
			FillDelay:    c.Simulate.FillDelay,
			StateDir:     c.Simulate.StateDir,
		}
	}
	return tmp
}

// Save writes the configuration to path as YAML.
func Save(path string, c Config) error {
	data, err := yaml.Marshal(c.Tmp())
	if err != nil {
		return errors.Wrap(err, "failed to generate yaml")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}
	return nil
}
