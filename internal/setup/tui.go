// Package setup runs the interactive configuration wizard.
package setup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/tradeguard/config"
)

const generatedConfigPath = "config.gen.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// answers holds the raw wizard input.
type answers struct {
	platform     string
	tickers      string
	riskFraction string
	openHour     string
	closeHour    string
	utcOffset    string
	dayTrade     bool
	exposure     bool
	serialize    bool
	addr         string
	sheetID      string
	startingCash string
	simPrices    string
}

func defaultAnswers() answers {
	d := config.Default()
	return answers{
		platform:     d.Broker.Platform,
		tickers:      strings.Join(d.Trading.AllowedTickers, ","),
		riskFraction: d.Trading.RiskFraction.String(),
		openHour:     strconv.Itoa(d.MarketHours.OpenHour),
		closeHour:    strconv.Itoa(d.MarketHours.CloseHour),
		utcOffset:    strconv.Itoa(d.MarketHours.UTCOffsetHours),
		dayTrade:     d.Guards.DayTrade,
		exposure:     d.Guards.DuplicateExposure,
		addr:         d.Server.Addr,
		startingCash: d.Simulate.StartingCash.String(),
	}
}

func step(title string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRADEGUARD CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(title))
}

// RunTUI launches the wizard and returns the path of the written config.
func RunTUI() (string, error) {
	a := defaultAnswers()
	var confirm bool

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRADEGUARD CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Guard rails for your webhook orders.\n"))

	fmt.Println(stepStyle.Render("STEP 1: BROKERAGE"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should orders go?").
				Options(
					huh.NewOption("Alpaca (ALPACA_API_KEY / ALPACA_SECRET_KEY)", config.PlatformAlpaca),
					huh.NewOption("Simulation", config.PlatformSimulate),
				).
				Value(&a.platform),
		),
	).Run()
	if err != nil {
		return "", err
	}

	step("STEP 2: TRADING")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Allowed tickers").
				Description("Comma separated (e.g. IMNM,AAPL)").
				Value(&a.tickers).
				Validate(validateTickers),
			huh.NewInput().
				Title("Risk fraction").
				Description("Share of buying power per order (e.g. 0.02)").
				Value(&a.riskFraction).
				Validate(validateFraction),
		),
	).Run()
	if err != nil {
		return "", err
	}

	step("STEP 3: MARKET HOURS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Open hour").Value(&a.openHour).Validate(validateHour),
			huh.NewInput().Title("Close hour").Value(&a.closeHour).Validate(validateHour),
			huh.NewInput().
				Title("UTC offset hours").
				Description("Fixed offset, no daylight saving (e.g. -5)").
				Value(&a.utcOffset).
				Validate(validateOffset),
		),
	).Run()
	if err != nil {
		return "", err
	}

	step("STEP 4: GUARDS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Block same-day round trips?").Value(&a.dayTrade),
			huh.NewConfirm().Title("Block a BUY while a position or open buy exists?").Value(&a.exposure),
			huh.NewConfirm().Title("Process signals for the same ticker one at a time?").Value(&a.serialize),
		),
	).Run()
	if err != nil {
		return "", err
	}

	step("STEP 5: SERVER AND AUDIT")
	fields := []huh.Field{
		huh.NewInput().Title("Listen address").Value(&a.addr),
		huh.NewInput().
			Title("Google Sheet ID").
			Description("Optional, leave empty to keep the local journal only").
			Value(&a.sheetID),
	}
	if a.platform == config.PlatformSimulate {
		fields = append(fields,
			huh.NewInput().Title("Starting cash").Value(&a.startingCash).Validate(validatePositive),
			huh.NewInput().
				Title("Reference prices").
				Description("TICKER=PRICE pairs, comma separated (e.g. IMNM=12.5)").
				Value(&a.simPrices).
				Validate(func(s string) error {
					_, err := parsePrices(s)
					return err
				}),
		)
	}
	if err = huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return "", err
	}

	conf, err := a.build()
	if err != nil {
		return "", err
	}

	step("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"Platform: %s\nTickers: %s\nRisk: %s\nHours: %d-%d (UTC%+d)\nDay trade guard: %t\nExposure guard: %t\n",
		conf.Broker.Platform, strings.Join(conf.Trading.AllowedTickers, ","), conf.Trading.RiskFraction.String(),
		conf.MarketHours.OpenHour, conf.MarketHours.CloseHour, conf.MarketHours.UTCOffsetHours,
		conf.Guards.DayTrade, conf.Guards.DuplicateExposure,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return "", err
	}
	if !confirm {
		return "", errors.New("setup cancelled by user")
	}

	if err := config.Save(generatedConfigPath, conf); err != nil {
		return "", err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\nConfiguration saved to %s\nStarting tradeguard...", generatedConfigPath)))
	time.Sleep(1500 * time.Millisecond)
	return generatedConfigPath, nil
}

func (a answers) build() (config.Config, error) {
	conf := config.Default()
	conf.Broker.Platform = a.platform

	var tickers []string
	for _, t := range strings.Split(a.tickers, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			tickers = append(tickers, t)
		}
	}
	conf.Trading.AllowedTickers = tickers

	fraction, err := decimal.NewFromString(strings.TrimSpace(a.riskFraction))
	if err != nil {
		return config.Config{}, errors.Wrap(err, "risk fraction")
	}
	conf.Trading.RiskFraction = fraction
	conf.Trading.SerializePerTicker = a.serialize

	if conf.MarketHours.OpenHour, err = strconv.Atoi(strings.TrimSpace(a.openHour)); err != nil {
		return config.Config{}, errors.Wrap(err, "open hour")
	}
	if conf.MarketHours.CloseHour, err = strconv.Atoi(strings.TrimSpace(a.closeHour)); err != nil {
		return config.Config{}, errors.Wrap(err, "close hour")
	}
	if conf.MarketHours.UTCOffsetHours, err = strconv.Atoi(strings.TrimSpace(a.utcOffset)); err != nil {
		return config.Config{}, errors.Wrap(err, "utc offset")
	}

	conf.Guards.DayTrade = a.dayTrade
	conf.Guards.DuplicateExposure = a.exposure
	if a.addr != "" {
		conf.Server.Addr = a.addr
	}
	conf.Audit.Sheets.SpreadsheetID = strings.TrimSpace(a.sheetID)

	if a.platform == config.PlatformSimulate {
		cash, err := decimal.NewFromString(strings.TrimSpace(a.startingCash))
		if err != nil {
			return config.Config{}, errors.Wrap(err, "starting cash")
		}
		conf.Simulate.StartingCash = cash
		if conf.Simulate.Prices, err = parsePrices(a.simPrices); err != nil {
			return config.Config{}, err
		}
	}

	if conf.MarketHours.OpenHour >= conf.MarketHours.CloseHour {
		return config.Config{}, errors.New("open hour must be before close hour")
	}
	return conf, nil
}

func parsePrices(s string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		ticker, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid format %q: must be TICKER=PRICE", pair)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || !price.IsPositive() {
			return nil, fmt.Errorf("invalid price for %s", ticker)
		}
		prices[strings.ToUpper(strings.TrimSpace(ticker))] = price
	}
	return prices, nil
}

func validateTickers(s string) error {
	for _, t := range strings.Split(s, ",") {
		if strings.TrimSpace(t) != "" {
			return nil
		}
	}
	return fmt.Errorf("at least one ticker is required")
}

func validateFraction(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() || d.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("must be greater than 0 and at most 1")
	}
	return nil
}

func validatePositive(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateHour(s string) error {
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || h < 0 || h > 24 {
		return fmt.Errorf("must be an hour between 0 and 24")
	}
	return nil
}

func validateOffset(s string) error {
	o, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || o < -12 || o > 14 {
		return fmt.Errorf("must be between -12 and 14")
	}
	return nil
}
