package config

import (
	"fmt"
	"os"
	"path/filepath"

	"account-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// Fixed USD exchange rates used when no rates file is configured. These are
// reporting rates, not live quotes.
var defaultRates = map[models.Currency]string{
	models.CurrencyUSD:  "1",
	models.CurrencyEUR:  "0.9342",
	models.CurrencyAUD:  "0.5447",
	models.CurrencyCAD:  "0.6162",
	models.CurrencyARS:  "0.0009",
	models.CurrencyPLN:  "0.2343",
	models.CurrencyBTC:  "100000",
	models.CurrencyETH:  "3557.3476",
	models.CurrencyDOGE: "0.3627",
	models.CurrencyUSDT: "0.9709",
}

type ratesFile struct {
	Version string            `yaml:"version"`
	Rates   map[string]string `yaml:"rates"`
}

// DefaultRates returns the built-in rate table covering every supported
// currency.
func DefaultRates() models.RateTable {
	table := models.RateTable{
		Version: "builtin",
		Rates:   make(map[models.Currency]decimal.Decimal, len(defaultRates)),
	}
	for currency, raw := range defaultRates {
		table.Rates[currency] = decimal.RequireFromString(raw)
	}
	return table
}

// LoadRates reads a rate table from a YAML file. An empty path returns the
// built-in defaults. The file must cover every supported currency so the
// aggregator never hits a missing rate mid-scan.
func LoadRates(path string) (models.RateTable, error) {
	if path == "" {
		return DefaultRates(), nil
	}

	var ratesPath string
	if filepath.IsAbs(path) {
		ratesPath = path
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return models.RateTable{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		ratesPath = filepath.Join(wd, path)
	}

	data, err := os.ReadFile(ratesPath)
	if err != nil {
		return models.RateTable{}, fmt.Errorf("unable to read %s: %w", path, err)
	}

	var file ratesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return models.RateTable{}, fmt.Errorf("unable to parse %s: %w", path, err)
	}

	table := models.RateTable{
		Version: file.Version,
		Rates:   make(map[models.Currency]decimal.Decimal, len(file.Rates)),
	}
	for raw, value := range file.Rates {
		currency, err := models.ParseCurrency(raw)
		if err != nil {
			return models.RateTable{}, fmt.Errorf("rates file %s: %w", path, err)
		}
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return models.RateTable{}, fmt.Errorf("invalid rate for %s: %q (%w)", raw, value, err)
		}
		if !rate.IsPositive() {
			return models.RateTable{}, fmt.Errorf("rate for %s must be positive, got %s", raw, rate)
		}
		table.Rates[currency] = rate
	}

	for _, currency := range models.Currencies() {
		if _, ok := table.Rates[currency]; !ok {
			return models.RateTable{}, fmt.Errorf("rates file %s missing rate for %s", path, currency)
		}
	}

	return table, nil
}
