package config

import (
	"os"
	"path/filepath"
	"testing"

	"account-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestDefaultRates_CoversAllCurrencies(t *testing.T) {
	table := DefaultRates()

	for _, currency := range models.Currencies() {
		rate, ok := table.Rate(currency)
		if !ok {
			t.Errorf("Missing default rate for %s", currency)
			continue
		}
		if !rate.IsPositive() {
			t.Errorf("Rate for %s must be positive, got %s", currency, rate)
		}
	}

	usd, _ := table.Rate(models.CurrencyUSD)
	if !usd.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected USD rate 1, got %s", usd)
	}
}

func TestLoadRates_EmptyPathUsesDefaults(t *testing.T) {
	table, err := LoadRates("")
	if err != nil {
		t.Fatalf("LoadRates failed: %v", err)
	}
	if table.Version != "builtin" {
		t.Errorf("Expected builtin version, got %q", table.Version)
	}
}

func TestLoadRates_FromFile(t *testing.T) {
	content := `version: "2026-09"
rates:
  USD: "1"
  EUR: "0.9"
  AUD: "0.5"
  CAD: "0.6"
  ARS: "0.001"
  PLN: "0.2"
  BTC: "90000"
  ETH: "3000"
  DOGE: "0.3"
  USDT: "1"
`
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write rates file: %v", err)
	}

	table, err := LoadRates(path)
	if err != nil {
		t.Fatalf("LoadRates failed: %v", err)
	}
	if table.Version != "2026-09" {
		t.Errorf("Expected version 2026-09, got %q", table.Version)
	}
	btc, ok := table.Rate(models.CurrencyBTC)
	if !ok || !btc.Equal(decimal.NewFromInt(90000)) {
		t.Errorf("Expected BTC rate 90000, got %s", btc)
	}
}

func TestLoadRates_Invalid(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return path
	}

	missing := write("missing.yaml", "version: x\nrates:\n  USD: \"1\"\n")
	if _, err := LoadRates(missing); err == nil {
		t.Error("Expected error for a rates file missing currencies")
	}

	unknown := write("unknown.yaml", "version: x\nrates:\n  XYZ: \"1\"\n")
	if _, err := LoadRates(unknown); err == nil {
		t.Error("Expected error for an unknown currency")
	}

	negative := write("negative.yaml", "version: x\nrates:\n  USD: \"-1\"\n")
	if _, err := LoadRates(negative); err == nil {
		t.Error("Expected error for a non-positive rate")
	}

	if _, err := LoadRates(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("Expected error for a nonexistent file")
	}
}
