package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Ensure the optional envs are unset so defaults apply.
	optionals := []string{
		"SYMBOLS",
		"POLL_INTERVAL_SEC",
		"SUMMARY_EVERY_CYCLES",
		"DEFAULT_UNITS",
		"INITIAL_BALANCE",
		"CLOSE_ON_OPPOSITE_SIGNAL",
		"DASHBOARD_ADDR",
	}
	for _, k := range optionals {
		os.Unsetenv(k)
	}

	cfg := Load()

	if got := len(cfg.Symbols); got != 2 {
		t.Fatalf("Expected 2 default symbols, got %d", got)
	}
	if cfg.Symbols[0] != "EUR/USD" || cfg.Symbols[1] != "USD/JPY" {
		t.Errorf("Unexpected default symbols: %v", cfg.Symbols)
	}

	if cfg.PollIntervalSec != 300 {
		t.Errorf("Expected PollIntervalSec 300, got %d", cfg.PollIntervalSec)
	}

	if cfg.SummaryEveryCycles != 12 {
		t.Errorf("Expected SummaryEveryCycles 12, got %d", cfg.SummaryEveryCycles)
	}

	if cfg.DefaultUnits != 1000 {
		t.Errorf("Expected DefaultUnits 1000, got %d", cfg.DefaultUnits)
	}

	if cfg.InitialBalance != 10000.0 {
		t.Errorf("Expected InitialBalance 10000.0, got %f", cfg.InitialBalance)
	}

	if cfg.CloseOnOppositeSig {
		t.Error("Expected CloseOnOppositeSig disabled by default")
	}

	if cfg.DashboardAddr != "localhost:5000" {
		t.Errorf("Expected DashboardAddr localhost:5000, got %s", cfg.DashboardAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	overrides := map[string]string{
		"SYMBOLS":                  "GBP/USD, EUR/JPY ,AUD/USD",
		"POLL_INTERVAL_SEC":        "60",
		"CLOSE_ON_OPPOSITE_SIGNAL": "true",
		"INITIAL_BALANCE":          "2500.5",
	}
	for k, v := range overrides {
		os.Setenv(k, v)
		defer os.Unsetenv(k)
	}

	cfg := Load()

	if got := len(cfg.Symbols); got != 3 {
		t.Fatalf("Expected 3 symbols, got %d", got)
	}
	if cfg.Symbols[1] != "EUR/JPY" {
		t.Errorf("Expected whitespace-trimmed EUR/JPY, got %q", cfg.Symbols[1])
	}

	if cfg.PollIntervalSec != 60 {
		t.Errorf("Expected PollIntervalSec 60, got %d", cfg.PollIntervalSec)
	}

	if !cfg.CloseOnOppositeSig {
		t.Error("Expected CloseOnOppositeSig enabled")
	}

	if cfg.InitialBalance != 2500.5 {
		t.Errorf("Expected InitialBalance 2500.5, got %f", cfg.InitialBalance)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	os.Setenv("POLL_INTERVAL_SEC", "not-a-number")
	os.Setenv("INITIAL_BALANCE", "lots")
	os.Setenv("CLOSE_ON_OPPOSITE_SIGNAL", "maybe")
	defer func() {
		os.Unsetenv("POLL_INTERVAL_SEC")
		os.Unsetenv("INITIAL_BALANCE")
		os.Unsetenv("CLOSE_ON_OPPOSITE_SIGNAL")
	}()

	cfg := Load()

	if cfg.PollIntervalSec != 300 {
		t.Errorf("Expected fallback PollIntervalSec 300, got %d", cfg.PollIntervalSec)
	}
	if cfg.InitialBalance != 10000.0 {
		t.Errorf("Expected fallback InitialBalance 10000.0, got %f", cfg.InitialBalance)
	}
	if cfg.CloseOnOppositeSig {
		t.Error("Expected fallback CloseOnOppositeSig false")
	}
}
