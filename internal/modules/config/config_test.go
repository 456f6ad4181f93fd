package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values_test.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
}

func TestNewConfigDefaults(t *testing.T) {
	writeConfig(t, `
market:
  symbols: [BTCUSDT]
`)

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Exchange.Paper {
		t.Fatal("paper mode must default to true")
	}
	if cfg.Market.Interval != "1m" {
		t.Fatalf("interval default: got %q", cfg.Market.Interval)
	}
	if cfg.Gate.CooldownSeconds != 300 {
		t.Fatalf("cooldown default: got %d", cfg.Gate.CooldownSeconds)
	}
	if cfg.Risk.MaxOrderSize != 100 {
		t.Fatalf("risk defaults not applied: %+v", cfg.Risk)
	}
}

func TestNewConfigEnvOverridesSecrets(t *testing.T) {
	writeConfig(t, `
market:
  symbols: [BTCUSDT]
telegram:
  token: from-yaml
`)
	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("DATABASE_DSN", "postgres://local/journal")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("telegram token: got %q", cfg.Telegram.Token)
	}
	if cfg.Journal.DSN != "postgres://local/journal" {
		t.Fatalf("journal dsn: got %q", cfg.Journal.DSN)
	}
}

func TestNewConfigRejectsInvalidRisk(t *testing.T) {
	writeConfig(t, `
market:
  symbols: [BTCUSDT]
risk:
  max_order_size: -1
`)
	if _, err := NewConfig(); err == nil {
		t.Fatal("invalid risk parameters must fail config load")
	}
}

func TestNewConfigRequiresSymbols(t *testing.T) {
	writeConfig(t, `
service:
  name: quant_bot
`)
	if _, err := NewConfig(); err == nil {
		t.Fatal("empty symbol list must fail config load")
	}
}

func TestNewConfigLiveRequiresCredentials(t *testing.T) {
	writeConfig(t, `
market:
  symbols: [BTCUSDT]
exchange:
  paper: false
`)
	if _, err := NewConfig(); err == nil {
		t.Fatal("live mode without credentials must fail config load")
	}
}
