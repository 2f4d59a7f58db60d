package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.Provider != "coingecko" || cfg.DataSource.Symbol != "bitcoin" {
		t.Errorf("unexpected data source defaults: %+v", cfg.DataSource)
	}
	if cfg.Schedule.TickCron != "0 */5 * * * *" {
		t.Errorf("unexpected tick default: %q", cfg.Schedule.TickCron)
	}
	d, err := cfg.CooldownWindow()
	if err != nil {
		t.Fatalf("cooldown: %v", err)
	}
	if d != 6*time.Hour {
		t.Errorf("expected 6h cooldown default, got %s", d)
	}
	if cfg.Strategy.BuyMinScore != 70 || cfg.Strategy.SellMinScore != 60 {
		t.Errorf("unexpected threshold defaults: %+v", cfg.Strategy)
	}
	if cfg.Windows.EMALong != 200 {
		t.Errorf("unexpected window defaults: %+v", cfg.Windows)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
telegram:
  bot_token: file-token
  chat_id: "123"
data_source:
  provider: kraken
strategy:
  buy_min_score: 80
  sell_min_score: 65
cooldown:
  window: 4h
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("env must override file, got %q", cfg.Telegram.BotToken)
	}
	if cfg.DataSource.Provider != "kraken" || cfg.DataSource.Symbol != "XBTUSD" {
		t.Errorf("unexpected provider/symbol: %+v", cfg.DataSource)
	}
	if cfg.Strategy.BuyMinScore != 80 {
		t.Errorf("expected file threshold, got %d", cfg.Strategy.BuyMinScore)
	}
	if d, _ := cfg.CooldownWindow(); d != 4*time.Hour {
		t.Errorf("expected 4h cooldown, got %s", d)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure without telegram credentials")
	}

	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "123"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.Cooldown.Window = "never"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure for bad cooldown window")
	}
}
