package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"` // coingecko or kraken
		Symbol   string `yaml:"symbol"`
	} `yaml:"data_source"`
	Schedule struct {
		TickCron string `yaml:"tick_cron"`
	} `yaml:"schedule"`
	Strategy strategy.Thresholds `yaml:"strategy"`
	Windows  collector.Windows   `yaml:"windows"`
	Cooldown struct {
		Window string `yaml:"window"` // Go duration, e.g. "6h"
	} `yaml:"cooldown"`
	State struct {
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		FilePath      string `yaml:"file_path"`
	} `yaml:"state"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("PRICE_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("CRON_TICK"); v != "" {
		cfg.Schedule.TickCron = v
	}
	if v := os.Getenv("COOLDOWN_WINDOW"); v != "" {
		cfg.Cooldown.Window = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.State.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.State.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.State.RedisDB = db
		}
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.State.FilePath = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "coingecko"
	}
	if cfg.DataSource.Symbol == "" {
		if cfg.DataSource.Provider == "kraken" {
			cfg.DataSource.Symbol = "XBTUSD"
		} else {
			cfg.DataSource.Symbol = "bitcoin"
		}
	}
	if cfg.Schedule.TickCron == "" {
		cfg.Schedule.TickCron = "0 */5 * * * *"
	}
	if cfg.Cooldown.Window == "" {
		cfg.Cooldown.Window = "6h"
	}
	def := strategy.DefaultThresholds()
	if cfg.Strategy.BuyMinScore == 0 {
		cfg.Strategy.BuyMinScore = def.BuyMinScore
	}
	if cfg.Strategy.SellMinScore == 0 {
		cfg.Strategy.SellMinScore = def.SellMinScore
	}
	if cfg.Strategy.ReboundPct == 0 {
		cfg.Strategy.ReboundPct = def.ReboundPct
	}
	if cfg.Strategy.EntryTightPct == 0 {
		cfg.Strategy.EntryTightPct = def.EntryTightPct
	}
	if cfg.Strategy.EntryLoosePct == 0 {
		cfg.Strategy.EntryLoosePct = def.EntryLoosePct
	}
	if cfg.Windows.EMALong == 0 {
		cfg.Windows = collector.DefaultWindows()
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/coinsentinel.db"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}

	return cfg, nil
}

// CooldownWindow parses the configured cooldown duration.
func (c *Config) CooldownWindow() (time.Duration, error) {
	d, err := time.ParseDuration(c.Cooldown.Window)
	if err != nil {
		return 0, fmt.Errorf("cooldown.window: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("cooldown.window must be positive, got %s", c.Cooldown.Window)
	}
	return d, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.DataSource.Provider != "coingecko" && c.DataSource.Provider != "kraken" {
		return fmt.Errorf("data_source.provider must be coingecko or kraken, got %q", c.DataSource.Provider)
	}
	if _, err := c.CooldownWindow(); err != nil {
		return err
	}
	if c.Strategy.BuyMinScore < 0 || c.Strategy.BuyMinScore > 100 {
		return fmt.Errorf("strategy.buy_min_score must be in [0,100]")
	}
	if c.Strategy.SellMinScore < 0 || c.Strategy.SellMinScore > 100 {
		return fmt.Errorf("strategy.sell_min_score must be in [0,100]")
	}
	return nil
}
