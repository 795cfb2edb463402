package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	RedisURL    string `env:"REDIS_URL,required"    validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Scheduler
	TickIntervalSec int `env:"TICK_INTERVAL_SEC" envDefault:"60" validate:"min=5,max=600"`

	// Browser
	Headless      bool `env:"HEADLESS" envDefault:"true"`
	NavTimeoutSec int  `env:"NAV_TIMEOUT_SEC" envDefault:"30" validate:"min=5,max=120"`

	// Scrape & apply
	ScrapeMaxPages    int `env:"SCRAPE_MAX_PAGES" envDefault:"5" validate:"min=1,max=20"`
	SettleDelayMS     int `env:"SETTLE_DELAY_MS" envDefault:"1500" validate:"min=100,max=10000"`
	MaxAnswerAttempts int `env:"MAX_ANSWER_ATTEMPTS" envDefault:"15" validate:"min=1,max=50"`

	// Decision oracle (chat-completions compatible endpoint)
	OracleAPIBase string `env:"ORACLE_API_BASE" envDefault:"https://api.deepseek.com/v1"`
	OracleAPIKey  string `env:"ORACLE_API_KEY"  validate:"required_if=Env production,required_if=Env staging"`
	OracleModel   string `env:"ORACLE_MODEL" envDefault:"deepseek-chat"`

	// Notifications
	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) TickInterval() time.Duration { return time.Duration(c.TickIntervalSec) * time.Second }
func (c *Config) NavTimeout() time.Duration   { return time.Duration(c.NavTimeoutSec) * time.Second }
func (c *Config) SettleDelay() time.Duration  { return time.Duration(c.SettleDelayMS) * time.Millisecond }

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
