package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/engine")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoad_DefaultsApply(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Env != "local" {
		t.Errorf("Env = %q, want local", cfg.Env)
	}
	if cfg.TickInterval() != 60*time.Second {
		t.Errorf("TickInterval = %v, want 60s", cfg.TickInterval())
	}
	if cfg.SettleDelay() != 1500*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 1.5s", cfg.SettleDelay())
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"tick interval below minimum", "TICK_INTERVAL_SEC", "2"},
		{"nav timeout above maximum", "NAV_TIMEOUT_SEC", "900"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"unknown environment", "ENV", "qa"},
		{"settle delay too small", "SETTLE_DELAY_MS", "10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_ProductionRequiresAPIKeys(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("production config without oracle and resend keys should fail")
	}

	t.Setenv("ORACLE_API_KEY", "sk-test")
	t.Setenv("RESEND_API_KEY", "re-test")
	t.Setenv("RESEND_FROM", "engine@jobsuitex.dev")

	if _, err := Load(); err != nil {
		t.Fatalf("fully configured production env rejected: %v", err)
	}
}
