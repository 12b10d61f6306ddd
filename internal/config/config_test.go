package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:          "8080",
		SQLiteDBPath:  filepath.Join(t.TempDir(), "omnibudget.db"),
		SessionSecret: "secret",
		SessionTTL:    24 * time.Hour,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("default port = %s", cfg.Port)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("default session ttl = %v", cfg.SessionTTL)
	}
	if !cfg.UsingDevSecret() {
		t.Fatalf("expected dev secret when SESSION_SECRET unset")
	}
	if cfg.AMQPURL != "" {
		t.Fatalf("AMQP should be disabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_SECRET", "prod-secret")
	t.Setenv("SESSION_TTL", "2h")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("port = %s, want 9000", cfg.Port)
	}
	if cfg.SessionSecret != "prod-secret" || cfg.UsingDevSecret() {
		t.Fatalf("session secret not taken from env")
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("session ttl = %v, want 2h", cfg.SessionTTL)
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"bad port", func(c *Config) { c.Port = "nope" }, "invalid port"},
		{"port range", func(c *Config) { c.Port = "70000" }, "must be between"},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }, "database path"},
		{"empty secret", func(c *Config) { c.SessionSecret = "" }, "session secret"},
		{"short ttl", func(c *Config) { c.SessionTTL = time.Second }, "session TTL"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "AMQP URL scheme"},
		{"amqp missing queue", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" }, "queue name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.AMQPExchange = "omnibudget"
			cfg.AMQPQueue = "activity_events"
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q missing %q", err, tc.wantSub)
			}
		})
	}
}
