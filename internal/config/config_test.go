package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

var configKeys = []string{
	"PORT", "ACCOUNTS_BASE_URL", "ACCOUNTS_TIMEOUT", "DRAFT_TTL",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != DefaultPort || cfg.Addr() != ":8080" {
		t.Errorf("unexpected port %q", cfg.Port)
	}
	if cfg.AccountsBaseURL != DefaultAccountsBaseURL {
		t.Errorf("unexpected base url %q", cfg.AccountsBaseURL)
	}
	if cfg.AccountsTimeout != DefaultAccountsTimeout || cfg.DraftTTL != DefaultDraftTTL {
		t.Errorf("unexpected durations %s / %s", cfg.AccountsTimeout, cfg.DraftTTL)
	}
	if cfg.RateLimitRPS != DefaultRateLimitRPS || cfg.RateLimitBurst != DefaultRateLimitBurst {
		t.Errorf("unexpected rate limit %v / %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.LogLevel != zapcore.InfoLevel {
		t.Errorf("unexpected level %s", cfg.LogLevel)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Errorf("expected no origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ACCOUNTS_BASE_URL", "https://auth.example.fr/api/")
	t.Setenv("ACCOUNTS_TIMEOUT", "3s")
	t.Setenv("DRAFT_TTL", "1h")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AccountsBaseURL != "https://auth.example.fr/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.AccountsBaseURL)
	}
	if cfg.AccountsTimeout != 3*time.Second || cfg.DraftTTL != time.Hour {
		t.Errorf("unexpected durations %s / %s", cfg.AccountsTimeout, cfg.DraftTTL)
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != 4 {
		t.Errorf("unexpected rate limit %v / %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.LogLevel != zapcore.DebugLevel {
		t.Errorf("unexpected level %s", cfg.LogLevel)
	}
}

func TestFromEnvReportsEveryInvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCOUNTS_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_BURST", "many")
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"ACCOUNTS_TIMEOUT", "RATE_LIMIT_BURST", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected %s in %q", key, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"port", func(c *Config) { c.Port = "http" }, "PORT"},
		{"port range", func(c *Config) { c.Port = "70000" }, "PORT"},
		{"base url", func(c *Config) { c.AccountsBaseURL = "localhost:8002" }, "ACCOUNTS_BASE_URL"},
		{"timeout", func(c *Config) { c.AccountsTimeout = 0 }, "ACCOUNTS_TIMEOUT"},
		{"ttl", func(c *Config) { c.DraftTTL = -time.Second }, "DRAFT_TTL"},
		{"rps", func(c *Config) { c.RateLimitRPS = -1 }, "RATE_LIMIT_RPS"},
		{"burst", func(c *Config) { c.RateLimitBurst = 0 }, "RATE_LIMIT_BURST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := FromEnv()
			if err != nil {
				t.Fatalf("defaults must be valid: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Fatalf("expected %s error, got %v", tt.key, err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("DRAFT_TTL")
	t.Cleanup(func() { os.Unsetenv("DRAFT_TTL") })
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=6000\nDRAFT_TTL=5m\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("environment must win over the file, got %q", cfg.Port)
	}
	if cfg.DraftTTL != 5*time.Minute {
		t.Errorf("expected value from file, got %s", cfg.DraftTTL)
	}
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file must be ignored, got %v", err)
	}
}
