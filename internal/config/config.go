// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Defaults.
const (
	DefaultPort            = "8080"
	DefaultAccountsBaseURL = "http://localhost:8002"
	DefaultAccountsTimeout = 10 * time.Second
	DefaultDraftTTL        = 30 * time.Minute
	DefaultRateLimitRPS    = 5.0
	DefaultRateLimitBurst  = 10
)

// Config is the complete server configuration.
type Config struct {
	Port            string
	AccountsBaseURL string
	AccountsTimeout time.Duration
	DraftTTL        time.Duration
	// RateLimitRPS of zero disables per-client limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	// CORSAllowedOrigins empty means any origin.
	CORSAllowedOrigins []string
	LogLevel           zapcore.Level
}

// Load reads envFile into the process environment when it exists, without
// overriding variables already set, then parses the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv parses the environment. Every invalid value is reported.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            envOr("PORT", DefaultPort),
		AccountsBaseURL: strings.TrimRight(envOr("ACCOUNTS_BASE_URL", DefaultAccountsBaseURL), "/"),
	}

	var errs []error
	var err error
	if cfg.AccountsTimeout, err = durationEnv("ACCOUNTS_TIMEOUT", DefaultAccountsTimeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.DraftTTL, err = durationEnv("DRAFT_TTL", DefaultDraftTTL); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitRPS, err = floatEnv("RATE_LIMIT_RPS", DefaultRateLimitRPS); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", DefaultRateLimitBurst); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogLevel, err = zapcore.ParseLevel(envOr("LOG_LEVEL", "info")); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %q is not a valid port", c.Port))
	}
	if u, err := url.Parse(c.AccountsBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("ACCOUNTS_BASE_URL: %q must be an absolute http(s) URL", c.AccountsBaseURL))
	}
	if c.AccountsTimeout <= 0 {
		errs = append(errs, errors.New("ACCOUNTS_TIMEOUT: must be positive"))
	}
	if c.DraftTTL <= 0 {
		errs = append(errs, errors.New("DRAFT_TTL: must be positive"))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS: must not be negative"))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST: must be at least 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
