package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	TaxRuleCacheTTL       time.Duration
	CashRoundDenomination decimal.Decimal

	// Jurisdiction/tax-year payroll caps. Statutory values change every
	// year, so deployments set them per tax year instead of waiting for a
	// rebuild.
	WeeklyInsurableMax      decimal.Decimal
	AnnualEIInsurableMax    decimal.Decimal
	AnnualCPPPensionableMax decimal.Decimal

	PayrollLookback   time.Duration
	YTDOptimization   bool
	YTDSnapshotTTL    time.Duration
	YTDSnapshotMaxAge time.Duration
	YTDRefreshCron    string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		TaxRuleCacheTTL:       parseDuration(k.String("TAX_RULE_CACHE_TTL"), "5m"),
		CashRoundDenomination: parseDecimal(k.String("TAX_CASH_ROUND_DENOMINATION"), "0.05"),

		WeeklyInsurableMax:      parseDecimal(k.String("PAYROLL_WEEKLY_INSURABLE_MAX"), "1263"),
		AnnualEIInsurableMax:    parseDecimal(k.String("PAYROLL_ANNUAL_EI_INSURABLE_MAX"), "65700"),
		AnnualCPPPensionableMax: parseDecimal(k.String("PAYROLL_ANNUAL_CPP_PENSIONABLE_MAX"), "71300"),

		PayrollLookback:   parseDuration(k.String("PAYROLL_LOOKBACK"), "11160h"),
		YTDOptimization:   parseBool(k.String("PAYROLL_YTD_OPTIMIZATION"), true),
		YTDSnapshotTTL:    parseDuration(k.String("PAYROLL_YTD_SNAPSHOT_TTL"), "10m"),
		YTDSnapshotMaxAge: parseDuration(k.String("PAYROLL_YTD_SNAPSHOT_MAX_AGE"), "48h"),
		YTDRefreshCron:    valueOrDefault(k.String("PAYROLL_YTD_REFRESH_CRON"), "0 3 * * *"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if !cfg.CashRoundDenomination.IsPositive() {
		return nil, errors.New("TAX_CASH_ROUND_DENOMINATION must be positive")
	}
	if !cfg.WeeklyInsurableMax.IsPositive() ||
		!cfg.AnnualEIInsurableMax.IsPositive() ||
		!cfg.AnnualCPPPensionableMax.IsPositive() {
		return nil, errors.New("payroll earnings caps must be positive")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseDecimal(value, fallback string) decimal.Decimal {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := decimal.NewFromString(base)
	if err != nil {
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	case "0", "f", "false", "n", "no", "off":
		return false
	default:
		return fallback
	}
}
