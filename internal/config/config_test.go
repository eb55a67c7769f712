package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/maple")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TaxRuleCacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache TTL, got %s", cfg.TaxRuleCacheTTL)
	}
	if !cfg.CashRoundDenomination.Equal(mustDecimal(t, "0.05")) {
		t.Fatalf("expected nickel denomination, got %s", cfg.CashRoundDenomination)
	}
	if !cfg.WeeklyInsurableMax.Equal(mustDecimal(t, "1263")) {
		t.Fatalf("expected weekly max 1263, got %s", cfg.WeeklyInsurableMax)
	}
	if !cfg.YTDOptimization {
		t.Fatal("expected YTD optimization enabled by default")
	}
	if cfg.YTDRefreshCron != "0 3 * * *" {
		t.Fatalf("unexpected refresh cron %q", cfg.YTDRefreshCron)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TAX_CASH_ROUND_DENOMINATION", "0.10")
	t.Setenv("PAYROLL_WEEKLY_INSURABLE_MAX", "1300")
	t.Setenv("PAYROLL_YTD_OPTIMIZATION", "off")
	t.Setenv("TAX_RULE_CACHE_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.CashRoundDenomination.Equal(mustDecimal(t, "0.10")) {
		t.Fatalf("expected 0.10 denomination, got %s", cfg.CashRoundDenomination)
	}
	if !cfg.WeeklyInsurableMax.Equal(mustDecimal(t, "1300")) {
		t.Fatalf("expected weekly max 1300, got %s", cfg.WeeklyInsurableMax)
	}
	if cfg.YTDOptimization {
		t.Fatal("expected YTD optimization disabled")
	}
	if cfg.TaxRuleCacheTTL != 90*time.Second {
		t.Fatalf("expected 90s TTL, got %s", cfg.TaxRuleCacheTTL)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without DATABASE_URL")
	}
}

func TestLoadRejectsBadDenomination(t *testing.T) {
	setRequired(t)
	t.Setenv("TAX_CASH_ROUND_DENOMINATION", "-0.05")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a negative denomination")
	}
}

func TestHTTPAddr(t *testing.T) {
	cases := []struct {
		port string
		want string
	}{
		{"8080", ":8080"},
		{":9090", ":9090"},
		{"", ":8080"},
		{"  ", ":8080"},
	}
	for _, tc := range cases {
		cfg := &Config{Port: tc.port}
		if got := cfg.HTTPAddr(); got != tc.want {
			t.Fatalf("port %q: expected %q, got %q", tc.port, tc.want, got)
		}
	}
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(value)
}
