package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/config"
	"github.com/noah-isme/backend-salon/internal/pricing"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/salon?sslmode=disable",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "test-secret",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, pricing.TaxInclusive, cfg.TaxMode)
	require.Equal(t, "0.16", cfg.TaxRate.String())
	require.Equal(t, "0.5", cfg.DefaultCommissionRate.String())
	require.Equal(t, 24*time.Hour, cfg.CartTTL)
}

func TestLoadExclusiveMode(t *testing.T) {
	env := baseEnv()
	env["PRICING_TAX_MODE"] = "exclusive"
	env["PRICING_TAX_RATE"] = "0.08"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, pricing.TaxExclusive, cfg.TaxMode)
	require.Equal(t, "0.08", cfg.TaxRate.String())
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	env := baseEnv()
	env["PRICING_TAX_RATE"] = "1.5"
	_, err := config.LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["PRICING_TAX_MODE"] = "blended"
	_, err = config.LoadForTests(env)
	require.Error(t, err)
}

func TestLoadRequiresCoreSettings(t *testing.T) {
	env := baseEnv()
	env["DATABASE_URL"] = ""
	_, err := config.LoadForTests(env)
	require.Error(t, err)
}
