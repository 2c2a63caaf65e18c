package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-salon/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	CORSAllowedOrigins []string

	// Pricing policy. Defaults mirror the salon's observed configuration:
	// 50% commission, 16% VAT embedded in displayed prices.
	TaxRate               decimal.Decimal
	TaxMode               pricing.TaxMode
	DefaultCommissionRate decimal.Decimal
	CurrencyCode          string

	AccessTokenTTL  time.Duration
	CartTTL         time.Duration
	IdempotencyTTL  time.Duration
	ReportsCacheTTL time.Duration
	CatalogCacheTTL time.Duration

	RateLimit     string
	MigrationsDir string
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
		JWTSecret:          k.String("JWT_SECRET"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		TaxRate:               parseDecimal(k.String("PRICING_TAX_RATE"), "0.16"),
		TaxMode:               parseTaxMode(k.String("PRICING_TAX_MODE")),
		DefaultCommissionRate: parseDecimal(k.String("PRICING_DEFAULT_COMMISSION_RATE"), "0.50"),
		CurrencyCode:          valueOrDefault(k.String("CURRENCY_CODE"), "KES"),

		AccessTokenTTL:  parseDuration(k.String("ACCESS_TOKEN_TTL"), "12h"),
		CartTTL:         parseDuration(k.String("CART_TTL"), "24h"),
		IdempotencyTTL:  parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		ReportsCacheTTL: parseDuration(k.String("REPORTS_CACHE_TTL"), "5m"),
		CatalogCacheTTL: parseDuration(k.String("CATALOG_CACHE_TTL"), "10m"),

		RateLimit:     valueOrDefault(k.String("RATE_LIMIT"), "300-M"),
		MigrationsDir: valueOrDefault(k.String("MIGRATIONS_DIR"), "migrations"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if err := cfg.PricingPolicy().Validate(); err != nil {
		return nil, fmt.Errorf("pricing configuration: %w", err)
	}

	return cfg, nil
}

// PricingPolicy assembles the engine policy from configuration.
func (c *Config) PricingPolicy() pricing.Policy {
	return pricing.Policy{
		TaxRate:               c.TaxRate,
		TaxMode:               c.TaxMode,
		DefaultCommissionRate: c.DefaultCommissionRate,
	}
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

func parseTaxMode(value string) pricing.TaxMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "exclusive":
		return pricing.TaxExclusive
	case "inclusive", "":
		return pricing.TaxInclusive
	default:
		return pricing.TaxMode(strings.ToLower(strings.TrimSpace(value)))
	}
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
