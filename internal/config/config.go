package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Config holds application configuration values.
type Config struct {
	Secret         string
	HTTPPort       string
	DatabaseDriver string
	DatabaseDSN    string

	TaxRate         decimal.Decimal
	InvoicePrefix   string
	InvoiceSequence string

	LowStockThreshold int64
	LowStockSchedule  string

	SeedDemo   bool
	CatalogCSV string

	LogMode  string
	LogFile  string
	Timezone string

	// Warnings collects values that were rejected and replaced by defaults.
	Warnings []string
}

const (
	SequenceCounter = "counter"
	SequenceCount   = "count"
)

var defaultTaxRate = decimal.RequireFromString("0.05")

// Load reads configuration from environment variables with reasonable defaults.
// A .env file in the working directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Secret:            getenv("SECRET", "dev_secret"),
		HTTPPort:          getenv("HTTP_PORT", "8080"),
		DatabaseDriver:    strings.ToLower(getenv("DATABASE_DRIVER", "pgx")),
		DatabaseDSN:       os.Getenv("DATABASE_DSN"),
		TaxRate:           defaultTaxRate,
		InvoicePrefix:     getenv("INVOICE_PREFIX", "INV"),
		InvoiceSequence:   strings.ToLower(getenv("INVOICE_SEQUENCE", SequenceCounter)),
		LowStockThreshold: 5,
		LowStockSchedule:  getenv("LOW_STOCK_SCHEDULE", "@hourly"),
		CatalogCSV:        os.Getenv("CATALOG_CSV"),
		LogMode:           getenv("LOG_MODE", "development"),
		LogFile:           os.Getenv("LOG_FILE"),
		Timezone:          getenv("TIMEZONE", "UTC"),
	}

	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		cfg.warn("invalid HTTP_PORT value %q, defaulting to 8080", cfg.HTTPPort)
		cfg.HTTPPort = "8080"
	}

	if raw := os.Getenv("TAX_RATE"); raw != "" {
		rate, err := cast.ToFloat64E(raw)
		if err != nil || rate < 0 || rate >= 1 {
			cfg.warn("invalid TAX_RATE value %q, defaulting to %s", raw, defaultTaxRate)
		} else {
			cfg.TaxRate = decimal.NewFromFloat(rate)
		}
	}

	if raw := os.Getenv("LOW_STOCK_THRESHOLD"); raw != "" {
		n, err := cast.ToInt64E(raw)
		if err != nil || n < 0 {
			cfg.warn("invalid LOW_STOCK_THRESHOLD value %q, defaulting to 5", raw)
		} else {
			cfg.LowStockThreshold = n
		}
	}

	if raw := os.Getenv("SEED_DEMO"); raw != "" {
		seed, err := cast.ToBoolE(raw)
		if err != nil {
			cfg.warn("invalid SEED_DEMO value %q, ignoring", raw)
		}
		cfg.SeedDemo = seed
	}

	if cfg.InvoiceSequence != SequenceCounter && cfg.InvoiceSequence != SequenceCount {
		cfg.warn("unknown INVOICE_SEQUENCE %q, using %s", cfg.InvoiceSequence, SequenceCounter)
		cfg.InvoiceSequence = SequenceCounter
	}

	switch cfg.DatabaseDriver {
	case "pgx", "postgres":
		cfg.DatabaseDriver = "pgx"
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				getenv("DB_USER", "postgres"),
				os.Getenv("DB_PASSWORD"),
				getenv("DB_HOST", "localhost"),
				getenv("DB_PORT", "5432"),
				getenv("DB_NAME", "goldrefinery"),
			)
		}
	case "sqlite":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = "file:goldrefinery.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
	default:
		return cfg, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
