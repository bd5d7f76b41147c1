package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"SECRET", "HTTP_PORT", "DATABASE_DRIVER", "DATABASE_DSN", "TAX_RATE", "INVOICE_SEQUENCE", "SEED_DEMO"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev_secret", cfg.Secret)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Contains(t, cfg.DatabaseDSN, "postgres://postgres:@localhost:5432/goldrefinery")
	assert.Equal(t, "0.05", cfg.TaxRate.String())
	assert.Equal(t, SequenceCounter, cfg.InvoiceSequence)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file::memory:")
	t.Setenv("TAX_RATE", "0.17")
	t.Setenv("INVOICE_SEQUENCE", "count")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("LOW_STOCK_THRESHOLD", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "file::memory:", cfg.DatabaseDSN)
	assert.Equal(t, "0.17", cfg.TaxRate.String())
	assert.Equal(t, SequenceCount, cfg.InvoiceSequence)
	assert.True(t, cfg.SeedDemo)
	assert.EqualValues(t, 12, cfg.LowStockThreshold)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("TAX_RATE", "lots")
	t.Setenv("INVOICE_SEQUENCE", "uuid")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "0.05", cfg.TaxRate.String())
	assert.Equal(t, SequenceCounter, cfg.InvoiceSequence)
	assert.Len(t, cfg.Warnings, 3)
}

func TestLoadUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")
	_, err := Load()
	assert.Error(t, err)
}
