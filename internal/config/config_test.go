package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 8, cfg.JWTExpirationHours)
	assert.Equal(t, 168, cfg.JWTRefreshHours)
	assert.Equal(t, 24*time.Hour, cfg.SaleEditWindow())
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, "http://localhost:8000", cfg.CORSOrigin)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SALE_EDIT_WINDOW_HOURS", "2")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 2*time.Hour, cfg.SaleEditWindow())
	assert.True(t, cfg.IsProduction())
}
