package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, ProviderHTTP, cfg.QuoteProvider)
	assert.Equal(t, 30*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, 4, cfg.QuoteConcurrency)
	assert.Equal(t, "^GSPC", cfg.DefaultBenchmark)
	assert.Equal(t, 20, cfg.BollingerWindow)
	assert.Equal(t, 2.0, cfg.BollingerStdDev)
	assert.Equal(t, 10, cfg.SectorLookbackDays)
	assert.Equal(t, "0 3 * * *", cfg.MaintenanceSchedule)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, filepath.Join(dir, "portfolio.db"), cfg.DatabasePath())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("QUOTE_PROVIDER", "native")
	t.Setenv("BOLLINGER_STDDEV", "2.5")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("QUOTE_CONCURRENCY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ProviderNative, cfg.QuoteProvider)
	assert.Equal(t, 2.5, cfg.BollingerStdDev)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 4, cfg.QuoteConcurrency, "unparseable values fall back to the default")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:                8001,
			QuoteProvider:       ProviderHTTP,
			QuoteTimeout:        time.Second,
			QuoteConcurrency:    1,
			BollingerWindow:     20,
			BollingerStdDev:     2,
			MaintenanceSchedule: "@daily",
			Backup:              &BackupConfig{},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"unknown provider", func(c *Config) { c.QuoteProvider = "carrier-pigeon" }},
		{"zero concurrency", func(c *Config) { c.QuoteConcurrency = 0 }},
		{"tiny window", func(c *Config) { c.BollingerWindow = 1 }},
		{"negative stddev", func(c *Config) { c.BollingerStdDev = -1 }},
		{"bad schedule", func(c *Config) { c.MaintenanceSchedule = "whenever" }},
		{"backup without bucket", func(c *Config) { c.Backup = &BackupConfig{Enabled: true, AccessKeyID: "a", SecretAccessKey: "b"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
