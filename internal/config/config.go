// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Quote providers selectable with QUOTE_PROVIDER
const (
	ProviderHTTP   = "http"   // Direct Yahoo chart/quote API client
	ProviderNative = "native" // go-yfinance client
)

// Config holds application configuration
type Config struct {
	DataDir  string // Directory holding the portfolio database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	QuoteProvider    string
	QuoteTimeout     time.Duration
	QuoteConcurrency int

	DefaultBenchmark   string
	BollingerWindow    int
	BollingerStdDev    float64
	SectorLookbackDays int

	MaintenanceSchedule string // Standard 5-field cron expression
	Backup              *BackupConfig
}

// BackupConfig holds off-site backup settings for an S3-compatible bucket
type BackupConfig struct {
	Enabled         bool
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Prefix          string
	KeepLocal       int // Local snapshots kept after upload
	RetentionDays   int // Remote snapshots older than this are deleted
}

// Load reads configuration from a .env file (if any) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnvAsInt("PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		QuoteProvider:    getEnv("QUOTE_PROVIDER", ProviderHTTP),
		QuoteTimeout:     time.Duration(getEnvAsInt("QUOTE_TIMEOUT_SECONDS", 30)) * time.Second,
		QuoteConcurrency: getEnvAsInt("QUOTE_CONCURRENCY", 4),

		DefaultBenchmark:   getEnv("DEFAULT_BENCHMARK", "^GSPC"),
		BollingerWindow:    getEnvAsInt("BOLLINGER_WINDOW", 20),
		BollingerStdDev:    getEnvAsFloat("BOLLINGER_STDDEV", 2),
		SectorLookbackDays: getEnvAsInt("SECTOR_LOOKBACK_DAYS", 10),

		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 3 * * *"),
		Backup:              loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabasePath returns the path of the portfolio database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "portfolio.db")
}

// Validate checks ranges and required settings
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.QuoteProvider != ProviderHTTP && c.QuoteProvider != ProviderNative {
		return fmt.Errorf("QUOTE_PROVIDER must be %q or %q, got %q", ProviderHTTP, ProviderNative, c.QuoteProvider)
	}
	if c.QuoteTimeout <= 0 {
		return fmt.Errorf("QUOTE_TIMEOUT_SECONDS must be positive")
	}
	if c.QuoteConcurrency <= 0 {
		return fmt.Errorf("QUOTE_CONCURRENCY must be positive, got %d", c.QuoteConcurrency)
	}
	if c.BollingerWindow < 2 {
		return fmt.Errorf("BOLLINGER_WINDOW must be at least 2, got %d", c.BollingerWindow)
	}
	if c.BollingerStdDev < 0 {
		return fmt.Errorf("BOLLINGER_STDDEV must not be negative, got %g", c.BollingerStdDev)
	}
	if c.SectorLookbackDays < 0 {
		return fmt.Errorf("SECTOR_LOOKBACK_DAYS must not be negative, got %d", c.SectorLookbackDays)
	}
	if _, err := cron.ParseStandard(c.MaintenanceSchedule); err != nil {
		return fmt.Errorf("MAINTENANCE_SCHEDULE is not a valid cron expression: %w", err)
	}

	if c.Backup != nil && c.Backup.Enabled {
		if c.Backup.Bucket == "" || c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "" {
			return fmt.Errorf("BACKUP_BUCKET, BACKUP_ACCESS_KEY_ID and BACKUP_SECRET_ACCESS_KEY are required when backups are enabled")
		}
	}

	return nil
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
		Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
		Bucket:          getEnv("BACKUP_BUCKET", ""),
		AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		Region:          getEnv("BACKUP_REGION", "auto"),
		Prefix:          getEnv("BACKUP_PREFIX", "stockfolio/"),
		KeepLocal:       getEnvAsInt("BACKUP_KEEP_LOCAL", 7),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
