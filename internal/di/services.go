// Package di provides dependency injection for service implementations.
package di

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aristath/stockfolio/internal/clients/yahoo"
	"github.com/aristath/stockfolio/internal/config"
	"github.com/aristath/stockfolio/internal/domain"
	"github.com/aristath/stockfolio/internal/modules/assets"
	"github.com/aristath/stockfolio/internal/modules/portfolio"
	"github.com/aristath/stockfolio/internal/modules/quotes"
	"github.com/aristath/stockfolio/internal/modules/valuation"
	"github.com/aristath/stockfolio/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeServices creates every service on top of the opened database
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.DB == nil {
		return fmt.Errorf("container database is not initialized")
	}

	clock := domain.Clock(time.Now)

	// Market data
	container.QuoteClient = newQuoteClient(cfg, log)
	container.QuoteAdapter = quotes.NewAdapter(container.QuoteClient, log)
	container.AssetService = assets.NewService(container.QuoteAdapter, container.QuoteAdapter, log)

	// Portfolios
	container.PortfolioRepo = portfolio.NewRepository(container.DB.Conn(), log)
	container.PortfolioService = portfolio.NewService(container.PortfolioRepo, container.AssetService, clock, log)

	// Valuation
	container.ValuationEngine = valuation.NewEngine(container.AssetService, valuation.Config{
		Concurrency: cfg.QuoteConcurrency,
		Clock:       clock,
	}, log)
	container.ValuationService = valuation.NewService(
		container.PortfolioService,
		container.AssetService,
		container.ValuationEngine,
		valuation.ServiceConfig{
			DefaultBenchmark:   cfg.DefaultBenchmark,
			BollingerWindow:    cfg.BollingerWindow,
			BollingerStdDev:    cfg.BollingerStdDev,
			SectorLookbackDays: cfg.SectorLookbackDays,
			Clock:              clock,
		},
		log,
	)

	// Backups: local snapshots always, S3 upload when configured
	var store reliability.ObjectStore
	backupPrefix, keepLocal := "", 7
	if cfg.Backup != nil {
		backupPrefix, keepLocal = cfg.Backup.Prefix, cfg.Backup.KeepLocal
	}
	if cfg.Backup != nil && cfg.Backup.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s3Client, err := reliability.NewS3Client(ctx, reliability.S3Config{
			Endpoint:        cfg.Backup.Endpoint,
			Bucket:          cfg.Backup.Bucket,
			Region:          cfg.Backup.Region,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		container.S3Client = s3Client
		store = s3Client
	}
	container.BackupService = reliability.NewBackupService(
		container.DB,
		store,
		filepath.Join(cfg.DataDir, "backups"),
		backupPrefix,
		keepLocal,
		log,
	)

	log.Info().
		Str("quote_provider", cfg.QuoteProvider).
		Bool("offsite_backups", store != nil).
		Msg("Services initialized")
	return nil
}

func newQuoteClient(cfg *config.Config, log zerolog.Logger) yahoo.FullClientInterface {
	if cfg.QuoteProvider == config.ProviderNative {
		return yahoo.NewNativeClient(log)
	}
	return yahoo.NewClient(cfg.QuoteTimeout, log)
}
