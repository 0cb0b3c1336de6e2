/**
 * Package di provides dependency injection type definitions.
 *
 * Container holds every long-lived service. It is built once by Wire and
 * shared by the HTTP server, the CLI and the scheduler.
 */
package di

import (
	"github.com/aristath/stockfolio/internal/clients/yahoo"
	"github.com/aristath/stockfolio/internal/database"
	"github.com/aristath/stockfolio/internal/modules/assets"
	"github.com/aristath/stockfolio/internal/modules/portfolio"
	"github.com/aristath/stockfolio/internal/modules/quotes"
	"github.com/aristath/stockfolio/internal/modules/valuation"
	"github.com/aristath/stockfolio/internal/reliability"
	"github.com/aristath/stockfolio/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	DB *database.DB // portfolio.db: portfolios, holdings, asset metadata

	// Market data
	QuoteClient  yahoo.FullClientInterface // HTTP or go-yfinance client, per QUOTE_PROVIDER
	QuoteAdapter *quotes.Adapter
	AssetService *assets.Service

	// Portfolios
	PortfolioRepo    *portfolio.Repository
	PortfolioService *portfolio.Service

	// Valuation and analytics
	ValuationEngine  *valuation.Engine
	ValuationService *valuation.Service

	// Reliability
	S3Client      *reliability.S3Client // nil unless backups are enabled
	BackupService *reliability.BackupService
}

// JobInstances holds the scheduled jobs so callers can run them on demand
type JobInstances struct {
	DailyMaintenance scheduler.Job
	WALCheckpoint    scheduler.Job
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
