package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/stockfolio/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	criticalFreeBytes = 500 << 20 // 500MB
	lowFreeBytes      = 5 << 30   // 5GB
	backupTimeout     = 10 * time.Minute
)

// DailyMaintenanceJob checks integrity, truncates the WAL, checks disk space
// and runs the backup when one is configured
type DailyMaintenanceJob struct {
	db            *database.DB
	dataDir       string
	backup        *BackupService
	retentionDays int
	minFreeBytes  uint64
	log           zerolog.Logger
}

// NewDailyMaintenanceJob creates a new daily maintenance job. backup may be nil.
func NewDailyMaintenanceJob(db *database.DB, dataDir string, backup *BackupService, retentionDays int, log zerolog.Logger) *DailyMaintenanceJob {
	return &DailyMaintenanceJob{
		db:            db,
		dataDir:       dataDir,
		backup:        backup,
		retentionDays: retentionDays,
		minFreeBytes:  criticalFreeBytes,
		log:           log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *DailyMaintenanceJob) Name() string {
	return "daily_maintenance"
}

// Run executes the maintenance steps in order. A failed integrity check or
// critically low disk space stops the run before the backup.
func (j *DailyMaintenanceJob) Run() error {
	j.log.Info().Msg("Starting daily maintenance")
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("Database integrity check failed")
		return err
	}

	if _, err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	if j.backup != nil {
		if _, err := j.backup.CreateAndUploadBackup(ctx); err != nil {
			j.log.Error().Err(err).Msg("Backup failed")
			return fmt.Errorf("backup failed: %w", err)
		}
		if _, err := j.backup.RotateRemoteBackups(ctx, j.retentionDays); err != nil {
			j.log.Warn().Err(err).Msg("Backup rotation failed")
		}
	}

	j.log.Info().Dur("duration", time.Since(started)).Msg("Daily maintenance completed")
	return nil
}

// checkDiskSpace fails when the data directory's filesystem is nearly full
func (j *DailyMaintenanceJob) checkDiskSpace() error {
	usage, err := disk.Usage(j.dataDir)
	if err != nil {
		j.log.Warn().Err(err).Str("path", j.dataDir).Msg("Failed to read disk usage")
		return nil
	}

	freeGB := float64(usage.Free) / 1e9
	switch {
	case usage.Free < j.minFreeBytes:
		j.log.Error().Float64("free_gb", freeGB).Msg("Insufficient disk space, skipping backup")
		return fmt.Errorf("only %.2f GB free on %s", freeGB, j.dataDir)
	case usage.Free < lowFreeBytes:
		j.log.Warn().Float64("free_gb", freeGB).Msg("Disk space running low")
	default:
		j.log.Debug().Float64("free_gb", freeGB).Float64("used_percent", usage.UsedPercent).Msg("Disk space check")
	}
	return nil
}
