// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/aristath/stockfolio/internal/config"
	"github.com/aristath/stockfolio/internal/reliability"
	"github.com/aristath/stockfolio/internal/scheduler"
	"github.com/rs/zerolog"
)

// WALCheckpointSchedule is how often the passive WAL checkpoint runs
const WALCheckpointSchedule = "@every 1h"

// RegisterJobs creates the maintenance jobs
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.DB == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	retentionDays := 0
	if cfg.Backup != nil {
		retentionDays = cfg.Backup.RetentionDays
	}

	return &JobInstances{
		DailyMaintenance: reliability.NewDailyMaintenanceJob(container.DB, cfg.DataDir, container.BackupService, retentionDays, log),
		WALCheckpoint:    scheduler.NewWALCheckpointJob(container.DB, log),
	}, nil
}

// ScheduleJobs registers the jobs with the scheduler
func ScheduleJobs(s *scheduler.Scheduler, jobs *JobInstances, cfg *config.Config) error {
	if err := s.AddJob(cfg.MaintenanceSchedule, jobs.DailyMaintenance); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", jobs.DailyMaintenance.Name(), err)
	}
	if err := s.AddJob(WALCheckpointSchedule, jobs.WALCheckpoint); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", jobs.WALCheckpoint.Name(), err)
	}
	return nil
}
