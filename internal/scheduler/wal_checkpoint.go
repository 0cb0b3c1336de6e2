package scheduler

import (
	"github.com/aristath/stockfolio/internal/database"
	"github.com/rs/zerolog"
)

// walWarnFrames is the WAL size above which a passive checkpoint is logged as a warning
const walWarnFrames = 1000

// WALCheckpointJob runs a passive WAL checkpoint and reports WAL growth
type WALCheckpointJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewWALCheckpointJob creates a new WALCheckpointJob
func NewWALCheckpointJob(db *database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		db:  db,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the checkpoint. Failures are logged, not returned, since the
// next run retries.
func (j *WALCheckpointJob) Run() error {
	if j.db == nil {
		return nil
	}

	frames, err := j.db.WALCheckpoint("PASSIVE")
	if err != nil {
		j.log.Warn().Err(err).Str("database", j.db.Name()).Msg("Failed to check WAL checkpoint")
		return nil
	}

	if frames > walWarnFrames {
		j.log.Warn().
			Str("database", j.db.Name()).
			Int("wal_frames", frames).
			Msg("WAL file is large, checkpoint may be needed")
	} else {
		j.log.Debug().
			Str("database", j.db.Name()).
			Int("wal_frames", frames).
			Msg("WAL checkpoint status OK")
	}
	return nil
}
