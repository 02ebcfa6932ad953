package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/evolution-engine/internal/database"
	"github.com/rs/zerolog"
)

// walWarnFrames is the WAL size above which the check logs a warning
const walWarnFrames = 1000

// CheckDatabaseJob verifies integrity of the local state database and
// checkpoints its WAL
type CheckDatabaseJob struct {
	log     zerolog.Logger
	db      *database.DB
	timeout time.Duration
}

// NewCheckDatabaseJob creates a new CheckDatabaseJob
func NewCheckDatabaseJob(db *database.DB) *CheckDatabaseJob {
	return &CheckDatabaseJob{
		log:     zerolog.Nop(),
		db:      db,
		timeout: 30 * time.Second,
	}
}

// SetLogger sets the logger for the job
func (j *CheckDatabaseJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *CheckDatabaseJob) Name() string {
	return "check_database"
}

// Run executes the integrity check
func (j *CheckDatabaseJob) Run() error {
	if j.db == nil {
		j.log.Warn().Msg("Database not initialized, skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().
			Err(err).
			Str("database", j.db.Name()).
			Msg("Database integrity check failed")
		return fmt.Errorf("database %s is unhealthy: %w", j.db.Name(), err)
	}

	status, err := j.db.WALCheckpoint(ctx, "PASSIVE")
	if err != nil {
		j.log.Warn().Err(err).Str("database", j.db.Name()).Msg("Failed to checkpoint WAL")
		return nil
	}

	event := j.log.Debug()
	if status.Frames > walWarnFrames {
		event = j.log.Warn()
	}
	event.
		Str("database", j.db.Name()).
		Int("wal_frames", status.Frames).
		Int("checkpointed", status.Checkpointed).
		Msg("Database integrity OK")
	return nil
}
