package di

import (
	"fmt"
	"time"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/aristath/evolution-engine/internal/modules/tournament"
	"github.com/aristath/evolution-engine/internal/reliability"
	"github.com/aristath/evolution-engine/internal/scheduler"
	"github.com/rs/zerolog"
)

// DatabaseCheckSchedule is the cron spec of the integrity check
const DatabaseCheckSchedule = "@hourly"

// RegisterJobs creates the scheduler and registers the daily tournament
// trigger at the configured time of day (UTC), the database check and, when
// enabled, the backup. runner may be nil.
func RegisterJobs(container *Container, rt *config.Runtime, settings *config.Settings, runner tournament.Runner, log zerolog.Logger) (*JobInstances, error) {
	if container.TriggerRepo == nil {
		return nil, fmt.Errorf("repositories not initialized")
	}

	container.Scheduler = scheduler.New(log, time.UTC)

	trigger := tournament.NewTriggerJob(container.TriggerRepo, runner, log)
	if err := container.Scheduler.AddJob(settings.CronSpec(), trigger); err != nil {
		return nil, err
	}

	check := scheduler.NewCheckDatabaseJob(container.EngineDB)
	check.SetLogger(log.With().Str("job", "check_database").Logger())
	if err := container.Scheduler.AddJob(DatabaseCheckSchedule, check); err != nil {
		return nil, err
	}

	jobs := &JobInstances{
		TournamentTrigger: trigger,
		CheckDatabase:     check,
	}

	if container.BackupService != nil {
		jobs.Backup = reliability.NewBackupJob(container.BackupService, rt.Backup.RetentionDays, log)
		if err := container.Scheduler.AddJob(rt.Backup.Schedule, jobs.Backup); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("tournament_schedule", settings.TournamentSchedule()).
		Bool("backup", jobs.Backup != nil).
		Msg("Jobs registered")

	return jobs, nil
}
