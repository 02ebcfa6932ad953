package tournament

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SettingsFunc returns the published settings
type SettingsFunc func() (*config.Settings, error)

// TriggerJob fires the daily tournament. It implements scheduler.Job.
type TriggerJob struct {
	settings SettingsFunc
	repo     *Repository
	runner   Runner
	timeout  time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewTriggerJob creates a trigger job that reads settings through config.Get.
// A nil runner records every fire as skipped.
func NewTriggerJob(repo *Repository, runner Runner, log zerolog.Logger) *TriggerJob {
	return &TriggerJob{
		settings: config.Get,
		repo:     repo,
		runner:   runner,
		timeout:  time.Minute,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("job", "tournament_trigger").Logger(),
	}
}

// WithSettings replaces the settings accessor
func (j *TriggerJob) WithSettings(fn SettingsFunc) *TriggerJob {
	j.settings = fn
	return j
}

// Name returns the job name
func (j *TriggerJob) Name() string {
	return "tournament_trigger"
}

// Run snapshots the run bounds, dispatches them and records the outcome.
func (j *TriggerJob) Run() error {
	s, err := j.settings()
	if err != nil {
		return fmt.Errorf("tournament trigger needs settings: %w", err)
	}

	trigger := Trigger{
		ID:                  uuid.NewString(),
		FiredAt:             j.now(),
		ProjectID:           s.ProjectID(),
		MaxConcurrentAgents: s.MaxConcurrentAgents(),
		MinSurvivalScore:    s.MinSurvivalScore(),
		ComplexityTaxRate:   s.ComplexityTaxRate(),
		MaxDrawdownPercent:  s.MaxDrawdownPercent(),
		DataSources:         s.DataSources(),
		ScoreWeights:        s.ScoreWeights(),
	}

	var runErr error
	if j.runner == nil {
		trigger.Status = StatusSkipped
		trigger.Detail = "no tournament runner attached"
		j.log.Warn().Msg("No tournament runner attached, recording skipped trigger")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		runErr = j.runner.StartTournament(ctx, trigger)
		cancel()

		if runErr != nil {
			trigger.Status = StatusFailed
			trigger.Detail = runErr.Error()
		} else {
			trigger.Status = StatusDispatched
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stored, err := j.repo.Record(ctx, trigger)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("trigger_id", stored.ID).
		Str("status", string(stored.Status)).
		Int("max_concurrent_agents", stored.MaxConcurrentAgents).
		Strs("data_sources", stored.DataSources).
		Msg("Tournament trigger fired")

	if runErr != nil {
		return fmt.Errorf("tournament runner failed: %w", runErr)
	}
	return nil
}
