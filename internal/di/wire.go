package di

import (
	"fmt"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/aristath/evolution-engine/internal/modules/tournament"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container.
// settings must be the published instance.
// Order of operations:
// 1. Initialize databases
// 2. Initialize repositories
// 3. Initialize services
// 4. Register jobs
func Wire(rt *config.Runtime, settings *config.Settings, runner tournament.Runner, log zerolog.Logger) (*Container, *JobInstances, error) {
	container, err := InitializeDatabases(rt, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := InitializeRepositories(container, log); err != nil {
		_ = container.Close()
		return nil, nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := InitializeServices(container, rt, log); err != nil {
		_ = container.Close()
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	jobs, err := RegisterJobs(container, rt, settings, runner, log)
	if err != nil {
		_ = container.Close()
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}
