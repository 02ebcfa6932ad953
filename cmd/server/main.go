// Package main is the entry point for the evolution engine host process.
//
// Startup publishes the engine configuration exactly once. Nothing else is
// built until that succeeds: a missing or invalid settings file stops the
// process with a critical log entry naming what is wrong.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/aristath/evolution-engine/internal/di"
	"github.com/aristath/evolution-engine/internal/modules/audit"
	"github.com/aristath/evolution-engine/internal/server"
	"github.com/aristath/evolution-engine/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	startupTime := time.Now()

	rt, err := config.LoadRuntime()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load runtime configuration")
	}

	log := logger.New(logger.Config{
		Level:  rt.LogLevel,
		Pretty: rt.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("env_file", rt.EnvFile).Msg("Starting evolution engine")

	config.SetDefault(config.NewManager(
		config.WithEnvFile(rt.EnvFile),
		config.WithLogger(log),
	))

	settings, err := config.Load()
	if err != nil {
		recordFailedLoad(rt, err, log)
		log.Fatal().Msg("Engine cannot start without a valid configuration")
	}

	// Everything logged from here on is scrubbed of credential values.
	log = logger.New(logger.Config{
		Level:  rt.LogLevel,
		Pretty: rt.DevMode,
		Output: logger.NewRedactingWriter(os.Stdout, append(settings.Secrets(), rt.Backup.SecretAccessKey)...),
	})
	logger.SetGlobalLogger(log)

	container, jobs, err := di.Wire(rt, settings, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if _, err := container.AuditRepo.RecordLoad(ctx, audit.FromLoad(rt.EnvFile, settings, nil)); err != nil {
		log.Error().Err(err).Msg("Failed to record configuration load")
	}
	cancel()

	srv := server.New(server.Config{
		Log:         log,
		DB:          container.EngineDB,
		Audit:       container.AuditRepo,
		Triggers:    container.TriggerRepo,
		TriggerJob:  jobs.TournamentTrigger,
		Port:        rt.Port,
		DevMode:     rt.DevMode,
		StartupTime: startupTime,
	})

	container.Scheduler.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", rt.Port).Msg("Evolution engine started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// recordFailedLoad stores the failed attempt so it shows up in the load
// history once the engine is running again.
func recordFailedLoad(rt *config.Runtime, loadErr error, log zerolog.Logger) {
	container, err := di.InitializeDatabases(rt, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database to record load failure")
		return
	}
	defer container.Close()

	if err := di.InitializeRepositories(container, log); err != nil {
		log.Error().Err(err).Msg("Failed to record configuration load")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := container.AuditRepo.RecordLoad(ctx, audit.FromLoad(rt.EnvFile, nil, loadErr)); err != nil {
		log.Error().Err(err).Msg("Failed to record configuration load")
	}
}
