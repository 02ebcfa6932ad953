package di

import (
	"fmt"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/aristath/evolution-engine/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens engine.db and applies its schema
func InitializeDatabases(rt *config.Runtime, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	engineDB, err := database.New(database.Config{
		Path:    rt.DatabasePath(),
		Profile: database.ProfileLedger, // Append-only audit records
		Name:    "engine",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine database: %w", err)
	}

	if err := engineDB.Migrate(); err != nil {
		_ = engineDB.Close()
		return nil, fmt.Errorf("failed to migrate engine database: %w", err)
	}
	container.EngineDB = engineDB

	log.Info().Str("path", engineDB.Path()).Msg("Engine database initialized")
	return container, nil
}
