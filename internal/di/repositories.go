package di

import (
	"fmt"

	"github.com/aristath/evolution-engine/internal/modules/audit"
	"github.com/aristath/evolution-engine/internal/modules/tournament"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories backed by engine.db
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.EngineDB == nil {
		return fmt.Errorf("engine database not initialized")
	}

	container.AuditRepo = audit.NewRepository(container.EngineDB.Conn(), log)
	container.TriggerRepo = tournament.NewRepository(container.EngineDB.Conn(), log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
