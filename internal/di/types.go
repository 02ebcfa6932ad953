// Package di provides dependency injection for the engine host process.
//
// The Container holds every long-lived dependency. It is built once by Wire
// after configuration has been published.
package di

import (
	"github.com/aristath/evolution-engine/internal/database"
	"github.com/aristath/evolution-engine/internal/modules/audit"
	"github.com/aristath/evolution-engine/internal/modules/tournament"
	"github.com/aristath/evolution-engine/internal/reliability"
	"github.com/aristath/evolution-engine/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	EngineDB *database.DB // engine.db - config load audit and tournament triggers

	// Repositories
	AuditRepo   *audit.Repository
	TriggerRepo *tournament.Repository

	// Services
	BackupService *reliability.BackupService // nil when backups are disabled

	// Scheduling
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	TournamentTrigger *tournament.TriggerJob
	CheckDatabase     *scheduler.CheckDatabaseJob
	Backup            *reliability.BackupJob // nil when backups are disabled
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c == nil || c.EngineDB == nil {
		return nil
	}
	return c.EngineDB.Close()
}
