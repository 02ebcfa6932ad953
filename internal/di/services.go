package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/aristath/evolution-engine/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeServices creates the optional backup service
func InitializeServices(container *Container, rt *config.Runtime, log zerolog.Logger) error {
	if !rt.Backup.Enabled() {
		log.Info().Msg("Backups disabled (BACKUP_BUCKET not set)")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := reliability.NewS3Store(ctx, reliability.S3Config{
		Endpoint:        rt.Backup.Endpoint,
		Region:          rt.Backup.Region,
		Bucket:          rt.Backup.Bucket,
		AccessKeyID:     rt.Backup.AccessKeyID,
		SecretAccessKey: rt.Backup.SecretAccessKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create backup store: %w", err)
	}

	container.BackupService = reliability.NewBackupService(store, container.EngineDB, rt.DataDir, log)
	log.Info().
		Str("bucket", rt.Backup.Bucket).
		Str("schedule", rt.Backup.Schedule).
		Msg("Backups enabled")
	return nil
}
