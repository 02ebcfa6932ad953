// Package config provides configuration management functionality.
//
// Two things live here. Runtime holds the host process knobs (log level,
// port, data directory) and is tolerant of a missing settings file. Settings
// is the validated engine configuration; it is created only by a Manager and
// published once per process, see Load and Get.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Runtime holds host process configuration
type Runtime struct {
	DataDir  string // Directory for the local state database, always absolute
	EnvFile  string // Settings file read by the Manager
	LogLevel string
	Port     int
	DevMode  bool
	Backup   Backup
}

// Backup configures off-site backups of the local state database.
// Backups are disabled unless Bucket is set.
type Backup struct {
	Bucket          string
	Endpoint        string // S3-compatible endpoint, empty for AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string // Five-field cron spec, UTC
	RetentionDays   int    // 0 keeps every backup
}

// Enabled reports whether a bucket is configured
func (b Backup) Enabled() bool {
	return b.Bucket != ""
}

// LoadRuntime reads process configuration from environment variables, falling
// back to the settings file. The file is read, never copied into the process
// environment, so credentials stay out of it.
func LoadRuntime() (*Runtime, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	// A missing file is reported later by the Manager
	fileValues, _ := godotenv.Read(envFile)
	env := runtimeEnv(fileValues)

	absDataDir, err := filepath.Abs(env.getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	rt := &Runtime{
		DataDir:  absDataDir,
		EnvFile:  envFile,
		LogLevel: env.getEnv("LOG_LEVEL", "info"),
		Port:     env.getEnvAsInt("PORT", 8001),
		DevMode:  env.getEnvAsBool("DEV_MODE", false),
		Backup: Backup{
			Bucket:          env.getEnv("BACKUP_BUCKET", ""),
			Endpoint:        env.getEnv("BACKUP_ENDPOINT", ""),
			Region:          env.getEnv("BACKUP_REGION", "auto"),
			AccessKeyID:     env.getEnv("BACKUP_ACCESS_KEY_ID", ""),
			SecretAccessKey: env.getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
			Schedule:        env.getEnv("BACKUP_SCHEDULE", "0 3 * * *"),
			RetentionDays:   env.getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	if err := rt.Validate(); err != nil {
		return nil, err
	}
	return rt, nil
}

// Validate checks runtime values
func (r *Runtime) Validate() error {
	if r.Port < 1 || r.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", r.Port)
	}
	switch r.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", r.LogLevel)
	}
	if r.Backup.Enabled() {
		if _, err := cron.ParseStandard(r.Backup.Schedule); err != nil {
			return fmt.Errorf("BACKUP_SCHEDULE is not a valid cron spec: %w", err)
		}
		if r.Backup.RetentionDays < 0 {
			return fmt.Errorf("BACKUP_RETENTION_DAYS must be >= 0, got %d", r.Backup.RetentionDays)
		}
	}
	return nil
}

// DatabasePath returns the path of the local state database
func (r *Runtime) DatabasePath() string {
	return filepath.Join(r.DataDir, "engine.db")
}

// runtimeEnv holds the settings file values; the process environment wins over them.
type runtimeEnv map[string]string

func (e runtimeEnv) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return e[key]
}

// Helper functions
func (e runtimeEnv) getEnv(key, defaultValue string) string {
	if value := e.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (e runtimeEnv) getEnvAsInt(key string, defaultValue int) int {
	if value := e.lookup(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func (e runtimeEnv) getEnvAsBool(key string, defaultValue bool) bool {
	if value := e.lookup(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
