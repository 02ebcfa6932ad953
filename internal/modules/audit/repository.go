package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// DefaultListLimit applies when the caller passes a non-positive limit
	DefaultListLimit = 50
	// MaxListLimit caps every List call
	MaxListLimit = 500
)

// ListLimit returns the number of rows List returns for a requested limit
func ListLimit(requested int) int {
	switch {
	case requested <= 0:
		return DefaultListLimit
	case requested > MaxListLimit:
		return MaxListLimit
	}
	return requested
}

// Repository persists load records to the config_loads table of engine.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new audit repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "audit").Logger(),
	}
}

// RecordLoad appends a load record, assigning its ID and timestamp when unset.
func (r *Repository) RecordLoad(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.LoadedAt.IsZero() {
		rec.LoadedAt = time.Now().UTC()
	}

	dataSources, err := encodeList(rec.DataSources)
	if err != nil {
		return rec, fmt.Errorf("failed to encode data sources: %w", err)
	}
	failedFields, err := encodeList(rec.FailedFields)
	if err != nil {
		return rec, fmt.Errorf("failed to encode failed fields: %w", err)
	}

	var summary []byte
	if rec.Summary != nil {
		summary, err = msgpack.Marshal(rec.Summary)
		if err != nil {
			return rec, fmt.Errorf("failed to encode summary: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO config_loads (
			id, loaded_at, outcome, env_file, project_id, tournament_schedule,
			data_sources, error_kind, failed_fields, summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.LoadedAt.UnixMilli(),
		string(rec.Outcome),
		rec.EnvFile,
		nullString(rec.ProjectID),
		nullString(rec.TournamentSchedule),
		dataSources,
		nullString(string(rec.ErrorKind)),
		failedFields,
		summary,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to insert config load: %w", err)
	}

	r.log.Debug().
		Str("id", rec.ID).
		Str("outcome", string(rec.Outcome)).
		Msg("Recorded configuration load")
	return rec, nil
}

// List returns the most recent records, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Record, error) {
	limit = ListLimit(limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, loaded_at, outcome, env_file, project_id, tournament_schedule,
		       data_sources, error_kind, failed_fields, summary
		FROM config_loads
		ORDER BY loaded_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query config loads: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			rec                            Record
			loadedAt                       int64
			outcome                        string
			projectID, schedule, errorKind sql.NullString
			dataSources, failedFields      sql.NullString
			summary                        []byte
		)
		if err := rows.Scan(&rec.ID, &loadedAt, &outcome, &rec.EnvFile, &projectID, &schedule,
			&dataSources, &errorKind, &failedFields, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan config load: %w", err)
		}

		rec.LoadedAt = time.UnixMilli(loadedAt).UTC()
		rec.Outcome = Outcome(outcome)
		rec.ProjectID = projectID.String
		rec.TournamentSchedule = schedule.String
		rec.ErrorKind = ErrorKind(errorKind.String)

		if rec.DataSources, err = decodeList(dataSources); err != nil {
			return nil, fmt.Errorf("failed to decode data sources of %s: %w", rec.ID, err)
		}
		if rec.FailedFields, err = decodeList(failedFields); err != nil {
			return nil, fmt.Errorf("failed to decode failed fields of %s: %w", rec.ID, err)
		}
		if len(summary) > 0 {
			var s config.Summary
			if err := msgpack.Unmarshal(summary, &s); err != nil {
				r.log.Warn().Err(err).Str("id", rec.ID).Msg("Failed to decode load summary")
			} else {
				rec.Summary = &s
			}
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate config loads: %w", err)
	}
	return records, nil
}

func encodeList(items []string) (sql.NullString, error) {
	if len(items) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeList(v sql.NullString) ([]string, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(v.String), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
