package tournament

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
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

// Repository persists trigger records to the tournament_triggers table of engine.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new trigger repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "tournament").Logger(),
	}
}

// Record appends a trigger, assigning its ID and fire time when unset.
func (r *Repository) Record(ctx context.Context, t Trigger) (Trigger, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.FiredAt.IsZero() {
		t.FiredAt = time.Now().UTC()
	}

	sources, err := json.Marshal(t.DataSources)
	if err != nil {
		return t, fmt.Errorf("failed to encode data sources: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tournament_triggers (
			id, fired_at, project_id, max_concurrent_agents, min_survival_score,
			complexity_tax_rate, data_sources, status, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.FiredAt.UnixMilli(),
		t.ProjectID,
		t.MaxConcurrentAgents,
		t.MinSurvivalScore,
		t.ComplexityTaxRate,
		string(sources),
		string(t.Status),
		sql.NullString{String: t.Detail, Valid: t.Detail != ""},
	)
	if err != nil {
		return t, fmt.Errorf("failed to insert tournament trigger: %w", err)
	}
	return t, nil
}

// List returns the most recent triggers, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Trigger, error) {
	limit = ListLimit(limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fired_at, project_id, max_concurrent_agents, min_survival_score,
		       complexity_tax_rate, data_sources, status, detail
		FROM tournament_triggers
		ORDER BY fired_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournament triggers: %w", err)
	}
	defer rows.Close()

	triggers := make([]Trigger, 0)
	for rows.Next() {
		var (
			t       Trigger
			firedAt int64
			sources string
			status  string
			detail  sql.NullString
		)
		if err := rows.Scan(&t.ID, &firedAt, &t.ProjectID, &t.MaxConcurrentAgents,
			&t.MinSurvivalScore, &t.ComplexityTaxRate, &sources, &status, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan tournament trigger: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &t.DataSources); err != nil {
			return nil, fmt.Errorf("failed to decode data sources of %s: %w", t.ID, err)
		}
		t.FiredAt = time.UnixMilli(firedAt).UTC()
		t.Status = Status(status)
		t.Detail = detail.String
		triggers = append(triggers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournament triggers: %w", err)
	}
	return triggers, nil
}
