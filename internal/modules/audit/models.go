// Package audit records every configuration load attempt made by the host process.
package audit

import (
	"errors"
	"time"

	"github.com/aristath/evolution-engine/internal/config"
)

// Outcome of a load attempt
type Outcome string

const (
	OutcomeReady  Outcome = "ready"
	OutcomeFailed Outcome = "failed"
)

// ErrorKind classifies a failed load
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindMissingSource ErrorKind = "missing_source"
	KindValidation    ErrorKind = "validation"
	KindOther         ErrorKind = "other"
)

// Record is one row of the config_loads table.
// It never carries credential values.
type Record struct {
	ID                 string          `json:"id"`
	LoadedAt           time.Time       `json:"loaded_at"`
	Outcome            Outcome         `json:"outcome"`
	EnvFile            string          `json:"env_file"`
	ProjectID          string          `json:"project_id,omitempty"`
	TournamentSchedule string          `json:"tournament_schedule,omitempty"`
	DataSources        []string        `json:"data_sources,omitempty"`
	ErrorKind          ErrorKind       `json:"error_kind,omitempty"`
	FailedFields       []string        `json:"failed_fields,omitempty"`
	Summary            *config.Summary `json:"summary,omitempty"`
}

// FromLoad builds a record from the result of config.Load.
func FromLoad(envFile string, s *config.Settings, err error) Record {
	rec := Record{EnvFile: envFile}

	if err == nil && s != nil {
		summary := s.Summary()
		rec.Outcome = OutcomeReady
		rec.ProjectID = summary.ProjectID
		rec.TournamentSchedule = summary.TournamentSchedule
		rec.DataSources = summary.DataSources
		rec.Summary = &summary
		return rec
	}

	rec.Outcome = OutcomeFailed
	rec.ErrorKind = classify(err)

	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		rec.FailedFields = verrs.Fields()
	}
	return rec
}

func classify(err error) ErrorKind {
	var missing *config.MissingSettingsSourceError
	if errors.As(err, &missing) {
		return KindMissingSource
	}
	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		return KindValidation
	}
	return KindOther
}
