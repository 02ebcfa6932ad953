// Package tournament fires the daily tournament trigger.
//
// The tournament itself runs elsewhere. This package snapshots the settings
// that bound a run, hands them to an attached Runner and keeps a record of
// every fire.
package tournament

import (
	"context"
	"time"
)

// Status of a trigger record
type Status string

const (
	StatusDispatched Status = "dispatched"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Trigger carries the run bounds taken from settings at fire time.
type Trigger struct {
	ID                  string             `json:"id"`
	FiredAt             time.Time          `json:"fired_at"`
	ProjectID           string             `json:"project_id"`
	MaxConcurrentAgents int                `json:"max_concurrent_agents"`
	MinSurvivalScore    float64            `json:"min_survival_score"`
	ComplexityTaxRate   float64            `json:"complexity_tax_rate"`
	MaxDrawdownPercent  float64            `json:"-"`
	DataSources         []string           `json:"data_sources"`
	ScoreWeights        map[string]float64 `json:"-"`
	Status              Status             `json:"status"`
	Detail              string             `json:"detail,omitempty"`
}

// Runner starts a tournament for a trigger.
type Runner interface {
	StartTournament(ctx context.Context, trigger Trigger) error
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, trigger Trigger) error

// StartTournament calls f
func (f RunnerFunc) StartTournament(ctx context.Context, trigger Trigger) error {
	return f(ctx, trigger)
}
