package config

import (
	"sort"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Settings is the validated engine configuration. It is built only by Parse,
// never mutated afterwards, and safe to share between goroutines. Accessors
// return copies of slices and maps.
type Settings struct {
	projectID   string
	privateKey  string
	clientEmail string
	databaseURL string

	tournamentSchedule  string
	cronSpec            string
	schedule            cron.Schedule
	maxConcurrentAgents int
	minSurvivalScore    float64

	dataSources []string

	maxDrawdownPercent float64
	complexityTaxRate  float64

	scoreWeights map[string]float64
}

// ProjectID returns the Firebase project identifier.
func (s *Settings) ProjectID() string { return s.projectID }

// PrivateKey returns the service-account private key. Never log it.
func (s *Settings) PrivateKey() string { return s.privateKey }

// ClientEmail returns the service-account client identity. Never log it.
func (s *Settings) ClientEmail() string { return s.clientEmail }

// DatabaseURL returns the remote database endpoint. Never log it.
func (s *Settings) DatabaseURL() string { return s.databaseURL }

// TournamentSchedule returns the daily tournament time as HH:MM.
func (s *Settings) TournamentSchedule() string { return s.tournamentSchedule }

// CronSpec returns the tournament schedule as a five-field cron expression.
func (s *Settings) CronSpec() string { return s.cronSpec }

// Schedule returns the parsed daily tournament schedule.
func (s *Settings) Schedule() cron.Schedule { return s.schedule }

func (s *Settings) MaxConcurrentAgents() int { return s.maxConcurrentAgents }

func (s *Settings) MinSurvivalScore() float64 { return s.minSurvivalScore }

// DataSources returns the enabled market data sources in configured order.
func (s *Settings) DataSources() []string {
	out := make([]string, len(s.dataSources))
	copy(out, s.dataSources)
	return out
}

func (s *Settings) MaxDrawdownPercent() float64 { return s.maxDrawdownPercent }

func (s *Settings) ComplexityTaxRate() float64 { return s.complexityTaxRate }

// ScoreWeights returns a copy of the metric weight mapping.
func (s *Settings) ScoreWeights() map[string]float64 {
	out := make(map[string]float64, len(s.scoreWeights))
	for k, v := range s.scoreWeights {
		out[k] = v
	}
	return out
}

// Metrics returns the weighted metric names, sorted.
func (s *Settings) Metrics() []string {
	names := make([]string, 0, len(s.scoreWeights))
	for k := range s.scoreWeights {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Secrets returns the values of every sensitive field, for log redaction.
func (s *Settings) Secrets() []string {
	return []string{s.privateKey, s.clientEmail, s.databaseURL}
}

// Summary is the non-sensitive view of Settings served over HTTP and stored
// with audit records.
type Summary struct {
	ProjectID           string             `json:"project_id" msgpack:"project_id"`
	TournamentSchedule  string             `json:"tournament_schedule" msgpack:"tournament_schedule"`
	CronSpec            string             `json:"cron_spec" msgpack:"cron_spec"`
	MaxConcurrentAgents int                `json:"max_concurrent_agents" msgpack:"max_concurrent_agents"`
	MinSurvivalScore    float64            `json:"min_survival_score" msgpack:"min_survival_score"`
	DataSources         []string           `json:"data_sources" msgpack:"data_sources"`
	MaxDrawdownPercent  float64            `json:"max_drawdown_percent" msgpack:"max_drawdown_percent"`
	ComplexityTaxRate   float64            `json:"complexity_tax_rate" msgpack:"complexity_tax_rate"`
	ScoreWeights        map[string]float64 `json:"score_weights" msgpack:"score_weights"`
}

// Summary returns the non-sensitive fields.
func (s *Settings) Summary() Summary {
	return Summary{
		ProjectID:           s.projectID,
		TournamentSchedule:  s.tournamentSchedule,
		CronSpec:            s.cronSpec,
		MaxConcurrentAgents: s.maxConcurrentAgents,
		MinSurvivalScore:    s.minSurvivalScore,
		DataSources:         s.DataSources(),
		MaxDrawdownPercent:  s.maxDrawdownPercent,
		ComplexityTaxRate:   s.complexityTaxRate,
		ScoreWeights:        s.ScoreWeights(),
	}
}

// MarshalZerologObject logs the non-sensitive fields only, so a Settings can
// be passed to Object() safely.
func (s *Settings) MarshalZerologObject(e *zerolog.Event) {
	weights := zerolog.Dict()
	for _, name := range s.Metrics() {
		weights.Float64(name, s.scoreWeights[name])
	}

	e.Str("project_id", s.projectID).
		Str("tournament_schedule", s.tournamentSchedule).
		Int("max_concurrent_agents", s.maxConcurrentAgents).
		Float64("min_survival_score", s.minSurvivalScore).
		Strs("data_sources", s.dataSources).
		Float64("max_drawdown_percent", s.maxDrawdownPercent).
		Float64("complexity_tax_rate", s.complexityTaxRate).
		Dict("score_weights", weights)
}
