package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/robfig/cron/v3"
	"gonum.org/v1/gonum/floats"
)

// Redacted stands in for the value of a sensitive field in validation errors.
const Redacted = "[REDACTED]"

// field is one entry of the settings schema. apply parses raw, validates it and
// stores it on s; a returned error is the human-readable reason.
type field struct {
	key          string
	required     bool
	credential   bool
	sensitive    bool
	defaultValue string
	apply        func(s *Settings, raw string) error
}

var schema = []field{
	{key: KeyProjectID, required: true, credential: true, apply: applyProjectID},
	{key: KeyPrivateKey, required: true, credential: true, sensitive: true, apply: applyPrivateKey},
	{key: KeyClientEmail, required: true, credential: true, sensitive: true, apply: applyClientEmail},
	{key: KeyDatabaseURL, required: true, credential: true, sensitive: true, apply: applyDatabaseURL},
	{key: KeyTournamentSchedule, defaultValue: DefaultTournamentSchedule, apply: applyTournamentSchedule},
	{key: KeyMaxConcurrentAgents, defaultValue: strconv.Itoa(DefaultMaxConcurrentAgents), apply: applyMaxConcurrentAgents},
	{key: KeyMinSurvivalScore, defaultValue: formatFloat(DefaultMinSurvivalScore), apply: applyMinSurvivalScore},
	{key: KeyDataSources, defaultValue: strings.Join(DefaultDataSources(), ","), apply: applyDataSources},
	{key: KeyMaxDrawdownPercent, defaultValue: formatFloat(DefaultMaxDrawdownPercent), apply: applyMaxDrawdownPercent},
	{key: KeyComplexityTaxRate, defaultValue: formatFloat(DefaultComplexityTaxRate), apply: applyComplexityTaxRate},
	{key: KeyScoreWeights, defaultValue: mustJSON(DefaultScoreWeights()), apply: applyScoreWeights},
}

// Parse builds a validated Settings from raw key/value pairs. Keys are matched
// case-insensitively and unknown keys are ignored. Every failing field is
// reported in a single ValidationErrors value.
func Parse(values map[string]string) (*Settings, error) {
	normalized := make(map[string]string, len(values))
	for k, v := range values {
		normalized[strings.ToUpper(strings.TrimSpace(k))] = v
	}

	s := &Settings{}
	var verrs ValidationErrors

	for _, f := range schema {
		raw := strings.TrimSpace(normalized[f.key])
		if raw == "" {
			if f.required {
				verrs = append(verrs, &ValidationError{Field: f.key, Reason: "is required"})
				continue
			}
			raw = f.defaultValue
		}

		if err := f.apply(s, raw); err != nil {
			shown := raw
			if f.sensitive {
				shown = Redacted
			}
			verrs = append(verrs, &ValidationError{Field: f.key, Value: shown, Reason: err.Error()})
		}
	}

	if len(verrs) > 0 {
		return nil, verrs
	}
	return s, nil
}

// RequiredKeys lists the keys that have no default.
func RequiredKeys() []string {
	var keys []string
	for _, f := range schema {
		if f.required {
			keys = append(keys, f.key)
		}
	}
	return keys
}

// OptionalKeys lists the keys that fall back to a default.
func OptionalKeys() []string {
	var keys []string
	for _, f := range schema {
		if !f.required {
			keys = append(keys, f.key)
		}
	}
	return keys
}

// DefaultFor returns the default literal for an optional key.
func DefaultFor(key string) (string, bool) {
	for _, f := range schema {
		if f.key == key && !f.required {
			return f.defaultValue, true
		}
	}
	return "", false
}

// IsSensitive reports whether key holds credential material that must never be
// logged or returned.
func IsSensitive(key string) bool {
	for _, f := range schema {
		if f.key == key {
			return f.sensitive
		}
	}
	return false
}

func isCredentialKey(key string) bool {
	for _, f := range schema {
		if f.key == key {
			return f.credential
		}
	}
	return false
}

func applyProjectID(s *Settings, raw string) error {
	s.projectID = raw
	return nil
}

func applyPrivateKey(s *Settings, raw string) error {
	s.privateKey = raw
	return nil
}

func applyClientEmail(s *Settings, raw string) error {
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return errors.New("must be a bare email address")
	}
	s.clientEmail = raw
	return nil
}

func applyDatabaseURL(s *Settings, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	s.databaseURL = raw
	return nil
}

var timeOfDay = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

func applyTournamentSchedule(s *Settings, raw string) error {
	m := timeOfDay.FindStringSubmatch(raw)
	if m == nil {
		return errors.New("must be a 24h time of day HH:MM")
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("cannot build daily schedule: %v", err)
	}

	s.tournamentSchedule = fmt.Sprintf("%02d:%02d", hour, minute)
	s.cronSpec = spec
	s.schedule = sched
	return nil
}

func applyMaxConcurrentAgents(s *Settings, raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("must be an integer")
	}
	if n < 1 {
		return errors.New("must be >= 1")
	}
	s.maxConcurrentAgents = n
	return nil
}

func applyMinSurvivalScore(s *Settings, raw string) error {
	v, err := parseFinite(raw)
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.New("must be >= 0")
	}
	s.minSurvivalScore = v
	return nil
}

func applyDataSources(s *Settings, raw string) error {
	var names []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return errors.New("must be a JSON array of strings or a comma-separated list")
		}
	} else {
		names = strings.Split(raw, ",")
	}

	seen := make(map[string]struct{}, len(names))
	sources := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.IndexFunc(name, unicode.IsControl) >= 0 {
			return fmt.Errorf("invalid source name %q", name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		sources = append(sources, name)
	}

	if len(sources) == 0 {
		return errors.New("must list at least one market data source")
	}
	s.dataSources = sources
	return nil
}

func applyMaxDrawdownPercent(s *Settings, raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.New("must be a number")
	}
	// Written so NaN fails too.
	if !(v > 0 && v <= 100) {
		return errors.New("must be between 0 (exclusive) and 100")
	}
	s.maxDrawdownPercent = v
	return nil
}

func applyComplexityTaxRate(s *Settings, raw string) error {
	v, err := parseFinite(raw)
	if err != nil {
		return err
	}
	if v < 0 || v >= 1 {
		return errors.New("must be in [0, 1)")
	}
	s.complexityTaxRate = v
	return nil
}

func applyScoreWeights(s *Settings, raw string) error {
	var weights map[string]float64
	if err := json.Unmarshal([]byte(raw), &weights); err != nil {
		return errors.New("must be a JSON object mapping metric names to weights")
	}
	if len(weights) == 0 {
		return errors.New("must weight at least one metric")
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]float64, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return errors.New("metric names must not be empty")
		}
		values[i] = weights[name]
	}
	if i := floats.MinIdx(values); values[i] < 0 {
		return fmt.Errorf("weight for %s must be non-negative", names[i])
	}

	// The epsilon keeps totals of exactly 0.999 or 1.001 inside the bound.
	total := floats.Sum(values)
	if math.Abs(total-1.0) > WeightSumTolerance+1e-12 {
		return fmt.Errorf("must sum to 1.0 (±%g), got %g", WeightSumTolerance, total)
	}
	s.scoreWeights = weights
	return nil
}

func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("must be finite")
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
