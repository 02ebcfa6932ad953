package config

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Manager owns the single Settings instance of a process.
//
// States: uninitialized until a load succeeds, then ready for good. A failed
// load leaves the manager uninitialized so a later call can retry after the
// operator fixes the source. Concurrent cold callers share one in-flight load
// and all see its result.
type Manager struct {
	source Source
	log    *zerolog.Logger

	flight  singleflight.Group
	current atomic.Pointer[Settings]
}

// Option configures a Manager.
type Option func(*Manager)

// WithEnvFile sets the settings file path.
func WithEnvFile(path string) Option {
	return func(m *Manager) { m.source.EnvFile = path }
}

// WithEnviron replaces the process environment lookup.
func WithEnviron(environ func() []string) Option {
	return func(m *Manager) { m.source.Environ = environ }
}

// WithLogger sets the diagnostics sink. Without it the global zerolog logger
// is used at call time.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = &l }
}

// NewManager creates an uninitialized Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnvFile returns the settings file path the manager reads.
func (m *Manager) EnvFile() string {
	return m.source.path()
}

// Ready reports whether a Settings instance has been published.
func (m *Manager) Ready() bool {
	return m.current.Load() != nil
}

// Load reads, validates and publishes the settings. Once ready it returns the
// published instance without reading the source again. Every failure is an
// *InitializationError.
func (m *Manager) Load() (*Settings, error) {
	if s := m.current.Load(); s != nil {
		return s, nil
	}

	v, err, _ := m.flight.Do("load", func() (interface{}, error) {
		// A flight that finished just before this one started may have published.
		if s := m.current.Load(); s != nil {
			return s, nil
		}
		return m.load()
	})
	if err != nil {
		return nil, err
	}
	return v.(*Settings), nil
}

// Get returns the published settings, loading them on first use. A failed
// lazy load is reported as *NotInitializedError wrapping the cause.
func (m *Manager) Get() (*Settings, error) {
	if s := m.current.Load(); s != nil {
		return s, nil
	}
	s, err := m.Load()
	if err != nil {
		return nil, &NotInitializedError{Cause: err}
	}
	return s, nil
}

func (m *Manager) load() (*Settings, error) {
	l := m.logger()

	values, err := m.source.Read()
	if err != nil {
		return nil, m.fail(l, err)
	}

	s, err := Parse(values)
	if err != nil {
		return nil, m.fail(l, err)
	}

	m.current.Store(s)

	l.Info().
		Str("project_id", s.ProjectID()).
		Str("tournament_schedule", s.TournamentSchedule()).
		Msg("Configuration loaded")
	l.Debug().
		Strs("data_sources", s.DataSources()).
		Msg("Market data sources enabled")

	return s, nil
}

// fail logs cause and wraps it. Validation messages already carry redacted
// values for sensitive fields, so cause is safe to log.
func (m *Manager) fail(l zerolog.Logger, cause error) error {
	initErr := &InitializationError{Cause: cause}

	ev := l.WithLevel(zerolog.FatalLevel).Err(cause)
	var verrs ValidationErrors
	if errors.As(cause, &verrs) {
		ev = ev.Strs("fields", verrs.Fields())
	}
	ev.Msg("Configuration initialization failed")

	var missing *MissingSettingsSourceError
	if errors.As(cause, &missing) {
		l.Error().
			Str("path", missing.Path).
			Strs("required", RequiredKeys()).
			Msg("Missing settings file")
	}

	if involvesCredential(cause) {
		initErr.Guidance = CredentialGuidance
		l.Error().Msg(CredentialGuidance)
	}

	return initErr
}

func (m *Manager) logger() zerolog.Logger {
	base := log.Logger
	if m.log != nil {
		base = *m.log
	}
	return base.With().Str("component", "config").Logger()
}

var (
	defaultMu      sync.RWMutex
	defaultManager = NewManager()
)

// Default returns the process-wide manager used by Load and Get.
func Default() *Manager {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultManager
}

// SetDefault replaces the process-wide manager. Call it once during startup,
// before any consumer calls Get.
func SetDefault(m *Manager) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = m
}

// Load loads the process-wide settings. See Manager.Load.
func Load() (*Settings, error) {
	return Default().Load()
}

// Get returns the process-wide settings. See Manager.Get.
func Get() (*Settings, error) {
	return Default().Get()
}
