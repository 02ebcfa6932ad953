// Package server provides the HTTP server and routing for the engine host.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/aristath/evolution-engine/internal/database"
	"github.com/aristath/evolution-engine/internal/modules/audit"
	audithandlers "github.com/aristath/evolution-engine/internal/modules/audit/handlers"
	"github.com/aristath/evolution-engine/internal/modules/tournament"
	tournamenthandlers "github.com/aristath/evolution-engine/internal/modules/tournament/handlers"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	DB          *database.DB
	Audit       *audit.Repository
	Triggers    *tournament.Repository
	TriggerJob  tournamenthandlers.Job
	Settings    func() (*config.Settings, error) // defaults to config.Get
	Port        int
	DevMode     bool
	StartupTime time.Time
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	cfg            Config
	systemHandlers *SystemHandlers
	configHandlers *ConfigHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.Settings == nil {
		cfg.Settings = config.Get
	}
	if cfg.StartupTime.IsZero() {
		cfg.StartupTime = time.Now()
	}

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		cfg:            cfg,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.DB, cfg.StartupTime),
		configHandlers: NewConfigHandlers(cfg.Log, cfg.Settings),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/config", func(r chi.Router) {
			r.Get("/", s.configHandlers.HandleGetConfig)
			r.Get("/schema", s.configHandlers.HandleGetSchema)
			if s.cfg.Audit != nil {
				audithandlers.NewHandler(s.cfg.Audit, s.cfg.Log).RegisterRoutes(r)
			}
		})

		if s.cfg.Triggers != nil {
			tournamenthandlers.NewHandler(s.cfg.Triggers, s.cfg.TriggerJob, s.cfg.Log).RegisterRoutes(r)
		}

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database", s.systemHandlers.HandleDatabaseStats)
		})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
