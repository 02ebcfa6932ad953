// Package handlers provides HTTP handlers for tournament triggers.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/evolution-engine/internal/modules/tournament"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Job is the trigger job run by HandleTrigger
type Job interface {
	Run() error
	Name() string
}

// Handler handles tournament HTTP requests
type Handler struct {
	repo *tournament.Repository
	job  Job
	log  zerolog.Logger
}

// NewHandler creates a new tournament handler. job may be nil, in which case
// manual triggering is unavailable.
func NewHandler(repo *tournament.Repository, job Job, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		job:  job,
		log:  log.With().Str("handler", "tournament").Logger(),
	}
}

// RegisterRoutes registers all tournament routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tournament", func(r chi.Router) {
		r.Get("/triggers", h.HandleListTriggers)
		r.Post("/trigger", h.HandleTrigger)
	})
}

// HandleListTriggers handles GET /api/tournament/triggers
func (h *Handler) HandleListTriggers(w http.ResponseWriter, r *http.Request) {
	limit := tournament.DefaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = tournament.ListLimit(parsed)
	}

	triggers, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list tournament triggers")
		h.writeError(w, http.StatusInternalServerError, "Failed to list tournament triggers")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"triggers": triggers,
			"count":    len(triggers),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"limit":     limit,
		},
	})
}

// HandleTrigger handles POST /api/tournament/trigger
func (h *Handler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if h.job == nil {
		h.writeError(w, http.StatusServiceUnavailable, "tournament trigger not registered")
		return
	}

	h.log.Info().Msg("Manual tournament trigger requested")
	if err := h.job.Run(); err != nil {
		h.log.Error().Err(err).Msg("Manual tournament trigger failed")
		h.writeError(w, http.StatusInternalServerError, "tournament trigger failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Tournament trigger fired",
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
