package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/rs/zerolog"
)

// ConfigHandlers serves the non-sensitive view of the published settings
type ConfigHandlers struct {
	log      zerolog.Logger
	settings func() (*config.Settings, error)
}

// NewConfigHandlers creates a new config handlers instance
func NewConfigHandlers(log zerolog.Logger, settings func() (*config.Settings, error)) *ConfigHandlers {
	return &ConfigHandlers{
		log:      log.With().Str("handler", "config").Logger(),
		settings: settings,
	}
}

// SchemaEntry describes one recognized settings key
type SchemaEntry struct {
	Key       string `json:"key"`
	Required  bool   `json:"required"`
	Sensitive bool   `json:"sensitive"`
	Default   string `json:"default,omitempty"`
}

// HandleGetConfig handles GET /api/config
func (h *ConfigHandlers) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings()
	if err != nil {
		h.log.Error().Err(err).Msg("Settings unavailable")

		body := map[string]interface{}{"error": "configuration not initialized"}
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			body["fields"] = verrs.Fields()
		}
		h.writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": s.Summary(),
	})
}

// HandleGetSchema handles GET /api/config/schema
func (h *ConfigHandlers) HandleGetSchema(w http.ResponseWriter, r *http.Request) {
	entries := make([]SchemaEntry, 0)
	for _, key := range config.RequiredKeys() {
		entries = append(entries, SchemaEntry{Key: key, Required: true, Sensitive: config.IsSensitive(key)})
	}
	for _, key := range config.OptionalKeys() {
		def, _ := config.DefaultFor(key)
		entries = append(entries, SchemaEntry{Key: key, Sensitive: config.IsSensitive(key), Default: def})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": entries,
	})
}

func (h *ConfigHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
