package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/evolution-engine/internal/modules/tournament"
	testutil "github.com/aristath/evolution-engine/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	runs int
	err  error
}

func (j *stubJob) Run() error {
	j.runs++
	return j.err
}

func (j *stubJob) Name() string { return "tournament_trigger" }

func setupRouter(t *testing.T, job Job) (chi.Router, *tournament.Repository) {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	repo := tournament.NewRepository(testutil.NewTestDB(t, "engine").Conn(), logger)

	r := chi.NewRouter()
	r.Route("/api", NewHandler(repo, job, logger).RegisterRoutes)
	return r, repo
}

func TestHandleListTriggers(t *testing.T) {
	router, repo := setupRouter(t, nil)

	_, err := repo.Record(context.Background(), tournament.Trigger{
		ProjectID:           "evo-research",
		MaxConcurrentAgents: 100,
		DataSources:         []string{"binance"},
		Status:              tournament.StatusSkipped,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/tournament/triggers?limit=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data struct {
			Triggers []tournament.Trigger `json:"triggers"`
			Count    int                  `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Data.Count)
	assert.Equal(t, tournament.StatusSkipped, response.Data.Triggers[0].Status)
	assert.Equal(t, []string{"binance"}, response.Data.Triggers[0].DataSources)
}

func TestHandleListTriggers_LimitIsCapped(t *testing.T) {
	router, _ := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tournament/triggers?limit=100000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Metadata struct {
			Limit int `json:"limit"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, tournament.MaxListLimit, response.Metadata.Limit)
}

func TestHandleListTriggers_InvalidLimit(t *testing.T) {
	router, _ := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tournament/triggers?limit=-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTrigger(t *testing.T) {
	tests := []struct {
		name           string
		job            *stubJob
		expectedStatus int
	}{
		{"not registered", nil, http.StatusServiceUnavailable},
		{"success", &stubJob{}, http.StatusOK},
		{"job failure", &stubJob{err: errors.New("no settings")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var job Job
			if tt.job != nil {
				job = tt.job
			}
			router, _ := setupRouter(t, job)

			req := httptest.NewRequest(http.MethodPost, "/api/tournament/trigger", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.job != nil {
				assert.Equal(t, 1, tt.job.runs)
			}
		})
	}
}
