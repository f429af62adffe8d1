// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package api

import (
	"net/http"
	"time"

	"github.com/kappaworks/kappa/internal/config"
	"github.com/kappaworks/kappa/internal/database"
	"github.com/kappaworks/kappa/internal/logging"
	"github.com/kappaworks/kappa/internal/recommend"
)

// Handler carries the dependencies of all HTTP handlers.
type Handler struct {
	db       *database.DB
	provider *recommend.Provider
	engine   *recommend.Engine
	cfg      *config.Config
}

// NewHandler creates the handler set.
func NewHandler(db *database.DB, provider *recommend.Provider, engine *recommend.Engine, cfg *config.Config) *Handler {
	return &Handler{
		db:       db,
		provider: provider,
		engine:   engine,
		cfg:      cfg,
	}
}

// Index returns the service welcome message.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("WELCOME TO KAPPA")); err != nil {
		logging.Error().Err(err).Msg("Failed to write index response")
	}
}

// healthStatus is the payload of the health endpoint.
type healthStatus struct {
	Status      string          `json:"status"`
	Service     string          `json:"service"`
	DataLoaded  bool            `json:"data_loaded"`
	DataStats   *database.Stats `json:"data_stats,omitempty"`
	SnapshotAge string          `json:"snapshot_age,omitempty"`
}

// Health reports service health with data statistics.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.provider.Current()
	status := healthStatus{
		Status:     "healthy",
		Service:    "kappa-backend",
		DataLoaded: snap != nil,
	}

	stats, err := h.db.GetStats(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Health check failed")
		rw.ServiceUnavailable("database unavailable")
		return
	}
	status.DataStats = stats

	if snap != nil {
		status.SnapshotAge = time.Since(snap.LoadedAt).Truncate(time.Second).String()
	}

	rw.Success(status)
}

// HealthLive reports process liveness. It always succeeds while the
// server is able to serve requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady reports readiness: the database answers and at least one
// snapshot has been loaded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.db.Ping(r.Context()); err != nil {
		rw.ServiceUnavailable("database not reachable")
		return
	}
	if h.provider.Current() == nil {
		rw.ServiceUnavailable("snapshot not loaded")
		return
	}

	rw.Success(map[string]string{"status": "ready"})
}

// RecommendKMeans serves POST /api/kmeans.
func (h *Handler) RecommendKMeans(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, recommend.AlgorithmKMeans)
}

// RecommendDBSCAN serves POST /api/dbscan.
func (h *Handler) RecommendDBSCAN(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, recommend.AlgorithmDBSCAN)
}

// recommend decodes the rating list, runs the pipeline against the
// current snapshot and writes the ordered recommendation list. An empty
// list is a successful response.
func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, algorithm recommend.Algorithm) {
	rw := NewResponseWriter(w, r)

	snap := h.provider.Current()
	if snap == nil {
		rw.ServiceUnavailable("recommendation data not loaded yet")
		return
	}

	input, apiErr := decodeRatingList(r,
		h.cfg.Recommend.MinUserRatings, h.cfg.Recommend.MaxUserRatings)
	if apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	results, err := h.engine.Recommend(r.Context(), snap, input, algorithm)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("algorithm", string(algorithm)).
			Msg("Recommendation pipeline failed")
		rw.InternalError("failed to compute recommendations")
		return
	}

	rw.SuccessWithMeta(results, &APIMeta{
		Algorithm: string(algorithm),
		Count:     len(results),
	})
}
