// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/recommend"
	"github.com/tomtom215/bookrec/internal/validation"
)

// Recommender serves recommendation results. *recommend.Engine
// implements it.
type Recommender interface {
	ClusterRecs(ctx context.Context, uid string, topClusters, topItems int) (*recommend.ClusterResult, error)
	ItemRecs(ctx context.Context, uid string, top int) (*recommend.ItemResult, error)
	Stats() recommend.Stats
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the endpoint handlers.
type Handler struct {
	rec       Recommender
	db        Pinger
	cfg       config.RecommendConfig
	startTime time.Time
}

// NewHandler creates a Handler. db may be nil.
func NewHandler(rec Recommender, db Pinger, cfg config.RecommendConfig) *Handler {
	return &Handler{rec: rec, db: db, cfg: cfg, startTime: time.Now()}
}

// HealthStatus is the /health result.
type HealthStatus struct {
	Status     string          `json:"status"`
	Database   bool            `json:"database_connected"`
	Uptime     float64         `json:"uptime_seconds"`
	Dataset    recommend.Stats `json:"dataset"`
	ServerTime time.Time       `json:"server_time"`
}

// ClusterRecs handles GET /cluster/recs?uid=&top=&top_items=.
// @Summary Cluster-constrained recommendations
// @Description Returns the best booking clusters for the user's cluster, each with its top candidate properties and explanation. Unknown users get an empty result.
// @Tags Recommendations
// @Produce json
// @Param uid query string true "User code"
// @Param top query int false "Booking clusters to return (default: recommend.default_top_clusters)"
// @Param top_items query int false "Properties per cluster (default: recommend.default_top_items)"
// @Success 200 {object} Response{result=recommend.ClusterResult}
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cluster/recs [get]
func (h *Handler) ClusterRecs(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r, h.cfg.DefaultTopClusters)
	if !ok {
		return
	}

	res, err := h.rec.ClusterRecs(r.Context(), q.UID, q.Top, q.TopItems)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to build cluster recommendations", err)
		return
	}
	if res == nil {
		respondResult(w, r, emptyResult)
		return
	}
	respondResult(w, r, res)
}

// ItemRecs handles GET /item/recs?uid=&top=.
// @Summary Item recommendations
// @Description Returns the top properties for the user, ranked by item features when available and by popularity otherwise.
// @Tags Recommendations
// @Produce json
// @Param uid query string true "User code"
// @Param top query int false "Properties to return (default: recommend.default_top_items)"
// @Success 200 {object} Response{result=recommend.ItemResult}
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /item/recs [get]
func (h *Handler) ItemRecs(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r, h.cfg.DefaultTopItems)
	if !ok {
		return
	}

	res, err := h.rec.ItemRecs(r.Context(), q.UID, q.Top)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to build item recommendations", err)
		return
	}
	if res == nil {
		respondResult(w, r, emptyResult)
		return
	}
	respondResult(w, r, res)
}

// Ping handles GET /ping.
// @Summary Liveness check
// @Tags Core
// @Produce json
// @Success 200 {object} Response{result=string}
// @Router /ping [get]
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	respondResult(w, r, "pong")
}

// Health handles GET /health. The status is degraded when the database
// does not answer; the in-memory dataset keeps serving either way.
// @Summary Health check
// @Description Reports database connectivity, uptime and the sizes of the loaded dataset.
// @Tags Core
// @Produce json
// @Success 200 {object} Response{result=HealthStatus}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	status := "healthy"
	if h.db != nil && !dbConnected {
		status = "degraded"
	}

	respondResult(w, r, &HealthStatus{
		Status:     status,
		Database:   dbConnected,
		Uptime:     time.Since(h.startTime).Seconds(),
		Dataset:    h.rec.Stats(),
		ServerTime: time.Now().UTC(),
	})
}

// NotFound answers unmatched routes in the error envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, CodeNotFound, "Not found", nil)
}

// parseQuery reads and validates uid, top and top_items. An absent top
// takes defaultTop and an absent top_items the configured item count.
func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request, defaultTop int) (validation.RecsQuery, bool) {
	values := r.URL.Query()

	q := validation.RecsQuery{
		UID:    values.Get("uid"),
		MaxTop: h.cfg.MaxTop,
	}

	var err error
	if q.Top, err = intParam(values.Get("top"), defaultTop); err != nil {
		h.rejectParam(w, r, "top")
		return q, false
	}
	if q.TopItems, err = intParam(values.Get("top_items"), h.cfg.DefaultTopItems); err != nil {
		h.rejectParam(w, r, "top_items")
		return q, false
	}

	if verr := validation.ValidateStruct(&q); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return q, false
	}
	return q, true
}

func (h *Handler) rejectParam(w http.ResponseWriter, r *http.Request, name string) {
	verr := validation.NewFieldError(name, name+" must be an integer", r.URL.Query().Get(name))
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
