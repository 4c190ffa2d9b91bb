// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/cache"
	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/sparse"
)

// Recommendation kinds, used as metric labels and cache key prefixes.
const (
	KindCluster = "cluster"
	KindItem    = "item"
)

// Engine answers recommendation requests over a loaded Dataset. It is safe
// for concurrent use.
type Engine struct {
	cfg    config.RecommendConfig
	data   *Dataset
	logger zerolog.Logger

	clusters   *ClusterRecommender
	popularity *PopularityRecommender
	// content is nil when no item feature data is loaded; item requests
	// then fall back to popularity.
	content *ContentRecommender

	cache cache.Store
}

// NewEngine wires the recommenders over ds. store may be nil to disable
// result caching.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(ds *Dataset, cfg config.RecommendConfig, store cache.Store, logger zerolog.Logger) (*Engine, error) {
	clusters, err := NewClusterRecommender(ds.Recs, ds.Items)
	if err != nil {
		return nil, fmt.Errorf("cluster recommender: %w", err)
	}
	if rows, _ := ds.Recs.Dims(); rows != ds.Users.NClusters() {
		logger.Warn().
			Int("recs_rows", rows).
			Int("user_clusters", ds.Users.NClusters()).
			Msg("Recs matrix rows differ from user clusters; unknown clusters get no recommendations")
	}

	e := &Engine{
		cfg:        cfg,
		data:       ds,
		logger:     logger.With().Str("component", "recommend").Logger(),
		clusters:   clusters,
		popularity: NewPopularityRecommender(ds.Bookings, ds.Items),
		cache:      store,
	}
	if ds.ItemFeatures != nil {
		e.content = NewContentRecommender(ds.Bookings, ds.Items, ds.ItemFeatures)
	}
	return e, nil
}

// ClusterRecs recommends the topClusters best booking clusters for uid's
// cluster, each with its topItems best items. It returns nil for a user
// without a cluster.
func (e *Engine) ClusterRecs(ctx context.Context, uid string, topClusters, topItems int) (*ClusterResult, error) {
	start := time.Now()
	defer func() { metrics.RecordRecommendation(KindCluster, time.Since(start)) }()

	ug, ok := e.data.Users.Cluster(uid)
	if !ok {
		metrics.RecordUnknownUser(KindCluster)
		logging.Ctx(ctx).Debug().Str("uid", uid).Msg("User has no cluster")
		return nil, nil
	}

	key := cache.GenerateKey(KindCluster, []any{uid, topClusters, topItems})
	var res ClusterResult
	if e.lookup(ctx, KindCluster, key, &res) {
		return &res, nil
	}

	minItems := e.cfg.MinItemsPerCluster
	if minItems <= 0 {
		minItems = topItems
	}

	candidates := e.popularity.Recs(uid, 0)
	selected, err := e.clusters.Recs(ug, candidates, topClusters, minItems)
	if err != nil {
		return nil, fmt.Errorf("cluster recs for %s: %w", uid, err)
	}
	recs, err := e.data.Items.ClusterRecs(selected, candidates, topItems)
	if err != nil {
		return nil, fmt.Errorf("cluster recs for %s: %w", uid, err)
	}
	for i := range recs {
		recs[i].Features = e.data.Bookings.ClusterFeatures(recs[i].ClusterID)
	}

	res = ClusterResult{
		User:                e.data.Users.Features(uid),
		UserCluster:         map[string]map[string]float64{strconv.Itoa(ug): e.data.Users.ClusterFeatures(ug)},
		Recs:                recs,
		PrevBookingsSummary: e.data.Bookings.Summary(uid),
	}
	logging.Ctx(ctx).Debug().
		Str("uid", uid).
		Int("user_cluster", ug).
		Int("candidates", candidates.NNZ()).
		Int("clusters", len(recs)).
		Msg("Cluster recommendations built")

	e.store(ctx, KindCluster, key, &res)
	return &res, nil
}

// ItemRecs recommends the top best items for uid. It returns nil for a
// user that cannot be scored.
func (e *Engine) ItemRecs(ctx context.Context, uid string, top int) (*ItemResult, error) {
	start := time.Now()
	defer func() { metrics.RecordRecommendation(KindItem, time.Since(start)) }()

	if !e.knowsItemUser(uid) {
		metrics.RecordUnknownUser(KindItem)
		logging.Ctx(ctx).Debug().Str("uid", uid).Msg("User cannot be scored")
		return nil, nil
	}

	key := cache.GenerateKey(KindItem, []any{uid, top})
	var res ItemResult
	if e.lookup(ctx, KindItem, key, &res) {
		return &res, nil
	}

	var row sparse.Row
	if e.content != nil {
		var err error
		if row, err = e.content.Recs(uid, top); err != nil {
			return nil, fmt.Errorf("item recs for %s: %w", uid, err)
		}
	} else {
		row = e.popularity.Recs(uid, top)
	}

	res = ItemResult{
		User:                e.data.Users.Features(uid),
		Recs:                e.data.Items.ItemRecs(row, 0),
		PrevBookingsSummary: e.data.Bookings.Summary(uid),
	}
	e.store(ctx, KindItem, key, &res)
	return &res, nil
}

func (e *Engine) knowsItemUser(uid string) bool {
	if e.content != nil {
		return e.content.HasUser(uid)
	}
	_, clustered := e.data.Users.Cluster(uid)
	return clustered || e.data.Bookings.HasBookings(uid)
}

// Stats describes the loaded dataset.
func (e *Engine) Stats() Stats {
	return Stats{
		Users:           e.data.Users.NUsers(),
		UserClusters:    e.data.Users.NClusters(),
		BookingClusters: e.data.Items.NClusters(),
		Items:           e.data.Items.NItems(),
		ActiveItems:     len(e.data.Items.Active()),
		RecsNNZ:         e.data.Recs.NNZ(),
		ContentEnabled:  e.content != nil,
	}
}

// lookup decodes a cached result into dst. Cache failures are logged and
// treated as misses.
func (e *Engine) lookup(ctx context.Context, kind, key string, dst any) bool {
	if e.cache == nil {
		return false
	}
	data, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", e.cache.Backend()).Msg("Cache read failed")
	}
	if ok && err == nil {
		if err := json.Unmarshal(data, dst); err == nil {
			metrics.RecordCacheLookup(kind, true)
			return true
		}
		logging.Ctx(ctx).Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}
	metrics.RecordCacheLookup(kind, false)
	return false
}

func (e *Engine) store(ctx context.Context, kind, key string, v any) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("kind", kind).Msg("Cache encode failed")
		return
	}
	if err := e.cache.Set(ctx, key, data); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", e.cache.Backend()).Msg("Cache write failed")
	}
}
