// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/bookrec/internal/database"
	"github.com/tomtom215/bookrec/internal/descriptor"
	"github.com/tomtom215/bookrec/internal/ibcf"
	"github.com/tomtom215/bookrec/internal/sparse"
)

// Report summarizes an evaluation run.
type Report struct {
	Tests       int     `json:"tests"`
	TopClusters int     `json:"top_clusters"`
	HitRatio    float64 `json:"hit_ratio"`

	// Evaluated counts test cases whose user has a cluster.
	Evaluated int `json:"evaluated"`
	Hits      int `json:"hits"`

	// MeanItemsToHit and MedianItemsToHit cover hits only.
	MeanItemsToHit   float64 `json:"mean_items_to_hit"`
	MedianItemsToHit float64 `json:"median_items_to_hit"`

	ItemsToHit []ibcf.ItemsToHit `json:"items_to_hit,omitempty"`
}

// Evaluate scores recs against the test_bookings table. Only the
// topClusters best clusters of each row count; zero keeps all.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Evaluate(ctx context.Context, db *database.DB, users, bookings *descriptor.File, recs *sparse.Matrix, topClusters int, logger zerolog.Logger) (*Report, error) {
	pairs, err := db.TestBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load test bookings: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no test bookings", ErrEmptyInput)
	}
	if rows, _ := recs.Dims(); rows != users.Len() {
		return nil, fmt.Errorf("%w: %d recommendation rows for %d user clusters",
			sparse.ErrDimensionMismatch, rows, users.Len())
	}

	tests := make([]ibcf.TestCase, len(pairs))
	for i, p := range pairs {
		tests[i] = ibcf.TestCase{User: p.A, Item: p.B}
	}

	clusterItems := make([]map[string]bool, bookings.Len())
	for i := range bookings.Clusters {
		set := make(map[string]bool, len(bookings.Clusters[i].Items))
		for _, item := range bookings.Clusters[i].Items {
			set[item] = true
		}
		clusterItems[i] = set
	}

	truncated := recs.TopKPerRow(topClusters, sparse.ByValue)
	userCluster := users.UserClusters()

	report := &Report{
		Tests:       len(tests),
		TopClusters: topClusters,
		HitRatio:    ibcf.HitRatio(truncated, tests, userCluster, clusterItems),
		ItemsToHit:  ibcf.CountItemsToHit(truncated, tests, userCluster, clusterItems),
	}
	report.Evaluated = len(report.ItemsToHit)

	var counts []float64
	for _, r := range report.ItemsToHit {
		if r.Hit {
			counts = append(counts, float64(r.Items))
		}
	}
	report.Hits = len(counts)
	if len(counts) > 0 {
		report.MeanItemsToHit = stat.Mean(counts, nil)
		sort.Float64s(counts)
		report.MedianItemsToHit = stat.Quantile(0.5, stat.Empirical, counts, nil)
	}

	logger.Info().
		Int("tests", report.Tests).
		Int("evaluated", report.Evaluated).
		Int("hits", report.Hits).
		Int("top_clusters", topClusters).
		Float64("hit_ratio", report.HitRatio).
		Float64("mean_items_to_hit", report.MeanItemsToHit).
		Msg("evaluation finished")

	return report, nil
}
