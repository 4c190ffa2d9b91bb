// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/database"
	"github.com/tomtom215/bookrec/internal/ibcf"
	"github.com/tomtom215/bookrec/internal/sparse"
)

// ItemReport summarizes the user×item baseline evaluation.
type ItemReport struct {
	Tests    int     `json:"tests"`
	TopK     int     `json:"top_k"`
	HitRatio float64 `json:"hit_ratio"`

	// Evaluated counts test cases whose user and item both occur in the
	// training bookings.
	Evaluated int `json:"evaluated"`
	Hits      int `json:"hits"`

	Users int `json:"users"`
	Items int `json:"items"`
}

// EvaluateItems scores plain item-based collaborative filtering, without
// clusters, against the test_bookings table. The user×item training
// matrix counts every booking row; recommendations exclude items the user
// already booked and keep the topK best per user.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func EvaluateItems(ctx context.Context, db *database.DB, opts ibcf.SimilarityOptions, topK int, logger zerolog.Logger) (*ItemReport, error) {
	start := time.Now()

	pairs, err := db.ItemPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load booking items: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no bookings", ErrEmptyInput)
	}
	tests, err := db.TestBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load test bookings: %w", err)
	}
	if len(tests) == 0 {
		return nil, fmt.Errorf("%w: no test bookings", ErrEmptyInput)
	}

	userRow := indexOf(pairs, func(p database.Pair) string { return p.A })
	itemCol := indexOf(pairs, func(p database.Pair) string { return p.B })

	b := sparse.NewBuilder(len(userRow), len(itemCol))
	for _, p := range pairs {
		b.Add(userRow[p.A], itemCol[p.B], 1)
	}
	train, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build training matrix: %w", err)
	}
	logger.Info().Object("matrix", train.Info()).Msg("user-item training matrix built")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Items are described by the users who booked them.
	sim, err := ibcf.ObjectSimilarity(train.Transpose(), opts)
	if err != nil {
		return nil, fmt.Errorf("build item similarity: %w", err)
	}
	logger.Info().Object("matrix", sim.Info()).Msg("item similarity matrix built")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs, err := ibcf.RecommendAll(train.NormalizeRows(sparse.NormL2), sim, train.Binarize(), topK)
	if err != nil {
		return nil, fmt.Errorf("compose item recommendations: %w", err)
	}

	cases := make([]ibcf.TestCase, len(tests))
	report := &ItemReport{
		Tests: len(tests),
		TopK:  topK,
		Users: len(userRow),
		Items: len(itemCol),
	}
	for i, p := range tests {
		cases[i] = ibcf.TestCase{User: p.A, Item: p.B}
		row, okUser := userRow[p.A]
		col, okItem := itemCol[p.B]
		if !okUser || !okItem {
			continue
		}
		report.Evaluated++
		if recs.At(row, col) != 0 {
			report.Hits++
		}
	}
	report.HitRatio = ibcf.ItemHitRatio(recs, cases, userRow, itemCol)

	logger.Info().
		Int("tests", report.Tests).
		Int("evaluated", report.Evaluated).
		Int("hits", report.Hits).
		Int("top_k", topK).
		Float64("hit_ratio", report.HitRatio).
		Dur("duration", time.Since(start)).
		Msg("item evaluation finished")

	return report, nil
}

// indexOf assigns dense indices to the distinct keys of pairs in sorted
// order.
func indexOf(pairs []database.Pair, key func(database.Pair) string) map[string]int {
	seen := make(map[string]bool)
	var keys []string
	for _, p := range pairs {
		k := key(p)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	return idx
}
