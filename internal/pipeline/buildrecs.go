// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/cluster"
	"github.com/tomtom215/bookrec/internal/database"
	"github.com/tomtom215/bookrec/internal/descriptor"
	"github.com/tomtom215/bookrec/internal/ibcf"
	"github.com/tomtom215/bookrec/internal/sparse"
)

// RecsOptions controls BuildRecs.
type RecsOptions struct {
	Similarity ibcf.SimilarityOptions

	// TopK keeps the TopK best booking clusters per user cluster. Zero
	// keeps all.
	TopK int

	// ExcludeSeen removes booking clusters a user cluster already booked.
	ExcludeSeen bool
}

// RecsOutput holds the matrices produced by BuildRecs.
type RecsOutput struct {
	// Training is the normalized user-cluster × booking-cluster matrix.
	Training   *sparse.Matrix
	Similarity *sparse.Matrix
	Recs       *sparse.Matrix
	Stats      ibcf.ClusterMatrixStats
}

// recsStages is the number of progress steps BuildRecs reports.
const recsStages = 3

// BuildRecs turns the bookings table and both cluster descriptors into
// the cluster recommendation matrix. progress may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func BuildRecs(ctx context.Context, db *database.DB, users, bookings *descriptor.File, opts RecsOptions, progress cluster.ProgressFunc, logger zerolog.Logger) (*RecsOutput, error) {
	start := time.Now()
	report := func(done int) {
		if progress != nil {
			progress("buildrecs", done, recsStages)
		}
	}

	pairs, err := db.BookingPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load booking pairs: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no bookings", ErrEmptyInput)
	}
	events := make([]ibcf.Interaction, len(pairs))
	for i, p := range pairs {
		events[i] = ibcf.Interaction{Actor: p.A, Object: p.B}
	}

	train, stats, err := ibcf.BuildClusterMatrix(events, users.UserClusters(), bookings.BookingClusters(), users.Len(), bookings.Len())
	if err != nil {
		return nil, fmt.Errorf("build training matrix: %w", err)
	}
	logger.Info().
		Object("matrix", train.Info()).
		Int("used", stats.Used).
		Int("unknown_users", stats.UnknownActors).
		Int("unknown_bookings", stats.UnknownObjects).
		Msg("training matrix built")
	report(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sim, err := ibcf.BuildSimilarity(train, opts.Similarity)
	if err != nil {
		return nil, fmt.Errorf("build similarity: %w", err)
	}
	logger.Info().
		Object("matrix", sim.Info()).
		Int("top_k", opts.Similarity.TopK).
		Stringer("column_norm", opts.Similarity.ColumnNorm).
		Msg("similarity matrix built")
	report(2)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var mask *sparse.Matrix
	if opts.ExcludeSeen {
		mask = train.Binarize()
	}
	recs, err := ibcf.RecommendAll(train, sim, mask, opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("compose recommendations: %w", err)
	}
	logger.Info().
		Object("matrix", recs.Info()).
		Int("top_k", opts.TopK).
		Bool("exclude_seen", opts.ExcludeSeen).
		Dur("duration", time.Since(start)).
		Msg("recommendation matrix built")
	report(3)

	return &RecsOutput{Training: train, Similarity: sim, Recs: recs, Stats: stats}, nil
}
