// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package recommend serves cluster-constrained and item-level booking
// recommendations.
//
// # Architecture
//
// A request flows through three stages:
//
//   - Candidate generation: PopularityRecommender or ContentRecommender
//     scores every active item the user has not booked, as a row over
//     the item catalog.
//   - Cluster selection: ClusterRecommender takes the user cluster's row
//     of the precomputed cluster-cluster matrix, masks out booking
//     clusters with too few candidate items and keeps the best ones.
//   - Presentation: ItemData expands each selected cluster into its best
//     candidate items.
//
// The data providers (UserData, BookingData, ItemData, ItemFeatureData)
// are built once by Load and never mutated, so an Engine needs no locks
// beyond those of its result cache.
//
// # Usage
//
//	ds, err := recommend.Load(ctx, db, cfg, logger)
//	engine, err := recommend.NewEngine(ds, cfg.Recommend, store, logger)
//	res, err := engine.ClusterRecs(ctx, "u42", 3, 10)
//	if res == nil {
//		// unknown user
//	}
package recommend
