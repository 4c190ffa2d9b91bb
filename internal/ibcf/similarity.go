// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package ibcf implements item-based collaborative filtering over sparse
// matrices: cosine similarity with per-column truncation, top-k
// recommendation rows with exclusion masks, the user-cluster by
// booking-cluster training matrix, and offline hit-ratio evaluation.
//
// All functions are pure. Inputs are never modified and outputs are new
// immutable matrices, so results can be shared across goroutines.
package ibcf

import (
	"fmt"

	"github.com/tomtom215/bookrec/internal/sparse"
)

// SimilarityOptions controls similarity post-processing.
type SimilarityOptions struct {
	// TopK keeps the TopK largest-magnitude entries of every column.
	// Zero or negative keeps everything.
	TopK int

	// ColumnNorm is applied after truncation. It rescales final
	// recommendation scores, so builders and consumers of a persisted
	// matrix must agree on it.
	ColumnNorm sparse.Norm
}

// DefaultSimilarityOptions returns untruncated similarity with L1 column
// normalization.
func DefaultSimilarityOptions() SimilarityOptions {
	return SimilarityOptions{ColumnNorm: sparse.NormL1}
}

// BuildSimilarity computes object-object cosine similarity from a history
// matrix with one row per actor (user or user cluster) and one column per
// object. Actor rows are L2-normalized, then object rows of the transpose
// are L2-normalized and multiplied pairwise. The diagonal is always zero.
//
// Truncation is per column because recommendation multiplies a history
// row by this matrix: column j holds the neighbours that vote for j.
func BuildSimilarity(history *sparse.Matrix, opts SimilarityOptions) (*sparse.Matrix, error) {
	actorNorm := history.NormalizeRows(sparse.NormL2)
	objects := actorNorm.Transpose().NormalizeRows(sparse.NormL2)

	sim, err := objects.Mul(objects.Transpose())
	if err != nil {
		return nil, fmt.Errorf("similarity product: %w", err)
	}
	sim = sim.ZeroDiagonal()
	sim = sim.TopKPerColumn(opts.TopK, sparse.ByMagnitude)
	return sim.NormalizeCols(opts.ColumnNorm), nil
}

// ObjectSimilarity computes similarity between the rows of an
// object×feature matrix. An all-zero object row yields an all-zero row and
// column.
func ObjectSimilarity(features *sparse.Matrix, opts SimilarityOptions) (*sparse.Matrix, error) {
	return BuildSimilarity(features.Transpose(), opts)
}
