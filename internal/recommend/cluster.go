// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"fmt"

	"github.com/tomtom215/bookrec/internal/sparse"
)

// ClusterRecommender selects booking clusters for a user cluster from the
// precomputed user cluster × booking cluster matrix.
type ClusterRecommender struct {
	recs  *sparse.Matrix
	items *ItemData
}

// NewClusterRecommender checks that the matrix has one column per booking
// cluster.
func NewClusterRecommender(recs *sparse.Matrix, items *ItemData) (*ClusterRecommender, error) {
	if _, cols := recs.Dims(); cols != items.NClusters() {
		return nil, fmt.Errorf("%w: recs matrix has %d booking clusters, descriptor %d",
			sparse.ErrDimensionMismatch, cols, items.NClusters())
	}
	return &ClusterRecommender{recs: recs, items: items}, nil
}

// Recs returns the topClusters best booking clusters for userCluster among
// those holding at least minItemsPerCluster candidate items. An unknown
// user cluster yields an empty row whatever the candidates.
func (r *ClusterRecommender) Recs(userCluster int, candidates sparse.Row, topClusters, minItemsPerCluster int) (sparse.Row, error) {
	rows, cols := r.recs.Dims()
	if userCluster < 0 || userCluster >= rows {
		return sparse.EmptyRow(cols), nil
	}
	if candidates.Dim() != r.items.NItems() {
		return sparse.Row{}, fmt.Errorf("%w: candidates have %d items, catalog %d",
			sparse.ErrDimensionMismatch, candidates.Dim(), r.items.NItems())
	}

	available, err := r.items.Available(candidates, minItemsPerCluster)
	if err != nil {
		return sparse.Row{}, err
	}
	row, err := r.recs.Row(userCluster).Multiply(available.Binarize())
	if err != nil {
		return sparse.Row{}, err
	}
	return row.TopK(topClusters), nil
}

// Matrix returns the cluster-cluster matrix.
func (r *ClusterRecommender) Matrix() *sparse.Matrix { return r.recs }
