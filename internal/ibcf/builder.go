// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package ibcf

import (
	"fmt"

	"github.com/tomtom215/bookrec/internal/sparse"
)

// Interaction is one observed actor-object event, e.g. a user code and
// the booking code it made.
type Interaction struct {
	Actor  string
	Object string
}

// ClusterMatrixStats reports how many interactions were used.
type ClusterMatrixStats struct {
	Used           int
	UnknownActors  int
	UnknownObjects int
}

// BuildClusterMatrix builds the actor-cluster × object-cluster training
// matrix. Each cell starts as the number of interactions between the two
// clusters. Rows are L1-normalized (probability of observing an object
// cluster from an actor cluster), then row i is divided by the number of
// actors in cluster i and column j by the number of objects in cluster j.
//
// actorCluster and objectCluster map ids to dense cluster positions below
// nActor and nObject. Interactions whose actor or object is unmapped are
// skipped and counted in the returned stats.
func BuildClusterMatrix(events []Interaction, actorCluster, objectCluster map[string]int, nActor, nObject int) (*sparse.Matrix, ClusterMatrixStats, error) {
	var stats ClusterMatrixStats

	actorSizes, err := clusterSizes(actorCluster, nActor)
	if err != nil {
		return nil, stats, fmt.Errorf("actor clusters: %w", err)
	}
	objectSizes, err := clusterSizes(objectCluster, nObject)
	if err != nil {
		return nil, stats, fmt.Errorf("object clusters: %w", err)
	}

	b := sparse.NewBuilder(nActor, nObject)
	for _, ev := range events {
		row, ok := actorCluster[ev.Actor]
		if !ok {
			stats.UnknownActors++
			continue
		}
		col, ok := objectCluster[ev.Object]
		if !ok {
			stats.UnknownObjects++
			continue
		}
		b.Add(row, col, 1)
		stats.Used++
	}
	counts, err := b.Build()
	if err != nil {
		return nil, stats, fmt.Errorf("build co-occurrence: %w", err)
	}

	m := counts.NormalizeRows(sparse.NormL1)
	if m, err = m.ScaleRows(inverse(actorSizes)); err != nil {
		return nil, stats, err
	}
	if m, err = m.ScaleCols(inverse(objectSizes)); err != nil {
		return nil, stats, err
	}
	return m, stats, nil
}

func clusterSizes(assign map[string]int, n int) ([]float64, error) {
	sizes := make([]float64, n)
	for id, c := range assign {
		if c < 0 || c >= n {
			return nil, fmt.Errorf("%w: %q in cluster %d of %d", sparse.ErrIndexOutOfRange, id, c, n)
		}
		sizes[c]++
	}
	return sizes, nil
}

// inverse returns 1/v per element, 0 for empty clusters.
func inverse(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if x != 0 {
			out[i] = 1 / x
		}
	}
	return out
}
