// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package cluster

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Partitioner produces the initial centroids for the repair pass.
type Partitioner interface {
	Fit(ctx context.Context, x [][]float64, k int) ([][]float64, error)
}

// ProgressFunc reports coarse progress of a long running stage.
type ProgressFunc func(stage string, done, total int)

// KMeans is a Lloyd K-Means partitioner with k-means++ seeding.
type KMeans struct {
	MaxIterations int
	Tolerance     float64
	Seed          int64
	Workers       int
	Progress      ProgressFunc
}

var _ Partitioner = (*KMeans)(nil)

// Fit returns k centroids for x.
func (km *KMeans) Fit(ctx context.Context, x [][]float64, k int) ([][]float64, error) {
	if k > len(x) {
		return nil, fmt.Errorf("%w: k=%d exceeds %d rows", ErrInvalidInput, k, len(x))
	}
	rng := rand.New(rand.NewSource(km.Seed)) //nolint:gosec // deterministic seeding, not security sensitive
	centroids := seedPlusPlus(x, k, rng)

	labels := make([]int, len(x))
	dists := make([]float64, len(x))
	for iter := 0; iter < km.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parallelRows(len(x), km.Workers, func(i int) {
			labels[i], dists[i] = nearest(x[i], centroids)
		})

		next := recomputeCentroids(x, labels, centroids)
		shift := 0.0
		for c := range next {
			if d := sqDist(next[c], centroids[c]); d > shift {
				shift = d
			}
		}
		centroids = next

		if km.Progress != nil {
			km.Progress("kmeans", iter+1, km.MaxIterations)
		}
		if shift <= km.Tolerance {
			break
		}
	}
	return centroids, nil
}

// FixedCentroids is a Partitioner that always returns the same centroids.
// Useful when centroids were trained elsewhere.
type FixedCentroids [][]float64

// Fit implements Partitioner.
func (f FixedCentroids) Fit(_ context.Context, x [][]float64, k int) ([][]float64, error) {
	if len(f) != k {
		return nil, fmt.Errorf("%w: %d fixed centroids for k=%d", ErrInvalidInput, len(f), k)
	}
	for i, c := range f {
		if len(x) > 0 && len(c) != len(x[0]) {
			return nil, fmt.Errorf("%w: centroid %d has %d dims, rows have %d", ErrInvalidInput, i, len(c), len(x[0]))
		}
	}
	out := make([][]float64, len(f))
	for i, c := range f {
		out[i] = append([]float64(nil), c...)
	}
	return out, nil
}

// seedPlusPlus picks k initial centroids with probability proportional to
// the squared distance from the closest centroid chosen so far.
func seedPlusPlus(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	chosen := make(map[int]bool, k)

	first := rng.Intn(len(x))
	centroids = append(centroids, append([]float64(nil), x[first]...))
	chosen[first] = true

	closest := make([]float64, len(x))
	for i := range x {
		closest[i] = sqDist(x[i], centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(closest)
		pick := -1
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range closest {
				acc += d
				if acc >= target && d > 0 {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			// Remaining rows coincide with chosen centroids.
			for i := range x {
				if !chosen[i] {
					pick = i
					break
				}
			}
		}
		chosen[pick] = true
		c := append([]float64(nil), x[pick]...)
		centroids = append(centroids, c)
		for i := range x {
			if d := sqDist(x[i], c); d < closest[i] {
				closest[i] = d
			}
		}
	}
	return centroids
}

// recomputeCentroids returns the mean of every cluster. Empty clusters keep
// their previous centroid.
func recomputeCentroids(x [][]float64, labels []int, prev [][]float64) [][]float64 {
	dim := len(prev[0])
	sums := make([][]float64, len(prev))
	counts := make([]int, len(prev))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, row := range x {
		floats.Add(sums[labels[i]], row)
		counts[labels[i]]++
	}
	for c := range sums {
		if counts[c] == 0 {
			copy(sums[c], prev[c])
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
	}
	return sums
}

// sqDist is the squared Euclidean distance.
func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func nearest(row []float64, centroids [][]float64) (int, float64) {
	best, bestDist := 0, sqDist(row, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := sqDist(row, centroids[c]); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

type candidate struct {
	cluster int
	dist    float64
}

// rankCentroids orders every centroid by distance to row, ties by id.
func rankCentroids(row []float64, centroids [][]float64) []candidate {
	out := make([]candidate, len(centroids))
	for c := range centroids {
		out[c] = candidate{cluster: c, dist: sqDist(row, centroids[c])}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].dist != out[j].dist {
			return out[i].dist < out[j].dist
		}
		return out[i].cluster < out[j].cluster
	})
	return out
}

// parallelRows runs fn for every index in [0,n) using worker chunks. fn
// must only write to per-index state.
func parallelRows(n, workers int, fn func(i int)) {
	if workers < 1 {
		workers = 1
	}
	chunkSize := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
