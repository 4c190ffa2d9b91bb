// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package cluster

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClusterer(cfg Config, centroids [][]float64) *Clusterer {
	opts := []Option{}
	if centroids != nil {
		opts = append(opts, WithPartitioner(FixedCentroids(centroids)))
	}
	return New(cfg, zerolog.Nop(), opts...)
}

// distinctByCluster returns the distinct label count of each final cluster
// and whether the cluster holds any fallback row.
func distinctByCluster(res *Result, labels []string) (map[int]int, map[int]bool) {
	sets := make(map[int]map[string]bool)
	fallback := make(map[int]bool)
	for i, cl := range res.Assignments {
		if sets[cl] == nil {
			sets[cl] = make(map[string]bool)
		}
		sets[cl][labels[i]] = true
		if res.Fallback[i] {
			fallback[cl] = true
		}
	}
	counts := make(map[int]int, len(sets))
	for cl, s := range sets {
		counts[cl] = len(s)
	}
	return counts, fallback
}

func TestClusterMergesSingleObjectCluster(t *testing.T) {
	t.Parallel()

	// Six rows, two features, three clusters. The third cluster holds two
	// bookings of the same object and must be dissolved.
	x := [][]float64{
		{0, 0},
		{0, 1},
		{10, 0},
		{10, 1},
		{4, 5},
		{4, 6},
	}
	labels := []string{"o1", "o2", "o3", "o4", "o5", "o5"}
	centroids := [][]float64{{0, 0.5}, {10, 0.5}, {5, 5.5}}

	cfg := Config{K: 3, MinObjectsPerCluster: 2, SearchWidth: 3, MaxIterations: 1, Workers: 2}
	res, err := newTestClusterer(cfg, centroids).Cluster(context.Background(), x, labels)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	if want := []int{0, 0, 1, 1, 0, 0}; !reflect.DeepEqual(res.Assignments, want) {
		t.Errorf("Assignments = %v, want %v", res.Assignments, want)
	}
	if res.Stats.FinalClusters > 3 || res.Stats.FinalClusters != 2 {
		t.Errorf("FinalClusters = %d, want 2", res.Stats.FinalClusters)
	}
	counts, _ := distinctByCluster(res, labels)
	for cl, n := range counts {
		if n < 2 {
			t.Errorf("cluster %d has %d distinct objects, want >= 2", cl, n)
		}
	}
	if got := res.Distances[4]; math.Abs(got-36.25) > 1e-9 {
		t.Errorf("Distances[4] = %v, want 36.25", got)
	}
	if got := res.Distances[5]; math.Abs(got-46.25) > 1e-9 {
		t.Errorf("Distances[5] = %v, want 46.25", got)
	}
	// Rows of clusters that never went bad keep their original distance.
	if got := res.Distances[0]; math.Abs(got-0.25) > 1e-9 {
		t.Errorf("Distances[0] = %v, want 0.25", got)
	}
	if res.Stats.BadClusters[1] != 1 {
		t.Errorf("BadClusters[1] = %d, want 1", res.Stats.BadClusters[1])
	}
	if res.Stats.FallbackRows != 0 {
		t.Errorf("FallbackRows = %d, want 0", res.Stats.FallbackRows)
	}
}

func TestClusterCumulativeBadSet(t *testing.T) {
	t.Parallel()

	x := [][]float64{
		{0, 0},
		{3, 0},
		{3, 0.1},
		{10, 0},
		{10, 0.1},
		{10.2, 0},
		{9.8, 0},
	}
	labels := []string{"a", "b", "c", "d", "e", "f", "g"}
	centroids := [][]float64{{0, 0}, {3, 0.05}, {10, 0.05}}

	cfg := Config{K: 3, MinObjectsPerCluster: 4, SearchWidth: 1, MaxIterations: 1, Workers: 3}
	res, err := newTestClusterer(cfg, centroids).Cluster(context.Background(), x, labels)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	// a joins {b,c} at threshold 1, then {a,b,c} is dissolved at threshold 3
	// and never falls back into the first cluster.
	if want := []int{0, 0, 0, 0, 0, 0, 0}; !reflect.DeepEqual(res.Assignments, want) {
		t.Errorf("Assignments = %v, want %v", res.Assignments, want)
	}
	if want := map[int]int{1: 1, 3: 1}; !reflect.DeepEqual(res.Stats.BadClusters, want) {
		t.Errorf("BadClusters = %v, want %v", res.Stats.BadClusters, want)
	}
	if res.Stats.Reassignments != 4 {
		t.Errorf("Reassignments = %d, want 4", res.Stats.Reassignments)
	}
	if got := res.Distances[0]; math.Abs(got-100.0025) > 1e-9 {
		t.Errorf("Distances[0] = %v, want 100.0025", got)
	}
	if res.Stats.WidenedRows == 0 {
		t.Error("WidenedRows = 0, want rows that searched past the first centroid")
	}
}

func TestClusterFallbackWhenEveryClusterIsBad(t *testing.T) {
	t.Parallel()

	x := [][]float64{{0, 0}, {0, 1}, {5, 5}}
	labels := []string{"x", "x", "x"}
	centroids := [][]float64{{0, 0.5}, {5, 5}}

	cfg := Config{K: 2, MinObjectsPerCluster: 3, SearchWidth: 2, MaxIterations: 1, Workers: 1}
	res, err := newTestClusterer(cfg, centroids).Cluster(context.Background(), x, labels)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	if res.Stats.FallbackRows != 3 {
		t.Errorf("FallbackRows = %d, want 3", res.Stats.FallbackRows)
	}
	for i, fb := range res.Fallback {
		if !fb {
			t.Errorf("Fallback[%d] = false, want true", i)
		}
	}
	if want := []int{0, 0, 1}; !reflect.DeepEqual(res.Assignments, want) {
		t.Errorf("Assignments = %v, want %v", res.Assignments, want)
	}
}

func TestClusterReindexIsContiguousInFirstSeenOrder(t *testing.T) {
	t.Parallel()

	x := [][]float64{{9, 9}, {0, 0}, {9, 9.1}, {5, 5}, {0, 0.1}, {5, 5.1}}
	labels := []string{"a", "b", "c", "d", "e", "f"}
	// Original centroid ids deliberately disagree with first-seen order.
	centroids := [][]float64{{0, 0}, {5, 5}, {9, 9}, {100, 100}}

	cfg := Config{K: 4, MinObjectsPerCluster: 1, SearchWidth: 2, MaxIterations: 1, Workers: 2}
	res, err := newTestClusterer(cfg, centroids).Cluster(context.Background(), x, labels)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	if want := []int{0, 1, 0, 2, 1, 2}; !reflect.DeepEqual(res.Assignments, want) {
		t.Errorf("Assignments = %v, want %v", res.Assignments, want)
	}
	if res.Stats.FinalClusters != 3 {
		t.Errorf("FinalClusters = %d, want 3 (empty centroid dropped)", res.Stats.FinalClusters)
	}
	if len(res.Centroids) != 3 || !reflect.DeepEqual(res.Centroids[0], []float64{9, 9}) {
		t.Errorf("Centroids = %v", res.Centroids)
	}

	next := 0
	for _, id := range res.Assignments {
		if id > next {
			t.Fatalf("id %d appears before id %d", id, next)
		}
		if id == next {
			next++
		}
	}
}

func TestClusterKMeansInvariant(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	centers := [][]float64{{0, 0}, {6, 6}, {-6, 6}, {6, -6}}
	var x [][]float64
	var labels []string
	objects := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10"}
	for i := 0; i < 120; i++ {
		c := centers[i%len(centers)]
		x = append(x, []float64{c[0] + rng.NormFloat64(), c[1] + rng.NormFloat64()})
		labels = append(labels, objects[rng.Intn(len(objects))])
	}

	cfg := Config{K: 12, MinObjectsPerCluster: 4, SearchWidth: 3, MaxIterations: 30, Tolerance: 1e-6, Seed: 3, Workers: 4}
	res, err := newTestClusterer(cfg, nil).Cluster(context.Background(), x, labels)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	counts, fallback := distinctByCluster(res, labels)
	for cl, n := range counts {
		if fallback[cl] {
			continue
		}
		if n < cfg.MinObjectsPerCluster {
			t.Errorf("cluster %d has %d distinct objects, want >= %d", cl, n, cfg.MinObjectsPerCluster)
		}
	}
	if len(counts) != res.Stats.FinalClusters {
		t.Errorf("FinalClusters = %d, observed %d", res.Stats.FinalClusters, len(counts))
	}
	for i, id := range res.Assignments {
		if id < 0 || id >= res.Stats.FinalClusters {
			t.Fatalf("Assignments[%d] = %d outside [0,%d)", i, id, res.Stats.FinalClusters)
		}
	}

	again, err := newTestClusterer(cfg, nil).Cluster(context.Background(), x, labels)
	if err != nil {
		t.Fatalf("second Cluster() error: %v", err)
	}
	if !reflect.DeepEqual(res.Assignments, again.Assignments) {
		t.Error("same seed produced different assignments")
	}
}

func TestClusterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		x      [][]float64
		labels []string
	}{
		{"no rows", Config{K: 1}, nil, nil},
		{"label count", Config{K: 1}, [][]float64{{1}}, []string{"a", "b"}},
		{"ragged rows", Config{K: 1}, [][]float64{{1, 2}, {1}}, []string{"a", "b"}},
		{"k too large", Config{K: 3}, [][]float64{{1}, {2}}, []string{"a", "b"}},
		{"k zero", Config{K: 0}, [][]float64{{1}}, []string{"a"}},
		{"empty features", Config{K: 1}, [][]float64{{}}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newTestClusterer(tt.cfg, nil).Cluster(context.Background(), tt.x, tt.labels)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Cluster() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestClusterCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x := [][]float64{{0}, {1}, {2}, {3}}
	_, err := newTestClusterer(Config{K: 2, MinObjectsPerCluster: 2}, nil).Cluster(ctx, x, []string{"a", "b", "c", "d"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Cluster() error = %v, want context.Canceled", err)
	}
}

func TestTFIDF(t *testing.T) {
	t.Parallel()

	got := TFIDF([][]float64{{1, 0}, {1, 1}})

	idf1 := math.Log(3.0/2.0) + 1
	norm := math.Sqrt(1 + idf1*idf1)
	want := [][]float64{{1, 0}, {1 / norm, idf1 / norm}}

	for i := range want {
		for j := range want[i] {
			if math.Abs(got[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("TFIDF()[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
	if TFIDF(nil) != nil {
		t.Error("TFIDF(nil) != nil")
	}
}
