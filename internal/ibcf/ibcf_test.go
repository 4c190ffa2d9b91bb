// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package ibcf

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/tomtom215/bookrec/internal/sparse"
)

func dense(t *testing.T, values [][]float64) *sparse.Matrix {
	t.Helper()
	m, err := sparse.FromDense(values)
	if err != nil {
		t.Fatalf("FromDense() error: %v", err)
	}
	return m
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestObjectSimilarityZeroRow(t *testing.T) {
	t.Parallel()

	features := dense(t, [][]float64{
		{1, 1, 0},
		{1, 0, 1},
		{0, 0, 0},
		{0, 1, 1},
	})

	for _, norm := range []sparse.Norm{sparse.NormNone, sparse.NormL1, sparse.NormL2} {
		sim, err := ObjectSimilarity(features, SimilarityOptions{ColumnNorm: norm})
		if err != nil {
			t.Fatalf("ObjectSimilarity(%v) error: %v", norm, err)
		}
		if r, c := sim.Dims(); r != 4 || c != 4 {
			t.Fatalf("Dims() = %dx%d, want 4x4", r, c)
		}
		for i := 0; i < 4; i++ {
			if sim.At(2, i) != 0 || sim.At(i, 2) != 0 {
				t.Errorf("%v: zero object has similarity at (2,%d)/(%d,2)", norm, i, i)
			}
			if sim.At(i, i) != 0 {
				t.Errorf("%v: sim(%d,%d) = %v, want 0", norm, i, i, sim.At(i, i))
			}
		}
	}

	sim, err := ObjectSimilarity(features, SimilarityOptions{})
	if err != nil {
		t.Fatalf("ObjectSimilarity() error: %v", err)
	}
	for _, p := range [][2]int{{0, 1}, {0, 3}, {1, 3}, {3, 0}} {
		if got := sim.At(p[0], p[1]); !near(got, 0.5) {
			t.Errorf("sim(%d,%d) = %v, want 0.5", p[0], p[1], got)
		}
	}
}

func TestBuildSimilarityColumnTopK(t *testing.T) {
	t.Parallel()

	history := dense(t, [][]float64{
		{1, 2, 0, 1, 0, 3},
		{0, 1, 1, 0, 2, 0},
		{4, 0, 1, 1, 0, 1},
		{0, 0, 2, 3, 1, 0},
		{1, 1, 1, 0, 0, 2},
	})
	const k = 2

	full, err := BuildSimilarity(history, SimilarityOptions{})
	if err != nil {
		t.Fatalf("BuildSimilarity() error: %v", err)
	}
	cut, err := BuildSimilarity(history, SimilarityOptions{TopK: k})
	if err != nil {
		t.Fatalf("BuildSimilarity(TopK) error: %v", err)
	}

	fullCols := full.Transpose()
	cutCols := cut.Transpose()
	n, _ := full.Dims()
	for j := 0; j < n; j++ {
		kept := cutCols.Row(j)
		if kept.NNZ() > k {
			t.Errorf("column %d keeps %d entries, want <= %d", j, kept.NNZ(), k)
		}
		minKept := math.Inf(1)
		for _, e := range kept.Entries() {
			if !near(e.Value, full.At(e.Index, j)) {
				t.Errorf("column %d row %d = %v, want untruncated %v", j, e.Index, e.Value, full.At(e.Index, j))
			}
			minKept = math.Min(minKept, math.Abs(e.Value))
		}
		for _, e := range fullCols.Row(j).Entries() {
			if kept.At(e.Index) == 0 && math.Abs(e.Value) > minKept {
				t.Errorf("column %d discarded %v above kept %v", j, e.Value, minKept)
			}
		}
	}
}

func TestBuildSimilarityColumnNormalization(t *testing.T) {
	t.Parallel()

	history := dense(t, [][]float64{
		{1, 1, 0},
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 1},
	})
	sim, err := BuildSimilarity(history, DefaultSimilarityOptions())
	if err != nil {
		t.Fatalf("BuildSimilarity() error: %v", err)
	}
	cols := sim.Transpose()
	for j := 0; j < 3; j++ {
		if got := cols.Row(j).Sum(); !near(got, 1) {
			t.Errorf("column %d L1 = %v, want 1", j, got)
		}
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	sim := dense(t, [][]float64{
		{0, 0.5, 0.2},
		{0.5, 0, 0.8},
		{0.2, 0.8, 0},
	})
	history := sparse.RowFromDense([]float64{1, 0, 1})

	tests := []struct {
		name string
		mask *sparse.Row
		topK int
		want map[int]float64
	}{
		{"no mask", nil, 0, map[int]float64{0: 0.2, 1: 1.3, 2: 0.2}},
		{"weighted mask", rowPtr(sparse.MustRow(3, sparse.Entry{Index: 0, Value: 3})), 0, map[int]float64{1: 1.3, 2: 0.2}},
		{"mask and top", rowPtr(sparse.MustRow(3, sparse.Entry{Index: 0, Value: 1})), 1, map[int]float64{1: 1.3}},
		{"mask everything", rowPtr(sparse.RowFromDense([]float64{1, 1, 1})), 0, map[int]float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Recommend(history, sim, tt.mask, tt.topK)
			if err != nil {
				t.Fatalf("Recommend() error: %v", err)
			}
			if got.NNZ() != len(tt.want) {
				t.Fatalf("Recommend() = %v, want %v", got.Entries(), tt.want)
			}
			for idx, v := range tt.want {
				if !near(got.At(idx), v) {
					t.Errorf("score[%d] = %v, want %v", idx, got.At(idx), v)
				}
			}
			if tt.mask != nil {
				for _, e := range tt.mask.Entries() {
					if got.At(e.Index) != 0 {
						t.Errorf("excluded object %d scored %v", e.Index, got.At(e.Index))
					}
				}
			}
		})
	}
}

func rowPtr(r sparse.Row) *sparse.Row { return &r }

func TestRecommendDimensionMismatch(t *testing.T) {
	t.Parallel()

	sim := sparse.Zeros(3, 3)
	if _, err := Recommend(sparse.EmptyRow(2), sim, nil, 0); !errors.Is(err, sparse.ErrDimensionMismatch) {
		t.Errorf("Recommend() error = %v, want ErrDimensionMismatch", err)
	}
	mask := sparse.EmptyRow(4)
	if _, err := Recommend(sparse.EmptyRow(3), sim, &mask, 0); !errors.Is(err, sparse.ErrDimensionMismatch) {
		t.Errorf("Recommend(mask) error = %v, want ErrDimensionMismatch", err)
	}
}

func TestRecommendAllExcludesHistory(t *testing.T) {
	t.Parallel()

	histories := dense(t, [][]float64{
		{1, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 0},
	})
	sim, err := BuildSimilarity(histories, DefaultSimilarityOptions())
	if err != nil {
		t.Fatalf("BuildSimilarity() error: %v", err)
	}
	recs, err := RecommendAll(histories, sim, histories.Binarize(), 0)
	if err != nil {
		t.Fatalf("RecommendAll() error: %v", err)
	}
	histories.Each(func(i, j int, _ float64) {
		if recs.At(i, j) != 0 {
			t.Errorf("recs(%d,%d) = %v for a booked object", i, j, recs.At(i, j))
		}
	})
	if !recs.Row(2).IsEmpty() {
		t.Errorf("empty history produced %v", recs.Row(2).Entries())
	}

	if _, err := RecommendAll(histories, sim, sparse.Zeros(2, 4), 0); !errors.Is(err, sparse.ErrDimensionMismatch) {
		t.Errorf("RecommendAll(bad mask) error = %v, want ErrDimensionMismatch", err)
	}
}

func TestBuildClusterMatrix(t *testing.T) {
	t.Parallel()

	users := map[string]int{"u1": 0, "u2": 0, "u3": 1}
	bookings := map[string]int{"b1": 0, "b2": 0, "b3": 1}
	events := []Interaction{
		{"u1", "b1"}, {"u1", "b3"}, {"u2", "b2"}, {"u3", "b3"},
		{"u9", "b1"}, {"u1", "bX"},
	}

	m, stats, err := BuildClusterMatrix(events, users, bookings, 2, 2)
	if err != nil {
		t.Fatalf("BuildClusterMatrix() error: %v", err)
	}
	want := [][]float64{{1.0 / 6, 1.0 / 6}, {0, 1}}
	got := m.Dense()
	for i := range want {
		for j := range want[i] {
			if !near(got[i][j], want[i][j]) {
				t.Errorf("m[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
	if want := (ClusterMatrixStats{Used: 4, UnknownActors: 1, UnknownObjects: 1}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	if _, _, err := BuildClusterMatrix(nil, map[string]int{"u": 5}, bookings, 2, 2); !errors.Is(err, sparse.ErrIndexOutOfRange) {
		t.Errorf("out-of-range cluster error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestHitRatioAndItemsToHit(t *testing.T) {
	t.Parallel()

	recs := dense(t, [][]float64{
		{0.1, 0.9, 0.5},
		{0, 0, 0},
	})
	clusterItems := []map[string]bool{
		{"p1": true},
		{"p2": true, "p3": true},
		{"p4": true},
	}
	users := map[string]int{"u1": 0, "u2": 1}
	tests := []TestCase{
		{User: "u1", Item: "p4"},
		{User: "u1", Item: "p9"},
		{User: "u2", Item: "p1"},
		{User: "u3", Item: "p1"},
	}

	if got := HitRatio(recs, tests, users, clusterItems); !near(got, 0.25) {
		t.Errorf("HitRatio() = %v, want 0.25", got)
	}
	if got := HitRatio(recs, nil, users, clusterItems); got != 0 {
		t.Errorf("HitRatio(nil) = %v, want 0", got)
	}

	got := CountItemsToHit(recs, tests, users, clusterItems)
	if len(got) != 3 {
		t.Fatalf("CountItemsToHit() returned %d records, want 3", len(got))
	}
	sort.SliceStable(got, func(i, j int) bool { return got[i].Items < got[j].Items })
	want := []ItemsToHit{
		{TestCase: tests[2], Items: 1},
		{TestCase: tests[0], Items: 3, Clusters: []int{1, 2}, Hit: true},
		{TestCase: tests[1], Items: 5, Clusters: []int{1, 2, 0}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountItemsToHit() = %+v, want %+v", got, want)
	}
}

func TestItemHitRatio(t *testing.T) {
	t.Parallel()

	recs := dense(t, [][]float64{{0, 0.3}})
	rows := map[string]int{"u": 0}
	cols := map[string]int{"a": 0, "b": 1}
	tests := []TestCase{{User: "u", Item: "b"}, {User: "u", Item: "a"}}

	if got := ItemHitRatio(recs, tests, rows, cols); !near(got, 0.5) {
		t.Errorf("ItemHitRatio() = %v, want 0.5", got)
	}
}
