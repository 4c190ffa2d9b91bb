// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package cluster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidInput is returned for inputs the clusterer cannot work with.
var ErrInvalidInput = errors.New("cluster: invalid input")

// Stats summarizes one clustering run.
type Stats struct {
	InitialClusters int `json:"initial_clusters"`
	FinalClusters   int `json:"final_clusters"`

	// BadClusters maps a threshold to the number of clusters dissolved at it.
	BadClusters map[int]int `json:"bad_clusters"`

	// Reassignments counts row moves; a row can move more than once.
	Reassignments int `json:"reassignments"`

	// WidenedRows counts moves that needed more than SearchWidth centroids.
	WidenedRows int `json:"widened_rows"`

	// FallbackRows counts rows left without an acceptable cluster.
	FallbackRows int `json:"fallback_rows"`

	Duration time.Duration `json:"duration"`
}

// Result is the outcome of Cluster.
type Result struct {
	// Assignments holds the dense cluster id of every input row.
	Assignments []int

	// Distances holds the squared distance of every row to the centroid of
	// the cluster it ended up in.
	Distances []float64

	// Fallback marks rows that could not reach an acceptable cluster.
	Fallback []bool

	// Centroids is indexed by dense cluster id.
	Centroids [][]float64

	Stats Stats
}

// Clusterer runs partitioning followed by the repair pass.
type Clusterer struct {
	cfg         Config
	partitioner Partitioner
	logger      zerolog.Logger
	progress    ProgressFunc
}

// Option customizes a Clusterer.
type Option func(*Clusterer)

// WithPartitioner replaces the default K-Means partitioner.
func WithPartitioner(p Partitioner) Option {
	return func(c *Clusterer) { c.partitioner = p }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Clusterer) { c.progress = fn }
}

// New creates a clusterer.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func New(cfg Config, logger zerolog.Logger, opts ...Option) *Clusterer {
	cfg = cfg.withDefaults()
	c := &Clusterer{
		cfg:    cfg,
		logger: logger.With().Str("component", "cluster").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.partitioner == nil {
		c.partitioner = &KMeans{
			MaxIterations: cfg.MaxIterations,
			Tolerance:     cfg.Tolerance,
			Seed:          cfg.Seed,
			Workers:       cfg.Workers,
			Progress:      c.progress,
		}
	}
	return c
}

// Cluster partitions x and repairs clusters that hold too few distinct
// labels. labels[i] names the object behind row i.
func (c *Clusterer) Cluster(ctx context.Context, x [][]float64, labels []string) (*Result, error) {
	start := time.Now()
	if err := c.validate(x, labels); err != nil {
		return nil, err
	}

	c.logger.Info().
		Int("rows", len(x)).
		Int("k", c.cfg.K).
		Int("min_objects_per_cluster", c.cfg.MinObjectsPerCluster).
		Int("search_width", c.cfg.SearchWidth).
		Msg("clustering started")

	centroids, err := c.partitioner.Fit(ctx, x, c.cfg.K)
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}

	assign := make([]int, len(x))
	dists := make([]float64, len(x))
	parallelRows(len(x), c.cfg.Workers, func(i int) {
		assign[i], dists[i] = nearest(x[i], centroids)
	})

	r := &repair{
		cfg:       c.cfg,
		x:         x,
		labels:    labels,
		centroids: centroids,
		assign:    assign,
		dists:     dists,
		fallback:  make([]bool, len(x)),
		bad:       make(map[int]bool),
		stats:     Stats{InitialClusters: len(centroids), BadClusters: make(map[int]int)},
	}

	if distinct := countDistinct(labels); c.cfg.MinObjectsPerCluster > distinct {
		c.logger.Warn().
			Int("distinct_objects", distinct).
			Int("min_objects_per_cluster", c.cfg.MinObjectsPerCluster).
			Msg("fewer distinct objects than required per cluster, clusters will collapse")
	}

	for threshold := 1; threshold < c.cfg.MinObjectsPerCluster; threshold++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n := r.step(threshold); n > 0 {
			c.logger.Info().Int("threshold", threshold).Int("bad_clusters", n).Msg("dissolved undersized clusters")
		}
		if c.progress != nil {
			c.progress("repair", threshold, c.cfg.MinObjectsPerCluster-1)
		}
	}

	res := r.result()
	res.Stats.Duration = time.Since(start)

	ev := c.logger.Info()
	if res.Stats.FallbackRows > 0 {
		ev = c.logger.Warn()
	}
	ev.Int("initial_clusters", res.Stats.InitialClusters).
		Int("final_clusters", res.Stats.FinalClusters).
		Int("reassignments", res.Stats.Reassignments).
		Int("widened_rows", res.Stats.WidenedRows).
		Int("fallback_rows", res.Stats.FallbackRows).
		Dur("duration", res.Stats.Duration).
		Msg("clustering finished")

	return res, nil
}

func (c *Clusterer) validate(x [][]float64, labels []string) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if len(x) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidInput)
	}
	if len(labels) != len(x) {
		return fmt.Errorf("%w: %d labels for %d rows", ErrInvalidInput, len(labels), len(x))
	}
	dim := len(x[0])
	if dim == 0 {
		return fmt.Errorf("%w: rows have no features", ErrInvalidInput)
	}
	for i, row := range x {
		if len(row) != dim {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrInvalidInput, i, len(row), dim)
		}
	}
	if c.cfg.K > len(x) {
		return fmt.Errorf("%w: k=%d exceeds %d rows", ErrInvalidInput, c.cfg.K, len(x))
	}
	return nil
}

// repair holds the mutable state of the repair pass.
type repair struct {
	cfg       Config
	x         [][]float64
	labels    []string
	centroids [][]float64
	assign    []int
	dists     []float64
	fallback  []bool
	bad       map[int]bool
	stats     Stats
}

type move struct {
	row      int
	cand     candidate
	widened  bool
	fallback bool
}

// step dissolves the clusters holding exactly threshold distinct labels and
// returns how many were added to the bad set.
func (r *repair) step(threshold int) int {
	counts := r.distinctPerCluster()

	added := 0
	for cl, n := range counts {
		if n == threshold && !r.bad[cl] {
			r.bad[cl] = true
			added++
		}
	}
	if added == 0 {
		return 0
	}
	r.stats.BadClusters[threshold] = added

	var rows []int
	for i, cl := range r.assign {
		if r.bad[cl] {
			rows = append(rows, i)
		}
	}

	// The bad set and populated set are frozen while rows are searched.
	populated := make(map[int]bool, len(counts))
	for cl := range counts {
		populated[cl] = true
	}
	moves := make([]move, len(rows))
	parallelRows(len(rows), r.cfg.Workers, func(k int) {
		moves[k] = r.search(rows[k], populated)
	})

	for _, m := range moves {
		if m.cand.cluster != r.assign[m.row] {
			r.stats.Reassignments++
		}
		r.assign[m.row] = m.cand.cluster
		r.dists[m.row] = m.cand.dist
		r.fallback[m.row] = m.fallback
		if m.widened {
			r.stats.WidenedRows++
		}
	}
	return added
}

// search picks the closest populated cluster outside the bad set.
func (r *repair) search(row int, populated map[int]bool) move {
	ranked := rankCentroids(r.x[row], r.centroids)
	for pos, cand := range ranked {
		if populated[cand.cluster] && !r.bad[cand.cluster] {
			return move{row: row, cand: cand, widened: pos >= r.cfg.SearchWidth}
		}
	}
	for _, cand := range ranked {
		if populated[cand.cluster] {
			return move{row: row, cand: cand, fallback: true}
		}
	}
	return move{row: row, cand: candidate{cluster: r.assign[row], dist: r.dists[row]}, fallback: true}
}

func (r *repair) distinctPerCluster() map[int]int {
	seen := make(map[int]map[string]struct{})
	for i, cl := range r.assign {
		set, ok := seen[cl]
		if !ok {
			set = make(map[string]struct{})
			seen[cl] = set
		}
		set[r.labels[i]] = struct{}{}
	}
	counts := make(map[int]int, len(seen))
	for cl, set := range seen {
		counts[cl] = len(set)
	}
	return counts
}

// result renumbers clusters densely in first-seen row order.
func (r *repair) result() *Result {
	ids := make(map[int]int)
	res := &Result{
		Assignments: make([]int, len(r.assign)),
		Distances:   append([]float64(nil), r.dists...),
		Fallback:    append([]bool(nil), r.fallback...),
		Stats:       r.stats,
	}
	for i, cl := range r.assign {
		id, ok := ids[cl]
		if !ok {
			id = len(ids)
			ids[cl] = id
			res.Centroids = append(res.Centroids, append([]float64(nil), r.centroids[cl]...))
		}
		res.Assignments[i] = id
		if r.fallback[i] {
			res.Stats.FallbackRows++
		}
	}
	res.Stats.FinalClusters = len(ids)
	return res
}

func countDistinct(labels []string) int {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return len(set)
}
