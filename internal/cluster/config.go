// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package cluster

import (
	"fmt"
	"runtime"
)

// Config controls partitioning and repair.
type Config struct {
	// K is the initial number of clusters.
	K int

	// MinObjectsPerCluster is the minimum number of distinct labels a
	// surviving cluster must hold. Values <= 1 disable repair.
	MinObjectsPerCluster int

	// SearchWidth is how many nearest centroids are inspected before the
	// search widens to all of them.
	SearchWidth int

	// MaxIterations bounds Lloyd iterations.
	MaxIterations int

	// Tolerance stops Lloyd iterations once no centroid moves further
	// (squared distance) than this.
	Tolerance float64

	// Seed makes k-means++ seeding reproducible.
	Seed int64

	// Workers is the number of goroutines used for row-parallel searches.
	Workers int
}

// DefaultConfig returns the settings used for user clustering.
func DefaultConfig() Config {
	return Config{
		K:                    1200,
		MinObjectsPerCluster: 5,
		SearchWidth:          20,
		MaxIterations:        25,
		Tolerance:            1e-4,
		Seed:                 42,
		Workers:              runtime.NumCPU(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidInput, c.K)
	}
	if c.SearchWidth < 1 {
		return fmt.Errorf("%w: search width must be positive, got %d", ErrInvalidInput, c.SearchWidth)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidInput, c.MaxIterations)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must not be negative, got %g", ErrInvalidInput, c.Tolerance)
	}
	return nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SearchWidth == 0 {
		c.SearchWidth = d.SearchWidth
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}
