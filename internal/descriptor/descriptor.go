// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package descriptor reads and writes cluster descriptor files.
//
// A descriptor file is line oriented. Any preamble (summary statistics) may
// precede the first cluster block:
//
//	Cluster #<id> [<countA> | <countB>]
//	Explanation:
//	-> <feature>: <score>
//	Bookings: <id>, <id>
//	Items: <id>, <id>
//	Users: <id>, <id>
//	---
//
// Lines are dispatched on their prefix. Missing Explanation, Bookings,
// Items or Users lines mean "empty". A file without any Cluster line is
// rejected with ErrNoClusters. Clusters are numbered by order of
// appearance, which matches the dense ids written by the clustering tool.
package descriptor

import (
	"errors"
	"sort"
)

var (
	// ErrNoClusters is returned when a file contains no Cluster line.
	ErrNoClusters = errors.New("descriptor: no cluster blocks found")

	// ErrMalformedLine is returned for a recognized line that cannot be
	// parsed.
	ErrMalformedLine = errors.New("descriptor: malformed line")
)

// Line prefixes of the descriptor grammar.
const (
	prefixCluster     = "Cluster"
	prefixExplanation = "Explanation:"
	prefixFeature     = "->"
	prefixBookings    = "Bookings:"
	prefixItems       = "Items:"
	prefixUsers       = "Users:"
	blockEnd          = "---"
)

// Feature is one explanatory feature of a cluster.
type Feature struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Cluster describes one cluster block.
type Cluster struct {
	// ID is the zero-based ordinal of the block in its file.
	ID int `json:"id"`

	// Label is the id written after '#' in the header.
	Label string `json:"label"`

	// Counts holds the bracketed header numbers, e.g. bookings and items.
	Counts []int `json:"counts,omitempty"`

	Explanation []Feature `json:"explanation,omitempty"`
	Bookings    []string  `json:"bookings,omitempty"`
	Items       []string  `json:"items,omitempty"`
	Users       []string  `json:"users,omitempty"`
}

// FeatureMap returns the explanation as a name→score map.
func (c *Cluster) FeatureMap() map[string]float64 {
	out := make(map[string]float64, len(c.Explanation))
	for _, f := range c.Explanation {
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f.Score
		}
	}
	return out
}

// File is a parsed descriptor file.
type File struct {
	Preamble []string  `json:"preamble,omitempty"`
	Clusters []Cluster `json:"clusters"`
}

// Len returns the number of clusters.
func (f *File) Len() int { return len(f.Clusters) }

// Cluster returns the cluster with ordinal id.
func (f *File) Cluster(id int) (*Cluster, bool) {
	if id < 0 || id >= len(f.Clusters) {
		return nil, false
	}
	return &f.Clusters[id], true
}

// UserClusters maps every user id to its cluster.
func (f *File) UserClusters() map[string]int {
	out := make(map[string]int)
	for i := range f.Clusters {
		for _, uid := range f.Clusters[i].Users {
			out[uid] = f.Clusters[i].ID
		}
	}
	return out
}

// BookingClusters maps every booking id to its cluster.
func (f *File) BookingClusters() map[string]int {
	out := make(map[string]int)
	for i := range f.Clusters {
		for _, bid := range f.Clusters[i].Bookings {
			out[bid] = f.Clusters[i].ID
		}
	}
	return out
}

// ClusterSizes returns, per cluster, the number of members in the given
// mapping. Clusters without members get 0.
func (f *File) ClusterSizes(members map[string]int) []int {
	out := make([]int, len(f.Clusters))
	for _, cl := range members {
		if cl >= 0 && cl < len(out) {
			out[cl]++
		}
	}
	return out
}

// Explain returns the features whose mean exceeds threshold, in the order
// of names.
func Explain(names []string, means []float64, threshold float64) []Feature {
	var out []Feature
	for i, name := range names {
		if i < len(means) && means[i] > threshold {
			out = append(out, Feature{Name: name, Score: means[i]})
		}
	}
	return out
}

// SortedFeatures returns the features ordered by score descending.
func SortedFeatures(fs []Feature) []Feature {
	out := append([]Feature(nil), fs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
