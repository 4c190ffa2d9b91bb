// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package ibcf

import (
	"github.com/tomtom215/bookrec/internal/sparse"
)

// TestCase is one held-out booking: the user and the item they booked.
type TestCase struct {
	User string `json:"user"`
	Item string `json:"item"`
}

// HitRatio returns the share of test cases whose item belongs to any
// cluster recommended to the user's cluster. Users without a cluster count
// as misses.
func HitRatio(recs *sparse.Matrix, tests []TestCase, userCluster map[string]int, clusterItems []map[string]bool) float64 {
	if len(tests) == 0 {
		return 0
	}
	hits := 0
	for _, tc := range tests {
		row, ok := userCluster[tc.User]
		if !ok {
			continue
		}
		for _, e := range recs.Row(row).Ranked() {
			if e.Index < len(clusterItems) && clusterItems[e.Index][tc.Item] {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(tests))
}

// ItemsToHit is the evaluation record of one test case.
type ItemsToHit struct {
	TestCase
	// Items is the number of distinct items a user walks through, in
	// recommended cluster order, until reaching the booked item. It is one
	// more than the number of items seen before the hit.
	Items int `json:"items"`
	// Clusters lists the recommended clusters visited, up to the hit.
	Clusters []int `json:"clusters"`
	Hit      bool  `json:"hit"`
}

// CountItemsToHit walks each test user's ranked cluster recommendations
// and records how many items precede the booked one. Users without a
// cluster are omitted.
func CountItemsToHit(recs *sparse.Matrix, tests []TestCase, userCluster map[string]int, clusterItems []map[string]bool) []ItemsToHit {
	out := make([]ItemsToHit, 0, len(tests))
	for _, tc := range tests {
		row, ok := userCluster[tc.User]
		if !ok {
			continue
		}
		rec := ItemsToHit{TestCase: tc}
		seen := make(map[string]bool)
		for _, e := range recs.Row(row).Ranked() {
			rec.Clusters = append(rec.Clusters, e.Index)
			if e.Index >= len(clusterItems) {
				continue
			}
			if clusterItems[e.Index][tc.Item] {
				rec.Hit = true
				break
			}
			for item := range clusterItems[e.Index] {
				seen[item] = true
			}
		}
		rec.Items = len(seen) + 1
		out = append(out, rec)
	}
	return out
}

// ItemHitRatio is HitRatio for item-level recommendations: a hit is the
// booked item appearing anywhere in the user's recommendation row.
func ItemHitRatio(recs *sparse.Matrix, tests []TestCase, userRow, itemCol map[string]int) float64 {
	if len(tests) == 0 {
		return 0
	}
	hits := 0
	for _, tc := range tests {
		row, ok := userRow[tc.User]
		if !ok {
			continue
		}
		col, ok := itemCol[tc.Item]
		if !ok {
			continue
		}
		if recs.Row(row).At(col) != 0 {
			hits++
		}
	}
	return float64(hits) / float64(len(tests))
}
