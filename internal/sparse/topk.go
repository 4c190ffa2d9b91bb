// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package sparse

// Rank selects how top-k truncation compares entries.
type Rank int

const (
	// ByValue keeps the largest signed values.
	ByValue Rank = iota
	// ByMagnitude keeps the largest absolute values.
	ByMagnitude
)

func (r Row) truncate(k int, rank Rank) Row {
	if rank == ByMagnitude {
		return r.TopKAbs(k)
	}
	return r.TopK(k)
}

// TopKPerRow keeps at most k entries in every row. k <= 0 is a no-op.
func (m *Matrix) TopKPerRow(k int, rank Rank) *Matrix {
	if k <= 0 {
		return m
	}
	return m.mapRows(func(_ int, r Row) Row { return r.truncate(k, rank) })
}

// TopKPerColumn keeps at most k entries in every column. k <= 0 is a no-op.
func (m *Matrix) TopKPerColumn(k int, rank Rank) *Matrix {
	if k <= 0 {
		return m
	}
	return m.Transpose().TopKPerRow(k, rank).Transpose()
}
