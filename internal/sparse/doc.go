// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package sparse provides the compressed sparse row matrix and sparse row
// vector types used by every stage of the recommendation pipeline.
//
// # Types
//
//   - Row: a 1×N vector stored as sorted {Index, Value} entries. Explicit
//     zeros are never stored; a missing entry means "no score".
//   - Matrix: an immutable rows×cols CSR matrix. All operations return a new
//     matrix and leave the receiver untouched, so matrices can be shared
//     between goroutines without locking.
//
// # Building
//
//	b := sparse.NewBuilder(3, 4)
//	b.Add(0, 1, 2.0)
//	b.Add(0, 1, 1.0) // duplicates are summed
//	m := b.Build()
//
// # Ordering
//
// Top-k selection orders entries by value (or magnitude) descending and
// breaks ties by ascending index, so results are deterministic for a given
// input.
//
// # Exchange format
//
// ReadMatrixMarket and WriteMatrixMarket handle the coordinate variant of
// the Matrix Market text format, which is how recommendation matrices are
// persisted between the offline builder and the server.
package sparse
