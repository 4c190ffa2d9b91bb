// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package pipeline implements the offline stages that produce the serving
// artifacts:
//
//  1. Cluster: feature CSV -> constrained clusters -> descriptor file
//     (users or bookings)
//  2. BuildRecs: bookings + both descriptors -> user-cluster ×
//     booking-cluster recommendation matrix (Matrix Market)
//  3. Evaluate: held-out bookings -> hit ratio and items-to-hit
//
// Every stage reads its tables through the DuckDB layer and logs a
// summary when it finishes. The cmd/ tools are thin flag wrappers.
package pipeline
