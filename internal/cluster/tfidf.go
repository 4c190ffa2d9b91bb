// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// TFIDF reweights count-like feature rows with smoothed inverse document
// frequency, idf = ln((1+n)/(1+df)) + 1, and L2-normalizes every row. The
// input is not modified.
func TFIDF(x [][]float64) [][]float64 {
	if len(x) == 0 {
		return nil
	}
	dim := len(x[0])
	df := make([]float64, dim)
	for _, row := range x {
		for j, v := range row {
			if v != 0 {
				df[j]++
			}
		}
	}
	n := float64(len(x))
	idf := make([]float64, dim)
	for j := range idf {
		idf[j] = math.Log((1+n)/(1+df[j])) + 1
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		w := make([]float64, dim)
		floats.MulTo(w, row, idf)
		if norm := floats.Norm(w, 2); norm > 0 {
			floats.Scale(1/norm, w)
		}
		out[i] = w
	}
	return out
}
