// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package ibcf

import (
	"fmt"

	"github.com/tomtom215/bookrec/internal/sparse"
)

// Recommend scores objects for one history row: score = history·sim. When
// mask is non-nil every object stored in it (any nonzero weight) is
// removed by subtracting score⊙binarize(mask). topK > 0 keeps the topK
// largest scores.
//
// Excluded objects are absent from the result. A zero score never means
// "recommended with score zero".
func Recommend(history sparse.Row, sim *sparse.Matrix, mask *sparse.Row, topK int) (sparse.Row, error) {
	score, err := sim.VecMul(history)
	if err != nil {
		return sparse.Row{}, fmt.Errorf("score history: %w", err)
	}
	if mask != nil {
		seen, err := score.Multiply(mask.Binarize())
		if err != nil {
			return sparse.Row{}, fmt.Errorf("apply exclusion mask: %w", err)
		}
		if score, err = score.Sub(seen); err != nil {
			return sparse.Row{}, fmt.Errorf("apply exclusion mask: %w", err)
		}
	}
	if topK > 0 {
		score = score.TopK(topK)
	}
	return score, nil
}

// RecommendAll applies Recommend to every row of histories. mask, when
// non-nil, must have the same shape as the result and supplies the
// exclusion row of each actor.
func RecommendAll(histories, sim *sparse.Matrix, mask *sparse.Matrix, topK int) (*sparse.Matrix, error) {
	rows, _ := histories.Dims()
	_, cols := sim.Dims()
	if mask != nil {
		if mr, mc := mask.Dims(); mr != rows || mc != cols {
			return nil, fmt.Errorf("%w: mask %dx%d for %dx%d recommendations",
				sparse.ErrDimensionMismatch, mr, mc, rows, cols)
		}
	}

	out := make([]sparse.Row, rows)
	for i := 0; i < rows; i++ {
		var m *sparse.Row
		if mask != nil {
			r := mask.Row(i)
			m = &r
		}
		rec, err := Recommend(histories.Row(i), sim, m, topK)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = rec
	}
	return sparse.FromRows(cols, out)
}
