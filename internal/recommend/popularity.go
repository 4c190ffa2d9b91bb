// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"math"

	"github.com/tomtom215/bookrec/internal/sparse"
)

// epsilonDivisor scales the smallest observed score down to the score of
// never-booked active items.
const epsilonDivisor = 1e5

// PopularityRecommender scores active items by their number of distinct
// bookings.
//
// Active items never booked get an epsilon score below every real score,
// so they are kept and ranked last.
type PopularityRecommender struct {
	bookings *BookingData
	items    *ItemData
	epsilon  float64
}

// NewPopularityRecommender computes the epsilon from the smallest
// observation count of any item.
func NewPopularityRecommender(bookings *BookingData, items *ItemData) *PopularityRecommender {
	minReal := math.Inf(1)
	for _, n := range bookings.observations {
		if n > 0 && float64(n) < minReal {
			minReal = float64(n)
		}
	}
	epsilon := 1 / epsilonDivisor
	if !math.IsInf(minReal, 1) {
		epsilon = minReal / epsilonDivisor
	}
	return &PopularityRecommender{bookings: bookings, items: items, epsilon: epsilon}
}

// Epsilon returns the score of never-booked active items.
func (p *PopularityRecommender) Epsilon() float64 { return p.epsilon }

// Recs scores every active item uid has not booked and keeps the topItems
// best. topItems <= 0 keeps all of them.
func (p *PopularityRecommender) Recs(uid string, topItems int) sparse.Row {
	booked := p.bookings.Booked(uid)
	catalog := p.items.Catalog()

	entries := make([]sparse.Entry, 0, len(p.items.Active()))
	for _, iid := range p.items.Active() {
		if booked[iid] {
			continue
		}
		pos, ok := catalog.Position(iid)
		if !ok {
			continue
		}
		score := float64(p.bookings.Observations(iid))
		if score <= 0 {
			score = p.epsilon
		}
		entries = append(entries, sparse.Entry{Index: pos, Value: score})
	}

	row, _ := sparse.NewRow(catalog.Len(), entries)
	return row.TopK(topItems)
}
