// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"github.com/tomtom215/bookrec/internal/sparse"
)

// ContentRecommender scores active items by the cosine similarity between
// the user's aggregated property features and each item's features.
type ContentRecommender struct {
	bookings *BookingData
	items    *ItemData
	features *ItemFeatureData
	// normalized item vectors by catalog position; items without features
	// are absent
	vectors map[int]sparse.Row
}

// NewContentRecommender L2-normalizes the feature vector of every active
// item once.
func NewContentRecommender(bookings *BookingData, items *ItemData, features *ItemFeatureData) *ContentRecommender {
	vectors := make(map[int]sparse.Row, len(items.Active()))
	for _, iid := range items.Active() {
		pos, ok := items.Catalog().Position(iid)
		if !ok {
			continue
		}
		v, err := features.Item(iid)
		if err != nil {
			continue
		}
		vectors[pos] = v.Normalize(sparse.NormL2)
	}
	return &ContentRecommender{bookings: bookings, items: items, features: features, vectors: vectors}
}

// Recs scores every active item with features that uid has not booked and
// keeps the topItems best. A user without aggregated features returns
// featurestore.ErrUnknownObject.
func (c *ContentRecommender) Recs(uid string, topItems int) (sparse.Row, error) {
	user, err := c.features.User(uid)
	if err != nil {
		return sparse.Row{}, err
	}
	user = user.Normalize(sparse.NormL2)

	booked := c.bookings.Booked(uid)
	catalog := c.items.Catalog()
	entries := make([]sparse.Entry, 0, len(c.vectors))
	for _, iid := range c.items.Active() {
		if booked[iid] {
			continue
		}
		pos, _ := catalog.Position(iid)
		v, ok := c.vectors[pos]
		if !ok {
			continue
		}
		score, err := user.Dot(v)
		if err != nil {
			return sparse.Row{}, err
		}
		entries = append(entries, sparse.Entry{Index: pos, Value: score})
	}

	row, err := sparse.NewRow(catalog.Len(), entries)
	if err != nil {
		return sparse.Row{}, err
	}
	return row.TopK(topItems), nil
}

// HasUser reports whether uid can be scored.
func (c *ContentRecommender) HasUser(uid string) bool {
	return c.features.HasUser(uid)
}
