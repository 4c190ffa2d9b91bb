// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"fmt"
	"sort"

	"github.com/tomtom215/bookrec/internal/descriptor"
	"github.com/tomtom215/bookrec/internal/featurestore"
	"github.com/tomtom215/bookrec/internal/sparse"
)

func clusterFeatures(f *descriptor.File) []map[string]float64 {
	out := make([]map[string]float64, f.Len())
	for i := range f.Clusters {
		out[i] = f.Clusters[i].FeatureMap()
	}
	return out
}

func featuresAt(features []map[string]float64, id int) map[string]float64 {
	if id < 0 || id >= len(features) || features[id] == nil {
		return map[string]float64{}
	}
	return features[id]
}

// aboveOrEmpty returns the features of id above threshold, or an empty map
// when id has no row.
func aboveOrEmpty(m *featurestore.FeatureMatrix, id string, threshold float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	out, err := m.Above(id, threshold)
	if err != nil {
		return map[string]float64{}
	}
	return out
}

// UserData answers questions about users: their cluster, their features
// and their cluster's explanation.
type UserData struct {
	clusters        map[string]int
	clusterFeatures []map[string]float64
	features        *featurestore.FeatureMatrix
	threshold       float64
}

// NewUserData builds user data from the user cluster descriptor and the
// per-user features (already divided by booking count). features may be
// nil.
func NewUserData(userClusters *descriptor.File, features *featurestore.FeatureMatrix, threshold float64) *UserData {
	return &UserData{
		clusters:        userClusters.UserClusters(),
		clusterFeatures: clusterFeatures(userClusters),
		features:        features,
		threshold:       threshold,
	}
}

// Cluster returns the user's cluster.
func (u *UserData) Cluster(uid string) (int, bool) {
	ug, ok := u.clusters[uid]
	return ug, ok
}

// Features returns the user's features above the threshold.
func (u *UserData) Features(uid string) map[string]float64 {
	return aboveOrEmpty(u.features, uid, u.threshold)
}

// ClusterFeatures returns the explanation of user cluster ug.
func (u *UserData) ClusterFeatures(ug int) map[string]float64 {
	return featuresAt(u.clusterFeatures, ug)
}

// NUsers returns the number of clustered users.
func (u *UserData) NUsers() int { return len(u.clusters) }

// NClusters returns the number of user clusters.
func (u *UserData) NClusters() int { return len(u.clusterFeatures) }

// BookingData answers questions about past bookings.
type BookingData struct {
	clusterFeatures []map[string]float64
	booked          map[string]map[string]bool
	observations    map[string]int
	summaries       *featurestore.FeatureMatrix
	threshold       float64
}

// NewBookingData builds booking data. userItems maps users to the items
// they booked; observations counts distinct bookings per item; summaries
// holds per-user mean booking features and may be nil.
func NewBookingData(bookingClusters *descriptor.File, userItems map[string][]string, observations map[string]int,
	summaries *featurestore.FeatureMatrix, threshold float64) *BookingData {
	booked := make(map[string]map[string]bool, len(userItems))
	for uid, items := range userItems {
		set := make(map[string]bool, len(items))
		for _, iid := range items {
			set[iid] = true
		}
		booked[uid] = set
	}
	return &BookingData{
		clusterFeatures: clusterFeatures(bookingClusters),
		booked:          booked,
		observations:    observations,
		summaries:       summaries,
		threshold:       threshold,
	}
}

// Booked returns the set of items uid has booked. The set must not be
// modified.
func (b *BookingData) Booked(uid string) map[string]bool {
	return b.booked[uid]
}

// HasBookings reports whether uid has any booking.
func (b *BookingData) HasBookings(uid string) bool {
	return len(b.booked[uid]) > 0
}

// Observations returns the number of distinct bookings of item iid.
func (b *BookingData) Observations(iid string) int {
	return b.observations[iid]
}

// ClusterFeatures returns the explanation of booking cluster bg.
func (b *BookingData) ClusterFeatures(bg int) map[string]float64 {
	return featuresAt(b.clusterFeatures, bg)
}

// Summary returns the mean features of uid's bookings above the threshold.
func (b *BookingData) Summary(uid string) map[string]float64 {
	return aboveOrEmpty(b.summaries, uid, b.threshold)
}

// ItemData holds the item catalog and the membership of items in booking
// clusters.
type ItemData struct {
	catalog    *featurestore.ObjectIndex
	active     []string
	membership *sparse.Matrix
}

// NewItemData builds the catalog from the booking cluster descriptor and
// the active items. Catalog positions are assigned first to clustered items
// in order of appearance, then to unclustered active items in sorted
// order.
func NewItemData(bookingClusters *descriptor.File, active []string) (*ItemData, error) {
	catalog := featurestore.NewObjectIndex()
	var triples []sparse.Triple
	for i := range bookingClusters.Clusters {
		cl := &bookingClusters.Clusters[i]
		seen := make(map[int]bool, len(cl.Items))
		for _, iid := range cl.Items {
			col := catalog.Add(iid)
			if seen[col] {
				continue
			}
			seen[col] = true
			triples = append(triples, sparse.Triple{Row: cl.ID, Col: col, Value: 1})
		}
	}

	sortedActive := append([]string(nil), active...)
	sort.Strings(sortedActive)
	for _, iid := range sortedActive {
		catalog.Add(iid)
	}

	membership, err := sparse.FromTriples(bookingClusters.Len(), catalog.Len(), triples)
	if err != nil {
		return nil, fmt.Errorf("build cluster membership: %w", err)
	}
	return &ItemData{catalog: catalog, active: sortedActive, membership: membership}, nil
}

// Catalog returns the item index.
func (d *ItemData) Catalog() *featurestore.ObjectIndex { return d.catalog }

// Active returns the sorted active item ids. The slice must not be
// modified.
func (d *ItemData) Active() []string { return d.active }

// NItems returns the catalog size.
func (d *ItemData) NItems() int { return d.catalog.Len() }

// NClusters returns the number of booking clusters.
func (d *ItemData) NClusters() int {
	rows, _ := d.membership.Dims()
	return rows
}

// Row converts item scores into a catalog row. Items outside the catalog
// are skipped.
func (d *ItemData) Row(scores map[string]float64) sparse.Row {
	entries := make([]sparse.Entry, 0, len(scores))
	for iid, score := range scores {
		if p, ok := d.catalog.Position(iid); ok {
			entries = append(entries, sparse.Entry{Index: p, Value: score})
		}
	}
	// Positions come from the catalog, so they are always in range.
	row, _ := sparse.NewRow(d.catalog.Len(), entries)
	return row
}

// Available returns, per booking cluster, the number of its items present
// in candidates. Clusters with fewer than minItems are dropped.
func (d *ItemData) Available(candidates sparse.Row, minItems int) (sparse.Row, error) {
	counts, err := d.membership.MulVec(candidates.Binarize())
	if err != nil {
		return sparse.Row{}, err
	}
	for i, c := range counts {
		if c < float64(minItems) {
			counts[i] = 0
		}
	}
	return sparse.RowFromDense(counts), nil
}

// ItemRecs renders the top entries of a catalog row, best first. top <= 0
// keeps every entry.
func (d *ItemData) ItemRecs(row sparse.Row, top int) []ItemRec {
	ranked := row.TopK(top).Ranked()
	out := make([]ItemRec, 0, len(ranked))
	for _, e := range ranked {
		iid, _ := d.catalog.ID(e.Index)
		out = append(out, ItemRec{Propcode: iid, Score: e.Value})
	}
	return out
}

// ClusterRecs renders a row of booking cluster scores, best first. Each
// cluster lists its topItems best items by candidate score.
func (d *ItemData) ClusterRecs(clusters, candidates sparse.Row, topItems int) ([]ClusterRec, error) {
	if candidates.Dim() != d.catalog.Len() {
		return nil, fmt.Errorf("%w: candidates have %d items, catalog %d",
			sparse.ErrDimensionMismatch, candidates.Dim(), d.catalog.Len())
	}

	ranked := clusters.Ranked()
	out := make([]ClusterRec, 0, len(ranked))
	for _, e := range ranked {
		if e.Index >= d.NClusters() {
			continue
		}
		items, err := d.membership.Row(e.Index).Multiply(candidates)
		if err != nil {
			return nil, err
		}
		out = append(out, ClusterRec{
			ClusterID:  e.Index,
			Score:      e.Value,
			Properties: d.ItemRecs(items, topItems),
		})
	}
	return out, nil
}

// ItemFeatureData holds item and user vectors over the same property
// feature space.
type ItemFeatureData struct {
	items *featurestore.FeatureMatrix
	users *featurestore.FeatureMatrix
}

// NewItemFeatureData pairs item features with user aggregated features.
// Both must share the feature columns.
func NewItemFeatureData(items, users *featurestore.FeatureMatrix) (*ItemFeatureData, error) {
	if items.NFeatures() != users.NFeatures() {
		return nil, fmt.Errorf("%w: %d item features, %d user features",
			sparse.ErrDimensionMismatch, items.NFeatures(), users.NFeatures())
	}
	return &ItemFeatureData{items: items, users: users}, nil
}

// HasUser reports whether uid has aggregated features.
func (f *ItemFeatureData) HasUser(uid string) bool { return f.users.Has(uid) }

// User returns the aggregated feature vector of uid.
func (f *ItemFeatureData) User(uid string) (sparse.Row, error) { return f.users.Vector(uid) }

// Item returns the feature vector of iid.
func (f *ItemFeatureData) Item(iid string) (sparse.Row, error) { return f.items.Vector(iid) }

// HasItem reports whether iid has features.
func (f *ItemFeatureData) HasItem(iid string) bool { return f.items.Has(iid) }
