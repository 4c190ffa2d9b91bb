// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package featurestore holds the id/position mappings and object×feature
// matrices the recommenders read at serving time.
package featurestore

import (
	"errors"
	"fmt"
)

// ErrUnknownObject is returned when an id has no position in an index.
var ErrUnknownObject = errors.New("featurestore: unknown object")

// ObjectIndex is a bijection between object ids and dense positions
// 0..n-1. Positions are assigned in first-seen order.
type ObjectIndex struct {
	pos map[string]int
	ids []string
}

// NewObjectIndex creates an index over ids in the given order. Repeated
// ids keep their first position.
func NewObjectIndex(ids ...string) *ObjectIndex {
	idx := &ObjectIndex{pos: make(map[string]int, len(ids)), ids: make([]string, 0, len(ids))}
	for _, id := range ids {
		idx.Add(id)
	}
	return idx
}

// Add returns the position of id, assigning the next free one if needed.
func (x *ObjectIndex) Add(id string) int {
	if p, ok := x.pos[id]; ok {
		return p
	}
	p := len(x.ids)
	x.pos[id] = p
	x.ids = append(x.ids, id)
	return p
}

// Position returns the position of id.
func (x *ObjectIndex) Position(id string) (int, bool) {
	p, ok := x.pos[id]
	return p, ok
}

// MustPosition is like Position but returns ErrUnknownObject.
func (x *ObjectIndex) MustPosition(id string) (int, error) {
	p, ok := x.pos[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownObject, id)
	}
	return p, nil
}

// ID returns the id stored at position p.
func (x *ObjectIndex) ID(p int) (string, bool) {
	if p < 0 || p >= len(x.ids) {
		return "", false
	}
	return x.ids[p], true
}

// Len returns the number of indexed ids.
func (x *ObjectIndex) Len() int { return len(x.ids) }

// IDs returns the ids in position order.
func (x *ObjectIndex) IDs() []string {
	out := make([]string, len(x.ids))
	copy(out, x.ids)
	return out
}

// Contains reports whether id is indexed.
func (x *ObjectIndex) Contains(id string) bool {
	_, ok := x.pos[id]
	return ok
}
