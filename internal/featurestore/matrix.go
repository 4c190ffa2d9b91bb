// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package featurestore

import (
	"fmt"

	"github.com/tomtom215/bookrec/internal/sparse"
)

// FeatureMatrix is an object×feature sparse matrix addressed by id.
type FeatureMatrix struct {
	m        *sparse.Matrix
	objects  *ObjectIndex
	features *ObjectIndex
}

// NewFeatureMatrix wraps m. The index sizes must match its shape.
func NewFeatureMatrix(m *sparse.Matrix, objects, features *ObjectIndex) (*FeatureMatrix, error) {
	rows, cols := m.Dims()
	if rows != objects.Len() || cols != features.Len() {
		return nil, fmt.Errorf("%w: matrix is %dx%d, indices are %dx%d",
			sparse.ErrDimensionMismatch, rows, cols, objects.Len(), features.Len())
	}
	return &FeatureMatrix{m: m, objects: objects, features: features}, nil
}

// FromDense builds a feature matrix from per-object dense rows.
func FromDense(ids, features []string, values [][]float64) (*FeatureMatrix, error) {
	if len(ids) != len(values) {
		return nil, fmt.Errorf("%w: %d ids for %d rows", sparse.ErrDimensionMismatch, len(ids), len(values))
	}
	objects := NewObjectIndex(ids...)
	if objects.Len() != len(ids) {
		return nil, fmt.Errorf("featurestore: duplicate object ids (%d unique of %d)", objects.Len(), len(ids))
	}
	rows := make([]sparse.Row, len(values))
	for i, v := range values {
		if len(v) != len(features) {
			return nil, fmt.Errorf("%w: object %q has %d values, want %d",
				sparse.ErrDimensionMismatch, ids[i], len(v), len(features))
		}
		rows[i] = sparse.RowFromDense(v)
	}
	m, err := sparse.FromRows(len(features), rows)
	if err != nil {
		return nil, err
	}
	return NewFeatureMatrix(m, objects, NewObjectIndex(features...))
}

// Matrix returns the underlying matrix.
func (f *FeatureMatrix) Matrix() *sparse.Matrix { return f.m }

// Objects returns the row index.
func (f *FeatureMatrix) Objects() *ObjectIndex { return f.objects }

// Features returns the column index.
func (f *FeatureMatrix) Features() *ObjectIndex { return f.features }

// NObjects returns the number of rows.
func (f *FeatureMatrix) NObjects() int { return f.objects.Len() }

// NFeatures returns the number of columns.
func (f *FeatureMatrix) NFeatures() int { return f.features.Len() }

// Has reports whether id has a row.
func (f *FeatureMatrix) Has(id string) bool { return f.objects.Contains(id) }

// Info summarizes the matrix.
func (f *FeatureMatrix) Info() sparse.Info { return f.m.Info() }

// Vector returns the feature row of id.
func (f *FeatureMatrix) Vector(id string) (sparse.Row, error) {
	p, err := f.objects.MustPosition(id)
	if err != nil {
		return sparse.Row{}, err
	}
	return f.m.Row(p), nil
}

// Rows returns the sub-matrix for ids, in the order given.
func (f *FeatureMatrix) Rows(ids []string) (*sparse.Matrix, error) {
	rows := make([]sparse.Row, len(ids))
	for i, id := range ids {
		r, err := f.Vector(id)
		if err != nil {
			return nil, err
		}
		rows[i] = r
	}
	return sparse.FromRows(f.NFeatures(), rows)
}

// Above returns the named features of id whose value exceeds threshold.
func (f *FeatureMatrix) Above(id string, threshold float64) (map[string]float64, error) {
	r, err := f.Vector(id)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, e := range r.Entries() {
		if e.Value > threshold {
			name, _ := f.features.ID(e.Index)
			out[name] = e.Value
		}
	}
	return out, nil
}
