// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package sparse

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrDimensionMismatch is returned when two operands do not agree on shape.
var ErrDimensionMismatch = errors.New("sparse: dimension mismatch")

// ErrIndexOutOfRange is returned when an entry addresses a position outside
// the declared shape.
var ErrIndexOutOfRange = errors.New("sparse: index out of range")

// Entry is a single stored value of a sparse row.
type Entry struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Row is a 1×Dim sparse vector. Entries are sorted by Index, unique, and
// never zero.
type Row struct {
	dim     int
	entries []Entry
}

// NewRow builds a row of the given dimension. Duplicate indices are summed,
// zero values are dropped and entries are sorted by index.
func NewRow(dim int, entries []Entry) (Row, error) {
	if dim < 0 {
		return Row{}, fmt.Errorf("%w: negative dimension %d", ErrIndexOutOfRange, dim)
	}
	if len(entries) == 0 {
		return Row{dim: dim}, nil
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	out := sorted[:0]
	for _, e := range sorted {
		if e.Index < 0 || e.Index >= dim {
			return Row{}, fmt.Errorf("%w: index %d not in [0,%d)", ErrIndexOutOfRange, e.Index, dim)
		}
		if n := len(out); n > 0 && out[n-1].Index == e.Index {
			out[n-1].Value += e.Value
			continue
		}
		out = append(out, e)
	}
	return Row{dim: dim, entries: dropZeros(out)}, nil
}

// MustRow is like NewRow but panics on invalid input. Intended for tests and
// literals.
func MustRow(dim int, entries ...Entry) Row {
	r, err := NewRow(dim, entries)
	if err != nil {
		panic(err)
	}
	return r
}

// EmptyRow returns a row with no stored entries.
func EmptyRow(dim int) Row {
	return Row{dim: dim}
}

// RowFromDense converts a dense slice into a sparse row.
func RowFromDense(values []float64) Row {
	entries := make([]Entry, 0, len(values))
	for i, v := range values {
		if v != 0 {
			entries = append(entries, Entry{Index: i, Value: v})
		}
	}
	return Row{dim: len(values), entries: entries}
}

func dropZeros(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Value != 0 {
			out = append(out, e)
		}
	}
	return out
}

// Dim returns the logical length of the row.
func (r Row) Dim() int { return r.dim }

// NNZ returns the number of stored entries.
func (r Row) NNZ() int { return len(r.entries) }

// IsEmpty reports whether the row stores no entries.
func (r Row) IsEmpty() bool { return len(r.entries) == 0 }

// Entries returns a copy of the stored entries in index order.
func (r Row) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Indices returns the stored indices in ascending order.
func (r Row) Indices() []int {
	out := make([]int, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Index
	}
	return out
}

// Values returns the stored values in index order.
func (r Row) Values() []float64 {
	out := make([]float64, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Value
	}
	return out
}

// At returns the value at index i, or 0 when nothing is stored there.
func (r Row) At(i int) float64 {
	k := sort.Search(len(r.entries), func(k int) bool { return r.entries[k].Index >= i })
	if k < len(r.entries) && r.entries[k].Index == i {
		return r.entries[k].Value
	}
	return 0
}

// Dense expands the row into a slice of length Dim.
func (r Row) Dense() []float64 {
	out := make([]float64, r.dim)
	for _, e := range r.entries {
		out[e.Index] = e.Value
	}
	return out
}

// Sum returns the sum of the stored values.
func (r Row) Sum() float64 {
	if len(r.entries) == 0 {
		return 0
	}
	return floats.Sum(r.Values())
}

// Norm returns the L1 or L2 norm of the row. NormNone yields 1 so that
// callers can divide unconditionally.
func (r Row) Norm(n Norm) float64 {
	switch n {
	case NormL1:
		if len(r.entries) == 0 {
			return 0
		}
		return floats.Norm(r.Values(), 1)
	case NormL2:
		if len(r.entries) == 0 {
			return 0
		}
		return floats.Norm(r.Values(), 2)
	default:
		return 1
	}
}

// Normalize scales the row to unit norm. An all-zero row is returned
// unchanged.
func (r Row) Normalize(n Norm) Row {
	norm := r.Norm(n)
	if norm == 0 || n == NormNone {
		return r
	}
	return r.Scale(1 / norm)
}

// Scale multiplies every stored value by f.
func (r Row) Scale(f float64) Row {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = Entry{Index: e.Index, Value: e.Value * f}
	}
	return Row{dim: r.dim, entries: dropZeros(out)}
}

// Binarize replaces every stored value with 1.
func (r Row) Binarize() Row {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = Entry{Index: e.Index, Value: 1}
	}
	return Row{dim: r.dim, entries: out}
}

// Multiply returns the element-wise product of two rows.
func (r Row) Multiply(other Row) (Row, error) {
	if r.dim != other.dim {
		return Row{}, fmt.Errorf("%w: multiply 1x%d by 1x%d", ErrDimensionMismatch, r.dim, other.dim)
	}
	out := make([]Entry, 0, min(len(r.entries), len(other.entries)))
	i, j := 0, 0
	for i < len(r.entries) && j < len(other.entries) {
		a, b := r.entries[i], other.entries[j]
		switch {
		case a.Index < b.Index:
			i++
		case a.Index > b.Index:
			j++
		default:
			if v := a.Value * b.Value; v != 0 {
				out = append(out, Entry{Index: a.Index, Value: v})
			}
			i++
			j++
		}
	}
	return Row{dim: r.dim, entries: out}, nil
}

// Sub returns r - other.
func (r Row) Sub(other Row) (Row, error) {
	if r.dim != other.dim {
		return Row{}, fmt.Errorf("%w: subtract 1x%d and 1x%d", ErrDimensionMismatch, r.dim, other.dim)
	}
	out := make([]Entry, 0, len(r.entries)+len(other.entries))
	i, j := 0, 0
	for i < len(r.entries) || j < len(other.entries) {
		switch {
		case j >= len(other.entries) || (i < len(r.entries) && r.entries[i].Index < other.entries[j].Index):
			out = append(out, r.entries[i])
			i++
		case i >= len(r.entries) || other.entries[j].Index < r.entries[i].Index:
			out = append(out, Entry{Index: other.entries[j].Index, Value: -other.entries[j].Value})
			j++
		default:
			out = append(out, Entry{Index: r.entries[i].Index, Value: r.entries[i].Value - other.entries[j].Value})
			i++
			j++
		}
	}
	return Row{dim: r.dim, entries: dropZeros(out)}, nil
}

// Dot returns the inner product of two rows.
func (r Row) Dot(other Row) (float64, error) {
	p, err := r.Multiply(other)
	if err != nil {
		return 0, err
	}
	return p.Sum(), nil
}

// Filter keeps the entries for which keep returns true.
func (r Row) Filter(keep func(Entry) bool) Row {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return Row{dim: r.dim, entries: out}
}

// Ranked returns the stored entries ordered by value descending. Ties are
// broken by ascending index.
func (r Row) Ranked() []Entry {
	out := r.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// TopK keeps the k largest values. k <= 0 or k >= NNZ returns the row
// unchanged.
func (r Row) TopK(k int) Row {
	return r.topK(k, func(v float64) float64 { return v })
}

// TopKAbs keeps the k entries with the largest magnitude.
func (r Row) TopKAbs(k int) Row {
	return r.topK(k, math.Abs)
}

func (r Row) topK(k int, key func(float64) float64) Row {
	if k <= 0 || k >= len(r.entries) {
		return r
	}
	kept := r.Entries()
	sort.SliceStable(kept, func(i, j int) bool {
		ki, kj := key(kept[i].Value), key(kept[j].Value)
		if ki != kj {
			return ki > kj
		}
		return kept[i].Index < kept[j].Index
	})
	kept = kept[:k]
	sort.Slice(kept, func(i, j int) bool { return kept[i].Index < kept[j].Index })
	return Row{dim: r.dim, entries: kept}
}

// Min returns the smallest stored value and false when the row is empty.
func (r Row) Min() (float64, bool) {
	if len(r.entries) == 0 {
		return 0, false
	}
	return floats.Min(r.Values()), true
}
