// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package sparse

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNewRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dim     int
		entries []Entry
		want    []Entry
		wantErr error
	}{
		{
			name: "sorts and sums duplicates",
			dim:  5,
			entries: []Entry{
				{Index: 3, Value: 1},
				{Index: 1, Value: 2},
				{Index: 3, Value: 0.5},
			},
			want: []Entry{{Index: 1, Value: 2}, {Index: 3, Value: 1.5}},
		},
		{
			name:    "drops zeros after summing",
			dim:     3,
			entries: []Entry{{Index: 0, Value: 1}, {Index: 0, Value: -1}, {Index: 2, Value: 0}},
			want:    []Entry{},
		},
		{
			name:    "rejects out of range",
			dim:     2,
			entries: []Entry{{Index: 2, Value: 1}},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name:    "rejects negative index",
			dim:     2,
			entries: []Entry{{Index: -1, Value: 1}},
			wantErr: ErrIndexOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, err := NewRow(tt.dim, tt.entries)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewRow() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRow() unexpected error: %v", err)
			}
			if got := r.Entries(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Entries() = %v, want %v", got, tt.want)
			}
			if r.Dim() != tt.dim {
				t.Errorf("Dim() = %d, want %d", r.Dim(), tt.dim)
			}
		})
	}
}

func TestRowAtAndDense(t *testing.T) {
	t.Parallel()

	r := MustRow(4, Entry{Index: 1, Value: 2}, Entry{Index: 3, Value: -1})
	if got := r.At(1); got != 2 {
		t.Errorf("At(1) = %v, want 2", got)
	}
	if got := r.At(2); got != 0 {
		t.Errorf("At(2) = %v, want 0", got)
	}
	if got := r.Dense(); !reflect.DeepEqual(got, []float64{0, 2, 0, -1}) {
		t.Errorf("Dense() = %v", got)
	}
	if got := RowFromDense([]float64{0, 2, 0, -1}); !reflect.DeepEqual(got.Entries(), r.Entries()) {
		t.Errorf("RowFromDense() = %v, want %v", got.Entries(), r.Entries())
	}
}

func TestRowNormalize(t *testing.T) {
	t.Parallel()

	r := MustRow(3, Entry{Index: 0, Value: 3}, Entry{Index: 2, Value: 4})

	l2 := r.Normalize(NormL2)
	if math.Abs(l2.At(0)-0.6) > 1e-12 || math.Abs(l2.At(2)-0.8) > 1e-12 {
		t.Errorf("L2 normalize = %v", l2.Entries())
	}

	l1 := r.Normalize(NormL1)
	if math.Abs(l1.Sum()-1) > 1e-12 {
		t.Errorf("L1 normalized sum = %v, want 1", l1.Sum())
	}

	zero := EmptyRow(3).Normalize(NormL2)
	if !zero.IsEmpty() {
		t.Errorf("normalizing empty row produced %v", zero.Entries())
	}
}

func TestRowMultiplyAndSub(t *testing.T) {
	t.Parallel()

	a := MustRow(4, Entry{0, 2}, Entry{1, 3}, Entry{3, 1})
	b := MustRow(4, Entry{1, 1}, Entry{2, 5}, Entry{3, 1})

	p, err := a.Multiply(b)
	if err != nil {
		t.Fatalf("Multiply() error: %v", err)
	}
	if want := []Entry{{1, 3}, {3, 1}}; !reflect.DeepEqual(p.Entries(), want) {
		t.Errorf("Multiply() = %v, want %v", p.Entries(), want)
	}

	d, err := a.Sub(p)
	if err != nil {
		t.Fatalf("Sub() error: %v", err)
	}
	if want := []Entry{{0, 2}}; !reflect.DeepEqual(d.Entries(), want) {
		t.Errorf("Sub() = %v, want %v", d.Entries(), want)
	}

	if _, err := a.Multiply(EmptyRow(3)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Multiply() mismatched error = %v, want ErrDimensionMismatch", err)
	}
}

func TestRowTopK(t *testing.T) {
	t.Parallel()

	r := MustRow(6,
		Entry{0, 0.5},
		Entry{1, -4},
		Entry{2, 3},
		Entry{3, 1},
		Entry{5, 2},
	)

	tests := []struct {
		name string
		got  Row
		want []int
	}{
		{"by value", r.TopK(2), []int{2, 5}},
		{"by magnitude", r.TopKAbs(2), []int{1, 2}},
		{"k larger than nnz", r.TopK(10), []int{0, 1, 2, 3, 5}},
		{"k zero keeps all", r.TopK(0), []int{0, 1, 2, 3, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got.Indices(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("indices = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRowRankedTieBreak(t *testing.T) {
	t.Parallel()

	r := MustRow(4, Entry{3, 1}, Entry{0, 1}, Entry{2, 5})
	ranked := r.Ranked()
	want := []Entry{{2, 5}, {0, 1}, {3, 1}}
	if !reflect.DeepEqual(ranked, want) {
		t.Errorf("Ranked() = %v, want %v", ranked, want)
	}
}

func TestRowMin(t *testing.T) {
	t.Parallel()

	if _, ok := EmptyRow(2).Min(); ok {
		t.Error("Min() on empty row reported a value")
	}
	v, ok := MustRow(3, Entry{0, 4}, Entry{2, 2}).Min()
	if !ok || v != 2 {
		t.Errorf("Min() = %v, %v; want 2, true", v, ok)
	}
}

func TestParseNorm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Norm
		wantErr bool
	}{
		{"", NormNone, false},
		{"none", NormNone, false},
		{"L1", NormL1, false},
		{" l2 ", NormL2, false},
		{"max", NormNone, true},
	}
	for _, tt := range tests {
		got, err := ParseNorm(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNorm(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNorm(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
