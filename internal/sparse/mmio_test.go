// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package sparse

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestMatrixMarketRoundTrip(t *testing.T) {
	t.Parallel()

	m := mustDense(t, [][]float64{
		{0, 0.125, 0},
		{1e-7, 0, 3},
	})

	var buf bytes.Buffer
	if err := WriteMatrixMarket(&buf, m); err != nil {
		t.Fatalf("WriteMatrixMarket() error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%%MatrixMarket matrix coordinate real general\n") {
		t.Errorf("unexpected header: %q", buf.String())
	}

	got, err := ReadMatrixMarket(&buf)
	if err != nil {
		t.Fatalf("ReadMatrixMarket() error: %v", err)
	}
	if !reflect.DeepEqual(got.Dense(), m.Dense()) {
		t.Errorf("round trip = %v, want %v", got.Dense(), m.Dense())
	}
}

func TestReadMatrixMarketVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  [][]float64
	}{
		{
			name: "integer with comments",
			input: "%%MatrixMarket matrix coordinate integer general\n" +
				"% produced offline\n" +
				"\n" +
				"2 2 2\n" +
				"1 2 4\n" +
				"2 1 5\n",
			want: [][]float64{{0, 4}, {5, 0}},
		},
		{
			name: "pattern",
			input: "%%MatrixMarket matrix coordinate pattern general\n" +
				"2 3 2\n" +
				"1 1\n" +
				"2 3\n",
			want: [][]float64{{1, 0, 0}, {0, 0, 1}},
		},
		{
			name: "symmetric mirrors off diagonal",
			input: "%%MatrixMarket matrix coordinate real symmetric\n" +
				"2 2 2\n" +
				"1 1 1.5\n" +
				"2 1 0.5\n",
			want: [][]float64{{1.5, 0.5}, {0.5, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := ReadMatrixMarket(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadMatrixMarket() error: %v", err)
			}
			if got := m.Dense(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dense() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadMatrixMarketErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad banner", "%%NotMatrix matrix coordinate real general\n1 1 0\n"},
		{"array format", "%%MatrixMarket matrix array real general\n1 1\n1\n"},
		{"truncated", "%%MatrixMarket matrix coordinate real general\n2 2 2\n1 1 1\n"},
		{"out of range", "%%MatrixMarket matrix coordinate real general\n1 1 1\n2 1 1\n"},
		{"bad value", "%%MatrixMarket matrix coordinate real general\n1 1 1\n1 1 x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadMatrixMarket(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformedMatrixMarket) {
				t.Errorf("ReadMatrixMarket() error = %v, want ErrMalformedMatrixMarket", err)
			}
		})
	}
}

func TestSaveAndLoadMatrixMarket(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "recs.mtx")
	m := mustDense(t, [][]float64{{1, 0}, {0, 2}})

	if err := SaveMatrixMarket(path, m); err != nil {
		t.Fatalf("SaveMatrixMarket() error: %v", err)
	}
	got, err := LoadMatrixMarket(path)
	if err != nil {
		t.Fatalf("LoadMatrixMarket() error: %v", err)
	}
	if !reflect.DeepEqual(got.Dense(), m.Dense()) {
		t.Errorf("LoadMatrixMarket() = %v, want %v", got.Dense(), m.Dense())
	}

	if _, err := LoadMatrixMarket(filepath.Join(t.TempDir(), "missing.mtx")); err == nil {
		t.Error("LoadMatrixMarket() on missing file returned nil error")
	}
}
