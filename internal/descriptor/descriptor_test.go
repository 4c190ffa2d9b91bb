// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package descriptor

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const bookingFile = `*** BOOKINGS INFO ***
count: 2
***
Cluster #0 [3 | 2]
Explanation:
-> beach: 0.900
-> pool: 0.750
Bookings: b1, b2, b3
Items: p1, p2
---
Cluster #7 [1 | 1]
Explanation:
Bookings: b4
Items: p3
---
`

func TestParseBookingFile(t *testing.T) {
	t.Parallel()

	f, err := Parse(strings.NewReader(bookingFile))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}
	if len(f.Preamble) != 3 {
		t.Errorf("Preamble = %q, want 3 lines", f.Preamble)
	}

	c0 := f.Clusters[0]
	if c0.ID != 0 || c0.Label != "0" {
		t.Errorf("cluster 0 id/label = %d/%q", c0.ID, c0.Label)
	}
	if !reflect.DeepEqual(c0.Counts, []int{3, 2}) {
		t.Errorf("Counts = %v, want [3 2]", c0.Counts)
	}
	wantFeatures := []Feature{{"beach", 0.9}, {"pool", 0.75}}
	if !reflect.DeepEqual(c0.Explanation, wantFeatures) {
		t.Errorf("Explanation = %v, want %v", c0.Explanation, wantFeatures)
	}
	if !reflect.DeepEqual(c0.Bookings, []string{"b1", "b2", "b3"}) {
		t.Errorf("Bookings = %v", c0.Bookings)
	}
	if !reflect.DeepEqual(c0.Items, []string{"p1", "p2"}) {
		t.Errorf("Items = %v", c0.Items)
	}

	// The second block is labelled 7 but is the second cluster in order.
	c1 := f.Clusters[1]
	if c1.ID != 1 || c1.Label != "7" {
		t.Errorf("cluster 1 id/label = %d/%q, want 1/\"7\"", c1.ID, c1.Label)
	}
	if len(c1.Explanation) != 0 {
		t.Errorf("Explanation = %v, want empty", c1.Explanation)
	}

	bc := f.BookingClusters()
	if bc["b4"] != 1 || bc["b2"] != 0 {
		t.Errorf("BookingClusters() = %v", bc)
	}
	if got := f.ClusterSizes(bc); !reflect.DeepEqual(got, []int{3, 1}) {
		t.Errorf("ClusterSizes() = %v, want [3 1]", got)
	}
}

func TestParseUserFile(t *testing.T) {
	t.Parallel()

	in := "Cluster #0 [2]\nExplanation:\n-> family: 0.800\nUsers: u1, u2\n---\n" +
		"Cluster #1 [1]\nUsers: u3\n---\n"
	f, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	uc := f.UserClusters()
	want := map[string]int{"u1": 0, "u2": 0, "u3": 1}
	if !reflect.DeepEqual(uc, want) {
		t.Errorf("UserClusters() = %v, want %v", uc, want)
	}
	if got := f.Clusters[0].FeatureMap(); got["family"] != 0.8 {
		t.Errorf("FeatureMap() = %v", got)
	}
	if f.Clusters[1].Bookings != nil {
		t.Errorf("missing Bookings line parsed as %v, want nil", f.Clusters[1].Bookings)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrNoClusters},
		{"preamble only", "*** INFO ***\ncount: 3\n", ErrNoClusters},
		{"bad count", "Cluster #0 [x | 2]\n", ErrMalformedLine},
		{"unterminated counts", "Cluster #0 [1 | 2\n", ErrMalformedLine},
		{"feature without score", "Cluster #0\n-> beach\n", ErrMalformedLine},
		{"feature bad score", "Cluster #0\n-> beach: high\n", ErrMalformedLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tt.in))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseErrorReportsLine(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("Cluster #0\nExplanation:\n-> beach: ?\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Parse() error = %v, want it to name line 3", err)
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	t.Parallel()

	first, err := Parse(strings.NewReader(bookingFile))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, first); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	second, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse(Write()) error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip changed file:\n got %+v\nwant %+v", second, first)
	}
}

func TestWriteFileAndParseFile(t *testing.T) {
	t.Parallel()

	f := &File{
		Preamble: Describe("users", []float64{1, 2, 3, 4}),
		Clusters: []Cluster{
			{ID: 0, Counts: []int{2}, Users: []string{"u1", "u2"}},
			{ID: 1, Counts: []int{1}, Explanation: []Feature{{"ski", 1}}, Users: []string{"u3"}},
		},
	}
	path := filepath.Join(t.TempDir(), "users.txt")
	if err := WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if got.Clusters[1].Label != "1" {
		t.Errorf("Label = %q, want generated \"1\"", got.Clusters[1].Label)
	}
	if !reflect.DeepEqual(got.Clusters[1].Users, []string{"u3"}) {
		t.Errorf("Users = %v", got.Clusters[1].Users)
	}
	if !reflect.DeepEqual(got.Preamble, f.Preamble) {
		t.Errorf("Preamble = %q, want %q", got.Preamble, f.Preamble)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	lines := Describe("bookings", []float64{4, 1, 3, 2})
	if lines[0] != "*** BOOKINGS INFO ***" || lines[len(lines)-1] != "***" {
		t.Errorf("Describe() frame = %q", lines)
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"count: 4", "mean: 2.5", "min: 1", "max: 4"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Describe() missing %q in\n%s", want, joined)
		}
	}

	if got := Describe("empty", nil); len(got) != 3 {
		t.Errorf("Describe(nil) = %q, want title, count and footer", got)
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	got := Explain([]string{"a", "b", "c"}, []float64{0.9, 0.2, 0.71}, 0.7)
	want := []Feature{{"a", 0.9}, {"c", 0.71}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Explain() = %v, want %v", got, want)
	}
	if sorted := SortedFeatures([]Feature{{"x", 0.1}, {"y", 0.5}}); sorted[0].Name != "y" {
		t.Errorf("SortedFeatures() = %v", sorted)
	}
}
