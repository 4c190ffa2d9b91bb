// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package descriptor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Write serializes f. Member lists are written when non-nil, so a
// descriptor read back from Write has the same shape.
func Write(w io.Writer, f *File) error {
	bw := bufio.NewWriter(w)
	for _, line := range f.Preamble {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return fmt.Errorf("write preamble: %w", err)
		}
	}
	for i := range f.Clusters {
		if err := writeCluster(bw, &f.Clusters[i]); err != nil {
			return fmt.Errorf("write cluster %d: %w", f.Clusters[i].ID, err)
		}
	}
	return bw.Flush()
}

// WriteFile writes f to path.
func WriteFile(path string, f *File) error {
	fh, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create descriptor: %w", err)
	}
	if err := Write(fh, f); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

func writeCluster(w *bufio.Writer, c *Cluster) error {
	label := c.Label
	if label == "" {
		label = strconv.Itoa(c.ID)
	}
	counts := make([]string, len(c.Counts))
	for i, n := range c.Counts {
		counts[i] = strconv.Itoa(n)
	}

	fmt.Fprintf(w, "%s #%s [%s]\n", prefixCluster, label, strings.Join(counts, " | "))
	fmt.Fprintln(w, prefixExplanation)
	for _, feat := range c.Explanation {
		fmt.Fprintf(w, "%s %s: %.3f\n", prefixFeature, feat.Name, feat.Score)
	}
	writeList(w, prefixBookings, c.Bookings)
	writeList(w, prefixItems, c.Items)
	writeList(w, prefixUsers, c.Users)
	_, err := fmt.Fprintln(w, blockEnd)
	return err
}

func writeList(w *bufio.Writer, prefix string, ids []string) {
	if ids == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", prefix, strings.Join(ids, ", "))
}

// Describe renders a summary block for a series of per-cluster counts:
// count, mean, std, min, quartiles and max.
func Describe(title string, values []float64) []string {
	lines := []string{fmt.Sprintf("*** %s INFO ***", strings.ToUpper(title))}
	lines = append(lines, fmt.Sprintf("count: %d", len(values)))
	if len(values) > 0 {
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		std := 0.0
		if len(sorted) > 1 {
			std = stat.StdDev(sorted, nil)
		}
		lines = append(lines,
			fmt.Sprintf("mean: %g", stat.Mean(sorted, nil)),
			fmt.Sprintf("std: %g", std),
			fmt.Sprintf("min: %g", sorted[0]),
			fmt.Sprintf("25%%: %g", stat.Quantile(0.25, stat.LinInterp, sorted, nil)),
			fmt.Sprintf("50%%: %g", stat.Quantile(0.5, stat.LinInterp, sorted, nil)),
			fmt.Sprintf("75%%: %g", stat.Quantile(0.75, stat.LinInterp, sorted, nil)),
			fmt.Sprintf("max: %g", sorted[len(sorted)-1]),
		)
	}
	return append(lines, "***")
}
