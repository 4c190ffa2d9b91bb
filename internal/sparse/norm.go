// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package sparse

import (
	"fmt"
	"strings"
)

// Norm selects a vector norm for normalization.
type Norm int

const (
	// NormNone leaves values untouched.
	NormNone Norm = iota
	// NormL1 divides by the sum of absolute values.
	NormL1
	// NormL2 divides by the Euclidean length.
	NormL2
)

// String implements fmt.Stringer.
func (n Norm) String() string {
	switch n {
	case NormL1:
		return "l1"
	case NormL2:
		return "l2"
	default:
		return "none"
	}
}

// ParseNorm converts a configuration string into a Norm.
func ParseNorm(s string) (Norm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NormNone, nil
	case "l1":
		return NormL1, nil
	case "l2":
		return NormL2, nil
	default:
		return NormNone, fmt.Errorf("unknown norm %q (want none, l1 or l2)", s)
	}
}
