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
	"strconv"
	"strings"
)

// Parse reads a descriptor stream.
func Parse(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	f := &File{}
	var cur *Cluster
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")

		if strings.HasPrefix(line, prefixCluster) {
			c, err := parseHeader(line, len(f.Clusters))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			f.Clusters = append(f.Clusters, c)
			cur = &f.Clusters[len(f.Clusters)-1]
			continue
		}
		if cur == nil {
			f.Preamble = append(f.Preamble, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, prefixFeature):
			feat, err := parseFeature(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			cur.Explanation = append(cur.Explanation, feat)
		case strings.HasPrefix(line, prefixBookings):
			cur.Bookings = parseList(line, prefixBookings)
		case strings.HasPrefix(line, prefixItems):
			cur.Items = parseList(line, prefixItems)
		case strings.HasPrefix(line, prefixUsers):
			cur.Users = parseList(line, prefixUsers)
		case strings.HasPrefix(line, prefixExplanation), strings.HasPrefix(line, blockEnd):
		default:
			// Unknown lines inside a block are ignored so newer writers
			// can add sections.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	if len(f.Clusters) == 0 {
		return nil, ErrNoClusters
	}
	return f, nil
}

// ParseFile reads a descriptor file from disk.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open descriptor: %w", err)
	}
	defer fh.Close() //nolint:errcheck // read-only

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// parseHeader parses "Cluster #<label> [<n> | <m>]". The bracket part is
// optional.
func parseHeader(line string, ordinal int) (Cluster, error) {
	c := Cluster{ID: ordinal}
	rest := strings.TrimSpace(strings.TrimPrefix(line, prefixCluster))

	if strings.HasPrefix(rest, "#") {
		rest = rest[1:]
		end := strings.IndexAny(rest, " [")
		if end < 0 {
			end = len(rest)
		}
		c.Label = rest[:end]
		rest = strings.TrimSpace(rest[end:])
	}

	if strings.HasPrefix(rest, "[") {
		closing := strings.Index(rest, "]")
		if closing < 0 {
			return c, fmt.Errorf("%w: unterminated counts in %q", ErrMalformedLine, line)
		}
		for _, part := range strings.Split(rest[1:closing], "|") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return c, fmt.Errorf("%w: count %q in %q", ErrMalformedLine, part, line)
			}
			c.Counts = append(c.Counts, n)
		}
	}
	return c, nil
}

// parseFeature parses "-> <name>: <score>".
func parseFeature(line string) (Feature, error) {
	body := strings.TrimSpace(strings.TrimPrefix(line, prefixFeature))
	sep := strings.LastIndex(body, ":")
	if sep < 0 {
		return Feature{}, fmt.Errorf("%w: feature without score %q", ErrMalformedLine, line)
	}
	name := strings.TrimSpace(body[:sep])
	score, err := strconv.ParseFloat(strings.TrimSpace(body[sep+1:]), 64)
	if err != nil || name == "" {
		return Feature{}, fmt.Errorf("%w: feature %q", ErrMalformedLine, line)
	}
	return Feature{Name: name, Score: score}, nil
}

// parseList splits the comma separated ids after prefix.
func parseList(line, prefix string) []string {
	body := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	out := []string{}
	if body == "" {
		return out
	}
	for _, id := range strings.Split(body, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
