// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package sparse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMalformedMatrixMarket is returned for input that is not a supported
// Matrix Market coordinate file.
var ErrMalformedMatrixMarket = errors.New("sparse: malformed matrix market input")

const mmBanner = "%%MatrixMarket"

// ReadMatrixMarket parses a coordinate Matrix Market stream. The real,
// integer and pattern fields are accepted, as are general, symmetric and
// skew-symmetric layouts.
func ReadMatrixMarket(r io.Reader) (*Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	next := func() (string, bool) {
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line == "" || (strings.HasPrefix(line, "%") && lineNo > 1) {
				continue
			}
			return line, true
		}
		return "", false
	}

	header, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedMatrixMarket)
	}
	fields := strings.Fields(strings.ToLower(header))
	if len(fields) != 5 || fields[0] != strings.ToLower(mmBanner) || fields[1] != "matrix" {
		return nil, fmt.Errorf("%w: bad banner %q", ErrMalformedMatrixMarket, header)
	}
	if fields[2] != "coordinate" {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrMalformedMatrixMarket, fields[2])
	}
	field, symmetry := fields[3], fields[4]
	switch field {
	case "real", "double", "integer", "pattern":
	default:
		return nil, fmt.Errorf("%w: unsupported field %q", ErrMalformedMatrixMarket, field)
	}
	switch symmetry {
	case "general", "symmetric", "skew-symmetric":
	default:
		return nil, fmt.Errorf("%w: unsupported symmetry %q", ErrMalformedMatrixMarket, symmetry)
	}

	sizeLine, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: missing size line", ErrMalformedMatrixMarket)
	}
	var rows, cols, nnz int
	if _, err := fmt.Sscanf(sizeLine, "%d %d %d", &rows, &cols, &nnz); err != nil {
		return nil, fmt.Errorf("%w: line %d: size line %q: %v", ErrMalformedMatrixMarket, lineNo, sizeLine, err)
	}

	b := NewBuilder(rows, cols)
	read := 0
	for read < nnz {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: expected %d entries, got %d", ErrMalformedMatrixMarket, nnz, read)
		}
		parts := strings.Fields(line)
		want := 3
		if field == "pattern" {
			want = 2
		}
		if len(parts) < want {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedMatrixMarket, lineNo, line)
		}
		i, errI := strconv.Atoi(parts[0])
		j, errJ := strconv.Atoi(parts[1])
		if errI != nil || errJ != nil {
			return nil, fmt.Errorf("%w: line %d: bad coordinates %q", ErrMalformedMatrixMarket, lineNo, line)
		}
		v := 1.0
		if field != "pattern" {
			parsed, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad value %q", ErrMalformedMatrixMarket, lineNo, parts[2])
			}
			v = parsed
		}
		b.Add(i-1, j-1, v)
		if i != j {
			switch symmetry {
			case "symmetric":
				b.Add(j-1, i-1, v)
			case "skew-symmetric":
				b.Add(j-1, i-1, -v)
			}
		}
		read++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read matrix market: %w", err)
	}

	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMatrixMarket, err)
	}
	return m, nil
}

// WriteMatrixMarket writes m as a general real coordinate Matrix Market
// stream with 1-based indices.
func WriteMatrixMarket(w io.Writer, m *Matrix) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s matrix coordinate real general\n%%\n%d %d %d\n", mmBanner, m.rows, m.cols, m.NNZ()); err != nil {
		return fmt.Errorf("write matrix market header: %w", err)
	}
	var werr error
	m.Each(func(i, j int, v float64) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bw, "%d %d %s\n", i+1, j+1, strconv.FormatFloat(v, 'g', -1, 64))
	})
	if werr != nil {
		return fmt.Errorf("write matrix market entry: %w", werr)
	}
	return bw.Flush()
}

// LoadMatrixMarket reads a Matrix Market file from disk.
func LoadMatrixMarket(path string) (*Matrix, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	m, err := ReadMatrixMarket(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// SaveMatrixMarket writes m to path, replacing any existing file.
func SaveMatrixMarket(path string, m *Matrix) error {
	tmp := path + ".tmp"
	f, err := os.Create(filepath.Clean(tmp))
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := WriteMatrixMarket(f, m); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
