// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package sparse

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// Triple is one (row, col, value) coordinate of a matrix.
type Triple struct {
	Row   int
	Col   int
	Value float64
}

// Matrix is an immutable compressed sparse row matrix.
type Matrix struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

// Builder accumulates triples and produces a Matrix. Duplicate coordinates
// are summed.
type Builder struct {
	rows, cols int
	triples    []Triple
	err        error
}

// NewBuilder creates a builder for a rows×cols matrix.
func NewBuilder(rows, cols int) *Builder {
	return &Builder{rows: rows, cols: cols}
}

// Add records a value. The first out-of-range coordinate is reported by
// Build.
func (b *Builder) Add(row, col int, value float64) {
	if b.err != nil {
		return
	}
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		b.err = fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrIndexOutOfRange, row, col, b.rows, b.cols)
		return
	}
	b.triples = append(b.triples, Triple{Row: row, Col: col, Value: value})
}

// Build returns the assembled matrix.
func (b *Builder) Build() (*Matrix, error) {
	if b.err != nil {
		return nil, b.err
	}
	return FromTriples(b.rows, b.cols, b.triples)
}

// FromTriples builds a matrix from coordinates. Duplicates are summed and
// resulting zeros are dropped.
func FromTriples(rows, cols int, triples []Triple) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative shape %dx%d", ErrIndexOutOfRange, rows, cols)
	}
	ts := make([]Triple, len(triples))
	copy(ts, triples)
	for _, t := range ts {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrIndexOutOfRange, t.Row, t.Col, rows, cols)
		}
	}
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Row != ts[j].Row {
			return ts[i].Row < ts[j].Row
		}
		return ts[i].Col < ts[j].Col
	})

	m := &Matrix{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, 0, len(ts)),
		data:    make([]float64, 0, len(ts)),
	}

	for i := 0; i < len(ts); {
		j := i
		sum := 0.0
		for j < len(ts) && ts[j].Row == ts[i].Row && ts[j].Col == ts[i].Col {
			sum += ts[j].Value
			j++
		}
		if sum != 0 {
			m.indices = append(m.indices, ts[i].Col)
			m.data = append(m.data, sum)
			m.indptr[ts[i].Row+1]++
		}
		i = j
	}
	for r := 0; r < rows; r++ {
		m.indptr[r+1] += m.indptr[r]
	}
	return m, nil
}

// FromRows stacks rows into a matrix. Every row must have dimension cols.
func FromRows(cols int, rows []Row) (*Matrix, error) {
	m := &Matrix{rows: len(rows), cols: cols, indptr: make([]int, len(rows)+1)}
	for i, r := range rows {
		if r.dim != cols {
			return nil, fmt.Errorf("%w: row %d has dimension %d, want %d", ErrDimensionMismatch, i, r.dim, cols)
		}
		for _, e := range r.entries {
			m.indices = append(m.indices, e.Index)
			m.data = append(m.data, e.Value)
		}
		m.indptr[i+1] = len(m.indices)
	}
	return m, nil
}

// FromDense converts a rectangular dense matrix.
func FromDense(values [][]float64) (*Matrix, error) {
	if len(values) == 0 {
		return Zeros(0, 0), nil
	}
	cols := len(values[0])
	rows := make([]Row, len(values))
	for i, v := range values {
		if len(v) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(v), cols)
		}
		rows[i] = RowFromDense(v)
	}
	return FromRows(cols, rows)
}

// Zeros returns an empty rows×cols matrix.
func Zeros(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, indptr: make([]int, rows+1)}
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) { return m.rows, m.cols }

// NNZ returns the number of stored values.
func (m *Matrix) NNZ() int { return len(m.data) }

// Row returns row i as a sparse row. It panics when i is out of range.
func (m *Matrix) Row(i int) Row {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("sparse: row %d out of range [0,%d)", i, m.rows))
	}
	lo, hi := m.indptr[i], m.indptr[i+1]
	entries := make([]Entry, hi-lo)
	for k := lo; k < hi; k++ {
		entries[k-lo] = Entry{Index: m.indices[k], Value: m.data[k]}
	}
	return Row{dim: m.cols, entries: entries}
}

// At returns the value at (i, j).
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("sparse: (%d,%d) out of range %dx%d", i, j, m.rows, m.cols))
	}
	lo, hi := m.indptr[i], m.indptr[i+1]
	k := lo + sort.SearchInts(m.indices[lo:hi], j)
	if k < hi && m.indices[k] == j {
		return m.data[k]
	}
	return 0
}

// Each calls fn for every stored value in row-major order.
func (m *Matrix) Each(fn func(i, j int, v float64)) {
	for i := 0; i < m.rows; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			fn(i, m.indices[k], m.data[k])
		}
	}
}

// Triples returns all stored values as coordinates in row-major order.
func (m *Matrix) Triples() []Triple {
	out := make([]Triple, 0, len(m.data))
	m.Each(func(i, j int, v float64) {
		out = append(out, Triple{Row: i, Col: j, Value: v})
	})
	return out
}

// Dense expands the matrix.
func (m *Matrix) Dense() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = m.Row(i).Dense()
	}
	return out
}

// mapRows builds a new matrix of the same width by transforming each row.
func (m *Matrix) mapRows(fn func(i int, r Row) Row) *Matrix {
	rows := make([]Row, m.rows)
	for i := range rows {
		rows[i] = fn(i, m.Row(i))
	}
	out, _ := FromRows(m.cols, rows) //nolint:errcheck // widths are preserved by construction
	return out
}

// Transpose returns mᵀ.
func (m *Matrix) Transpose() *Matrix {
	t := &Matrix{
		rows:    m.cols,
		cols:    m.rows,
		indptr:  make([]int, m.cols+1),
		indices: make([]int, len(m.indices)),
		data:    make([]float64, len(m.data)),
	}
	for _, j := range m.indices {
		t.indptr[j+1]++
	}
	for j := 0; j < m.cols; j++ {
		t.indptr[j+1] += t.indptr[j]
	}
	next := make([]int, m.cols)
	copy(next, t.indptr[:m.cols])
	for i := 0; i < m.rows; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			j := m.indices[k]
			pos := next[j]
			t.indices[pos] = i
			t.data[pos] = m.data[k]
			next[j]++
		}
	}
	return t
}

// Mul returns the matrix product m·b.
func (m *Matrix) Mul(b *Matrix) (*Matrix, error) {
	if m.cols != b.rows {
		return nil, fmt.Errorf("%w: multiply %dx%d by %dx%d", ErrDimensionMismatch, m.rows, m.cols, b.rows, b.cols)
	}
	rows := make([]Row, m.rows)
	acc := newAccumulator(b.cols)
	for i := 0; i < m.rows; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			acc.addRow(b, m.indices[k], m.data[k])
		}
		rows[i] = acc.flush()
	}
	return FromRows(b.cols, rows)
}

// VecMul returns the row-vector product r·m. The row is the left operand.
func (m *Matrix) VecMul(r Row) (Row, error) {
	if r.dim != m.rows {
		return Row{}, fmt.Errorf("%w: multiply 1x%d by %dx%d", ErrDimensionMismatch, r.dim, m.rows, m.cols)
	}
	acc := newAccumulator(m.cols)
	for _, e := range r.entries {
		acc.addRow(m, e.Index, e.Value)
	}
	return acc.flush(), nil
}

// MulVec returns the dense product m·rᵀ, one value per matrix row.
func (m *Matrix) MulVec(r Row) ([]float64, error) {
	if r.dim != m.cols {
		return nil, fmt.Errorf("%w: multiply %dx%d by %dx1", ErrDimensionMismatch, m.rows, m.cols, r.dim)
	}
	dense := r.Dense()
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			out[i] += m.data[k] * dense[m.indices[k]]
		}
	}
	return out, nil
}

// MultiplyRow returns the element-wise product of every row with r.
func (m *Matrix) MultiplyRow(r Row) (*Matrix, error) {
	if r.dim != m.cols {
		return nil, fmt.Errorf("%w: broadcast 1x%d over %dx%d", ErrDimensionMismatch, r.dim, m.rows, m.cols)
	}
	return m.mapRows(func(_ int, row Row) Row {
		p, _ := row.Multiply(r) //nolint:errcheck // dimensions checked above
		return p
	}), nil
}

// Multiply returns the element-wise product m⊙b.
func (m *Matrix) Multiply(b *Matrix) (*Matrix, error) {
	if m.rows != b.rows || m.cols != b.cols {
		return nil, fmt.Errorf("%w: element-wise %dx%d and %dx%d", ErrDimensionMismatch, m.rows, m.cols, b.rows, b.cols)
	}
	return m.mapRows(func(i int, row Row) Row {
		p, _ := row.Multiply(b.Row(i)) //nolint:errcheck // dimensions checked above
		return p
	}), nil
}

// Sub returns m-b.
func (m *Matrix) Sub(b *Matrix) (*Matrix, error) {
	if m.rows != b.rows || m.cols != b.cols {
		return nil, fmt.Errorf("%w: subtract %dx%d and %dx%d", ErrDimensionMismatch, m.rows, m.cols, b.rows, b.cols)
	}
	return m.mapRows(func(i int, row Row) Row {
		d, _ := row.Sub(b.Row(i)) //nolint:errcheck // dimensions checked above
		return d
	}), nil
}

// Binarize replaces every stored value with 1.
func (m *Matrix) Binarize() *Matrix {
	return m.mapRows(func(_ int, r Row) Row { return r.Binarize() })
}

// NormalizeRows scales each row to unit norm. All-zero rows stay zero.
func (m *Matrix) NormalizeRows(n Norm) *Matrix {
	if n == NormNone {
		return m
	}
	return m.mapRows(func(_ int, r Row) Row { return r.Normalize(n) })
}

// NormalizeCols scales each column to unit norm. All-zero columns stay zero.
func (m *Matrix) NormalizeCols(n Norm) *Matrix {
	if n == NormNone {
		return m
	}
	norms := make([]float64, m.cols)
	for k, j := range m.indices {
		v := m.data[k]
		if n == NormL1 {
			norms[j] += math.Abs(v)
		} else {
			norms[j] += v * v
		}
	}
	factors := make([]float64, m.cols)
	for j, s := range norms {
		if n == NormL2 {
			s = math.Sqrt(s)
		}
		if s != 0 {
			factors[j] = 1 / s
		}
	}
	out, _ := m.ScaleCols(factors) //nolint:errcheck // len(factors) == cols
	return out
}

// ScaleRows multiplies row i by f[i].
func (m *Matrix) ScaleRows(f []float64) (*Matrix, error) {
	if len(f) != m.rows {
		return nil, fmt.Errorf("%w: %d row factors for %d rows", ErrDimensionMismatch, len(f), m.rows)
	}
	return m.mapRows(func(i int, r Row) Row { return r.Scale(f[i]) }), nil
}

// ScaleCols multiplies column j by f[j].
func (m *Matrix) ScaleCols(f []float64) (*Matrix, error) {
	if len(f) != m.cols {
		return nil, fmt.Errorf("%w: %d column factors for %d columns", ErrDimensionMismatch, len(f), m.cols)
	}
	return m.mapRows(func(_ int, r Row) Row {
		entries := make([]Entry, 0, len(r.entries))
		for _, e := range r.entries {
			if v := e.Value * f[e.Index]; v != 0 {
				entries = append(entries, Entry{Index: e.Index, Value: v})
			}
		}
		return Row{dim: r.dim, entries: entries}
	}), nil
}

// ZeroDiagonal removes every stored (i, i) value.
func (m *Matrix) ZeroDiagonal() *Matrix {
	return m.mapRows(func(i int, r Row) Row {
		return r.Filter(func(e Entry) bool { return e.Index != i })
	})
}

// RowSums returns the sum of each row.
func (m *Matrix) RowSums() []float64 {
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			out[i] += m.data[k]
		}
	}
	return out
}

// Info summarizes the matrix shape and fill.
func (m *Matrix) Info() Info {
	info := Info{Rows: m.rows, Cols: m.cols, NNZ: len(m.data)}
	if cells := m.rows * m.cols; cells > 0 {
		info.Density = math.Round(float64(info.NNZ)/float64(cells)*1e4) / 1e4
	}
	return info
}

// Info describes matrix shape, stored values and density (rounded to four
// decimal places).
type Info struct {
	Rows    int     `json:"rows"`
	Cols    int     `json:"cols"`
	NNZ     int     `json:"nnz"`
	Density float64 `json:"density"`
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (i Info) MarshalZerologObject(e *zerolog.Event) {
	e.Int("rows", i.Rows).Int("cols", i.Cols).Int("nnz", i.NNZ).Float64("density", i.Density)
}

// accumulator gathers one output row of a sparse product.
type accumulator struct {
	dim     int
	values  []float64
	touched []bool
	order   []int
}

func newAccumulator(dim int) *accumulator {
	return &accumulator{dim: dim, values: make([]float64, dim), touched: make([]bool, dim)}
}

func (a *accumulator) addRow(m *Matrix, row int, scale float64) {
	for k := m.indptr[row]; k < m.indptr[row+1]; k++ {
		j := m.indices[k]
		if !a.touched[j] {
			a.touched[j] = true
			a.order = append(a.order, j)
		}
		a.values[j] += scale * m.data[k]
	}
}

func (a *accumulator) flush() Row {
	sort.Ints(a.order)
	entries := make([]Entry, 0, len(a.order))
	for _, j := range a.order {
		if v := a.values[j]; v != 0 {
			entries = append(entries, Entry{Index: j, Value: v})
		}
		a.values[j] = 0
		a.touched[j] = false
	}
	a.order = a.order[:0]
	return Row{dim: a.dim, entries: entries}
}
