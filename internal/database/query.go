// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Frame is a dense id × feature table read from DuckDB. Missing values
// are zero.
type Frame struct {
	IDs      []string
	Features []string
	Values   [][]float64
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.IDs)
}

// Pair is two id columns of one row.
type Pair struct {
	A string
	B string
}

// Table reads idColumn and every other column not in exclude, in table
// order. Feature columns are cast to DOUBLE.
func (db *DB) Table(ctx context.Context, table, idColumn string, exclude ...string) (*Frame, error) {
	features, err := db.featureColumns(ctx, table, []string{idColumn}, exclude...)
	if err != nil {
		return nil, err
	}

	exprs := make([]string, len(features))
	for i, f := range features {
		exprs[i] = fmt.Sprintf("CAST(%s AS DOUBLE)", quoteIdent(f))
	}
	q := fmt.Sprintf("SELECT CAST(%s AS VARCHAR)%s FROM %s WHERE %s IS NOT NULL",
		quoteIdent(idColumn), joinExprs(exprs), quoteIdent(table), quoteIdent(idColumn))

	return db.readFrame(ctx, "TABLE", table, q, features)
}

// GroupMean averages every column of table not in exclude, grouped by
// key and ordered by key.
func (db *DB) GroupMean(ctx context.Context, table, key string, exclude ...string) (*Frame, error) {
	features, err := db.featureColumns(ctx, table, []string{key}, exclude...)
	if err != nil {
		return nil, err
	}

	exprs := make([]string, len(features))
	for i, f := range features {
		exprs[i] = fmt.Sprintf("AVG(CAST(%s AS DOUBLE))", quoteIdent(f))
	}
	q := fmt.Sprintf("SELECT CAST(%s AS VARCHAR) AS k%s FROM %s WHERE %s IS NOT NULL GROUP BY 1 ORDER BY 1",
		quoteIdent(key), joinExprs(exprs), quoteIdent(table), quoteIdent(key))

	return db.readFrame(ctx, "GROUP_MEAN", table, q, features)
}

// DistinctCount returns, per value of key, the number of distinct values
// of counted.
func (db *DB) DistinctCount(ctx context.Context, table, key, counted string) (map[string]int, error) {
	if _, err := db.featureColumns(ctx, table, []string{key, counted}); err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT CAST(%s AS VARCHAR), COUNT(DISTINCT %s) FROM %s WHERE %s IS NOT NULL GROUP BY 1",
		quoteIdent(key), quoteIdent(counted), quoteIdent(table), quoteIdent(key))

	rows, done, err := db.query(ctx, "DISTINCT_COUNT", table, q)
	if err != nil {
		return nil, fmt.Errorf("distinct %s per %s: %w", counted, key, err)
	}
	defer closeWithLog(rows, "rows")

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err = rows.Scan(&id, &n); err != nil {
			break
		}
		counts[id] = n
	}
	if err == nil {
		err = rows.Err()
	}
	done(err)
	if err != nil {
		return nil, fmt.Errorf("distinct %s per %s: %w", counted, key, err)
	}
	return counts, nil
}

// Pairs returns columns a and b of every row where both are set, in table
// order. distinct drops repeated pairs.
func (db *DB) Pairs(ctx context.Context, table, a, b string, distinct bool) ([]Pair, error) {
	if _, err := db.featureColumns(ctx, table, []string{a, b}); err != nil {
		return nil, err
	}
	sel := "SELECT"
	if distinct {
		sel = "SELECT DISTINCT"
	}
	q := fmt.Sprintf("%s CAST(%s AS VARCHAR), CAST(%s AS VARCHAR) FROM %s WHERE %s IS NOT NULL AND %s IS NOT NULL",
		sel, quoteIdent(a), quoteIdent(b), quoteIdent(table), quoteIdent(a), quoteIdent(b))
	if distinct {
		q += " ORDER BY 1, 2"
	}

	rows, done, err := db.query(ctx, "PAIRS", table, q)
	if err != nil {
		return nil, fmt.Errorf("pairs %s/%s: %w", a, b, err)
	}
	defer closeWithLog(rows, "rows")

	var pairs []Pair
	for rows.Next() {
		var p Pair
		if err = rows.Scan(&p.A, &p.B); err != nil {
			break
		}
		pairs = append(pairs, p)
	}
	if err == nil {
		err = rows.Err()
	}
	done(err)
	if err != nil {
		return nil, fmt.Errorf("pairs %s/%s: %w", a, b, err)
	}
	return pairs, nil
}

// readFrame scans a query whose first column is the id and whose
// remaining columns are the given features.
func (db *DB) readFrame(ctx context.Context, operation, table, q string, features []string) (*Frame, error) {
	rows, done, err := db.query(ctx, operation, table, q)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", strings.ToLower(operation), table, err)
	}
	defer closeWithLog(rows, "rows")

	frame := &Frame{Features: features}
	vals := make([]sql.NullFloat64, len(features))
	dest := make([]any, len(features)+1)
	var id string
	dest[0] = &id
	for i := range vals {
		dest[i+1] = &vals[i]
	}

	for rows.Next() {
		if err = rows.Scan(dest...); err != nil {
			break
		}
		row := make([]float64, len(features))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.Float64
			}
		}
		frame.IDs = append(frame.IDs, id)
		frame.Values = append(frame.Values, row)
	}
	if err == nil {
		err = rows.Err()
	}
	done(err)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", strings.ToLower(operation), table, err)
	}
	return frame, nil
}

func joinExprs(exprs []string) string {
	if len(exprs) == 0 {
		return ""
	}
	return ", " + strings.Join(exprs, ", ")
}
