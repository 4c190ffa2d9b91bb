// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Tables the loaders write to.
const (
	TableBookings         = "bookings"
	TableUsers            = "users"
	TableProperties       = "properties"
	TablePropertyFeatures = "property_features"
	// TableFeatures holds an arbitrary feature CSV for offline clustering.
	TableFeatures = "features"
	// TableTestBookings holds held-out bookings for evaluation.
	TableTestBookings = "test_bookings"
)

var knownTables = map[string]bool{
	TableBookings:         true,
	TableUsers:            true,
	TableProperties:       true,
	TablePropertyFeatures: true,
	TableFeatures:         true,
	TableTestBookings:     true,
}

func checkTable(table string) error {
	if !knownTables[table] {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}

// quoteIdent quotes a column or table name for interpolation.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a string literal for interpolation.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ImportCSV replaces table with the contents of the CSV at path. Column
// types are detected by DuckDB; the first line must be a header.
func (db *DB) ImportCSV(ctx context.Context, table, path string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("import %s: %w", table, err)
	}

	start := time.Now()
	q := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s, header = true)",
		quoteIdent(table), quoteLiteral(path))
	if err := db.exec(ctx, "IMPORT", table, q); err != nil {
		return fmt.Errorf("import %s from %s: %w", table, path, err)
	}

	n, err := db.Count(ctx, table)
	if err != nil {
		return err
	}
	db.logger.Info().
		Str("table", table).
		Str("path", path).
		Int("rows", n).
		Dur("duration", time.Since(start)).
		Msg("Imported CSV")
	return nil
}

// Count returns the number of rows in table.
func (db *DB) Count(ctx context.Context, table string) (int, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	rows, done, err := db.query(ctx, "COUNT", table, "SELECT COUNT(*) FROM "+quoteIdent(table))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	defer closeWithLog(rows, "rows")

	var n int
	if rows.Next() {
		err = rows.Scan(&n)
	}
	if err == nil {
		err = rows.Err()
	}
	done(err)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Columns returns the column names of table in declaration order.
func (db *DB) Columns(ctx context.Context, table string) ([]string, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	rows, done, err := db.query(ctx, "COLUMNS", table,
		"SELECT column_name FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position", table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer closeWithLog(rows, "rows")

	var cols []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			break
		}
		cols = append(cols, name)
	}
	if err == nil {
		err = rows.Err()
	}
	done(err)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("columns of %s: %w", table, ErrUnknownTable)
	}
	return cols, nil
}

// featureColumns returns the columns of table except the excluded ones.
// Every required column must exist.
func (db *DB) featureColumns(ctx context.Context, table string, required []string, exclude ...string) ([]string, error) {
	cols, err := db.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[strings.ToLower(c)] = true
	}
	for _, r := range required {
		if !present[strings.ToLower(r)] {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingColumn, table, r)
		}
	}

	skip := make(map[string]bool, len(exclude)+len(required))
	for _, c := range exclude {
		skip[strings.ToLower(c)] = true
	}
	for _, c := range required {
		skip[strings.ToLower(c)] = true
	}

	features := make([]string, 0, len(cols))
	for _, c := range cols {
		if !skip[strings.ToLower(c)] {
			features = append(features, c)
		}
	}
	return features, nil
}
