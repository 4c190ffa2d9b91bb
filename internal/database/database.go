// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package database loads the feature CSVs into an embedded DuckDB instance
// and runs the group-by aggregations the recommenders are built from.
//
// The package is organized as:
//   - database.go: connection lifecycle
//   - table.go: CSV import, table whitelist and column discovery
//   - query.go: generic frame, group mean, distinct count and pair queries
//   - providers.go: the domain aggregations over bookings, users,
//     properties and property_features
//
// Tables are recreated on every import; nothing is migrated. A typical
// load looks like:
//
//	db, err := database.Open(&cfg.Database, logger)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//	if err := db.ImportCSV(ctx, database.TableBookings, cfg.Data.BookingsCSV); err != nil {
//		return err
//	}
//	summaries, err := db.BookingSummaries(ctx)
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/metrics"
)

const queryTimeout = 2 * time.Minute

// DB wraps the DuckDB connection.
type DB struct {
	conn   *sql.DB
	cfg    *config.DatabaseConfig
	logger zerolog.Logger
}

// Open opens DuckDB. An empty cfg.Path opens an in-memory database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(cfg *config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	} else if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	connStr := fmt.Sprintf("%s?threads=%d", path, numThreads)
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "database").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.logger.Debug().
		Str("path", path).
		Int("threads", numThreads).
		Str("max_memory", cfg.MaxMemory).
		Msg("Database opened")
	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// query runs a read query with the package timeout and records its
// duration. The caller must close the returned rows and call done with the
// final error.
func (db *DB) query(ctx context.Context, operation, table, q string, args ...any) (rows *sql.Rows, done func(error), err error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	start := time.Now()
	done = func(err error) {
		cancel()
		metrics.RecordDBQuery(operation, table, time.Since(start), err)
	}

	rows, err = db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		done(err)
		return nil, nil, err
	}
	return rows, done, nil
}

// exec runs a statement with the package timeout and records its duration.
func (db *DB) exec(ctx context.Context, operation, table, q string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, q, args...)
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
	return err
}
