// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package cli holds the setup shared by the offline pipeline commands
// (cluster, buildrecs, evaluate): configuration, logging and a DuckDB
// instance loaded with the CSVs a stage needs.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/database"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/progress"
)

// Import names a CSV file and the table it is loaded into.
type Import struct {
	Table string
	Path  string
}

// LoadConfig loads the configuration from path, or from the default
// locations when path is empty, and initializes logging from it.
func LoadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.LoadWithKoanf()
	}
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}

// OpenDatabase opens DuckDB and imports every file of imports. The
// database is closed again if an import fails.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenDatabase(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger, imports ...Import) (*database.DB, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	for _, im := range imports {
		if im.Path == "" {
			_ = db.Close()
			return nil, fmt.Errorf("no file given for table %s", im.Table)
		}
		if err := db.ImportCSV(ctx, im.Table, im.Path); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Progress returns a progress bar on stderr, or a disabled one when quiet
// is set.
func Progress(quiet bool) *progress.Reporter {
	var out io.Writer = os.Stderr
	if quiet {
		out = nil
	}
	return progress.New(out)
}
