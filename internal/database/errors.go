// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/bookrec/internal/logging"
)

var (
	// ErrUnknownTable is returned for table names outside the fixed set
	// this package loads CSVs into.
	ErrUnknownTable = errors.New("unknown table")

	// ErrMissingColumn is returned when a required column is not present
	// in a loaded table.
	ErrMissingColumn = errors.New("missing column")
)

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource in error paths where Close errors are not
// actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
