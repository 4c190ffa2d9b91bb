// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package cache stores encoded recommendation responses keyed by request.
//
// Two backends implement Store:
//   - LRU: bounded in-process cache with TTL (default)
//   - BadgerStore: BadgerDB-backed cache that survives restarts
//
// Entries are opaque bytes; callers encode with goccy/go-json.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/config"
)

// Store is a TTL cache of encoded values.
type Store interface {
	// Get returns the value and true if present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the store's TTL.
	Set(ctx context.Context, key string, value []byte) error

	// Cleanup drops expired entries and reclaims space. It returns the
	// number of entries or files reclaimed.
	Cleanup(ctx context.Context) (int, error)

	// Backend names the implementation for metrics and logs.
	Backend() string

	Close() error
}

// New creates the store selected by cfg.Backend.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg *config.CacheConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.CacheBackendBadger:
		return OpenBadger(cfg.Path, cfg.TTL, logger)
	case config.CacheBackendMemory, "":
		return NewLRU(cfg.MaxEntries, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// GenerateKey builds a compact key from a kind and its parameters.
func GenerateKey(kind string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", kind, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", kind, hash[:16])
}
