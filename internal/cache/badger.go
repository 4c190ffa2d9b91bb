// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const keyPrefix = "recs:"

// BadgerStore implements Store on BadgerDB. Entry expiry uses Badger's
// native TTL.
type BadgerStore struct {
	db     *badger.DB
	ttl    time.Duration
	logger zerolog.Logger
}

// OpenBadger opens or creates a Badger database at path. An empty path
// opens an in-memory database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenBadger(path string, ttl time.Duration, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache at %q: %w", path, err)
	}
	return NewBadgerStore(db, ttl, logger), nil
}

// NewBadgerStore wraps an open database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBadgerStore(db *badger.DB, ttl time.Duration, logger zerolog.Logger) *BadgerStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BadgerStore{
		db:     db,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Str("backend", "badger").Logger(),
	}
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements Store.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(keyPrefix+key), value).WithTTL(s.ttl))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Cleanup implements Store by running value log GC until nothing is
// rewritten. In-memory databases have no value log and report zero.
func (s *BadgerStore) Cleanup(ctx context.Context) (int, error) {
	if s.db.Opts().InMemory {
		return 0, nil
	}

	rewritten := 0
	for ctx.Err() == nil {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return rewritten, fmt.Errorf("value log gc: %w", err)
		}
		rewritten++
	}
	if rewritten > 0 {
		s.logger.Debug().Int("rewritten", rewritten).Msg("Value log GC")
	}
	return rewritten, nil
}

// Backend implements Store.
func (s *BadgerStore) Backend() string { return "badger" }

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
