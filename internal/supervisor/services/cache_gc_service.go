// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CacheCleaner reclaims expired cache entries. cache.Store implements it.
type CacheCleaner interface {
	Cleanup(ctx context.Context) (int, error)
	Backend() string
}

// CacheGCService periodically runs Cleanup on the response cache.
type CacheGCService struct {
	store    CacheCleaner
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheGCService creates the service. A non-positive interval defaults
// to 5 minutes.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCacheGCService(store CacheCleaner, interval time.Duration, logger zerolog.Logger) *CacheGCService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CacheGCService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "cache-gc").Str("backend", store.Backend()).Logger(),
	}
}

// Serve implements suture.Service. Cleanup failures are logged and the
// loop continues.
func (s *CacheGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("cache gc running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.collect(ctx)
		}
	}
}

func (s *CacheGCService) collect(ctx context.Context) {
	start := time.Now()
	removed, err := s.store.Cleanup(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache cleanup failed")
		return
	}
	if removed > 0 {
		s.logger.Debug().
			Int("removed", removed).
			Dur("duration", time.Since(start)).
			Msg("cache cleanup complete")
	}
}

func (s *CacheGCService) String() string {
	return "cache-gc"
}
