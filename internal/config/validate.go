// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/bookrec/internal/sparse"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks values that every command depends on.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateClustering(); err != nil {
		return err
	}
	return c.validateSimilarity()
}

// ValidateServing additionally requires the files the HTTP server loads
// at startup.
func (c *Config) ValidateServing() error {
	required := map[string]string{
		"UG_FILE_PATH":              c.Data.UserClusters,
		"BG_FILE_PATH":              c.Data.BookingClusters,
		"UG_BG_RECS_MATRIX_PATH":    c.Data.RecsMatrix,
		"BOOKING_FEATURE_FILE_PATH": c.Data.BookingsCSV,
		"USER_FEATURE_FILE_PATH":    c.Data.UsersCSV,
		"PROPERTY_FILE_PATH":        c.Data.PropertiesCSV,
	}
	var missing []string
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing data paths %s", ErrInvalidConfig, strings.Join(sortedCopy(missing), ", "))
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "":
	default:
		return fmt.Errorf("%w: LOG_LEVEL %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("%w: LOG_FORMAT %q must be json or console", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: HTTP_PORT %d must be between 1 and 65535", ErrInvalidConfig, c.Server.Port)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("%w: RATE_LIMIT_REQUESTS must be positive", ErrInvalidConfig)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("%w: RATE_LIMIT_WINDOW must be positive", ErrInvalidConfig)
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxTop < 1 {
		return fmt.Errorf("%w: recommend.max_top must be positive", ErrInvalidConfig)
	}
	if r.DefaultTopClusters < 1 || r.DefaultTopClusters > r.MaxTop {
		return fmt.Errorf("%w: recommend.default_top_clusters %d not in [1,%d]", ErrInvalidConfig, r.DefaultTopClusters, r.MaxTop)
	}
	if r.DefaultTopItems < 1 || r.DefaultTopItems > r.MaxTop {
		return fmt.Errorf("%w: recommend.default_top_items %d not in [1,%d]", ErrInvalidConfig, r.DefaultTopItems, r.MaxTop)
	}
	if r.MinItemsPerCluster < 0 {
		return fmt.Errorf("%w: recommend.min_items_per_cluster must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	switch c.Cache.Backend {
	case CacheBackendMemory:
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("%w: cache.max_entries must be positive", ErrInvalidConfig)
		}
	case CacheBackendBadger:
		if c.Cache.Path == "" {
			return fmt.Errorf("%w: cache.path is required for the badger backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: CACHE_BACKEND %q must be %s or %s", ErrInvalidConfig, c.Cache.Backend, CacheBackendMemory, CacheBackendBadger)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache.ttl must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateClustering() error {
	cl := c.Clustering
	if cl.K < 1 {
		return fmt.Errorf("%w: clustering.k must be positive", ErrInvalidConfig)
	}
	if cl.MinObjectsPerCluster < 1 {
		return fmt.Errorf("%w: clustering.min_objects_per_cluster must be positive", ErrInvalidConfig)
	}
	if cl.SearchWidth < 0 || cl.MaxIterations < 0 || cl.Workers < 0 || cl.Tolerance < 0 {
		return fmt.Errorf("%w: clustering settings must not be negative", ErrInvalidConfig)
	}
	switch cl.TFIDF {
	case "", TFIDFAuto, TFIDFOn, TFIDFOff:
	default:
		return fmt.Errorf("%w: clustering.tfidf must be auto, on or off", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateSimilarity() error {
	if c.Similarity.TopK < 0 {
		return fmt.Errorf("%w: similarity.top_k must not be negative", ErrInvalidConfig)
	}
	if _, err := sparse.ParseNorm(c.Similarity.ColumnNorm); err != nil {
		return fmt.Errorf("%w: similarity.column_norm: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Norm returns the parsed column normalization.
func (s SimilarityConfig) Norm() sparse.Norm {
	n, _ := sparse.ParseNorm(s.ColumnNorm) //nolint:errcheck // checked by Validate
	return n
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
