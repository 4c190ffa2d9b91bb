// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package config provides centralized configuration for the bookrec server and
its offline tools.

Configuration is layered with Koanf v2:
 1. Defaults: built-in values from defaultConfig()
 2. Config File: optional YAML (config.yaml, or the path in CONFIG_PATH)
 3. Environment Variables: explicit mappings, highest priority

Config is immutable after loading and safe for concurrent reads.

Example:

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	if err := cfg.ValidateServing(); err != nil {
	    log.Fatal(err)
	}
*/
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Server     ServerConfig     `koanf:"server"`
	Data       DataConfig       `koanf:"data"`
	Database   DatabaseConfig   `koanf:"database"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Cache      CacheConfig      `koanf:"cache"`
	Clustering ClusteringConfig `koanf:"clustering"`
	Similarity SimilarityConfig `koanf:"similarity"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DataConfig locates the files the server loads at startup and the
// offline tools read or write.
type DataConfig struct {
	// UserClusters is the user cluster descriptor file.
	UserClusters string `koanf:"user_clusters"`

	// BookingClusters is the booking cluster descriptor file.
	BookingClusters string `koanf:"booking_clusters"`

	// RecsMatrix is the user-cluster × booking-cluster Matrix Market file.
	RecsMatrix string `koanf:"recs_matrix"`

	BookingsCSV         string `koanf:"bookings_csv"`
	UsersCSV            string `koanf:"users_csv"`
	PropertiesCSV       string `koanf:"properties_csv"`
	PropertyFeaturesCSV string `koanf:"property_features_csv"`
}

// DatabaseConfig tunes the embedded DuckDB instance used to load and
// aggregate the CSV inputs.
type DatabaseConfig struct {
	// Path is the database file. Empty keeps everything in memory.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// RecommendConfig holds serving-time recommendation defaults.
type RecommendConfig struct {
	DefaultTopClusters int `koanf:"default_top_clusters"`
	DefaultTopItems    int `koanf:"default_top_items"`
	MaxTop             int `koanf:"max_top"`

	// MinItemsPerCluster masks clusters with fewer available items. Zero
	// uses the request's top_items value.
	MinItemsPerCluster int `koanf:"min_items_per_cluster"`

	// FeatureThreshold filters user, cluster and summary features.
	FeatureThreshold float64 `koanf:"feature_threshold"`

	// ActiveFlag is the properties.active value that marks a bookable item.
	ActiveFlag int `koanf:"active_flag"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Backend    string        `koanf:"backend"` // memory or badger
	Path       string        `koanf:"path"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// ClusteringConfig configures the offline clustering tool.
type ClusteringConfig struct {
	K                    int     `koanf:"k"`
	MinObjectsPerCluster int     `koanf:"min_objects_per_cluster"`
	SearchWidth          int     `koanf:"search_width"`
	MaxIterations        int     `koanf:"max_iterations"`
	Tolerance            float64 `koanf:"tolerance"`
	Seed                 int64   `koanf:"seed"`
	Workers              int     `koanf:"workers"`

	// TFIDF selects when feature columns are reweighted before
	// partitioning: auto (user features only), on or off.
	TFIDF string `koanf:"tfidf"`

	// ExplainThreshold selects the features written to a cluster's
	// Explanation block.
	ExplainThreshold float64 `koanf:"explain_threshold"`
}

// SimilarityConfig configures similarity construction.
type SimilarityConfig struct {
	TopK       int    `koanf:"top_k"`
	ColumnNorm string `koanf:"column_norm"` // none, l1 or l2
}

// Clustering TF-IDF modes.
const (
	TFIDFAuto = "auto"
	TFIDFOn   = "on"
	TFIDFOff  = "off"
)

// CacheBackend values.
const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
)
