// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bookrec/config.yaml",
	"/etc/bookrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults. These are applied
// first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              5000,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Data: DataConfig{
			UserClusters:    "users.txt",
			BookingClusters: "bookings.txt",
			RecsMatrix:      "ug_bg_recs.mtx",
			BookingsCSV:     "bookings.csv",
			UsersCSV:        "users.csv",
			PropertiesCSV:   "properties.csv",
			// Content-based recommendations are disabled when empty.
			PropertyFeaturesCSV: "",
		},
		Database: DatabaseConfig{
			Path:      "",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Recommend: RecommendConfig{
			DefaultTopClusters: 3,
			DefaultTopItems:    10,
			MaxTop:             100,
			MinItemsPerCluster: 0,
			FeatureThreshold:   0.5,
			ActiveFlag:         -1,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    CacheBackendMemory,
			Path:       "/data/bookrec-cache",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
			GCInterval: 10 * time.Minute,
		},
		Clustering: ClusteringConfig{
			K:                    1200,
			MinObjectsPerCluster: 5,
			SearchWidth:          20,
			MaxIterations:        25,
			Tolerance:            1e-4,
			Seed:                 42,
			Workers:              runtime.NumCPU(),
			TFIDF:                TFIDFAuto,
			ExplainThreshold:     0.7,
		},
		Similarity: SimilarityConfig{
			TopK:       0,
			ColumnNorm: "l1",
		},
	}
}

// LoadWithKoanf loads configuration from defaults, the first config file
// found (see findConfigFile) and environment variables, then validates it.
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is LoadWithKoanf with an explicit config file. An empty path
// skips the file layer.
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first of
// DefaultConfigPaths that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as
// strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower case) to config paths.
var envMappings = map[string]string{
	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Data files
	"ug_file_path":               "data.user_clusters",
	"bg_file_path":               "data.booking_clusters",
	"ug_bg_recs_matrix_path":     "data.recs_matrix",
	"booking_feature_file_path":  "data.bookings_csv",
	"user_feature_file_path":     "data.users_csv",
	"property_file_path":         "data.properties_csv",
	"property_feature_file_path": "data.property_features_csv",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Recommendation
	"recommend_top_clusters":          "recommend.default_top_clusters",
	"recommend_top_items":             "recommend.default_top_items",
	"recommend_max_top":               "recommend.max_top",
	"recommend_min_items_per_cluster": "recommend.min_items_per_cluster",
	"recommend_feature_threshold":     "recommend.feature_threshold",
	"recommend_active_flag":           "recommend.active_flag",

	// Cache
	"cache_enabled":     "cache.enabled",
	"cache_backend":     "cache.backend",
	"cache_path":        "cache.path",
	"cache_ttl":         "cache.ttl",
	"cache_max_entries": "cache.max_entries",
	"cache_gc_interval": "cache.gc_interval",

	// Clustering
	"clustering_k":                 "clustering.k",
	"clustering_min_objects":       "clustering.min_objects_per_cluster",
	"clustering_search_width":      "clustering.search_width",
	"clustering_max_iterations":    "clustering.max_iterations",
	"clustering_tolerance":         "clustering.tolerance",
	"clustering_seed":              "clustering.seed",
	"clustering_workers":           "clustering.workers",
	"clustering_tfidf":             "clustering.tfidf",
	"clustering_explain_threshold": "clustering.explain_threshold",

	// Similarity
	"similarity_top_k":       "similarity.top_k",
	"similarity_column_norm": "similarity.column_norm",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - UG_FILE_PATH -> data.user_clusters
//   - CACHE_BACKEND -> cache.backend
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
