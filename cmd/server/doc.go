// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package main is the entry point of the Bookrec recommendation server.

The server loads the offline artifacts (user and booking cluster
descriptors plus the cluster recommendation matrix), imports the feature
CSVs into DuckDB and serves recommendations over HTTP.

# Application Architecture

	RootSupervisor ("bookrec")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── Cache GC (when the cache is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Startup order:

 1. Configuration: Koanf v2 with config file and environment variables
 2. Logging: zerolog with JSON or console output
 3. Database: DuckDB, in memory unless DUCKDB_PATH is set
 4. Dataset: descriptors, recommendation matrix and CSV imports
 5. Cache: in-memory LRU or BadgerDB (optional)
 6. Supervisor Tree: Suture v4 process supervision
 7. HTTP Server: Chi router with middleware stack

Any loading failure is fatal: the server never serves a partial dataset.

# Configuration

	Priority: Environment variables > Config file > Defaults

Required data files:

	UG_FILE_PATH=users.txt                  # user cluster descriptor
	BG_FILE_PATH=bookings.txt               # booking cluster descriptor
	UG_BG_RECS_MATRIX_PATH=recs.mtx         # Matrix Market recommendations
	BOOKING_FEATURE_FILE_PATH=bookings.csv
	USER_FEATURE_FILE_PATH=users.csv
	PROPERTY_FILE_PATH=properties.csv

Optional:

	PROPERTY_FEATURE_FILE_PATH=property_features.csv  # enables content recs
	HTTP_PORT=5000
	LOG_LEVEL=info
	CACHE_ENABLED=true
	CACHE_BACKEND=memory                    # memory or badger

# Endpoints

	GET /cluster/recs?uid=&top=&top_items=
	GET /item/recs?uid=&top=
	GET /ping
	GET /health
	GET /metrics
	GET /swagger/*     Swagger UI, OpenAPI document at /swagger/doc.json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within HTTP_SHUTDOWN_TIMEOUT before the process exits.
*/
package main
