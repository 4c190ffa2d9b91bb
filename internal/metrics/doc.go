// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package metrics provides Prometheus metrics for the recommendation service.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the API router:

	curl http://localhost:5000/metrics

# Available Metrics

HTTP Metrics:
  - bookrec_api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status
  - bookrec_api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - bookrec_api_active_requests: Requests in flight (gauge)

Recommendation Metrics:
  - bookrec_recommendation_duration_seconds: Time spent building a response (histogram)
    Labels: kind (cluster, item)
  - bookrec_recommendation_unknown_users_total: Requests for users without data (counter)
    Labels: kind
  - bookrec_cache_hits_total / bookrec_cache_misses_total (counter)
    Labels: kind

Data Metrics:
  - bookrec_data_load_duration_seconds: Time spent loading an input artifact (histogram)
    Labels: source (user_clusters, booking_clusters, recs_matrix, duckdb)
  - bookrec_data_objects: Objects held in memory after loading (gauge)
    Labels: kind (users, items, user_clusters, booking_clusters)
  - bookrec_duckdb_query_duration_seconds / bookrec_duckdb_query_errors_total
    Labels: operation, table

# Usage

	start := time.Now()
	defer func() {
		metrics.RecordRecommendation("cluster", time.Since(start))
	}()
*/
package metrics
