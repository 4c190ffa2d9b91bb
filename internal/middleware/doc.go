// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package middleware provides the HTTP middleware of the recommendation API.

  - RequestID: propagates or generates X-Request-ID and stores a request
    scoped logger in the context
  - PrometheusMetrics: request count, latency and in-flight gauge

Both are plain http.HandlerFunc wrappers. The chi router adapts them:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

Handlers log through logging.Ctx(r.Context()), which carries the request ID.
*/
package middleware
