// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package middleware provides infrastructure HTTP middleware for the API.

The components here are concern-neutral: they know nothing about places,
reviews or users, only about requests. Authentication and authorization
middleware live in internal/auth and internal/authz; this package covers
the plumbing around them.

Components:

  - RequestID: X-Request-ID passthrough or generation, wired into the
    logging context for request and correlation IDs
  - PrometheusMetrics: per-request counter, latency histogram and active
    request gauge via internal/metrics
  - Compression: pooled gzip for clients that accept it
  - PerformanceMonitor: rolling per-endpoint latency percentiles served
    by the admin stats endpoint

All middleware uses the http.HandlerFunc shape except
PerformanceMonitor.Middleware, which wraps an http.Handler so it can sit
directly in a chi Use chain.

Usage:

	mon := middleware.NewPerformanceMonitor(1000)

	handler := middleware.RequestID(
	    middleware.PrometheusMetrics(
	        middleware.Compression(businessLogic),
	    ),
	)

Thread safety: RequestID carries state only in the request context,
Compression pools writers per request, PerformanceMonitor guards its
window with an RWMutex, and the Prometheus collectors are atomic.
*/
package middleware
