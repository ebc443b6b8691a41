// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package declares the application's metric families using promauto, so every
metric registers with the default Prometheus registry at package load. Other
packages record into these families directly or through the helper functions.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Database query performance (DuckDB)
  - Search, geocoding and routing volume
  - Cache hit/miss rates
  - WebSocket connection counts
  - Domain event publishing and consumption
  - Outbound circuit breaker state
  - Session and personal access token activity

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl -k https://localhost:8443/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - duckdb_connection_pool_size: Connections in use (gauge)
  - duckdb_spatial_operations_total: Spatial query operations (counter)
    Labels: operation_type (haversine, bbox)

Search and Geo Metrics:
  - search_queries_total: Search queries (counter)
    Labels: kind (search, autocomplete)
  - search_query_duration_seconds: Search latency (histogram)
    Labels: kind
  - geocode_requests_total: Geocoding requests (counter)
    Labels: direction (forward, reverse)
  - route_requests_total: Route planning requests (counter)
    Labels: source (directions, great_circle), mode (walk, drive, bike)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests through the breaker (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Consecutive failures (gauge)
    Labels: name
  - circuit_breaker_state_transitions_total: State transitions (counter)
    Labels: name, from_state, to_state

Cache Metrics:
  - cache_hits_total / cache_misses_total: Cache efficiency (counters)
    Labels: cache_type
  - cache_entries: Current entries (gauge)
    Labels: cache_type
  - cache_evictions_total: TTL evictions (counter)
    Labels: cache_type

WebSocket Metrics:
  - websocket_connections: Active connections (gauge)
  - websocket_messages_sent_total / websocket_messages_received_total (counters)
  - websocket_errors_total (counter)
    Labels: error_type

Event Metrics:
  - events_published_total: Domain events published (counter)
    Labels: topic
  - events_consumed_total: Domain events consumed (counter)
    Labels: topic, result (ok, error)
  - event_processing_duration_seconds: Handler latency (histogram)
    Labels: topic

Session and Token Metrics:
  - sessions_active: Active sessions (gauge)
  - token_operations_total: Token operations (counter)
    Labels: operation, success
  - tokens_active: Active tokens (gauge)

System Metrics:
  - app_info: Version and build info (gauge, always 1)
    Labels: version, go_version
  - app_uptime_seconds: Uptime (gauge)

# Usage Example

Recording API metrics from middleware:

	start := time.Now()
	next.ServeHTTP(wrapped, r)
	metrics.RecordAPIRequest(r.Method, r.URL.Path, strconv.Itoa(wrapped.statusCode), time.Since(start))

Recording database query metrics:

	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("SELECT", "places", time.Since(start), err)

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'localis'
	    scheme: https
	    tls_config:
	      insecure_skip_verify: true
	    static_configs:
	      - targets: ['localhost:8443']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

Example PromQL queries:

	# API request rate
	rate(api_requests_total[5m])

	# API p95 latency
	histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))

	# Cache hit rate
	sum(rate(cache_hits_total[5m])) / (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

	# Route fallback share
	rate(route_requests_total{source="great_circle"}[15m]) / ignoring(source) group_left sum without(source) (rate(route_requests_total[15m]))

Example alert rule:

	groups:
	  - name: localis
	    rules:
	      - alert: CircuitBreakerOpen
	        expr: circuit_breaker_state == 2
	        for: 5m
	        labels:
	          severity: warning
	        annotations:
	          summary: "Circuit breaker {{ $labels.name }} is open"

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

Label values must stay bounded: endpoints are recorded as route patterns rather
than raw URLs, error types are truncated, and no label ever carries user input,
user identifiers or raw coordinates.
*/
package metrics
