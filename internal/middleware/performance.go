// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/localis-app/localis/internal/logging"
)

// slowRequestMS is the latency above which a request is logged as slow.
const slowRequestMS = 1000

// RequestMetrics is one observed request in the rolling window.
type RequestMetrics struct {
	Path       string
	Method     string
	DurationMS int64
	StatusCode int
	Timestamp  time.Time
}

// PerformanceMonitor keeps a rolling window of request timings and
// aggregates them per endpoint. The admin stats endpoint reports its
// output, which is why EndpointStats carries JSON tags.
type PerformanceMonitor struct {
	mu         sync.RWMutex
	window     []RequestMetrics
	maxWindow  int
	seenCounts map[string]int64
}

// EndpointStats is the aggregated view of one "METHOD /path" endpoint.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  int64   `json:"p50_ms"`
	P95Duration  int64   `json:"p95_ms"`
	P99Duration  int64   `json:"p99_ms"`
	MinDuration  int64   `json:"min_ms"`
	MaxDuration  int64   `json:"max_ms"`
}

// NewPerformanceMonitor creates a monitor holding at most maxWindow
// recent requests.
func NewPerformanceMonitor(maxWindow int) *PerformanceMonitor {
	if maxWindow <= 0 {
		maxWindow = 1000
	}
	return &PerformanceMonitor{
		window:     make([]RequestMetrics, 0, maxWindow),
		maxWindow:  maxWindow,
		seenCounts: make(map[string]int64),
	}
}

// RecordRequest appends one observation, evicting the oldest when the
// window is full.
func (pm *PerformanceMonitor) RecordRequest(metric *RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.window = append(pm.window, *metric)
	if len(pm.window) > pm.maxWindow {
		pm.window = pm.window[1:]
	}

	pm.seenCounts[metric.Method+" "+metric.Path]++
}

// GetStats aggregates the current window per endpoint, sorted by request
// count descending. Percentiles are computed over the windowed samples
// only, so long-gone outliers age out.
func (pm *PerformanceMonitor) GetStats() []EndpointStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	byEndpoint := make(map[string][]int64)
	for _, m := range pm.window {
		key := m.Method + " " + m.Path
		byEndpoint[key] = append(byEndpoint[key], m.DurationMS)
	}

	stats := make([]EndpointStats, 0, len(byEndpoint))
	for endpoint, durations := range byEndpoint {
		sorted := make([]int64, len(durations))
		copy(sorted, durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, d := range sorted {
			sum += d
		}

		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: int64(len(sorted)),
			AvgDuration:  float64(sum) / float64(len(sorted)),
			P50Duration:  percentile(sorted, 0.50),
			P95Duration:  percentile(sorted, 0.95),
			P99Duration:  percentile(sorted, 0.99),
			MinDuration:  sorted[0],
			MaxDuration:  sorted[len(sorted)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].RequestCount > stats[j].RequestCount
	})

	return stats
}

// TotalSeen returns the all-time request count for an endpoint key
// ("METHOD /path"), independent of the rolling window.
func (pm *PerformanceMonitor) TotalSeen(endpoint string) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.seenCounts[endpoint]
}

// Middleware wraps an http.Handler with timing capture. Requests slower
// than slowRequestMS are logged at warn level with their route.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Milliseconds()

		pm.RecordRequest(&RequestMetrics{
			Path:       r.URL.Path,
			Method:     r.Method,
			DurationMS: duration,
			StatusCode: sw.status,
			Timestamp:  time.Now(),
		})

		if duration > slowRequestMS {
			logging.Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int64("duration_ms", duration).
				Msg("Slow request detected")
		}
	})
}

// percentile selects the p-th percentile from an ascending-sorted slice.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}
