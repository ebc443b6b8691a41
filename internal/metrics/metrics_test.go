// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &io_prometheus_client.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &io_prometheus_client.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("failed to read gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "places",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful INSERT query",
			operation: "INSERT",
			table:     "reviews",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query with short error",
			operation: "UPDATE",
			table:     "users",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "failed query with long error - should truncate to 50 chars",
			operation: "DELETE",
			table:     "sessions",
			duration:  50 * time.Millisecond,
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated properly"),
		},
		{
			name:      "fast query under 1ms",
			operation: "SELECT",
			table:     "favorites",
			duration:  500 * time.Microsecond,
			err:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Recording must not panic regardless of error shape
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}
}

// TestRecordDBQuery_ErrorTruncation verifies error labels are truncated at 50 chars
func TestRecordDBQuery_ErrorTruncation(t *testing.T) {
	longErr := errors.New(strings.Repeat("x", 80))
	RecordDBQuery("SELECT", "truncation_probe", time.Millisecond, longErr)

	truncated := strings.Repeat("x", 50)
	c := DBQueryErrors.WithLabelValues("SELECT", "truncation_probe", truncated)
	if got := counterValue(t, c); got != 1 {
		t.Errorf("truncated error label count = %v, want 1", got)
	}
}

func TestRecordSpatialOperation(t *testing.T) {
	before := counterValue(t, DBSpatialOperations.WithLabelValues("haversine"))
	RecordSpatialOperation("haversine")
	RecordSpatialOperation("bbox")
	after := counterValue(t, DBSpatialOperations.WithLabelValues("haversine"))
	if after != before+1 {
		t.Errorf("haversine operations = %v, want %v", after, before+1)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "successful GET request",
			method:     "GET",
			endpoint:   "/api/v1/places",
			statusCode: "200",
			duration:   25 * time.Millisecond,
		},
		{
			name:       "successful POST login",
			method:     "POST",
			endpoint:   "/api/v1/auth/login",
			statusCode: "200",
			duration:   150 * time.Millisecond,
		},
		{
			name:       "unauthorized request",
			method:     "GET",
			endpoint:   "/api/v1/feed",
			statusCode: "401",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "not found request",
			method:     "GET",
			endpoint:   "/api/v1/unknown",
			statusCode: "404",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "server error",
			method:     "POST",
			endpoint:   "/api/v1/geo/route",
			statusCode: "500",
			duration:   900 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counterValue(t, APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			after := counterValue(t, APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			if after != before+1 {
				t.Errorf("request count = %v, want %v", after, before+1)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := gaugeValue(t, APIActiveRequests)

	TrackActiveRequest(true)
	if got := gaugeValue(t, APIActiveRequests); got != before+1 {
		t.Errorf("active requests after inc = %v, want %v", got, before+1)
	}

	TrackActiveRequest(false)
	if got := gaugeValue(t, APIActiveRequests); got != before {
		t.Errorf("active requests after dec = %v, want %v", got, before)
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates overlapping requests
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	base := gaugeValue(t, APIActiveRequests)

	for i := 0; i < 5; i++ {
		TrackActiveRequest(true)
	}
	if got := gaugeValue(t, APIActiveRequests); got != base+5 {
		t.Errorf("active requests = %v, want %v", got, base+5)
	}
	for i := 0; i < 5; i++ {
		TrackActiveRequest(false)
	}
	if got := gaugeValue(t, APIActiveRequests); got != base {
		t.Errorf("active requests = %v, want %v", got, base)
	}
}

func TestRecordSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		duration time.Duration
	}{
		{name: "full search", kind: "search", duration: 12 * time.Millisecond},
		{name: "autocomplete", kind: "autocomplete", duration: 3 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counterValue(t, SearchQueriesTotal.WithLabelValues(tt.kind))
			RecordSearchQuery(tt.kind, tt.duration)
			after := counterValue(t, SearchQueriesTotal.WithLabelValues(tt.kind))
			if after != before+1 {
				t.Errorf("search queries = %v, want %v", after, before+1)
			}
		})
	}
}

func TestRecordGeocodeRequest(t *testing.T) {
	before := counterValue(t, GeocodeRequestsTotal.WithLabelValues("forward"))
	RecordGeocodeRequest("forward")
	RecordGeocodeRequest("reverse")
	after := counterValue(t, GeocodeRequestsTotal.WithLabelValues("forward"))
	if after != before+1 {
		t.Errorf("forward geocode requests = %v, want %v", after, before+1)
	}
}

func TestRecordRouteRequest(t *testing.T) {
	before := counterValue(t, RouteRequestsTotal.WithLabelValues("great_circle", "walk"))
	RecordRouteRequest("great_circle", "walk")
	RecordRouteRequest("directions", "drive")
	after := counterValue(t, RouteRequestsTotal.WithLabelValues("great_circle", "walk"))
	if after != before+1 {
		t.Errorf("route requests = %v, want %v", after, before+1)
	}
}

func TestCacheMetrics(t *testing.T) {
	CacheHits.WithLabelValues("places").Inc()
	CacheMisses.WithLabelValues("places").Inc()
	CacheSize.WithLabelValues("places").Set(42)
	CacheEvictions.WithLabelValues("places").Inc()

	if got := gaugeValue(t, CacheSize.WithLabelValues("places")); got != 42 {
		t.Errorf("cache size = %v, want 42", got)
	}
}

func TestWebSocketMetrics(t *testing.T) {
	before := gaugeValue(t, WSConnections)

	WSConnections.Inc()
	WSMessagesSent.Inc()
	WSMessagesReceived.Inc()
	WSErrors.WithLabelValues("write_failed").Inc()
	WSConnections.Dec()

	if got := gaugeValue(t, WSConnections); got != before {
		t.Errorf("websocket connections = %v, want %v", got, before)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	CircuitBreakerState.WithLabelValues("metrics-probe").Set(0)
	CircuitBreakerRequests.WithLabelValues("metrics-probe", "success").Inc()
	CircuitBreakerRequests.WithLabelValues("metrics-probe", "failure").Inc()
	CircuitBreakerRequests.WithLabelValues("metrics-probe", "rejected").Inc()
	CircuitBreakerConsecutiveFailures.WithLabelValues("metrics-probe").Set(3)
	CircuitBreakerTransitions.WithLabelValues("metrics-probe", "closed", "open").Inc()

	if got := gaugeValue(t, CircuitBreakerConsecutiveFailures.WithLabelValues("metrics-probe")); got != 3 {
		t.Errorf("consecutive failures = %v, want 3", got)
	}
	CircuitBreakerState.WithLabelValues("metrics-probe").Set(2)
	if got := gaugeValue(t, CircuitBreakerState.WithLabelValues("metrics-probe")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
}

func TestRecordEventPublished(t *testing.T) {
	before := counterValue(t, EventsPublished.WithLabelValues("place.created"))
	RecordEventPublished("place.created")
	after := counterValue(t, EventsPublished.WithLabelValues("place.created"))
	if after != before+1 {
		t.Errorf("events published = %v, want %v", after, before+1)
	}
}

func TestRecordEventConsumed(t *testing.T) {
	tests := []struct {
		name       string
		topic      string
		err        error
		wantResult string
	}{
		{name: "handled ok", topic: "review.created", err: nil, wantResult: "ok"},
		{name: "handler error", topic: "review.created", err: errors.New("boom"), wantResult: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counterValue(t, EventsConsumed.WithLabelValues(tt.topic, tt.wantResult))
			RecordEventConsumed(tt.topic, 2*time.Millisecond, tt.err)
			after := counterValue(t, EventsConsumed.WithLabelValues(tt.topic, tt.wantResult))
			if after != before+1 {
				t.Errorf("events consumed (%s) = %v, want %v", tt.wantResult, after, before+1)
			}
		})
	}
}

func TestSessionAndTokenMetrics(t *testing.T) {
	SetActiveSessions(17)
	if got := gaugeValue(t, SessionsActive); got != 17 {
		t.Errorf("active sessions = %v, want 17", got)
	}

	SetActiveTokens(4)
	if got := gaugeValue(t, TokensActive); got != 4 {
		t.Errorf("active tokens = %v, want 4", got)
	}

	before := counterValue(t, TokenOperationsTotal.WithLabelValues("create", "true"))
	RecordTokenOperation("create", true)
	RecordTokenOperation("revoke", false)
	after := counterValue(t, TokenOperationsTotal.WithLabelValues("create", "true"))
	if after != before+1 {
		t.Errorf("token operations = %v, want %v", after, before+1)
	}
	failBefore := counterValue(t, TokenOperationsTotal.WithLabelValues("delete", "false"))
	RecordTokenOperation("delete", false)
	failAfter := counterValue(t, TokenOperationsTotal.WithLabelValues("delete", "false"))
	if failAfter != failBefore+1 {
		t.Errorf("failed token operations = %v, want %v", failAfter, failBefore+1)
	}
}

func TestAppMetrics(t *testing.T) {
	AppInfo.WithLabelValues("2.0.0", "go1.24").Set(1)
	AppUptime.Set(120)

	if got := gaugeValue(t, AppUptime); got != 120 {
		t.Errorf("uptime = %v, want 120", got)
	}
}

func TestAPIRateLimitHits(t *testing.T) {
	before := counterValue(t, APIRateLimitHits.WithLabelValues("/api/v1/search"))
	APIRateLimitHits.WithLabelValues("/api/v1/search").Inc()
	after := counterValue(t, APIRateLimitHits.WithLabelValues("/api/v1/search"))
	if after != before+1 {
		t.Errorf("rate limit hits = %v, want %v", after, before+1)
	}
}

func TestDBConnectionPoolSize(t *testing.T) {
	DBConnectionPoolSize.Set(8)
	if got := gaugeValue(t, DBConnectionPoolSize); got != 8 {
		t.Errorf("pool size = %v, want 8", got)
	}
	DBConnectionPoolSize.Set(0)
}

// TestConcurrentMetricRecording verifies recording is safe under concurrency
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordDBQuery("SELECT", "concurrency_probe", time.Millisecond, nil)
				RecordAPIRequest("GET", "/concurrency-probe", "200", time.Millisecond)
				RecordSearchQuery("search", time.Millisecond)
				RecordGeocodeRequest("forward")
				RecordRouteRequest("great_circle", "bike")
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}()
	}
	wg.Wait()

	got := counterValue(t, APIRequestsTotal.WithLabelValues("GET", "/concurrency-probe", "200"))
	if got < 1000 {
		t.Errorf("concurrent request count = %v, want >= 1000", got)
	}
}

// TestMetricsRegistration verifies all metrics expose descriptors
func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		DBQueryDuration,
		DBQueryErrors,
		DBConnectionPoolSize,
		DBSpatialOperations,
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		SearchQueriesTotal,
		SearchQueryDuration,
		GeocodeRequestsTotal,
		RouteRequestsTotal,
		CacheHits,
		CacheMisses,
		CacheSize,
		CacheEvictions,
		WSConnections,
		WSMessagesSent,
		WSMessagesReceived,
		WSErrors,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		EventsPublished,
		EventsConsumed,
		EventProcessingDuration,
		SessionsActive,
		TokenOperationsTotal,
		TokensActive,
		AppInfo,
		AppUptime,
	}

	for _, c := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		c.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("collector has no descriptors")
		}
	}
}

// TestMetricGathering verifies the default registry gathers cleanly
func TestMetricGathering(t *testing.T) {
	RecordDBQuery("SELECT", "gather_probe", time.Millisecond, nil)
	RecordAPIRequest("GET", "/gather-probe", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordDBQuery(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordDBQuery("SELECT", "places", 10*time.Millisecond, nil)
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/places", "200", 25*time.Millisecond)
	}
}

func BenchmarkTrackActiveRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		TrackActiveRequest(true)
		TrackActiveRequest(false)
	}
}

func BenchmarkRecordRouteRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordRouteRequest("great_circle", "drive")
	}
}
