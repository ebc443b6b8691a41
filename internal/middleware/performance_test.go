// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPerformanceMonitor_RecordAndStats(t *testing.T) {
	pm := NewPerformanceMonitor(100)

	durations := []int64{10, 20, 30, 40, 50}
	for _, d := range durations {
		pm.RecordRequest(&RequestMetrics{
			Path:       "/api/v1/places",
			Method:     http.MethodGet,
			DurationMS: d,
			StatusCode: http.StatusOK,
			Timestamp:  time.Now(),
		})
	}

	stats := pm.GetStats()
	if len(stats) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(stats))
	}

	s := stats[0]
	if s.Endpoint != "GET /api/v1/places" {
		t.Errorf("unexpected endpoint key: %q", s.Endpoint)
	}
	if s.RequestCount != 5 {
		t.Errorf("expected request count 5, got %d", s.RequestCount)
	}
	if s.AvgDuration != 30.0 {
		t.Errorf("expected avg 30.0, got %f", s.AvgDuration)
	}
	if s.MinDuration != 10 || s.MaxDuration != 50 {
		t.Errorf("expected min/max 10/50, got %d/%d", s.MinDuration, s.MaxDuration)
	}
	if s.P50Duration != 30 {
		t.Errorf("expected p50 30, got %d", s.P50Duration)
	}
}

func TestPerformanceMonitor_WindowEviction(t *testing.T) {
	pm := NewPerformanceMonitor(3)

	for i := 0; i < 5; i++ {
		pm.RecordRequest(&RequestMetrics{
			Path:       "/api/v1/search",
			Method:     http.MethodGet,
			DurationMS: int64(i * 10),
			StatusCode: http.StatusOK,
			Timestamp:  time.Now(),
		})
	}

	stats := pm.GetStats()
	if len(stats) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(stats))
	}

	// Only the newest 3 samples (20, 30, 40) remain in the window.
	if stats[0].RequestCount != 3 {
		t.Errorf("expected windowed count 3, got %d", stats[0].RequestCount)
	}
	if stats[0].MinDuration != 20 {
		t.Errorf("expected oldest samples evicted, min is %d", stats[0].MinDuration)
	}

	// The all-time counter keeps counting past the window.
	if seen := pm.TotalSeen("GET /api/v1/search"); seen != 5 {
		t.Errorf("expected total seen 5, got %d", seen)
	}
}

func TestPerformanceMonitor_SortsByRequestCount(t *testing.T) {
	pm := NewPerformanceMonitor(100)

	for i := 0; i < 3; i++ {
		pm.RecordRequest(&RequestMetrics{Path: "/api/v1/feed", Method: http.MethodGet, DurationMS: 5})
	}
	pm.RecordRequest(&RequestMetrics{Path: "/api/v1/profile", Method: http.MethodGet, DurationMS: 5})

	stats := pm.GetStats()
	if len(stats) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(stats))
	}
	if stats[0].Endpoint != "GET /api/v1/feed" {
		t.Errorf("expected busiest endpoint first, got %q", stats[0].Endpoint)
	}
}

func TestPerformanceMonitor_EmptyStats(t *testing.T) {
	pm := NewPerformanceMonitor(10)

	if stats := pm.GetStats(); len(stats) != 0 {
		t.Errorf("expected no stats for empty monitor, got %d", len(stats))
	}
}

func TestPerformanceMonitor_DefaultWindow(t *testing.T) {
	pm := NewPerformanceMonitor(0)

	if pm.maxWindow != 1000 {
		t.Errorf("expected default window 1000, got %d", pm.maxWindow)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	pm := NewPerformanceMonitor(10)

	handler := pm.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/geo/route", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected status 202 through middleware, got %d", rec.Code)
	}

	stats := pm.GetStats()
	if len(stats) != 1 {
		t.Fatalf("expected 1 recorded endpoint, got %d", len(stats))
	}
	if stats[0].Endpoint != "POST /api/v1/geo/route" {
		t.Errorf("unexpected endpoint key: %q", stats[0].Endpoint)
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []int64
		p      float64
		want   int64
	}{
		{"empty", nil, 0.95, 0},
		{"single", []int64{7}, 0.50, 7},
		{"p50 of ten", []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.50, 5},
		{"p95 of ten", []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.95, 9},
		{"p99 of ten", []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.99, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percentile(tt.sorted, tt.p); got != tt.want {
				t.Errorf("percentile(%v, %v) = %d, want %d", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestPerformanceMonitor_ConcurrentRecording(t *testing.T) {
	pm := NewPerformanceMonitor(1000)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()
			for j := 0; j < 50; j++ {
				pm.RecordRequest(&RequestMetrics{
					Path:       "/api/v1/places",
					Method:     http.MethodGet,
					DurationMS: int64(j),
				})
				pm.GetStats()
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if seen := pm.TotalSeen("GET /api/v1/places"); seen != 500 {
		t.Errorf("expected 500 recorded requests, got %d", seen)
	}
}
