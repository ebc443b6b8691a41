// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

//go:build integration

/*
directions_server.go - In-Process OSRM Mock

Stand-in for an OSRM route service, for tests that exercise route
planning against a live HTTP boundary. Point GeoConfig.DirectionsURL at
URL() and the planner talks to the mock exactly as it would to a real
routing engine.

Every route request is captured with its profile, raw coordinate
segment, and query parameters. The default response is a minimal OSRM
route document whose totals are controlled by DistanceMeters and
DurationSeconds; ResponseStatus, ResponseBody, and ResponseFunc
override it for fault injection.

Mutate the response fields only while no request is in flight, the same
way tests reconfigure any httptest server between calls.
*/

package testinfra

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

// RouteCapture records one request the mock directions server received.
type RouteCapture struct {
	// Path is the full request path, including profile and coordinates.
	Path string

	// Profile is the OSRM routing profile, for example "driving".
	Profile string

	// Coordinates is the raw lon,lat;lon,lat waypoint segment.
	Coordinates string

	// Query holds the request query parameters.
	Query url.Values

	// ReceivedAt is when the request arrived.
	ReceivedAt time.Time
}

// MockDirectionsServer is an httptest-backed OSRM stand-in with
// request capture and configurable responses.
type MockDirectionsServer struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	captures []RouteCapture

	// ResponseStatus is the HTTP status for route requests when no
	// ResponseFunc is set. Zero means 200.
	ResponseStatus int

	// ResponseBody replaces the default route document when set.
	ResponseBody []byte

	// ResponseFunc, when set, handles requests entirely and the other
	// response fields are ignored.
	ResponseFunc http.HandlerFunc

	// DistanceMeters and DurationSeconds shape the default route
	// document. Zero values fall back to 1200 m and 900 s.
	DistanceMeters  float64
	DurationSeconds float64
}

// NewMockDirectionsServer starts the mock. Callers must Close it,
// usually via defer.
func NewMockDirectionsServer(t *testing.T) *MockDirectionsServer {
	t.Helper()

	m := &MockDirectionsServer{t: t}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the base URL of the mock, suitable for
// GeoConfig.DirectionsURL.
func (m *MockDirectionsServer) URL() string {
	return m.server.URL
}

// Close shuts the mock down.
func (m *MockDirectionsServer) Close() {
	m.server.Close()
}

// GetCaptures returns a copy of all captured requests.
func (m *MockDirectionsServer) GetCaptures() []RouteCapture {
	m.mu.Lock()
	defer m.mu.Unlock()

	captures := make([]RouteCapture, len(m.captures))
	copy(captures, m.captures)
	return captures
}

// ClearCaptures discards all captured requests.
func (m *MockDirectionsServer) ClearCaptures() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.captures = nil
}

// WaitForCaptures polls until at least count requests have been
// captured or the timeout elapses. Returns whether the count was
// reached.
func (m *MockDirectionsServer) WaitForCaptures(count int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		n := len(m.captures)
		m.mu.Unlock()

		if n >= count {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// handle captures the request and serves the configured response.
func (m *MockDirectionsServer) handle(w http.ResponseWriter, r *http.Request) {
	capture := RouteCapture{
		Path:       r.URL.Path,
		Query:      r.URL.Query(),
		ReceivedAt: time.Now(),
	}
	// Route requests look like /route/v1/{profile}/{lon,lat;lon,lat}.
	if rest, ok := strings.CutPrefix(r.URL.Path, "/route/v1/"); ok {
		if profile, coords, ok := strings.Cut(rest, "/"); ok {
			capture.Profile = profile
			capture.Coordinates = coords
		}
	}

	m.mu.Lock()
	m.captures = append(m.captures, capture)
	fn := m.ResponseFunc
	status := m.ResponseStatus
	body := m.ResponseBody
	distance := m.DistanceMeters
	duration := m.DurationSeconds
	m.mu.Unlock()

	if fn != nil {
		fn(w, r)
		return
	}

	if status == 0 {
		status = http.StatusOK
	}
	if body == nil {
		body = OSRMRouteDocument(capture.Coordinates, distance, duration)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		m.t.Logf("mock directions server: failed to write response: %v", err)
	}
}

// osrmDoc mirrors the OSRM route service response shape.
type osrmDoc struct {
	Code    string         `json:"code"`
	Message string         `json:"message,omitempty"`
	Routes  []osrmDocRoute `json:"routes"`
}

type osrmDocRoute struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Legs     []osrmDocLeg `json:"legs"`
}

type osrmDocLeg struct {
	Distance float64       `json:"distance"`
	Duration float64       `json:"duration"`
	Steps    []osrmDocStep `json:"steps"`
}

type osrmDocStep struct {
	Geometry osrmDocGeometry `json:"geometry"`
}

type osrmDocGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// OSRMRouteDocument builds a minimal OSRM route response for the given
// raw coordinate segment. One leg is produced per waypoint pair, each
// with a single straight-line step, and the totals are split evenly
// across legs. Zero distance or duration fall back to 1200 m and 900 s.
func OSRMRouteDocument(coordinates string, distanceMeters, durationSeconds float64) []byte {
	points := parseCoordinateSegment(coordinates)
	if len(points) < 2 {
		points = [][]float64{{0, 0}, {0, 0}}
	}

	if distanceMeters <= 0 {
		distanceMeters = 1200
	}
	if durationSeconds <= 0 {
		durationSeconds = 900
	}

	legCount := len(points) - 1
	legs := make([]osrmDocLeg, legCount)
	for i := range legs {
		legs[i] = osrmDocLeg{
			Distance: distanceMeters / float64(legCount),
			Duration: durationSeconds / float64(legCount),
			Steps: []osrmDocStep{{
				Geometry: osrmDocGeometry{
					Type:        "LineString",
					Coordinates: [][]float64{points[i], points[i+1]},
				},
			}},
		}
	}

	doc, _ := json.Marshal(osrmDoc{
		Code: "Ok",
		Routes: []osrmDocRoute{{
			Distance: distanceMeters,
			Duration: durationSeconds,
			Legs:     legs,
		}},
	})
	return doc
}

// OSRMErrorDocument builds an OSRM error response such as
// {"code":"NoRoute","message":"..."}.
func OSRMErrorDocument(code, message string) []byte {
	doc, _ := json.Marshal(osrmDoc{
		Code:    code,
		Message: message,
		Routes:  []osrmDocRoute{},
	})
	return doc
}

// parseCoordinateSegment splits a lon,lat;lon,lat segment into points,
// dropping anything malformed.
func parseCoordinateSegment(segment string) [][]float64 {
	pairs := strings.Split(segment, ";")
	points := make([][]float64, 0, len(pairs))
	for _, pair := range pairs {
		lonStr, latStr, ok := strings.Cut(pair, ",")
		if !ok {
			continue
		}
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		lat, latErr := strconv.ParseFloat(latStr, 64)
		if lonErr != nil || latErr != nil {
			continue
		}
		points = append(points, []float64{lon, lat})
	}
	return points
}
