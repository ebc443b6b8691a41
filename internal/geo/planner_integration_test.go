// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

//go:build integration

package geo

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/models"
	"github.com/localis-app/localis/internal/testinfra"
)

// TestRoutePlannerFailover drives the planner against a live OSRM mock
// through a full outage cycle: healthy responses, a failing service
// that degrades every request to the great-circle fallback, and an
// open circuit that stops traffic to the service entirely.
func TestRoutePlannerFailover(t *testing.T) {
	mock := testinfra.NewMockDirectionsServer(t)
	defer mock.Close()
	mock.DistanceMeters = 4200
	mock.DurationSeconds = 1260

	planner := NewRoutePlanner(&config.GeoConfig{
		DirectionsURL:       mock.URL(),
		DirectionsTimeout:   5 * time.Second,
		DirectionsRateLimit: 100,
	})

	ctx := context.Background()
	waypoints := []models.RoutePoint{
		{Latitude: 59.4372, Longitude: 24.7454},
		{Latitude: 59.4401, Longitude: 24.7535},
	}

	// Healthy service: the route comes from the directions backend.
	route, err := planner.Plan(ctx, waypoints, models.TravelModeWalk)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if route.Source != models.RouteSourceDirections {
		t.Fatalf("route source = %q, want %q", route.Source, models.RouteSourceDirections)
	}
	if route.DistanceMeters != 4200 {
		t.Errorf("distance = %.0f, want 4200", route.DistanceMeters)
	}

	captures := mock.GetCaptures()
	if len(captures) != 1 {
		t.Fatalf("captures = %d, want 1", len(captures))
	}
	if captures[0].Profile != "walking" {
		t.Errorf("profile = %q, want walking", captures[0].Profile)
	}
	if captures[0].Coordinates != "24.745400,59.437200;24.753500,59.440100" {
		t.Errorf("coordinates = %q, want lon,lat pairs at 6 decimals", captures[0].Coordinates)
	}
	if got := captures[0].Query.Get("geometries"); got != "geojson" {
		t.Errorf("geometries = %q, want geojson", got)
	}

	// Failing service: every request degrades to the fallback without
	// surfacing an error. Enough failures accumulate to trip the
	// breaker partway through.
	mock.ResponseStatus = http.StatusNotFound
	for i := 0; i < 12; i++ {
		route, err = planner.Plan(ctx, waypoints, models.TravelModeWalk)
		if err != nil {
			t.Fatalf("Plan() during outage error = %v", err)
		}
		if route.Source != models.RouteSourceGreatCircle {
			t.Fatalf("outage route %d source = %q, want %q", i, route.Source, models.RouteSourceGreatCircle)
		}
	}

	// Open circuit: requests are rejected before reaching the service.
	mock.ClearCaptures()
	route, err = planner.Plan(ctx, waypoints, models.TravelModeWalk)
	if err != nil {
		t.Fatalf("Plan() with open circuit error = %v", err)
	}
	if route.Source != models.RouteSourceGreatCircle {
		t.Fatalf("open-circuit route source = %q, want %q", route.Source, models.RouteSourceGreatCircle)
	}
	if got := mock.GetCaptures(); len(got) != 0 {
		t.Errorf("open circuit still sent %d requests to the service", len(got))
	}
}

// TestRoutePlannerNoRouteFromService checks that an OSRM NoRoute
// answer falls back instead of erroring.
func TestRoutePlannerNoRouteFromService(t *testing.T) {
	mock := testinfra.NewMockDirectionsServer(t)
	defer mock.Close()
	mock.ResponseBody = testinfra.OSRMErrorDocument("NoRoute", "no segment close enough to the coordinates")

	planner := NewRoutePlanner(&config.GeoConfig{
		DirectionsURL:       mock.URL(),
		DirectionsTimeout:   5 * time.Second,
		DirectionsRateLimit: 100,
	})

	route, err := planner.Plan(context.Background(), []models.RoutePoint{
		{Latitude: 59.4372, Longitude: 24.7454},
		{Latitude: 78.2232, Longitude: 15.6267},
	}, models.TravelModeDrive)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if route.Source != models.RouteSourceGreatCircle {
		t.Fatalf("route source = %q, want %q", route.Source, models.RouteSourceGreatCircle)
	}
	if !mock.WaitForCaptures(1, time.Second) {
		t.Error("service never received the route request")
	}
}
