// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
planner.go - Route Planner with Circuit Breaker and Fallback

This file provides the RoutePlanner, the single entry point for route
requests. It wraps the optional DirectionsClient in a circuit breaker
and falls back to great-circle estimates whenever directions are
unavailable, failing, or rejected by an open circuit.

Circuit Breaker Configuration:
  - Name: "directions-api"
  - MaxRequests: 3 (half-open state allows 3 test requests)
  - Interval: 60s (counters reset every minute in closed state)
  - Timeout: 120s (open state duration before half-open)
  - ReadyToTrip: Opens when failure rate >= 60% with >= 10 requests

Fallback Behavior:
Every route request returns a usable route. When the directions call
fails for any reason the planner synthesizes per-leg great-circle
geometry and estimates durations from mode travel speeds. The Source
field on the returned route tells callers which path produced it.

Related Files:
  - directions.go: OSRM client used as the primary source
  - haversine.go: Geodesic math for the fallback path
*/

//nolint:staticcheck // File documentation, not package doc
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/metrics"
	"github.com/localis-app/localis/internal/models"
)

// cbName identifies the directions circuit breaker in logs and metrics.
const cbName = "directions-api"

// Average travel speeds used for great-circle duration estimates.
const (
	walkSpeedKMH  = 5.0
	bikeSpeedKMH  = 16.0
	driveSpeedKMH = 60.0
)

const (
	// interpolationStepKM is the target spacing between synthesized
	// geometry points on a great-circle leg.
	interpolationStepKM = 25.0

	// maxInterpolationSteps caps geometry size for very long legs.
	maxInterpolationSteps = 128

	// maxRouteWaypoints bounds a single route request.
	maxRouteWaypoints = 25
)

var (
	// ErrNotEnoughWaypoints is returned when fewer than two waypoints
	// are supplied.
	ErrNotEnoughWaypoints = errors.New("route requires at least two waypoints")

	// ErrTooManyWaypoints is returned when the waypoint count exceeds
	// the per-request limit.
	ErrTooManyWaypoints = fmt.Errorf("route accepts at most %d waypoints", maxRouteWaypoints)

	// ErrInvalidTravelMode is returned for unrecognized travel modes.
	ErrInvalidTravelMode = errors.New("invalid travel mode")
)

// RoutePlanner produces routes between waypoints.
//
// The planner prefers the configured directions service and degrades to
// great-circle estimates when it is absent or failing. All methods are
// safe for concurrent use.
type RoutePlanner struct {
	directions *DirectionsClient
	cb         *gobreaker.CircuitBreaker[*models.Route]
}

// NewRoutePlanner creates a route planner from the geo configuration.
//
// When no directions URL is configured the planner runs in fallback-only
// mode and no circuit breaker is created.
func NewRoutePlanner(cfg *config.GeoConfig) *RoutePlanner {
	p := &RoutePlanner{
		directions: NewDirectionsClient(cfg),
	}

	if p.directions == nil {
		logging.Info().Msg("No directions service configured, routes use great-circle estimates")
		return p
	}

	// Initialize metrics to closed state
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	p.cb = gobreaker.NewCircuitBreaker[*models.Route](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Uint32("requests", counts.Requests).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening directions circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().
				Str("from", fromStr).
				Str("to", toStr).
				Msg("[CIRCUIT BREAKER] Directions state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return p
}

// Plan produces a route through the given waypoints.
//
// The route comes from the directions service when one is configured and
// healthy, and from great-circle estimates otherwise. An empty mode
// defaults to driving. Plan only fails on invalid input; service
// failures degrade to the fallback instead of surfacing an error.
func (p *RoutePlanner) Plan(ctx context.Context, waypoints []models.RoutePoint, mode string) (*models.Route, error) {
	if len(waypoints) < 2 {
		return nil, ErrNotEnoughWaypoints
	}
	if len(waypoints) > maxRouteWaypoints {
		return nil, ErrTooManyWaypoints
	}
	if mode == "" {
		mode = models.TravelModeDrive
	}
	if !models.IsValidTravelMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTravelMode, mode)
	}

	if p.directions == nil {
		return p.recordRoute(greatCircleRoute(waypoints, mode), mode), nil
	}

	route, err := p.execute(ctx, waypoints, mode)
	if err != nil {
		logging.Warn().
			Err(err).
			Int("waypoints", len(waypoints)).
			Str("mode", mode).
			Msg("Directions request failed, using great-circle fallback")
		return p.recordRoute(greatCircleRoute(waypoints, mode), mode), nil
	}

	return p.recordRoute(route, mode), nil
}

// recordRoute records the route request metric and returns the route.
func (p *RoutePlanner) recordRoute(route *models.Route, mode string) *models.Route {
	metrics.RecordRouteRequest(route.Source, mode)
	return route
}

// execute runs the directions request through the circuit breaker and
// classifies the outcome for metrics.
func (p *RoutePlanner) execute(ctx context.Context, waypoints []models.RoutePoint, mode string) (*models.Route, error) {
	route, err := p.cb.Execute(func() (*models.Route, error) {
		return p.directions.Route(ctx, waypoints, mode)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbName, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Directions request rejected")
			return nil, err
		}

		metrics.CircuitBreakerRequests.WithLabelValues(cbName, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).
			Set(float64(p.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbName, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	return route, nil
}

// DirectionsAvailable reports whether a directions service is configured.
func (p *RoutePlanner) DirectionsAvailable() bool {
	return p.directions != nil
}

// BreakerState returns the current circuit breaker state name for
// status reporting. Returns "disabled" in fallback-only mode.
func (p *RoutePlanner) BreakerState() string {
	if p.cb == nil {
		return "disabled"
	}
	return stateToString(p.cb.State())
}

// greatCircleRoute synthesizes a route from straight geodesic legs.
//
// Distances come from the haversine formula and durations from average
// mode speeds. Leg geometry is interpolated along the great circle so
// map rendering still follows the curved path.
func greatCircleRoute(waypoints []models.RoutePoint, mode string) *models.Route {
	speed := modeSpeedKMH(mode)

	legs := make([]models.RouteLeg, 0, len(waypoints)-1)
	var totalMeters, totalSeconds float64

	for i := 0; i < len(waypoints)-1; i++ {
		from, to := waypoints[i], waypoints[i+1]

		distKM := Distance(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
		durationSec := distKM / speed * 3600

		legs = append(legs, models.RouteLeg{
			DistanceMeters:  distKM * 1000,
			DurationSeconds: durationSec,
			Geometry:        geodesicLine(from, to, distKM),
		})

		totalMeters += distKM * 1000
		totalSeconds += durationSec
	}

	return &models.Route{
		Mode:            mode,
		Source:          models.RouteSourceGreatCircle,
		Waypoints:       waypoints,
		Legs:            legs,
		DistanceMeters:  totalMeters,
		DurationSeconds: totalSeconds,
	}
}

// geodesicLine builds a LineString along the great circle between two
// points. Coordinates follow GeoJSON lon,lat order. The endpoints are
// always emitted exactly; intermediate points are spaced roughly
// interpolationStepKM apart.
func geodesicLine(from, to models.RoutePoint, distKM float64) models.LineString {
	steps := int(math.Ceil(distKM / interpolationStepKM))
	if steps < 1 {
		steps = 1
	}
	if steps > maxInterpolationSteps {
		steps = maxInterpolationSteps
	}

	coords := make([][2]float64, 0, steps+1)
	coords = append(coords, [2]float64{from.Longitude, from.Latitude})

	for i := 1; i < steps; i++ {
		lat, lon := Interpolate(from.Latitude, from.Longitude, to.Latitude, to.Longitude, float64(i)/float64(steps))
		coords = append(coords, [2]float64{lon, lat})
	}

	coords = append(coords, [2]float64{to.Longitude, to.Latitude})
	return models.NewLineString(coords)
}

// modeSpeedKMH returns the average travel speed for a mode. Unknown
// modes fall back to driving speed.
func modeSpeedKMH(mode string) float64 {
	switch mode {
	case models.TravelModeWalk:
		return walkSpeedKMH
	case models.TravelModeBike:
		return bikeSpeedKMH
	default:
		return driveSpeedKMH
	}
}

// stateToFloat converts circuit breaker state to a metric value
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a readable label
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
