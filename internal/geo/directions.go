// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
directions.go - OSRM Directions Client

This file provides the HTTP client for an OSRM-compatible directions
service. The client is optional: when no directions URL is configured,
NewDirectionsClient returns nil and route planning falls back to
great-circle estimates.

Client Features:
  - HTTP client with configurable timeout
  - Token bucket rate limiting on outbound requests
  - Single retry on transport errors and HTTP 5xx responses
  - GeoJSON step geometries merged into per-leg polylines
  - Context support for cancellation and timeouts

OSRM Request Format:
  GET {base}/route/v1/{profile}/{lon,lat;lon,lat;...}
      ?overview=false&steps=true&geometries=geojson

OSRM expects coordinates in lon,lat order. Profiles are mapped from
travel modes: walk -> walking, drive -> driving, bike -> cycling.

Related Files:
  - planner.go: Circuit breaker wrapping and great-circle fallback
  - haversine.go: Geodesic math used by the fallback path
*/

//nolint:staticcheck // File documentation, not package doc
package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/models"
)

// maxErrorBodySize limits the maximum amount of response body read for error reporting
// This prevents unbounded memory allocation when reading large error responses
const maxErrorBodySize = 64 * 1024 // 64KB

const (
	defaultDirectionsTimeout   = 10 * time.Second
	defaultDirectionsRateLimit = 10 // requests per second
	defaultRetryDelay          = 500 * time.Millisecond
)

// osrmProfiles maps travel modes to OSRM routing profiles.
var osrmProfiles = map[string]string{
	models.TravelModeWalk:  "walking",
	models.TravelModeDrive: "driving",
	models.TravelModeBike:  "cycling",
}

// osrmResponse is the top-level OSRM route service response.
type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64   `json:"distance"` // meters
	Duration float64   `json:"duration"` // seconds
	Legs     []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Steps    []osrmStep `json:"steps"`
}

type osrmStep struct {
	Geometry models.LineString `json:"geometry"`
}

// readBodyForError reads the response body for error reporting (max 64KB)
// Returns the body content or a placeholder message if reading fails
// Uses io.LimitReader to prevent unbounded memory allocation
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// DirectionsClient handles communication with an OSRM-compatible route
// service.
//
// Thread Safety: Safe for concurrent use. Each request creates its own
// HTTP request, and the rate limiter serializes token acquisition.
type DirectionsClient struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
}

// NewDirectionsClient creates a directions client from the geo
// configuration. Returns nil when no directions URL is configured,
// which callers treat as "directions unavailable".
func NewDirectionsClient(cfg *config.GeoConfig) *DirectionsClient {
	if cfg == nil || cfg.DirectionsURL == "" {
		return nil
	}

	timeout := cfg.DirectionsTimeout
	if timeout <= 0 {
		timeout = defaultDirectionsTimeout
	}
	rps := cfg.DirectionsRateLimit
	if rps <= 0 {
		rps = defaultDirectionsRateLimit
	}

	return &DirectionsClient{
		baseURL: strings.TrimSuffix(cfg.DirectionsURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
		retryDelay: defaultRetryDelay,
	}
}

// Route requests turn-by-turn directions for the given waypoints.
//
// The waypoints must already be validated by the caller. Blocks until
// the rate limiter grants a token or the context is cancelled.
func (c *DirectionsClient) Route(ctx context.Context, waypoints []models.RoutePoint, mode string) (*models.Route, error) {
	profile, ok := osrmProfiles[mode]
	if !ok {
		return nil, fmt.Errorf("no routing profile for travel mode %q", mode)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("directions rate limiter: %w", err)
	}

	osrm, err := c.doRequest(ctx, c.routeURL(profile, waypoints))
	if err != nil {
		return nil, err
	}

	return buildRoute(osrm, waypoints, mode), nil
}

// routeURL builds the OSRM route request URL. OSRM expects lon,lat
// coordinate order.
func (c *DirectionsClient) routeURL(profile string, waypoints []models.RoutePoint) string {
	coords := make([]string, len(waypoints))
	for i, wp := range waypoints {
		coords[i] = fmt.Sprintf("%.6f,%.6f", wp.Longitude, wp.Latitude)
	}

	return fmt.Sprintf("%s/route/v1/%s/%s?overview=false&steps=true&geometries=geojson",
		c.baseURL, profile, strings.Join(coords, ";"))
}

// doRequest performs the OSRM request with a single retry on transport
// errors and HTTP 5xx responses. The context is used for cancellation
// during the retry wait.
func (c *DirectionsClient) doRequest(ctx context.Context, reqURL string) (*osrmResponse, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, retryable, err := c.tryRequest(ctx, reqURL)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// tryRequest performs a single request attempt. The second return value
// reports whether the failure is worth retrying.
func (c *DirectionsClient) tryRequest(ctx context.Context, reqURL string) (*osrmResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body := readBodyForError(resp.Body)
		return nil, true, fmt.Errorf("directions request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, false, fmt.Errorf("directions request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var osrm osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrm); err != nil {
		return nil, false, fmt.Errorf("failed to decode directions response: %w", err)
	}

	if osrm.Code != "Ok" {
		msg := osrm.Message
		if msg == "" {
			msg = "no details"
		}
		return nil, false, fmt.Errorf("directions service returned %s: %s", osrm.Code, msg)
	}
	if len(osrm.Routes) == 0 {
		return nil, false, fmt.Errorf("directions service returned no routes")
	}

	return &osrm, false, nil
}

// buildRoute converts the OSRM response into a Route. Only the first
// (best) route alternative is used.
func buildRoute(osrm *osrmResponse, waypoints []models.RoutePoint, mode string) *models.Route {
	best := osrm.Routes[0]

	legs := make([]models.RouteLeg, len(best.Legs))
	for i, leg := range best.Legs {
		legs[i] = models.RouteLeg{
			DistanceMeters:  leg.Distance,
			DurationSeconds: leg.Duration,
			Geometry:        mergeStepGeometry(leg.Steps),
		}
	}

	return &models.Route{
		Mode:            mode,
		Source:          models.RouteSourceDirections,
		Waypoints:       waypoints,
		Legs:            legs,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
	}
}

// mergeStepGeometry concatenates step geometries into one leg polyline.
// OSRM repeats the joint coordinate at each step boundary, so duplicates
// are dropped during the merge.
func mergeStepGeometry(steps []osrmStep) models.LineString {
	var coords [][2]float64
	for _, step := range steps {
		for _, c := range step.Geometry.Coordinates {
			if len(coords) > 0 && coords[len(coords)-1] == c {
				continue
			}
			coords = append(coords, c)
		}
	}
	return models.NewLineString(coords)
}
