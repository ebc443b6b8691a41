// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
geo.go - Geographic Models

This file defines the types exchanged with the geo endpoints: geocoding
results, routing requests, and the route structures returned to map clients.

Key Structures:
  - RoutePoint: A waypoint (lat/lon, optional label)
  - Route/RouteLeg: Planned route with per-leg GeoJSON geometry
  - LineString: GeoJSON LineString geometry ([lon, lat] coordinate order)
  - GeocodeResult: Forward/reverse geocoder hit

Travel Modes:
  - walk, drive, bike; used both by the directions client and by the
    great-circle fallback's speed model
*/

package models

// Travel mode constants for route planning.
const (
	TravelModeWalk  = "walk"
	TravelModeDrive = "drive"
	TravelModeBike  = "bike"
)

// ValidTravelModes contains all valid travel modes for validation.
var ValidTravelModes = []string{TravelModeWalk, TravelModeDrive, TravelModeBike}

// IsValidTravelMode checks if a travel mode is valid.
func IsValidTravelMode(mode string) bool {
	for _, m := range ValidTravelModes {
		if m == mode {
			return true
		}
	}
	return false
}

// RoutePoint is a waypoint in a routing request or a stop along a computed
// route.
type RoutePoint struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`

	// Name optionally labels the waypoint (e.g. a place name)
	Name string `json:"name,omitempty" validate:"max=200"`
}

// LineString is a GeoJSON LineString geometry. Coordinates follow the GeoJSON
// convention: [longitude, latitude] pairs.
type LineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// NewLineString builds a LineString from [lon, lat] coordinate pairs.
func NewLineString(coords [][2]float64) LineString {
	return LineString{Type: "LineString", Coordinates: coords}
}

// Route source constants identify which planner produced a route.
const (
	// RouteSourceDirections marks routes from the outbound directions service.
	RouteSourceDirections = "directions"

	// RouteSourceGreatCircle marks interpolated geodesic fallback routes.
	RouteSourceGreatCircle = "great_circle"
)

// RouteLeg is the segment between two consecutive waypoints.
type RouteLeg struct {
	// DistanceMeters is the leg length in meters
	DistanceMeters float64 `json:"distance_m"`

	// DurationSeconds is the estimated travel time in seconds
	DurationSeconds float64 `json:"duration_s"`

	// Geometry is the leg polyline as a GeoJSON LineString
	Geometry LineString `json:"geometry"`
}

// Route is a planned route across two or more waypoints.
//
// Key Fields:
//   - Source: Which planner produced the route (directions, great_circle)
//   - DistanceMeters/DurationSeconds: Totals across all legs
type Route struct {
	// Mode is the travel mode the route was planned for
	Mode string `json:"mode"`

	// Source identifies the planner (directions, great_circle)
	Source string `json:"source"`

	// Waypoints echoes the requested stops in order
	Waypoints []RoutePoint `json:"waypoints"`

	// Legs are the segments between consecutive waypoints
	Legs []RouteLeg `json:"legs"`

	// DistanceMeters is the total route length in meters
	DistanceMeters float64 `json:"distance_m"`

	// DurationSeconds is the total estimated travel time in seconds
	DurationSeconds float64 `json:"duration_s"`
}

// GeocodeResult is one forward or reverse geocoder hit.
type GeocodeResult struct {
	// Name is the matched gazetteer entry name
	Name string `json:"name"`

	// Latitude is the entry's WGS84 latitude
	Latitude float64 `json:"latitude"`

	// Longitude is the entry's WGS84 longitude
	Longitude float64 `json:"longitude"`

	// Country is the ISO country code of the entry
	Country string `json:"country,omitempty"`

	// Population weights ranking between equally good matches
	Population int64 `json:"population,omitempty"`

	// Score is the match quality (higher is better; exact > prefix > contains)
	Score float64 `json:"score,omitempty"`
}

// GeocodeRequest is the payload for POST /api/v1/geo/geocode.
type GeocodeRequest struct {
	Query string `json:"query" validate:"required,min=1,max=200"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`
}

// ReverseGeocodeRequest is the payload for POST /api/v1/geo/reverse.
type ReverseGeocodeRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// RouteRequest is the payload for POST /api/v1/geo/route.
type RouteRequest struct {
	Waypoints []RoutePoint `json:"waypoints" validate:"required,min=2,max=25,dive"`
	Mode      string       `json:"mode,omitempty" validate:"omitempty,oneof=walk drive bike"`
}

// NearbyPlace pairs a place with its distance from the query point,
// returned by GET /api/v1/geo/nearby ordered nearest first.
type NearbyPlace struct {
	Place
	DistanceKM float64 `json:"distance_km"`
}

// NearbyFilter carries the parameters for a nearby-places query.
type NearbyFilter struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKM  float64 `json:"radius_km"`
	Category  string  `json:"category,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

// BoundingBox is a lat/lon window for marker queries, parsed from the
// bbox=minLon,minLat,maxLon,maxLat query parameter.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// GazetteerEntry is one row of the embedded geocoder dataset.
type GazetteerEntry struct {
	// Name is the primary name of the city or point of interest
	Name string `json:"name"`

	// AlternateNames are additional searchable names
	AlternateNames []string `json:"alternate_names,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Country is the ISO country code
	Country string `json:"country,omitempty"`

	// Population is used for ranking (0 for POIs)
	Population int64 `json:"population,omitempty"`
}
