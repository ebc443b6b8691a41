// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"

	"github.com/localis-app/localis/internal/cache"
	"github.com/localis-app/localis/internal/models"
)

// defaultNearbyRadiusKM applies when the radius_km parameter is absent.
const defaultNearbyRadiusKM = 5.0

// Nearby returns places within a radius of a position, ordered by
// distance. The radius is clamped to the configured maximum so a client
// cannot request a whole-planet scan.
//
// @Summary Find places near a position
// @Tags Geo
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Param radius_km query number false "Search radius in km (default 5, clamped to server maximum)"
// @Param category query string false "Category filter"
// @Param limit query int false "Maximum results (default 50)"
// @Success 200 {object} models.APIResponse{data=[]models.NearbyPlace} "Places ordered by distance"
// @Failure 400 {object} models.APIResponse "Missing or malformed coordinates"
// @Security BearerAuth
// @Router /geo/nearby [get]
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	lat, latSet, err := getFloatParam(r, "lat")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	lon, lonSet, err := getFloatParam(r, "lon")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !latSet || !lonSet {
		rw.BadRequest("lat and lon parameters are required")
		return
	}

	radius, _, err := getFloatParam(r, "radius_km")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if radius <= 0 {
		radius = defaultNearbyRadiusKM
	}
	if max := h.maxNearbyRadiusKM(); radius > max {
		radius = max
	}

	req := NearbyRequest{
		Latitude:  lat,
		Longitude: lon,
		RadiusKM:  radius,
		Category:  r.URL.Query().Get("category"),
		Limit:     getIntParam(r, "limit", 50),
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	filter := models.NearbyFilter{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RadiusKM:  req.RadiusKM,
		Category:  req.Category,
		Limit:     req.Limit,
	}

	key := cache.GenerateKey("geo:nearby", filter)
	if cached, ok := h.caches.Nearby.Get(key); ok {
		if places, ok := cached.([]models.NearbyPlace); ok {
			rw.Success(places)
			return
		}
	}

	places, err := h.db.GetNearbyPlaces(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err, "nearby search failed")
		return
	}

	h.caches.Nearby.Set(key, places)
	rw.Success(places)
}

// Geocode resolves a free-text query ("Paris", "Lyon FR") to candidate
// positions using the embedded gazetteer.
//
// @Summary Geocode a place name
// @Tags Geo
// @Accept json
// @Produce json
// @Param request body models.GeocodeRequest true "Query text and optional limit"
// @Success 200 {object} models.APIResponse{data=[]models.GeocodeResult} "Candidate positions, best first"
// @Failure 503 {object} models.APIResponse "Geocoder not configured"
// @Security BearerAuth
// @Router /geo/geocode [post]
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.geocoder == nil {
		rw.ServiceUnavailable("geocoding is not configured")
		return
	}

	var req models.GeocodeRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = 5
	}

	key := cache.GenerateKey("geo:geocode", req)
	if cached, ok := h.caches.Geocode.Get(key); ok {
		if results, ok := cached.([]models.GeocodeResult); ok {
			rw.Success(results)
			return
		}
	}

	results := h.geocoder.Geocode(req.Query, limit)
	if results == nil {
		results = []models.GeocodeResult{}
	}

	h.caches.Geocode.Set(key, results)
	rw.Success(results)
}

// ReverseGeocode finds the nearest gazetteer feature to a position.
// Returns 404 when nothing lies within the geocoder's cutoff distance.
//
// @Summary Reverse geocode a position
// @Tags Geo
// @Accept json
// @Produce json
// @Param request body models.ReverseGeocodeRequest true "Latitude and longitude"
// @Success 200 {object} models.APIResponse "Nearest feature and its distance"
// @Failure 404 {object} models.APIResponse "Nothing near this position"
// @Security BearerAuth
// @Router /geo/reverse [post]
func (h *Handler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.geocoder == nil {
		rw.ServiceUnavailable("geocoding is not configured")
		return
	}

	var req models.ReverseGeocodeRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	type reversePayload struct {
		Result     *models.GeocodeResult `json:"result"`
		DistanceKM float64               `json:"distance_km"`
	}

	key := cache.GenerateKey("geo:reverse", req)
	if cached, ok := h.caches.Geocode.Get(key); ok {
		if payload, ok := cached.(reversePayload); ok {
			rw.Success(payload)
			return
		}
	}

	result, distanceKM, ok := h.geocoder.ReverseGeocode(req.Latitude, req.Longitude)
	if !ok {
		rw.NotFound("no known feature near this position")
		return
	}

	payload := reversePayload{Result: result, DistanceKM: distanceKM}
	h.caches.Geocode.Set(key, payload)
	rw.Success(payload)
}

// Route plans a route through the given waypoints. With a configured
// directions service the route follows the road network; otherwise the
// planner falls back to great-circle legs, so the endpoint always answers.
//
// @Summary Plan a route through waypoints
// @Tags Geo
// @Accept json
// @Produce json
// @Param request body models.RouteRequest true "Waypoints and travel mode"
// @Success 200 {object} models.APIResponse{data=models.Route} "Planned route with legs and totals"
// @Failure 400 {object} models.APIResponse "Fewer than two waypoints or unknown mode"
// @Security BearerAuth
// @Router /geo/route [post]
func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.planner == nil {
		rw.ServiceUnavailable("route planning is not configured")
		return
	}

	var req models.RouteRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	route, err := h.planner.Plan(r.Context(), req.Waypoints, req.Mode)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	rw.Success(route)
}

// maxNearbyRadiusKM returns the configured radius ceiling for nearby
// searches.
func (h *Handler) maxNearbyRadiusKM() float64 {
	if h.cfg != nil && h.cfg.Geo.MaxNearbyRadiusKM > 0 {
		return h.cfg.Geo.MaxNearbyRadiusKM
	}
	return 50
}
