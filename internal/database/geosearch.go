// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
geosearch.go - Proximity and Map Viewport Queries

This file implements nearby-place search and map marker retrieval.

Distance Strategy:
Great-circle distance is computed in SQL with the haversine formula over
plain latitude/longitude columns, so no spatial extension is required. A
degree bounding window derived from the radius prefilters rows before the
trigonometry runs, which keeps the formula off most of the table and lets
the composite latitude/longitude index do the heavy lifting.

Viewport Queries:
Marker retrieval clamps to the requested bounding box and handles boxes
that cross the antimeridian by splitting the longitude predicate.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/localis-app/localis/internal/metrics"
	"github.com/localis-app/localis/internal/models"
)

// kmPerDegreeLat is the approximate surface distance of one degree of
// latitude. Longitude degrees shrink with cos(latitude).
const kmPerDegreeLat = 111.045

// haversineKM is the SQL great-circle distance in kilometers between a
// bound origin and each row's coordinates. Bind order: origin latitude,
// origin latitude, origin longitude.
const haversineKM = `2 * 6371.0088 * ASIN(SQRT(
	POWER(SIN(RADIANS(latitude - ?) / 2), 2) +
	COS(RADIANS(?)) * COS(RADIANS(latitude)) *
	POWER(SIN(RADIANS(longitude - ?) / 2), 2)))`

// degreeWindow converts a radius in kilometers around an origin into
// latitude and longitude half-spans in degrees. Near the poles the
// longitude span degrades to the full circle.
func degreeWindow(lat, radiusKM float64) (latDelta, lonDelta float64) {
	latDelta = radiusKM / kmPerDegreeLat
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		return latDelta, 180
	}
	return latDelta, radiusKM / (kmPerDegreeLat * cosLat)
}

// GetNearbyPlaces returns places within the filter's radius of the origin,
// closest first, with the computed distance attached to each result.
func (db *DB) GetNearbyPlaces(ctx context.Context, filter models.NearbyFilter) ([]models.NearbyPlace, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	radius := filter.RadiusKM
	if radius <= 0 {
		radius = 5
	}
	if radius > 100 {
		radius = 100
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	latDelta, lonDelta := degreeWindow(filter.Latitude, radius)

	query := `
		SELECT * FROM (
			SELECT ` + placeColumns + `, ` + haversineKM + ` AS distance_km
			FROM places
			WHERE latitude BETWEEN ? AND ?
			  AND longitude BETWEEN ? AND ?`
	args := []interface{}{
		filter.Latitude, filter.Latitude, filter.Longitude,
		filter.Latitude - latDelta, filter.Latitude + latDelta,
		filter.Longitude - lonDelta, filter.Longitude + lonDelta,
	}

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}

	query += `
		) AS nearby
		WHERE distance_km <= ?
		ORDER BY distance_km
		LIMIT ?`
	args = append(args, radius, limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("nearby", "places", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby places: %w", err)
	}
	defer rows.Close()
	metrics.RecordSpatialOperation("haversine")

	nearby := []models.NearbyPlace{}
	for rows.Next() {
		var data placeScanData
		var distance float64
		if err := rows.Scan(data.dests(&distance)...); err != nil {
			return nil, fmt.Errorf("failed to scan nearby place: %w", err)
		}
		place, err := data.toPlace()
		if err != nil {
			return nil, err
		}
		nearby = append(nearby, models.NearbyPlace{Place: *place, DistanceKM: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nearby places: %w", err)
	}

	return nearby, nil
}

// GetMarkersInBBox returns lightweight map markers for places inside the
// bounding box, most reviewed first so dense viewports surface the places
// people actually visit. Boxes crossing the antimeridian are supported.
func (db *DB) GetMarkersInBBox(ctx context.Context, box models.BoundingBox, category string, limit int) ([]models.Marker, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 || limit > 500 {
		limit = 250
	}

	query := `
		SELECT id, name, category, latitude, longitude, avg_rating
		FROM places
		WHERE latitude BETWEEN ? AND ?`
	args := []interface{}{box.MinLat, box.MaxLat}

	if box.MinLon <= box.MaxLon {
		query += ` AND longitude BETWEEN ? AND ?`
		args = append(args, box.MinLon, box.MaxLon)
	} else {
		query += ` AND (longitude >= ? OR longitude <= ?)`
		args = append(args, box.MinLon, box.MaxLon)
	}

	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}

	query += `
		ORDER BY review_count DESC, id
		LIMIT ?`
	args = append(args, limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("markers", "places", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query markers: %w", err)
	}
	defer rows.Close()
	metrics.RecordSpatialOperation("bbox")

	markers := []models.Marker{}
	for rows.Next() {
		var m models.Marker
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Latitude, &m.Longitude, &m.AvgRating); err != nil {
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating markers: %w", err)
	}

	return markers, nil
}
