// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package geo

import (
	"math"

	"github.com/localis-app/localis/internal/models"
)

// EarthRadiusKM is the IUGG mean earth radius in kilometers.
const EarthRadiusKM = 6371.0088

// Distance calculates the great-circle distance between two points in
// kilometers using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// Bearing calculates the initial bearing in degrees (0..360, clockwise from
// north) when travelling from the first point to the second.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	y := math.Sin(dLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLon)

	bearing := math.Atan2(y, x) * 180.0 / math.Pi
	return math.Mod(bearing+360.0, 360.0)
}

// Destination calculates the point reached by travelling the given distance
// in kilometers from a starting point along an initial bearing in degrees.
func Destination(lat, lon, bearingDeg, distanceKM float64) (float64, float64) {
	latRad := lat * math.Pi / 180.0
	lonRad := lon * math.Pi / 180.0
	bearingRad := bearingDeg * math.Pi / 180.0
	angular := distanceKM / EarthRadiusKM

	destLat := math.Asin(math.Sin(latRad)*math.Cos(angular) +
		math.Cos(latRad)*math.Sin(angular)*math.Cos(bearingRad))
	destLon := lonRad + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angular)*math.Cos(latRad),
		math.Cos(angular)-math.Sin(latRad)*math.Sin(destLat))

	return destLat * 180.0 / math.Pi, normalizeLon(destLon * 180.0 / math.Pi)
}

// Interpolate calculates the point at the given fraction (0..1) along the
// great-circle path between two points.
func Interpolate(lat1, lon1, lat2, lon2, fraction float64) (float64, float64) {
	if fraction <= 0 {
		return lat1, lon1
	}
	if fraction >= 1 {
		return lat2, lon2
	}

	angular := Distance(lat1, lon1, lat2, lon2) / EarthRadiusKM
	sinAngular := math.Sin(angular)
	if sinAngular < 1e-12 {
		return lat1, lon1
	}

	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	a := math.Sin((1-fraction)*angular) / sinAngular
	b := math.Sin(fraction*angular) / sinAngular

	x := a*math.Cos(lat1Rad)*math.Cos(lon1Rad) + b*math.Cos(lat2Rad)*math.Cos(lon2Rad)
	y := a*math.Cos(lat1Rad)*math.Sin(lon1Rad) + b*math.Cos(lat2Rad)*math.Sin(lon2Rad)
	z := a*math.Sin(lat1Rad) + b*math.Sin(lat2Rad)

	lat := math.Atan2(z, math.Sqrt(x*x+y*y)) * 180.0 / math.Pi
	lon := math.Atan2(y, x) * 180.0 / math.Pi
	return lat, lon
}

// BoundingBox calculates the smallest lat/lon window containing a circle of
// the given radius around a center point. When the circle crosses a pole the
// longitude span widens to the full -180..180 range; at the antimeridian the
// window is clamped rather than wrapped so that it stays a plain range check.
func BoundingBox(lat, lon, radiusKM float64) models.BoundingBox {
	if radiusKM < 0 {
		radiusKM = 0
	}
	angular := radiusKM / EarthRadiusKM
	latDelta := angular * 180.0 / math.Pi

	box := models.BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
	}

	if box.MinLat <= -90.0 || box.MaxLat >= 90.0 {
		box.MinLat = math.Max(box.MinLat, -90.0)
		box.MaxLat = math.Min(box.MaxLat, 90.0)
		box.MinLon = -180.0
		box.MaxLon = 180.0
		return box
	}

	lonDelta := math.Asin(math.Sin(angular)/math.Cos(lat*math.Pi/180.0)) * 180.0 / math.Pi
	box.MinLon = math.Max(lon-lonDelta, -180.0)
	box.MaxLon = math.Min(lon+lonDelta, 180.0)
	return box
}

// normalizeLon wraps a longitude into the -180..180 range.
func normalizeLon(lon float64) float64 {
	for lon > 180.0 {
		lon -= 360.0
	}
	for lon < -180.0 {
		lon += 360.0
	}
	return lon
}
