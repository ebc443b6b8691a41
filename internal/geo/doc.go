// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package geo provides geodesy primitives, an in-process geocoder and a route
planner for the map features of the Localis API.

# Geodesy

Distance, Bearing, Destination, Interpolate and BoundingBox operate on WGS84
coordinates over a spherical earth (R = 6371.0088 km). Distances come from
the haversine formula, which is accurate to well under 0.5% for the
city-scale spans this service works with.

# Geocoder

The Geocoder resolves free-text place names to coordinates (forward) and
coordinates to the nearest known place (reverse) using an embedded gazetteer
of world cities. Forward lookups rank candidates by match quality (exact
over prefix over substring, primary names over alternate names) with a
population bonus to break ties between namesakes. Reverse lookups go
through a spatial hash grid over the gazetteer, so each query probes a few
cells instead of walking every row. Deployments can append their own rows,
for the app's home city and its points of interest, through the
geo.gazetteer_path config key.

# Route Planner

RoutePlanner builds routes across two or more waypoints. When a directions
service is configured (geo.directions_url, any OSRM-compatible route API) it
is the primary source, called through a circuit breaker with a client-side
rate limit, a request timeout and a single retry. When the service is not
configured, rejected by the breaker, or failing, the planner falls back to
great-circle estimates: geodesic leg geometry with durations derived from
fixed per-mode travel speeds. The Source field of the returned route records
which path produced it, so clients can label estimates as such.
*/
package geo
