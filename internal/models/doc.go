// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package models defines data structures for the Localis application.

This package contains all data models used throughout the application:
database records, API request/response structures, event payloads, and
internal data transfer objects. It serves as the single source of truth for
data structure definitions.

Model Categories:

1. Database Models:
  - User: Account record with integer id and bcrypt password hash
  - Place: Point of interest with denormalized rating aggregates
  - Review, ReviewLike: Ratings and likes
  - Favorite, Follow: Social graph rows
  - Session: Server-side record backing a bearer token
  - APIToken, APITokenUsage: Opaque programmatic tokens and their audit trail

2. API Request/Response Models:
  - APIResponse: Standard {success, data, error, meta} wrapper
  - APIError: Error details with machine-readable codes
  - Meta, PaginationInfo: Request metadata and page-based pagination
  - Request DTOs with validator tags (RegisterRequest, CreatePlaceRequest, ...)

3. Geographic Models:
  - RoutePoint, Route, RouteLeg, LineString: Routing structures for map clients
  - GeocodeResult, GazetteerEntry: In-process geocoder types
  - Marker, BoundingBox, NearbyPlace: Map pin queries

4. Event Models:
  - PlaceEvent, ReviewEvent, FollowEvent: Bus payloads with topic constants

Validation:

Constant sets with matching predicates guard every enumerated field:
IsValidRole, IsValidCategory, IsValidScope, IsValidTravelMode,
IsValidPlaceSort. Request structs carry go-playground/validator tags and are
validated in the API layer before reaching the database.

Thread Safety:

All models are plain data structures with no internal locking. They are safe
for concurrent reads; mutation happens before publication.

JSON Marshaling:

All models carry snake_case JSON tags, omitempty on optional fields, and
`json:"-"` on credential material (password hashes, token hashes). Time
fields use RFC3339.

See Also:

  - internal/database: Database operations over these models
  - internal/api: HTTP handlers returning these models
  - internal/events: Bus publishing the event payloads
*/
package models
