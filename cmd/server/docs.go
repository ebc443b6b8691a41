// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package main provides the Localis HTTP server
//
// Localis API backs the Localis mobile app: a place catalog with search,
// geolocation, reviews, and a social layer, served from a single binary.
//
// @title Localis API
// @version 1.0
// @description Places discovery and social mapping backend for the Localis mobile app
// @description
// @description ## Features
// @description
// @description - **Place Catalog**: Community-maintained places with categories, tags, and photos
// @description - **Full-text Search**: Ranked search with prefix autocomplete
// @description - **Geospatial Queries**: Nearby search, viewport markers, offline geocoding and routing
// @description - **Reviews**: One review per user per place with live rating aggregates
// @description - **Social Graph**: Follows, favorites, and a follow-based activity feed
// @description - **API Tokens**: Scoped long-lived tokens with usage accounting
// @description - **Real-time Updates**: WebSocket stream of place, review, and social events
// @description
// @description ## Authentication
// @description
// @description All protected endpoints accept a bearer token in the Authorization header:
// @description `Authorization: Bearer <token>`.
// @description Session tokens come from `/api/v1/auth/login` and expire with the session.
// @description API tokens (prefix `loc_pat_`) are minted via `/api/v1/auth/tokens` and carry scopes.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per client IP.
// @description Throttled requests receive a 429 with a `Retry-After` header.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "success": false,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {},
// @description     "request_id": "b2f1..."
// @description   },
// @description   "meta": {
// @description     "timestamp": "2026-08-23T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/localis-app/localis/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8443
// @BasePath /api/v1
// @schemes https http
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token. Session tokens come from /api/v1/auth/login; API tokens from /api/v1/auth/tokens. Send as "Bearer <token>".
//
// @tag.name Core
// @tag.description Health checks and system status
//
// @tag.name Auth
// @tag.description Registration, login, sessions, and identity
//
// @tag.name Places
// @tag.description Place catalog: CRUD, map markers, and category counts
//
// @tag.name Search
// @tag.description Full-text search and prefix autocomplete
//
// @tag.name Geo
// @tag.description Nearby queries, geocoding, and routing
//
// @tag.name Reviews
// @tag.description Place reviews, likes, and rating aggregates
//
// @tag.name Social
// @tag.description Follows, favorites, profiles, and the activity feed
//
// @tag.name Tokens
// @tag.description Scoped API tokens and their usage accounting
//
// @tag.name Admin
// @tag.description Administrative operations requiring the admin role
//
// @tag.name Realtime
// @tag.description WebSocket connections streaming live place, review, and social events
package main
