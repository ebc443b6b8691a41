// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package main is the entry point for the Localis server.

Localis is the backend for a mobile places-discovery app: users publish and
review places, follow each other, search the catalog, and watch the map
update live over WebSocket. The server is a single binary with an embedded
gazetteer, so geocoding and routing work without any external service.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("localis")
	├── DataSupervisor ("data-layer")
	│   └── Session Janitor (expired session sweep, gauge refresh)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (live map and feed updates)
	│   ├── Broadcast Consumer (domain events -> WebSocket clients)
	│   └── Cache Invalidator (domain events -> response cache clears)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (REST API, TLS by default)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB with the places, reviews, and social schema
 4. Bootstrap: protected admin account (id 1) and optional demo data
 5. Sessions: JWT-backed sessions in memory or BadgerDB, scoped API tokens
 6. Authorization: Casbin RBAC with role hierarchy and decision caching
 7. Geo: embedded gazetteer geocoder, OSRM directions with great-circle fallback
 8. Events: Watermill bus feeding the WebSocket hub and cache invalidation
 9. Supervisor Tree: Suture v4 process supervision
 10. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8443               # HTTPS alternate port, runs unprivileged
	TLS_CERT=certs/server.crt    # PEM chain; clear both to serve plain HTTP
	TLS_KEY=certs/server.key
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Database
	DUCKDB_PATH=localis.db       # Empty for in-memory
	SEED_DEMO_DATA=false         # Paris-area demo places for development

	# Authentication
	JWT_SECRET=<32+ chars>       # Session token signing key
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<password>    # Creates the bootstrap admin on first run
	SESSION_STORE=memory         # memory or badger
	SESSION_STORE_PATH=          # Required for badger

	# Geo
	GEO_DIRECTIONS_URL=          # OSRM-compatible router, empty = fallback only
	GEO_GAZETTEER_PATH=          # Supplemental gazetteer CSV

	# Events
	EVENTS_ENABLED=true
	NATS_ENABLED=false           # JetStream transport, needs -tags nats

See .env.example for complete configuration reference.

# Build Tags

Optional build tags enable additional functionality:

	go build ./cmd/server                  # Standard build (in-process event bus)
	go build -tags nats ./cmd/server       # Enable NATS JetStream event transport

With the nats tag and NATS_ENABLED=true, domain events flow through
JetStream instead of in-process channels, so multiple instances share one
event stream and consumers survive restarts.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Disconnects WebSocket clients
 3. Waits for in-flight requests (10s timeout)
 4. Drains event consumers and closes the bus
 5. Closes session store and database
 6. Reports any services that failed to stop

# Usage Examples

Development (cleartext, demo data):

	export TLS_CERT= TLS_KEY=
	export SEED_DEMO_DATA=true
	export ADMIN_PASSWORD=dev-admin-password
	go run ./cmd/server

Production:

	export JWT_SECRET=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin ADMIN_PASSWORD=secure-password
	export SESSION_STORE=badger SESSION_STORE_PATH=/data/sessions
	export DUCKDB_PATH=/data/localis.db
	./localis

Docker:

	docker run -d \
	  -e JWT_SECRET=xxx \
	  -e ADMIN_PASSWORD=xxx \
	  -e DUCKDB_PATH=/data/localis.db \
	  -v localis-data:/data \
	  -p 8443:8443 \
	  ghcr.io/localis-app/localis

# API Documentation

Swagger documentation is available at /swagger/index.html when the server
is running. The API is organized into categories:

  - Core: Health checks and system status
  - Auth: Registration, login, sessions, API tokens
  - Places: Catalog CRUD, map markers, categories
  - Search: Full-text search and autocomplete
  - Geo: Nearby queries, geocoding, routing
  - Reviews: Reviews, likes, rating aggregates
  - Social: Follows, favorites, profiles, activity feed
  - Admin: Instance statistics and moderation
  - Realtime: WebSocket live updates

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/events: Domain event bus
  - docs/DEVELOPMENT.md: Development workflow
*/
package main
