// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package database provides data access for the Localis application.
//
// # Overview
//
// This package is the data layer between the application and DuckDB. It owns
// the schema, versioned migrations, and all SQL for users, places, reviews,
// the social graph, API tokens, and admin statistics.
//
// # Architecture
//
// The package is organized into domain-specific files:
//
// Core:
//   - database.go: Lifecycle (connection string, pool, initialization, close)
//   - schema.go: Table creation and index management
//   - migrations.go: Versioned schema migrations
//   - errors.go: Sentinel errors and shared result checks
//
// Domain Operations:
//   - users.go: User accounts with sequential id allocation
//   - places.go: Place CRUD with denormalized search columns and aggregates
//   - reviews.go: Reviews and likes, aggregate refresh in the same transaction
//   - social.go: Favorites, follows, profiles, and the activity feed
//   - search.go: Text normalization, ranked search, autocomplete
//   - geosearch.go: Haversine proximity search and map viewport markers
//   - tokens.go: API token storage, revocation, and usage audit
//   - stats.go: Admin dashboard aggregation
//   - seed.go: Bootstrap admin and demo dataset
//
// # Database Technology
//
// The package uses DuckDB via the CGO driver (github.com/duckdb/duckdb-go/v2):
//   - Single-file storage, no external server to operate
//   - Fast aggregation for stats and ranked search
//   - No extensions required: search normalization happens in Go and
//     distance math is plain SQL trigonometry
//
// # Error Handling
//
// Domain lookups return the package sentinels (ErrNotFound, ErrDuplicate,
// ErrProtectedUser, ErrNoFields) so handlers can map outcomes to HTTP status
// codes with errors.Is. Everything else is wrapped with fmt.Errorf and %w.
//
// # Concurrency
//
// All exported methods are safe for concurrent use. User id allocation is
// serialized by a mutex on top of its transaction; everything else relies on
// the connection pool.
//
// # Usage
//
//	db, err := database.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	place := &models.Place{Name: "Café de Flore", Category: models.CategoryFood, ...}
//	if err := db.CreatePlace(ctx, place); err != nil {
//	    log.Printf("insert failed: %v", err)
//	}
//
// # See Also
//
//   - internal/models: Data model definitions
//   - internal/auth: Password hashing and token validation above this layer
package database
