// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
schema.go - Database Schema Management

This file manages the DuckDB database schema including table creation and
index management.

Tables:
  - users: Accounts with sequential integer ids (bootstrap admin is id 1)
  - places: Points of interest with denormalized rating aggregates and
    precomputed normalized search columns
  - reviews: One review per user per place, enforced by a unique constraint
  - review_likes, favorites, follows: Social graph rows with composite keys
  - api_tokens, api_token_usage: Programmatic tokens and their audit trail
  - schema_migrations: Versioned migration tracking (see migrations.go)

Schema Strategy (Pre-Release):
All columns are defined in the initial CREATE TABLE statements. After the
first public release, schema changes go through versioned migrations in
migrations.go instead.

Search Columns:
places carries name_normalized, tags_normalized, and search_text columns
filled by the Go-side normalizer (see search.go). Queries normalize their
input the same way, so matching is accent- and case-insensitive without any
database extension.

Index Strategy:
Indexes cover the hot filters: login lookup, place category/owner/rating,
review place/user, social graph lookups in both directions, and token prefix
lookup for authentication.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			login TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS places (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			name_normalized TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			tags TEXT,
			tags_normalized TEXT,
			search_text TEXT NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			address TEXT,
			owner_id BIGINT NOT NULL,
			avg_rating DOUBLE NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			place_id UUID NOT NULL,
			user_id BIGINT NOT NULL,
			rating INTEGER NOT NULL,
			text TEXT,
			likes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (place_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS review_likes (
			review_id UUID NOT NULL,
			user_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (review_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS favorites (
			user_id BIGINT NOT NULL,
			place_id UUID NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, place_id)
		)`,

		`CREATE TABLE IF NOT EXISTS follows (
			follower_id BIGINT NOT NULL,
			followee_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, followee_id)
		)`,

		`CREATE TABLE IF NOT EXISTS api_tokens (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			token_prefix TEXT NOT NULL,
			token_hash TEXT NOT NULL,
			scopes TEXT NOT NULL,
			expires_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_used_at TIMESTAMP,
			use_count BIGINT NOT NULL DEFAULT 0,
			revoked BOOLEAN NOT NULL DEFAULT FALSE,
			revoked_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS api_token_usage (
			id UUID PRIMARY KEY,
			token_id UUID NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			method TEXT,
			path TEXT,
			status_code INTEGER,
			client_ip TEXT,
			user_agent TEXT
		)`,
	}
}

// createIndexes creates indexes for the hot query paths
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_login ON users(login)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,

		`CREATE INDEX IF NOT EXISTS idx_places_category ON places(category)`,
		`CREATE INDEX IF NOT EXISTS idx_places_owner ON places(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_places_rating ON places(avg_rating)`,
		`CREATE INDEX IF NOT EXISTS idx_places_created ON places(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_places_lat_lon ON places(latitude, longitude)`,

		`CREATE INDEX IF NOT EXISTS idx_reviews_place ON reviews(place_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id, created_at)`,

		`CREATE INDEX IF NOT EXISTS idx_favorites_place ON favorites(place_id)`,
		`CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows(followee_id)`,

		`CREATE INDEX IF NOT EXISTS idx_api_tokens_user ON api_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_api_tokens_prefix ON api_tokens(token_prefix)`,
		`CREATE INDEX IF NOT EXISTS idx_token_usage_token ON api_token_usage(token_id, timestamp)`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}

	return nil
}
