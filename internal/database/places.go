// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
places.go - Place CRUD Operations

This file implements create, read, update, delete, and listing for places.

Write Path:
Every insert and update recomputes the normalized search columns
(name_normalized, tags_normalized, search_text) from the current name,
description, and tags, so the search path in search.go never has to
normalize stored data at query time. Tags are stored as a JSON array in a
TEXT column; DuckDB list columns would also work but JSON keeps the scan
path on database/sql primitives.

Aggregates:
avg_rating and review_count are denormalized onto the places row and
recomputed by ApplyReviewAggregates whenever a review is created, updated,
or deleted. Listing and search read the denormalized values only.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/localis-app/localis/internal/models"
)

// placeColumns is the canonical column list for scanning places.
// Order must match placeScanData.dests.
const placeColumns = `id, name, description, category, tags, latitude, longitude,
	address, owner_id, avg_rating, review_count, created_at, updated_at`

// placeColumnsPrefixed qualifies placeColumns with the "p" alias for joins
// where column names would otherwise be ambiguous.
const placeColumnsPrefixed = `p.id, p.name, p.description, p.category, p.tags, p.latitude, p.longitude,
	p.address, p.owner_id, p.avg_rating, p.review_count, p.created_at, p.updated_at`

// placeScanData holds raw column values before conversion to models.Place.
type placeScanData struct {
	id          uuid.UUID
	name        string
	description sql.NullString
	category    string
	tags        sql.NullString
	latitude    float64
	longitude   float64
	address     sql.NullString
	ownerID     int64
	avgRating   float64
	reviewCount int
	createdAt   time.Time
	updatedAt   time.Time
}

// dests returns scan destinations in placeColumns order, followed by any
// extra destinations (used by ranked search for the computed rank column).
func (d *placeScanData) dests(extra ...interface{}) []interface{} {
	out := []interface{}{
		&d.id, &d.name, &d.description, &d.category, &d.tags,
		&d.latitude, &d.longitude, &d.address, &d.ownerID,
		&d.avgRating, &d.reviewCount, &d.createdAt, &d.updatedAt,
	}
	return append(out, extra...)
}

// toPlace converts scanned column data into a Place.
func (d *placeScanData) toPlace() (*models.Place, error) {
	place := &models.Place{
		ID:          d.id,
		Name:        d.name,
		Category:    d.category,
		Latitude:    d.latitude,
		Longitude:   d.longitude,
		OwnerID:     d.ownerID,
		AvgRating:   d.avgRating,
		ReviewCount: d.reviewCount,
		CreatedAt:   d.createdAt,
		UpdatedAt:   d.updatedAt,
		Tags:        []string{},
	}
	if d.description.Valid {
		place.Description = d.description.String
	}
	if d.address.Valid {
		addr := d.address.String
		place.Address = &addr
	}
	if d.tags.Valid && d.tags.String != "" {
		if err := json.Unmarshal([]byte(d.tags.String), &place.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode place tags: %w", err)
		}
	}
	return place, nil
}

// scanPlace scans a single-row query result into a Place.
func scanPlace(row *sql.Row) (*models.Place, error) {
	var data placeScanData
	if err := row.Scan(data.dests()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan place: %w", err)
	}
	return data.toPlace()
}

// scanPlaceRow scans the current row of a multi-row result into a Place.
func scanPlaceRow(rows *sql.Rows) (*models.Place, error) {
	var data placeScanData
	if err := rows.Scan(data.dests()...); err != nil {
		return nil, fmt.Errorf("failed to scan place: %w", err)
	}
	return data.toPlace()
}

// encodeTags serializes tags for the TEXT column. Nil and empty both encode
// as "[]" so scans never see NULL tags on rows written by this code.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode place tags: %w", err)
	}
	return string(encoded), nil
}

// CreatePlace inserts a new place. The caller provides name, category,
// coordinates, and owner; this function assigns the ID, timestamps, and
// normalized search columns.
func (db *DB) CreatePlace(ctx context.Context, place *models.Place) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if place.ID == uuid.Nil {
		place.ID = uuid.New()
	}
	now := time.Now().UTC()
	place.CreatedAt = now
	place.UpdatedAt = now
	place.AvgRating = 0
	place.ReviewCount = 0
	if place.Tags == nil {
		place.Tags = []string{}
	}

	tagsJSON, err := encodeTags(place.Tags)
	if err != nil {
		return err
	}

	description := sql.NullString{String: place.Description, Valid: place.Description != ""}
	var address sql.NullString
	if place.Address != nil {
		address = sql.NullString{String: *place.Address, Valid: true}
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO places (
			id, name, name_normalized, description, category,
			tags, tags_normalized, search_text,
			latitude, longitude, address, owner_id,
			avg_rating, review_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		place.ID, place.Name, normalizeText(place.Name), description, place.Category,
		tagsJSON, normalizeTags(place.Tags), buildSearchText(place.Name, place.Description, place.Tags),
		place.Latitude, place.Longitude, address, place.OwnerID,
		place.AvgRating, place.ReviewCount, place.CreatedAt, place.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert place: %w", err)
	}

	return nil
}

// GetPlaceByID retrieves a place by its ID.
// Returns ErrNotFound if no place exists with the given ID.
func (db *DB) GetPlaceByID(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = ?`, id)
	return scanPlace(row)
}

// buildPlaceFilter translates a PlaceFilter into WHERE clauses and args.
// The same clauses feed both the count and the page query.
func buildPlaceFilter(filter models.PlaceFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	if filter.Query != "" {
		q := escapeLike(normalizeText(filter.Query))
		if q != "" {
			clauses = append(clauses, `search_text LIKE ? ESCAPE '\'`)
			args = append(args, "%"+q+"%")
		}
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Tag != "" {
		if t := escapeLike(normalizeText(filter.Tag)); t != "" {
			clauses = append(clauses, `tags_normalized LIKE ? ESCAPE '\'`)
			args = append(args, "% "+t+" %")
		}
	}
	if filter.OwnerID != nil {
		clauses = append(clauses, "owner_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.MinRating > 0 {
		clauses = append(clauses, "avg_rating >= ?")
		args = append(args, filter.MinRating)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// placeOrderBy maps a validated sort key to an ORDER BY clause.
// The id tiebreak keeps pagination stable across identical sort values.
func placeOrderBy(sort string) string {
	switch sort {
	case models.PlaceSortRating:
		return " ORDER BY avg_rating DESC, review_count DESC, id"
	case models.PlaceSortName:
		return " ORDER BY name, id"
	case models.PlaceSortReviews:
		return " ORDER BY review_count DESC, avg_rating DESC, id"
	default: // newest
		return " ORDER BY created_at DESC, id"
	}
}

// ListPlaces returns a page of places matching the filter, along with the
// total match count for pagination.
func (db *DB) ListPlaces(ctx context.Context, filter models.PlaceFilter) ([]models.Place, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	where, args := buildPlaceFilter(filter)

	var total int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM places"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count places: %w", err)
	}

	query := "SELECT " + placeColumns + " FROM places" + where +
		placeOrderBy(filter.Sort) + " LIMIT ? OFFSET ?"
	pageArgs := append(args, pageSize, (page-1)*pageSize)

	rows, err := db.conn.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		place, err := scanPlaceRow(rows)
		if err != nil {
			return nil, 0, err
		}
		places = append(places, *place)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating places: %w", err)
	}

	return places, total, nil
}

// UpdatePlace applies a partial update to a place and returns the updated
// record. Name, description, and tag changes recompute the normalized
// search columns. Returns ErrNoFields if the request changes nothing and
// ErrNotFound if the place does not exist.
func (db *DB) UpdatePlace(ctx context.Context, id uuid.UUID, update models.UpdatePlaceRequest) (*models.Place, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if !update.HasUpdates() {
		return nil, ErrNoFields
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin place update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Read-modify-write keeps the normalized columns consistent with
	// whichever of name, description, and tags the request touches.
	row := tx.QueryRowContext(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = ?`, id)
	place, err := scanPlace(row)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		place.Name = *update.Name
	}
	if update.Description != nil {
		place.Description = *update.Description
	}
	if update.Category != nil {
		place.Category = *update.Category
	}
	if update.Tags != nil {
		place.Tags = *update.Tags
		if place.Tags == nil {
			place.Tags = []string{}
		}
	}
	if update.Latitude != nil {
		place.Latitude = *update.Latitude
	}
	if update.Longitude != nil {
		place.Longitude = *update.Longitude
	}
	if update.Address != nil {
		if *update.Address == "" {
			place.Address = nil
		} else {
			addr := *update.Address
			place.Address = &addr
		}
	}
	place.UpdatedAt = time.Now().UTC()

	tagsJSON, err := encodeTags(place.Tags)
	if err != nil {
		return nil, err
	}
	description := sql.NullString{String: place.Description, Valid: place.Description != ""}
	var address sql.NullString
	if place.Address != nil {
		address = sql.NullString{String: *place.Address, Valid: true}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE places SET
			name = ?, name_normalized = ?, description = ?, category = ?,
			tags = ?, tags_normalized = ?, search_text = ?,
			latitude = ?, longitude = ?, address = ?, updated_at = ?
		WHERE id = ?`,
		place.Name, normalizeText(place.Name), description, place.Category,
		tagsJSON, normalizeTags(place.Tags), buildSearchText(place.Name, place.Description, place.Tags),
		place.Latitude, place.Longitude, address, place.UpdatedAt,
		id)
	if err != nil {
		return nil, fmt.Errorf("failed to update place: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit place update: %w", err)
	}

	return place, nil
}

// DeletePlace removes a place along with its reviews, review likes, and
// favorites. Returns ErrNotFound if the place does not exist.
func (db *DB) DeletePlace(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin place deletion: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM review_likes WHERE review_id IN (SELECT id FROM reviews WHERE place_id = ?)`, id); err != nil {
		return fmt.Errorf("failed to delete review likes for place: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE place_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete reviews for place: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE place_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete favorites for place: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit place deletion: %w", err)
	}

	return nil
}

// ApplyReviewAggregates recomputes the denormalized avg_rating and
// review_count for a place from its current reviews. Called after every
// review create, update, or delete.
func (db *DB) ApplyReviewAggregates(ctx context.Context, placeID uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx, `
		UPDATE places SET
			avg_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE place_id = ?), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE place_id = ?)
		WHERE id = ?`,
		placeID, placeID, placeID)
	if err != nil {
		return fmt.Errorf("failed to update place aggregates: %w", err)
	}
	return checkRowsAffected(result)
}

// CountPlaces returns the total number of places.
func (db *DB) CountPlaces(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM places`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}
