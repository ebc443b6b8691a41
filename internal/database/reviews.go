// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package database provides database operations for the Localis application.
//
// reviews.go - Review Database Operations
//
// This file contains CRUD and like operations for place reviews.
//
// Consistency:
// Every mutation that changes a place's review set (create, update, delete)
// refreshes the denormalized avg_rating and review_count on the places row
// inside the same transaction, so listings never see stale aggregates.
//
// Author Display:
// Reads LEFT JOIN the users table to fill the review author's login. Reviews
// outlive deleted accounts, in which case the username comes back empty.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/localis-app/localis/internal/models"
)

// reviewColumns is the canonical column list for scanning reviews, aliased
// for the users join. Order must match scanReview destinations.
const reviewColumns = `r.id, r.place_id, r.user_id, u.login, r.rating, r.text,
	r.likes, r.created_at, r.updated_at`

const reviewFrom = ` FROM reviews r LEFT JOIN users u ON u.id = r.user_id`

func scanReviewDests(review *models.Review, username *sql.NullString, text *sql.NullString) []interface{} {
	return []interface{}{
		&review.ID, &review.PlaceID, &review.UserID, username, &review.Rating,
		text, &review.Likes, &review.CreatedAt, &review.UpdatedAt,
	}
}

// scanReview scans a single-row query result into a Review.
func scanReview(row *sql.Row) (*models.Review, error) {
	var review models.Review
	var username, text sql.NullString
	if err := row.Scan(scanReviewDests(&review, &username, &text)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan review: %w", err)
	}
	review.Username = username.String
	review.Text = text.String
	return &review, nil
}

// scanReviewRow scans the current row of a multi-row result into a Review.
func scanReviewRow(rows *sql.Rows) (*models.Review, error) {
	var review models.Review
	var username, text sql.NullString
	if err := rows.Scan(scanReviewDests(&review, &username, &text)...); err != nil {
		return nil, fmt.Errorf("failed to scan review: %w", err)
	}
	review.Username = username.String
	review.Text = text.String
	return &review, nil
}

// refreshPlaceAggregates recomputes avg_rating and review_count for a place
// within an open transaction. Review mutations call this before committing.
func refreshPlaceAggregates(ctx context.Context, tx *sql.Tx, placeID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE places SET
			avg_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE place_id = ?), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE place_id = ?)
		WHERE id = ?`,
		placeID, placeID, placeID)
	if err != nil {
		return fmt.Errorf("failed to refresh place aggregates: %w", err)
	}
	return nil
}

// CreateReview inserts a review for a place. Each user gets at most one
// review per place; a second attempt returns ErrDuplicate. Returns
// ErrNotFound if the place does not exist.
func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now
	review.Likes = 0

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin review creation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// No foreign keys in the schema, so the place check is explicit.
	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM places WHERE id = ?`, review.PlaceID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check place for review: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews (id, place_id, user_id, rating, text, likes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.PlaceID, review.UserID, review.Rating, review.Text,
		review.Likes, review.CreatedAt, review.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}

	if err := refreshPlaceAggregates(ctx, tx, review.PlaceID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to commit review creation: %w", err)
	}

	return nil
}

// GetReviewByID retrieves a review with its author's login.
// Returns ErrNotFound if no review exists with the given ID.
func (db *DB) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+reviewColumns+reviewFrom+` WHERE r.id = ?`, id)
	return scanReview(row)
}

// ListReviewsByPlace returns a page of reviews for a place, newest first,
// along with the total review count for that place.
func (db *DB) ListReviewsByPlace(ctx context.Context, placeID uuid.UUID, page, pageSize int) ([]models.Review, int64, error) {
	return db.listReviews(ctx, "r.place_id = ?", placeID, page, pageSize)
}

// ListReviewsByUser returns a page of reviews written by a user, newest
// first, along with the user's total review count.
func (db *DB) ListReviewsByUser(ctx context.Context, userID int64, page, pageSize int) ([]models.Review, int64, error) {
	return db.listReviews(ctx, "r.user_id = ?", userID, page, pageSize)
}

func (db *DB) listReviews(ctx context.Context, where string, arg interface{}, page, pageSize int) ([]models.Review, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews r WHERE `+where, arg).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reviewColumns+reviewFrom+` WHERE `+where+`
		 ORDER BY r.created_at DESC, r.id LIMIT ? OFFSET ?`,
		arg, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		review, err := scanReviewRow(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, total, nil
}

// UpdateReview applies a partial update to a review and returns the updated
// record. A rating change refreshes the place's aggregates in the same
// transaction. Returns ErrNoFields if the request changes nothing and
// ErrNotFound if the review does not exist.
func (db *DB) UpdateReview(ctx context.Context, id uuid.UUID, update models.UpdateReviewRequest) (*models.Review, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if !update.HasUpdates() {
		return nil, ErrNoFields
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin review update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+reviewColumns+reviewFrom+` WHERE r.id = ?`, id)
	review, err := scanReview(row)
	if err != nil {
		return nil, err
	}

	ratingChanged := false
	if update.Rating != nil && *update.Rating != review.Rating {
		review.Rating = *update.Rating
		ratingChanged = true
	}
	if update.Text != nil {
		review.Text = *update.Text
	}
	review.UpdatedAt = time.Now().UTC()

	result, err := tx.ExecContext(ctx,
		`UPDATE reviews SET rating = ?, text = ?, updated_at = ? WHERE id = ?`,
		review.Rating, review.Text, review.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return nil, err
	}

	if ratingChanged {
		if err := refreshPlaceAggregates(ctx, tx, review.PlaceID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review update: %w", err)
	}

	return review, nil
}

// DeleteReview removes a review and its likes, then refreshes the place's
// aggregates. Returns ErrNotFound if the review does not exist.
func (db *DB) DeleteReview(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin review deletion: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var placeID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT place_id FROM reviews WHERE id = ?`, id).Scan(&placeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up review for deletion: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM review_likes WHERE review_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete review likes: %w", err)
	}

	if err := refreshPlaceAggregates(ctx, tx, placeID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review deletion: %w", err)
	}

	return nil
}

// LikeReview records a like on a review and increments its like counter.
// Returns ErrDuplicate if the user already liked the review and ErrNotFound
// if the review does not exist.
func (db *DB) LikeReview(ctx context.Context, reviewID uuid.UUID, userID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin review like: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO review_likes (review_id, user_id, created_at) VALUES (?, ?, ?)`,
		reviewID, userID, time.Now().UTC())
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert review like: %w", err)
	}

	// Zero rows here means the review itself is missing; rollback discards
	// the orphan like row.
	result, err := tx.ExecContext(ctx,
		`UPDATE reviews SET likes = likes + 1 WHERE id = ?`, reviewID)
	if err != nil {
		return fmt.Errorf("failed to increment review likes: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to commit review like: %w", err)
	}

	return nil
}

// UnlikeReview removes a user's like from a review and decrements its like
// counter. Returns ErrNotFound if the user had not liked the review.
func (db *DB) UnlikeReview(ctx context.Context, reviewID uuid.UUID, userID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin review unlike: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM review_likes WHERE review_id = ? AND user_id = ?`,
		reviewID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete review like: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reviews SET likes = likes - 1 WHERE id = ? AND likes > 0`, reviewID); err != nil {
		return fmt.Errorf("failed to decrement review likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review unlike: %w", err)
	}

	return nil
}

// HasLikedReview reports whether a user has liked a review.
func (db *DB) HasLikedReview(ctx context.Context, reviewID uuid.UUID, userID int64) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_likes WHERE review_id = ? AND user_id = ?`,
		reviewID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check review like: %w", err)
	}
	return count > 0, nil
}

// CountReviews returns the total number of reviews.
func (db *DB) CountReviews(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
