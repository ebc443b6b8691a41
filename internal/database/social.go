// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
social.go - Favorites, Follows, Profiles, and Feed

This file implements the social graph operations: favoriting places,
following users, profile count aggregation, and the activity feed.

Feed Assembly:
The feed merges two streams from followed users (their recent reviews and
their recently published places) in Go rather than a SQL UNION, because the
two row shapes share nothing but a timestamp. Both source queries are
already capped at the feed limit, so the merge works over at most 2*limit
rows.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/localis-app/localis/internal/models"
)

// AddFavorite marks a place as a favorite of the user. Returns ErrNotFound
// if the place does not exist and ErrDuplicate if already favorited.
func (db *DB) AddFavorite(ctx context.Context, userID int64, placeID uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM places WHERE id = ?`, placeID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check place for favorite: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO favorites (user_id, place_id, created_at) VALUES (?, ?, ?)`,
		userID, placeID, time.Now().UTC())
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert favorite: %w", err)
	}

	return nil
}

// RemoveFavorite removes a place from the user's favorites.
// Returns ErrNotFound if the place was not favorited.
func (db *DB) RemoveFavorite(ctx context.Context, userID int64, placeID uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND place_id = ?`,
		userID, placeID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return checkRowsAffected(result)
}

// IsFavorite reports whether the user has favorited the place.
func (db *DB) IsFavorite(ctx context.Context, userID int64, placeID uuid.UUID) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND place_id = ?`,
		userID, placeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// ListFavorites returns a page of the user's favorited places, most recently
// favorited first, along with the total favorite count.
func (db *DB) ListFavorites(ctx context.Context, userID int64, page, pageSize int) ([]models.Place, int64, error) {
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
		`SELECT COUNT(*) FROM favorites WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count favorites: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+placeColumnsPrefixed+`
		 FROM favorites f JOIN places p ON p.id = f.place_id
		 WHERE f.user_id = ?
		 ORDER BY f.created_at DESC, p.id LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query favorites: %w", err)
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
		return nil, 0, fmt.Errorf("error iterating favorites: %w", err)
	}

	return places, total, nil
}

// FollowUser records that follower follows followee. Returns ErrNotFound if
// the followee does not exist and ErrDuplicate if already following.
// Self-follows are rejected in the handler layer before reaching here.
func (db *DB) FollowUser(ctx context.Context, followerID, followeeID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ?`, followeeID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check followee: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)`,
		followerID, followeeID, time.Now().UTC())
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert follow: %w", err)
	}

	return nil
}

// UnfollowUser removes a follow relationship.
// Returns ErrNotFound if the relationship did not exist.
func (db *DB) UnfollowUser(ctx context.Context, followerID, followeeID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return checkRowsAffected(result)
}

// IsFollowing reports whether follower follows followee.
func (db *DB) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}

// ListFollowers returns a page of users following the given user, most
// recent first, along with the total follower count.
func (db *DB) ListFollowers(ctx context.Context, userID int64, page, pageSize int) ([]models.User, int64, error) {
	return db.listFollowUsers(ctx, userID, "f.followee_id", "f.follower_id", page, pageSize)
}

// ListFollowing returns a page of users the given user follows, most recent
// first, along with the total following count.
func (db *DB) ListFollowing(ctx context.Context, userID int64, page, pageSize int) ([]models.User, int64, error) {
	return db.listFollowUsers(ctx, userID, "f.follower_id", "f.followee_id", page, pageSize)
}

// listFollowUsers pages through one side of the follows relation. whereCol
// is matched against userID and joinCol selects the other side of the edge.
func (db *DB) listFollowUsers(ctx context.Context, userID int64, whereCol, joinCol string, page, pageSize int) ([]models.User, int64, error) {
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
		`SELECT COUNT(*) FROM follows f WHERE `+whereCol+` = ?`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count follows: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumnsPrefixed+`
		 FROM follows f JOIN users u ON u.id = `+joinCol+`
		 WHERE `+whereCol+` = ?
		 ORDER BY f.created_at DESC, u.id LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query follows: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating follows: %w", err)
	}

	return users, total, nil
}

// GetProfile returns a user together with their social counts.
// Returns ErrNotFound if the user does not exist.
func (db *DB) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	user, err := db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{User: *user}
	err = db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = ?),
			(SELECT COUNT(*) FROM follows WHERE follower_id = ?),
			(SELECT COUNT(*) FROM favorites WHERE user_id = ?),
			(SELECT COUNT(*) FROM reviews WHERE user_id = ?)`,
		userID, userID, userID, userID).Scan(
		&profile.FollowerCount, &profile.FollowingCount,
		&profile.FavoriteCount, &profile.ReviewCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile counts: %w", err)
	}

	return profile, nil
}

// GetFeed returns recent activity from users the given user follows: their
// reviews and their newly published places, newest first.
func (db *DB) GetFeed(ctx context.Context, userID int64, limit int) ([]models.FeedItem, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 || limit > 50 {
		limit = 20
	}

	items := []models.FeedItem{}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reviewColumns+`
		 FROM reviews r
		 JOIN follows f ON f.followee_id = r.user_id AND f.follower_id = ?
		 LEFT JOIN users u ON u.id = r.user_id
		 ORDER BY r.created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		review, err := scanReviewRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, models.FeedItem{
			Type:       models.FeedItemReview,
			OccurredAt: review.CreatedAt,
			UserID:     review.UserID,
			Username:   review.Username,
			Review:     review,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed reviews: %w", err)
	}

	placeRows, err := db.conn.QueryContext(ctx,
		`SELECT `+placeColumnsPrefixed+`, u.login
		 FROM places p
		 JOIN follows f ON f.followee_id = p.owner_id AND f.follower_id = ?
		 LEFT JOIN users u ON u.id = p.owner_id
		 ORDER BY p.created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed places: %w", err)
	}
	defer placeRows.Close()

	for placeRows.Next() {
		var data placeScanData
		var ownerLogin sql.NullString
		if err := placeRows.Scan(data.dests(&ownerLogin)...); err != nil {
			return nil, fmt.Errorf("failed to scan feed place: %w", err)
		}
		place, err := data.toPlace()
		if err != nil {
			return nil, err
		}
		items = append(items, models.FeedItem{
			Type:       models.FeedItemPlace,
			OccurredAt: place.CreatedAt,
			UserID:     place.OwnerID,
			Username:   ownerLogin.String,
			Place:      place,
		})
	}
	if err := placeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed places: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].OccurredAt.After(items[j].OccurredAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// CountFavorites returns the total number of favorite relationships.
func (db *DB) CountFavorites(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}

// CountFollows returns the total number of follow relationships.
func (db *DB) CountFollows(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM follows`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count follows: %w", err)
	}
	return count, nil
}
