// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/localis-app/localis/internal/models"
)

// topRatedMinReviews is the minimum review count for a place to appear in
// the top-rated list. A single five-star review should not outrank places
// with a real rating history.
const topRatedMinReviews = 3

// reviewTrendDays is the window for the reviews-per-day series.
const reviewTrendDays = 30

// GetAdminStats assembles the admin dashboard statistics. ActiveSessions is
// left zero here; the session store lives outside the database and the
// caller overlays it.
func (db *DB) GetAdminStats(ctx context.Context) (*models.AdminStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stats := &models.AdminStats{
		GeneratedAt:       time.Now().UTC(),
		DatabaseSizeBytes: db.DatabaseSizeBytes(),
	}

	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM places),
			(SELECT COUNT(*) FROM reviews),
			(SELECT COUNT(*) FROM favorites),
			(SELECT COUNT(*) FROM follows)`).Scan(
		&stats.TotalUsers, &stats.TotalPlaces, &stats.TotalReviews,
		&stats.TotalFavorites, &stats.TotalFollows)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}

	if stats.UsersByRole, err = db.getUsersByRole(ctx); err != nil {
		return nil, err
	}
	if stats.PlacesByCategory, err = db.GetCategoryCounts(ctx); err != nil {
		return nil, err
	}
	if stats.ReviewsPerDay, err = db.getReviewsPerDay(ctx); err != nil {
		return nil, err
	}
	if stats.TopRated, err = db.getTopRatedPlaces(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

func (db *DB) getUsersByRole(ctx context.Context) ([]models.RoleCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT role, COUNT(*) AS count
		FROM users
		GROUP BY role
		ORDER BY count DESC, role`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	defer rows.Close()

	counts := []models.RoleCount{}
	for rows.Next() {
		var c models.RoleCount
		if err := rows.Scan(&c.Role, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role counts: %w", err)
	}

	return counts, nil
}

func (db *DB) getReviewsPerDay(ctx context.Context) ([]models.DayCount, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -reviewTrendDays)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT strftime(created_at, '%Y-%m-%d') AS day, COUNT(*) AS count
		FROM reviews
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews per day: %w", err)
	}
	defer rows.Close()

	days := []models.DayCount{}
	for rows.Next() {
		var d models.DayCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day counts: %w", err)
	}

	return days, nil
}

func (db *DB) getTopRatedPlaces(ctx context.Context) ([]models.Place, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+placeColumns+`
		 FROM places
		 WHERE review_count >= ?
		 ORDER BY avg_rating DESC, review_count DESC, id
		 LIMIT 10`, topRatedMinReviews)
	if err != nil {
		return nil, fmt.Errorf("failed to query top rated places: %w", err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		place, err := scanPlaceRow(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, *place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top rated places: %w", err)
	}

	return places, nil
}
