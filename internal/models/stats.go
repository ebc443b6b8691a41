// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package models

import (
	"time"
)

// AdminStats is the admin dashboard aggregate returned by
// GET /api/v1/admin/stats.
type AdminStats struct {
	TotalUsers        int             `json:"total_users"`
	UsersByRole       []RoleCount     `json:"users_by_role"`
	TotalPlaces       int             `json:"total_places"`
	PlacesByCategory  []CategoryCount `json:"places_by_category"`
	TotalReviews      int             `json:"total_reviews"`
	ReviewsPerDay     []DayCount      `json:"reviews_per_day"`
	TopRated          []Place         `json:"top_rated"`
	TotalFavorites    int             `json:"total_favorites"`
	TotalFollows      int             `json:"total_follows"`
	ActiveSessions    int             `json:"active_sessions"`
	DatabaseSizeBytes int64           `json:"database_size_bytes"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// RoleCount pairs a role with the number of users holding it.
type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// DayCount pairs a calendar day (YYYY-MM-DD) with an activity count.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	EventsEnabled     bool    `json:"events_enabled"`
	Uptime            float64 `json:"uptime_seconds"`
}
