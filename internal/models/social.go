// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite records one user bookmarking one place.
type Favorite struct {
	UserID    int64     `json:"user_id"`
	PlaceID   uuid.UUID `json:"place_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow records one user following another. Self-follows are rejected.
type Follow struct {
	FollowerID int64     `json:"follower_id"`
	FolloweeID int64     `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Profile is the authenticated user's own view with social counts,
// returned by GET /api/v1/profile.
type Profile struct {
	User           User `json:"user"`
	FollowerCount  int  `json:"follower_count"`
	FollowingCount int  `json:"following_count"`
	FavoriteCount  int  `json:"favorite_count"`
	ReviewCount    int  `json:"review_count"`
}

// Feed item type constants.
const (
	// FeedItemReview marks an entry caused by a followed user posting a review.
	FeedItemReview = "review"

	// FeedItemPlace marks an entry caused by a followed user publishing a place.
	FeedItemPlace = "place"
)

// FeedItem is one entry in the activity feed: a recent review or place from a
// followed user, newest first.
type FeedItem struct {
	// Type is the entry kind (review, place)
	Type string `json:"type"`

	// OccurredAt is when the underlying activity happened
	OccurredAt time.Time `json:"occurred_at"`

	// UserID is the followed user who acted
	UserID int64 `json:"user_id"`

	// Username is the followed user's login
	Username string `json:"username"`

	// Review is set when Type is "review"
	Review *Review `json:"review,omitempty"`

	// Place is set when Type is "place"
	Place *Place `json:"place,omitempty"`
}
