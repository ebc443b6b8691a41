// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package models

import (
	"time"

	"github.com/google/uuid"
)

// Event topic constants for the domain event bus. Subscribers include the
// websocket hub (live map updates) and the response cache invalidator.
const (
	TopicPlaceCreated  = "place.created"
	TopicPlaceUpdated  = "place.updated"
	TopicPlaceDeleted  = "place.deleted"
	TopicReviewCreated = "review.created"
	TopicReviewUpdated = "review.updated"
	TopicReviewDeleted = "review.deleted"
	TopicFollowed      = "social.followed"
)

// AllTopics returns every domain event topic. Consumers that fan out all
// activity, like the websocket broadcaster, subscribe to each in turn.
func AllTopics() []string {
	return []string{
		TopicPlaceCreated,
		TopicPlaceUpdated,
		TopicPlaceDeleted,
		TopicReviewCreated,
		TopicReviewUpdated,
		TopicReviewDeleted,
		TopicFollowed,
	}
}

// PlaceEvent is published on place.* topics after a place mutation commits.
// It carries enough to update map markers without a follow-up query.
type PlaceEvent struct {
	PlaceID    uuid.UUID `json:"place_id"`
	OwnerID    int64     `json:"owner_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReviewEvent is published on review.* topics after a review mutation
// commits, alongside the in-transaction rating aggregate refresh.
type ReviewEvent struct {
	ReviewID   uuid.UUID `json:"review_id"`
	PlaceID    uuid.UUID `json:"place_id"`
	UserID     int64     `json:"user_id"`
	Rating     int       `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FollowEvent is published on social.followed when a follow is created.
type FollowEvent struct {
	FollowerID int64     `json:"follower_id"`
	FolloweeID int64     `json:"followee_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
