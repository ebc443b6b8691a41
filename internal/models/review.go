// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package models

import (
	"time"

	"github.com/google/uuid"
)

// Review rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a user's rating and write-up of a place.
// Each user may review a place at most once; repeated submissions are
// rejected as duplicates.
//
// Key Fields:
//   - Rating: Integer 1..5
//   - Username: Author login, filled by joins for display (not stored)
//   - Likes: Denormalized like count maintained by like/unlike operations
type Review struct {
	// ID is the primary key (UUID for global uniqueness)
	ID uuid.UUID `json:"id"`

	// PlaceID is the reviewed place
	PlaceID uuid.UUID `json:"place_id"`

	// UserID is the author's user id
	UserID int64 `json:"user_id"`

	// Username is the author's login (filled by joins, not stored)
	Username string `json:"username,omitempty"`

	// Rating is the star rating (1..5)
	Rating int `json:"rating"`

	// Text is the review body
	Text string `json:"text,omitempty"`

	// Likes is the number of likes on this review
	Likes int `json:"likes"`

	// CreatedAt is when the review was submitted
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the review was last edited
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewLike records one user liking one review.
type ReviewLike struct {
	ReviewID  uuid.UUID `json:"review_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReviewRequest is the payload for POST /api/v1/places/{id}/reviews.
type CreateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text,omitempty" validate:"max=2000"`
}

// UpdateReviewRequest is the payload for PUT /api/v1/reviews/{id}. Authors
// may edit their own reviews; moderators and admins may edit any.
type UpdateReviewRequest struct {
	Rating *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Text   *string `json:"text,omitempty" validate:"omitempty,max=2000"`
}

// HasUpdates reports whether at least one updatable field is present.
func (r *UpdateReviewRequest) HasUpdates() bool {
	return r.Rating != nil || r.Text != nil
}
