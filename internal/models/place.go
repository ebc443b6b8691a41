// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
place.go - Place Models

This file defines the place record, its map-marker projection, the category
constants, and the request/filter structures for the place endpoints.

Key Structures:
  - Place: Persistent place record with denormalized rating aggregates
  - Marker: Lightweight map-pin projection of a place
  - PlaceFilter: List/search filter (category, free text, owner, rating, paging)
  - CreatePlaceRequest / UpdatePlaceRequest: Mutation payloads

Usage:
  - Database operations in internal/database/places.go and search.go
  - API handlers in internal/api/handlers_places.go
  - Map clients consume Marker arrays from /api/v1/places/markers
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// Place category constants. Every place belongs to exactly one category;
// finer-grained labeling uses tags.
const (
	CategoryFood      = "food"
	CategoryCulture   = "culture"
	CategoryNature    = "nature"
	CategoryShopping  = "shopping"
	CategoryNightlife = "nightlife"
	CategoryServices  = "services"
	CategoryOther     = "other"
)

// ValidCategories contains all valid place categories for validation.
var ValidCategories = []string{
	CategoryFood,
	CategoryCulture,
	CategoryNature,
	CategoryShopping,
	CategoryNightlife,
	CategoryServices,
	CategoryOther,
}

// IsValidCategory checks if a category name is valid.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Place represents a point of interest published by a business owner.
//
// Key Fields:
//   - ID: UUID primary key
//   - Category: One of the Category* constants
//   - Tags: Free-form labels searched alongside name and description
//   - AvgRating/ReviewCount: Denormalized aggregates recomputed on every
//     review mutation (see database.ApplyReviewAggregates)
type Place struct {
	// ID is the primary key (UUID for global uniqueness)
	ID uuid.UUID `json:"id"`

	// Name is the display name of the place
	Name string `json:"name"`

	// Description is a free-form description
	Description string `json:"description,omitempty"`

	// Category is the place category (food, culture, nature, ...)
	Category string `json:"category"`

	// Tags are free-form labels for filtering and search
	Tags []string `json:"tags,omitempty"`

	// Latitude is the WGS84 latitude in decimal degrees
	Latitude float64 `json:"latitude"`

	// Longitude is the WGS84 longitude in decimal degrees
	Longitude float64 `json:"longitude"`

	// Address is an optional human-readable address
	Address *string `json:"address,omitempty"`

	// OwnerID is the user id of the publishing account
	OwnerID int64 `json:"owner_id"`

	// AvgRating is the mean review rating (0 when unreviewed)
	AvgRating float64 `json:"avg_rating"`

	// ReviewCount is the number of reviews
	ReviewCount int `json:"review_count"`

	// CreatedAt is when the place was published
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the place was last modified
	UpdatedAt time.Time `json:"updated_at"`
}

// Marker is the map-pin projection of a place, kept small because marker
// queries return every place inside a bounding box.
type Marker struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	AvgRating float64   `json:"avg_rating,omitempty"`
}

// ToMarker projects the place onto its map-pin representation.
func (p *Place) ToMarker() Marker {
	return Marker{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		AvgRating: p.AvgRating,
	}
}

// Place sort orders accepted by the list endpoint.
const (
	// PlaceSortNewest orders by creation time descending (default).
	PlaceSortNewest = "newest"

	// PlaceSortRating orders by average rating descending.
	PlaceSortRating = "rating"

	// PlaceSortName orders alphabetically by name.
	PlaceSortName = "name"

	// PlaceSortReviews orders by review count descending.
	PlaceSortReviews = "reviews"
)

// ValidPlaceSorts contains the accepted sort orders for place listings.
var ValidPlaceSorts = []string{PlaceSortNewest, PlaceSortRating, PlaceSortName, PlaceSortReviews}

// IsValidPlaceSort checks if a sort order is valid.
func IsValidPlaceSort(sort string) bool {
	for _, s := range ValidPlaceSorts {
		if s == sort {
			return true
		}
	}
	return false
}

// PlaceFilter carries the list/search parameters for place queries.
// Free-text matching is normalized (lowercase, trimmed, accents folded) over
// name, description, and tags.
//
// Fields map to query parameters:
//   - Query: q
//   - Category: category
//   - Tag: tag
//   - OwnerID: owner (admin and profile views)
//   - MinRating: min_rating
//   - Sort: sort (newest, rating, name, reviews)
//   - Page/PageSize: page, page_size
type PlaceFilter struct {
	Query     string  `json:"q,omitempty"`
	Category  string  `json:"category,omitempty"`
	Tag       string  `json:"tag,omitempty"`
	OwnerID   *int64  `json:"owner,omitempty"`
	MinRating float64 `json:"min_rating,omitempty"`
	Sort      string  `json:"sort,omitempty"`
	Page      int     `json:"page,omitempty"`
	PageSize  int     `json:"page_size,omitempty"`
}

// CreatePlaceRequest is the payload for POST /places.
// Requires the businessOwner role or above.
type CreatePlaceRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Category    string   `json:"category" validate:"required,oneof=food culture nature shopping nightlife services other"`
	Tags        []string `json:"tags,omitempty" validate:"max=16,dive,min=1,max=40"`
	Latitude    float64  `json:"latitude" validate:"latitude"`
	Longitude   float64  `json:"longitude" validate:"longitude"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=300"`
}

// UpdatePlaceRequest is the payload for PUT /api/v1/places/{id}. All fields
// are optional, but at least one must be present. Owners may update their own
// places; moderators and admins may update any.
type UpdatePlaceRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,oneof=food culture nature shopping nightlife services other"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,max=16,dive,min=1,max=40"`
	Latitude    *float64  `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64  `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Address     *string   `json:"address,omitempty" validate:"omitempty,max=300"`
}

// HasUpdates reports whether at least one updatable field is present.
func (r *UpdatePlaceRequest) HasUpdates() bool {
	return r.Name != nil || r.Description != nil || r.Category != nil ||
		r.Tags != nil || r.Latitude != nil || r.Longitude != nil || r.Address != nil
}

// CategoryCount pairs a category with the number of places in it.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Suggestion is an autocomplete entry over place names.
type Suggestion struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}
