// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"
	"strings"

	"github.com/localis-app/localis/internal/models"
)

// SearchRequest carries the validated query parameters for GET /search.
//
// Parameters:
//   - q: Free-text query, matched against names, tags, and descriptions
//   - category: Optional category filter
//   - limit: Maximum results (default 20)
type SearchRequest struct {
	Query    string `validate:"required,min=1,max=200"`
	Category string `validate:"omitempty,oneof=food culture nature shopping nightlife services other"`
	Limit    int    `validate:"omitempty,min=1,max=100"`
}

// searchRequestFromQuery builds a SearchRequest from the URL query string.
func searchRequestFromQuery(r *http.Request) SearchRequest {
	return SearchRequest{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Category: r.URL.Query().Get("category"),
		Limit:    getIntParam(r, "limit", 20),
	}
}

// AutocompleteRequest carries the validated query parameters for
// GET /search/autocomplete.
type AutocompleteRequest struct {
	Prefix string `validate:"required,min=1,max=100"`
	Limit  int    `validate:"omitempty,min=1,max=20"`
}

func autocompleteRequestFromQuery(r *http.Request) AutocompleteRequest {
	return AutocompleteRequest{
		Prefix: strings.TrimSpace(r.URL.Query().Get("prefix")),
		Limit:  getIntParam(r, "limit", 10),
	}
}

// NearbyRequest carries the validated query parameters for GET /geo/nearby.
// Latitude and longitude are required; radius defaults to 5 km and is
// clamped to the configured maximum.
type NearbyRequest struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	RadiusKM  float64 `validate:"omitempty,gt=0"`
	Category  string  `validate:"omitempty,oneof=food culture nature shopping nightlife services other"`
	Limit     int     `validate:"omitempty,min=1,max=500"`
}

// ListPlacesRequest carries the validated query parameters for GET /places.
type ListPlacesRequest struct {
	Query     string  `validate:"omitempty,max=200"`
	Category  string  `validate:"omitempty,oneof=food culture nature shopping nightlife services other"`
	Tag       string  `validate:"omitempty,max=40"`
	MinRating float64 `validate:"omitempty,gte=0,lte=5"`
	Sort      string  `validate:"omitempty,oneof=newest rating name reviews"`
}

// toFilter converts the request into the storage-layer filter.
func (q ListPlacesRequest) toFilter(page, pageSize int) models.PlaceFilter {
	return models.PlaceFilter{
		Query:     q.Query,
		Category:  q.Category,
		Tag:       q.Tag,
		MinRating: q.MinRating,
		Sort:      q.Sort,
		Page:      page,
		PageSize:  pageSize,
	}
}

func listPlacesRequestFromQuery(r *http.Request) (ListPlacesRequest, error) {
	minRating, _, err := getFloatParam(r, "min_rating")
	if err != nil {
		return ListPlacesRequest{}, err
	}
	return ListPlacesRequest{
		Query:     strings.TrimSpace(r.URL.Query().Get("q")),
		Category:  r.URL.Query().Get("category"),
		Tag:       r.URL.Query().Get("tag"),
		MinRating: minRating,
		Sort:      r.URL.Query().Get("sort"),
	}, nil
}
