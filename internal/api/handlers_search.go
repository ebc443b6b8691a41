// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"
	"time"

	"github.com/localis-app/localis/internal/cache"
	"github.com/localis-app/localis/internal/metrics"
	"github.com/localis-app/localis/internal/models"
)

// Search runs a fuzzy full-text search over place names, tags, and
// descriptions. Matching is accent-folded and case-insensitive; results
// rank prefix matches above substring matches above tag hits.
//
// @Summary Search places
// @Tags Search
// @Produce json
// @Param q query string true "Search text"
// @Param category query string false "Category filter"
// @Param limit query int false "Maximum results (default 20)"
// @Success 200 {object} models.APIResponse{data=[]models.Place} "Ranked matches"
// @Failure 400 {object} models.APIResponse "Missing query"
// @Security BearerAuth
// @Router /search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := searchRequestFromQuery(r)
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	key := cache.GenerateKey("search:query", req)
	if cached, ok := h.caches.Search.Get(key); ok {
		if places, ok := cached.([]models.Place); ok {
			rw.Success(places)
			return
		}
	}

	start := time.Now()
	places, err := h.db.SearchPlaces(r.Context(), req.Query, req.Category, req.Limit)
	if err != nil {
		rw.DatabaseError(err, "search failed")
		return
	}
	metrics.RecordSearchQuery("search", time.Since(start))

	h.caches.Search.Set(key, places)
	rw.Success(places)
}

// Autocomplete returns place-name suggestions for a prefix, for type-ahead
// in the client's search box.
//
// @Summary Autocomplete place names
// @Tags Search
// @Produce json
// @Param prefix query string true "Name prefix"
// @Param limit query int false "Maximum suggestions (default 10)"
// @Success 200 {object} models.APIResponse{data=[]models.Suggestion} "Suggestions"
// @Failure 400 {object} models.APIResponse "Missing prefix"
// @Security BearerAuth
// @Router /search/autocomplete [get]
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := autocompleteRequestFromQuery(r)
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	key := cache.GenerateKey("search:autocomplete", req)
	if cached, ok := h.caches.Search.Get(key); ok {
		if suggestions, ok := cached.([]models.Suggestion); ok {
			rw.Success(suggestions)
			return
		}
	}

	start := time.Now()
	suggestions, err := h.db.Autocomplete(r.Context(), req.Prefix, req.Limit)
	if err != nil {
		rw.DatabaseError(err, "autocomplete failed")
		return
	}
	metrics.RecordSearchQuery("autocomplete", time.Since(start))

	h.caches.Search.Set(key, suggestions)
	rw.Success(suggestions)
}
