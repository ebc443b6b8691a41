// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/cache"
	"github.com/localis-app/localis/internal/database"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

// placeListPayload is the cached shape of a place list response.
type placeListPayload struct {
	Places []models.Place `json:"places"`
	Total  int64          `json:"total"`
}

// PlaceList returns places matching the filter parameters, paginated.
//
// @Summary List places
// @Description Returns places filtered by text, category, tag, and minimum rating, with pagination metadata
// @Tags Places
// @Produce json
// @Param q query string false "Substring match on name and description"
// @Param category query string false "Category filter"
// @Param tag query string false "Tag filter"
// @Param min_rating query number false "Minimum average rating"
// @Param sort query string false "Sort order: rating, newest, name"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} models.APIResponse{data=[]models.Place} "Places with pagination meta"
// @Failure 400 {object} models.APIResponse "Malformed filter"
// @Security BearerAuth
// @Router /places [get]
func (h *Handler) PlaceList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := listPlacesRequestFromQuery(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	page, pageSize := h.parsePagination(r)
	filter := req.toFilter(page, pageSize)

	key := cache.GenerateKey("places:list", filter)
	if cached, ok := h.caches.Places.Get(key); ok {
		if payload, ok := cached.(placeListPayload); ok {
			rw.SuccessWithPagination(payload.Places, models.NewPaginationInfo(page, pageSize, payload.Total))
			return
		}
	}

	places, total, err := h.db.ListPlaces(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err, "failed to list places")
		return
	}

	h.caches.Places.Set(key, placeListPayload{Places: places, Total: total})
	rw.SuccessWithPagination(places, models.NewPaginationInfo(page, pageSize, total))
}

// PlaceCreate publishes a new place owned by the calling user. Requires
// the businessOwner role or above.
//
// @Summary Create a place
// @Tags Places
// @Accept json
// @Produce json
// @Param request body models.CreatePlaceRequest true "Place details"
// @Success 201 {object} models.APIResponse{data=models.Place} "Place created"
// @Failure 400 {object} models.APIResponse "Invalid payload"
// @Failure 403 {object} models.APIResponse "Requires businessOwner role"
// @Security BearerAuth
// @Router /places [post]
func (h *Handler) PlaceCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}
	if !models.RoleAtLeast(subject.Role, models.RoleBusinessOwner) {
		rw.Forbidden("businessOwner role required to publish places")
		return
	}
	if !subject.HasScope(models.ScopeWrite) {
		rw.Forbidden("insufficient token scope")
		return
	}

	var req models.CreatePlaceRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	place := &models.Place{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		OwnerID:     subject.UserID,
	}
	if err := h.db.CreatePlace(r.Context(), place); err != nil {
		rw.DatabaseError(err, "failed to create place")
		return
	}

	h.publishPlaceEvent(r, models.TopicPlaceCreated, place)

	logging.Info().
		Str("place_id", place.ID.String()).
		Str("name", sanitizeLogValue(place.Name)).
		Int64("owner_id", subject.UserID).
		Msg("Place created")

	rw.Created(place)
}

// PlaceGet returns one place with its rating aggregates.
//
// @Summary Get a place
// @Tags Places
// @Produce json
// @Param id path string true "Place ID (UUID)"
// @Success 200 {object} models.APIResponse{data=models.Place} "Place found"
// @Failure 404 {object} models.APIResponse "Unknown place"
// @Security BearerAuth
// @Router /places/{id} [get]
func (h *Handler) PlaceGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := uuidParam(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	key := cache.GenerateKey("places:detail", id.String())
	if cached, ok := h.caches.Places.Get(key); ok {
		if place, ok := cached.(*models.Place); ok {
			rw.Success(place)
			return
		}
	}

	place, err := h.db.GetPlaceByID(r.Context(), id)
	if err != nil {
		writeDBError(rw, err, "place")
		return
	}

	h.caches.Places.Set(key, place)
	rw.Success(place)
}

// PlaceUpdate applies a partial update. Only the place owner, moderators,
// and admins may edit.
//
// @Summary Update a place
// @Tags Places
// @Accept json
// @Produce json
// @Param id path string true "Place ID (UUID)"
// @Param request body models.UpdatePlaceRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.Place} "Updated place"
// @Failure 403 {object} models.APIResponse "Not the owner or a moderator"
// @Failure 404 {object} models.APIResponse "Unknown place"
// @Security BearerAuth
// @Router /places/{id} [put]
func (h *Handler) PlaceUpdate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	id, err := uuidParam(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	existing, err := h.db.GetPlaceByID(r.Context(), id)
	if err != nil {
		writeDBError(rw, err, "place")
		return
	}
	if existing.OwnerID != subject.UserID && !models.RoleAtLeast(subject.Role, models.RoleModerator) {
		rw.Forbidden("only the owner or a moderator can edit this place")
		return
	}
	if !subject.HasScope(models.ScopeWrite) {
		rw.Forbidden("insufficient token scope")
		return
	}

	var req models.UpdatePlaceRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}
	if !req.HasUpdates() {
		rw.BadRequest("no fields to update")
		return
	}

	place, err := h.db.UpdatePlace(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, database.ErrNoFields) {
			rw.BadRequest("no fields to update")
			return
		}
		writeDBError(rw, err, "place")
		return
	}

	h.publishPlaceEvent(r, models.TopicPlaceUpdated, place)
	rw.Success(place)
}

// PlaceDelete removes a place and its dependent rows. Only the owner,
// moderators, and admins may delete.
//
// @Summary Delete a place
// @Tags Places
// @Param id path string true "Place ID (UUID)"
// @Success 204 "Place removed"
// @Failure 403 {object} models.APIResponse "Not the owner or a moderator"
// @Failure 404 {object} models.APIResponse "Unknown place"
// @Security BearerAuth
// @Router /places/{id} [delete]
func (h *Handler) PlaceDelete(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	id, err := uuidParam(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	existing, err := h.db.GetPlaceByID(r.Context(), id)
	if err != nil {
		writeDBError(rw, err, "place")
		return
	}
	if existing.OwnerID != subject.UserID && !models.RoleAtLeast(subject.Role, models.RoleModerator) {
		rw.Forbidden("only the owner or a moderator can delete this place")
		return
	}
	if !subject.HasScope(models.ScopeWrite) {
		rw.Forbidden("insufficient token scope")
		return
	}

	if err := h.db.DeletePlace(r.Context(), id); err != nil {
		writeDBError(rw, err, "place")
		return
	}

	h.publishPlaceEvent(r, models.TopicPlaceDeleted, existing)

	logging.Info().
		Str("place_id", id.String()).
		Int64("deleted_by", subject.UserID).
		Msg("Place deleted")

	rw.NoContent()
}

// PlaceMarkers returns the map-pin projection of every place inside a
// bounding box, for rendering a map viewport.
//
// @Summary Get map markers in a bounding box
// @Tags Places
// @Produce json
// @Param bbox query string true "minLon,minLat,maxLon,maxLat"
// @Param category query string false "Category filter"
// @Param limit query int false "Maximum markers (default 500, max 2000)"
// @Success 200 {object} models.APIResponse{data=[]models.Marker} "Markers in the viewport"
// @Failure 400 {object} models.APIResponse "Missing or malformed bbox"
// @Security BearerAuth
// @Router /places/markers [get]
func (h *Handler) PlaceMarkers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	raw := r.URL.Query().Get("bbox")
	if raw == "" {
		rw.BadRequest("bbox parameter is required")
		return
	}
	box, err := parseBBox(raw)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	category := r.URL.Query().Get("category")
	if category != "" && !models.IsValidCategory(category) {
		rw.BadRequest("invalid category")
		return
	}
	limit := getIntParam(r, "limit", 500)
	if limit < 1 || limit > 2000 {
		limit = 500
	}

	key := cache.GenerateKey("places:markers", map[string]interface{}{
		"box": box, "category": category, "limit": limit,
	})
	if cached, ok := h.caches.Markers.Get(key); ok {
		if markers, ok := cached.([]models.Marker); ok {
			rw.Success(markers)
			return
		}
	}

	markers, err := h.db.GetMarkersInBBox(r.Context(), box, category, limit)
	if err != nil {
		rw.DatabaseError(err, "failed to load markers")
		return
	}

	h.caches.Markers.Set(key, markers)
	rw.Success(markers)
}

// PlaceCategories returns the distinct categories with their place counts,
// for building filter chips in the client.
//
// @Summary List categories with place counts
// @Tags Places
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.CategoryCount} "Category counts"
// @Security BearerAuth
// @Router /places/categories [get]
func (h *Handler) PlaceCategories(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	const key = "places:categories"
	if cached, ok := h.caches.Places.Get(key); ok {
		if counts, ok := cached.([]models.CategoryCount); ok {
			rw.Success(counts)
			return
		}
	}

	counts, err := h.db.GetCategoryCounts(r.Context())
	if err != nil {
		rw.DatabaseError(err, "failed to load categories")
		return
	}

	h.caches.Places.Set(key, counts)
	rw.Success(counts)
}

// publishPlaceEvent emits a place domain event. Failures are logged, not
// surfaced; the HTTP mutation has already committed.
func (h *Handler) publishPlaceEvent(r *http.Request, topic string, place *models.Place) {
	err := h.bus.PublishPlace(r.Context(), topic, &models.PlaceEvent{
		PlaceID:    place.ID,
		OwnerID:    place.OwnerID,
		Name:       place.Name,
		Category:   place.Category,
		Latitude:   place.Latitude,
		Longitude:  place.Longitude,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logging.Warn().
			Err(err).
			Str("topic", topic).
			Str("place_id", place.ID.String()).
			Msg("Failed to publish place event")
	}
}
