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
	"github.com/localis-app/localis/internal/database"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

// ReviewList returns a place's reviews, newest first, paginated.
//
// @Summary List reviews for a place
// @Tags Reviews
// @Produce json
// @Param id path string true "Place ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} models.APIResponse{data=[]models.Review} "Reviews with pagination meta"
// @Failure 404 {object} models.APIResponse "Unknown place"
// @Security BearerAuth
// @Router /places/{id}/reviews [get]
func (h *Handler) ReviewList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	placeID, err := uuidParam(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	page, pageSize := h.parsePagination(r)
	reviews, total, err := h.db.ListReviewsByPlace(r.Context(), placeID, page, pageSize)
	if err != nil {
		writeDBError(rw, err, "place")
		return
	}

	rw.SuccessWithPagination(reviews, models.NewPaginationInfo(page, pageSize, total))
}

// ReviewCreate submits a review for a place. Each user gets one review per
// place; the place's rating aggregates refresh in the same transaction.
//
// @Summary Review a place
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Place ID (UUID)"
// @Param request body models.CreateReviewRequest true "Rating and text"
// @Success 201 {object} models.APIResponse{data=models.Review} "Review stored"
// @Failure 404 {object} models.APIResponse "Unknown place"
// @Failure 409 {object} models.APIResponse "Already reviewed by this user"
// @Security BearerAuth
// @Router /places/{id}/reviews [post]
func (h *Handler) ReviewCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}
	if !subject.HasScope(models.ScopeWrite) {
		rw.Forbidden("insufficient token scope")
		return
	}

	placeID, err := uuidParam(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.CreateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	review := &models.Review{
		PlaceID: placeID,
		UserID:  subject.UserID,
		Rating:  req.Rating,
		Text:    req.Text,
	}
	if err := h.db.CreateReview(r.Context(), review); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.Conflict("you have already reviewed this place")
			return
		}
		writeDBError(rw, err, "place")
		return
	}

	h.publishReviewEvent(r, models.TopicReviewCreated, review)

	logging.Info().
		Str("review_id", review.ID.String()).
		Str("place_id", placeID.String()).
		Int64("user_id", subject.UserID).
		Int("rating", req.Rating).
		Msg("Review created")

	rw.Created(review)
}

// ReviewUpdate edits a review's rating or text. Authors may edit their
// own reviews; moderators and admins may edit any.
//
// Method: PUT
// Path: /api/v1/reviews/{id}
func (h *Handler) ReviewUpdate(w http.ResponseWriter, r *http.Request) {
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

	existing, err := h.db.GetReviewByID(r.Context(), id)
	if err != nil {
		writeDBError(rw, err, "review")
		return
	}
	if existing.UserID != subject.UserID && !models.RoleAtLeast(subject.Role, models.RoleModerator) {
		rw.Forbidden("only the author or a moderator can edit this review")
		return
	}
	if !subject.HasScope(models.ScopeWrite) {
		rw.Forbidden("insufficient token scope")
		return
	}

	var req models.UpdateReviewRequest
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

	review, err := h.db.UpdateReview(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, database.ErrNoFields) {
			rw.BadRequest("no fields to update")
			return
		}
		writeDBError(rw, err, "review")
		return
	}

	h.publishReviewEvent(r, models.TopicReviewUpdated, review)
	rw.Success(review)
}

// ReviewDelete removes a review. Authors may delete their own; moderators
// and admins may delete any. The place's aggregates refresh in the same
// transaction.
//
// Method: DELETE
// Path: /api/v1/reviews/{id}
func (h *Handler) ReviewDelete(w http.ResponseWriter, r *http.Request) {
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

	existing, err := h.db.GetReviewByID(r.Context(), id)
	if err != nil {
		writeDBError(rw, err, "review")
		return
	}
	if existing.UserID != subject.UserID && !models.RoleAtLeast(subject.Role, models.RoleModerator) {
		rw.Forbidden("only the author or a moderator can delete this review")
		return
	}
	if !subject.HasScope(models.ScopeWrite) {
		rw.Forbidden("insufficient token scope")
		return
	}

	if err := h.db.DeleteReview(r.Context(), id); err != nil {
		writeDBError(rw, err, "review")
		return
	}

	h.publishReviewEvent(r, models.TopicReviewDeleted, existing)

	logging.Info().
		Str("review_id", id.String()).
		Int64("deleted_by", subject.UserID).
		Msg("Review deleted")

	rw.NoContent()
}

// ReviewLike records a like on a review. Liking twice returns 409.
//
// Method: POST
// Path: /api/v1/reviews/{id}/like
func (h *Handler) ReviewLike(w http.ResponseWriter, r *http.Request) {
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

	if err := h.db.LikeReview(r.Context(), id, subject.UserID); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.Conflict("review already liked")
			return
		}
		writeDBError(rw, err, "review")
		return
	}

	rw.Success(map[string]interface{}{"liked": true})
}

// ReviewUnlike removes the caller's like from a review. Returns 404 when
// the caller had not liked it.
//
// Method: DELETE
// Path: /api/v1/reviews/{id}/like
func (h *Handler) ReviewUnlike(w http.ResponseWriter, r *http.Request) {
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

	if err := h.db.UnlikeReview(r.Context(), id, subject.UserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("like not found")
			return
		}
		writeDBError(rw, err, "review")
		return
	}

	rw.NoContent()
}

// UserReviews returns every review written by a user, paginated.
//
// Method: GET
// Path: /api/v1/users/{id}/reviews
func (h *Handler) UserReviews(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := int64Param(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	page, pageSize := h.parsePagination(r)
	reviews, total, err := h.db.ListReviewsByUser(r.Context(), userID, page, pageSize)
	if err != nil {
		writeDBError(rw, err, "user")
		return
	}

	rw.SuccessWithPagination(reviews, models.NewPaginationInfo(page, pageSize, total))
}

// publishReviewEvent emits a review domain event. Failures are logged,
// not surfaced.
func (h *Handler) publishReviewEvent(r *http.Request, topic string, review *models.Review) {
	err := h.bus.PublishReview(r.Context(), topic, &models.ReviewEvent{
		ReviewID:   review.ID,
		PlaceID:    review.PlaceID,
		UserID:     review.UserID,
		Rating:     review.Rating,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logging.Warn().
			Err(err).
			Str("topic", topic).
			Str("review_id", review.ID.String()).
			Msg("Failed to publish review event")
	}
}
