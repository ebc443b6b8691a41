// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/cache"
	"github.com/localis-app/localis/internal/database"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

// FavoriteAdd marks a place as a favorite of the caller. PUT is
// idempotent: favoriting a place twice succeeds without a second row.
//
// @Summary Favorite a place
// @Tags Social
// @Produce json
// @Param id path string true "Place ID (UUID)"
// @Success 200 {object} models.APIResponse "Favorited"
// @Failure 404 {object} models.APIResponse "Unknown place"
// @Security BearerAuth
// @Router /places/{id}/favorite [put]
func (h *Handler) FavoriteAdd(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	placeID, err := uuidParam(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.AddFavorite(r.Context(), subject.UserID, placeID); err != nil {
		if !errors.Is(err, database.ErrDuplicate) {
			writeDBError(rw, err, "place")
			return
		}
	}

	rw.Success(map[string]interface{}{"favorited": true})
}

// FavoriteRemove removes a place from the caller's favorites. Returns 404
// when the place was not favorited.
//
// Method: DELETE
// Path: /api/v1/places/{id}/favorite
func (h *Handler) FavoriteRemove(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	placeID, err := uuidParam(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.RemoveFavorite(r.Context(), subject.UserID, placeID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("favorite not found")
			return
		}
		writeDBError(rw, err, "place")
		return
	}

	rw.NoContent()
}

// FavoritesList returns a user's favorited places, most recent first.
// Favorites are visible to any authenticated user; they are the social
// signal the app is built around.
//
// Method: GET
// Path: /api/v1/users/{id}/favorites
func (h *Handler) FavoritesList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := int64Param(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	page, pageSize := h.parsePagination(r)
	places, total, err := h.db.ListFavorites(r.Context(), userID, page, pageSize)
	if err != nil {
		rw.DatabaseError(err, "failed to list favorites")
		return
	}

	rw.SuccessWithPagination(places, models.NewPaginationInfo(page, pageSize, total))
}

// Follow makes the caller follow another user. Self-follows are rejected;
// following an already-followed user is idempotent.
//
// @Summary Follow a user
// @Tags Social
// @Produce json
// @Param id path integer true "User ID"
// @Success 200 {object} models.APIResponse "Following"
// @Failure 400 {object} models.APIResponse "Self-follow"
// @Failure 404 {object} models.APIResponse "Unknown user"
// @Security BearerAuth
// @Router /users/{id}/follow [put]
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	followeeID, err := int64Param(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if followeeID == subject.UserID {
		rw.BadRequest("you cannot follow yourself")
		return
	}

	err = h.db.FollowUser(r.Context(), subject.UserID, followeeID)
	switch {
	case err == nil:
		// Fresh follow; announce it.
		h.publishFollowEvent(r, subject.UserID, followeeID)
	case errors.Is(err, database.ErrDuplicate):
		// Already following; idempotent success.
	default:
		writeDBError(rw, err, "user")
		return
	}

	rw.Success(map[string]interface{}{"following": true})
}

// Unfollow removes a follow relationship. Returns 404 when the caller was
// not following the user.
//
// Method: DELETE
// Path: /api/v1/users/{id}/follow
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	followeeID, err := int64Param(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.UnfollowUser(r.Context(), subject.UserID, followeeID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("follow relationship not found")
			return
		}
		writeDBError(rw, err, "user")
		return
	}

	rw.NoContent()
}

// FollowersList returns the users following the given user.
//
// Method: GET
// Path: /api/v1/users/{id}/followers
func (h *Handler) FollowersList(w http.ResponseWriter, r *http.Request) {
	h.listFollowUsers(w, r, h.db.ListFollowers)
}

// FollowingList returns the users the given user follows.
//
// Method: GET
// Path: /api/v1/users/{id}/following
func (h *Handler) FollowingList(w http.ResponseWriter, r *http.Request) {
	h.listFollowUsers(w, r, h.db.ListFollowing)
}

func (h *Handler) listFollowUsers(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID int64, page, pageSize int) ([]models.User, int64, error)) {
	rw := NewResponseWriter(w, r)

	userID, err := int64Param(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	page, pageSize := h.parsePagination(r)
	users, total, err := list(r.Context(), userID, page, pageSize)
	if err != nil {
		rw.DatabaseError(err, "failed to list follows")
		return
	}

	sanitized := make([]*models.User, len(users))
	for i := range users {
		sanitized[i] = users[i].Sanitize()
	}
	rw.SuccessWithPagination(sanitized, models.NewPaginationInfo(page, pageSize, total))
}

// Profile returns the caller's account with social counts (followers,
// following, favorites, reviews, owned places).
//
// @Summary Get own profile
// @Tags Social
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.Profile} "Account and social counts"
// @Failure 401 {object} models.APIResponse
// @Security BearerAuth
// @Router /profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	profile, err := h.db.GetProfile(r.Context(), subject.UserID)
	if err != nil {
		writeDBError(rw, err, "user")
		return
	}

	rw.Success(profile)
}

// Feed returns recent activity from the users the caller follows: their
// new reviews and newly published places, newest first.
//
// @Summary Get activity feed
// @Tags Social
// @Produce json
// @Param limit query integer false "Maximum items" default(50) maximum(200)
// @Success 200 {object} models.APIResponse{data=[]models.FeedItem} "Newest first"
// @Failure 401 {object} models.APIResponse
// @Security BearerAuth
// @Router /feed [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	limit := getIntParam(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	key := cache.GenerateKey("social:feed", map[string]interface{}{
		"user": subject.UserID, "limit": limit,
	})
	if cached, ok := h.caches.Feed.Get(key); ok {
		if items, ok := cached.([]models.FeedItem); ok {
			rw.Success(items)
			return
		}
	}

	items, err := h.db.GetFeed(r.Context(), subject.UserID, limit)
	if err != nil {
		rw.DatabaseError(err, "failed to build feed")
		return
	}

	h.caches.Feed.Set(key, items)
	rw.Success(items)
}

// publishFollowEvent emits a social.followed event. Failures are logged,
// not surfaced.
func (h *Handler) publishFollowEvent(r *http.Request, followerID, followeeID int64) {
	err := h.bus.PublishFollow(r.Context(), &models.FollowEvent{
		FollowerID: followerID,
		FolloweeID: followeeID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logging.Warn().
			Err(err).
			Int64("follower_id", followerID).
			Int64("followee_id", followeeID).
			Msg("Failed to publish follow event")
	}
}
