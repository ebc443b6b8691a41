// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"errors"
	"net/http"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/database"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

// UserList returns all users, paginated. Admin only.
//
// Method: GET
// Path: /users, /api/v1/users
func (h *Handler) UserList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}
	if !subject.IsAdmin() {
		rw.Forbidden("admin role required")
		return
	}

	page, pageSize := h.parsePagination(r)
	users, total, err := h.db.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		rw.DatabaseError(err, "failed to list users")
		return
	}

	sanitized := make([]*models.User, len(users))
	for i := range users {
		sanitized[i] = users[i].Sanitize()
	}
	rw.SuccessWithPagination(sanitized, models.NewPaginationInfo(page, pageSize, total))
}

// UserGet returns one user. Callers may fetch themselves; everyone else
// requires the admin role.
//
// Method: GET
// Path: /users/{id}, /api/v1/users/{id}
func (h *Handler) UserGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	id, err := int64Param(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if id != subject.UserID && !subject.IsAdmin() {
		rw.Forbidden("insufficient permissions")
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		writeDBError(rw, err, "user")
		return
	}
	rw.Success(user.Sanitize())
}

// UserUpdate modifies a user's login, password, or role. Users may edit
// themselves; admins may edit anyone. Role changes are admin only. A role
// or password change revokes every session of the affected user, so stale
// tokens cannot keep the old privileges alive.
//
// Method: PUT
// Path: /users/{id}, /api/v1/users/{id}
func (h *Handler) UserUpdate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	id, err := int64Param(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if id != subject.UserID && !subject.IsAdmin() {
		rw.Forbidden("insufficient permissions")
		return
	}

	var req models.UpdateUserRequest
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
	if req.Role != nil && !subject.IsAdmin() {
		rw.Forbidden("only admins can change roles")
		return
	}

	update := database.UserUpdate{
		Login: req.Username,
		Role:  req.Role,
	}
	if req.Passwd != nil {
		hash, err := h.hasher.Hash(*req.Passwd)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordTooLong) {
				rw.BadRequest("password exceeds 72 bytes")
				return
			}
			rw.InternalError("failed to process password")
			return
		}
		update.PasswordHash = &hash
	}

	user, err := h.db.UpdateUser(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.Conflict("login already taken")
			return
		}
		writeDBError(rw, err, "user")
		return
	}

	// Privilege-affecting changes invalidate existing credentials.
	if req.Role != nil || req.Passwd != nil {
		if revoked, err := h.sessions.LogoutAll(r.Context(), id); err == nil && revoked > 0 {
			logging.Info().
				Int64("user_id", id).
				Int("revoked", revoked).
				Msg("Sessions revoked after credential change")
		}
	}

	rw.Success(user.Sanitize())
}

// UserDelete removes a user. Users may delete themselves; admins may
// delete anyone except the bootstrap admin (id 1). All sessions of the
// deleted user are revoked.
//
// Method: DELETE
// Path: /users/{id}, /api/v1/users/{id}
func (h *Handler) UserDelete(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	id, err := int64Param(r, "id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if id != subject.UserID && !subject.IsAdmin() {
		rw.Forbidden("insufficient permissions")
		return
	}

	if err := h.db.DeleteUser(r.Context(), id); err != nil {
		writeDBError(rw, err, "user")
		return
	}

	if revoked, err := h.sessions.LogoutAll(r.Context(), id); err == nil && revoked > 0 {
		logging.Info().
			Int64("user_id", id).
			Int("revoked", revoked).
			Msg("Sessions revoked after account deletion")
	}

	logging.Info().
		Int64("user_id", id).
		Int64("deleted_by", subject.UserID).
		Msg("User deleted")

	rw.NoContent()
}
