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

// Register creates a new account and immediately issues a session token,
// so a fresh client is signed in with a single round trip. The role
// defaults to the configured self-service role (normally "user"). Only
// "user" and "businessOwner" can be chosen at registration; moderator and
// admin accounts are provisioned by an existing admin.
//
// @Summary Register a new account
// @Description Creates a user and returns a fresh bearer token in one round trip
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Login, password, and optional role"
// @Success 201 {object} models.APIResponse{data=models.AuthResponse} "Account created"
// @Failure 400 {object} models.APIResponse "Missing login or invalid role"
// @Failure 409 {object} models.APIResponse "Login already taken"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	role := req.Role
	if role == "" {
		role = h.defaultRole()
	} else if role != models.RoleUser && role != models.RoleBusinessOwner {
		// Elevated roles are provisioned by an admin, never self-service.
		rw.BadRequest("invalid role")
		return
	}
	if !models.IsValidRole(role) {
		rw.BadRequest("invalid role")
		return
	}

	hash, err := h.hasher.Hash(req.Passwd)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			rw.BadRequest("password exceeds 72 bytes")
			return
		}
		rw.InternalError("failed to process password")
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Login, hash, role)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.Conflict("login already taken")
			return
		}
		rw.DatabaseError(err, "failed to create user")
		return
	}

	token, _, err := h.sessions.Issue(r.Context(), user, r.UserAgent(), h.clientIP(r))
	if err != nil {
		rw.InternalError("account created but session issue failed; use /login")
		return
	}

	logging.Info().
		Int64("user_id", user.ID).
		Str("login", sanitizeLogValue(user.Login)).
		Str("role", user.Role).
		Msg("User registered")

	rw.Created(models.AuthResponse{ID: user.ID, Token: token})
}

// Login verifies credentials and issues a fresh session token. Every call
// creates a new session; existing sessions stay valid until logout or
// expiry. The failure message never reveals whether the login or the
// password was wrong.
//
// @Summary Log in
// @Description Verifies credentials and returns a bearer token for subsequent requests
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login and password"
// @Success 200 {object} models.APIResponse{data=models.AuthResponse} "Session issued"
// @Failure 403 {object} models.APIResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	user, err := h.db.GetUserByLogin(r.Context(), req.Login)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Forbidden("invalid credentials")
			return
		}
		rw.DatabaseError(err, "login failed")
		return
	}

	if err := h.hasher.Verify(user.PasswordHash, req.Passwd); err != nil {
		logging.Warn().
			Str("login", sanitizeLogValue(req.Login)).
			Str("client_ip", h.clientIP(r)).
			Msg("Login failed: password mismatch")
		rw.Forbidden("invalid credentials")
		return
	}

	token, _, err := h.sessions.Issue(r.Context(), user, r.UserAgent(), h.clientIP(r))
	if err != nil {
		rw.InternalError("failed to issue session")
		return
	}

	logging.Info().
		Int64("user_id", user.ID).
		Str("login", sanitizeLogValue(user.Login)).
		Msg("User logged in")

	rw.Success(models.AuthResponse{ID: user.ID, Token: token})
}

// Logout revokes the current session. The bearer token stops working
// immediately even though its JWT expiry lies in the future.
//
// @Summary Log out the current session
// @Tags Auth
// @Produce json
// @Success 200 {object} models.APIResponse "Session revoked"
// @Failure 400 {object} models.APIResponse "API tokens have no session"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}
	if subject.Method == auth.AuthMethodAPIToken {
		rw.BadRequest("API tokens have no session; revoke the token instead")
		return
	}

	if err := h.sessions.Logout(r.Context(), subject.TokenID); err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			rw.NotFound("session not found")
			return
		}
		rw.InternalError("logout failed")
		return
	}

	rw.Success(map[string]interface{}{"revoked": true})
}

// LogoutAll revokes every session of the calling user, including the one
// making this request.
//
// Method: POST
// Path: /api/v1/auth/logout-all
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	count, err := h.sessions.LogoutAll(r.Context(), subject.UserID)
	if err != nil {
		rw.InternalError("failed to revoke sessions")
		return
	}

	logging.Info().
		Int64("user_id", subject.UserID).
		Int("revoked", count).
		Msg("All sessions revoked by user")

	rw.Success(map[string]interface{}{"revoked_sessions": count})
}

// SessionList returns the calling user's active sessions so a client can
// show "signed in devices".
//
// Method: GET
// Path: /api/v1/auth/sessions
func (h *Handler) SessionList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	sessions, err := h.sessions.UserSessions(r.Context(), subject.UserID)
	if err != nil {
		rw.InternalError("failed to list sessions")
		return
	}

	rw.Success(map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// Me returns the calling user's account plus how the request was
// authenticated. Token callers also see their granted scopes.
//
// @Summary Get the authenticated account
// @Tags Auth
// @Produce json
// @Success 200 {object} models.APIResponse "Account, auth method, and token scopes when applicable"
// @Failure 401 {object} models.APIResponse "Missing or invalid token"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	user, err := h.db.GetUserByID(r.Context(), subject.UserID)
	if err != nil {
		writeDBError(rw, err, "user")
		return
	}

	data := map[string]interface{}{
		"user":        user.Sanitize(),
		"auth_method": subject.Method,
	}
	if subject.Method == auth.AuthMethodAPIToken {
		data["scopes"] = subject.Scopes
	}
	rw.Success(data)
}

// defaultRole returns the role assigned to self-service registrations.
func (h *Handler) defaultRole() string {
	if h.cfg != nil && h.cfg.Security.DefaultRole != "" {
		return h.cfg.Security.DefaultRole
	}
	return models.RoleUser
}
