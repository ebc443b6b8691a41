// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"errors"
	"net/http"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/metrics"
	"github.com/localis-app/localis/internal/models"
)

// TokenCreate issues a new API token for the calling user. The plaintext
// token value appears exactly once, in this response; only its hash is
// stored. Tokens with the admin scope require the admin role.
//
// @Summary Create an API token
// @Tags Tokens
// @Accept json
// @Produce json
// @Param request body models.CreateAPITokenRequest true "Name, scopes, and optional expiry"
// @Success 201 {object} models.APIResponse{data=models.CreateAPITokenResponse} "Includes the plaintext token, shown only here"
// @Failure 403 {object} models.APIResponse "API tokens cannot mint tokens; admin scope needs the admin role"
// @Security BearerAuth
// @Router /auth/tokens [post]
func (h *Handler) TokenCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}
	if subject.Method == auth.AuthMethodAPIToken {
		rw.Forbidden("API tokens cannot create other tokens")
		return
	}

	var req models.CreateAPITokenRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	for _, scope := range req.Scopes {
		if scope == models.ScopeAdmin && !subject.IsAdmin() {
			rw.Forbidden("only admins can create admin-scoped tokens")
			return
		}
	}

	token, plaintext, err := h.tokens.Create(r.Context(), subject.UserID, &req)
	if err != nil {
		metrics.RecordTokenOperation("create", false)
		rw.DatabaseError(err, "failed to create token")
		return
	}
	metrics.RecordTokenOperation("create", true)

	logging.Info().
		Str("token_id", token.ID.String()).
		Int64("user_id", subject.UserID).
		Str("name", sanitizeLogValue(token.Name)).
		Int("scopes", len(token.Scopes)).
		Msg("API token created")

	rw.Created(models.CreateAPITokenResponse{
		Token:          *token,
		PlaintextToken: plaintext,
	})
}

// TokenList returns the calling user's API tokens. Hashes and plaintext
// values are never included.
//
// @Summary List API tokens
// @Tags Tokens
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ListAPITokensResponse}
// @Failure 401 {object} models.APIResponse
// @Security BearerAuth
// @Router /auth/tokens [get]
func (h *Handler) TokenList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	tokens, err := h.tokens.List(r.Context(), subject.UserID)
	if err != nil {
		rw.DatabaseError(err, "failed to list tokens")
		return
	}
	metrics.RecordTokenOperation("list", true)

	rw.Success(models.ListAPITokensResponse{
		Tokens: tokens,
		Total:  len(tokens),
	})
}

// TokenGet returns one of the calling user's tokens.
//
// Method: GET
// Path: /api/v1/auth/tokens/{id}
func (h *Handler) TokenGet(w http.ResponseWriter, r *http.Request) {
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

	token, err := h.tokens.Get(r.Context(), id, subject.UserID)
	if err != nil {
		writeTokenError(rw, err)
		return
	}
	rw.Success(token)
}

// TokenDelete retires a token in two phases. The first call revokes: the
// token stops authenticating but stays listed with its usage history. A
// second call on the already-revoked token deletes it permanently.
//
// @Summary Revoke or delete an API token
// @Tags Tokens
// @Produce json
// @Param id path string true "Token ID (UUID)"
// @Success 200 {object} models.APIResponse "First call: revoked. Second call: deleted."
// @Failure 404 {object} models.APIResponse "Unknown token or not owned by caller"
// @Security BearerAuth
// @Router /auth/tokens/{id} [delete]
func (h *Handler) TokenDelete(w http.ResponseWriter, r *http.Request) {
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

	token, err := h.tokens.Get(r.Context(), id, subject.UserID)
	if err != nil {
		writeTokenError(rw, err)
		return
	}

	if !token.Revoked {
		if err := h.tokens.Revoke(r.Context(), id, subject.UserID); err != nil {
			metrics.RecordTokenOperation("revoke", false)
			writeTokenError(rw, err)
			return
		}
		metrics.RecordTokenOperation("revoke", true)
		rw.Success(map[string]interface{}{
			"revoked": true,
			"deleted": false,
		})
		return
	}

	if err := h.tokens.Delete(r.Context(), id, subject.UserID); err != nil {
		metrics.RecordTokenOperation("delete", false)
		writeTokenError(rw, err)
		return
	}
	metrics.RecordTokenOperation("delete", true)
	rw.NoContent()
}

// TokenUsage returns a token's request log, newest first.
//
// Method: GET
// Path: /api/v1/auth/tokens/{id}/usage
//
// Query parameters: limit (default 100, max 1000).
func (h *Handler) TokenUsage(w http.ResponseWriter, r *http.Request) {
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

	limit := getIntParam(r, "limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	usage, err := h.tokens.Usage(r.Context(), id, subject.UserID, limit)
	if err != nil {
		writeTokenError(rw, err)
		return
	}

	rw.Success(map[string]interface{}{
		"usage": usage,
		"total": len(usage),
	})
}

// TokenStats returns aggregate counts over the calling user's tokens.
//
// Method: GET
// Path: /api/v1/auth/tokens/stats
func (h *Handler) TokenStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		rw.Unauthorized("authentication required")
		return
	}

	stats, err := h.tokens.Stats(r.Context(), subject.UserID)
	if err != nil {
		rw.DatabaseError(err, "failed to load token stats")
		return
	}
	rw.Success(stats)
}

// writeTokenError maps token manager errors onto HTTP statuses.
func writeTokenError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenAccessDenied):
		rw.Forbidden("token belongs to another user")
	default:
		writeDBError(rw, err, "token")
	}
}
