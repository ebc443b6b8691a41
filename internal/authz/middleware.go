// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package authz

import (
	"net"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

// Middleware enforces the RBAC policy on authenticated requests.
// It runs after authentication and consults the Casbin enforcer with the
// subject's role, the request path and the HTTP method.
type Middleware struct {
	enforcer *Enforcer
	audit    *AuditLogger
}

// NewMiddleware creates a new authorization middleware.
// audit may be nil to disable decision auditing.
func NewMiddleware(enforcer *Enforcer, audit *AuditLogger) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		audit:    audit,
	}
}

// AuthorizeRequest authorizes the request path and method against the
// policy using the authenticated subject's role. Requests without a
// subject are rejected; the authentication middleware must run first.
func (m *Middleware) AuthorizeRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := auth.GetSubject(r.Context())
		if !ok {
			writeAuthzError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		role := m.enforcer.roleFor(subject)

		cacheHit := false
		if m.enforcer.cache != nil {
			_, cacheHit = m.enforcer.cache.get(role, r.URL.Path, r.Method)
		}

		start := time.Now()
		allowed, err := m.enforcer.Authorize(subject, r.URL.Path, r.Method)
		if err != nil {
			logging.Error().
				Err(err).
				Str("role", role).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("Authorization check failed")
			writeAuthzError(w, http.StatusInternalServerError, "INTERNAL", "authorization check failed")
			return
		}

		m.auditDecision(r, subject, role, allowed, time.Since(start), cacheHit)

		if !allowed {
			writeAuthzError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}

		next(w, r)
	}
}

// auditDecision records the decision with the audit logger, if configured.
func (m *Middleware) auditDecision(r *http.Request, subject *auth.Subject, role string, allowed bool, duration time.Duration, cacheHit bool) {
	if m.audit == nil {
		return
	}

	reason := ""
	if !allowed {
		reason = "insufficient permissions"
	}

	m.audit.LogDecision(&AuditEvent{
		RequestID:  chimiddleware.GetReqID(r.Context()),
		ActorID:    subject.UserID,
		ActorLogin: subject.Login,
		ActorRole:  role,
		Resource:   r.URL.Path,
		Method:     r.Method,
		Decision:   allowed,
		Reason:     reason,
		Duration:   duration,
		CacheHit:   cacheHit,
		IPAddress:  remoteHost(r),
		UserAgent:  r.UserAgent(),
	})
}

// remoteHost strips the port from the request's remote address.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeAuthzError writes a JSON error envelope.
func writeAuthzError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := models.APIResponse{
		Success: false,
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode authorization error response")
	}
}
