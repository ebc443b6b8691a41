// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

type contextKey string

// SubjectContextKey is the request context key holding the authenticated
// subject.
const SubjectContextKey contextKey = "auth-subject"

// Authentication methods recorded on the subject.
const (
	AuthMethodSession  = "session"
	AuthMethodAPIToken = "api_token"
)

// Subject is the authenticated caller, resolved from either a session JWT
// or an API token.
type Subject struct {
	UserID int64
	Login  string
	Role   string

	// Method is how the caller authenticated (session or api_token).
	Method string

	// TokenID is the session jti or the API token id.
	TokenID string

	// Scopes are the API token's scopes. Empty for session subjects.
	Scopes []models.TokenScope
}

// IsAdmin reports whether the subject carries the admin role.
func (s *Subject) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// HasScope reports whether the subject may perform operations needing the
// given scope. Session subjects act with the full authority of their user,
// so every scope passes; API tokens are limited to their grants.
func (s *Subject) HasScope(scope models.TokenScope) bool {
	if s.Method != AuthMethodAPIToken {
		return true
	}
	for _, granted := range s.Scopes {
		if granted == scope {
			return true
		}
	}
	return false
}

// GetSubject returns the authenticated subject from a request context.
func GetSubject(ctx context.Context) (*Subject, bool) {
	subject, ok := ctx.Value(SubjectContextKey).(*Subject)
	return subject, ok
}

// UserLookup resolves user records for API token authentication. Implemented
// by *database.DB.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Middleware provides authentication, role and scope enforcement, rate
// limiting, CORS, and security headers.
type Middleware struct {
	sessions          *SessionManager
	tokens            *APITokenManager
	users             UserLookup
	rateLimiter       *RateLimiter
	rateLimitDisabled bool
	corsOrigins       []string
	trustedProxies    map[string]bool
}

// NewMiddleware creates the middleware chain from the security config.
func NewMiddleware(sessions *SessionManager, tokens *APITokenManager, users UserLookup, cfg *config.SecurityConfig) *Middleware {
	trustedMap := make(map[string]bool)
	for _, proxy := range cfg.TrustedProxies {
		trustedMap[proxy] = true
	}

	m := &Middleware{
		sessions:          sessions,
		tokens:            tokens,
		users:             users,
		rateLimiter:       NewRateLimiter(cfg.RateLimitReqs, cfg.RateLimitWindow),
		rateLimitDisabled: cfg.RateLimitDisabled,
		corsOrigins:       cfg.CORSOrigins,
		trustedProxies:    trustedMap,
	}

	if !cfg.RateLimitDisabled {
		go m.rateLimiter.startCleanup(5 * time.Minute)
	}

	return m
}

// Stop stops the rate limiter cleanup goroutine.
func (m *Middleware) Stop() {
	if !m.rateLimitDisabled {
		m.rateLimiter.Stop()
	}
}

// Authenticate enforces authentication. Session JWTs and API tokens are both
// accepted; the resolved subject is placed in the request context.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential := m.extractCredential(r)
		if credential == "" {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing credentials")
			return
		}

		if IsAPIToken(credential) {
			m.authenticateAPIToken(w, r, next, credential)
			return
		}

		m.authenticateSession(w, r, next, credential)
	}
}

// extractCredential pulls the credential from the Authorization header or
// the token cookie.
func (m *Middleware) extractCredential(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie("token")
		if err != nil {
			return ""
		}
		return cookie.Value
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	if IsAPIToken(authHeader) {
		return authHeader
	}
	return ""
}

// authenticateSession validates a JWT and its backing session.
func (m *Middleware) authenticateSession(w http.ResponseWriter, r *http.Request, next http.HandlerFunc, token string) {
	claims, err := m.sessions.Validate(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionExpired):
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "session expired")
		case errors.Is(err, ErrSessionNotFound):
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "session revoked")
		default:
			logging.Debug().Err(err).Str("client_ip", m.ClientIP(r)).Msg("Token validation failed")
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		}
		return
	}

	subject := &Subject{
		UserID:  claims.UserID,
		Login:   claims.Login,
		Role:    claims.Role,
		Method:  AuthMethodSession,
		TokenID: claims.ID,
	}
	ctx := context.WithValue(r.Context(), SubjectContextKey, subject)
	next(w, r.WithContext(ctx))
}

// authenticateAPIToken validates an API token, loads its owning user for the
// role, and records the request in the usage log once the response is
// written.
func (m *Middleware) authenticateAPIToken(w http.ResponseWriter, r *http.Request, next http.HandlerFunc, token string) {
	record, err := m.tokens.Validate(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenRevoked):
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token revoked")
		case errors.Is(err, ErrTokenExpired):
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token expired")
		default:
			logging.Debug().Err(err).Str("client_ip", m.ClientIP(r)).Msg("API token validation failed")
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		}
		return
	}

	user, err := m.users.GetUserByID(r.Context(), record.UserID)
	if err != nil {
		logging.Warn().Err(err).Int64("user_id", record.UserID).Msg("API token owner lookup failed")
		writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}

	subject := &Subject{
		UserID:  user.ID,
		Login:   user.Login,
		Role:    user.Role,
		Method:  AuthMethodAPIToken,
		TokenID: record.ID.String(),
		Scopes:  record.Scopes,
	}
	ctx := context.WithValue(r.Context(), SubjectContextKey, subject)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	next(rec, r.WithContext(ctx))

	m.tokens.LogRequest(record.ID, r.Method, r.URL.Path, rec.status, m.ClientIP(r), r.UserAgent())
}

// statusRecorder captures the response status for the usage log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// RequireRole enforces that the authenticated subject holds one of the given
// roles. Admins always pass. Runs after Authenticate.
func (m *Middleware) RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			subject, ok := GetSubject(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing credentials")
				return
			}

			if !subject.IsAdmin() && !hasAnyRole(subject.Role, roles) {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next(w, r)
		}
	}
}

func hasAnyRole(role string, roles []string) bool {
	for _, candidate := range roles {
		if role == candidate {
			return true
		}
	}
	return false
}

// RequireScope enforces that API token subjects carry the given scope.
// Session subjects always pass. Runs after Authenticate.
func (m *Middleware) RequireScope(scope models.TokenScope) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			subject, ok := GetSubject(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing credentials")
				return
			}

			if !subject.HasScope(scope) {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient token scope")
				return
			}

			next(w, r)
		}
	}
}

// RateLimit enforces per-IP rate limiting.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimitDisabled {
			next(w, r)
			return
		}

		ip := m.ClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			writeAuthError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			return
		}
		next(w, r)
	}
}

// CORS adds CORS headers based on the configured allowed origins.
func (m *Middleware) CORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := m.checkAndSetOriginHeaders(w, origin)

		if !allowed && origin != "" && r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		m.setCommonCORSHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// checkAndSetOriginHeaders checks if the origin is allowed and sets the
// origin headers.
func (m *Middleware) checkAndSetOriginHeaders(w http.ResponseWriter, origin string) bool {
	for _, allowedOrigin := range m.corsOrigins {
		if allowedOrigin == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			return true
		}
		if allowedOrigin == origin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			return true
		}
	}
	return false
}

// setCommonCORSHeaders sets the common CORS headers for all requests.
func (m *Middleware) setCommonCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	w.Header().Set("Access-Control-Max-Age", "86400")
}

// SecurityHeaders adds security headers to all responses. The CSP permits
// only same-origin content plus websocket upgrades, enough for the bundled
// API docs page.
func (m *Middleware) SecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		csp := "default-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self' wss: ws:; " +
			"frame-ancestors 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
		w.Header().Set("Content-Security-Policy", csp)
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if r.Header.Get("X-Forwarded-Proto") == "https" || r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		next(w, r)
	}
}

// ClientIP extracts the client IP from the request. Forwarding headers are
// honored only when the direct peer is a trusted proxy.
func (m *Middleware) ClientIP(r *http.Request) string {
	remoteIP := strings.Split(r.RemoteAddr, ":")[0]

	if !m.isFromTrustedProxy(remoteIP) {
		return remoteIP
	}

	if clientIP := extractIPFromXFF(r); clientIP != "" {
		return clientIP
	}

	if clientIP := extractIPFromXRealIP(r); clientIP != "" {
		return clientIP
	}

	return remoteIP
}

// isFromTrustedProxy checks if the remote IP is a trusted proxy.
func (m *Middleware) isFromTrustedProxy(remoteIP string) bool {
	return len(m.trustedProxies) > 0 && m.trustedProxies[remoteIP]
}

// extractIPFromXFF extracts and validates the first IP from X-Forwarded-For.
func extractIPFromXFF(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return ""
	}

	ips := strings.Split(xff, ",")
	clientIP := strings.TrimSpace(ips[0])
	if isValidIP(clientIP) {
		return clientIP
	}

	return ""
}

// extractIPFromXRealIP extracts and validates the IP from X-Real-IP.
func extractIPFromXRealIP(r *http.Request) string {
	xri := r.Header.Get("X-Real-IP")
	if xri != "" && isValidIP(xri) {
		return xri
	}
	return ""
}

// isValidIP checks if a string is a valid IP address (basic validation).
func isValidIP(ip string) bool {
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return isValidIPv4(parts)
	}
	return isValidIPv6(ip)
}

func isValidIPv4(parts []string) bool {
	for _, part := range parts {
		if len(part) == 0 || len(part) > 3 {
			return false
		}
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
		}
	}
	return true
}

// isValidIPv6 performs basic validation for IPv6 addresses.
func isValidIPv6(ip string) bool {
	return ip != "" && !strings.Contains(ip, " ") && len(ip) < 40
}

// writeAuthError writes a JSON error envelope.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := &models.APIResponse{
		Success: false,
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to write auth error response")
	}
}

// RateLimiter implements per-IP rate limiting with periodic cleanup of
// stale entries.
type RateLimiter struct {
	limiters  map[string]*rateLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
}

// rateLimiterEntry wraps a limiter with its last access time.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter creates a rate limiter allowing reqsPerWindow requests per
// window per IP.
func NewRateLimiter(reqsPerWindow int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Every(window),
		burst:     reqsPerWindow,
		stopClean: make(chan struct{}),
	}
}

// Allow checks if a request from the given IP is allowed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{
			limiter:    rate.NewLimiter(rl.rate, rl.burst),
			lastAccess: time.Now(),
		}
		rl.limiters[ip] = entry
	} else {
		entry.lastAccess = time.Now()
	}
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// startCleanup periodically removes stale limiters.
func (rl *RateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopClean:
			return
		}
	}
}

// cleanup removes limiters not accessed in the last hour.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopClean)
}
