// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/metrics"
	"github.com/localis-app/localis/internal/models"
)

// RateLimitConfig is a per-group request budget.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Per-group rate limit budgets. Auth endpoints get a tight budget because
// they are the credential-stuffing target; health gets a loose one because
// orchestrators poll it.
var (
	RateLimitAuth      = RateLimitConfig{Requests: 10, Window: time.Minute}
	RateLimitWrite     = RateLimitConfig{Requests: 30, Window: time.Minute}
	RateLimitAPI       = RateLimitConfig{Requests: 300, Window: time.Minute}
	RateLimitGeo       = RateLimitConfig{Requests: 60, Window: time.Minute}
	RateLimitWebSocket = RateLimitConfig{Requests: 30, Window: time.Minute}
	RateLimitHealth    = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

// ChiMiddleware builds the chi-native middleware: CORS preflight handling
// and per-IP rate limiting. Auth-level middleware (sessions, roles) lives
// in the auth package; this type covers the transport concerns.
type ChiMiddleware struct {
	cors     *cors.Cors
	disabled bool
}

// NewChiMiddleware builds the middleware set from the security config.
// When cfg is nil the CORS layer falls back to the library's allow-all
// default and rate limiting stays active with the default budgets.
func NewChiMiddleware(cfg *config.SecurityConfig) *ChiMiddleware {
	var origins []string
	disabled := false
	if cfg != nil {
		origins = cfg.CORSOrigins
		disabled = cfg.RateLimitDisabled
	}

	allowCredentials := true
	for _, o := range origins {
		if o == "*" {
			// The Fetch spec forbids credentials with a wildcard origin.
			allowCredentials = false
			break
		}
	}

	return &ChiMiddleware{
		cors: cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: allowCredentials,
			MaxAge:           300,
		}),
		disabled: disabled,
	}
}

// CORS returns the CORS handler for chi's Use chain.
func (cm *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return cm.cors.Handler
}

// RateLimit enforces a per-IP request budget. Exceeding it returns 429
// with the standard error envelope and a Retry-After header from
// httprate.
func (cm *ChiMiddleware) RateLimit(rl RateLimitConfig) func(http.Handler) http.Handler {
	if cm.disabled {
		return passthrough
	}
	return httprate.Limit(
		rl.Requests,
		rl.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

// rateLimitExceeded writes the envelope 429 and counts the rejection.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(&models.APIResponse{
		Success: false,
		Error: &models.APIError{
			Code:    ErrCodeRateLimited,
			Message: "too many requests",
		},
	})
}

// passthrough is the no-op middleware used when rate limiting is disabled.
func passthrough(next http.Handler) http.Handler {
	return next
}

// SecurityHeaders sets the standard hardening headers on API responses.
// HSTS is only sent on connections that are already TLS (directly or via
// a terminating proxy), per RFC 6797.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
