// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/authz"
	"github.com/localis-app/localis/internal/middleware"
)

// Router assembles the HTTP route table from the handler and the
// middleware stacks.
type Router struct {
	handler *Handler
	authMW  *auth.Middleware
	authzMW *authz.Middleware
	chiMW   *ChiMiddleware
	perfMon *middleware.PerformanceMonitor
}

// NewRouter creates a Router. authzMW may be nil, in which case the
// versioned API runs on authentication and in-handler role checks alone.
func NewRouter(handler *Handler, authMW *auth.Middleware, authzMW *authz.Middleware, chiMW *ChiMiddleware, perfMon *middleware.PerformanceMonitor) *Router {
	return &Router{
		handler: handler,
		authMW:  authMW,
		authzMW: authzMW,
		chiMW:   chiMW,
		perfMon: perfMon,
	}
}

// chiMiddleware lifts a HandlerFunc-shaped middleware into chi's Use chain.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup builds the chi mux.
//
// Layout:
//
//	/health, /metrics, /swagger/*     ops, no auth
//	/register, /login                 compat aliases, no auth
//	/places, /users/...               compat aliases, authenticated
//	/api/v1/auth/register|login       canonical, no auth
//	/api/v1/...                       canonical, authenticated + authorized
//	/ws                               live updates, authenticated
func (rt *Router) Setup() *chi.Mux {
	r := chi.NewRouter()

	// Order matters: RealIP before rate limiting keys on the client IP;
	// RequestID before anything that logs; Recoverer outside the
	// handlers so panics still produce a response.
	r.Use(chimiddleware.RealIP)
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.chiMW.CORS())
	if rt.perfMon != nil {
		r.Use(rt.perfMon.Middleware)
	}
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	h := rt.handler
	authn := chiMiddleware(rt.authMW.Authenticate)

	// Ops endpoints.
	r.With(rt.chiMW.RateLimit(RateLimitHealth)).Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Live updates.
	r.With(rt.chiMW.RateLimit(RateLimitWebSocket), authn).Get("/ws", h.WebSocket)

	// Compat aliases for the original mobile API. Same handlers as the
	// versioned routes; only the mount path differs.
	r.Group(func(r chi.Router) {
		r.Use(rt.chiMW.RateLimit(RateLimitAuth))
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
	r.Group(func(r chi.Router) {
		r.Use(rt.chiMW.RateLimit(RateLimitAPI))
		r.Use(authn)
		r.Get("/places", h.PlaceList)
		r.Post("/places", h.PlaceCreate)
		r.Get("/users", h.UserList)
		r.Get("/users/{id}", h.UserGet)
		r.Put("/users/{id}", h.UserUpdate)
		r.Delete("/users/{id}", h.UserDelete)
	})

	// Canonical versioned API.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SecurityHeaders)
		r.Use(chiMiddleware(middleware.Compression))

		// Credential endpoints stay outside the auth middleware.
		r.Group(func(r chi.Router) {
			r.Use(rt.chiMW.RateLimit(RateLimitAuth))
			r.Post("/auth/register", h.Register)
			r.Post("/auth/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.chiMW.RateLimit(RateLimitAPI))
			r.Use(authn)
			if rt.authzMW != nil {
				r.Use(chiMiddleware(rt.authzMW.AuthorizeRequest))
			}

			// Session management.
			r.Post("/auth/logout", h.Logout)
			r.Post("/auth/logout-all", h.LogoutAll)
			r.Get("/auth/sessions", h.SessionList)
			r.Get("/auth/me", h.Me)

			// API tokens.
			r.Post("/auth/tokens", h.TokenCreate)
			r.Get("/auth/tokens", h.TokenList)
			r.Get("/auth/tokens/stats", h.TokenStats)
			r.Get("/auth/tokens/{id}", h.TokenGet)
			r.Delete("/auth/tokens/{id}", h.TokenDelete)
			r.Get("/auth/tokens/{id}/usage", h.TokenUsage)

			// Users.
			r.Get("/users", h.UserList)
			r.Get("/users/{id}", h.UserGet)
			r.Put("/users/{id}", h.UserUpdate)
			r.Delete("/users/{id}", h.UserDelete)
			r.Get("/users/{id}/reviews", h.UserReviews)

			// Social.
			r.Get("/users/{id}/favorites", h.FavoritesList)
			r.Put("/users/{id}/follow", h.Follow)
			r.Delete("/users/{id}/follow", h.Unfollow)
			r.Get("/users/{id}/followers", h.FollowersList)
			r.Get("/users/{id}/following", h.FollowingList)
			r.Get("/profile", h.Profile)
			r.Get("/feed", h.Feed)

			// Places.
			r.Get("/places", h.PlaceList)
			r.With(rt.chiMW.RateLimit(RateLimitWrite)).Post("/places", h.PlaceCreate)
			r.Get("/places/markers", h.PlaceMarkers)
			r.Get("/places/categories", h.PlaceCategories)
			r.Get("/places/{id}", h.PlaceGet)
			r.With(rt.chiMW.RateLimit(RateLimitWrite)).Put("/places/{id}", h.PlaceUpdate)
			r.Delete("/places/{id}", h.PlaceDelete)
			r.Put("/places/{id}/favorite", h.FavoriteAdd)
			r.Delete("/places/{id}/favorite", h.FavoriteRemove)

			// Reviews.
			r.Get("/places/{id}/reviews", h.ReviewList)
			r.With(rt.chiMW.RateLimit(RateLimitWrite)).Post("/places/{id}/reviews", h.ReviewCreate)
			r.With(rt.chiMW.RateLimit(RateLimitWrite)).Put("/reviews/{id}", h.ReviewUpdate)
			r.Delete("/reviews/{id}", h.ReviewDelete)
			r.Post("/reviews/{id}/like", h.ReviewLike)
			r.Delete("/reviews/{id}/like", h.ReviewUnlike)

			// Search.
			r.Get("/search", h.Search)
			r.Get("/search/autocomplete", h.Autocomplete)

			// Geo.
			r.Group(func(r chi.Router) {
				r.Use(rt.chiMW.RateLimit(RateLimitGeo))
				r.Get("/geo/nearby", h.Nearby)
				r.Post("/geo/geocode", h.Geocode)
				r.Post("/geo/reverse", h.ReverseGeocode)
				r.Post("/geo/route", h.Route)
			})

			// Admin.
			r.Get("/admin/stats", h.AdminStats)
			r.Delete("/admin/sessions/{userID}", h.AdminSessionRevoke)
		})
	})

	return r
}
