// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/authz"
	"github.com/localis-app/localis/internal/cache"
	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/database"
	"github.com/localis-app/localis/internal/events"
	"github.com/localis-app/localis/internal/geo"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/middleware"
	"github.com/localis-app/localis/internal/websocket"
)

// HandlerConfig bundles the dependencies a Handler needs. DB, Config,
// Sessions, Tokens, and Hasher are required; the rest may be nil and the
// affected endpoints degrade (503 for geo services, no-op for events and
// caches).
type HandlerConfig struct {
	DB          *database.DB
	Config      *config.Config
	Sessions    *auth.SessionManager
	Tokens      *auth.APITokenManager
	Hasher      *auth.PasswordHasher
	AuthMW      *auth.Middleware
	Enforcer    *authz.Enforcer
	Geocoder    *geo.Geocoder
	Planner     *geo.RoutePlanner
	Bus         *events.Bus
	Hub         *websocket.Hub
	Caches      *cache.Set
	Invalidator *cache.Invalidator
	Broadcast   *events.BroadcastHandler
	PerfMon     *middleware.PerformanceMonitor
	Version     string
}

// Handler owns every HTTP endpoint. Methods are wired into routes by
// Router.Setup; none of them assume a particular mount path.
type Handler struct {
	db          *database.DB
	cfg         *config.Config
	sessions    *auth.SessionManager
	tokens      *auth.APITokenManager
	hasher      *auth.PasswordHasher
	authMW      *auth.Middleware
	enforcer    *authz.Enforcer
	geocoder    *geo.Geocoder
	planner     *geo.RoutePlanner
	bus         *events.Bus
	hub         *websocket.Hub
	caches      *cache.Set
	invalidator *cache.Invalidator
	broadcast   *events.BroadcastHandler
	perfMon     *middleware.PerformanceMonitor
	version     string
	startTime   time.Time
}

// NewHandler creates a Handler. A nil Caches falls back to a disabled
// cache set so handlers never branch on configuration.
func NewHandler(hc HandlerConfig) *Handler {
	caches := hc.Caches
	if caches == nil {
		caches = cache.NewSet(&config.CacheConfig{Enabled: false})
	}
	bus := hc.Bus
	if bus == nil {
		bus = events.New(&config.EventsConfig{Enabled: false})
	}
	return &Handler{
		db:          hc.DB,
		cfg:         hc.Config,
		sessions:    hc.Sessions,
		tokens:      hc.Tokens,
		hasher:      hc.Hasher,
		authMW:      hc.AuthMW,
		enforcer:    hc.Enforcer,
		geocoder:    hc.Geocoder,
		planner:     hc.Planner,
		bus:         bus,
		hub:         hc.Hub,
		caches:      caches,
		invalidator: hc.Invalidator,
		broadcast:   hc.Broadcast,
		perfMon:     hc.PerfMon,
		version:     hc.Version,
		startTime:   time.Now(),
	}
}

// clientIP resolves the caller's IP, honoring trusted proxy headers when
// the auth middleware is configured.
func (h *Handler) clientIP(r *http.Request) string {
	if h.authMW != nil {
		return h.authMW.ClientIP(r)
	}
	return r.RemoteAddr
}

// getUpgrader builds the WebSocket upgrader with origin checking tied to
// the configured CORS origins.
func (h *Handler) getUpgrader() gorillaws.Upgrader {
	readBuf, writeBuf := 1024, 1024
	if h.cfg != nil {
		if h.cfg.WebSocket.ReadBufferSize > 0 {
			readBuf = h.cfg.WebSocket.ReadBufferSize
		}
		if h.cfg.WebSocket.WriteBufferSize > 0 {
			writeBuf = h.cfg.WebSocket.WriteBufferSize
		}
	}
	return gorillaws.Upgrader{
		ReadBufferSize:   readBuf,
		WriteBufferSize:  writeBuf,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkWebSocketOrigin,
	}
}

// checkWebSocketOrigin validates the Origin header against the configured
// CORS origins. Requests without an Origin header are rejected; browsers
// always send one, so its absence means a non-browser client that should
// be using the REST API instead.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().
			Str("remote_addr", r.RemoteAddr).
			Msg("WebSocket upgrade rejected: missing Origin header")
		return false
	}

	if h.cfg == nil {
		return true
	}

	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket upgrade rejected: origin not allowed")
	return false
}
