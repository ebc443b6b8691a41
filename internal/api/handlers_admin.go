// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/cache"
	"github.com/localis-app/localis/internal/events"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/metrics"
	"github.com/localis-app/localis/internal/middleware"
	"github.com/localis-app/localis/internal/models"
)

// AdminStatsResponse is the admin dashboard payload: database aggregates
// plus a live snapshot of every runtime subsystem.
type AdminStatsResponse struct {
	Database      *models.AdminStats         `json:"database"`
	Authorization AuthzStatsSection          `json:"authorization"`
	Geo           GeoStatsSection            `json:"geo"`
	Events        EventsStatsSection         `json:"events"`
	WebSocket     WebSocketStatsSection      `json:"websocket"`
	Caches        map[string]cache.Stats     `json:"caches,omitempty"`
	Invalidation  *cache.InvalidationStats   `json:"invalidation,omitempty"`
	Endpoints     []middleware.EndpointStats `json:"endpoints,omitempty"`
	Runtime       RuntimeStatsSection        `json:"runtime"`
}

// AuthzStatsSection reports the Casbin policy shape.
type AuthzStatsSection struct {
	PolicyRules   int `json:"policy_rules"`
	GroupingRules int `json:"grouping_rules"`
}

// GeoStatsSection reports geocoder and route planner health.
type GeoStatsSection struct {
	GazetteerEntries    int    `json:"gazetteer_entries"`
	DirectionsAvailable bool   `json:"directions_available"`
	BreakerState        string `json:"breaker_state,omitempty"`
}

// EventsStatsSection reports the domain event bus state.
type EventsStatsSection struct {
	Enabled   bool                   `json:"enabled"`
	Transport string                 `json:"transport,omitempty"`
	Broadcast *events.BroadcastStats `json:"broadcast,omitempty"`
}

// WebSocketStatsSection reports live hub occupancy.
type WebSocketStatsSection struct {
	ConnectedClients int `json:"connected_clients"`
}

// RuntimeStatsSection reports Go process vitals.
type RuntimeStatsSection struct {
	Version        string  `json:"version"`
	GoVersion      string  `json:"go_version"`
	Goroutines     int     `json:"goroutines"`
	HeapAllocBytes uint64  `json:"heap_alloc_bytes"`
	NumCPU         int     `json:"num_cpu"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// AdminStats returns the admin dashboard: user/place/review aggregates
// from the database overlaid with live counters from every subsystem.
// Cached briefly because the database aggregation touches several tables.
//
// @Summary Get instance statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} models.APIResponse{data=api.AdminStatsResponse}
// @Failure 403 {object} models.APIResponse "Admin role and admin scope required"
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
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
	if !subject.HasScope(models.ScopeAdmin) {
		rw.Forbidden("insufficient token scope")
		return
	}

	const key = "admin:stats"
	if cached, ok := h.caches.Stats.Get(key); ok {
		if resp, ok := cached.(*AdminStatsResponse); ok {
			// Runtime numbers go stale fast; refresh them on a copy so
			// the cached value stays safe for concurrent readers.
			snapshot := *resp
			snapshot.Runtime = h.runtimeStats()
			rw.Success(&snapshot)
			return
		}
	}

	dbStats, err := h.db.GetAdminStats(r.Context())
	if err != nil {
		rw.DatabaseError(err, "failed to aggregate stats")
		return
	}

	if count, err := h.sessions.ActiveCount(r.Context()); err == nil {
		dbStats.ActiveSessions = count
		metrics.SetActiveSessions(int64(count))
	}

	resp := &AdminStatsResponse{
		Database: dbStats,
		Runtime:  h.runtimeStats(),
	}

	if h.enforcer != nil {
		policy, grouping := h.enforcer.RuleCounts()
		resp.Authorization = AuthzStatsSection{
			PolicyRules:   policy,
			GroupingRules: grouping,
		}
	}
	if h.geocoder != nil {
		resp.Geo.GazetteerEntries = h.geocoder.Len()
	}
	if h.planner != nil {
		resp.Geo.DirectionsAvailable = h.planner.DirectionsAvailable()
		resp.Geo.BreakerState = h.planner.BreakerState()
	}

	resp.Events.Enabled = h.bus.Enabled()
	resp.Events.Transport = h.bus.Transport()
	if h.broadcast != nil {
		stats := h.broadcast.Stats()
		resp.Events.Broadcast = &stats
	}
	if h.hub != nil {
		resp.WebSocket.ConnectedClients = h.hub.ClientCount()
	}

	resp.Caches = h.caches.StatsSnapshot()
	if h.invalidator != nil {
		stats := h.invalidator.Stats()
		resp.Invalidation = &stats
	}
	if h.perfMon != nil {
		resp.Endpoints = h.perfMon.GetStats()
	}

	h.caches.Stats.Set(key, resp)
	rw.Success(resp)
}

// AdminSessionRevoke revokes every session of the given user, for cutting
// off a compromised or abusive account without deleting it.
//
// Method: DELETE
// Path: /api/v1/admin/sessions/{userID}
func (h *Handler) AdminSessionRevoke(w http.ResponseWriter, r *http.Request) {
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
	if !subject.HasScope(models.ScopeAdmin) {
		rw.Forbidden("insufficient token scope")
		return
	}

	userID, err := int64Param(r, "userID")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	count, err := h.sessions.LogoutAll(r.Context(), userID)
	if err != nil {
		rw.InternalError("failed to revoke sessions")
		return
	}

	logging.Info().
		Int64("user_id", userID).
		Int64("revoked_by", subject.UserID).
		Int("revoked", count).
		Msg("Sessions revoked by admin")

	rw.Success(map[string]interface{}{"revoked_sessions": count})
}

func (h *Handler) runtimeStats() RuntimeStatsSection {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return RuntimeStatsSection{
		Version:        h.version,
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		NumCPU:         runtime.NumCPU(),
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
	}
}
