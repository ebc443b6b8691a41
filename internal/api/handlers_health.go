// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"
	"time"

	"github.com/localis-app/localis/internal/models"
)

// Health reports liveness plus dependency checks. Returns 200 when the
// database answers a ping and 503 otherwise, so load balancers can pull
// an instance whose storage died.
//
// @Summary Get system health status
// @Description Returns health status including database connectivity, event bus state, version, and uptime
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Service healthy"
// @Failure 503 {object} models.APIResponse "Database unreachable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := models.HealthStatus{
		Status:            "ok",
		Version:           h.version,
		DatabaseConnected: true,
		EventsEnabled:     h.bus.Enabled(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	if err := h.db.HealthCheck(r.Context()); err != nil {
		status.Status = "degraded"
		status.DatabaseConnected = false
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"database unreachable", map[string]interface{}{"health": status})
		return
	}

	rw.Success(status)
}
