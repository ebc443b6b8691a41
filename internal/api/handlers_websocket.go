// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/websocket"
)

// WebSocket upgrades the connection and attaches it to the live update
// hub. Clients receive place, review, and social events as they happen;
// the map view uses them to move pins without polling.
//
// @Summary Establish WebSocket connection
// @Description Upgrades to a WebSocket that streams place, review, and social events as they happen.
// @Tags Realtime
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {string} string "Authentication required"
// @Failure 503 {string} string "Hub not configured or at its connection cap"
// @Security BearerAuth
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.GetSubject(r.Context())
	if !ok {
		NewResponseWriter(w, r).Unauthorized("authentication required")
		return
	}

	if h.hub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("live updates are not configured")
		return
	}
	if h.hub.AtCapacity() {
		logging.Warn().
			Int64("user_id", subject.UserID).
			Int("clients", h.hub.ClientCount()).
			Msg("WebSocket connection rejected: hub at capacity")
		NewResponseWriter(w, r).ServiceUnavailable("too many live connections, try again later")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()

	logging.Info().
		Uint64("client_id", client.ID()).
		Int64("user_id", subject.UserID).
		Int("clients", h.hub.ClientCount()).
		Msg("WebSocket client connected")
}
