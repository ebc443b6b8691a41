// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package services provides suture.Service wrappers for Localis components.

This package adapts existing application components to the suture v4
supervision model, translating their lifecycle patterns (Run, ListenAndServe,
ticker loops) into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation into the Serve pattern
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Serves TLS when a certificate pair is configured, cleartext otherwise
  - Configurable shutdown timeout for draining connections

WebSocket Hub (WebSocketHubService):
  - Wraps websocket.Hub with context support
  - Handles client connection cleanup on shutdown

Event Consumers (ConsumerService):
  - Wraps any Run(ctx) loop under a stable supervisor name
  - Used for the event-to-WebSocket broadcast relay
  - Used for the bus-driven cache invalidator

Session Janitor (JanitorService):
  - Sweeps expired sessions on an interval
  - Refreshes the active-session and active-token gauges
  - Runs in the data layer, isolated from the API

# Usage Example

Creating and registering services:

	import (
	    "net/http"
	    "time"

	    "github.com/localis-app/localis/internal/supervisor"
	    "github.com/localis-app/localis/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server, hub *websocket.Hub, relay *events.BroadcastHandler) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    // HTTP server with 30s shutdown timeout
	    httpSvc := services.NewHTTPServerService(server, cfg.TLSCert, cfg.TLSKey, 30*time.Second)
	    tree.AddAPIService(httpSvc)

	    // WebSocket hub
	    tree.AddMessagingService(services.NewWebSocketHubService(hub))

	    // Event broadcast relay
	    tree.AddMessagingService(services.NewConsumerService("event-broadcast", relay))

	    // Start supervision
	    tree.Serve(ctx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (h *HTTPServerService) String() string {
	    return "http-server"
	}

Suture uses this for log messages:

	INFO http-server: starting
	INFO http-server: stopped
	ERROR http-server: restarting after failure

# Thread Safety

All service wrappers are safe for concurrent use:
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/websocket: WebSocket hub implementation
  - internal/events: Event bus and broadcast relay
  - internal/cache: Bus-driven cache invalidator
*/
package services
