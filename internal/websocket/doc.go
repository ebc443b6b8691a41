// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package websocket pushes live updates to connected map clients.

The hub-and-spoke layout comes from gorilla/websocket: a single Hub owns
the client set and fans messages out; each Client runs a read pump
(keepalive, client pings) and a write pump (messages, protocol pings)
on its own goroutines.

Messages are typed frames:

	{"type": "place.created", "data": {...}}

Event frames carry their bus topic as the type, so a client that renders
the map can react to place.* updates and ignore the rest. The hub itself
originates only "welcome" and "pong" frames.

The hub is wired into the rest of the service in two places: the events
package forwards every domain event through BroadcastRaw, and the API's
/ws endpoint upgrades authenticated requests and registers the resulting
client. RunWithContext runs under the supervision tree and closes every
client on shutdown.

Slow consumers are dropped rather than buffered without bound: a client
whose send queue is full at broadcast time is disconnected and counted in
the websocket_errors_total metric.
*/
package websocket
