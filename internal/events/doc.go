// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package events implements the domain event bus.

API handlers publish a small event after every place, review and follow
mutation commits. Consumers run as supervised loops and react without
touching the request path: the websocket hub pushes live map updates to
connected clients, and the response cache drops entries the mutation made
stale.

# Transport

The default build carries everything in process on a Watermill GoChannel,
which keeps single-binary deployments free of external brokers. Building
with -tags=nats swaps in JetStream-backed publish/subscribe, optionally
against an embedded NATS server, for deployments that need durable events
across multiple instances. Both transports sit behind the same Bus type,
so callers never know which one is underneath.

# Payloads

Payloads are JSON-encoded models (PlaceEvent, ReviewEvent, FollowEvent).
EventHandler decodes them into typed values before invoking the consumer
callback; a payload that fails to decode is logged and dropped, since
redelivery cannot fix a malformed message.
*/
package events
