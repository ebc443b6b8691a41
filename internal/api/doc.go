// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package api implements the HTTP surface of Localis.
//
// All endpoints speak JSON and share one response envelope
// (models.APIResponse): a success flag, the payload, structured error
// details, and metadata carrying the request id, server timestamp,
// handler duration, and pagination. Handlers are plain methods on
// Handler and are wired into a chi router by Router.Setup.
//
// Route groups:
//
//   - Compat:   POST /register, POST /login, /places, /users/... at the
//     root path, kept for clients of the original mobile API.
//   - Versioned: /api/v1/... is the canonical surface. Authentication
//     (bearer JWT session or loc_pat_ API token) and Casbin
//     authorization run as middleware in front of every protected
//     route.
//   - Ops: /health, /metrics (Prometheus), /swagger/*, /ws.
//
// Cross-cutting behavior lives in middleware: request ids, Prometheus
// instrumentation, gzip compression, CORS (go-chi/cors), and per-group
// rate limits (go-chi/httprate). Handlers only contain domain logic,
// cache lookups, and domain event publication.
package api
