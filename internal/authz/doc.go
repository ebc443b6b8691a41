// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package authz provides authorization functionality using Casbin.
//
// This package implements Role-Based Access Control (RBAC) for the Localis
// API, enforcing path-based access policies with the Casbin authorization
// library. It supports hierarchical roles, wildcard path patterns, decision
// caching, and automatic policy reload for file-based policies.
//
// # Architecture
//
// Authorization runs after authentication on every /api/v1 request:
//
//	Request -> Auth Middleware -> Authz Middleware -> Handler
//	               |                    |
//	          Authenticate         Authorize (Casbin)
//	           (internal/auth)      (this package)
//
// The authenticated subject's role comes from the JWT claims, so there is
// no per-request role lookup. Policies are keyed on role names only;
// individual users never appear in the policy store.
//
// # RBAC Model
//
// The embedded model uses role inheritance with keyMatch2 path patterns
// and HTTP methods as actions:
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
//
// # Roles
//
// Four roles form a strict hierarchy, each inheriting the grants below it:
//
//	user          read places, reviews and social data; write own reviews,
//	              favorites and follows
//	businessOwner create places and update own listings
//	moderator     delete or edit any place or review
//	admin         full surface including user management and /api/v1/admin
//
// # Usage Example
//
// Creating an enforcer:
//
//	cfg := authz.DefaultEnforcerConfig()
//	enforcer, err := authz.NewEnforcer(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer enforcer.Close()
//
//	allowed, err := enforcer.Enforce("moderator", "/api/v1/places/42", "DELETE")
//
// Using middleware:
//
//	mw := authz.NewMiddleware(enforcer, auditLogger)
//	mux.HandleFunc("/api/v1/", mw.AuthorizeRequest(apiHandler))
//
// # Embedded Policies
//
// The package embeds model.conf and policy.csv for zero-configuration
// setup. Operators can override either file through the security.casbin
// configuration section; file-based policies additionally support hot
// reload at a configurable interval.
//
// # Caching
//
// Enforcement decisions are cached per (role, path, method) tuple with a
// configurable TTL. Policy mutations and reloads clear the cache. Because
// cache keys are roles rather than users, the cache stays small and a
// role change for one user never requires invalidation; the user simply
// receives a token carrying the new role.
//
// # Thread Safety
//
// All components are safe for concurrent use. The Casbin SyncedEnforcer
// synchronizes policy access, the decision cache uses sync.RWMutex, and
// policy auto-reload runs in a separate goroutine.
package authz
