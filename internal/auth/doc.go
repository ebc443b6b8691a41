// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package auth provides authentication for the Localis API: password
// hashing, JWT issuance and validation, revocable sessions, opaque API
// tokens, and the HTTP middleware that ties them together.
//
// # Overview
//
// Two credential types are accepted on the Authorization header:
//
//   - Session-backed JWTs, issued at registration and login. Each JWT
//     carries a jti claim that must still resolve to a live session in the
//     SessionStore, so logout and admin revocation take effect before the
//     token's own expiry.
//   - Opaque API tokens (prefix "loc_pat_") for scripts and integrations.
//     Only a bcrypt digest of the sha256 of the plaintext is stored;
//     validation looks up candidates by the stored prefix and compares
//     digests.
//
// # Components
//
//   - PasswordHasher: bcrypt (cost 12) hashing and verification
//   - JWTManager: HS256 signing and validation of Claims
//   - SessionStore: session persistence (in-memory or BadgerDB)
//   - SessionManager: issue/validate/logout built on the two above
//   - APITokenManager: creation, validation, revocation, and usage audit
//     of loc_pat_ tokens
//   - Middleware: Authenticate, RequireRole, RequireScope, RateLimit,
//     CORS, SecurityHeaders
//
// # Usage
//
//	jwtMgr, err := auth.NewJWTManager(&cfg.Security)
//	if err != nil {
//	    return err
//	}
//	factory, err := auth.NewSessionStoreFactory(
//	    auth.SessionStoreType(cfg.Security.SessionStore), cfg.Security.SessionStorePath)
//	if err != nil {
//	    return err
//	}
//	sessions := auth.NewSessionManager(jwtMgr, factory.CreateStore())
//	tokens := auth.NewAPITokenManager(db)
//	mw := auth.NewMiddleware(sessions, tokens, db, &cfg.Security)
//
// Handlers read the authenticated caller with auth.GetSubject(r.Context()).
//
// # See Also
//
//   - internal/authz for role/route policy enforcement (Casbin)
//   - internal/database for the API token store
//   - internal/models for Session and APIToken types
package auth
