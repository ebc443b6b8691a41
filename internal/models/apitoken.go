// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
apitoken.go - API Token Models

This file defines data structures for opaque programmatic tokens: long-lived
credentials for scripts and integrations, accepted by the auth middleware as
an alternative to session-backed JWTs.

Key Structures:
  - APIToken: Token record with bcrypt hash and stored lookup prefix
  - TokenScope: Scope type with read/write/admin constants
  - CreateAPITokenRequest/Response: Creation flow (plaintext shown once)
  - APITokenUsage: Append-only usage audit row
  - APITokenStats: Aggregate counts for the token list view

Token Format:
  loc_pat_<base64-encoded-id>_<random-secret>

The plaintext is returned exactly once at creation. Only the bcrypt digest of
its sha256 is stored; the prefix (first characters of the plaintext) is kept
for O(1) lookup and display.
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenScope represents a permission scope for an API token.
type TokenScope string

// Available token scopes.
const (
	// ScopeRead grants read access to places, reviews, and social data.
	ScopeRead TokenScope = "read"

	// ScopeWrite grants write access subject to the holder's role.
	ScopeWrite TokenScope = "write"

	// ScopeAdmin grants access to admin endpoints (admin role required).
	ScopeAdmin TokenScope = "admin"
)

// AllScopes returns every defined scope.
func AllScopes() []TokenScope {
	return []TokenScope{ScopeRead, ScopeWrite, ScopeAdmin}
}

// DefaultScopes returns the scopes granted when a creation request names none.
func DefaultScopes() []TokenScope {
	return []TokenScope{ScopeRead}
}

// IsValidScope checks if a scope string is valid.
func IsValidScope(scope string) bool {
	for _, s := range AllScopes() {
		if string(s) == scope {
			return true
		}
	}
	return false
}

// APITokenPrefix is the prefix of every Localis API token.
// Format: loc_pat_<base64-encoded-id>_<random-secret>
const APITokenPrefix = "loc_pat_"

// APIToken represents an opaque programmatic token.
//
// Key Fields:
//   - TokenPrefix: First characters of the plaintext, stored for lookup and
//     for recognizable display in token lists
//   - TokenHash: bcrypt digest of the sha256 of the plaintext, never serialized
//   - Scopes: Granted permission scopes
//   - UseCount/LastUsedAt: Updated by the usage logger on every request
type APIToken struct {
	// ID is the primary key (UUID, also encoded into the plaintext)
	ID uuid.UUID `json:"id"`

	// UserID is the owning user's id
	UserID int64 `json:"user_id"`

	// Name is the user-assigned label
	Name string `json:"name"`

	// TokenPrefix is the stored plaintext prefix used for lookup
	TokenPrefix string `json:"token_prefix"`

	// TokenHash is the bcrypt digest of the hashed plaintext (never serialized)
	TokenHash string `json:"-"`

	// Scopes are the granted permission scopes
	Scopes []TokenScope `json:"scopes"`

	// ExpiresAt is when the token expires (nil means no expiration)
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// CreatedAt is when the token was created
	CreatedAt time.Time `json:"created_at"`

	// LastUsedAt is when the token last authenticated a request
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	// UseCount is the number of requests authenticated with this token
	UseCount int64 `json:"use_count"`

	// Revoked indicates the token was invalidated ahead of expiry
	Revoked bool `json:"revoked"`

	// RevokedAt is when the token was revoked
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// IsExpired checks if the token has expired.
func (t *APIToken) IsExpired() bool {
	if t.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*t.ExpiresAt)
}

// IsActive checks if the token can authenticate requests (not revoked, not
// expired).
func (t *APIToken) IsActive() bool {
	return !t.Revoked && !t.IsExpired()
}

// HasScope checks if the token carries the given scope.
func (t *APIToken) HasScope(scope TokenScope) bool {
	for _, s := range t.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HasAnyScope checks if the token carries at least one of the given scopes.
func (t *APIToken) HasAnyScope(scopes ...TokenScope) bool {
	for _, scope := range scopes {
		if t.HasScope(scope) {
			return true
		}
	}
	return false
}

// CreateAPITokenRequest is the payload for POST /api/v1/auth/tokens.
type CreateAPITokenRequest struct {
	// Name labels the token (shown in the token list)
	Name string `json:"name" validate:"required,min=1,max=100"`

	// Scopes requested for the token (defaults to read)
	Scopes []TokenScope `json:"scopes,omitempty" validate:"omitempty,max=3,dive,oneof=read write admin"`

	// ExpiresInDays sets the token lifetime (nil means no expiration)
	ExpiresInDays *int `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=365"`
}

// CreateAPITokenResponse carries the one-time plaintext alongside the stored
// record. The plaintext cannot be recovered later.
type CreateAPITokenResponse struct {
	Token APIToken `json:"token"`

	// PlaintextToken is the full token value, shown exactly once
	PlaintextToken string `json:"plaintext_token"`
}

// ListAPITokensResponse is the payload for GET /api/v1/auth/tokens.
type ListAPITokensResponse struct {
	Tokens []APIToken `json:"tokens"`
	Total  int        `json:"total"`
}

// APITokenUsage is an append-only audit row recording one authenticated
// request.
type APITokenUsage struct {
	// ID is the primary key (UUID for global uniqueness)
	ID uuid.UUID `json:"id"`

	// TokenID is the token that authenticated the request
	TokenID uuid.UUID `json:"token_id"`

	// Timestamp is when the request arrived
	Timestamp time.Time `json:"timestamp"`

	// Method is the HTTP method
	Method string `json:"method"`

	// Path is the request path
	Path string `json:"path"`

	// StatusCode is the response status
	StatusCode int `json:"status_code"`

	// ClientIP is the client address
	ClientIP string `json:"client_ip,omitempty"`

	// UserAgent is the client user agent
	UserAgent string `json:"user_agent,omitempty"`
}

// APITokenStats provides aggregate counts for a user's tokens.
type APITokenStats struct {
	TotalTokens   int   `json:"total_tokens"`
	ActiveTokens  int   `json:"active_tokens"`
	ExpiredTokens int   `json:"expired_tokens"`
	RevokedTokens int   `json:"revoked_tokens"`
	TotalUses     int64 `json:"total_uses"`
}
