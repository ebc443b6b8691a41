// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record backing a bearer token. A JWT is only
// accepted while its jti still resolves to a live session, which lets logout
// and admin revocation beat the token's own expiry.
//
// Key Fields:
//   - TokenID: The jti claim embedded in the paired JWT; the session store
//     keys entries by this value
//   - UserAgent/ClientIP: Captured at issue time for the session list view
type Session struct {
	// ID is the unique session identifier
	ID uuid.UUID `json:"id"`

	// UserID is the authenticated user's id
	UserID int64 `json:"user_id"`

	// TokenID is the jti claim of the paired JWT
	TokenID string `json:"token_id"`

	// UserAgent is the client user agent captured at issue time
	UserAgent string `json:"user_agent,omitempty"`

	// ClientIP is the client address captured at issue time
	ClientIP string `json:"client_ip,omitempty"`

	// CreatedAt is when the session was issued
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the session expires
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
