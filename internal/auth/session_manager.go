// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

// SessionManager pairs JWT issuance with session persistence. Every issued
// JWT gets a session record keyed by its jti; validation requires both a
// good signature and a live session, so logout and admin revocation beat
// the token's own expiry.
type SessionManager struct {
	jwt   *JWTManager
	store SessionStore
}

// NewSessionManager creates a session manager over the given store.
func NewSessionManager(jwt *JWTManager, store SessionStore) *SessionManager {
	return &SessionManager{
		jwt:   jwt,
		store: store,
	}
}

// Issue generates a JWT for the user and persists the paired session.
// userAgent and clientIP are recorded for the session list view.
func (m *SessionManager) Issue(ctx context.Context, user *models.User, userAgent, clientIP string) (string, *models.Session, error) {
	token, claims, err := m.jwt.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenID:   claims.ID,
		UserAgent: userAgent,
		ClientIP:  clientIP,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := m.store.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to persist session: %w", err)
	}

	logging.Debug().
		Int64("user_id", user.ID).
		Str("token_id", claims.ID).
		Msg("Session issued")

	return token, session, nil
}

// Validate checks a JWT and confirms that its jti still resolves to a live
// session. Returns ErrSessionNotFound when the session was revoked and
// ErrSessionExpired when it lapsed.
func (m *SessionManager) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if _, err := m.store.Get(ctx, claims.ID); err != nil {
		return nil, err
	}

	return claims, nil
}

// Logout revokes the session behind one token.
func (m *SessionManager) Logout(ctx context.Context, tokenID string) error {
	return m.store.Delete(ctx, tokenID)
}

// LogoutAll revokes every session of a user. Returns the number of
// sessions removed. Used by logout-all and by admin revocation after role
// or password changes.
func (m *SessionManager) LogoutAll(ctx context.Context, userID int64) (int, error) {
	count, err := m.store.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logging.Info().
			Int64("user_id", userID).
			Int("sessions", count).
			Msg("All user sessions revoked")
	}

	return count, nil
}

// UserSessions lists the live sessions of a user.
func (m *SessionManager) UserSessions(ctx context.Context, userID int64) ([]*models.Session, error) {
	return m.store.GetByUserID(ctx, userID)
}

// ActiveCount returns the number of sessions in the store. Shown on the
// admin dashboard next to the database totals.
func (m *SessionManager) ActiveCount(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}

// CleanupExpired removes lapsed sessions. Run periodically by the session
// janitor service.
func (m *SessionManager) CleanupExpired(ctx context.Context) (int, error) {
	return m.store.CleanupExpired(ctx)
}
