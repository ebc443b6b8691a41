// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

const (
	// tokenSecretLength is the number of random bytes in a token secret.
	tokenSecretLength = 32

	// tokenPrefixDisplayLength is how many characters past the scheme prefix
	// are stored for lookup and shown in token lists.
	tokenPrefixDisplayLength = 8

	// tokenBcryptCost matches the password hasher cost.
	tokenBcryptCost = 12

	// tokenWriteTimeout bounds the fire-and-forget usage writes.
	tokenWriteTimeout = 5 * time.Second
)

var (
	// ErrInvalidToken is returned when a presented token is malformed or does
	// not match any stored token.
	ErrInvalidToken = errors.New("invalid API token")

	// ErrTokenRevoked is returned when the matched token was revoked.
	ErrTokenRevoked = errors.New("API token has been revoked")

	// ErrTokenExpired is returned when the matched token is past its expiry.
	ErrTokenExpired = errors.New("API token has expired")

	// ErrTokenAccessDenied is returned when a user operates on a token they
	// do not own.
	ErrTokenAccessDenied = errors.New("API token belongs to another user")
)

// TokenStore is the persistence surface the token manager needs. Implemented
// by *database.DB.
type TokenStore interface {
	CreateAPIToken(ctx context.Context, token *models.APIToken) error
	GetAPITokenByID(ctx context.Context, id uuid.UUID) (*models.APIToken, error)
	GetAPITokensByUserID(ctx context.Context, userID int64) ([]models.APIToken, error)
	GetAPITokensByPrefix(ctx context.Context, prefix string) ([]models.APIToken, error)
	RevokeAPIToken(ctx context.Context, id uuid.UUID) error
	DeleteAPIToken(ctx context.Context, id uuid.UUID) error
	TouchAPIToken(ctx context.Context, id uuid.UUID) error
	LogAPITokenUsage(ctx context.Context, usage *models.APITokenUsage) error
	GetAPITokenUsage(ctx context.Context, tokenID uuid.UUID, limit int) ([]models.APITokenUsage, error)
	GetAPITokenStats(ctx context.Context, userID int64) (*models.APITokenStats, error)
}

// APITokenManager handles opaque programmatic tokens: creation, validation,
// revocation, and usage audit logging.
type APITokenManager struct {
	store  TokenStore
	logger zerolog.Logger
}

// NewAPITokenManager creates a token manager over the given store.
func NewAPITokenManager(store TokenStore) *APITokenManager {
	return &APITokenManager{
		store:  store,
		logger: logging.With().Str("component", "api_tokens").Logger(),
	}
}

// Create generates a new API token for a user. Returns the stored record and
// the plaintext token, which is shown exactly once and cannot be recovered.
func (m *APITokenManager) Create(ctx context.Context, userID int64, req *models.CreateAPITokenRequest) (*models.APIToken, string, error) {
	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = models.DefaultScopes()
	}
	for _, scope := range scopes {
		if !models.IsValidScope(string(scope)) {
			return nil, "", fmt.Errorf("invalid scope: %s", scope)
		}
	}

	id := uuid.New()

	secretBytes := make([]byte, tokenSecretLength)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, "", fmt.Errorf("failed to generate token secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	// The token id rides along inside the plaintext so support can identify
	// a leaked token without the secret.
	idEncoded := base64.RawURLEncoding.EncodeToString([]byte(id.String()))
	plaintext := fmt.Sprintf("%s%s_%s", models.APITokenPrefix, idEncoded, secret)

	tokenHash, err := hashToken(plaintext)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash token: %w", err)
	}

	var expiresAt *time.Time
	if req.ExpiresInDays != nil && *req.ExpiresInDays > 0 {
		exp := time.Now().Add(time.Duration(*req.ExpiresInDays) * 24 * time.Hour)
		expiresAt = &exp
	}

	token := &models.APIToken{
		ID:          id,
		UserID:      userID,
		Name:        req.Name,
		TokenPrefix: plaintext[:len(models.APITokenPrefix)+tokenPrefixDisplayLength],
		TokenHash:   tokenHash,
		Scopes:      scopes,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}
	if err := m.store.CreateAPIToken(ctx, token); err != nil {
		return nil, "", fmt.Errorf("failed to store token: %w", err)
	}

	m.logger.Info().
		Str("token_id", id.String()).
		Int64("user_id", userID).
		Str("name", req.Name).
		Int("scopes", len(scopes)).
		Msg("API token created")

	return token, plaintext, nil
}

// Validate checks a plaintext token and returns the stored record if it is
// active. The stored prefix narrows the candidate set; the bcrypt comparison
// decides. Last-used bookkeeping is written in the background.
func (m *APITokenManager) Validate(ctx context.Context, plaintext string) (*models.APIToken, error) {
	prefixLen := len(models.APITokenPrefix) + tokenPrefixDisplayLength
	if !strings.HasPrefix(plaintext, models.APITokenPrefix) || len(plaintext) < prefixLen {
		return nil, ErrInvalidToken
	}

	candidates, err := m.store.GetAPITokensByPrefix(ctx, plaintext[:prefixLen])
	if err != nil {
		return nil, fmt.Errorf("token lookup failed: %w", err)
	}

	for i := range candidates {
		token := &candidates[i]
		if !verifyToken(plaintext, token.TokenHash) {
			continue
		}

		if token.Revoked {
			return nil, ErrTokenRevoked
		}
		if token.IsExpired() {
			return nil, ErrTokenExpired
		}

		now := time.Now()
		token.LastUsedAt = &now
		token.UseCount++

		// Fire and forget so validation stays off the write path.
		id := token.ID
		go func() {
			touchCtx, cancel := context.WithTimeout(context.Background(), tokenWriteTimeout)
			defer cancel()
			if err := m.store.TouchAPIToken(touchCtx, id); err != nil {
				m.logger.Warn().Err(err).Str("token_id", id.String()).Msg("Failed to update token last used")
			}
		}()

		return token, nil
	}

	return nil, ErrInvalidToken
}

// List returns all tokens of a user, newest first. Hashes are never
// serialized.
func (m *APITokenManager) List(ctx context.Context, userID int64) ([]models.APIToken, error) {
	tokens, err := m.store.GetAPITokensByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

// Get retrieves one token, enforcing ownership.
func (m *APITokenManager) Get(ctx context.Context, id uuid.UUID, userID int64) (*models.APIToken, error) {
	token, err := m.store.GetAPITokenByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if token.UserID != userID {
		return nil, ErrTokenAccessDenied
	}
	return token, nil
}

// Revoke invalidates a token ahead of its expiry, enforcing ownership. The
// record and its usage history are kept.
func (m *APITokenManager) Revoke(ctx context.Context, id uuid.UUID, userID int64) error {
	if _, err := m.Get(ctx, id, userID); err != nil {
		return err
	}
	if err := m.store.RevokeAPIToken(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	m.logger.Info().
		Str("token_id", id.String()).
		Int64("user_id", userID).
		Msg("API token revoked")

	return nil
}

// Delete permanently removes a token and its usage history, enforcing
// ownership.
func (m *APITokenManager) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	if _, err := m.Get(ctx, id, userID); err != nil {
		return err
	}
	if err := m.store.DeleteAPIToken(ctx, id); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	m.logger.Info().
		Str("token_id", id.String()).
		Int64("user_id", userID).
		Msg("API token deleted")

	return nil
}

// Stats returns aggregate token counts for a user.
func (m *APITokenManager) Stats(ctx context.Context, userID int64) (*models.APITokenStats, error) {
	return m.store.GetAPITokenStats(ctx, userID)
}

// Usage returns the usage log of a token, newest first, enforcing ownership.
func (m *APITokenManager) Usage(ctx context.Context, id uuid.UUID, userID int64, limit int) ([]models.APITokenUsage, error) {
	if _, err := m.Get(ctx, id, userID); err != nil {
		return nil, err
	}
	return m.store.GetAPITokenUsage(ctx, id, limit)
}

// LogRequest records one authenticated request in the token's usage log.
// Called by the middleware after the response is written; fire and forget.
func (m *APITokenManager) LogRequest(tokenID uuid.UUID, method, path string, statusCode int, clientIP, userAgent string) {
	usage := &models.APITokenUsage{
		ID:         uuid.New(),
		TokenID:    tokenID,
		Timestamp:  time.Now(),
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		ClientIP:   clientIP,
		UserAgent:  userAgent,
	}

	go func() {
		logCtx, cancel := context.WithTimeout(context.Background(), tokenWriteTimeout)
		defer cancel()
		if err := m.store.LogAPITokenUsage(logCtx, usage); err != nil {
			m.logger.Warn().Err(err).Str("token_id", tokenID.String()).Msg("Failed to log token usage")
		}
	}()
}

// IsAPIToken reports whether a credential string looks like an API token
// rather than a JWT.
func IsAPIToken(token string) bool {
	return strings.HasPrefix(token, models.APITokenPrefix)
}

// hashToken hashes a plaintext token for storage. bcrypt caps input at 72
// bytes, so the token is SHA-256'd first to a fixed 32 bytes.
func hashToken(plaintext string) (string, error) {
	sha := sha256.Sum256([]byte(plaintext))
	hash, err := bcrypt.GenerateFromPassword(sha[:], tokenBcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt failed: %w", err)
	}
	return string(hash), nil
}

// verifyToken checks a plaintext token against a stored hash.
func verifyToken(plaintext, storedHash string) bool {
	sha := sha256.Sum256([]byte(plaintext))
	return bcrypt.CompareHashAndPassword([]byte(storedHash), sha[:]) == nil
}
