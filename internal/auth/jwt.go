// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/models"
)

// minJWTSecretLength is the minimum acceptable JWT secret length.
const minJWTSecretLength = 32

// Claims represents the JWT claims issued at registration and login.
// The jti (RegisteredClaims.ID) doubles as the session key: a token is
// only accepted while its jti still resolves to a live session.
type Claims struct {
	UserID int64  `json:"uid"`
	Login  string `json:"login"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token creation and validation
type JWTManager struct {
	secret  []byte
	timeout time.Duration
}

// NewJWTManager creates a new JWT token manager with the configured secret
// and session timeout. The manager signs with HMAC-SHA256.
//
// Returns an error if JWT_SECRET is missing or shorter than 32 characters;
// a short secret makes offline brute force of the signing key practical.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	if len(cfg.JWTSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}

	return &JWTManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: cfg.SessionTimeout,
	}, nil
}

// GenerateToken creates a signed JWT for an authenticated user.
//
// The returned claims carry the generated jti and expiry so the caller can
// persist the matching session record.
//
// Token Claims:
//   - UserID/Login/Role: identity and authorization snapshot at issue time
//   - ID (jti): random UUID, the session store key
//   - Subject: the user id in decimal
//   - ExpiresAt: now + configured session timeout
//   - IssuedAt/NotBefore: token is valid immediately
//
// Security:
//   - HMAC-SHA256 (HS256) signing
//   - Tokens alone are stateless; revocation happens through the session
//     store keyed by jti
func (m *JWTManager) GenerateToken(user *models.User) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Login:  user.Login,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, claims, nil
}

// ValidateToken validates a JWT and extracts the claims.
//
// Validation Steps:
//  1. Parse token structure and extract claims
//  2. Verify the HMAC-SHA256 signature
//  3. Check the signing algorithm is HMAC (prevents algorithm confusion)
//  4. Verify ExpiresAt and NotBefore against server time
//
// Note: this checks the token only. Whether the jti still resolves to a
// live session is the SessionManager's concern.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// SessionTimeout returns the configured token/session lifetime.
func (m *JWTManager) SessionTimeout() time.Duration {
	return m.timeout
}
