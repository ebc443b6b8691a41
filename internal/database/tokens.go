// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package database provides database operations for the Localis application.
//
// tokens.go - API Token Database Operations
//
// This file contains CRUD operations for long-lived API tokens, which give
// programmatic clients scoped access without a login session.
//
// Security:
//   - Token hashes are stored, never plaintext tokens
//   - All operations are parameterized (SQL injection safe)
//   - Usage logging provides an audit trail per token
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/localis-app/localis/internal/models"
)

const apiTokenColumns = `id, user_id, name, token_prefix, token_hash, scopes,
	expires_at, created_at, last_used_at, use_count, revoked, revoked_at`

// CreateAPIToken inserts a new API token. The caller supplies the hash and
// prefix; the plaintext token never reaches this layer.
func (db *DB) CreateAPIToken(ctx context.Context, token *models.APIToken) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	scopesJSON, err := json.Marshal(token.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO api_tokens (
			id, user_id, name, token_prefix, token_hash, scopes,
			expires_at, created_at, last_used_at, use_count, revoked, revoked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		token.ID, token.UserID, token.Name, token.TokenPrefix, token.TokenHash,
		string(scopesJSON), token.ExpiresAt, token.CreatedAt,
		token.LastUsedAt, token.UseCount, token.Revoked, token.RevokedAt)
	if err != nil {
		return fmt.Errorf("failed to insert API token: %w", err)
	}

	return nil
}

// GetAPITokenByID retrieves an API token by its ID.
// Returns ErrNotFound if no token exists with the given ID.
func (db *DB) GetAPITokenByID(ctx context.Context, id uuid.UUID) (*models.APIToken, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+apiTokenColumns+` FROM api_tokens WHERE id = ?`, id)
	return scanAPIToken(row)
}

// GetAPITokensByUserID retrieves all API tokens belonging to a user,
// newest first.
func (db *DB) GetAPITokensByUserID(ctx context.Context, userID int64) ([]models.APIToken, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+apiTokenColumns+` FROM api_tokens
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query API tokens: %w", err)
	}
	defer rows.Close()

	tokens := []models.APIToken{}
	for rows.Next() {
		token, err := scanAPITokenRow(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API tokens: %w", err)
	}

	return tokens, nil
}

// GetAPITokensByPrefix retrieves API tokens matching a stored prefix.
// Validation hashes the presented token against each candidate, so the
// prefix only narrows the search.
func (db *DB) GetAPITokensByPrefix(ctx context.Context, prefix string) ([]models.APIToken, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+apiTokenColumns+` FROM api_tokens WHERE token_prefix = ?`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query API tokens by prefix: %w", err)
	}
	defer rows.Close()

	tokens := []models.APIToken{}
	for rows.Next() {
		token, err := scanAPITokenRow(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API tokens: %w", err)
	}

	return tokens, nil
}

// RevokeAPIToken marks a token as revoked. Returns ErrNotFound if the token
// does not exist or is already revoked.
func (db *DB) RevokeAPIToken(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE api_tokens SET revoked = TRUE, revoked_at = ? WHERE id = ? AND revoked = FALSE`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to revoke API token: %w", err)
	}
	return checkRowsAffected(result)
}

// DeleteAPIToken permanently deletes a token and its usage log.
// Returns ErrNotFound if the token does not exist.
func (db *DB) DeleteAPIToken(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin token deletion: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM api_tokens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete API token: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM api_token_usage WHERE token_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete API token usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit token deletion: %w", err)
	}

	return nil
}

// TouchAPIToken increments a token's use counter and stamps last_used_at.
// Called on every successful authentication with the token.
func (db *DB) TouchAPIToken(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE api_tokens SET use_count = use_count + 1, last_used_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch API token: %w", err)
	}
	return checkRowsAffected(result)
}

// LogAPITokenUsage records one authenticated request made with a token.
func (db *DB) LogAPITokenUsage(ctx context.Context, usage *models.APITokenUsage) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if usage.ID == uuid.Nil {
		usage.ID = uuid.New()
	}
	if usage.Timestamp.IsZero() {
		usage.Timestamp = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO api_token_usage (
			id, token_id, timestamp, method, path, status_code, client_ip, user_agent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		usage.ID, usage.TokenID, usage.Timestamp, usage.Method, usage.Path,
		usage.StatusCode, usage.ClientIP, usage.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to log API token usage: %w", err)
	}

	return nil
}

// GetAPITokenUsage retrieves the most recent usage entries for a token.
func (db *DB) GetAPITokenUsage(ctx context.Context, tokenID uuid.UUID, limit int) ([]models.APITokenUsage, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, token_id, timestamp, method, path, status_code, client_ip, user_agent
		FROM api_token_usage
		WHERE token_id = ?
		ORDER BY timestamp DESC
		LIMIT ?`, tokenID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query API token usage: %w", err)
	}
	defer rows.Close()

	entries := []models.APITokenUsage{}
	for rows.Next() {
		var entry models.APITokenUsage
		var clientIP, userAgent sql.NullString
		err := rows.Scan(&entry.ID, &entry.TokenID, &entry.Timestamp,
			&entry.Method, &entry.Path, &entry.StatusCode, &clientIP, &userAgent)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API token usage: %w", err)
		}
		entry.ClientIP = clientIP.String
		entry.UserAgent = userAgent.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API token usage: %w", err)
	}

	return entries, nil
}

// CountActiveAPITokens returns the number of usable tokens across all
// users, for the active-tokens gauge.
func (db *DB) CountActiveAPITokens(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM api_tokens
		WHERE revoked = FALSE AND (expires_at IS NULL OR expires_at > CURRENT_TIMESTAMP)`).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active API tokens: %w", err)
	}

	return count, nil
}

// GetAPITokenStats returns aggregated token statistics for a user.
func (db *DB) GetAPITokenStats(ctx context.Context, userID int64) (*models.APITokenStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var stats models.APITokenStats
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS total_tokens,
			COUNT(CASE WHEN revoked = FALSE AND (expires_at IS NULL OR expires_at > CURRENT_TIMESTAMP) THEN 1 END) AS active_tokens,
			COUNT(CASE WHEN revoked = FALSE AND expires_at IS NOT NULL AND expires_at <= CURRENT_TIMESTAMP THEN 1 END) AS expired_tokens,
			COUNT(CASE WHEN revoked = TRUE THEN 1 END) AS revoked_tokens,
			COALESCE(SUM(use_count), 0) AS total_uses
		FROM api_tokens
		WHERE user_id = ?`, userID).Scan(
		&stats.TotalTokens, &stats.ActiveTokens, &stats.ExpiredTokens,
		&stats.RevokedTokens, &stats.TotalUses)
	if err != nil {
		return nil, fmt.Errorf("failed to get API token stats: %w", err)
	}

	return &stats, nil
}

// tokenScanData holds raw column values before conversion to models.APIToken.
type tokenScanData struct {
	id          uuid.UUID
	userID      int64
	name        string
	tokenPrefix string
	tokenHash   string
	scopesJSON  sql.NullString
	expiresAt   sql.NullTime
	createdAt   time.Time
	lastUsedAt  sql.NullTime
	useCount    int64
	revoked     bool
	revokedAt   sql.NullTime
}

func (d *tokenScanData) dests() []interface{} {
	return []interface{}{
		&d.id, &d.userID, &d.name, &d.tokenPrefix, &d.tokenHash, &d.scopesJSON,
		&d.expiresAt, &d.createdAt, &d.lastUsedAt, &d.useCount, &d.revoked, &d.revokedAt,
	}
}

// buildTokenFromScanData converts scanned column values into an APIToken.
func buildTokenFromScanData(data *tokenScanData) (*models.APIToken, error) {
	token := &models.APIToken{
		ID:          data.id,
		UserID:      data.userID,
		Name:        data.name,
		TokenPrefix: data.tokenPrefix,
		TokenHash:   data.tokenHash,
		CreatedAt:   data.createdAt,
		UseCount:    data.useCount,
		Revoked:     data.revoked,
	}

	if data.expiresAt.Valid {
		token.ExpiresAt = &data.expiresAt.Time
	}
	if data.lastUsedAt.Valid {
		token.LastUsedAt = &data.lastUsedAt.Time
	}
	if data.revokedAt.Valid {
		token.RevokedAt = &data.revokedAt.Time
	}

	if data.scopesJSON.Valid && data.scopesJSON.String != "" {
		if err := json.Unmarshal([]byte(data.scopesJSON.String), &token.Scopes); err != nil {
			return nil, fmt.Errorf("failed to parse token scopes: %w", err)
		}
	}

	return token, nil
}

// scanAPIToken scans a single-row query result into an APIToken.
func scanAPIToken(row *sql.Row) (*models.APIToken, error) {
	var data tokenScanData
	if err := row.Scan(data.dests()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan API token: %w", err)
	}
	return buildTokenFromScanData(&data)
}

// scanAPITokenRow scans the current row of a multi-row result into an APIToken.
func scanAPITokenRow(rows *sql.Rows) (*models.APIToken, error) {
	var data tokenScanData
	if err := rows.Scan(data.dests()...); err != nil {
		return nil, fmt.Errorf("failed to scan API token: %w", err)
	}
	return buildTokenFromScanData(&data)
}
