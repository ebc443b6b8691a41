// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package database provides database operations for the Localis application.
//
// users.go - User Account Database Operations
//
// This file contains CRUD operations for user accounts.
//
// ID Allocation:
// Users keep sequential integer ids; the bootstrap admin is always id 1 and
// can never be deleted. Allocation runs COALESCE(MAX(id), 0) + 1 inside a
// transaction, serialized by a mutex so concurrent registrations cannot race
// on the same id.
//
// Security:
//   - Only bcrypt digests are stored, never plaintext passwords
//   - All operations are parameterized (SQL injection safe)
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/localis-app/localis/internal/models"
)

const userColumns = `id, login, password_hash, role, created_at, updated_at`

// userColumnsPrefixed qualifies userColumns with the "u" alias for joins
// where column names would otherwise be ambiguous.
const userColumnsPrefixed = `u.id, u.login, u.password_hash, u.role, u.created_at, u.updated_at`

// UserUpdate carries the fields of a partial user update. Password hashing
// happens in the auth layer; this struct never sees a plaintext password.
type UserUpdate struct {
	Login        *string
	PasswordHash *string
	Role         *string
}

// CreateUser inserts a new user with the next sequential id and returns the
// stored record. Returns ErrDuplicate when the login is already taken.
func (db *DB) CreateUser(ctx context.Context, login, passwordHash, role string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.userIDMu.Lock()
	defer db.userIDMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM users`).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to allocate user id: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, login, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, login, passwordHash, role, now, now,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to commit user insert: %w", err)
	}

	return &models.User{
		ID:           id,
		Login:        login,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetUserByID retrieves a user by id. Returns ErrNotFound when absent.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByLogin retrieves a user by login name. Returns ErrNotFound when absent.
func (db *DB) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = ?`, login)
	return scanUser(row)
}

// ListUsers returns a page of users ordered by id, plus the total count.
func (db *DB) ListUsers(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`,
		pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}

// UpdateUser applies a partial update and returns the updated record.
// Returns ErrNoFields when the update carries nothing, ErrNotFound for an
// unknown id, and ErrDuplicate when a login change collides.
func (db *DB) UpdateUser(ctx context.Context, id int64, update UserUpdate) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	sets := []string{}
	args := []interface{}{}

	if update.Login != nil {
		sets = append(sets, "login = ?")
		args = append(args, *update.Login)
	}
	if update.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *update.PasswordHash)
	}
	if update.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *update.Role)
	}
	if len(sets) == 0 {
		return nil, ErrNoFields
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return nil, err
	}

	return db.GetUserByID(ctx, id)
}

// DeleteUser removes a user and their social graph rows. The bootstrap admin
// (id 1) is protected and returns ErrProtectedUser. Places and reviews the
// user created are kept.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if id == models.BootstrapAdminID {
		return ErrProtectedUser
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user favorites: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = ? OR followee_id = ?`, id, id); err != nil {
		return fmt.Errorf("failed to delete user follows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM review_likes WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user review likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM api_tokens WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user api tokens: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user delete: %w", err)
	}
	return nil
}

// CountUsers returns the total number of users.
func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// scanUser scans a single user from a row.
func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// scanUserRow scans the current row of a multi-row result into a User.
func scanUserRow(rows *sql.Rows) (*models.User, error) {
	var u models.User
	if err := rows.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
