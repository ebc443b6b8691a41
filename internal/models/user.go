// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
user.go - User Account Models

This file defines the user account record, the role constants used for
authorization, and the request/response structures for the authentication
endpoints.

Key Structures:
  - User: Persistent account record (integer id, bcrypt password hash)
  - RegisterRequest / LoginRequest: Credential payloads for /register and /login
  - AuthResponse: {id, token} payload returned by both auth endpoints
  - UpdateUserRequest: Partial update payload for PUT /users/{id}

Role Hierarchy:
  - user: Default role, read access plus own reviews/favorites/follows
  - businessOwner: Inherits user, can create and manage own places
  - moderator: Inherits businessOwner, can moderate any place or review
  - admin: Full access including user management

Usage:
  - Database operations in internal/database/users.go
  - Authentication flows in internal/auth
  - Authorization policies in internal/authz/policy.csv
*/

package models

import (
	"time"
)

// Role constants define the standard roles in the system.
// These align with the Casbin policy definitions in internal/authz/policy.csv.
const (
	// RoleUser is the default role with read access and ownership of own
	// reviews, favorites, and follows.
	RoleUser = "user"

	// RoleBusinessOwner can create places and manage the ones it owns.
	RoleBusinessOwner = "businessOwner"

	// RoleModerator can edit or remove any place or review.
	RoleModerator = "moderator"

	// RoleAdmin has full access including user management.
	RoleAdmin = "admin"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []string{RoleUser, RoleBusinessOwner, RoleModerator, RoleAdmin}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// roleRank orders roles for hierarchy comparisons. Higher ranks inherit the
// permissions of lower ranks.
var roleRank = map[string]int{
	RoleUser:          1,
	RoleBusinessOwner: 2,
	RoleModerator:     3,
	RoleAdmin:         4,
}

// RoleAtLeast reports whether role grants at least the permissions of min.
// Unknown roles rank below every valid role.
func RoleAtLeast(role, min string) bool {
	return roleRank[role] >= roleRank[min]
}

// BootstrapAdminID is the user id of the seeded administrator account.
// This account is created on first start and can never be deleted.
const BootstrapAdminID int64 = 1

// User represents a registered account.
//
// Key Fields:
//   - ID: Integer primary key. Allocated sequentially so the bootstrap admin
//     is always id 1.
//   - Login: Unique login name
//   - PasswordHash: bcrypt digest, never serialized to JSON
//   - Role: One of the Role* constants
type User struct {
	// ID is the primary key (sequential integer, bootstrap admin is 1)
	ID int64 `json:"id"`

	// Login is the unique login name
	Login string `json:"login"`

	// PasswordHash is the bcrypt digest of the password (never serialized)
	PasswordHash string `json:"-"`

	// Role is the assigned role (user, businessOwner, moderator, admin)
	Role string `json:"role"`

	// CreatedAt is when the account was created
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the account was last modified
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitize returns a copy of the user with credential material cleared.
// JSON marshaling already skips PasswordHash; Sanitize covers code paths that
// hand the struct to loggers or templates.
func (u *User) Sanitize() *User {
	clean := *u
	clean.PasswordHash = ""
	return &clean
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanModerate reports whether the user may edit or remove content owned by
// other users (moderator and admin).
func (u *User) CanModerate() bool {
	return RoleAtLeast(u.Role, RoleModerator)
}

// CanPublishPlaces reports whether the user may create places
// (businessOwner, moderator, admin).
func (u *User) CanPublishPlaces() bool {
	return RoleAtLeast(u.Role, RoleBusinessOwner)
}

// RegisterRequest is the payload for POST /register.
//
// The role field is optional and defaults to "user". Any of the valid roles
// may be requested at signup; an unknown role is rejected with 400.
//
// Example:
//
//	{
//	  "login": "marco",
//	  "passwd": "wanderlust42",
//	  "role": "businessOwner"
//	}
type RegisterRequest struct {
	Login  string `json:"login" validate:"required,min=3,max=64"`
	Passwd string `json:"passwd" validate:"required,max=72"`
	Role   string `json:"role,omitempty" validate:"omitempty,oneof=user businessOwner moderator admin"`
}

// LoginRequest is the payload for POST /login.
//
// Security:
//   - Password is transmitted in plaintext (TLS required)
//   - Verified against the stored bcrypt digest
//   - A fresh bearer token and session are issued on every login
type LoginRequest struct {
	Login  string `json:"login" validate:"required"`
	Passwd string `json:"passwd" validate:"required"`
}

// AuthResponse is returned by POST /register (201) and POST /login (200).
//
// Example:
//
//	{
//	  "id": 7,
//	  "token": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
//	}
type AuthResponse struct {
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

// UpdateUserRequest is the payload for PUT /users/{id}. All fields are
// optional, but at least one must be present; an empty update is rejected
// with 400.
type UpdateUserRequest struct {
	// Username replaces the login name when set
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`

	// Passwd replaces the password when set
	Passwd *string `json:"passwd,omitempty" validate:"omitempty,max=72"`

	// Role replaces the role when set (admin only)
	Role *string `json:"role,omitempty" validate:"omitempty,oneof=user businessOwner moderator admin"`
}

// HasUpdates reports whether at least one updatable field is present.
func (r *UpdateUserRequest) HasUpdates() bool {
	return r.Username != nil || r.Passwd != nil || r.Role != nil
}
