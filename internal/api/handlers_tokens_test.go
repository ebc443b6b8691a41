// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/localis-app/localis/internal/models"
)

// issueToken creates an API token through the API and returns both halves.
func issueToken(t *testing.T, env *testEnv, session string, req models.CreateAPITokenRequest) models.CreateAPITokenResponse {
	t.Helper()

	rec := env.request(http.MethodPost, "/api/v1/auth/tokens", session, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Token create: status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var out models.CreateAPITokenResponse
	decodeData(t, decodeEnvelope(t, rec), &out)
	return out
}

func TestTokenCreate(t *testing.T) {
	env := newTestEnv(t)
	id, session := env.register("automator", "password123", "")

	out := issueToken(t, env, session, models.CreateAPITokenRequest{
		Name:   "nightly sync",
		Scopes: []models.TokenScope{models.ScopeRead, models.ScopeWrite},
	})

	if out.Token.UserID != id || out.Token.Name != "nightly sync" {
		t.Errorf("Token = %+v, want owner %d named nightly sync", out.Token, id)
	}
	if !strings.HasPrefix(out.PlaintextToken, models.APITokenPrefix) {
		t.Errorf("Plaintext = %q, want the %s prefix", out.PlaintextToken, models.APITokenPrefix)
	}

	// The plaintext authenticates as the owner.
	me := env.request(http.MethodGet, "/api/v1/auth/me", out.PlaintextToken, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("Me with API token: status = %d, want %d (body %s)", me.Code, http.StatusOK, me.Body.String())
	}
	var user models.User
	decodeData(t, decodeEnvelope(t, me), &user)
	if user.ID != id {
		t.Errorf("API token authenticated as %d, want %d", user.ID, id)
	}
}

func TestTokenCreate_ScopeLimitsWrites(t *testing.T) {
	env := newTestEnv(t)
	_, session := env.register("scoped-owner", "password123", models.RoleBusinessOwner)

	readOnly := issueToken(t, env, session, models.CreateAPITokenRequest{
		Name:   "read only",
		Scopes: []models.TokenScope{models.ScopeRead},
	})

	// Reads pass, writes are blocked by the missing scope.
	list := env.request(http.MethodGet, "/api/v1/places", readOnly.PlaintextToken, nil)
	if list.Code != http.StatusOK {
		t.Errorf("Read with read scope: status = %d, want %d", list.Code, http.StatusOK)
	}

	create := env.request(http.MethodPost, "/api/v1/places", readOnly.PlaintextToken,
		models.CreatePlaceRequest{Name: "Denied", Category: models.CategoryFood, Latitude: 1, Longitude: 1})
	if create.Code != http.StatusForbidden {
		t.Errorf("Write with read scope: status = %d, want %d (body %s)",
			create.Code, http.StatusForbidden, create.Body.String())
	}
}

func TestTokenCreate_GuardRails(t *testing.T) {
	env := newTestEnv(t)
	_, session := env.register("cautious", "password123", "")

	// Plain users cannot mint admin-scoped tokens.
	denied := env.request(http.MethodPost, "/api/v1/auth/tokens", session,
		models.CreateAPITokenRequest{Name: "sneaky", Scopes: []models.TokenScope{models.ScopeAdmin}})
	if denied.Code != http.StatusForbidden {
		t.Errorf("Admin scope as plain user: status = %d, want %d", denied.Code, http.StatusForbidden)
	}

	// API tokens cannot create more tokens.
	tok := issueToken(t, env, session, models.CreateAPITokenRequest{Name: "parent"})
	chained := env.request(http.MethodPost, "/api/v1/auth/tokens", tok.PlaintextToken,
		models.CreateAPITokenRequest{Name: "child"})
	if chained.Code != http.StatusForbidden {
		t.Errorf("Token creating a token: status = %d, want %d", chained.Code, http.StatusForbidden)
	}

	// A name is required.
	unnamed := env.request(http.MethodPost, "/api/v1/auth/tokens", session,
		models.CreateAPITokenRequest{})
	if unnamed.Code != http.StatusBadRequest {
		t.Errorf("Unnamed token: status = %d, want %d", unnamed.Code, http.StatusBadRequest)
	}
}

func TestTokenList(t *testing.T) {
	env := newTestEnv(t)
	_, session := env.register("token-hoarder", "password123", "")

	issueToken(t, env, session, models.CreateAPITokenRequest{Name: "first"})
	issueToken(t, env, session, models.CreateAPITokenRequest{Name: "second"})

	rec := env.request(http.MethodGet, "/api/v1/auth/tokens", session, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var out models.ListAPITokensResponse
	decodeData(t, decodeEnvelope(t, rec), &out)
	if out.Total != 2 || len(out.Tokens) != 2 {
		t.Errorf("Tokens = %d (total %d), want 2", len(out.Tokens), out.Total)
	}
	for _, tok := range out.Tokens {
		if tok.TokenHash != "" {
			t.Errorf("Token %s: listing leaked the hash", tok.Name)
		}
	}
}

func TestTokenGet_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	_, ownerSession := env.register("token-owner", "password123", "")
	_, otherSession := env.register("token-snoop", "password123", "")

	tok := issueToken(t, env, ownerSession, models.CreateAPITokenRequest{Name: "private"})
	path := "/api/v1/auth/tokens/" + tok.Token.ID.String()

	mine := env.request(http.MethodGet, path, ownerSession, nil)
	if mine.Code != http.StatusOK {
		t.Errorf("Own token: status = %d, want %d", mine.Code, http.StatusOK)
	}

	theirs := env.request(http.MethodGet, path, otherSession, nil)
	if theirs.Code != http.StatusForbidden {
		t.Errorf("Someone else's token: status = %d, want %d", theirs.Code, http.StatusForbidden)
	}
}

func TestTokenDelete_TwoPhase(t *testing.T) {
	env := newTestEnv(t)
	_, session := env.register("two-phaser", "password123", "")

	tok := issueToken(t, env, session, models.CreateAPITokenRequest{Name: "doomed"})
	path := "/api/v1/auth/tokens/" + tok.Token.ID.String()

	// First delete revokes but keeps the audit row.
	first := env.request(http.MethodDelete, path, session, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("First delete: status = %d, want %d (body %s)", first.Code, http.StatusOK, first.Body.String())
	}
	var out struct {
		Revoked bool `json:"revoked"`
		Deleted bool `json:"deleted"`
	}
	decodeData(t, decodeEnvelope(t, first), &out)
	if !out.Revoked || out.Deleted {
		t.Errorf("First delete = %+v, want revoked but not deleted", out)
	}

	// The revoked plaintext no longer authenticates.
	me := env.request(http.MethodGet, "/api/v1/auth/me", tok.PlaintextToken, nil)
	if me.Code != http.StatusUnauthorized {
		t.Errorf("Revoked token: status = %d, want %d", me.Code, http.StatusUnauthorized)
	}

	// Second delete removes the record entirely.
	second := env.request(http.MethodDelete, path, session, nil)
	if second.Code != http.StatusNoContent {
		t.Fatalf("Second delete: status = %d, want %d", second.Code, http.StatusNoContent)
	}

	gone := env.request(http.MethodGet, path, session, nil)
	if gone.Code != http.StatusNotFound {
		t.Errorf("Get after delete: status = %d, want %d", gone.Code, http.StatusNotFound)
	}
}

func TestTokenUsage_Recorded(t *testing.T) {
	env := newTestEnv(t)
	_, session := env.register("audited", "password123", "")

	tok := issueToken(t, env, session, models.CreateAPITokenRequest{Name: "watched"})

	// Two authenticated calls leave two audit rows.
	env.request(http.MethodGet, "/api/v1/auth/me", tok.PlaintextToken, nil)
	env.request(http.MethodGet, "/api/v1/places", tok.PlaintextToken, nil)

	// Usage rows are written fire-and-forget after the response, so poll
	// briefly instead of racing the writer goroutines.
	var out struct {
		Usage []models.APITokenUsage `json:"usage"`
		Total int                    `json:"total"`
	}
	deadline := time.Now().Add(3 * time.Second)
	for {
		rec := env.request(http.MethodGet, "/api/v1/auth/tokens/"+tok.Token.ID.String()+"/usage", session, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Usage: status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
		}
		decodeData(t, decodeEnvelope(t, rec), &out)
		if out.Total >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Usage rows = %d after waiting, want 2", out.Total)
		}
		time.Sleep(50 * time.Millisecond)
	}

	for _, row := range out.Usage {
		if row.Path == "" || row.Method == "" {
			t.Errorf("Usage row %+v should record path and method", row)
		}
	}
}

func TestTokenStats(t *testing.T) {
	env := newTestEnv(t)
	_, session := env.register("statistician", "password123", "")

	issueToken(t, env, session, models.CreateAPITokenRequest{Name: "alive"})
	doomed := issueToken(t, env, session, models.CreateAPITokenRequest{Name: "revoked"})
	env.request(http.MethodDelete, "/api/v1/auth/tokens/"+doomed.Token.ID.String(), session, nil)

	rec := env.request(http.MethodGet, "/api/v1/auth/tokens/stats", session, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Stats: status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var stats models.APITokenStats
	decodeData(t, decodeEnvelope(t, rec), &stats)
	if stats.TotalTokens != 2 || stats.ActiveTokens != 1 || stats.RevokedTokens != 1 {
		t.Errorf("Stats = %+v, want total 2, active 1, revoked 1", stats)
	}
}
