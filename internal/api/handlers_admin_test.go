// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/localis-app/localis/internal/models"
)

func TestAdminStats_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.register("commoner", "password123", "")
	_, modToken := env.createUserWithRole("warden", "password123", models.RoleModerator)

	for name, token := range map[string]string{"plain user": userToken, "moderator": modToken} {
		rec := env.request(http.MethodGet, "/api/v1/admin/stats", token, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want %d", name, rec.Code, http.StatusForbidden)
		}
	}
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.register("stats-owner", "password123", models.RoleBusinessOwner)
	_, reviewerToken := env.register("stats-reviewer", "password123", "")
	_, adminToken := env.createAdmin("root", "password123")

	place := env.createPlace(ownerToken, "Counted Cafe", models.CategoryFood, 48.2, 16.37)
	env.createReview(reviewerToken, place, 5, "counts for one")

	rec := env.request(http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var stats AdminStatsResponse
	decodeData(t, decodeEnvelope(t, rec), &stats)

	if stats.Database == nil {
		t.Fatal("Stats should include the database section")
	}
	// Three created here plus the seeded bootstrap admin.
	if stats.Database.TotalUsers != 4 {
		t.Errorf("TotalUsers = %d, want 4", stats.Database.TotalUsers)
	}
	if stats.Database.TotalPlaces != 1 || stats.Database.TotalReviews != 1 {
		t.Errorf("Places/reviews = %d/%d, want 1/1", stats.Database.TotalPlaces, stats.Database.TotalReviews)
	}
	if stats.Database.ActiveSessions < 1 {
		t.Errorf("ActiveSessions = %d, want at least the admin's own", stats.Database.ActiveSessions)
	}

	if stats.Authorization.PolicyRules == 0 || stats.Authorization.GroupingRules != 3 {
		t.Errorf("Authorization = %+v, want embedded policy counts", stats.Authorization)
	}
	if stats.Geo.GazetteerEntries == 0 {
		t.Error("Gazetteer should be loaded in the test environment")
	}
	if stats.Geo.DirectionsAvailable {
		t.Error("No directions service is configured in tests")
	}
	if stats.Events.Enabled {
		t.Error("Events are disabled in the test environment")
	}
	if stats.WebSocket.ConnectedClients != 0 {
		t.Errorf("ConnectedClients = %d, want 0", stats.WebSocket.ConnectedClients)
	}
	if len(stats.Caches) == 0 {
		t.Error("Stats should include per-cache counters")
	}
	if stats.Runtime.GoVersion == "" || stats.Runtime.Goroutines == 0 || stats.Runtime.NumCPU == 0 {
		t.Errorf("Runtime section looks empty: %+v", stats.Runtime)
	}
	if stats.Runtime.Version != "test" {
		t.Errorf("Version = %q, want %q", stats.Runtime.Version, "test")
	}
}

func TestAdminStats_TokenNeedsAdminScope(t *testing.T) {
	env := newTestEnv(t)
	_, adminSession := env.createAdmin("root", "password123")

	// An admin's read-only token must not open the admin surface.
	readOnly := issueToken(t, env, adminSession, models.CreateAPITokenRequest{
		Name:   "dashboard reader",
		Scopes: []models.TokenScope{models.ScopeRead},
	})
	denied := env.request(http.MethodGet, "/api/v1/admin/stats", readOnly.PlaintextToken, nil)
	if denied.Code != http.StatusForbidden {
		t.Errorf("Read-scope token: status = %d, want %d", denied.Code, http.StatusForbidden)
	}

	// With the admin scope the same route opens.
	full := issueToken(t, env, adminSession, models.CreateAPITokenRequest{
		Name:   "automation",
		Scopes: []models.TokenScope{models.ScopeRead, models.ScopeAdmin},
	})
	allowed := env.request(http.MethodGet, "/api/v1/admin/stats", full.PlaintextToken, nil)
	if allowed.Code != http.StatusOK {
		t.Errorf("Admin-scope token: status = %d, want %d (body %s)",
			allowed.Code, http.StatusOK, allowed.Body.String())
	}
}

func TestAdminSessionRevoke(t *testing.T) {
	env := newTestEnv(t)
	targetID, targetToken := env.register("troublemaker", "password123", "")
	env.login("troublemaker", "password123")
	_, adminToken := env.createAdmin("root", "password123")

	rec := env.request(http.MethodDelete, fmt.Sprintf("/api/v1/admin/sessions/%d", targetID), adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Revoke: status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var out struct {
		RevokedSessions int `json:"revoked_sessions"`
	}
	decodeData(t, decodeEnvelope(t, rec), &out)
	if out.RevokedSessions != 2 {
		t.Errorf("Revoked = %d, want 2", out.RevokedSessions)
	}

	me := env.request(http.MethodGet, "/api/v1/auth/me", targetToken, nil)
	if me.Code != http.StatusUnauthorized {
		t.Errorf("Target session after revoke: status = %d, want %d", me.Code, http.StatusUnauthorized)
	}
}

func TestAdminSessionRevoke_NotAdmin(t *testing.T) {
	env := newTestEnv(t)
	targetID, _ := env.register("safe-user", "password123", "")
	_, plainToken := env.register("plain", "password123", "")

	rec := env.request(http.MethodDelete, fmt.Sprintf("/api/v1/admin/sessions/%d", targetID), plainToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
