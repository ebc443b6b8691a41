// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/localis-app/localis/internal/models"
)

func TestRouter_HealthIsPublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var status models.HealthStatus
	decodeData(t, decodeEnvelope(t, rec), &status)
	if status.Status != "ok" {
		t.Errorf("Status = %q, want ok", status.Status)
	}
	if !status.DatabaseConnected {
		t.Error("DatabaseConnected = false, want true")
	}
	if status.Version != "test" {
		t.Errorf("Version = %q, want test", status.Version)
	}
	if status.EventsEnabled {
		t.Error("EventsEnabled = true, want false in the test environment")
	}
}

func TestRouter_MetricsIsPublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("Metrics output should include the Go collector series")
	}
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/places"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/feed"},
		{http.MethodGet, "/api/v1/admin/stats"},
		{http.MethodGet, "/places"},
		{http.MethodGet, "/users"},
	}

	for _, p := range paths {
		rec := env.request(p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want %d", p.method, p.path, rec.Code, http.StatusUnauthorized)
			continue
		}
		if code := errorCode(t, rec); code != ErrCodeUnauthorized {
			t.Errorf("%s %s: error code = %q, want %q", p.method, p.path, code, ErrCodeUnauthorized)
		}
	}
}

func TestRouter_GarbageTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/v1/auth/me", "not-a-real-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/v1/no-such-surface", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if code := errorCode(t, rec); code != ErrCodeNotFound {
		t.Errorf("Error code = %q, want %q", code, ErrCodeNotFound)
	}
}

func TestRouter_MethodNotAllowedEnvelope(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPatch, "/health", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if code := errorCode(t, rec); code != ErrCodeMethodNotAllowed {
		t.Errorf("Error code = %q, want %q", code, ErrCodeMethodNotAllowed)
	}
}

// The unversioned aliases exist for the original mobile client; they run
// the same handlers with authentication but without the policy layer.
func TestRouter_CompatAliases(t *testing.T) {
	env := newTestEnv(t)

	reg := env.request(http.MethodPost, "/register", "",
		models.RegisterRequest{Login: "compat-user", Passwd: "password123"})
	if reg.Code != http.StatusCreated {
		t.Fatalf("POST /register: status = %d, want %d (body %s)", reg.Code, http.StatusCreated, reg.Body.String())
	}
	var auth models.AuthResponse
	decodeData(t, decodeEnvelope(t, reg), &auth)

	login := env.request(http.MethodPost, "/login", "",
		models.LoginRequest{Login: "compat-user", Passwd: "password123"})
	if login.Code != http.StatusOK {
		t.Errorf("POST /login: status = %d, want %d", login.Code, http.StatusOK)
	}

	places := env.request(http.MethodGet, "/places", auth.Token, nil)
	if places.Code != http.StatusOK {
		t.Errorf("GET /places: status = %d, want %d", places.Code, http.StatusOK)
	}

	self := env.request(http.MethodGet, fmt.Sprintf("/users/%d", auth.ID), auth.Token, nil)
	if self.Code != http.StatusOK {
		t.Errorf("GET /users/{id}: status = %d, want %d", self.Code, http.StatusOK)
	}

	renamed := env.request(http.MethodPut, fmt.Sprintf("/users/%d", auth.ID), auth.Token,
		models.UpdateUserRequest{Username: strPtr("compat-renamed")})
	if renamed.Code != http.StatusOK {
		t.Errorf("PUT /users/{id}: status = %d, want %d (body %s)",
			renamed.Code, http.StatusOK, renamed.Body.String())
	}

	listDenied := env.request(http.MethodGet, "/users", auth.Token, nil)
	if listDenied.Code != http.StatusForbidden {
		t.Errorf("GET /users as non-admin: status = %d, want %d", listDenied.Code, http.StatusForbidden)
	}

	deleted := env.request(http.MethodDelete, fmt.Sprintf("/users/%d", auth.ID), auth.Token, nil)
	if deleted.Code != http.StatusNoContent {
		t.Errorf("DELETE /users/{id}: status = %d, want %d", deleted.Code, http.StatusNoContent)
	}
}

func TestRouter_CompatPlaceCreate(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.register("compat-owner", "password123", models.RoleBusinessOwner)

	rec := env.request(http.MethodPost, "/places", ownerToken, models.CreatePlaceRequest{
		Name:     "Alias Arcade",
		Category: models.CategoryNightlife,
		Latitude: 50.06, Longitude: 19.94,
	})
	if rec.Code != http.StatusCreated {
		t.Errorf("POST /places: status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	// A fresh id is generated when the client sends none.
	rec := env.request(http.MethodGet, "/health", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Response should carry a generated X-Request-ID")
	}

	// A client-supplied id is passed through to the response and envelope.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-me-123")
	echo := httptest.NewRecorder()
	env.router.ServeHTTP(echo, req)

	if got := echo.Header().Get("X-Request-ID"); got != "trace-me-123" {
		t.Errorf("X-Request-ID = %q, want trace-me-123", got)
	}
	resp := decodeEnvelope(t, echo)
	if resp.Meta == nil || resp.Meta.RequestID != "trace-me-123" {
		t.Errorf("Envelope request id = %v, want trace-me-123", resp.Meta)
	}
}

func TestRouter_SecurityHeadersOnVersionedAPI(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register("headers", "password123", "")

	rec := env.request(http.MethodGet, "/api/v1/places", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}

	// Plain HTTP requests must not advertise HSTS.
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS header should only appear on TLS requests")
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/places", nil)
	req.Header.Set("Origin", "https://app.localis.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK && rec.Code != http.StatusNoContent {
		t.Fatalf("Preflight status = %d, want 200 or 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRouter_ContentTypeJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/health", "", nil)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}
