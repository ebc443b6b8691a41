// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

//go:build integration

package testinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// TestServerContainer boots the published server image and drives a
// black-box flow across the API: health, admin login, catalog listing,
// place creation, search, registration, and review submission.
func TestServerContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	server, err := NewServerContainer(ctx, WithStartTimeout(90*time.Second))
	if err != nil {
		t.Fatalf("failed to start server container: %v", err)
	}
	defer CleanupContainer(t, ctx, server)

	info := GetContainerInfo(ctx, server)
	t.Logf("server container %s on %s state=%s ports=%v", info.ID, info.Host, info.State, info.Ports)

	// Health answers without authentication.
	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// Bootstrap admin can log in with the harness credentials.
	adminToken, err := server.Login(ctx, server.AdminLogin, server.AdminPassword)
	if err != nil {
		logs, logsErr := server.Logs(ctx)
		if logsErr == nil {
			t.Logf("server logs:\n%s", logs)
		}
		t.Fatalf("admin login failed: %v", err)
	}

	// The demo catalog is seeded by default.
	var places []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	resp = doRequest(t, ctx, http.MethodGet, server.APIEndpoint("/places"), adminToken, nil)
	decodeEnvelope(t, resp, http.StatusOK, &places)
	if len(places) == 0 {
		t.Fatal("expected seeded demo places, got none")
	}
	t.Logf("demo catalog holds %d places", len(places))

	// Admin creates a place.
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	createBody := `{"name":"Harborlight Test Kitchen","category":"food","latitude":59.4372,"longitude":24.7454,"description":"Black-box test fixture"}`
	resp = doRequest(t, ctx, http.MethodPost, server.APIEndpoint("/places"), adminToken, strings.NewReader(createBody))
	decodeEnvelope(t, resp, http.StatusCreated, &created)
	if created.ID == "" {
		t.Fatal("created place has no id")
	}

	// Search finds the new place by name.
	var hits []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	resp = doRequest(t, ctx, http.MethodGet, server.APIEndpoint("/search?q=Harborlight"), adminToken, nil)
	decodeEnvelope(t, resp, http.StatusOK, &hits)
	found := false
	for _, hit := range hits {
		if hit.ID == created.ID {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("search did not return the created place, got %d hits", len(hits))
	}

	// A fresh account registers and reviews the place.
	var registered struct {
		ID    int64  `json:"id"`
		Token string `json:"token"`
	}
	registerBody := `{"login":"it-reviewer","passwd":"it-reviewer-pw-1"}`
	resp = doRequest(t, ctx, http.MethodPost, server.APIEndpoint("/auth/register"), "", strings.NewReader(registerBody))
	decodeEnvelope(t, resp, http.StatusCreated, &registered)
	if registered.Token == "" {
		t.Fatal("registration returned no token")
	}

	var review struct {
		ID     string `json:"id"`
		Rating int    `json:"rating"`
	}
	reviewPath := fmt.Sprintf("/places/%s/reviews", created.ID)
	resp = doRequest(t, ctx, http.MethodPost, server.APIEndpoint(reviewPath), registered.Token, strings.NewReader(`{"rating":5,"text":"Verified end to end"}`))
	decodeEnvelope(t, resp, http.StatusCreated, &review)
	if review.Rating != 5 {
		t.Fatalf("review rating = %d, want 5", review.Rating)
	}
}

// TestServerContainerOptions verifies the option functions without
// starting a container.
func TestServerContainerOptions(t *testing.T) {
	cfg := defaultServerConfig()
	if cfg.image != DefaultServerImage {
		t.Errorf("default image = %q, want %q", cfg.image, DefaultServerImage)
	}
	if !cfg.seedDemoData {
		t.Error("demo data should be seeded by default")
	}
	if cfg.startTimeout != defaultServerStartTimeout {
		t.Errorf("default start timeout = %v, want %v", cfg.startTimeout, defaultServerStartTimeout)
	}

	for _, opt := range []ServerOption{
		WithServerImage("ghcr.io/localis-app/localis:v1.2.3"),
		WithStartTimeout(3 * time.Minute),
		WithoutDemoData(),
		WithServerEnv("LOG_LEVEL", "debug"),
	} {
		opt(cfg)
	}

	if cfg.image != "ghcr.io/localis-app/localis:v1.2.3" {
		t.Errorf("image = %q after WithServerImage", cfg.image)
	}
	if cfg.startTimeout != 3*time.Minute {
		t.Errorf("start timeout = %v after WithStartTimeout", cfg.startTimeout)
	}
	if cfg.seedDemoData {
		t.Error("seedDemoData still true after WithoutDemoData")
	}
	if cfg.env["LOG_LEVEL"] != "debug" {
		t.Errorf("env LOG_LEVEL = %q after WithServerEnv", cfg.env["LOG_LEVEL"])
	}
}

// TestOSRMRouteDocument checks the default mock response against the
// OSRM shape route planning consumes.
func TestOSRMRouteDocument(t *testing.T) {
	doc := OSRMRouteDocument("24.745400,59.437200;24.753500,59.440100;24.760000,59.445000", 3000, 1500)

	var parsed struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
			Legs     []struct {
				Distance float64 `json:"distance"`
				Steps    []struct {
					Geometry struct {
						Type        string      `json:"type"`
						Coordinates [][]float64 `json:"coordinates"`
					} `json:"geometry"`
				} `json:"steps"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}

	if parsed.Code != "Ok" {
		t.Errorf("code = %q, want Ok", parsed.Code)
	}
	if len(parsed.Routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(parsed.Routes))
	}
	route := parsed.Routes[0]
	if route.Distance != 3000 || route.Duration != 1500 {
		t.Errorf("totals = %.0f m / %.0f s, want 3000 / 1500", route.Distance, route.Duration)
	}
	if len(route.Legs) != 2 {
		t.Fatalf("legs = %d, want 2 for three waypoints", len(route.Legs))
	}
	for i, leg := range route.Legs {
		if leg.Distance != 1500 {
			t.Errorf("leg %d distance = %.0f, want 1500", i, leg.Distance)
		}
		if len(leg.Steps) != 1 || leg.Steps[0].Geometry.Type != "LineString" {
			t.Errorf("leg %d missing LineString step geometry", i)
		}
		if len(leg.Steps[0].Geometry.Coordinates) != 2 {
			t.Errorf("leg %d geometry has %d coordinates, want 2", i, len(leg.Steps[0].Geometry.Coordinates))
		}
	}
}

// doRequest issues an HTTP request with an optional bearer token and
// JSON body.
func doRequest(t *testing.T, ctx context.Context, method, url, token string, body io.Reader) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		t.Fatalf("failed to create %s %s: %v", method, url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

// decodeEnvelope asserts the response status and decodes the envelope
// data field into target.
func decodeEnvelope(t *testing.T, resp *http.Response, wantStatus int, target interface{}) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("status = %d, want %d, body: %s", resp.StatusCode, wantStatus, string(body))
	}

	envelope := struct {
		Success bool        `json:"success"`
		Data    interface{} `json:"data"`
	}{Data: target}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("response not successful, body: %s", string(body))
	}
}
