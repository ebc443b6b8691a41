// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"
	"testing"

	"github.com/localis-app/localis/internal/models"
)

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.register("promoter", "password123", models.RoleBusinessOwner)
	_, userToken := env.register("seeker", "password123", "")

	env.createPlace(ownerToken, "Cafe Central", models.CategoryFood, 48.21, 16.37)
	env.createPlace(ownerToken, "Central Station Bar", models.CategoryNightlife, 48.22, 16.38)
	env.createPlace(ownerToken, "Quiet Library", models.CategoryCulture, 48.23, 16.39)

	rec := env.request(http.MethodGet, "/api/v1/search?q=central", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var places []models.Place
	decodeData(t, decodeEnvelope(t, rec), &places)
	if len(places) != 2 {
		t.Fatalf("Search hits = %d, want 2", len(places))
	}
	for _, p := range places {
		if p.Name == "Quiet Library" {
			t.Errorf("Search matched an unrelated place: %s", p.Name)
		}
	}
}

func TestSearch_CategoryNarrowing(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.register("owner-pair", "password123", models.RoleBusinessOwner)
	_, userToken := env.register("picky", "password123", "")

	env.createPlace(ownerToken, "Harbor Grill", models.CategoryFood, 43.3, 5.37)
	env.createPlace(ownerToken, "Harbor Club", models.CategoryNightlife, 43.31, 5.38)

	rec := env.request(http.MethodGet, "/api/v1/search?q=harbor&category=food", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var places []models.Place
	decodeData(t, decodeEnvelope(t, rec), &places)
	if len(places) != 1 || places[0].Name != "Harbor Grill" {
		t.Errorf("Narrowed search = %+v, want only the grill", places)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register("empty-handed", "password123", "")

	rec := env.request(http.MethodGet, "/api/v1/search", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if code := errorCode(t, rec); code != ErrCodeValidation {
		t.Errorf("Error code = %q, want %q", code, ErrCodeValidation)
	}
}

func TestAutocomplete(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.register("namegiver", "password123", models.RoleBusinessOwner)
	_, userToken := env.register("typist", "password123", "")

	env.createPlace(ownerToken, "Blue Bottle", models.CategoryFood, 37.77, -122.42)
	env.createPlace(ownerToken, "Blue Door Gallery", models.CategoryCulture, 37.78, -122.41)
	env.createPlace(ownerToken, "Red Rooster", models.CategoryFood, 37.79, -122.4)

	rec := env.request(http.MethodGet, "/api/v1/search/autocomplete?prefix=blu", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var suggestions []models.Suggestion
	decodeData(t, decodeEnvelope(t, rec), &suggestions)
	if len(suggestions) != 2 {
		t.Fatalf("Suggestions = %d, want 2", len(suggestions))
	}
	for _, s := range suggestions {
		if s.Name == "Red Rooster" {
			t.Errorf("Autocomplete matched a non-prefix name: %s", s.Name)
		}
	}
}

func TestAutocomplete_RequiresPrefix(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register("silent", "password123", "")

	rec := env.request(http.MethodGet, "/api/v1/search/autocomplete", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSearch_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/v1/search?q=anything", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
