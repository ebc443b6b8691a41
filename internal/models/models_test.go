// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package models

import (
	"bytes"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// testJSONRoundTrip is a generic helper that tests JSON marshal/unmarshal for
// any type. It marshals the input, unmarshals it back, and calls the
// verification function.
func testJSONRoundTrip[T any](t *testing.T, name string, input T, verify func(t *testing.T, decoded T)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		data, err := json.Marshal(input)
		if err != nil {
			t.Fatalf("Failed to marshal %s: %v", name, err)
		}

		var decoded T
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v", name, err)
		}

		if verify != nil {
			verify(t, decoded)
		}
	})
}

// Test fixtures - reusable test data
var (
	testTime    = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	testPlaceID = uuid.New()
	testAddress = "12 Rue de la Roquette, Paris"
)

func createTestUser() User {
	return User{
		ID:           7,
		Login:        "marco",
		PasswordHash: "$2a$12$fakehashfakehashfakehash",
		Role:         RoleBusinessOwner,
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
}

func createTestPlace() Place {
	addr := testAddress
	return Place{
		ID:          testPlaceID,
		Name:        "Cafe Lumen",
		Description: "Quiet specialty coffee near the canal",
		Category:    CategoryFood,
		Tags:        []string{"coffee", "wifi"},
		Latitude:    48.8566,
		Longitude:   2.3522,
		Address:     &addr,
		OwnerID:     7,
		AvgRating:   4.5,
		ReviewCount: 12,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

func TestJSONMarshaling(t *testing.T) {
	t.Parallel()

	testJSONRoundTrip(t, "User", createTestUser(), func(t *testing.T, decoded User) {
		if decoded.ID != 7 {
			t.Errorf("Expected ID 7, got %d", decoded.ID)
		}
		if decoded.Login != "marco" {
			t.Errorf("Expected login 'marco', got '%s'", decoded.Login)
		}
		if decoded.PasswordHash != "" {
			t.Error("PasswordHash must not survive a JSON round trip")
		}
	})

	testJSONRoundTrip(t, "Place", createTestPlace(), func(t *testing.T, decoded Place) {
		if decoded.ID != testPlaceID {
			t.Errorf("Expected ID %v, got %v", testPlaceID, decoded.ID)
		}
		if decoded.Latitude != 48.8566 {
			t.Errorf("Expected latitude 48.8566, got %f", decoded.Latitude)
		}
		if len(decoded.Tags) != 2 || decoded.Tags[0] != "coffee" {
			t.Errorf("Tags not properly marshaled: %v", decoded.Tags)
		}
		if decoded.Address == nil || *decoded.Address != testAddress {
			t.Error("Address not properly marshaled/unmarshaled")
		}
	})

	testJSONRoundTrip(t, "Review", Review{
		ID:        uuid.New(),
		PlaceID:   testPlaceID,
		UserID:    7,
		Rating:    4,
		Text:      "Great flat white",
		Likes:     3,
		CreatedAt: testTime,
	}, func(t *testing.T, decoded Review) {
		if decoded.Rating != 4 {
			t.Errorf("Expected rating 4, got %d", decoded.Rating)
		}
		if decoded.PlaceID != testPlaceID {
			t.Errorf("Expected place id %v, got %v", testPlaceID, decoded.PlaceID)
		}
	})

	testJSONRoundTrip(t, "Route", Route{
		Mode:   TravelModeWalk,
		Source: RouteSourceGreatCircle,
		Waypoints: []RoutePoint{
			{Latitude: 48.8566, Longitude: 2.3522},
			{Latitude: 48.8606, Longitude: 2.3376, Name: "Louvre"},
		},
		Legs: []RouteLeg{
			{
				DistanceMeters:  1200,
				DurationSeconds: 900,
				Geometry:        NewLineString([][2]float64{{2.3522, 48.8566}, {2.3376, 48.8606}}),
			},
		},
		DistanceMeters:  1200,
		DurationSeconds: 900,
	}, func(t *testing.T, decoded Route) {
		if decoded.Mode != TravelModeWalk {
			t.Errorf("Expected mode 'walk', got '%s'", decoded.Mode)
		}
		if len(decoded.Legs) != 1 {
			t.Fatalf("Expected 1 leg, got %d", len(decoded.Legs))
		}
		geom := decoded.Legs[0].Geometry
		if geom.Type != "LineString" {
			t.Errorf("Expected LineString geometry, got '%s'", geom.Type)
		}
		if len(geom.Coordinates) != 2 || geom.Coordinates[0][0] != 2.3522 {
			t.Errorf("Coordinates not properly marshaled: %v", geom.Coordinates)
		}
	})

	testJSONRoundTrip(t, "APIResponse", APIResponse{
		Success: true,
		Data:    map[string]interface{}{"total": float64(3)},
		Meta: &Meta{
			RequestID:  "req-1",
			Timestamp:  testTime,
			DurationMS: 12,
			Pagination: NewPaginationInfo(1, 20, 134),
		},
	}, func(t *testing.T, decoded APIResponse) {
		if !decoded.Success {
			t.Error("Expected success true")
		}
		if decoded.Error != nil {
			t.Error("Expected error to be nil")
		}
		if decoded.Meta == nil || decoded.Meta.Pagination == nil {
			t.Fatal("Meta/pagination not properly marshaled")
		}
		if decoded.Meta.Pagination.TotalPages != 7 {
			t.Errorf("Expected 7 total pages, got %d", decoded.Meta.Pagination.TotalPages)
		}
	})

	testJSONRoundTrip(t, "PlaceEvent", PlaceEvent{
		PlaceID:    testPlaceID,
		OwnerID:    7,
		Name:       "Cafe Lumen",
		Category:   CategoryFood,
		Latitude:   48.8566,
		Longitude:  2.3522,
		OccurredAt: testTime,
	}, func(t *testing.T, decoded PlaceEvent) {
		if decoded.PlaceID != testPlaceID {
			t.Errorf("Expected place id %v, got %v", testPlaceID, decoded.PlaceID)
		}
		if decoded.Category != CategoryFood {
			t.Errorf("Expected category 'food', got '%s'", decoded.Category)
		}
	})
}

// Credential material must never appear in serialized output, not just fail
// to round-trip.
func TestCredentialFieldsNeverSerialized(t *testing.T) {
	t.Parallel()

	user := createTestUser()
	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Failed to marshal user: %v", err)
	}
	if bytes.Contains(data, []byte(user.PasswordHash)) {
		t.Error("PasswordHash leaked into user JSON")
	}
	if bytes.Contains(data, []byte("password")) {
		t.Error("password key present in user JSON")
	}

	token := APIToken{
		ID:          uuid.New(),
		UserID:      7,
		Name:        "ci",
		TokenPrefix: "loc_pat_AbCd",
		TokenHash:   "$2a$12$tokenhashtokenhashtoken",
		Scopes:      []TokenScope{ScopeRead},
		CreatedAt:   testTime,
	}
	data, err = json.Marshal(token)
	if err != nil {
		t.Fatalf("Failed to marshal token: %v", err)
	}
	if bytes.Contains(data, []byte(token.TokenHash)) {
		t.Error("TokenHash leaked into token JSON")
	}
	if !bytes.Contains(data, []byte("loc_pat_AbCd")) {
		t.Error("TokenPrefix should be serialized for display")
	}
}

func TestUserSanitize(t *testing.T) {
	t.Parallel()

	user := createTestUser()
	clean := user.Sanitize()

	if clean.PasswordHash != "" {
		t.Error("Sanitize did not clear PasswordHash")
	}
	if clean.Login != user.Login || clean.ID != user.ID {
		t.Error("Sanitize altered non-credential fields")
	}
	if user.PasswordHash == "" {
		t.Error("Sanitize mutated the original")
	}
}

func TestIsValidRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role string
		want bool
	}{
		{"user", true},
		{"businessOwner", true},
		{"moderator", true},
		{"admin", true},
		{"businessowner", false},
		{"superuser", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidRole(tt.role); got != tt.want {
			t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role string
		min  string
		want bool
	}{
		{RoleAdmin, RoleModerator, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleModerator, RoleBusinessOwner, true},
		{RoleBusinessOwner, RoleBusinessOwner, true},
		{RoleUser, RoleBusinessOwner, false},
		{RoleBusinessOwner, RoleModerator, false},
		{"unknown", RoleUser, false},
	}

	for _, tt := range tests {
		if got := RoleAtLeast(tt.role, tt.min); got != tt.want {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}

func TestUserRoleHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role        string
		isAdmin     bool
		canModerate bool
		canPublish  bool
	}{
		{RoleUser, false, false, false},
		{RoleBusinessOwner, false, false, true},
		{RoleModerator, false, true, true},
		{RoleAdmin, true, true, true},
	}

	for _, tt := range tests {
		u := User{Role: tt.role}
		if got := u.IsAdmin(); got != tt.isAdmin {
			t.Errorf("IsAdmin() for %s = %v, want %v", tt.role, got, tt.isAdmin)
		}
		if got := u.CanModerate(); got != tt.canModerate {
			t.Errorf("CanModerate() for %s = %v, want %v", tt.role, got, tt.canModerate)
		}
		if got := u.CanPublishPlaces(); got != tt.canPublish {
			t.Errorf("CanPublishPlaces() for %s = %v, want %v", tt.role, got, tt.canPublish)
		}
	}
}

func TestIsValidCategory(t *testing.T) {
	t.Parallel()

	for _, c := range ValidCategories {
		if !IsValidCategory(c) {
			t.Errorf("IsValidCategory(%q) = false, want true", c)
		}
	}
	for _, c := range []string{"Food", "restaurants", ""} {
		if IsValidCategory(c) {
			t.Errorf("IsValidCategory(%q) = true, want false", c)
		}
	}
}

func TestIsValidPlaceSort(t *testing.T) {
	t.Parallel()

	for _, s := range ValidPlaceSorts {
		if !IsValidPlaceSort(s) {
			t.Errorf("IsValidPlaceSort(%q) = false, want true", s)
		}
	}
	if IsValidPlaceSort("oldest") {
		t.Error("IsValidPlaceSort(\"oldest\") = true, want false")
	}
}

func TestIsValidTravelMode(t *testing.T) {
	t.Parallel()

	for _, m := range ValidTravelModes {
		if !IsValidTravelMode(m) {
			t.Errorf("IsValidTravelMode(%q) = false, want true", m)
		}
	}
	if IsValidTravelMode("fly") {
		t.Error("IsValidTravelMode(\"fly\") = true, want false")
	}
}

func TestIsValidScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scope string
		want  bool
	}{
		{"read", true},
		{"write", true},
		{"admin", true},
		{"delete", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidScope(tt.scope); got != tt.want {
			t.Errorf("IsValidScope(%q) = %v, want %v", tt.scope, got, tt.want)
		}
	}
}

func TestPlaceToMarker(t *testing.T) {
	t.Parallel()

	place := createTestPlace()
	marker := place.ToMarker()

	if marker.ID != place.ID {
		t.Errorf("Expected marker id %v, got %v", place.ID, marker.ID)
	}
	if marker.Latitude != place.Latitude || marker.Longitude != place.Longitude {
		t.Error("Marker coordinates do not match place")
	}
	if marker.AvgRating != place.AvgRating {
		t.Errorf("Expected marker rating %f, got %f", place.AvgRating, marker.AvgRating)
	}
}

func TestUpdateRequestsHasUpdates(t *testing.T) {
	t.Parallel()

	name := "Renamed"
	rating := 5

	if (&UpdateUserRequest{}).HasUpdates() {
		t.Error("Empty UpdateUserRequest reported updates")
	}
	if !(&UpdateUserRequest{Username: &name}).HasUpdates() {
		t.Error("UpdateUserRequest with username reported no updates")
	}

	if (&UpdatePlaceRequest{}).HasUpdates() {
		t.Error("Empty UpdatePlaceRequest reported updates")
	}
	if !(&UpdatePlaceRequest{Name: &name}).HasUpdates() {
		t.Error("UpdatePlaceRequest with name reported no updates")
	}

	if (&UpdateReviewRequest{}).HasUpdates() {
		t.Error("Empty UpdateReviewRequest reported updates")
	}
	if !(&UpdateReviewRequest{Rating: &rating}).HasUpdates() {
		t.Error("UpdateReviewRequest with rating reported no updates")
	}
}

func TestSessionIsExpired(t *testing.T) {
	t.Parallel()

	live := Session{ExpiresAt: time.Now().Add(time.Hour)}
	if live.IsExpired() {
		t.Error("Session expiring in an hour reported expired")
	}

	dead := Session{ExpiresAt: time.Now().Add(-time.Minute)}
	if !dead.IsExpired() {
		t.Error("Session expired a minute ago reported live")
	}
}

func TestAPITokenLifecycle(t *testing.T) {
	t.Parallel()

	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name       string
		token      APIToken
		wantActive bool
	}{
		{"no expiry", APIToken{}, true},
		{"future expiry", APIToken{ExpiresAt: &future}, true},
		{"expired", APIToken{ExpiresAt: &past}, false},
		{"revoked", APIToken{Revoked: true}, false},
		{"revoked and expired", APIToken{Revoked: true, ExpiresAt: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.IsActive(); got != tt.wantActive {
				t.Errorf("IsActive() = %v, want %v", got, tt.wantActive)
			}
		})
	}
}

func TestAPITokenScopes(t *testing.T) {
	t.Parallel()

	token := APIToken{Scopes: []TokenScope{ScopeRead, ScopeWrite}}

	if !token.HasScope(ScopeRead) {
		t.Error("Expected token to have read scope")
	}
	if token.HasScope(ScopeAdmin) {
		t.Error("Token should not have admin scope")
	}
	if !token.HasAnyScope(ScopeAdmin, ScopeWrite) {
		t.Error("Expected HasAnyScope to match write")
	}
	if token.HasAnyScope(ScopeAdmin) {
		t.Error("HasAnyScope matched a scope the token lacks")
	}
	if len(DefaultScopes()) != 1 || DefaultScopes()[0] != ScopeRead {
		t.Errorf("Expected default scopes [read], got %v", DefaultScopes())
	}
}

func TestNewPaginationInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       int
		pageSize   int
		totalCount int64
		wantPages  int
		wantMore   bool
	}{
		{"first of seven", 1, 20, 134, 7, true},
		{"last of seven", 7, 20, 134, 7, false},
		{"empty result", 1, 20, 0, 0, false},
		{"exact fit", 2, 50, 100, 2, false},
		{"page past end", 3, 50, 100, 2, false},
		{"normalized zero page", 0, 10, 25, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginationInfo(tt.page, tt.pageSize, tt.totalCount)
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.HasMore != tt.wantMore {
				t.Errorf("HasMore = %v, want %v", p.HasMore, tt.wantMore)
			}
		})
	}
}

func TestBoundingBoxContains(t *testing.T) {
	t.Parallel()

	box := BoundingBox{MinLat: 48.0, MinLon: 2.0, MaxLat: 49.0, MaxLon: 3.0}

	tests := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"inside", 48.5, 2.5, true},
		{"on corner", 48.0, 2.0, true},
		{"north of box", 50.0, 2.5, false},
		{"west of box", 48.5, 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.lat, tt.lon); got != tt.want {
				t.Errorf("Contains(%f, %f) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}
