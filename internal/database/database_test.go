// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/models"
)

// testDBSemaphore limits concurrent database creation to prevent resource
// exhaustion in CI. Too many concurrent DuckDB CGO calls can hang, so test
// database access is fully serialized.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes the New call itself.
var testDBMutex sync.Mutex

// testPasswordHash stands in for a bcrypt digest. This layer stores hashes
// opaquely, so any string works.
const testPasswordHash = "$2a$12$testtesttesttesttesttOeKvQFqGxJ0P9ZsLxkYwFhYXPlDzXG2u"

// setupTestDB creates a new in-memory test database with timeout protection.
//
// Concurrency control:
//   - The semaphore is held for the ENTIRE test lifecycle, released via
//     t.Cleanup, so only one test has an active DuckDB connection at a time
//   - The mutex additionally serializes the New call
//   - A 120-second timeout fails fast if DuckDB hangs under CI pressure
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s (DuckDB may be under resource pressure)")
		return nil
	}
}

// mustCreateUser creates a user fixture or fails the test.
func mustCreateUser(t *testing.T, db *DB, login, role string) *models.User {
	t.Helper()
	user, err := db.CreateUser(context.Background(), login, testPasswordHash, role)
	if err != nil {
		t.Fatalf("Failed to create user %q: %v", login, err)
	}
	return user
}

// mustCreatePlace creates a place fixture or fails the test.
func mustCreatePlace(t *testing.T, db *DB, ownerID int64, name, category string, lat, lon float64, tags ...string) *models.Place {
	t.Helper()
	place := &models.Place{
		Name:      name,
		Category:  category,
		Latitude:  lat,
		Longitude: lon,
		OwnerID:   ownerID,
		Tags:      tags,
	}
	if err := db.CreatePlace(context.Background(), place); err != nil {
		t.Fatalf("Failed to create place %q: %v", name, err)
	}
	return place
}

// mustCreateReview creates a review fixture or fails the test.
func mustCreateReview(t *testing.T, db *DB, place *models.Place, userID int64, rating int, text string) *models.Review {
	t.Helper()
	review := &models.Review{
		PlaceID: place.ID,
		UserID:  userID,
		Rating:  rating,
		Text:    text,
	}
	if err := db.CreateReview(context.Background(), review); err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	return review
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if db.Conn() == nil {
		t.Fatal("Conn() returned nil")
	}
	if got := db.GetDatabasePath(); got != ":memory:" {
		t.Errorf("GetDatabasePath() = %q, want %q", got, ":memory:")
	}
}

func TestHealthCheck(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestCheckpoint(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.Checkpoint(context.Background()); err != nil {
		t.Errorf("Checkpoint() error = %v", err)
	}
}

func TestDatabaseSizeBytesInMemory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if got := db.DatabaseSizeBytes(); got != 0 {
		t.Errorf("DatabaseSizeBytes() = %d for in-memory database, want 0", got)
	}
}

func TestGetCurrentSchemaVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	version, err := db.GetCurrentSchemaVersion()
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion() error = %v", err)
	}
	// No versioned migrations are registered pre-release.
	if version != 0 {
		t.Errorf("GetCurrentSchemaVersion() = %d, want 0", version)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	if err := db.EnsureBootstrapAdmin(ctx, "admin", testPasswordHash); err != nil {
		t.Fatalf("EnsureBootstrapAdmin() error = %v", err)
	}

	admin, err := db.GetUserByID(ctx, models.BootstrapAdminID)
	if err != nil {
		t.Fatalf("GetUserByID(%d) error = %v", models.BootstrapAdminID, err)
	}
	if admin.Login != "admin" {
		t.Errorf("bootstrap admin login = %q, want %q", admin.Login, "admin")
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("bootstrap admin role = %q, want %q", admin.Role, models.RoleAdmin)
	}

	// A second call on a non-empty table must not create anything.
	if err := db.EnsureBootstrapAdmin(ctx, "other", testPasswordHash); err != nil {
		t.Fatalf("EnsureBootstrapAdmin() second call error = %v", err)
	}
	count, err := db.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountUsers() = %d after repeated bootstrap, want 1", count)
	}
}

func TestSeedDemoData(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	if err := db.SeedDemoData(ctx, testPasswordHash); err != nil {
		t.Fatalf("SeedDemoData() error = %v", err)
	}

	placeCount, err := db.CountPlaces(ctx)
	if err != nil {
		t.Fatalf("CountPlaces() error = %v", err)
	}
	if placeCount == 0 {
		t.Fatal("SeedDemoData() created no places")
	}
	reviewCount, err := db.CountReviews(ctx)
	if err != nil {
		t.Fatalf("CountReviews() error = %v", err)
	}
	if reviewCount == 0 {
		t.Fatal("SeedDemoData() created no reviews")
	}

	// Seeding must be idempotent.
	if err := db.SeedDemoData(ctx, testPasswordHash); err != nil {
		t.Fatalf("SeedDemoData() second call error = %v", err)
	}
	placeCountAfter, err := db.CountPlaces(ctx)
	if err != nil {
		t.Fatalf("CountPlaces() error = %v", err)
	}
	if placeCountAfter != placeCount {
		t.Errorf("CountPlaces() = %d after reseed, want %d", placeCountAfter, placeCount)
	}
}
