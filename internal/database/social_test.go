// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/models"
)

func setupTestDBForSocial(t *testing.T) *DB {
	t.Helper()

	// See database_test.go for why test database access is serialized.
	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:        ":memory:",
		MaxMemory:   "512MB",
		SkipIndexes: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return db
}

func TestFavorites(t *testing.T) {
	db := setupTestDBForSocial(t)
	defer db.Close()

	ctx := context.Background()
	owner := mustCreateUser(t, db, "owner", models.RoleBusinessOwner)
	alice := mustCreateUser(t, db, "alice", models.RoleUser)
	first := mustCreatePlace(t, db, owner.ID, "First", models.CategoryFood, 48.85, 2.35)
	second := mustCreatePlace(t, db, owner.ID, "Second", models.CategoryNature, 48.86, 2.36)

	if err := db.AddFavorite(ctx, alice.ID, first.ID); err != nil {
		t.Fatalf("AddFavorite() error = %v", err)
	}
	if err := db.AddFavorite(ctx, alice.ID, second.ID); err != nil {
		t.Fatalf("AddFavorite() second error = %v", err)
	}

	if err := db.AddFavorite(ctx, alice.ID, first.ID); !errors.Is(err, ErrDuplicate) {
		t.Errorf("AddFavorite() duplicate error = %v, want %v", err, ErrDuplicate)
	}
	if err := db.AddFavorite(ctx, alice.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddFavorite() unknown place error = %v, want %v", err, ErrNotFound)
	}

	fav, err := db.IsFavorite(ctx, alice.ID, first.ID)
	if err != nil {
		t.Fatalf("IsFavorite() error = %v", err)
	}
	if !fav {
		t.Error("IsFavorite() = false, want true")
	}

	places, total, err := db.ListFavorites(ctx, alice.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListFavorites() error = %v", err)
	}
	if total != 2 || len(places) != 2 {
		t.Fatalf("ListFavorites() = %d places (total %d), want 2", len(places), total)
	}

	if err := db.RemoveFavorite(ctx, alice.ID, first.ID); err != nil {
		t.Fatalf("RemoveFavorite() error = %v", err)
	}
	if err := db.RemoveFavorite(ctx, alice.ID, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveFavorite() repeat error = %v, want %v", err, ErrNotFound)
	}

	_, total, err = db.ListFavorites(ctx, alice.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListFavorites() after remove error = %v", err)
	}
	if total != 1 {
		t.Errorf("ListFavorites() total = %d after remove, want 1", total)
	}
}

func TestFollows(t *testing.T) {
	db := setupTestDBForSocial(t)
	defer db.Close()

	ctx := context.Background()
	alice := mustCreateUser(t, db, "alice", models.RoleUser)
	bob := mustCreateUser(t, db, "bob", models.RoleUser)
	carol := mustCreateUser(t, db, "carol", models.RoleUser)

	if err := db.FollowUser(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}
	if err := db.FollowUser(ctx, carol.ID, bob.ID); err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}
	if err := db.FollowUser(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}

	if err := db.FollowUser(ctx, alice.ID, bob.ID); !errors.Is(err, ErrDuplicate) {
		t.Errorf("FollowUser() duplicate error = %v, want %v", err, ErrDuplicate)
	}
	if err := db.FollowUser(ctx, alice.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("FollowUser() unknown followee error = %v, want %v", err, ErrNotFound)
	}

	following, err := db.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("IsFollowing() error = %v", err)
	}
	if !following {
		t.Error("IsFollowing() = false, want true")
	}

	// Bob has two followers; Alice follows two people.
	followers, total, err := db.ListFollowers(ctx, bob.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListFollowers() error = %v", err)
	}
	if total != 2 || len(followers) != 2 {
		t.Errorf("ListFollowers(bob) = %d (total %d), want 2", len(followers), total)
	}
	followees, total, err := db.ListFollowing(ctx, alice.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListFollowing() error = %v", err)
	}
	if total != 2 || len(followees) != 2 {
		t.Errorf("ListFollowing(alice) = %d (total %d), want 2", len(followees), total)
	}

	if err := db.UnfollowUser(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("UnfollowUser() error = %v", err)
	}
	if err := db.UnfollowUser(ctx, alice.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("UnfollowUser() repeat error = %v, want %v", err, ErrNotFound)
	}
}

func TestGetProfile(t *testing.T) {
	db := setupTestDBForSocial(t)
	defer db.Close()

	ctx := context.Background()
	owner := mustCreateUser(t, db, "owner", models.RoleBusinessOwner)
	alice := mustCreateUser(t, db, "alice", models.RoleUser)
	bob := mustCreateUser(t, db, "bob", models.RoleUser)
	place := mustCreatePlace(t, db, owner.ID, "Counted", models.CategoryFood, 48.85, 2.35)

	// Alice: 1 follower (bob), follows 2, 1 favorite, 1 review.
	if err := db.FollowUser(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}
	if err := db.FollowUser(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}
	if err := db.FollowUser(ctx, alice.ID, owner.ID); err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}
	if err := db.AddFavorite(ctx, alice.ID, place.ID); err != nil {
		t.Fatalf("AddFavorite() error = %v", err)
	}
	mustCreateReview(t, db, place, alice.ID, 4, "counted")

	profile, err := db.GetProfile(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if profile.User.Login != "alice" {
		t.Errorf("profile login = %q, want alice", profile.User.Login)
	}
	if profile.FollowerCount != 1 {
		t.Errorf("FollowerCount = %d, want 1", profile.FollowerCount)
	}
	if profile.FollowingCount != 2 {
		t.Errorf("FollowingCount = %d, want 2", profile.FollowingCount)
	}
	if profile.FavoriteCount != 1 {
		t.Errorf("FavoriteCount = %d, want 1", profile.FavoriteCount)
	}
	if profile.ReviewCount != 1 {
		t.Errorf("ReviewCount = %d, want 1", profile.ReviewCount)
	}

	if _, err := db.GetProfile(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProfile(9999) error = %v, want %v", err, ErrNotFound)
	}
}

func TestGetFeed(t *testing.T) {
	db := setupTestDBForSocial(t)
	defer db.Close()

	ctx := context.Background()
	owner := mustCreateUser(t, db, "owner", models.RoleBusinessOwner)
	alice := mustCreateUser(t, db, "alice", models.RoleUser)
	stranger := mustCreateUser(t, db, "stranger", models.RoleBusinessOwner)

	// Alice follows only the owner.
	if err := db.FollowUser(ctx, alice.ID, owner.ID); err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}

	followedPlace := mustCreatePlace(t, db, owner.ID, "Followed Place", models.CategoryFood, 48.85, 2.35)
	mustCreatePlace(t, db, stranger.ID, "Stranger Place", models.CategoryFood, 48.86, 2.36)
	mustCreateReview(t, db, followedPlace, owner.ID, 5, "my own spot is great")

	feed, err := db.GetFeed(ctx, alice.ID, 10)
	if err != nil {
		t.Fatalf("GetFeed() error = %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("GetFeed() = %d items, want 2 (place + review from followed user)", len(feed))
	}
	for _, item := range feed {
		if item.UserID != owner.ID {
			t.Errorf("feed item from user %d, want only followed user %d", item.UserID, owner.ID)
		}
		if item.Username != "owner" {
			t.Errorf("feed item username = %q, want owner", item.Username)
		}
		switch item.Type {
		case models.FeedItemReview:
			if item.Review == nil {
				t.Error("review feed item has nil Review")
			}
		case models.FeedItemPlace:
			if item.Place == nil {
				t.Error("place feed item has nil Place")
			}
		default:
			t.Errorf("unexpected feed item type %q", item.Type)
		}
	}

	// Newest first.
	for i := 1; i < len(feed); i++ {
		if feed[i].OccurredAt.After(feed[i-1].OccurredAt) {
			t.Errorf("feed not sorted newest first at index %d", i)
		}
	}
}

func TestGetFeedLimit(t *testing.T) {
	db := setupTestDBForSocial(t)
	defer db.Close()

	ctx := context.Background()
	owner := mustCreateUser(t, db, "owner", models.RoleBusinessOwner)
	alice := mustCreateUser(t, db, "alice", models.RoleUser)
	if err := db.FollowUser(ctx, alice.ID, owner.ID); err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		mustCreatePlace(t, db, owner.ID, fmt.Sprintf("Place %d", i), models.CategoryOther, 48.85, 2.35)
	}

	feed, err := db.GetFeed(ctx, alice.ID, 3)
	if err != nil {
		t.Fatalf("GetFeed() error = %v", err)
	}
	if len(feed) != 3 {
		t.Errorf("GetFeed(limit 3) = %d items, want 3", len(feed))
	}
}
