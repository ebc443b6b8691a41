// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package database

import (
	"context"
	"fmt"

	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

// EnsureBootstrapAdmin creates the protected admin account (id 1) on an
// empty users table. The caller supplies the bcrypt hash; the login and
// password come from configuration. A non-empty table is left untouched.
func (db *DB) EnsureBootstrapAdmin(ctx context.Context, login, passwordHash string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	count, err := db.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	user, err := db.CreateUser(ctx, login, passwordHash, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	if user.ID != models.BootstrapAdminID {
		return fmt.Errorf("bootstrap admin allocated id %d, expected %d", user.ID, models.BootstrapAdminID)
	}

	logging.Info().Str("login", login).Msg("Created bootstrap admin account")
	return nil
}

// SeedDemoData populates an empty database with a small Paris-area dataset
// for demos and screenshot capture. All demo accounts share the provided
// password hash. Does nothing if places already exist.
func (db *DB) SeedDemoData(ctx context.Context, passwordHash string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	count, err := db.CountPlaces(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logging.Debug().Int("places", count).Msg("Skipping demo seed, data already present")
		return nil
	}

	logging.Info().Msg("Seeding database with demo data...")

	demoUsers := []struct {
		login string
		role  string
	}{
		{"amelie", models.RoleBusinessOwner},
		{"bruno", models.RoleBusinessOwner},
		{"chloe", models.RoleUser},
		{"diego", models.RoleUser},
		{"elif", models.RoleModerator},
		{"farid", models.RoleUser},
	}

	users := make([]*models.User, 0, len(demoUsers))
	for _, du := range demoUsers {
		user, err := db.CreateUser(ctx, du.login, passwordHash, du.role)
		if err != nil {
			return fmt.Errorf("failed to seed user %q: %w", du.login, err)
		}
		users = append(users, user)
	}
	logging.Info().Int("count", len(users)).Msg("Created demo users")

	strPtr := func(s string) *string { return &s }

	demoPlaces := []models.Place{
		{Name: "Café de Flore", Category: models.CategoryFood, Tags: []string{"coffee", "terrace", "historic"},
			Description: "Legendary Saint-Germain café with a sunny terrace.",
			Latitude:    48.8540, Longitude: 2.3325, Address: strPtr("172 Boulevard Saint-Germain")},
		{Name: "Le Marché des Enfants Rouges", Category: models.CategoryFood, Tags: []string{"market", "lunch", "street-food"},
			Description: "Oldest covered market in Paris, packed with food stalls.",
			Latitude:    48.8629, Longitude: 2.3622, Address: strPtr("39 Rue de Bretagne")},
		{Name: "Musée d'Orsay", Category: models.CategoryCulture, Tags: []string{"museum", "impressionism"},
			Description: "Impressionist masterpieces in a converted railway station.",
			Latitude:    48.8600, Longitude: 2.3266, Address: strPtr("1 Rue de la Légion d'Honneur")},
		{Name: "Sainte-Chapelle", Category: models.CategoryCulture, Tags: []string{"gothic", "stained-glass"},
			Description: "Thirteenth-century chapel with floor-to-ceiling stained glass.",
			Latitude:    48.8554, Longitude: 2.3451, Address: strPtr("10 Boulevard du Palais")},
		{Name: "Jardin du Luxembourg", Category: models.CategoryNature, Tags: []string{"park", "picnic", "fountain"},
			Description: "Formal gardens around the Luxembourg Palace.",
			Latitude:    48.8462, Longitude: 2.3372},
		{Name: "Coulée Verte René-Dumont", Category: models.CategoryNature, Tags: []string{"walk", "elevated-park"},
			Description: "Elevated greenway along a disused railway viaduct.",
			Latitude:    48.8474, Longitude: 2.3752},
		{Name: "Marché aux Puces de Saint-Ouen", Category: models.CategoryShopping, Tags: []string{"flea-market", "antiques"},
			Description: "Sprawling antiques market at the northern edge of the city.",
			Latitude:    48.9020, Longitude: 2.3439},
		{Name: "Shakespeare and Company", Category: models.CategoryShopping, Tags: []string{"books", "english"},
			Description: "English-language bookshop facing Notre-Dame.",
			Latitude:    48.8526, Longitude: 2.3471, Address: strPtr("37 Rue de la Bûcherie")},
		{Name: "Le Comptoir Général", Category: models.CategoryNightlife, Tags: []string{"bar", "canal", "eclectic"},
			Description: "Sprawling bar and event space hidden off the Canal Saint-Martin.",
			Latitude:    48.8719, Longitude: 2.3658, Address: strPtr("84 Quai de Jemmapes")},
		{Name: "Caveau de la Huchette", Category: models.CategoryNightlife, Tags: []string{"jazz", "dancing", "historic"},
			Description: "Swing jazz club in a medieval cellar.",
			Latitude:    48.8524, Longitude: 2.3462, Address: strPtr("5 Rue de la Huchette")},
		{Name: "Pharmacie Monge", Category: models.CategoryServices, Tags: []string{"pharmacy", "late-hours"},
			Description: "Large discount pharmacy near Place Monge.",
			Latitude:    48.8430, Longitude: 2.3520, Address: strPtr("74 Rue Monge")},
		{Name: "Vélib' Station Hôtel de Ville", Category: models.CategoryServices, Tags: []string{"bikes", "rental"},
			Description: "Bike share station by the city hall.",
			Latitude:    48.8573, Longitude: 2.3519},
	}

	// Owners alternate between the two business accounts.
	for i := range demoPlaces {
		demoPlaces[i].OwnerID = users[i%2].ID
		if err := db.CreatePlace(ctx, &demoPlaces[i]); err != nil {
			return fmt.Errorf("failed to seed place %q: %w", demoPlaces[i].Name, err)
		}
	}
	logging.Info().Int("count", len(demoPlaces)).Msg("Created demo places")

	reviewTexts := []string{
		"Exactly as good as everyone says.",
		"Lovely spot, gets crowded on weekends.",
		"Worth the detour. Will come back.",
		"Solid but a bit overpriced.",
		"A classic for a reason.",
	}

	// Each non-owner account reviews every other place, ratings cycle 3..5.
	reviewCount := 0
	for pi := range demoPlaces {
		for ui := 2; ui < len(users); ui++ {
			if (pi+ui)%2 != 0 {
				continue
			}
			review := &models.Review{
				PlaceID: demoPlaces[pi].ID,
				UserID:  users[ui].ID,
				Rating:  3 + (pi+ui)%3,
				Text:    reviewTexts[(pi+ui)%len(reviewTexts)],
			}
			if err := db.CreateReview(ctx, review); err != nil {
				return fmt.Errorf("failed to seed review: %w", err)
			}
			reviewCount++
		}
	}
	logging.Info().Int("count", reviewCount).Msg("Created demo reviews")

	// A small follow graph plus everyone favoriting the market.
	follows := [][2]int{{2, 0}, {3, 0}, {3, 1}, {4, 0}, {5, 2}, {2, 4}}
	for _, f := range follows {
		if err := db.FollowUser(ctx, users[f[0]].ID, users[f[1]].ID); err != nil {
			return fmt.Errorf("failed to seed follow: %w", err)
		}
	}
	for ui := 2; ui < len(users); ui++ {
		if err := db.AddFavorite(ctx, users[ui].ID, demoPlaces[1].ID); err != nil {
			return fmt.Errorf("failed to seed favorite: %w", err)
		}
	}

	logging.Info().Msg("Demo data seeding complete")
	return nil
}
