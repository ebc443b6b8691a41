// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package main is the entry point for the Localis server.
//
// Localis is the backend for a mobile places-discovery app: a shared catalog
// of places with reviews and ratings, full-text search, social follows and
// favorites, offline geocoding and routing, and a WebSocket feed of live
// updates for the map view.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Initialize DuckDB with the places, reviews, and social schema
//  3. Bootstrap: Create the protected admin account and optional demo data
//  4. Sessions: JWT-backed sessions in memory or BadgerDB, plus scoped API tokens
//  5. Authorization: Casbin RBAC over the role hierarchy (user < businessOwner < moderator < admin)
//  6. Geo: Embedded gazetteer geocoder and OSRM-or-fallback route planner
//  7. Events: Watermill domain event bus feeding the WebSocket hub and cache invalidation
//  8. HTTP Server: Chi router with the REST API and Swagger documentation
//
// Everything long-running is attached to a Suture supervisor tree; see doc.go
// for the tree layout.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (see .env.example)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # TLS
//
// Localis serves HTTPS by default because the mobile clients pin the API
// origin and refuse cleartext. TLS_CERT and TLS_KEY point at a PEM pair
// (default: certs/server.crt, certs/server.key); clearing both switches the
// listener to plain HTTP for use behind a terminating proxy.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Disconnects WebSocket clients and drains event consumers
//   - Closes session store and database
//
// # Example Usage
//
// Local development with demo data and no TLS:
//
//	export TLS_CERT= TLS_KEY=
//	export SEED_DEMO_DATA=true
//	export ADMIN_PASSWORD=dev-admin-password
//	./localis
//
// Production:
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=secure-password
//	export SESSION_STORE=badger
//	export SESSION_STORE_PATH=/data/sessions
//	export DUCKDB_PATH=/data/localis.db
//	./localis
//
// # Port 8443
//
// The default port 8443 is the conventional HTTPS alternate port, chosen so
// the server can run unprivileged while still speaking TLS out of the box.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/localis-app/localis/docs" // Import generated swagger docs
	"github.com/localis-app/localis/internal/api"
	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/authz"
	"github.com/localis-app/localis/internal/cache"
	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/database"
	"github.com/localis-app/localis/internal/events"
	"github.com/localis-app/localis/internal/geo"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/middleware"
	"github.com/localis-app/localis/internal/supervisor"
	"github.com/localis-app/localis/internal/supervisor/services"
	ws "github.com/localis-app/localis/internal/websocket"
)

// version is stamped at build time via -ldflags "-X main.version=v1.2.3".
var version = "dev"

// demoPassword is the shared password for seeded demo accounts. Demo data
// only exists in development databases, so a well-known value is fine.
const demoPassword = "localis-demo"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Localis with supervisor tree")

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("session_store", cfg.Security.SessionStore).
		Bool("tls", cfg.Server.TLSEnabled()).
		Str("environment", cfg.Server.Environment).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	hasher := auth.NewPasswordHasher()

	// Create the protected admin account (id 1) on first boot. Without an
	// admin password the instance still runs, but moderation and admin
	// endpoints stay out of reach until one is configured.
	if cfg.Security.AdminPassword != "" {
		adminHash, err := hasher.Hash(cfg.Security.AdminPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to hash admin password")
		}
		if err := db.EnsureBootstrapAdmin(context.Background(), cfg.Security.AdminUsername, adminHash); err != nil {
			logging.Fatal().Err(err).Msg("Failed to create bootstrap admin")
		}
	} else {
		logging.Warn().Msg("ADMIN_PASSWORD not set, skipping bootstrap admin account")
	}

	// Seed demo places and reviews if enabled (for local development and
	// screenshot tests)
	if cfg.Database.SeedDemoData {
		logging.Info().Msg("Demo data seeding enabled (SEED_DEMO_DATA=true)")
		demoHash, err := hasher.Hash(demoPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to hash demo password")
		}
		if err := db.SeedDemoData(context.Background(), demoHash); err != nil {
			// Close database before fatal exit to ensure defer runs
			if closeErr := db.Close(); closeErr != nil {
				logging.Error().Err(closeErr).Msg("Error closing database")
			}
			logging.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Create WebSocket hub for live map and feed updates (before the event
	// consumers, which broadcast through it)
	hub := ws.NewHub(&cfg.WebSocket)

	// Session store: memory for development, BadgerDB so mobile clients
	// stay signed in across restarts
	storeFactory, err := auth.NewSessionStoreFactory(
		auth.SessionStoreType(cfg.Security.SessionStore),
		cfg.Security.SessionStorePath,
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize session store")
	}
	defer func() {
		if err := storeFactory.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	sessions := auth.NewSessionManager(jwtManager, storeFactory.CreateStore())
	tokens := auth.NewAPITokenManager(db)
	authMW := auth.NewMiddleware(sessions, tokens, db, &cfg.Security)
	logging.Info().
		Str("store", cfg.Security.SessionStore).
		Dur("session_timeout", cfg.Security.SessionTimeout).
		Msg("Authentication initialized")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used for load tests and CI!")
	}

	// Casbin RBAC enforcer; ctx bounds the policy auto-reload goroutine
	enforcer, err := authz.NewEnforcer(ctx, &authz.EnforcerConfig{
		ModelPath:      cfg.Security.Casbin.ModelPath,
		PolicyPath:     cfg.Security.Casbin.PolicyPath,
		DefaultRole:    cfg.Security.Casbin.DefaultRole,
		AutoReload:     cfg.Security.Casbin.AutoReload,
		ReloadInterval: cfg.Security.Casbin.ReloadInterval,
		CacheEnabled:   cfg.Security.Casbin.CacheEnabled,
		CacheTTL:       cfg.Security.Casbin.CacheTTL,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	defer enforcer.Close()

	auditLogger := authz.NewAuditLogger(nil)
	defer auditLogger.Close()
	authzMW := authz.NewMiddleware(enforcer, auditLogger)

	policyRules, groupingRules := enforcer.RuleCounts()
	logging.Info().
		Int("policy_rules", policyRules).
		Int("grouping_rules", groupingRules).
		Msg("Authorization enforcer initialized")

	// Geocoder failure is non-fatal: geo endpoints answer 503 until the
	// gazetteer problem is fixed, everything else keeps working
	geocoder, err := geo.NewGeocoder(&cfg.Geo)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to load gazetteer, geocoding disabled")
		geocoder = nil
	} else {
		logging.Info().Int("entries", geocoder.Len()).Msg("Gazetteer loaded")
	}

	planner := geo.NewRoutePlanner(&cfg.Geo)

	// Domain event bus and its consumers. The broadcast consumer relays
	// events to WebSocket clients; the invalidator clears response caches.
	bus := events.New(&cfg.Events)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	caches := cache.NewSet(&cfg.Cache)

	var broadcast *events.BroadcastHandler
	var invalidator *cache.Invalidator
	if cfg.Events.Enabled {
		broadcast, err = events.NewBroadcastHandler(bus, hub)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create broadcast consumer")
		}
		invalidator, err = cache.NewInvalidator(bus, caches)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create cache invalidator")
		}
		logging.Info().Str("transport", bus.Transport()).Msg("Domain events enabled")
	} else {
		logging.Info().Msg("Domain events disabled (EVENTS_ENABLED=false)")
	}

	perfMon := middleware.NewPerformanceMonitor(0)

	handler := api.NewHandler(api.HandlerConfig{
		DB:          db,
		Config:      cfg,
		Sessions:    sessions,
		Tokens:      tokens,
		Hasher:      hasher,
		AuthMW:      authMW,
		Enforcer:    enforcer,
		Geocoder:    geocoder,
		Planner:     planner,
		Bus:         bus,
		Hub:         hub,
		Caches:      caches,
		Invalidator: invalidator,
		Broadcast:   broadcast,
		PerfMon:     perfMon,
		Version:     version,
	})

	chiMW := api.NewChiMiddleware(&cfg.Security)
	router := api.NewRouter(handler, authMW, authzMW, chiMW, perfMon)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	tree.AddDataService(services.NewJanitorService(sessions, db, services.JanitorConfig{}, logging.Logger()))

	// Messaging layer services
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	if cfg.Events.Enabled {
		tree.AddMessagingService(services.NewConsumerService("event-broadcast", broadcast))
		tree.AddMessagingService(services.NewConsumerService("cache-invalidator", invalidator))
	}
	logging.Info().Msg("WebSocket hub and event consumers added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.TLSCert, cfg.Server.TLSKey, 10*time.Second))
	if cfg.Server.TLSEnabled() {
		logging.Info().Str("addr", server.Addr).Msg("HTTPS server service added")
	} else {
		logging.Warn().Str("addr", server.Addr).Msg("TLS disabled, serving cleartext HTTP (use only behind a terminating proxy)")
	}

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
