// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// The tests in this package drive the full HTTP stack: chi router,
// authentication and authorization middleware, handlers, and a real
// in-memory DuckDB. Requests go through Router.Setup's mux exactly as
// they would in production, so route wiring, middleware ordering, and
// envelope shapes are all covered.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/localis-app/localis/internal/auth"
	"github.com/localis-app/localis/internal/authz"
	"github.com/localis-app/localis/internal/cache"
	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/database"
	"github.com/localis-app/localis/internal/geo"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/middleware"
	"github.com/localis-app/localis/internal/models"
	"github.com/localis-app/localis/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "error",
		Format: "console",
		Output: io.Discard,
	})
}

// DuckDB spawns a worker thread pool per instance, so concurrent test
// environments starve small CI runners. The semaphore serializes the
// suites the same way the database package does.
var (
	testEnvSemaphore = make(chan struct{}, 1)
	testEnvMutex     sync.Mutex
)

// testJWTSecret satisfies the 32 character minimum enforced at startup.
const testJWTSecret = "localis-api-test-secret-0123456789abcdef"

// Every environment seeds the bootstrap admin (id 1), as production boot
// does. No test signs in as it, so an opaque string stands in for a real
// bcrypt digest.
const (
	testBootstrapLogin = "bootstrap-admin"
	testBootstrapHash  = "$2a$12$testtesttesttesttesttOeKvQFqGxJ0P9ZsLxkYwFhYXPlDzXG2u"
)

// testEnv wires the complete API stack against an in-memory database.
type testEnv struct {
	t        *testing.T
	cfg      *config.Config
	db       *database.DB
	sessions *auth.SessionManager
	tokens   *auth.APITokenManager
	hasher   *auth.PasswordHasher
	caches   *cache.Set
	handler  *Handler
	hub      *websocket.Hub
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	select {
	case testEnvSemaphore <- struct{}{}:
	case <-time.After(120 * time.Second):
		t.Fatalf("Timed out waiting for the API test environment slot")
	}
	t.Cleanup(func() { <-testEnvSemaphore })

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "1GB",
		},
		Security: config.SecurityConfig{
			JWTSecret:         testJWTSecret,
			SessionTimeout:    time.Hour,
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
			DefaultRole:       models.RoleUser,
			SessionStore:      "memory",
		},
		API: config.APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Geo: config.GeoConfig{
			DefaultLatitude:   51.5074,
			DefaultLongitude:  -0.1278,
			MaxNearbyRadiusKM: 50,
		},
		Cache: config.CacheConfig{
			Enabled:         true,
			TTL:             time.Minute,
			CleanupInterval: time.Minute,
		},
		WebSocket: config.WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			MaxClients:      8,
		},
	}

	testEnvMutex.Lock()
	db, err := database.New(&cfg.Database)
	testEnvMutex.Unlock()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.EnsureBootstrapAdmin(context.Background(), testBootstrapLogin, testBootstrapHash); err != nil {
		t.Fatalf("Failed to seed bootstrap admin: %v", err)
	}

	jwt, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("Failed to create JWT manager: %v", err)
	}
	sessions := auth.NewSessionManager(jwt, auth.NewMemorySessionStore())
	tokens := auth.NewAPITokenManager(db)
	hasher := auth.NewPasswordHasher()

	authMW := auth.NewMiddleware(sessions, tokens, db, &cfg.Security)
	t.Cleanup(authMW.Stop)

	enfCfg := authz.DefaultEnforcerConfig()
	enfCfg.AutoReload = false
	enforcer, err := authz.NewEnforcer(context.Background(), enfCfg)
	if err != nil {
		t.Fatalf("Failed to create enforcer: %v", err)
	}
	t.Cleanup(enforcer.Close)
	authzMW := authz.NewMiddleware(enforcer, nil)

	geocoder, err := geo.NewGeocoder(&cfg.Geo)
	if err != nil {
		t.Fatalf("Failed to create geocoder: %v", err)
	}
	planner := geo.NewRoutePlanner(&cfg.Geo)

	caches := cache.NewSet(&cfg.Cache)
	t.Cleanup(caches.Stop)

	hub := websocket.NewHub(&cfg.WebSocket)
	hubCtx, cancelHub := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(hubCtx) }()
	t.Cleanup(cancelHub)

	handler := NewHandler(HandlerConfig{
		DB:       db,
		Config:   cfg,
		Sessions: sessions,
		Tokens:   tokens,
		Hasher:   hasher,
		AuthMW:   authMW,
		Enforcer: enforcer,
		Geocoder: geocoder,
		Planner:  planner,
		Hub:      hub,
		Caches:   caches,
		PerfMon:  middleware.NewPerformanceMonitor(100),
		Version:  "test",
	})

	router := NewRouter(handler, authMW, authzMW, NewChiMiddleware(&cfg.Security), nil).Setup()

	return &testEnv{
		t:        t,
		cfg:      cfg,
		db:       db,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		caches:   caches,
		handler:  handler,
		hub:      hub,
		router:   router,
	}
}

// request performs one HTTP request against the router. A non-empty token
// is sent as a bearer credential; a non-nil body is marshalled to JSON.
func (env *testEnv) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			env.t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope unmarshals the standard response envelope.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return &resp
}

// decodeData re-marshals the envelope's Data field into a typed value.
// The envelope decodes Data as map[string]interface{}, so typed access
// needs the round trip.
func decodeData(t *testing.T, resp *models.APIResponse, target interface{}) {
	t.Helper()

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("Failed to re-marshal envelope data: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("Failed to decode envelope data: %v (data %s)", err, raw)
	}
}

// errorCode extracts the machine-readable error code from a failure
// envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	resp := decodeEnvelope(t, rec)
	if resp.Success {
		t.Fatalf("Expected a failure envelope, got success (body %q)", rec.Body.String())
	}
	if resp.Error == nil {
		t.Fatalf("Failure envelope has no error object (body %q)", rec.Body.String())
	}
	return resp.Error.Code
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// register creates an account through the API and returns its id and
// session token.
func (env *testEnv) register(login, passwd, role string) (int64, string) {
	env.t.Helper()

	rec := env.request(http.MethodPost, "/api/v1/auth/register", "",
		models.RegisterRequest{Login: login, Passwd: passwd, Role: role})
	if rec.Code != http.StatusCreated {
		env.t.Fatalf("Register %s: status = %d, body %s", login, rec.Code, rec.Body.String())
	}

	var out models.AuthResponse
	decodeData(env.t, decodeEnvelope(env.t, rec), &out)
	return out.ID, out.Token
}

// login signs in and returns a fresh session token.
func (env *testEnv) login(login, passwd string) string {
	env.t.Helper()

	rec := env.request(http.MethodPost, "/api/v1/auth/login", "",
		models.LoginRequest{Login: login, Passwd: passwd})
	if rec.Code != http.StatusOK {
		env.t.Fatalf("Login %s: status = %d, body %s", login, rec.Code, rec.Body.String())
	}

	var out models.AuthResponse
	decodeData(env.t, decodeEnvelope(env.t, rec), &out)
	return out.Token
}

// createUserWithRole provisions an account directly in the database,
// bypassing the registration role gate, and signs it in. Used for the
// moderator and admin accounts the tests need.
func (env *testEnv) createUserWithRole(login, passwd, role string) (int64, string) {
	env.t.Helper()

	hash, err := env.hasher.Hash(passwd)
	if err != nil {
		env.t.Fatalf("Failed to hash password for %s: %v", login, err)
	}
	user, err := env.db.CreateUser(context.Background(), login, hash, role)
	if err != nil {
		env.t.Fatalf("Failed to create %s %s: %v", role, login, err)
	}
	return user.ID, env.login(login, passwd)
}

func (env *testEnv) createAdmin(login, passwd string) (int64, string) {
	return env.createUserWithRole(login, passwd, models.RoleAdmin)
}

// createPlace publishes a place through the API as the given owner.
func (env *testEnv) createPlace(token, name, category string, lat, lon float64) *models.Place {
	env.t.Helper()

	rec := env.request(http.MethodPost, "/api/v1/places", token, models.CreatePlaceRequest{
		Name:      name,
		Category:  category,
		Latitude:  lat,
		Longitude: lon,
	})
	if rec.Code != http.StatusCreated {
		env.t.Fatalf("Create place %s: status = %d, body %s", name, rec.Code, rec.Body.String())
	}

	var place models.Place
	decodeData(env.t, decodeEnvelope(env.t, rec), &place)
	return &place
}

// createReview publishes a review through the API.
func (env *testEnv) createReview(token string, place *models.Place, rating int, text string) *models.Review {
	env.t.Helper()

	rec := env.request(http.MethodPost, "/api/v1/places/"+place.ID.String()+"/reviews", token,
		models.CreateReviewRequest{Rating: rating, Text: text})
	if rec.Code != http.StatusCreated {
		env.t.Fatalf("Create review: status = %d, body %s", rec.Code, rec.Body.String())
	}

	var review models.Review
	decodeData(env.t, decodeEnvelope(env.t, rec), &review)
	return &review
}
