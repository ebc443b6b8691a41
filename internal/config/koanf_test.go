// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testJWTSecret satisfies the 32 character minimum enforced by validation.
const testJWTSecret = "unit-jwt-secret-0123456789abcdef-ok"

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Server defaults
	if cfg.Server.Port != 8443 {
		t.Errorf("Server.Port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if !cfg.Server.TLSEnabled() {
		t.Errorf("Server.TLSEnabled() should be true by default")
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Server.Environment = %q, want development", cfg.Server.Environment)
	}

	// Database defaults
	if cfg.Database.Path != "/data/localis.duckdb" {
		t.Errorf("Database.Path = %q, want /data/localis.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB", cfg.Database.MaxMemory)
	}
	if cfg.Database.SeedDemoData {
		t.Errorf("Database.SeedDemoData should be false by default")
	}

	// API defaults
	if cfg.API.DefaultPageSize != 20 {
		t.Errorf("API.DefaultPageSize = %d, want 20", cfg.API.DefaultPageSize)
	}
	if cfg.API.MaxPageSize != 100 {
		t.Errorf("API.MaxPageSize = %d, want 100", cfg.API.MaxPageSize)
	}

	// Security defaults
	if cfg.Security.JWTSecret != "" {
		t.Errorf("Security.JWTSecret should be empty by default, got %q", cfg.Security.JWTSecret)
	}
	if cfg.Security.SessionTimeout != 24*time.Hour {
		t.Errorf("Security.SessionTimeout = %v, want 24h", cfg.Security.SessionTimeout)
	}
	if cfg.Security.RateLimitReqs != 100 {
		t.Errorf("Security.RateLimitReqs = %d, want 100", cfg.Security.RateLimitReqs)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Security.DefaultRole != "user" {
		t.Errorf("Security.DefaultRole = %q, want user", cfg.Security.DefaultRole)
	}
	if cfg.Security.SessionStore != "badger" {
		t.Errorf("Security.SessionStore = %q, want badger", cfg.Security.SessionStore)
	}
	if cfg.Security.Casbin.DefaultRole != "user" {
		t.Errorf("Security.Casbin.DefaultRole = %q, want user", cfg.Security.Casbin.DefaultRole)
	}

	// Geo defaults
	if cfg.Geo.DirectionsURL != "" {
		t.Errorf("Geo.DirectionsURL should be empty by default, got %q", cfg.Geo.DirectionsURL)
	}
	if cfg.Geo.DirectionsTimeout != 10*time.Second {
		t.Errorf("Geo.DirectionsTimeout = %v, want 10s", cfg.Geo.DirectionsTimeout)
	}
	if cfg.Geo.MaxNearbyRadiusKM != 50 {
		t.Errorf("Geo.MaxNearbyRadiusKM = %v, want 50", cfg.Geo.MaxNearbyRadiusKM)
	}

	// Events defaults
	if !cfg.Events.Enabled {
		t.Errorf("Events.Enabled should be true by default")
	}
	if cfg.Events.BufferSize != 256 {
		t.Errorf("Events.BufferSize = %d, want 256", cfg.Events.BufferSize)
	}
	if cfg.Events.NATS.Enabled {
		t.Errorf("Events.NATS.Enabled should be false by default")
	}
	if cfg.Events.NATS.URL != "nats://127.0.0.1:4222" {
		t.Errorf("Events.NATS.URL = %q, want nats://127.0.0.1:4222", cfg.Events.NATS.URL)
	}

	// WebSocket defaults
	if cfg.WebSocket.MaxClients != 512 {
		t.Errorf("WebSocket.MaxClients = %d, want 512", cfg.WebSocket.MaxClients)
	}

	// Cache defaults
	if !cfg.Cache.Enabled {
		t.Errorf("Cache.Enabled should be true by default")
	}
	if cfg.Cache.TTL != 60*time.Second {
		t.Errorf("Cache.TTL = %v, want 60s", cfg.Cache.TTL)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Server
		{"HTTP_PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"HTTP_TIMEOUT", "server.timeout"},
		{"TLS_CERT", "server.tls_cert"},
		{"TLS_KEY", "server.tls_key"},
		{"ENVIRONMENT", "server.environment"},

		// Database
		{"DUCKDB_PATH", "database.path"},
		{"DUCKDB_MAX_MEMORY", "database.max_memory"},
		{"SEED_DEMO_DATA", "database.seed_demo_data"},

		// API
		{"API_DEFAULT_PAGE_SIZE", "api.default_page_size"},
		{"API_MAX_PAGE_SIZE", "api.max_page_size"},

		// Security
		{"JWT_SECRET", "security.jwt_secret"},
		{"SESSION_TIMEOUT", "security.session_timeout"},
		{"ADMIN_USERNAME", "security.admin_username"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"DEFAULT_ROLE", "security.default_role"},
		{"SESSION_STORE", "security.session_store"},
		{"SESSION_STORE_PATH", "security.session_store_path"},
		{"CASBIN_DEFAULT_ROLE", "security.casbin.default_role"},
		{"CASBIN_CACHE_TTL", "security.casbin.cache_ttl"},

		// Geo
		{"GEO_DIRECTIONS_URL", "geo.directions_url"},
		{"GEO_DEFAULT_LATITUDE", "geo.default_latitude"},
		{"GEO_DEFAULT_LONGITUDE", "geo.default_longitude"},
		{"GEO_MAX_NEARBY_RADIUS_KM", "geo.max_nearby_radius_km"},

		// Events
		{"EVENTS_ENABLED", "events.enabled"},
		{"EVENTS_BUFFER_SIZE", "events.buffer_size"},
		{"NATS_ENABLED", "events.nats.enabled"},
		{"NATS_URL", "events.nats.url"},
		{"NATS_EMBEDDED", "events.nats.embedded_server"},

		// WebSocket
		{"WS_MAX_CLIENTS", "websocket.max_clients"},

		// Cache
		{"CACHE_TTL", "cache.ttl"},

		// Logging
		{"LOG_LEVEL", "logging.level"},
		{"LOG_FORMAT", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Run("no config file exists", func(t *testing.T) {
		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("test: true"), 0644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("test: true"), 0644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		os.Setenv(ConfigPathEnvVar, customPath)
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		if result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		os.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		// Should fall back to default paths (which don't exist in temp dir)
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	os.Clearenv()

	// Set required variables
	os.Setenv("JWT_SECRET", testJWTSecret)

	// Set some custom values to override defaults
	os.Setenv("HTTP_PORT", "9000")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("GEO_DEFAULT_LATITUDE", "40.7128")
	os.Setenv("GEO_DEFAULT_LONGITUDE", "-74.0060")
	os.Setenv("DEFAULT_ROLE", "businessOwner")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify required values
	if cfg.Security.JWTSecret != testJWTSecret {
		t.Errorf("Security.JWTSecret = %q, want %q", cfg.Security.JWTSecret, testJWTSecret)
	}

	// Verify custom overrides
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Geo.DefaultLatitude != 40.7128 {
		t.Errorf("Geo.DefaultLatitude = %v, want 40.7128", cfg.Geo.DefaultLatitude)
	}
	if cfg.Geo.DefaultLongitude != -74.0060 {
		t.Errorf("Geo.DefaultLongitude = %v, want -74.0060", cfg.Geo.DefaultLongitude)
	}
	if cfg.Security.DefaultRole != "businessOwner" {
		t.Errorf("Security.DefaultRole = %q, want businessOwner", cfg.Security.DefaultRole)
	}

	// Verify defaults are still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB (default)", cfg.Database.MaxMemory)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

security:
  jwt_secret: "yaml-file-jwt-secret-0123456789abcdef"

geo:
  default_latitude: 51.5074
  default_longitude: -0.1278

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify values from config file
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Geo.DefaultLatitude != 51.5074 {
		t.Errorf("Geo.DefaultLatitude = %v, want 51.5074", cfg.Geo.DefaultLatitude)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}

	// Verify defaults are still applied for unset values
	if cfg.Database.Path != "/data/localis.duckdb" {
		t.Errorf("Database.Path = %q, want /data/localis.duckdb (default)", cfg.Database.Path)
	}
}

// TestLoadWithKoanfEnvOverridesFile tests that env vars override config file
func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `
server:
  port: 8888

security:
  jwt_secret: "yaml-file-jwt-secret-0123456789abcdef"

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)
	os.Setenv("HTTP_PORT", "9999")                 // Override port from config file
	os.Setenv("LOG_LEVEL", "error")                // Override log level from config file
	os.Setenv("DUCKDB_PATH", "/custom/db.duckdb") // Override a default value

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify values from config file (not overridden by env)
	if cfg.Security.JWTSecret != "yaml-file-jwt-secret-0123456789abcdef" {
		t.Errorf("Security.JWTSecret = %q, want value from file", cfg.Security.JWTSecret)
	}

	// Verify env vars override config file
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env override)", cfg.Logging.Level)
	}

	// Verify env vars override defaults
	if cfg.Database.Path != "/custom/db.duckdb" {
		t.Errorf("Database.Path = %q, want /custom/db.duckdb (env override)", cfg.Database.Path)
	}
}

// TestLoadCORSOriginsSlice tests comma-separated slice parsing from env vars
func TestLoadCORSOriginsSlice(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", testJWTSecret)
	os.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	os.Setenv("TRUSTED_PROXIES", "10.0.0.1,10.0.0.2")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	wantOrigins := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.Security.CORSOrigins) != len(wantOrigins) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, wantOrigins)
	}
	for i, want := range wantOrigins {
		if cfg.Security.CORSOrigins[i] != want {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want)
		}
	}

	wantProxies := []string{"10.0.0.1", "10.0.0.2"}
	if len(cfg.Security.TrustedProxies) != len(wantProxies) {
		t.Fatalf("TrustedProxies = %v, want %v", cfg.Security.TrustedProxies, wantProxies)
	}
	for i, want := range wantProxies {
		if cfg.Security.TrustedProxies[i] != want {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], want)
		}
	}
}

// TestLoadWithKoanfValidation tests that validation rejects bad env values
func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
	}{
		{
			name:    "missing JWT secret",
			envVars: map[string]string{},
			wantErr: true,
		},
		{
			name: "short JWT secret",
			envVars: map[string]string{
				"JWT_SECRET": "too-short",
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			envVars: map[string]string{
				"JWT_SECRET": testJWTSecret,
				"HTTP_PORT":  "99999",
			},
			wantErr: true,
		},
		{
			name: "wildcard CORS in production",
			envVars: map[string]string{
				"JWT_SECRET":   testJWTSecret,
				"ENVIRONMENT":  "production",
				"CORS_ORIGINS": "*",
			},
			wantErr: true,
		},
		{
			name: "explicit origins in production",
			envVars: map[string]string{
				"JWT_SECRET":   testJWTSecret,
				"ENVIRONMENT":  "production",
				"CORS_ORIGINS": "https://app.example.com",
			},
			wantErr: false,
		},
		{
			name: "valid development config",
			envVars: map[string]string{
				"JWT_SECRET": testJWTSecret,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadWithKoanf() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
