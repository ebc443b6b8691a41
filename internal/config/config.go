// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from environment variables and config files.
// Provides centralized configuration management for all application components including
// the HTTP server, database, security, geographic services, events, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - Server: HTTP server configuration (port, host, timeout, TLS)
//     - Database: DuckDB configuration (path, memory, demo data)
//
//  2. API & Security:
//     - API: Pagination and response limits
//     - Security: Authentication, rate limiting, session management, Casbin RBAC
//
//  3. Domain Services:
//     - Geo: Geocoding, directions routing, map defaults
//     - Events: Domain event fan-out with Watermill (optional NATS JetStream)
//     - WebSocket: Live map update hub
//
//  4. Observability:
//     - Logging: Log levels and output formats
//     - Cache: In-memory response cache
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Server.Port, cfg.Database.Path, etc. are now populated
//
// Example - Access configuration values:
//
//	db, err := database.New(cfg.Database)
//	server := http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)}
//
// Validation:
// The Load() function validates all fields and returns an error if:
//   - Values are malformed (invalid URL format, out-of-range numbers)
//   - JWT_SECRET is set but too short for HS256 signing
//   - TLS is half-configured (certificate without key or vice versa)
//   - Wildcard CORS origins are combined with ENVIRONMENT=production
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Geo       GeoConfig       `koanf:"geo"`
	Events    EventsConfig    `koanf:"events"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// The server speaks HTTPS by default: mobile clients pin the API origin and
// refuse cleartext, so TLSCert/TLSKey point at a certificate pair and the
// default port is 8443. Clearing both TLS paths switches the listener to
// plain HTTP, which is only appropriate behind a terminating proxy.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8443)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout for requests (default: 30s)
//   - TLS_CERT: Path to PEM certificate chain (default: certs/server.crt)
//   - TLS_KEY: Path to PEM private key (default: certs/server.key)
//   - ENVIRONMENT: Environment mode: "development", "staging", "production" (default: "development")
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	TLSCert     string        `koanf:"tls_cert"`    // Path to PEM certificate; empty disables TLS
	TLSKey      string        `koanf:"tls_key"`     // Path to PEM private key; empty disables TLS
	Environment string        `koanf:"environment"` // Environment mode: "development", "staging", "production"
}

// Addr returns the host:port listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TLSEnabled reports whether both certificate and key paths are configured.
func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
	SeedDemoData           bool   `koanf:"seed_demo_data"`           // Seed demo places and reviews for local development
	SkipIndexes            bool   `koanf:"skip_indexes"`             // Skip index creation (for fast test setup)
}

// APIConfig holds API pagination and response settings
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and authorization settings
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`

	// DefaultRole is the role assigned at registration when the client
	// omits one. Must be one of: user, businessOwner, moderator, admin.
	DefaultRole string `koanf:"default_role"`

	// Session Store Configuration
	// SessionStore specifies the session storage backend: "memory" or "badger".
	// Badger persists sessions across restarts so mobile clients stay signed in.
	SessionStore string `koanf:"session_store"`
	// SessionStorePath is the path for BadgerDB storage (required when session_store=badger)
	SessionStorePath string `koanf:"session_store_path"`

	Casbin CasbinConfig `koanf:"casbin"` // Casbin RBAC authorization
}

// CasbinConfig holds Casbin RBAC authorization settings.
//
// Environment Variables:
//   - CASBIN_MODEL_PATH: Path to Casbin model file (default: embedded)
//   - CASBIN_POLICY_PATH: Path to Casbin policy file (default: embedded)
//   - CASBIN_DEFAULT_ROLE: Default role for users without explicit role (default: user)
//   - CASBIN_AUTO_RELOAD: Enable automatic policy reload (default: true)
//   - CASBIN_RELOAD_INTERVAL: Policy reload interval (default: 30s)
//   - CASBIN_CACHE_ENABLED: Enable authorization decision caching (default: true)
//   - CASBIN_CACHE_TTL: Authorization cache TTL (default: 5m)
type CasbinConfig struct {
	ModelPath      string        `koanf:"model_path"`
	PolicyPath     string        `koanf:"policy_path"`
	DefaultRole    string        `koanf:"default_role"`
	AutoReload     bool          `koanf:"auto_reload"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
	CacheEnabled   bool          `koanf:"cache_enabled"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
}

// GeoConfig holds geographic service settings.
// Covers the gazetteer-backed geocoder, the optional external directions
// service, and the default map viewport pushed to clients.
//
// The directions service speaks the OSRM route API. When DirectionsURL is
// empty or the service is unreachable, route requests fall back to
// great-circle estimation so the endpoint always answers.
//
// Environment Variables:
//   - GEO_DIRECTIONS_URL: Base URL of an OSRM-compatible routing service (default: empty, fallback only)
//   - GEO_DIRECTIONS_TIMEOUT: HTTP timeout for routing calls (default: 10s)
//   - GEO_DIRECTIONS_RATE_LIMIT: Max routing requests per second (default: 10)
//   - GEO_GAZETTEER_PATH: Path to a supplemental gazetteer CSV (default: empty, embedded data only)
//   - GEO_DEFAULT_LATITUDE: Default map center latitude (default: 48.8566)
//   - GEO_DEFAULT_LONGITUDE: Default map center longitude (default: 2.3522)
//   - GEO_MAX_NEARBY_RADIUS_KM: Upper bound for nearby-search radius (default: 50)
type GeoConfig struct {
	DirectionsURL       string        `koanf:"directions_url"`
	DirectionsTimeout   time.Duration `koanf:"directions_timeout"`
	DirectionsRateLimit int           `koanf:"directions_rate_limit"`
	GazetteerPath       string        `koanf:"gazetteer_path"`
	DefaultLatitude     float64       `koanf:"default_latitude"`
	DefaultLongitude    float64       `koanf:"default_longitude"`
	MaxNearbyRadiusKM   float64       `koanf:"max_nearby_radius_km"`
}

// EventsConfig holds domain event bus settings.
// Place, review, and social events fan out through Watermill. The default
// backend is an in-process Go channel bus; builds tagged "nats" can switch
// to NATS JetStream for durable delivery across instances.
//
// Environment Variables:
//   - EVENTS_ENABLED: Enable domain event publication (default: true)
//   - EVENTS_BUFFER_SIZE: In-process channel buffer per topic (default: 256)
//   - NATS_ENABLED: Use NATS JetStream backend, requires the nats build tag (default: false)
//   - NATS_URL: NATS server connection URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: Run an embedded NATS server (default: true)
//   - NATS_STORE_DIR: JetStream storage directory (default: /data/nats/jetstream)
type EventsConfig struct {
	// Enabled controls whether domain events are published at all.
	Enabled bool `koanf:"enabled"`

	// BufferSize is the per-topic channel buffer for the in-process bus.
	BufferSize int `koanf:"buffer_size"`

	NATS NATSConfig `koanf:"nats"`
}

// NATSConfig holds NATS JetStream settings for the optional durable event backend.
type NATSConfig struct {
	// Enabled switches the event bus from in-process channels to NATS JetStream.
	// Only honored in builds compiled with the nats build tag.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer runs an in-process NATS server.
	// If false, expects an external NATS server at URL.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory.
	StoreDir string `koanf:"store_dir"`
}

// WebSocketConfig holds settings for the live map update hub.
//
// Environment Variables:
//   - WS_READ_BUFFER_SIZE: Per-connection read buffer in bytes (default: 1024)
//   - WS_WRITE_BUFFER_SIZE: Per-connection write buffer in bytes (default: 1024)
//   - WS_MAX_CLIENTS: Max concurrent WebSocket clients, 0 = unlimited (default: 512)
type WebSocketConfig struct {
	ReadBufferSize  int `koanf:"read_buffer_size"`
	WriteBufferSize int `koanf:"write_buffer_size"`
	MaxClients      int `koanf:"max_clients"`
}

// CacheConfig holds in-memory response cache settings.
//
// Environment Variables:
//   - CACHE_ENABLED: Enable response caching (default: true)
//   - CACHE_TTL: Entry time-to-live (default: 60s)
//   - CACHE_CLEANUP_INTERVAL: Background sweep interval for expired entries (default: 5m)
type CacheConfig struct {
	Enabled         bool          `koanf:"enabled"`
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from environment variables and optional config file.
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// This function uses Koanf v2 for flexible, layered configuration management.
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
