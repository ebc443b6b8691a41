// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateGeo(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return c.validateTLS()
}

// validateTLS ensures the TLS certificate and key are configured together.
// An empty pair is valid and means plain HTTP.
func (c *Config) validateTLS() error {
	if c.Server.TLSCert != "" && c.Server.TLSKey == "" {
		return fmt.Errorf("TLS_KEY is required when TLS_CERT is set")
	}
	if c.Server.TLSKey != "" && c.Server.TLSCert == "" {
		return fmt.Errorf("TLS_CERT is required when TLS_KEY is set")
	}
	return nil
}

// validateAPI validates pagination configuration
func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be >= API_DEFAULT_PAGE_SIZE")
	}
	if c.API.MaxPageSize > 1000 {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be at most 1000")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}

	if err := c.validateSessionTimeout(); err != nil {
		return err
	}

	if err := c.validateAdminCredentials(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	if err := c.validateSessionStore(); err != nil {
		return err
	}

	if err := c.validateDefaultRole(); err != nil {
		return err
	}

	return c.validateCasbin()
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// sessionTimeout bounds
const (
	minSessionTimeout = 1 * time.Minute
	maxSessionTimeout = 90 * 24 * time.Hour
)

// validateSessionTimeout validates the session lifetime
func (c *Config) validateSessionTimeout() error {
	if c.Security.SessionTimeout < minSessionTimeout || c.Security.SessionTimeout > maxSessionTimeout {
		return fmt.Errorf("SESSION_TIMEOUT must be between %v and %v", minSessionTimeout, maxSessionTimeout)
	}
	return nil
}

// validateAdminCredentials validates the bootstrap admin account.
// The bootstrap admin is optional: when ADMIN_PASSWORD is empty no account
// is seeded at startup.
func (c *Config) validateAdminCredentials() error {
	if c.Security.AdminPassword == "" {
		return nil
	}
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when ADMIN_PASSWORD is set")
	}
	if containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}
	if err := c.validatePasswordPolicy(c.Security.AdminPassword, c.Security.AdminUsername); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}
	return nil
}

// validatePasswordPolicy validates a password against the admin password policy.
func (c *Config) validatePasswordPolicy(password, username string) error {
	policy := DefaultPasswordPolicy()
	return policy.ValidateWithError(password, username)
}

// validateCORS rejects wildcard CORS origins in production mode. Every
// endpoint past registration requires credentials, and wildcard origins
// would let any website replay stolen bearer tokens.
func (c *Config) validateCORS() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"This creates a security vulnerability where attackers can steal credentials via malicious websites. " +
			"Either set specific origins: CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration has security concerns
// that should be logged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
// Ensures rate limit values are within sensible ranges to prevent
// misconfiguration that could lead to DoS or ineffective protection.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if err := c.validateRateLimitRequests(); err != nil {
		return err
	}
	return c.validateRateLimitWindow()
}

// validateRateLimitRequests validates the rate limit requests value
func (c *Config) validateRateLimitRequests() error {
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	return nil
}

// validateRateLimitWindow validates the rate limit window value
func (c *Config) validateRateLimitWindow() error {
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validSessionStores defines the allowed session storage backends
var validSessionStores = map[string]bool{
	"memory": true,
	"badger": true,
}

// validateSessionStore validates the session storage backend configuration
func (c *Config) validateSessionStore() error {
	if !validSessionStores[c.Security.SessionStore] {
		return fmt.Errorf("SESSION_STORE must be one of: memory, badger")
	}
	if c.Security.SessionStore == "badger" && c.Security.SessionStorePath == "" {
		return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE is badger")
	}
	return nil
}

// validRoles defines the role names known to the authorization layer
var validRoles = map[string]bool{
	"user":          true,
	"businessOwner": true,
	"moderator":     true,
	"admin":         true,
}

// validateDefaultRole validates the role assigned to registrations without one
func (c *Config) validateDefaultRole() error {
	if !validRoles[c.Security.DefaultRole] {
		return fmt.Errorf("DEFAULT_ROLE must be one of: user, businessOwner, moderator, admin")
	}
	return nil
}

// validateCasbin validates the Casbin authorization configuration
func (c *Config) validateCasbin() error {
	if !validRoles[c.Security.Casbin.DefaultRole] {
		return fmt.Errorf("CASBIN_DEFAULT_ROLE must be one of: user, businessOwner, moderator, admin")
	}
	if c.Security.Casbin.AutoReload && c.Security.Casbin.ReloadInterval < time.Second {
		return fmt.Errorf("CASBIN_RELOAD_INTERVAL must be at least 1s when CASBIN_AUTO_RELOAD=true")
	}
	if c.Security.Casbin.CacheEnabled && c.Security.Casbin.CacheTTL < time.Second {
		return fmt.Errorf("CASBIN_CACHE_TTL must be at least 1s when CASBIN_CACHE_ENABLED=true")
	}
	return nil
}

// validateGeo validates geographic service configuration
func (c *Config) validateGeo() error {
	if err := c.validateDirections(); err != nil {
		return err
	}
	return c.validateMapDefaults()
}

// validateDirections validates the optional external routing service settings
func (c *Config) validateDirections() error {
	if c.Geo.DirectionsURL != "" {
		if err := validateHTTPURL(c.Geo.DirectionsURL, "GEO_DIRECTIONS_URL"); err != nil {
			return fmt.Errorf("GEO_DIRECTIONS_URL is invalid: %w", err)
		}
	}
	if c.Geo.DirectionsTimeout < time.Second || c.Geo.DirectionsTimeout > time.Minute {
		return fmt.Errorf("GEO_DIRECTIONS_TIMEOUT must be between 1s and 1m")
	}
	if c.Geo.DirectionsRateLimit < 1 || c.Geo.DirectionsRateLimit > 1000 {
		return fmt.Errorf("GEO_DIRECTIONS_RATE_LIMIT must be between 1 and 1000")
	}
	return nil
}

// validateMapDefaults validates the default map viewport and search bounds
func (c *Config) validateMapDefaults() error {
	if c.Geo.DefaultLatitude < -90 || c.Geo.DefaultLatitude > 90 {
		return fmt.Errorf("GEO_DEFAULT_LATITUDE must be between -90 and 90")
	}
	if c.Geo.DefaultLongitude < -180 || c.Geo.DefaultLongitude > 180 {
		return fmt.Errorf("GEO_DEFAULT_LONGITUDE must be between -180 and 180")
	}
	if c.Geo.MaxNearbyRadiusKM <= 0 || c.Geo.MaxNearbyRadiusKM > 500 {
		return fmt.Errorf("GEO_MAX_NEARBY_RADIUS_KM must be between 0 (exclusive) and 500")
	}
	return nil
}

// validateEvents validates the event bus configuration
func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}

	if c.Events.BufferSize < 1 || c.Events.BufferSize > 65536 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must be between 1 and 65536")
	}

	if c.Events.NATS.Enabled {
		if err := validateNATSURL(c.Events.NATS.URL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	}

	return nil
}

// validateCache validates the response cache configuration
func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.TTL < time.Second {
		return fmt.Errorf("CACHE_TTL must be at least 1s")
	}
	if c.Cache.CleanupInterval < time.Second {
		return fmt.Errorf("CACHE_CLEANUP_INTERVAL must be at least 1s")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
// Production mode is determined by the ENVIRONMENT environment variable.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value. This prevents accidental deployment
// with insecure default credentials.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
// that indicate the user forgot to set a real value.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	return containsAnyPattern(upperValue, placeholderPatterns)
}

// containsAnyPattern checks if a string contains any of the provided patterns
func containsAnyPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
