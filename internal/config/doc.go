// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package config provides centralized configuration management for Localis.

This package handles loading, validation, and parsing of configuration for
all application components. It ensures consistent configuration across the
backend services and provides sensible defaults for optional settings.

# Configuration Sources

Configuration is loaded with Koanf v2 in layered order, later sources
overriding earlier ones:

  - Built-in defaults
  - Optional YAML config file (config.yaml, or CONFIG_PATH)
  - Environment variables

# Configuration Structure

Settings are grouped into sections on the Config struct:

  - Server: listen address, timeouts, TLS certificate pair
  - Database: DuckDB path and tuning
  - API: pagination limits
  - Security: JWT secret, sessions, rate limiting, CORS, Casbin RBAC
  - Geo: geocoder, directions service, map defaults
  - Events: Watermill event bus and optional NATS JetStream backend
  - WebSocket: live map update hub
  - Cache: response cache
  - Logging: zerolog level and format

# Validation

Load returns an error instead of a Config when any value is out of range,
when the JWT secret is missing or too short, when TLS is half-configured,
or when wildcard CORS origins are combined with ENVIRONMENT=production.
Error messages name the environment variable to fix.
*/
package config
