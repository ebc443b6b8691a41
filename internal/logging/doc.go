// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package logging provides centralized zerolog-based structured logging for Localis.
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Context-aware logging with request/correlation ID propagation
//   - slog adapter for Suture v4 integration
//   - Security-focused audit logging with sensitive data filtering
//   - Event bus logging helpers for Watermill subscribers
//
// Initialize once from main() with logging.Init, then log through the
// package-level starters (logging.Info(), logging.Error(), ...) or the
// context-aware variants (logging.Ctx(ctx).Info()).
package logging
