// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/localis-app/localis/internal/metrics"
)

// SessionSweeper defines the session manager surface the janitor needs.
// Satisfied by *auth.SessionManager.
type SessionSweeper interface {
	// CleanupExpired removes expired sessions and returns how many went.
	CleanupExpired(ctx context.Context) (int, error)

	// ActiveCount returns the number of live sessions.
	ActiveCount(ctx context.Context) (int, error)
}

// TokenCounter reports how many personal access tokens are currently usable.
// Satisfied by *database.DB.
type TokenCounter interface {
	CountActiveAPITokens(ctx context.Context) (int64, error)
}

// JanitorConfig holds configuration for the session janitor.
type JanitorConfig struct {
	// Interval is how often to sweep expired sessions.
	Interval time.Duration
}

// JanitorService periodically evicts expired sessions and refreshes the
// session and token gauges. It runs in the data layer so a sweep failure
// never disturbs the HTTP server or the messaging consumers.
type JanitorService struct {
	sessions SessionSweeper
	tokens   TokenCounter
	config   JanitorConfig
	logger   zerolog.Logger
	name     string
}

// NewJanitorService creates a new session janitor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJanitorService(sessions SessionSweeper, tokens TokenCounter, cfg JanitorConfig, logger zerolog.Logger) *JanitorService {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &JanitorService{
		sessions: sessions,
		tokens:   tokens,
		config:   cfg,
		logger:   logger.With().Str("service", "janitor").Logger(),
		name:     "session-janitor",
	}
}

// Serve implements the suture.Service interface.
// It sweeps immediately on startup, then on every tick until canceled.
func (s *JanitorService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Msg("session janitor starting")

	// Sweep once on startup so gauges are populated right away.
	if err := s.sweep(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial sweep failed (will retry on schedule)")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session janitor shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled sweep failed")
			}
		}
	}
}

// sweep performs one cleanup cycle with a bounded context.
func (s *JanitorService) sweep(ctx context.Context) error {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()

	removed, err := s.sessions.CleanupExpired(sweepCtx)
	if err != nil {
		return err
	}

	active, err := s.sessions.ActiveCount(sweepCtx)
	if err != nil {
		return err
	}
	metrics.SetActiveSessions(int64(active))

	liveTokens, err := s.tokens.CountActiveAPITokens(sweepCtx)
	if err != nil {
		return err
	}
	metrics.SetActiveTokens(liveTokens)

	s.logger.Debug().
		Int("removed", removed).
		Int("active_sessions", active).
		Int64("active_tokens", liveTokens).
		Dur("duration", time.Since(start)).
		Msg("session sweep complete")

	return nil
}

// String returns the service name for logging.
func (s *JanitorService) String() string {
	return s.name
}
