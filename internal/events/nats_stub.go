// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

//go:build !nats

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/localis-app/localis/internal/config"
)

// natsBackend is a stub when NATS dependencies are not available.
// Build with -tags=nats to enable the JetStream transport; without it
// New falls back to the in-process transport.
type natsBackend struct{}

// newNATSBackend returns an error when NATS dependencies are not
// available. Build with -tags=nats to enable the JetStream transport.
func newNATSBackend(_ *config.NATSConfig, _ watermill.LoggerAdapter) (*natsBackend, error) {
	return nil, fmt.Errorf("NATS transport not available: build with -tags=nats")
}

// Publish is a stub that returns an error.
func (b *natsBackend) Publish(_ string, _ ...*message.Message) error {
	return fmt.Errorf("NATS transport not available: build with -tags=nats")
}

// Subscribe is a stub that returns an error.
func (b *natsBackend) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	return nil, fmt.Errorf("NATS transport not available: build with -tags=nats")
}

// Close is a no-op stub.
func (b *natsBackend) Close() error {
	return nil
}

// URL returns an empty string for the stub implementation.
func (b *natsBackend) URL() string {
	return ""
}
