// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package services

import (
	"context"
)

// ContextRunner matches the Run method shared by the event consumers.
//
// Satisfied by *events.BroadcastHandler and *cache.Invalidator, both of
// which subscribe to the event bus and process messages until the context
// is canceled.
type ContextRunner interface {
	Run(ctx context.Context) error
}

// ConsumerService wraps an event consumer loop as a supervised service.
//
// Both bus consumers already block in Run until canceled, so the wrapper
// only supplies a stable name for supervisor logs. A crash in one consumer
// restarts that consumer alone; the other keeps its subscription.
//
// Example usage:
//
//	relay, _ := events.NewBroadcastHandler(bus, hub)
//	tree.AddMessagingService(services.NewConsumerService("event-broadcast", relay))
//
//	inv, _ := cache.NewInvalidator(bus, caches)
//	tree.AddMessagingService(services.NewConsumerService("cache-invalidator", inv))
type ConsumerService struct {
	runner ContextRunner
	name   string
}

// NewConsumerService creates a supervised wrapper around runner.
// The name identifies the consumer in supervisor logs.
func NewConsumerService(name string, runner ContextRunner) *ConsumerService {
	return &ConsumerService{
		runner: runner,
		name:   name,
	}
}

// Serve implements suture.Service by delegating to the consumer's Run loop.
func (c *ConsumerService) Serve(ctx context.Context) error {
	return c.runner.Run(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (c *ConsumerService) String() string {
	return c.name
}
