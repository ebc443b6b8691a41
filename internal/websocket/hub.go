// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/metrics"
)

// ShutdownReason identifies why the hub stopped, for log filtering.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates shutdown hit a deadline.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types originated by the hub itself. Event frames forwarded from
// the bus carry their topic as the type instead (place.created,
// review.updated, social.followed and so on).
const (
	MessageTypeWelcome = "welcome"
	MessageTypePing    = "ping"
	MessageTypePong    = "pong"
)

// Message is a typed frame written to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	maxClients int
	mu         sync.RWMutex
}

// NewHub creates a hub. With a nil config the client limit is off, which
// suits tests; production passes config.WebSocketConfig so max_clients
// applies.
func NewHub(cfg *config.WebSocketConfig) *Hub {
	maxClients := 0
	if cfg != nil {
		maxClients = cfg.MaxClients
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		maxClients: maxClients,
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err(). Designed to run under supervision.
//
// Channel readiness is checked in priority order so behavior stays
// predictable when several channels are ready at once: shutdown first,
// then client lifecycle, then broadcasts.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: shutdown, non-blocking check.
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: client lifecycle, non-blocking check.
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
		}

		// Priority 3: block until anything arrives.
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// registerClient adds a client, or turns it away when the hub is at
// max_clients. A rejected client has its send channel closed, which makes
// its write pump deliver a close frame and tear the connection down.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		close(client.send)
		metrics.WSErrors.WithLabelValues("max_clients").Inc()
		logging.Warn().
			Int("max_clients", h.maxClients).
			Msg("websocket client rejected, hub at capacity")
		return
	}

	h.clients[client] = true
	metrics.WSConnections.Set(float64(len(h.clients)))
	logging.Info().Int("total_clients", len(h.clients)).Msg("websocket client connected")

	// Greet the new client. Only the hub loop ever closes send, so the
	// queue is guaranteed open here.
	select {
	case client.send <- Message{Type: MessageTypeWelcome, Data: map[string]uint64{"client_id": client.id}}:
	default:
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	metrics.WSConnections.Set(float64(len(h.clients)))
	logging.Info().Int("total_clients", len(h.clients)).Msg("websocket client disconnected")
}

// broadcastToClients queues a message on every client in id order.
// Iteration order is fixed so delivery is reproducible in tests. A client
// whose queue is full is dropped on the spot.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSErrors.WithLabelValues("slow_client").Inc()
		logging.Warn().Uint64("client_id", client.id).Msg("dropping slow websocket client")
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

// shutdown closes all clients and logs the stop. Cancellation is the
// expected path, so ctx.Err() is logged as a reason, not an error.
func (h *Hub) shutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(shutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// closeAllClients closes clients in id order for consistent shutdown.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// BroadcastJSON queues a typed frame for every client without blocking.
// When the broadcast buffer is full the frame is dropped with a warning;
// live updates are best-effort and clients resync over the REST API.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	message := Message{
		Type: messageType,
		Data: data,
	}

	select {
	case h.broadcast <- message:
	default:
		metrics.WSErrors.WithLabelValues("broadcast_full").Inc()
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastRaw forwards a bus frame of the form
// {"topic": ..., "data": ...} to all clients as a typed message. It
// implements the broadcaster interface the events package consumes.
func (h *Hub) BroadcastRaw(data []byte) {
	var frame struct {
		Topic string          `json:"topic"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &frame); err != nil || frame.Topic == "" {
		metrics.WSErrors.WithLabelValues("bad_frame").Inc()
		logging.Warn().Err(err).Msg("discarding malformed broadcast frame")
		return
	}

	h.BroadcastJSON(frame.Topic, frame.Data)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// AtCapacity reports whether the hub has hit max_clients. The /ws
// endpoint checks it before upgrading so rejected requests get an HTTP
// error instead of an immediate websocket close.
func (h *Hub) AtCapacity() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.maxClients > 0 && len(h.clients) >= h.maxClients
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
