// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

//go:build nats

package events

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsserver "github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/localis-app/localis/internal/config"
)

const (
	// streamName is the single JetStream stream covering all domain
	// topics. Stream names cannot contain wildcards or dots, so the
	// stream is provisioned here and subscribers bind to it instead of
	// auto-provisioning per topic.
	streamName = "LOCALIS_EVENTS"

	serverName       = "localis-events"
	natsReadyTimeout = 30 * time.Second
	streamMaxAge     = 7 * 24 * time.Hour
	ackWait          = 30 * time.Second
	maxDeliver       = 5
)

// streamSubjects covers every topic in models.AllTopics.
var streamSubjects = []string{"place.>", "review.>", "social.>"}

// natsBackend is the JetStream transport behind Bus. It satisfies both
// message.Publisher and message.Subscriber.
type natsBackend struct {
	server     *natsserver.Server
	publisher  message.Publisher
	subscriber message.Subscriber
	url        string
}

// newNATSBackend connects to NATS, provisions the event stream and
// builds the Watermill publisher and subscriber. With
// cfg.EmbeddedServer it boots an in-process nats-server first and
// connects to that.
func newNATSBackend(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (*natsBackend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nats config required")
	}
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	backend := &natsBackend{url: cfg.URL}

	if cfg.EmbeddedServer {
		srv, err := startEmbeddedServer(cfg)
		if err != nil {
			return nil, err
		}
		backend.server = srv
		backend.url = srv.ClientURL()
	}
	if backend.url == "" {
		backend.url = natsgo.DefaultURL
	}

	if err := ensureStream(backend.url); err != nil {
		backend.shutdownServer()
		return nil, err
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         backend.url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		backend.shutdownServer()
		return nil, fmt.Errorf("create JetStream publisher: %w", err)
	}
	backend.publisher = pub

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:            backend.url,
		NatsOptions:    natsOpts,
		AckWaitTimeout: ackWait,
		Unmarshaler:    &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			DurablePrefix: "localis",
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(streamName),
				natsgo.MaxDeliver(maxDeliver),
				natsgo.AckWait(ackWait),
				natsgo.DeliverNew(),
			},
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		backend.shutdownServer()
		return nil, fmt.Errorf("create JetStream subscriber: %w", err)
	}
	backend.subscriber = sub

	return backend, nil
}

// Publish implements message.Publisher. The message UUID doubles as
// Nats-Msg-Id so JetStream deduplicates redelivered publishes.
func (b *natsBackend) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
			msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
		}
	}
	return b.publisher.Publish(topic, messages...)
}

// Subscribe implements message.Subscriber.
func (b *natsBackend) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

// Close shuts down the transport, then the embedded server if one was
// started.
func (b *natsBackend) Close() error {
	var firstErr error
	if b.subscriber != nil {
		if err := b.subscriber.Close(); err != nil {
			firstErr = err
		}
	}
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.shutdownServer()
	return firstErr
}

// URL returns the client URL the transport connected to.
func (b *natsBackend) URL() string {
	return b.url
}

func (b *natsBackend) shutdownServer() {
	if b.server == nil {
		return
	}
	b.server.Shutdown()
	b.server.WaitForShutdown()
}

// startEmbeddedServer boots an in-process nats-server with JetStream
// enabled and waits for it to accept connections.
func startEmbeddedServer(cfg *config.NATSConfig) (*natsserver.Server, error) {
	host, port := serverListenAddr(cfg.URL)

	opts := &natsserver.Options{
		ServerName:         serverName,
		Host:               host,
		Port:               port,
		JetStream:          true,
		StoreDir:           cfg.StoreDir,
		JetStreamMaxMemory: 256 << 20,
		JetStreamMaxStore:  2 << 30,
		MaxPayload:         1 << 20,
	}

	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}

	srv.ConfigureLogger()
	go srv.Start()

	if !srv.ReadyForConnections(natsReadyTimeout) {
		srv.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready after %s", natsReadyTimeout)
	}

	return srv, nil
}

// serverListenAddr extracts the listen host and port from a nats:// URL
// so the embedded server comes up where clients expect it. Defaults to
// localhost:4222.
func serverListenAddr(rawURL string) (string, int) {
	host, port := "127.0.0.1", 4222

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return host, port
	}
	if h := u.Hostname(); h != "" {
		host = h
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	return host, port
}

// ensureStream creates or updates the stream covering all domain topics.
// The operation is idempotent.
func ensureStream(natsURL string) error {
	nc, err := natsgo.Connect(natsURL)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	streamCfg := jetstream.StreamConfig{
		Name:       streamName,
		Subjects:   streamSubjects,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     streamMaxAge,
		Duplicates: 2 * time.Minute,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
	}

	if _, err := js.Stream(ctx, streamName); err == nil {
		if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("update stream %s: %w", streamName, err)
		}
		return nil
	}

	if _, err := js.CreateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("create stream %s: %w", streamName, err)
	}
	return nil
}
