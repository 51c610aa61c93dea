package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds JetStream connection settings.
type NATSConfig struct {
	URL           string
	StreamName    string
	ConsumerName  string
	LocalSubject  string // committed local events, e.g. "bestball.rooms.events"
	RemoteSubject string // inbound remote writes, e.g. "bestball.rooms.remote"
	MaxReconnects int
	ReconnectWait time.Duration
	MaxDeliver    int
	AckWait       time.Duration
	MaxAckPending int
}

// DefaultNATSConfig returns default JetStream settings.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		StreamName:    "ROOM_EVENTS",
		ConsumerName:  "draftroom",
		LocalSubject:  "bestball.rooms.events",
		RemoteSubject: "bestball.rooms.remote",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxAckPending: 100,
	}
}

// Connect dials NATS and creates a JetStream context.
func Connect(cfg NATSConfig) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return nc, js, nil
}

// JetStreamPublisher publishes committed local events to the stream.
type JetStreamPublisher struct {
	js      jetstream.JetStream
	subject string
}

// NewJetStreamPublisher creates a publisher on the local-events subject.
func NewJetStreamPublisher(js jetstream.JetStream, cfg NATSConfig) *JetStreamPublisher {
	return &JetStreamPublisher{js: js, subject: cfg.LocalSubject}
}

// Publish implements Publisher. The event id doubles as the JetStream
// dedupe id so redelivered relays stay idempotent.
func (p *JetStreamPublisher) Publish(ctx context.Context, env events.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := fmt.Sprintf("%s.%s", p.subject, env.Type)
	_, err = p.js.Publish(ctx, subject, data, jetstream.WithMsgID(env.ID.String()))
	if err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// RemoteConsumer surfaces remote writes from the stream as inbound event
// envelopes. Implements RemoteSource.
type RemoteConsumer struct {
	js  jetstream.JetStream
	cfg NATSConfig
}

// NewRemoteConsumer creates a consumer of the remote-writes subject.
func NewRemoteConsumer(js jetstream.JetStream, cfg NATSConfig) *RemoteConsumer {
	return &RemoteConsumer{js: js, cfg: cfg}
}

// Events implements RemoteSource. The returned channel closes when ctx is
// cancelled.
func (c *RemoteConsumer) Events(ctx context.Context) (<-chan events.Envelope, error) {
	stream, err := c.js.Stream(ctx, c.cfg.StreamName)
	if err != nil {
		return nil, fmt.Errorf("get stream: %w", err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          c.cfg.ConsumerName,
		Durable:       c.cfg.ConsumerName,
		Description:   "draft room remote-write consumer",
		FilterSubject: c.cfg.RemoteSubject + ".>",
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    c.cfg.MaxDeliver,
		AckWait:       c.cfg.AckWait,
		MaxAckPending: c.cfg.MaxAckPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	out := make(chan events.Envelope, 64)
	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var env events.Envelope
		if err := json.Unmarshal(msg.Data(), &env); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("bad remote event, dropping")
			_ = msg.Ack()
			return
		}
		select {
		case out <- env:
			_ = msg.Ack()
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("start consume: %w", err)
	}

	go func() {
		<-ctx.Done()
		cc.Stop()
		close(out)
	}()
	return out, nil
}
