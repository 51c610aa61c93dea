package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/rs/zerolog/log"
)

// ListenerConfig holds LISTEN/NOTIFY settings.
type ListenerConfig struct {
	DatabaseURL   string
	NotifyChannel string
	PingInterval  time.Duration
}

// DefaultListenerConfig returns default listener settings.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel: "room_remote_events",
		PingInterval:  90 * time.Second,
	}
}

// NotifyListener is a RemoteSource backed by Postgres LISTEN/NOTIFY. Used as
// the remote-write feed when no message bus is deployed: administrative
// edits insert into room_events and a trigger NOTIFYs the envelope.
type NotifyListener struct {
	listener *pq.Listener
	cfg      ListenerConfig
}

// NewNotifyListener opens the LISTEN connection.
func NewNotifyListener(cfg ListenerConfig) (*NotifyListener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("notify listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.NotifyChannel, err)
	}

	log.Info().Str("channel", cfg.NotifyChannel).Msg("listening for remote notifications")
	return &NotifyListener{listener: l, cfg: cfg}, nil
}

// Events implements RemoteSource.
func (n *NotifyListener) Events(ctx context.Context) (<-chan events.Envelope, error) {
	out := make(chan events.Envelope, 64)

	go func() {
		defer close(out)
		defer func() {
			_ = n.listener.Close()
		}()

		pingTicker := time.NewTicker(n.cfg.PingInterval)
		defer pingTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-pingTicker.C:
				if err := n.listener.Ping(); err != nil {
					log.Error().Err(err).Msg("notify listener ping failed")
				}
			case notification, ok := <-n.listener.Notify:
				if !ok {
					return
				}
				if notification == nil {
					// Reconnection marker from pq; nothing to deliver.
					continue
				}
				var env events.Envelope
				if err := json.Unmarshal([]byte(notification.Extra), &env); err != nil {
					log.Error().Err(err).Msg("bad notification payload, dropping")
					continue
				}
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
