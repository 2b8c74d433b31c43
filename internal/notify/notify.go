package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Notifier announces run events to interested services.
type Notifier interface {
	Publish(ctx context.Context, event string, payload any) error
	Close() error
}

type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NatsNotifier publishes JSON payloads on <subject>.<event>.
type NatsNotifier struct {
	conn    conn
	subject string
}

// NewNatsNotifier connects to the NATS server at url.
func NewNatsNotifier(url, subject string) (*NatsNotifier, error) {
	opts := []nats.Option{
		nats.Name("directory-seeder"),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("Disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("server", nc.ConnectedUrl()).Msg("Reconnected to NATS")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info().Str("server", nc.ConnectedUrl()).Msg("Connected to NATS")
	return &NatsNotifier{conn: nc, subject: subject}, nil
}

// Publish marshals payload and waits until the server has received it.
func (n *NatsNotifier) Publish(ctx context.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s notification: %w", event, err)
	}
	subject := n.subject + "." + event
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (n *NatsNotifier) Close() error {
	return n.conn.Drain()
}

// Noop discards notifications.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

func (Noop) Close() error { return nil }

var (
	_ Notifier = (*NatsNotifier)(nil)
	_ Notifier = Noop{}
)
