// Package events wraps the NATS connection and subscription plumbing
// shared by the job dispatcher's ready-job republish and the realtime
// WebSocket relay. internal/jobs.RedisQueue publishes ready jobs
// straight through a *nats.Conn, so this package only needs to provide
// Connect and Subscriber.
package events

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/slotwise/scheduling-core/internal/config"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

// Connect dials the configured NATS server.
func Connect(cfg config.NATS) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

// Subscriber wraps a *nats.Conn subscription for handlers that decode a
// raw message payload themselves (internal/realtime's webhook-envelope
// relay).
type Subscriber struct {
	conn   *nats.Conn
	logger *logger.Logger
}

func NewSubscriber(conn *nats.Conn, log *logger.Logger) *Subscriber {
	return &Subscriber{conn: conn, logger: log}
}

// Subscribe registers handler against subject. A handler error is
// logged; NATS does not retry delivery for us, so a failed handler
// simply drops that message.
func (s *Subscriber) Subscribe(subject string, handler func([]byte) error) error {
	_, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			s.logger.Error("failed to handle event", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}
	s.logger.Debug("subscribed to subject", "subject", subject)
	return nil
}
