// internal/adapter/messaging/publisher.go

package messaging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"topicpulse/internal/domain/topic"
)

type coreConn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

type jetStream interface {
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher sends payloads over NATS. Every message carries a fresh
// Nats-Msg-Id so JetStream can de-duplicate redeliveries.
type Publisher struct {
	conn  coreConn
	js    jetStream
	newID func() string
}

var _ topic.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher on an open connection. With jetStream set,
// publishes wait for a stream acknowledgement.
func NewPublisher(nc *nats.Conn, jetStream bool) (*Publisher, error) {
	p := &Publisher{
		conn:  nc,
		newID: func() string { return uuid.New().String() },
	}

	if jetStream {
		js, err := nc.JetStream()
		if err != nil {
			return nil, fmt.Errorf("unable to create JetStream context: %w", err)
		}
		p.js = js
	}

	return p, nil
}

// Publish sends payload to subject and returns the message id
func (p *Publisher) Publish(ctx context.Context, subject string, payload []byte) (string, error) {
	id := p.newID()

	msg := nats.NewMsg(subject)
	msg.Data = payload
	msg.Header.Set(nats.MsgIdHdr, id)

	if p.js != nil {
		if _, err := p.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
			return "", fmt.Errorf("error publishing to %s: %w", subject, err)
		}
		return id, nil
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return "", fmt.Errorf("error publishing to %s: %w", subject, err)
	}
	// Round-trip to the server so a dead connection surfaces here
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return "", fmt.Errorf("error flushing %s: %w", subject, err)
	}

	return id, nil
}
