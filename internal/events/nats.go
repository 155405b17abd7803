package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("payment-api"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Publish sends to "<subject>.<type>", e.g. payment.events.payment.created.
func (p *NATSPublisher) Publish(ctx context.Context, event PaymentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := nats.NewMsg(p.subject + "." + string(event.Type))
	msg.Data = data
	msg.Header.Set("Nats-Msg-Id", event.EventID)

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish nats message: %w", err)
	}
	return nil
}

// Close flushes buffered messages before closing the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
