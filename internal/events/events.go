// Package events publishes notifications about committed payment writes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akylbek/payment-system/payment-api/internal/config"
	"github.com/akylbek/payment-system/payment-api/internal/serialization"
)

type Type string

const (
	PaymentCreated Type = "payment.created"
	PaymentUpdated Type = "payment.updated"
	PaymentDeleted Type = "payment.deleted"
)

type PaymentEvent struct {
	EventID       string                         `json:"event_id"`
	Type          Type                           `json:"type"`
	TransactionID string                         `json:"transaction_id"`
	Payment       *serialization.PaymentResponse `json:"payment"`
	OccurredAt    time.Time                      `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time. payment is nil
// for deletions.
func New(t Type, transactionID string, payment *serialization.PaymentResponse) PaymentEvent {
	return PaymentEvent{
		EventID:       uuid.NewString(),
		Type:          t,
		TransactionID: transactionID,
		Payment:       payment,
		OccurredAt:    time.Now().UTC(),
	}
}

func (e PaymentEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher is implemented by every transport in this package.
type Publisher interface {
	Publish(ctx context.Context, event PaymentEvent) error
	Close() error
}

// NewPublisher returns the transport selected by cfg.EventsDriver.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	switch cfg.EventsDriver {
	case config.EventsNone, "":
		return NopPublisher{}, nil
	case config.EventsKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.EventsNATS:
		return NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject)
	default:
		return nil, fmt.Errorf("unsupported events driver %q", cfg.EventsDriver)
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, PaymentEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
