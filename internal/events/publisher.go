// Package events publishes domain events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Routing keys.
const (
	MessageSent           = "message.sent"
	AssignmentCreated     = "assignment.created"
	PaymentConfirmed      = "payment.confirmed"
	PaymentCancelled      = "payment.cancelled"
	SubscriptionCreated   = "subscription.created"
	SubscriptionCancelled = "subscription.cancelled"
)

// Event is the envelope every message body is wrapped in.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error {
	return nil
}

func (Noop) Close() {}
