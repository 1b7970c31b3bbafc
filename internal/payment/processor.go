// Package payment wraps the card processor behind a small interface so the
// payment service can be exercised without network access.
package payment

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"errors"
)

// EventPaymentIntentSucceeded is the only webhook event that changes state.
const EventPaymentIntentSucceeded = "payment_intent.succeeded"

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Intent is what the client needs to complete a card payment.
type Intent struct {
	ID           string
	ClientSecret string
}

// WebhookEvent is the verified subset of a processor event the service acts on.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	PaymentID       string // from the intent's metadata, empty if absent
}

type Processor interface {
	CreateIntent(ctx context.Context, p *domain.Payment) (*Intent, error)
	// ParseWebhook verifies the signature header against the payload.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
