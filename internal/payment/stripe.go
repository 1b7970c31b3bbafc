package payment

import (
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
	"github.com/stripe/stripe-go/v72/webhook"
)

const metadataPaymentID = "payment_id"

type StripeProcessor struct {
	intents       paymentintent.Client
	webhookSecret string
}

// NewStripeProcessor returns nil when no secret key is configured; callers
// treat a nil Processor as "payments processor unavailable".
func NewStripeProcessor(cfg config.StripeConfig) *StripeProcessor {
	if cfg.SecretKey == "" {
		return nil
	}
	return &StripeProcessor{
		intents: paymentintent.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: cfg.SecretKey,
		},
		webhookSecret: cfg.WebhookSecret,
	}
}

func (s *StripeProcessor) CreateIntent(ctx context.Context, p *domain.Payment) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountCents),
		Currency: stripe.String(strings.ToLower(p.Currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
	}
	if p.Description != "" {
		params.Description = stripe.String(p.Description)
	}
	params.Context = ctx
	params.AddMetadata(metadataPaymentID, p.ID.Hex())
	params.AddMetadata("client_id", p.ClientID.Hex())
	params.AddMetadata("trainer_id", p.TrainerID.Hex())

	pi, err := s.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *StripeProcessor) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if s.webhookSecret == "" {
		return nil, errors.New("webhook secret is not configured")
	}
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: event.Type}
	if !strings.HasPrefix(event.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decoding payment intent: %w", err)
	}
	out.PaymentIntentID = pi.ID
	out.PaymentID = pi.Metadata[metadataPaymentID]
	return out, nil
}
