package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/events"
	"alcyxob/fitcoach/internal/logger"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type subscriptionFixture struct {
	svc       SubscriptionService
	publisher *recordingPublisher
	client    *domain.User
	trainer   *domain.User
}

func newSubscriptionFixture() *subscriptionFixture {
	users := newFakeUserRepo()
	f := &subscriptionFixture{
		publisher: &recordingPublisher{},
		client:    users.add("Carla", "carla@example.com", domain.RoleClient),
		trainer:   users.add("Tomas", "tomas@example.com", domain.RoleTrainer),
	}
	f.svc = NewSubscriptionService(newFakeSubscriptionRepo(), users, f.publisher, logger.Nop(), "")
	return f
}

func TestSubscribe(t *testing.T) {
	f := newSubscriptionFixture()
	ctx := context.Background()

	sub, err := f.svc.Subscribe(ctx, f.client.ID, SubscribeInput{TrainerID: f.trainer.ID, Plan: " Coaching ", PriceCents: 9900})
	require.NoError(t, err)
	assert.True(t, sub.Active)
	assert.Equal(t, "Coaching", sub.Plan)
	assert.Equal(t, "usd", sub.Currency)
	assert.Equal(t, domain.IntervalMonthly, sub.BillingInterval)

	_, err = f.svc.Subscribe(ctx, f.client.ID, SubscribeInput{TrainerID: f.trainer.ID, Plan: "Again", PriceCents: 100})
	assert.ErrorIs(t, err, ErrSubscriptionExists)

	assert.Equal(t, []string{events.SubscriptionCreated}, f.publisher.published())
}

func TestSubscribe_Validation(t *testing.T) {
	f := newSubscriptionFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		input   SubscribeInput
		wantErr error
	}{
		{"missing plan", SubscribeInput{TrainerID: f.trainer.ID, PriceCents: 100}, ErrValidationFailed},
		{"zero price", SubscribeInput{TrainerID: f.trainer.ID, Plan: "p"}, ErrInvalidAmount},
		{"bad interval", SubscribeInput{TrainerID: f.trainer.ID, Plan: "p", PriceCents: 100, BillingInterval: "daily"}, ErrInvalidInterval},
		{"bad currency", SubscribeInput{TrainerID: f.trainer.ID, Plan: "p", PriceCents: 100, Currency: "dollars"}, ErrInvalidCurrency},
		{"not a trainer", SubscribeInput{TrainerID: f.client.ID, Plan: "p", PriceCents: 100}, ErrNotATrainer},
		{"unknown trainer", SubscribeInput{TrainerID: primitive.NewObjectID(), Plan: "p", PriceCents: 100}, ErrTrainerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Subscribe(ctx, f.client.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCancelSubscription(t *testing.T) {
	f := newSubscriptionFixture()
	ctx := context.Background()

	sub, err := f.svc.Subscribe(ctx, f.client.ID, SubscribeInput{TrainerID: f.trainer.ID, Plan: "Coaching", PriceCents: 9900, BillingInterval: domain.IntervalYearly})
	require.NoError(t, err)

	_, err = f.svc.CancelSubscription(ctx, primitive.NewObjectID(), sub.ID)
	assert.ErrorIs(t, err, ErrSubscriptionAccessDenied)

	cancelled, err := f.svc.CancelSubscription(ctx, f.trainer.ID, sub.ID)
	require.NoError(t, err)
	assert.False(t, cancelled.Active)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.CancelSubscription(ctx, f.client.ID, sub.ID)
	assert.ErrorIs(t, err, ErrSubscriptionInactive)

	_, err = f.svc.CancelSubscription(ctx, f.client.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	active, err := f.svc.ListSubscriptions(ctx, f.client.ID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.svc.ListSubscriptions(ctx, f.client.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// A cancelled subscription does not block a new one.
	_, err = f.svc.Subscribe(ctx, f.client.ID, SubscribeInput{TrainerID: f.trainer.ID, Plan: "Coaching", PriceCents: 9900})
	require.NoError(t, err)

	assert.Equal(t, []string{events.SubscriptionCreated, events.SubscriptionCancelled, events.SubscriptionCreated}, f.publisher.published())
}
