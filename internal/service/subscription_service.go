package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/events"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrSubscriptionAccessDenied = errors.New("access denied to this subscription")
	ErrSubscriptionExists       = errors.New("an active subscription with this trainer already exists")
	ErrSubscriptionInactive     = errors.New("subscription is already cancelled")
	ErrInvalidInterval          = fmt.Errorf("%w: billingInterval must be weekly, monthly or yearly", ErrValidationFailed)
)

type SubscribeInput struct {
	TrainerID       primitive.ObjectID
	Plan            string
	PriceCents      int64
	Currency        string
	BillingInterval domain.BillingInterval
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, clientID primitive.ObjectID, input SubscribeInput) (*domain.Subscription, error)
	CancelSubscription(ctx context.Context, userID, subscriptionID primitive.ObjectID) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.Subscription, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	publisher        events.Publisher
	log              *logger.Logger
	defaultCurrency  string
	now              func() time.Time
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	publisher events.Publisher,
	log *logger.Logger,
	defaultCurrency string,
) SubscriptionService {
	if defaultCurrency == "" {
		defaultCurrency = "usd"
	}
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		log:              log,
		defaultCurrency:  strings.ToLower(defaultCurrency),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, clientID primitive.ObjectID, input SubscribeInput) (*domain.Subscription, error) {
	plan := strings.TrimSpace(input.Plan)
	if plan == "" {
		return nil, fmt.Errorf("%w: plan is required", ErrValidationFailed)
	}
	if input.PriceCents <= 0 {
		return nil, ErrInvalidAmount
	}
	interval := input.BillingInterval
	if interval == "" {
		interval = domain.IntervalMonthly
	}
	if !interval.Valid() {
		return nil, ErrInvalidInterval
	}
	currency, err := normalizeCurrency(input.Currency, s.defaultCurrency)
	if err != nil {
		return nil, err
	}
	if err := ensureTrainer(ctx, s.userRepo, input.TrainerID); err != nil {
		return nil, err
	}

	if _, err := s.subscriptionRepo.GetActive(ctx, clientID, input.TrainerID); err == nil {
		return nil, ErrSubscriptionExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	sub := &domain.Subscription{
		ClientID:        clientID,
		TrainerID:       input.TrainerID,
		Plan:            plan,
		PriceCents:      input.PriceCents,
		Currency:        currency,
		BillingInterval: interval,
		Active:          true,
	}
	id, err := s.subscriptionRepo.Create(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSubscriptionExists
		}
		return nil, err
	}
	sub.ID = id

	publishEvent(ctx, s.publisher, s.log, events.SubscriptionCreated, sub)
	return sub, nil
}

// CancelSubscription deactivates the record. Deactivation is terminal; a new
// Subscribe call creates a fresh record.
func (s *subscriptionService) CancelSubscription(ctx context.Context, userID, subscriptionID primitive.ObjectID) (*domain.Subscription, error) {
	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if !sub.IsParticipant(userID) {
		return nil, ErrSubscriptionAccessDenied
	}
	if !sub.Active {
		return nil, ErrSubscriptionInactive
	}

	at := s.now()
	if err := s.subscriptionRepo.Deactivate(ctx, subscriptionID, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionInactive
		}
		return nil, err
	}
	sub.Active = false
	sub.CancelledAt = &at
	sub.UpdatedAt = at

	publishEvent(ctx, s.publisher, s.log, events.SubscriptionCancelled, sub)
	return sub, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.Subscription, error) {
	return s.subscriptionRepo.GetByParticipant(ctx, userID, activeOnly)
}
