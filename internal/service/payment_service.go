package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/events"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/payment"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentAccessDenied     = errors.New("access denied to this payment")
	ErrPaymentNotPending       = errors.New("payment is no longer pending")
	ErrConfirmedByProcessor    = errors.New("payment is confirmed by the payment processor")
	ErrInvalidAmount           = fmt.Errorf("%w: amount must be greater than zero", ErrValidationFailed)
	ErrInvalidCurrency         = fmt.Errorf("%w: currency must be a 3-letter ISO code", ErrValidationFailed)
	ErrProcessorNotConfigured  = errors.New("payment processor is not configured")
	ErrPaymentProcessorFailure = errors.New("payment processor request failed")
)

type CreatePaymentInput struct {
	TrainerID   primitive.ObjectID
	AmountCents int64
	Currency    string
	Description string
}

// PaymentResult carries the client secret, which is returned once on create
// and never stored.
type PaymentResult struct {
	Payment      *domain.Payment
	ClientSecret string
}

type PaymentService interface {
	CreatePayment(ctx context.Context, clientID primitive.ObjectID, input CreatePaymentInput) (*PaymentResult, error)
	GetPayment(ctx context.Context, userID, paymentID primitive.ObjectID) (*domain.Payment, error)
	ListPayments(ctx context.Context, userID primitive.ObjectID) ([]domain.Payment, error)
	ConfirmPayment(ctx context.Context, userID, paymentID primitive.ObjectID) (*domain.Payment, error)
	CancelPayment(ctx context.Context, userID, paymentID primitive.ObjectID) (*domain.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	paymentRepo     repository.PaymentRepository
	userRepo        repository.UserRepository
	processor       payment.Processor // nil when not configured
	publisher       events.Publisher
	log             *logger.Logger
	defaultCurrency string
	now             func() time.Time
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	processor payment.Processor,
	publisher events.Publisher,
	log *logger.Logger,
	defaultCurrency string,
) PaymentService {
	if defaultCurrency == "" {
		defaultCurrency = "usd"
	}
	return &paymentService{
		paymentRepo:     paymentRepo,
		userRepo:        userRepo,
		processor:       processor,
		publisher:       publisher,
		log:             log,
		defaultCurrency: strings.ToLower(defaultCurrency),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func normalizeCurrency(currency, fallback string) (string, error) {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = fallback
	}
	if len(currency) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range currency {
		if r < 'a' || r > 'z' {
			return "", ErrInvalidCurrency
		}
	}
	return currency, nil
}

// CreatePayment records a pending payment and, when a processor is configured,
// opens a PaymentIntent for it.
func (s *paymentService) CreatePayment(ctx context.Context, clientID primitive.ObjectID, input CreatePaymentInput) (*PaymentResult, error) {
	if input.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	currency, err := normalizeCurrency(input.Currency, s.defaultCurrency)
	if err != nil {
		return nil, err
	}
	if err := ensureTrainer(ctx, s.userRepo, input.TrainerID); err != nil {
		return nil, err
	}
	if clientID == input.TrainerID {
		return nil, fmt.Errorf("%w: cannot pay yourself", ErrValidationFailed)
	}

	p := &domain.Payment{
		ClientID:    clientID,
		TrainerID:   input.TrainerID,
		AmountCents: input.AmountCents,
		Currency:    currency,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.PaymentPending,
	}
	id, err := s.paymentRepo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	result := &PaymentResult{Payment: p}
	if s.processor == nil {
		return result, nil
	}

	intent, err := s.processor.CreateIntent(ctx, p)
	if err != nil {
		s.log.Errorw("failed to create payment intent", "paymentId", id.Hex(), "error", err)
		s.abandon(ctx, id)
		return nil, ErrPaymentProcessorFailure
	}
	if err := s.paymentRepo.SetIntent(ctx, id, intent.ID); err != nil {
		s.abandon(ctx, id)
		return nil, err
	}
	p.ProcessorIntentID = intent.ID
	result.ClientSecret = intent.ClientSecret
	return result, nil
}

// abandon cancels a payment whose intent could not be opened so it does not
// linger as pending.
func (s *paymentService) abandon(ctx context.Context, id primitive.ObjectID) {
	if err := s.paymentRepo.TransitionStatus(ctx, id, domain.PaymentPending, domain.PaymentCancelled, s.now()); err != nil {
		s.log.Errorw("failed to cancel abandoned payment", "paymentId", id.Hex(), "error", err)
	}
}

func (s *paymentService) getPayment(ctx context.Context, paymentID primitive.ObjectID) (*domain.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *paymentService) GetPayment(ctx context.Context, userID, paymentID primitive.ObjectID) (*domain.Payment, error) {
	p, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !p.IsParticipant(userID) {
		return nil, ErrPaymentAccessDenied
	}
	return p, nil
}

func (s *paymentService) ListPayments(ctx context.Context, userID primitive.ObjectID) ([]domain.Payment, error) {
	return s.paymentRepo.GetByParticipant(ctx, userID)
}

// ConfirmPayment is the manual path used when no processor is configured; the
// payee confirms receipt. With a processor only the webhook confirms.
func (s *paymentService) ConfirmPayment(ctx context.Context, userID, paymentID primitive.ObjectID) (*domain.Payment, error) {
	if s.processor != nil {
		return nil, ErrConfirmedByProcessor
	}
	p, err := s.GetPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if p.TrainerID != userID {
		return nil, ErrPaymentAccessDenied
	}
	return s.confirm(ctx, p)
}

// confirm moves pending -> confirmed. Confirming twice returns the record
// unchanged; confirming a cancelled payment is a conflict.
func (s *paymentService) confirm(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	switch p.Status {
	case domain.PaymentConfirmed:
		return p, nil
	case domain.PaymentCancelled:
		return nil, ErrPaymentNotPending
	}

	at := s.now()
	if err := s.paymentRepo.TransitionStatus(ctx, p.ID, domain.PaymentPending, domain.PaymentConfirmed, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.afterLostRace(ctx, p.ID, domain.PaymentConfirmed)
		}
		return nil, err
	}
	p.Status = domain.PaymentConfirmed
	p.ConfirmedAt = &at
	p.UpdatedAt = at

	publishEvent(ctx, s.publisher, s.log, events.PaymentConfirmed, p)
	return p, nil
}

// CancelPayment moves pending -> cancelled. Any other state is a conflict and
// the stored record is left untouched.
func (s *paymentService) CancelPayment(ctx context.Context, userID, paymentID primitive.ObjectID) (*domain.Payment, error) {
	p, err := s.GetPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentPending {
		return nil, ErrPaymentNotPending
	}

	at := s.now()
	if err := s.paymentRepo.TransitionStatus(ctx, p.ID, domain.PaymentPending, domain.PaymentCancelled, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.afterLostRace(ctx, p.ID, domain.PaymentCancelled)
		}
		return nil, err
	}
	p.Status = domain.PaymentCancelled
	p.CancelledAt = &at
	p.UpdatedAt = at

	publishEvent(ctx, s.publisher, s.log, events.PaymentCancelled, p)
	return p, nil
}

// afterLostRace handles a conditional update that matched nothing because a
// concurrent request already moved the payment.
func (s *paymentService) afterLostRace(ctx context.Context, id primitive.ObjectID, wanted domain.PaymentStatus) (*domain.Payment, error) {
	current, err := s.getPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == wanted && wanted == domain.PaymentConfirmed {
		return current, nil
	}
	return nil, ErrPaymentNotPending
}

// HandleWebhook confirms the payment behind a succeeded PaymentIntent. Other
// event types and unknown intents are acknowledged without changes.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.processor == nil {
		return ErrProcessorNotConfigured
	}
	event, err := s.processor.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if event.Type != payment.EventPaymentIntentSucceeded {
		s.log.Debugw("ignoring webhook event", "type", event.Type, "id", event.ID)
		return nil
	}

	p, err := s.paymentRepo.GetByIntentID(ctx, event.PaymentIntentID)
	if errors.Is(err, repository.ErrNotFound) && event.PaymentID != "" {
		if id, hexErr := primitive.ObjectIDFromHex(event.PaymentID); hexErr == nil {
			p, err = s.paymentRepo.GetByID(ctx, id)
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warnw("webhook for unknown payment intent", "intent", event.PaymentIntentID, "event", event.ID)
			return nil
		}
		return err
	}

	if _, err := s.confirm(ctx, p); err != nil {
		if errors.Is(err, ErrPaymentNotPending) {
			s.log.Warnw("succeeded intent for a cancelled payment", "paymentId", p.ID.Hex(), "intent", event.PaymentIntentID)
			return nil
		}
		return err
	}
	s.log.Infow("payment confirmed by webhook", "paymentId", p.ID.Hex(), "intent", event.PaymentIntentID)
	return nil
}
