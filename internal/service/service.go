package service

import (
	"alcyxob/fitcoach/internal/events"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shared across services. Entity-specific errors live next to their service.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotATrainer      = errors.New("user is not a trainer")
	ErrNotAClient       = errors.New("user is not a client")
)

// publishEvent never fails the caller; a lost event is logged.
func publishEvent(ctx context.Context, pub events.Publisher, log *logger.Logger, eventType string, data interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		log.Warnw("failed to publish event", "type", eventType, "error", err)
	}
}

func ensureTrainer(ctx context.Context, userRepo repository.UserRepository, trainerID primitive.ObjectID) error {
	trainer, err := userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainerNotFound
		}
		return err
	}
	if !trainer.IsTrainer() {
		return ErrNotATrainer
	}
	return nil
}
