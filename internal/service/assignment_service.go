package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/events"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrAssignmentAccessDenied = errors.New("access denied to this assignment")
	ErrAssignmentNotActive    = errors.New("only active assignments can change state")
	ErrInvalidDateRange       = fmt.Errorf("%w: endDate must not be before startDate", ErrValidationFailed)
	ErrInvalidStatus          = fmt.Errorf("%w: unknown assignment status", ErrValidationFailed)
)

type AssignRoutineInput struct {
	RoutineID primitive.ObjectID
	ClientID  primitive.ObjectID
	StartDate time.Time // zero means now
	EndDate   *time.Time
	Notes     string
}

type AssignmentService interface {
	AssignRoutine(ctx context.Context, trainerID primitive.ObjectID, input AssignRoutineInput) (*domain.Assignment, error)
	ListForClient(ctx context.Context, clientID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error)
	ListForTrainer(ctx context.Context, trainerID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error)
	GetAssignment(ctx context.Context, userID, assignmentID primitive.ObjectID) (*domain.Assignment, error)
	CompleteAssignment(ctx context.Context, userID, assignmentID primitive.ObjectID) (*domain.Assignment, error)
	CancelAssignment(ctx context.Context, trainerID, assignmentID primitive.ObjectID) (*domain.Assignment, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	routineRepo    repository.RoutineRepository
	userRepo       repository.UserRepository
	publisher      events.Publisher
	log            *logger.Logger
	now            func() time.Time
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	routineRepo repository.RoutineRepository,
	userRepo repository.UserRepository,
	publisher events.Publisher,
	log *logger.Logger,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		routineRepo:    routineRepo,
		userRepo:       userRepo,
		publisher:      publisher,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *assignmentService) AssignRoutine(ctx context.Context, trainerID primitive.ObjectID, input AssignRoutineInput) (*domain.Assignment, error) {
	start := input.StartDate
	if start.IsZero() {
		start = s.now()
	}
	if input.EndDate != nil && input.EndDate.Before(start) {
		return nil, ErrInvalidDateRange
	}

	routine, err := s.routineRepo.GetByID(ctx, input.RoutineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	if routine.TrainerID != trainerID {
		return nil, ErrRoutineAccessDenied
	}

	client, err := s.userRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrNotAClient
	}

	assignment := &domain.Assignment{
		RoutineID: routine.ID,
		ClientID:  client.ID,
		TrainerID: trainerID,
		Status:    domain.StatusActive,
		StartDate: start,
		EndDate:   input.EndDate,
		Notes:     input.Notes,
	}
	assignmentID, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = assignmentID

	publishEvent(ctx, s.publisher, s.log, events.AssignmentCreated, assignment)
	return assignment, nil
}

func (s *assignmentService) ListForClient(ctx context.Context, clientID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.assignmentRepo.GetByClientID(ctx, clientID, status)
}

func (s *assignmentService) ListForTrainer(ctx context.Context, trainerID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.assignmentRepo.GetByTrainerID(ctx, trainerID, status)
}

func (s *assignmentService) GetAssignment(ctx context.Context, userID, assignmentID primitive.ObjectID) (*domain.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if !assignment.IsParticipant(userID) {
		return nil, ErrAssignmentAccessDenied
	}
	return assignment, nil
}

// CompleteAssignment may be called by either participant.
func (s *assignmentService) CompleteAssignment(ctx context.Context, userID, assignmentID primitive.ObjectID) (*domain.Assignment, error) {
	assignment, err := s.GetAssignment(ctx, userID, assignmentID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, assignment, domain.StatusCompleted)
}

func (s *assignmentService) CancelAssignment(ctx context.Context, trainerID, assignmentID primitive.ObjectID) (*domain.Assignment, error) {
	assignment, err := s.GetAssignment(ctx, trainerID, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.TrainerID != trainerID {
		return nil, ErrAssignmentAccessDenied
	}
	return s.transition(ctx, assignment, domain.StatusCancelled)
}

func (s *assignmentService) transition(ctx context.Context, assignment *domain.Assignment, to domain.AssignmentStatus) (*domain.Assignment, error) {
	if assignment.Status != domain.StatusActive {
		return nil, ErrAssignmentNotActive
	}
	at := s.now()
	if err := s.assignmentRepo.TransitionStatus(ctx, assignment.ID, domain.StatusActive, to, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// lost a race with another transition
			return nil, ErrAssignmentNotActive
		}
		return nil, err
	}

	assignment.Status = to
	assignment.UpdatedAt = at
	if to == domain.StatusCompleted {
		assignment.CompletedAt = &at
	} else {
		assignment.CancelledAt = &at
	}
	return assignment, nil
}
