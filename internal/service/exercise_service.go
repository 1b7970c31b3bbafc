package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrInvalidDifficulty    = fmt.Errorf("%w: difficulty must be beginner, intermediate or advanced", ErrValidationFailed)
)

// ExerciseInput holds the editable catalog fields.
type ExerciseInput struct {
	Name             string
	Description      string
	MuscleGroup      string
	ExecutionTechnic string
	Applicability    string
	Difficulty       string
	Equipment        string
	VideoURL         string
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

func validateLevel(level string, required bool) error {
	switch strings.ToLower(level) {
	case domain.LevelBeginner, domain.LevelIntermediate, domain.LevelAdvanced:
		return nil
	case "":
		if !required {
			return nil
		}
	}
	return ErrInvalidDifficulty
}

func (in ExerciseInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: exercise name is required", ErrValidationFailed)
	}
	return validateLevel(in.Difficulty, false)
}

func (in ExerciseInput) applyTo(ex *domain.Exercise) {
	ex.Name = strings.TrimSpace(in.Name)
	ex.Description = in.Description
	ex.MuscleGroup = in.MuscleGroup
	ex.ExecutionTechnic = in.ExecutionTechnic
	ex.Applicability = in.Applicability
	ex.Difficulty = strings.ToLower(in.Difficulty)
	ex.Equipment = in.Equipment
	ex.VideoURL = in.VideoURL
}

// CreateExercise handles the creation of a new exercise by a trainer.
func (s *exerciseService) CreateExercise(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{TrainerID: trainerID}
	input.applyTo(exercise)

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	return exercise, nil
}

// GetExerciseByID retrieves a single catalog entry. The catalog is readable by
// every authenticated user.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	filter.MuscleGroup = strings.TrimSpace(filter.MuscleGroup)
	filter.Difficulty = strings.TrimSpace(filter.Difficulty)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.exerciseRepo.List(ctx, filter)
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if existing.TrainerID != trainerID {
		return nil, ErrExerciseAccessDenied
	}

	input.applyTo(existing)
	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteExercise checks existence first so a foreign exercise yields 403
// rather than the repository's combined not-found.
func (s *exerciseService) DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error {
	existing, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return err
	}
	if existing.TrainerID != trainerID {
		return ErrExerciseAccessDenied
	}

	if err := s.exerciseRepo.Delete(ctx, exerciseID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}
