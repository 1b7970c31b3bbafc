package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrRoutineNotFound     = errors.New("routine not found")
	ErrRoutineAccessDenied = errors.New("access denied to this routine")
	ErrRoutineLinkNotFound = errors.New("routine exercise not found")
)

// RoutineExerciseInput is one prescription line. A nil Order means "append".
type RoutineExerciseInput struct {
	ExerciseID  primitive.ObjectID
	Order       *int
	Sets        int
	Reps        string
	RestSeconds int
	Notes       string
}

type RoutineInput struct {
	Name          string
	Description   string
	Goal          string
	Difficulty    string
	DurationWeeks int
}

type RoutineService interface {
	CreateRoutine(ctx context.Context, trainerID primitive.ObjectID, input RoutineInput, exercises []RoutineExerciseInput) (*domain.RoutineDetail, error)
	GetRoutine(ctx context.Context, routineID primitive.ObjectID) (*domain.RoutineDetail, error)
	ListRoutines(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Routine, error)
	UpdateRoutine(ctx context.Context, trainerID, routineID primitive.ObjectID, input RoutineInput) (*domain.Routine, error)
	AddExercise(ctx context.Context, trainerID, routineID primitive.ObjectID, exercise RoutineExerciseInput) (*domain.RoutineDetail, error)
	RemoveExercise(ctx context.Context, trainerID, routineID, linkID primitive.ObjectID) error
	DeleteRoutine(ctx context.Context, trainerID, routineID primitive.ObjectID) error
}

type routineService struct {
	routineRepo  repository.RoutineRepository
	exerciseRepo repository.ExerciseRepository
}

func NewRoutineService(routineRepo repository.RoutineRepository, exerciseRepo repository.ExerciseRepository) RoutineService {
	return &routineService{
		routineRepo:  routineRepo,
		exerciseRepo: exerciseRepo,
	}
}

func (in RoutineInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: routine name is required", ErrValidationFailed)
	}
	if in.DurationWeeks < 0 {
		return fmt.Errorf("%w: durationWeeks cannot be negative", ErrValidationFailed)
	}
	return validateLevel(in.Difficulty, false)
}

func (in RoutineExerciseInput) validate() error {
	if in.ExerciseID == primitive.NilObjectID {
		return fmt.Errorf("%w: exerciseId is required", ErrValidationFailed)
	}
	if in.Sets < 1 {
		return fmt.Errorf("%w: sets must be at least 1", ErrValidationFailed)
	}
	if in.RestSeconds < 0 {
		return fmt.Errorf("%w: restSeconds cannot be negative", ErrValidationFailed)
	}
	if in.Order != nil && *in.Order < 0 {
		return fmt.Errorf("%w: order cannot be negative", ErrValidationFailed)
	}
	return nil
}

func (s *routineService) CreateRoutine(ctx context.Context, trainerID primitive.ObjectID, input RoutineInput, exercises []RoutineExerciseInput) (*domain.RoutineDetail, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	for _, ex := range exercises {
		if err := ex.validate(); err != nil {
			return nil, err
		}
	}
	if err := s.ensureExercisesExist(ctx, exercises); err != nil {
		return nil, err
	}

	routine := &domain.Routine{
		TrainerID:     trainerID,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Goal:          input.Goal,
		Difficulty:    strings.ToLower(input.Difficulty),
		DurationWeeks: input.DurationWeeks,
	}
	routineID, err := s.routineRepo.Create(ctx, routine)
	if err != nil {
		return nil, err
	}

	links := make([]domain.RoutineExercise, 0, len(exercises))
	for i, ex := range exercises {
		links = append(links, toLink(routineID, ex, i))
	}
	if err := s.routineRepo.AddExercises(ctx, links); err != nil {
		// don't leave a routine without the exercises the caller asked for
		if delErr := s.routineRepo.Delete(ctx, routineID); delErr != nil {
			return nil, errors.Join(err, fmt.Errorf("removing routine %s: %w", routineID.Hex(), delErr))
		}
		return nil, err
	}
	return s.GetRoutine(ctx, routineID)
}

func toLink(routineID primitive.ObjectID, in RoutineExerciseInput, position int) domain.RoutineExercise {
	order := position
	if in.Order != nil {
		order = *in.Order
	}
	reps := strings.TrimSpace(in.Reps)
	if reps == "" {
		reps = "10"
	}
	return domain.RoutineExercise{
		RoutineID:   routineID,
		ExerciseID:  in.ExerciseID,
		Order:       order,
		Sets:        in.Sets,
		Reps:        reps,
		RestSeconds: in.RestSeconds,
		Notes:       in.Notes,
	}
}

func (s *routineService) ensureExercisesExist(ctx context.Context, exercises []RoutineExerciseInput) error {
	if len(exercises) == 0 {
		return nil
	}
	seen := make(map[primitive.ObjectID]bool, len(exercises))
	ids := make([]primitive.ObjectID, 0, len(exercises))
	for _, ex := range exercises {
		if !seen[ex.ExerciseID] {
			seen[ex.ExerciseID] = true
			ids = append(ids, ex.ExerciseID)
		}
	}
	found, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return ErrExerciseNotFound
	}
	return nil
}

// GetRoutine returns the routine and its links ordered by position, each
// enriched with its catalog entry.
func (s *routineService) GetRoutine(ctx context.Context, routineID primitive.ObjectID) (*domain.RoutineDetail, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}

	links, err := s.routineRepo.GetExercises(ctx, routineID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].Order < links[j].Order })

	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ExerciseID)
	}
	exercises, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*domain.Exercise, len(exercises))
	for i := range exercises {
		byID[exercises[i].ID] = &exercises[i]
	}

	detail := &domain.RoutineDetail{
		Routine:   *routine,
		Exercises: make([]domain.RoutineExerciseDetail, 0, len(links)),
	}
	for _, l := range links {
		detail.Exercises = append(detail.Exercises, domain.RoutineExerciseDetail{
			RoutineExercise: l,
			Exercise:        byID[l.ExerciseID],
		})
	}
	return detail, nil
}

func (s *routineService) ListRoutines(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Routine, error) {
	return s.routineRepo.GetByTrainerID(ctx, trainerID)
}

func (s *routineService) ownedRoutine(ctx context.Context, trainerID, routineID primitive.ObjectID) (*domain.Routine, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	if routine.TrainerID != trainerID {
		return nil, ErrRoutineAccessDenied
	}
	return routine, nil
}

func (s *routineService) UpdateRoutine(ctx context.Context, trainerID, routineID primitive.ObjectID, input RoutineInput) (*domain.Routine, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	routine, err := s.ownedRoutine(ctx, trainerID, routineID)
	if err != nil {
		return nil, err
	}

	routine.Name = strings.TrimSpace(input.Name)
	routine.Description = input.Description
	routine.Goal = input.Goal
	routine.Difficulty = strings.ToLower(input.Difficulty)
	routine.DurationWeeks = input.DurationWeeks

	if err := s.routineRepo.Update(ctx, routine); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	return routine, nil
}

func (s *routineService) AddExercise(ctx context.Context, trainerID, routineID primitive.ObjectID, exercise RoutineExerciseInput) (*domain.RoutineDetail, error) {
	if err := exercise.validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedRoutine(ctx, trainerID, routineID); err != nil {
		return nil, err
	}
	if err := s.ensureExercisesExist(ctx, []RoutineExerciseInput{exercise}); err != nil {
		return nil, err
	}

	count, err := s.routineRepo.CountExercises(ctx, routineID)
	if err != nil {
		return nil, err
	}
	link := toLink(routineID, exercise, int(count))
	if err := s.routineRepo.AddExercises(ctx, []domain.RoutineExercise{link}); err != nil {
		return nil, err
	}
	return s.GetRoutine(ctx, routineID)
}

func (s *routineService) RemoveExercise(ctx context.Context, trainerID, routineID, linkID primitive.ObjectID) error {
	if _, err := s.ownedRoutine(ctx, trainerID, routineID); err != nil {
		return err
	}
	if err := s.routineRepo.RemoveExercise(ctx, routineID, linkID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineLinkNotFound
		}
		return err
	}
	return nil
}

// DeleteRoutine removes the routine together with its exercise links.
func (s *routineService) DeleteRoutine(ctx context.Context, trainerID, routineID primitive.ObjectID) error {
	if _, err := s.ownedRoutine(ctx, trainerID, routineID); err != nil {
		return err
	}
	if err := s.routineRepo.Delete(ctx, routineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineNotFound
		}
		return err
	}
	return nil
}
