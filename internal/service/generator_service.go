package service

import (
	"alcyxob/fitcoach/internal/ai"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	catalogSampleLimit     = 200
	defaultSessionMinutes  = 45
	maxSessionMinutes      = 240
	minExercisesPerSession = 3
	maxExercisesPerSession = 8
)

var (
	ErrGeneratedRoutineNotFound     = errors.New("generated routine not found")
	ErrGeneratedRoutineAccessDenied = errors.New("access denied to this generated routine")
	ErrInvalidLevel                 = fmt.Errorf("%w: level must be beginner, intermediate or advanced", ErrValidationFailed)
	ErrInvalidDaysPerWeek           = fmt.Errorf("%w: daysPerWeek must be between 1 and 7", ErrValidationFailed)
	ErrInvalidDuration              = fmt.Errorf("%w: durationMinutes must be between 1 and %d", ErrValidationFailed, maxSessionMinutes)
)

// prescription is the fixed sets/reps/rest per level used by the local generator.
type prescription struct {
	Sets        int
	Reps        string
	RestSeconds int
}

var prescriptions = map[string]prescription{
	domain.LevelBeginner:     {Sets: 3, Reps: "12-15", RestSeconds: 60},
	domain.LevelIntermediate: {Sets: 4, Reps: "8-12", RestSeconds: 90},
	domain.LevelAdvanced:     {Sets: 5, Reps: "6-8", RestSeconds: 120},
}

// Used when the catalog is empty.
var builtinExercises = []domain.Exercise{
	{Name: "Push-up", MuscleGroup: "Chest"},
	{Name: "Bodyweight Squat", MuscleGroup: "Legs"},
	{Name: "Inverted Row", MuscleGroup: "Back"},
	{Name: "Plank", MuscleGroup: "Core"},
	{Name: "Walking Lunge", MuscleGroup: "Legs"},
	{Name: "Pike Push-up", MuscleGroup: "Shoulders"},
	{Name: "Glute Bridge", MuscleGroup: "Glutes"},
	{Name: "Mountain Climber", MuscleGroup: "Core"},
}

type GeneratorService interface {
	GenerateRoutine(ctx context.Context, userID primitive.ObjectID, req domain.GenerationRequest) (*domain.GeneratedRoutine, error)
	ListGeneratedRoutines(ctx context.Context, userID primitive.ObjectID) ([]domain.GeneratedRoutine, error)
	GetGeneratedRoutine(ctx context.Context, userID, id primitive.ObjectID) (*domain.GeneratedRoutine, error)
	SaveGeneratedRoutine(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.RoutineDetail, error)
}

type generatorService struct {
	generatedRepo  repository.GeneratedRoutineRepository
	exerciseRepo   repository.ExerciseRepository
	routineService RoutineService
	ai             ai.Generator // nil disables the remote call
	aiTimeout      time.Duration
	log            *logger.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

func NewGeneratorService(
	generatedRepo repository.GeneratedRoutineRepository,
	exerciseRepo repository.ExerciseRepository,
	routineService RoutineService,
	aiGenerator ai.Generator,
	aiTimeout time.Duration,
	log *logger.Logger,
) GeneratorService {
	return newGeneratorService(generatedRepo, exerciseRepo, routineService, aiGenerator, aiTimeout, log,
		rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

func newGeneratorService(
	generatedRepo repository.GeneratedRoutineRepository,
	exerciseRepo repository.ExerciseRepository,
	routineService RoutineService,
	aiGenerator ai.Generator,
	aiTimeout time.Duration,
	log *logger.Logger,
	rng *rand.Rand,
) *generatorService {
	if aiTimeout <= 0 {
		aiTimeout = 30 * time.Second
	}
	return &generatorService{
		generatedRepo:  generatedRepo,
		exerciseRepo:   exerciseRepo,
		routineService: routineService,
		ai:             aiGenerator,
		aiTimeout:      aiTimeout,
		log:            log,
		rng:            rng,
	}
}

func normalizeRequest(req domain.GenerationRequest) (domain.GenerationRequest, error) {
	req.Level = strings.ToLower(strings.TrimSpace(req.Level))
	if _, ok := prescriptions[req.Level]; !ok {
		return req, ErrInvalidLevel
	}
	if req.DaysPerWeek < 1 || req.DaysPerWeek > 7 {
		return req, ErrInvalidDaysPerWeek
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = defaultSessionMinutes
	}
	if req.DurationMinutes < 0 || req.DurationMinutes > maxSessionMinutes {
		return req, ErrInvalidDuration
	}
	req.Goal = strings.TrimSpace(req.Goal)
	if req.Goal == "" {
		req.Goal = "general fitness"
	}
	return req, nil
}

func (s *generatorService) GenerateRoutine(ctx context.Context, userID primitive.ObjectID, req domain.GenerationRequest) (*domain.GeneratedRoutine, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	catalog, err := s.exerciseRepo.List(ctx, domain.ExerciseFilter{Limit: catalogSampleLimit})
	if err != nil {
		return nil, err
	}

	source := domain.SourceLocal
	plan, aiErr := s.generateWithAI(ctx, req, catalog)
	if aiErr == nil {
		source = domain.SourceAI
		linkCatalog(plan, catalog, prescriptions[req.Level])
	} else {
		if s.ai != nil {
			s.log.Warnw("AI generation failed, using local generator", "userId", userID.Hex(), "error", aiErr)
		}
		plan = s.generateLocal(req, catalog)
	}

	gr := &domain.GeneratedRoutine{
		UserID:  userID,
		Source:  source,
		Request: req,
		Content: *plan,
	}
	id, err := s.generatedRepo.Create(ctx, gr)
	if err != nil {
		return nil, err
	}
	gr.ID = id

	metrics.RecordGeneratedRoutine(string(source))
	return gr, nil
}

var errAIDisabled = errors.New("AI generator not configured")

func (s *generatorService) generateWithAI(ctx context.Context, req domain.GenerationRequest, catalog []domain.Exercise) (*domain.GeneratedPlan, error) {
	if s.ai == nil {
		return nil, errAIDisabled
	}
	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()
	return s.ai.GeneratePlan(aiCtx, req, catalog)
}

// linkCatalog attaches catalog ids to exercises whose names match and fills
// missing prescriptions from the level table.
func linkCatalog(plan *domain.GeneratedPlan, catalog []domain.Exercise, p prescription) {
	byName := make(map[string]*domain.Exercise, len(catalog))
	for i := range catalog {
		byName[strings.ToLower(strings.TrimSpace(catalog[i].Name))] = &catalog[i]
	}
	for d := range plan.Days {
		if plan.Days[d].Day == 0 {
			plan.Days[d].Day = d + 1
		}
		for e := range plan.Days[d].Exercises {
			ex := &plan.Days[d].Exercises[e]
			if match, ok := byName[strings.ToLower(strings.TrimSpace(ex.Name))]; ok {
				id := match.ID
				ex.ExerciseID = &id
				if ex.MuscleGroup == "" {
					ex.MuscleGroup = match.MuscleGroup
				}
			}
			if ex.Sets < 1 {
				ex.Sets = p.Sets
			}
			if strings.TrimSpace(ex.Reps) == "" {
				ex.Reps = p.Reps
			}
			if ex.RestSeconds <= 0 {
				ex.RestSeconds = p.RestSeconds
			}
		}
	}
}

func exercisesPerSession(durationMinutes int) int {
	n := durationMinutes / 10
	if n < minExercisesPerSession {
		return minExercisesPerSession
	}
	if n > maxExercisesPerSession {
		return maxExercisesPerSession
	}
	return n
}

// generateLocal samples catalog exercises at random and applies the level's
// fixed prescription.
func (s *generatorService) generateLocal(req domain.GenerationRequest, catalog []domain.Exercise) *domain.GeneratedPlan {
	if len(catalog) == 0 {
		catalog = builtinExercises
	}
	p := prescriptions[req.Level]
	perDay := exercisesPerSession(req.DurationMinutes)

	candidates := filterCandidates(catalog, req.MuscleGroups, req.Equipment, perDay)

	plan := &domain.GeneratedPlan{
		Name:        fmt.Sprintf("%s %d-day %s plan", capitalize(req.Level), req.DaysPerWeek, req.Goal),
		Description: fmt.Sprintf("%d sessions per week, about %d minutes each.", req.DaysPerWeek, req.DurationMinutes),
		Days:        make([]domain.GeneratedDay, 0, req.DaysPerWeek),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for day := 1; day <= req.DaysPerWeek; day++ {
		focus := "Full body"
		if len(req.MuscleGroups) > 0 {
			focus = req.MuscleGroups[(day-1)%len(req.MuscleGroups)]
		}

		picks := s.rng.Perm(len(candidates))
		if len(picks) > perDay {
			picks = picks[:perDay]
		}
		exercises := make([]domain.GeneratedExercise, 0, len(picks))
		for _, i := range picks {
			ex := candidates[i]
			ge := domain.GeneratedExercise{
				Name:        ex.Name,
				MuscleGroup: ex.MuscleGroup,
				Sets:        p.Sets,
				Reps:        p.Reps,
				RestSeconds: p.RestSeconds,
			}
			if ex.ID != primitive.NilObjectID {
				id := ex.ID
				ge.ExerciseID = &id
			}
			exercises = append(exercises, ge)
		}
		plan.Days = append(plan.Days, domain.GeneratedDay{Day: day, Focus: focus, Exercises: exercises})
	}
	return plan
}

// filterCandidates narrows the catalog to the requested muscle groups and
// equipment, widening back out when too few exercises remain.
func filterCandidates(catalog []domain.Exercise, muscleGroups, equipment []string, want int) []domain.Exercise {
	filtered := catalog
	if len(muscleGroups) > 0 {
		if byMuscle := matching(filtered, muscleGroups, func(e domain.Exercise) string { return e.MuscleGroup }); len(byMuscle) >= want {
			filtered = byMuscle
		}
	}
	if len(equipment) > 0 {
		if byEquipment := matching(filtered, equipment, func(e domain.Exercise) string { return e.Equipment }); len(byEquipment) >= want {
			filtered = byEquipment
		}
	}
	return filtered
}

func matching(exercises []domain.Exercise, values []string, field func(domain.Exercise) string) []domain.Exercise {
	wanted := make(map[string]bool, len(values))
	for _, v := range values {
		wanted[strings.ToLower(strings.TrimSpace(v))] = true
	}
	var out []domain.Exercise
	for _, e := range exercises {
		if wanted[strings.ToLower(strings.TrimSpace(field(e)))] {
			out = append(out, e)
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (s *generatorService) ListGeneratedRoutines(ctx context.Context, userID primitive.ObjectID) ([]domain.GeneratedRoutine, error) {
	return s.generatedRepo.GetByUserID(ctx, userID)
}

func (s *generatorService) GetGeneratedRoutine(ctx context.Context, userID, id primitive.ObjectID) (*domain.GeneratedRoutine, error) {
	gr, err := s.generatedRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGeneratedRoutineNotFound
		}
		return nil, err
	}
	if gr.UserID != userID {
		return nil, ErrGeneratedRoutineAccessDenied
	}
	return gr, nil
}

// SaveGeneratedRoutine turns a snapshot into a trainer-owned routine. Only
// catalog-backed exercises become links. Saving twice returns the first routine.
func (s *generatorService) SaveGeneratedRoutine(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.RoutineDetail, error) {
	gr, err := s.GetGeneratedRoutine(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}
	if gr.SavedRoutineID != nil {
		detail, err := s.routineService.GetRoutine(ctx, *gr.SavedRoutineID)
		if err == nil || !errors.Is(err, ErrRoutineNotFound) {
			return detail, err
		}
		// the saved routine was deleted since; save again
	}

	inCatalog, err := s.catalogIDs(ctx, gr.Content)
	if err != nil {
		return nil, err
	}

	var items []RoutineExerciseInput
	for _, day := range gr.Content.Days {
		for _, ex := range day.Exercises {
			if ex.ExerciseID == nil || !inCatalog[*ex.ExerciseID] {
				continue
			}
			notes := fmt.Sprintf("Day %d", day.Day)
			if day.Focus != "" {
				notes += " (" + day.Focus + ")"
			}
			if ex.Notes != "" {
				notes += ": " + ex.Notes
			}
			sets := ex.Sets
			if sets < 1 {
				sets = 1
			}
			rest := ex.RestSeconds
			if rest < 0 {
				rest = 0
			}
			items = append(items, RoutineExerciseInput{
				ExerciseID:  *ex.ExerciseID,
				Sets:        sets,
				Reps:        ex.Reps,
				RestSeconds: rest,
				Notes:       notes,
			})
		}
	}

	name := gr.Content.Name
	if strings.TrimSpace(name) == "" {
		name = "Generated routine"
	}
	detail, err := s.routineService.CreateRoutine(ctx, trainerID, RoutineInput{
		Name:        name,
		Description: gr.Content.Description,
		Goal:        gr.Request.Goal,
		Difficulty:  gr.Request.Level,
	}, items)
	if err != nil {
		return nil, err
	}

	if err := s.generatedRepo.SetSavedRoutine(ctx, gr.ID, detail.ID); err != nil {
		s.log.Warnw("failed to record saved routine on snapshot", "generatedId", gr.ID.Hex(), "routineId", detail.ID.Hex(), "error", err)
	}
	return detail, nil
}

// catalogIDs reports which linked exercises of a plan still exist. Exercises
// deleted after generation are dropped from the saved routine.
func (s *generatorService) catalogIDs(ctx context.Context, plan domain.GeneratedPlan) (map[primitive.ObjectID]bool, error) {
	var ids []primitive.ObjectID
	for _, day := range plan.Days {
		for _, ex := range day.Exercises {
			if ex.ExerciseID != nil {
				ids = append(ids, *ex.ExerciseID)
			}
		}
	}
	found := make(map[primitive.ObjectID]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	exercises, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range exercises {
		found[e.ID] = true
	}
	return found, nil
}
