package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	log             *logger.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, log *logger.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, log: log}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseRequest is the body for both creating and replacing an exercise.
type ExerciseRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	MuscleGroup      string `json:"muscleGroup"`      // e.g., "Chest", "Legs"
	ExecutionTechnic string `json:"executionTechnic"` // How to do it
	Applicability    string `json:"applicability"`    // e.g., "Home", "Gym"
	Difficulty       string `json:"difficulty"`
	Equipment        string `json:"equipment"`
	VideoURL         string `json:"videoUrl" binding:"omitempty,url"`
}

func (r ExerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		Name:             r.Name,
		Description:      r.Description,
		MuscleGroup:      r.MuscleGroup,
		ExecutionTechnic: r.ExecutionTechnic,
		Applicability:    r.Applicability,
		Difficulty:       r.Difficulty,
		Equipment:        r.Equipment,
		VideoURL:         r.VideoURL,
	}
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	TrainerID        string    `json:"trainerId"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	MuscleGroup      string    `json:"muscleGroup,omitempty"`
	ExecutionTechnic string    `json:"executionTechnic,omitempty"`
	Applicability    string    `json:"applicability,omitempty"`
	Difficulty       string    `json:"difficulty,omitempty"`
	Equipment        string    `json:"equipment,omitempty"`
	VideoURL         string    `json:"videoUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:               ex.ID.Hex(),
		TrainerID:        ex.TrainerID.Hex(),
		Name:             ex.Name,
		Description:      ex.Description,
		MuscleGroup:      ex.MuscleGroup,
		ExecutionTechnic: ex.ExecutionTechnic,
		Applicability:    ex.Applicability,
		Difficulty:       ex.Difficulty,
		Equipment:        ex.Equipment,
		VideoURL:         ex.VideoURL,
		CreatedAt:        ex.CreatedAt,
		UpdatedAt:        ex.UpdatedAt,
	}
}

func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Description Adds an exercise to the shared catalog, owned by the authenticated trainer.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 403 {object} gin.H "Forbidden (not a trainer)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), trainerID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises godoc
// @Summary Browse the exercise catalog
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param muscleGroup query string false "Muscle group"
// @Param difficulty query string false "Difficulty"
// @Param search query string false "Name substring"
// @Param mine query bool false "Only the caller's exercises"
// @Param limit query int false "Maximum results"
// @Success 200 {array} ExerciseResponse "List of exercises"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	filter := domain.ExerciseFilter{
		MuscleGroup: c.Query("muscleGroup"),
		Difficulty:  c.Query("difficulty"),
		Search:      c.Query("search"),
	}

	if c.Query("mine") == "true" {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		filter.TrainerID = &userID
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExercise godoc
// @Summary Get a single exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} gin.H
// @Router /exercises/{exerciseId} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// UpdateExercise godoc
// @Summary Replace an exercise owned by the caller
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 200 {object} ExerciseResponse
// @Failure 403 {object} gin.H "Not the owner"
// @Router /exercises/{exerciseId} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), trainerID, exerciseID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise godoc
// @Summary Delete an exercise owned by the caller
// @Tags Exercises
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 204
// @Failure 403 {object} gin.H "Not the owner"
// @Router /exercises/{exerciseId} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), trainerID, exerciseID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
