package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoutineHandler struct {
	routineService service.RoutineService
	log            *logger.Logger
}

func NewRoutineHandler(routineService service.RoutineService, log *logger.Logger) *RoutineHandler {
	return &RoutineHandler{routineService: routineService, log: log}
}

type RoutineRequest struct {
	Name          string                   `json:"name" binding:"required"`
	Description   string                   `json:"description"`
	Goal          string                   `json:"goal"`
	Difficulty    string                   `json:"difficulty"`
	DurationWeeks int                      `json:"durationWeeks" binding:"min=0"`
	Exercises     []RoutineExerciseRequest `json:"exercises" binding:"omitempty,dive"`
}

func (r RoutineRequest) toInput() service.RoutineInput {
	return service.RoutineInput{
		Name:          r.Name,
		Description:   r.Description,
		Goal:          r.Goal,
		Difficulty:    r.Difficulty,
		DurationWeeks: r.DurationWeeks,
	}
}

type RoutineExerciseRequest struct {
	ExerciseID  string `json:"exerciseId" binding:"required"`
	Order       *int   `json:"order" binding:"omitempty,min=0"`
	Sets        int    `json:"sets"`
	Reps        string `json:"reps"`
	RestSeconds int    `json:"restSeconds"`
	Notes       string `json:"notes"`
}

func (r RoutineExerciseRequest) toInput() (service.RoutineExerciseInput, error) {
	exerciseID, err := primitive.ObjectIDFromHex(r.ExerciseID)
	if err != nil {
		return service.RoutineExerciseInput{}, err
	}
	return service.RoutineExerciseInput{
		ExerciseID:  exerciseID,
		Order:       r.Order,
		Sets:        r.Sets,
		Reps:        r.Reps,
		RestSeconds: r.RestSeconds,
		Notes:       r.Notes,
	}, nil
}

type RoutineResponse struct {
	ID            string                    `json:"id"`
	TrainerID     string                    `json:"trainerId"`
	Name          string                    `json:"name"`
	Description   string                    `json:"description,omitempty"`
	Goal          string                    `json:"goal,omitempty"`
	Difficulty    string                    `json:"difficulty,omitempty"`
	DurationWeeks int                       `json:"durationWeeks,omitempty"`
	Exercises     []RoutineExerciseResponse `json:"exercises,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

type RoutineExerciseResponse struct {
	ID          string            `json:"id"`
	ExerciseID  string            `json:"exerciseId"`
	Order       int               `json:"order"`
	Sets        int               `json:"sets"`
	Reps        string            `json:"reps"`
	RestSeconds int               `json:"restSeconds"`
	Notes       string            `json:"notes,omitempty"`
	Exercise    *ExerciseResponse `json:"exercise,omitempty"`
}

func MapRoutineToResponse(r *domain.Routine) RoutineResponse {
	if r == nil {
		return RoutineResponse{}
	}
	return RoutineResponse{
		ID:            r.ID.Hex(),
		TrainerID:     r.TrainerID.Hex(),
		Name:          r.Name,
		Description:   r.Description,
		Goal:          r.Goal,
		Difficulty:    r.Difficulty,
		DurationWeeks: r.DurationWeeks,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// MapRoutineDetailToResponse always emits an exercises array, even when empty.
func MapRoutineDetailToResponse(d *domain.RoutineDetail) RoutineResponse {
	if d == nil {
		return RoutineResponse{}
	}
	resp := MapRoutineToResponse(&d.Routine)
	resp.Exercises = make([]RoutineExerciseResponse, len(d.Exercises))
	for i, link := range d.Exercises {
		item := RoutineExerciseResponse{
			ID:          link.ID.Hex(),
			ExerciseID:  link.ExerciseID.Hex(),
			Order:       link.Order,
			Sets:        link.Sets,
			Reps:        link.Reps,
			RestSeconds: link.RestSeconds,
			Notes:       link.Notes,
		}
		if link.Exercise != nil {
			ex := MapExerciseToResponse(link.Exercise)
			item.Exercise = &ex
		}
		resp.Exercises[i] = item
	}
	return resp
}

func MapRoutinesToResponse(routines []domain.Routine) []RoutineResponse {
	responses := make([]RoutineResponse, len(routines))
	for i := range routines {
		responses[i] = MapRoutineToResponse(&routines[i])
	}
	return responses
}

// CreateRoutine godoc
// @Summary Create a routine with its exercises
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param routine body RoutineRequest true "Routine"
// @Success 201 {object} RoutineResponse
// @Failure 404 {object} gin.H "Referenced exercise not found"
// @Router /routines [post]
func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	exercises := make([]service.RoutineExerciseInput, 0, len(req.Exercises))
	for _, item := range req.Exercises {
		input, err := item.toInput()
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format.")
			return
		}
		exercises = append(exercises, input)
	}

	detail, err := h.routineService.CreateRoutine(c.Request.Context(), trainerID, req.toInput(), exercises)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapRoutineDetailToResponse(detail))
}

// ListRoutines godoc
// @Summary List the trainer's routines
// @Tags Routines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RoutineResponse
// @Router /routines [get]
func (h *RoutineHandler) ListRoutines(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	routines, err := h.routineService.ListRoutines(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapRoutinesToResponse(routines))
}

// GetRoutine godoc
// @Summary Get a routine with its ordered exercises
// @Tags Routines
// @Produce json
// @Security BearerAuth
// @Param routineId path string true "Routine ID"
// @Success 200 {object} RoutineResponse
// @Router /routines/{routineId} [get]
func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}
	detail, err := h.routineService.GetRoutine(c.Request.Context(), routineID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapRoutineDetailToResponse(detail))
}

// UpdateRoutine godoc
// @Summary Update routine metadata
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param routineId path string true "Routine ID"
// @Param routine body RoutineRequest true "Routine (exercises ignored)"
// @Success 200 {object} RoutineResponse
// @Router /routines/{routineId} [put]
func (h *RoutineHandler) UpdateRoutine(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}
	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	routine, err := h.routineService.UpdateRoutine(c.Request.Context(), trainerID, routineID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapRoutineToResponse(routine))
}

// AddExercise godoc
// @Summary Append an exercise to a routine
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param routineId path string true "Routine ID"
// @Param exercise body RoutineExerciseRequest true "Exercise link"
// @Success 201 {object} RoutineResponse
// @Router /routines/{routineId}/exercises [post]
func (h *RoutineHandler) AddExercise(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}
	var req RoutineExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format.")
		return
	}
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	detail, err := h.routineService.AddExercise(c.Request.Context(), trainerID, routineID, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapRoutineDetailToResponse(detail))
}

// RemoveExercise godoc
// @Summary Remove an exercise link from a routine
// @Tags Routines
// @Security BearerAuth
// @Param routineId path string true "Routine ID"
// @Param linkId path string true "Routine exercise ID"
// @Success 204
// @Router /routines/{routineId}/exercises/{linkId} [delete]
func (h *RoutineHandler) RemoveExercise(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}
	linkID, ok := pathObjectID(c, "linkId")
	if !ok {
		return
	}
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.routineService.RemoveExercise(c.Request.Context(), trainerID, routineID, linkID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteRoutine godoc
// @Summary Delete a routine and its exercise links
// @Tags Routines
// @Security BearerAuth
// @Param routineId path string true "Routine ID"
// @Success 204
// @Router /routines/{routineId} [delete]
func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.routineService.DeleteRoutine(c.Request.Context(), trainerID, routineID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
