package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type GeneratorHandler struct {
	generatorService service.GeneratorService
	log              *logger.Logger
}

func NewGeneratorHandler(generatorService service.GeneratorService, log *logger.Logger) *GeneratorHandler {
	return &GeneratorHandler{generatorService: generatorService, log: log}
}

type GenerateRoutineRequest struct {
	Goal            string   `json:"goal"`
	Level           string   `json:"level" binding:"required"`
	DaysPerWeek     int      `json:"daysPerWeek" binding:"required"`
	DurationMinutes int      `json:"durationMinutes"`
	MuscleGroups    []string `json:"muscleGroups"`
	Equipment       []string `json:"equipment"`
}

type GeneratedRoutineResponse struct {
	ID             string                   `json:"id"`
	UserID         string                   `json:"userId"`
	Source         domain.GenerationSource  `json:"source"`
	Request        domain.GenerationRequest `json:"request"`
	Content        domain.GeneratedPlan     `json:"content"`
	SavedRoutineID *string                  `json:"savedRoutineId,omitempty"`
	CreatedAt      time.Time                `json:"createdAt"`
}

func MapGeneratedRoutineToResponse(gr *domain.GeneratedRoutine) GeneratedRoutineResponse {
	if gr == nil {
		return GeneratedRoutineResponse{}
	}
	resp := GeneratedRoutineResponse{
		ID:        gr.ID.Hex(),
		UserID:    gr.UserID.Hex(),
		Source:    gr.Source,
		Request:   gr.Request,
		Content:   gr.Content,
		CreatedAt: gr.CreatedAt,
	}
	if gr.SavedRoutineID != nil {
		saved := gr.SavedRoutineID.Hex()
		resp.SavedRoutineID = &saved
	}
	return resp
}

func MapGeneratedRoutinesToResponse(items []domain.GeneratedRoutine) []GeneratedRoutineResponse {
	responses := make([]GeneratedRoutineResponse, len(items))
	for i := range items {
		responses[i] = MapGeneratedRoutineToResponse(&items[i])
	}
	return responses
}

// GenerateRoutine godoc
// @Summary Generate a routine
// @Description Uses the AI model when available and the local generator otherwise.
// @Tags Generator
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateRoutineRequest true "Generation parameters"
// @Success 201 {object} GeneratedRoutineResponse
// @Failure 429 {object} gin.H "Rate limited"
// @Router /generated-routines [post]
func (h *GeneratorHandler) GenerateRoutine(c *gin.Context) {
	var req GenerateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	generated, err := h.generatorService.GenerateRoutine(c.Request.Context(), userID, domain.GenerationRequest{
		Goal:            req.Goal,
		Level:           req.Level,
		DaysPerWeek:     req.DaysPerWeek,
		DurationMinutes: req.DurationMinutes,
		MuscleGroups:    req.MuscleGroups,
		Equipment:       req.Equipment,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapGeneratedRoutineToResponse(generated))
}

// ListGeneratedRoutines godoc
// @Summary The caller's generated routines
// @Tags Generator
// @Produce json
// @Security BearerAuth
// @Success 200 {array} GeneratedRoutineResponse
// @Router /generated-routines [get]
func (h *GeneratorHandler) ListGeneratedRoutines(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.generatorService.ListGeneratedRoutines(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapGeneratedRoutinesToResponse(items))
}

// GetGeneratedRoutine godoc
// @Summary Get one generated routine
// @Tags Generator
// @Produce json
// @Security BearerAuth
// @Param generatedId path string true "Generated routine ID"
// @Success 200 {object} GeneratedRoutineResponse
// @Failure 403 {object} gin.H "Not the owner"
// @Router /generated-routines/{generatedId} [get]
func (h *GeneratorHandler) GetGeneratedRoutine(c *gin.Context) {
	id, ok := pathObjectID(c, "generatedId")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	generated, err := h.generatorService.GetGeneratedRoutine(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapGeneratedRoutineToResponse(generated))
}

// SaveGeneratedRoutine godoc
// @Summary Turn a generated routine into a trainer routine
// @Tags Generator
// @Produce json
// @Security BearerAuth
// @Param generatedId path string true "Generated routine ID"
// @Success 201 {object} RoutineResponse
// @Router /generated-routines/{generatedId}/save [post]
func (h *GeneratorHandler) SaveGeneratedRoutine(c *gin.Context) {
	id, ok := pathObjectID(c, "generatedId")
	if !ok {
		return
	}
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	detail, err := h.generatorService.SaveGeneratedRoutine(c.Request.Context(), trainerID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapRoutineDetailToResponse(detail))
}
