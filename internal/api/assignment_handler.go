package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
	log               *logger.Logger
}

func NewAssignmentHandler(assignmentService service.AssignmentService, log *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService, log: log}
}

// AssignRoutineRequest dates are RFC 3339. A missing startDate means now.
type AssignRoutineRequest struct {
	RoutineID string     `json:"routineId" binding:"required"`
	ClientID  string     `json:"clientId" binding:"required"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Notes     string     `json:"notes"`
}

type AssignmentResponse struct {
	ID          string                  `json:"id"`
	RoutineID   string                  `json:"routineId"`
	ClientID    string                  `json:"clientId"`
	TrainerID   string                  `json:"trainerId"`
	Status      domain.AssignmentStatus `json:"status"`
	StartDate   time.Time               `json:"startDate"`
	EndDate     *time.Time              `json:"endDate,omitempty"`
	Notes       string                  `json:"notes,omitempty"`
	AssignedAt  time.Time               `json:"assignedAt"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
	CancelledAt *time.Time              `json:"cancelledAt,omitempty"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

func MapAssignmentToResponse(a *domain.Assignment) AssignmentResponse {
	if a == nil {
		return AssignmentResponse{}
	}
	return AssignmentResponse{
		ID:          a.ID.Hex(),
		RoutineID:   a.RoutineID.Hex(),
		ClientID:    a.ClientID.Hex(),
		TrainerID:   a.TrainerID.Hex(),
		Status:      a.Status,
		StartDate:   a.StartDate,
		EndDate:     a.EndDate,
		Notes:       a.Notes,
		AssignedAt:  a.AssignedAt,
		CompletedAt: a.CompletedAt,
		CancelledAt: a.CancelledAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func MapAssignmentsToResponse(assignments []domain.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, len(assignments))
	for i := range assignments {
		responses[i] = MapAssignmentToResponse(&assignments[i])
	}
	return responses
}

// AssignRoutine godoc
// @Summary Assign a routine to a client
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignment body AssignRoutineRequest true "Assignment"
// @Success 201 {object} AssignmentResponse
// @Failure 403 {object} gin.H "Routine belongs to another trainer"
// @Router /assignments [post]
func (h *AssignmentHandler) AssignRoutine(c *gin.Context) {
	var req AssignRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	routineID, err := primitive.ObjectIDFromHex(req.RoutineID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routineId format.")
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format.")
		return
	}
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	input := service.AssignRoutineInput{
		RoutineID: routineID,
		ClientID:  clientID,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
	}
	if req.StartDate != nil {
		input.StartDate = *req.StartDate
	}

	assignment, err := h.assignmentService.AssignRoutine(c.Request.Context(), trainerID, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapAssignmentToResponse(assignment))
}

// ListAssignments godoc
// @Summary List the caller's assignments
// @Description Trainers see the assignments they created, clients the ones they received.
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, completed or cancelled"
// @Success 200 {array} AssignmentResponse
// @Router /assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	status := domain.AssignmentStatus(c.Query("status"))

	var assignments []domain.Assignment
	if role == domain.RoleTrainer {
		assignments, err = h.assignmentService.ListForTrainer(c.Request.Context(), userID, status)
	} else {
		assignments, err = h.assignmentService.ListForClient(c.Request.Context(), userID, status)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapAssignmentsToResponse(assignments))
}

// GetAssignment godoc
// @Summary Get an assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} AssignmentResponse
// @Failure 403 {object} gin.H "Not a participant"
// @Router /assignments/{assignmentId} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	h.withAssignment(c, http.StatusOK, h.assignmentService.GetAssignment)
}

// CompleteAssignment godoc
// @Summary Mark an active assignment completed
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} AssignmentResponse
// @Failure 409 {object} gin.H "Assignment not active"
// @Router /assignments/{assignmentId}/complete [post]
func (h *AssignmentHandler) CompleteAssignment(c *gin.Context) {
	h.withAssignment(c, http.StatusOK, h.assignmentService.CompleteAssignment)
}

// CancelAssignment godoc
// @Summary Cancel an active assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} AssignmentResponse
// @Failure 409 {object} gin.H "Assignment not active"
// @Router /assignments/{assignmentId}/cancel [post]
func (h *AssignmentHandler) CancelAssignment(c *gin.Context) {
	h.withAssignment(c, http.StatusOK, h.assignmentService.CancelAssignment)
}

func (h *AssignmentHandler) withAssignment(
	c *gin.Context,
	status int,
	call func(ctx context.Context, userID, assignmentID primitive.ObjectID) (*domain.Assignment, error),
) {
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	assignment, err := call(c.Request.Context(), userID, assignmentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, MapAssignmentToResponse(assignment))
}
