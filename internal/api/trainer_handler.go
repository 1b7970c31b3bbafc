package api

import (
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TrainerHandler serves the trainer's client roster.
type TrainerHandler struct {
	userService service.UserService
	log         *logger.Logger
}

func NewTrainerHandler(userService service.UserService, log *logger.Logger) *TrainerHandler {
	return &TrainerHandler{userService: userService, log: log}
}

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

// AddClientByEmail godoc
// @Summary Add a client to the trainer's roster
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body AddClientRequest true "Client email"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "Client not found"
// @Failure 409 {object} gin.H "Client already has a trainer"
// @Router /trainer/clients [post]
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	client, err := h.userService.AddClientByEmail(c.Request.Context(), trainerID, req.ClientEmail)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients godoc
// @Summary List the trainer's clients
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /trainer/clients [get]
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	clients, err := h.userService.GetManagedClients(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}
