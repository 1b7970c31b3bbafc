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

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	log                 *logger.Logger
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, log: log}
}

type SubscribeRequest struct {
	TrainerID       string                 `json:"trainerId" binding:"required"`
	Plan            string                 `json:"plan"`
	PriceCents      int64                  `json:"priceCents"`
	Currency        string                 `json:"currency"`
	BillingInterval domain.BillingInterval `json:"billingInterval"`
}

type SubscriptionResponse struct {
	ID              string                 `json:"id"`
	ClientID        string                 `json:"clientId"`
	TrainerID       string                 `json:"trainerId"`
	Plan            string                 `json:"plan"`
	PriceCents      int64                  `json:"priceCents"`
	Currency        string                 `json:"currency"`
	BillingInterval domain.BillingInterval `json:"billingInterval"`
	Active          bool                   `json:"active"`
	StartedAt       time.Time              `json:"startedAt"`
	CancelledAt     *time.Time             `json:"cancelledAt,omitempty"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func MapSubscriptionToResponse(s *domain.Subscription) SubscriptionResponse {
	if s == nil {
		return SubscriptionResponse{}
	}
	return SubscriptionResponse{
		ID:              s.ID.Hex(),
		ClientID:        s.ClientID.Hex(),
		TrainerID:       s.TrainerID.Hex(),
		Plan:            s.Plan,
		PriceCents:      s.PriceCents,
		Currency:        s.Currency,
		BillingInterval: s.BillingInterval,
		Active:          s.Active,
		StartedAt:       s.StartedAt,
		CancelledAt:     s.CancelledAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func MapSubscriptionsToResponse(subs []domain.Subscription) []SubscriptionResponse {
	responses := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		responses[i] = MapSubscriptionToResponse(&subs[i])
	}
	return responses
}

// Subscribe godoc
// @Summary Subscribe to a trainer's plan
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subscription body SubscribeRequest true "Subscription"
// @Success 201 {object} SubscriptionResponse
// @Failure 409 {object} gin.H "Already subscribed"
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainerId format.")
		return
	}
	clientID, ok := currentUser(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), clientID, service.SubscribeInput{
		TrainerID:       trainerID,
		Plan:            req.Plan,
		PriceCents:      req.PriceCents,
		Currency:        req.Currency,
		BillingInterval: req.BillingInterval,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapSubscriptionToResponse(sub))
}

// ListSubscriptions godoc
// @Summary Subscriptions where the caller is client or trainer
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active subscriptions"
// @Success 200 {array} SubscriptionResponse
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	subs, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), userID, c.Query("active") == "true")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapSubscriptionsToResponse(subs))
}

// CancelSubscription godoc
// @Summary Cancel an active subscription
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param subscriptionId path string true "Subscription ID"
// @Success 200 {object} SubscriptionResponse
// @Failure 409 {object} gin.H "Already cancelled"
// @Router /subscriptions/{subscriptionId}/cancel [post]
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	subID, ok := pathObjectID(c, "subscriptionId")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.CancelSubscription(c.Request.Context(), userID, subID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapSubscriptionToResponse(sub))
}
