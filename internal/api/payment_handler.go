package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxWebhookBodyBytes caps the webhook payload read into memory.
const maxWebhookBodyBytes = 64 << 10

type PaymentHandler struct {
	paymentService service.PaymentService
	log            *logger.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, log: log}
}

type CreatePaymentRequest struct {
	TrainerID   string `json:"trainerId" binding:"required"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type PaymentResponse struct {
	ID                string               `json:"id"`
	ClientID          string               `json:"clientId"`
	TrainerID         string               `json:"trainerId"`
	AmountCents       int64                `json:"amountCents"`
	Currency          string               `json:"currency"`
	Description       string               `json:"description,omitempty"`
	Status            domain.PaymentStatus `json:"status"`
	ProcessorIntentID string               `json:"processorIntentId,omitempty"`
	ClientSecret      string               `json:"clientSecret,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	ConfirmedAt       *time.Time           `json:"confirmedAt,omitempty"`
	CancelledAt       *time.Time           `json:"cancelledAt,omitempty"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

func MapPaymentToResponse(p *domain.Payment) PaymentResponse {
	if p == nil {
		return PaymentResponse{}
	}
	return PaymentResponse{
		ID:                p.ID.Hex(),
		ClientID:          p.ClientID.Hex(),
		TrainerID:         p.TrainerID.Hex(),
		AmountCents:       p.AmountCents,
		Currency:          p.Currency,
		Description:       p.Description,
		Status:            p.Status,
		ProcessorIntentID: p.ProcessorIntentID,
		CreatedAt:         p.CreatedAt,
		ConfirmedAt:       p.ConfirmedAt,
		CancelledAt:       p.CancelledAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func MapPaymentsToResponse(payments []domain.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = MapPaymentToResponse(&payments[i])
	}
	return responses
}

// CreatePayment godoc
// @Summary Start a payment to a trainer
// @Description The client secret is only returned here, when a processor is configured.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payment body CreatePaymentRequest true "Payment"
// @Success 201 {object} PaymentResponse
// @Failure 502 {object} gin.H "Processor error"
// @Router /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
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

	result, err := h.paymentService.CreatePayment(c.Request.Context(), clientID, service.CreatePaymentInput{
		TrainerID:   trainerID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := MapPaymentToResponse(result.Payment)
	resp.ClientSecret = result.ClientSecret
	c.JSON(http.StatusCreated, resp)
}

// ListPayments godoc
// @Summary Payments where the caller is client or trainer
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PaymentResponse
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	payments, err := h.paymentService.ListPayments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapPaymentsToResponse(payments))
}

// GetPayment godoc
// @Summary Get a payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} PaymentResponse
// @Router /payments/{paymentId} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	h.withPayment(c, h.paymentService.GetPayment)
}

// ConfirmPayment godoc
// @Summary Confirm receipt of a pending payment (trainer, no processor configured)
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} PaymentResponse
// @Failure 403 {object} gin.H "Only the trainer confirms"
// @Failure 409 {object} gin.H "Payment was cancelled or is confirmed by the processor"
// @Router /payments/{paymentId}/confirm [post]
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	h.withPayment(c, h.paymentService.ConfirmPayment)
}

// CancelPayment godoc
// @Summary Cancel a pending payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} PaymentResponse
// @Failure 409 {object} gin.H "Payment already confirmed or cancelled"
// @Router /payments/{paymentId}/cancel [post]
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	h.withPayment(c, h.paymentService.CancelPayment)
}

func (h *PaymentHandler) withPayment(c *gin.Context, call func(context.Context, primitive.ObjectID, primitive.ObjectID) (*domain.Payment, error)) {
	paymentID, ok := pathObjectID(c, "paymentId")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	p, err := call(c.Request.Context(), userID, paymentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapPaymentToResponse(p))
}

// Webhook godoc
// @Summary Payment processor webhook
// @Description Verified with the Stripe-Signature header. Unauthenticated.
// @Tags Payments
// @Accept json
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Invalid signature"
// @Failure 503 {object} gin.H "Processor not configured"
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read request body.")
		return
	}

	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
