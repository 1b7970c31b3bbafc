package api

import (
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/payment"
	"alcyxob/fitcoach/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type errorStatus struct {
	err    error
	status int
}

// errorStatuses is checked in order; the first errors.Is match wins.
var errorStatuses = []errorStatus{
	{service.ErrValidationFailed, http.StatusBadRequest},
	{service.ErrInvalidObjectKey, http.StatusBadRequest},
	{service.ErrNotATrainer, http.StatusBadRequest},
	{service.ErrNotAClient, http.StatusBadRequest},
	{payment.ErrInvalidSignature, http.StatusBadRequest},

	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},

	{service.ErrExerciseAccessDenied, http.StatusForbidden},
	{service.ErrRoutineAccessDenied, http.StatusForbidden},
	{service.ErrAssignmentAccessDenied, http.StatusForbidden},
	{service.ErrMessageAccessDenied, http.StatusForbidden},
	{service.ErrReviewAccessDenied, http.StatusForbidden},
	{service.ErrPaymentAccessDenied, http.StatusForbidden},
	{service.ErrSubscriptionAccessDenied, http.StatusForbidden},
	{service.ErrGeneratedRoutineAccessDenied, http.StatusForbidden},

	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrClientNotFound, http.StatusNotFound},
	{service.ErrTrainerNotFound, http.StatusNotFound},
	{service.ErrReceiverNotFound, http.StatusNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrRoutineNotFound, http.StatusNotFound},
	{service.ErrRoutineLinkNotFound, http.StatusNotFound},
	{service.ErrAssignmentNotFound, http.StatusNotFound},
	{service.ErrMessageNotFound, http.StatusNotFound},
	{service.ErrReviewNotFound, http.StatusNotFound},
	{service.ErrPaymentNotFound, http.StatusNotFound},
	{service.ErrSubscriptionNotFound, http.StatusNotFound},
	{service.ErrGeneratedRoutineNotFound, http.StatusNotFound},

	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrClientAlreadyAssigned, http.StatusConflict},
	{service.ErrAssignmentNotActive, http.StatusConflict},
	{service.ErrReviewExists, http.StatusConflict},
	{service.ErrPaymentNotPending, http.StatusConflict},
	{service.ErrConfirmedByProcessor, http.StatusConflict},
	{service.ErrSubscriptionExists, http.StatusConflict},
	{service.ErrSubscriptionInactive, http.StatusConflict},

	{service.ErrPaymentProcessorFailure, http.StatusBadGateway},
	{service.ErrProcessorNotConfigured, http.StatusServiceUnavailable},
	{service.ErrStorageUnavailable, http.StatusServiceUnavailable},
}

func statusForError(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status
		}
	}
	return http.StatusInternalServerError
}

// respondError maps a service error onto an HTTP status and aborts. Server
// side failures are logged and hidden behind a generic message.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Errorw("request failed", "path", c.FullPath(), "error", err)
		abortWithError(c, status, "An unexpected error occurred.")
		return
	}
	abortWithError(c, status, err.Error())
}
