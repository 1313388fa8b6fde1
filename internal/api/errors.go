package api

import (
	"alcyxob/trainer-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP responses. action completes the generic
// "Failed to ..." message used for unexpected errors, which are logged.
func respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrInvalidToken):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrTrainerNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrDayNotFound),
		errors.Is(err, service.ErrBlockNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrPlanNotShared),
		errors.Is(err, service.ErrPublicPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrPlanInactive),
		errors.Is(err, service.ErrPaymentCancelled):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStorageNotConfigured):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		zap.L().Error("request failed",
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		abortWithError(c, http.StatusInternalServerError, "Failed to "+action+".")
	}
}
