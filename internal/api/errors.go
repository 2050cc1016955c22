package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-membership/internal/repository"
	"alcyxob/gym-membership/internal/service"
)

// statusFor maps service and repository errors to HTTP status codes.
// Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrPhotoKeyMismatch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrPhotoNotUploaded),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrOwnerRequired):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNoMeasurements):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeServiceError aborts with the mapped status. Internal errors are
// logged and replaced with a generic message.
func writeServiceError(c *gin.Context, logger *slog.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("request failed",
			"id", c.GetString(ContextRequestIDKey),
			"path", c.FullPath(),
			"error", err,
		)
		abortWithError(c, code, "An unexpected error occurred")
		return
	}
	abortWithError(c, code, err.Error())
}
