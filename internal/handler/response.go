package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/apperror"
)

// respondError maps an application error to its HTTP status and a uniform
// {"error": ...} body. Field detail is attached only for validation errors;
// internal causes never leak.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	body := gin.H{"error": appErr.Message}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.JSON(statusFor(appErr), body)
}

func statusFor(appErr *apperror.AppError) int {
	switch {
	case errors.Is(appErr, apperror.ErrValidation), errors.Is(appErr, apperror.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(appErr, apperror.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(appErr, apperror.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
