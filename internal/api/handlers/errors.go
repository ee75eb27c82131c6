package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/art2music-api/internal/logger"
	"github.com/Conceptual-Machines/art2music-api/internal/palette"
	"github.com/Conceptual-Machines/art2music-api/internal/services"
	"github.com/Conceptual-Machines/art2music-api/internal/tracksearch"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, palette.ErrEmptyImage),
		errors.Is(err, palette.ErrInvalidImage),
		errors.Is(err, services.ErrInvalidDuration):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrPersistenceDisabled),
		errors.Is(err, services.ErrStorageDisabled),
		errors.Is(err, tracksearch.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body and logs server-side failures
func respondError(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error(msg, err, logger.WithContext(c))
		c.JSON(status, gin.H{
			"error":      msg,
			"request_id": c.GetString("request_id"),
		})
		return
	}

	c.JSON(status, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
	})
}
