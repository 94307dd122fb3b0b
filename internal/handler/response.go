package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voyago/internal/repository"
	"voyago/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrDestinationRequired),
		errors.Is(err, service.ErrInvalidPurchase),
		errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest

	// Credit gate
	case errors.Is(err, service.ErrInsufficientCredits):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrGenerationInProgress):
		return http.StatusConflict

	// Default to internal server error (generation/persistence failures included)
	default:
		return http.StatusInternalServerError
	}
}
