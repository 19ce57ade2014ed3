package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/models"
)

// respondError maps a domain error to its HTTP status. Unrecognized
// errors become 500 with a generic message so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
	case errors.Is(err, apperr.ErrPrecondition):
		c.JSON(http.StatusPreconditionFailed, models.ErrorResponse{
			Error:   "Precondition failed",
			Message: err.Error(),
		})
	case errors.Is(err, apperr.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "Invalid state transition",
			Message: err.Error(),
		})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "Conflict",
			Message: err.Error(),
		})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "Not found",
			Message: err.Error(),
		})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Forbidden",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Internal error",
			Message: "An unexpected error occurred",
		})
	}
}
