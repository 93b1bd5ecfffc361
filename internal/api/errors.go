package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/domain/entities"
)

// writeError maps domain errors to HTTP responses
func writeError(c echo.Context, logger *zap.Logger, err error) error {
	status, code := http.StatusInternalServerError, "internal_error"
	message := err.Error()

	switch {
	case errors.Is(err, entities.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, entities.ErrInvalidTag):
		status, code = http.StatusBadRequest, "invalid_tag"
	case errors.Is(err, entities.ErrNoSelection):
		status, code = http.StatusBadRequest, "no_selection"
	case errors.Is(err, entities.ErrNoValidSegments):
		status, code = http.StatusBadRequest, "no_valid_segments"
	case errors.Is(err, entities.ErrTooManySegments), errors.Is(err, entities.ErrCombinedTooLong):
		status, code = http.StatusRequestEntityTooLarge, "limit_exceeded"
	case errors.Is(err, entities.ErrTranscriptAlreadySet):
		status, code = http.StatusConflict, "conflict"
	default:
		logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
		message = "Internal server error"
	}

	return c.JSON(status, ErrorResponse{Error: code, Message: message})
}

func badRequest(c echo.Context, code, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: code, Message: message})
}
