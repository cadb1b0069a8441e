package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/services"
)

type errorResponse struct {
	Message string `json:"message"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrValidation), errors.Is(err, entities.ErrNotParticipant):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrIndexDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (r *routes) fail(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		r.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
		return c.JSON(status, errorResponse{Message: "Internal server error"})
	}
	return c.JSON(status, errorResponse{Message: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Message: msg})
}
