package httpapi

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StatusOf HTTP-статус для ошибки движка
func StatusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrSlotUnavailable),
		errors.Is(err, model.ErrSlotNoLongerAvailable),
		errors.Is(err, model.ErrInvalidStateTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c echo.Context, err error) error {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
