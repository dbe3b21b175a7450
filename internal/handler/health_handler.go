package handler

import (
	"net/http"

	"notes-service/pkg/database"
	"notes-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Health handles the liveness endpoint
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "notes-service",
	})
}

// Ready reports whether the database answers
func (h *Handler) Ready(c echo.Context) error {
	if err := database.Ping(c.Request().Context(), h.db); err != nil {
		logger.FromContext(c.Request().Context()).Warn("Readiness check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
