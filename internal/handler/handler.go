package handler

import (
	"errors"
	"net/http"

	"estimator-service/internal/updater"
	"estimator-service/pkg/inflow"
	"estimator-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler carries the dependencies shared by the HTTP handlers
type Handler struct {
	Inflow  *inflow.Client
	Updater *updater.Updater
}

// New creates a Handler
func New(client *inflow.Client, up *updater.Updater) *Handler {
	return &Handler{Inflow: client, Updater: up}
}

// writeError maps the error taxonomy onto the HTTP boundary. Upstream
// statuses pass through; everything unrecognized is a 500.
func writeError(c echo.Context, err error) error {
	log := logger.FromContext(c)

	var notFound *inflow.NotFoundError
	if errors.As(err, &notFound) {
		log.Warn("Entity not found", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
	}

	var conflict *inflow.ConflictError
	if errors.As(err, &conflict) {
		log.Warn("Update rejected after conflict retry", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Error()})
	}

	var upstream *inflow.UpstreamError
	if errors.As(err, &upstream) {
		log.Error("Inventory API error",
			zap.Int("status", upstream.Status),
			zap.Error(err))
		return c.JSON(upstream.Status, echo.Map{
			"error":   "inventory API error",
			"details": upstream.Body,
		})
	}

	log.Error("Unexpected error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected error"})
}
