// Package handler provides HTTP handlers for statistics endpoints.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/response"
	"github.com/festy23/ctf_platform/internal/statistics/service"
)

// Handler handles HTTP requests for statistics endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new statistics handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GetProblemsStatistics handles GET /admin/statistics/problems request.
// @Summary Get solve statistics for problems
// @Tags Statistics
// @Produce json
// @Success 200 {object} model.ProblemsStatisticsResponse
// @Failure 500 {object} response.Envelope
// @Router /admin/statistics/problems [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetProblemsStatistics(c *gin.Context) {
	resp, err := h.service.GetProblemsStatistics(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, resp)
}

// GetOverview handles GET /admin/statistics/overview request.
// @Summary Get competition totals
// @Tags Statistics
// @Produce json
// @Success 200 {object} model.Overview
// @Failure 500 {object} response.Envelope
// @Router /admin/statistics/overview [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetOverview(c *gin.Context) {
	resp, err := h.service.GetOverview(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, resp)
}
