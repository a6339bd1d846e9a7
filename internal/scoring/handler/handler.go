// Package handler provides HTTP handlers for leaderboard endpoints.
package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/response"
	"github.com/festy23/ctf_platform/internal/scoring/model"
	"github.com/festy23/ctf_platform/internal/scoring/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler handles HTTP requests for leaderboard endpoints.
type Handler struct {
	leaderboard service.Leaderboard
	logger      *zap.SugaredLogger
}

// New creates a new leaderboard handler instance.
func New(lb service.Leaderboard, logger *zap.SugaredLogger) *Handler {
	return &Handler{leaderboard: lb, logger: logger}
}

// Rank handles GET /rank/:type request.
// @Summary Get the user or team leaderboard
// @Tags Rank
// @Produce json
// @Param type path string true "users or teams"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Unknown leaderboard type"
// @Failure 401 {object} response.Envelope "Not logged in"
// @Router /rank/{type} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Rank(c *gin.Context) {
	kind, err := model.ParseKind(c.Param("type"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	switch kind {
	case model.KindUsers:
		standings, err := h.leaderboard.Users(ctx)
		if err != nil {
			response.Error(c, h.logger, err)
			return
		}
		response.OK(c, standings)
	case model.KindTeams:
		standings, err := h.leaderboard.Teams(ctx)
		if err != nil {
			response.Error(c, h.logger, err)
			return
		}
		response.OK(c, standings)
	}
}

// Export handles GET /admin/rank/:type/export request.
// @Summary Download a leaderboard as xlsx
// @Tags Rank
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param type path string true "users or teams"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope "Unknown leaderboard type"
// @Failure 403 {object} response.Envelope "Admin required"
// @Router /admin/rank/{type}/export [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Export(c *gin.Context) {
	kind, err := model.ParseKind(c.Param("type"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	data, err := h.leaderboard.Export(c.Request.Context(), kind)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("rank_%s_%s.xlsx", kind, time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
