// Package handler provides HTTP handlers for flag submissions.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/middleware"
	problemModel "github.com/festy23/ctf_platform/internal/problem/model"
	"github.com/festy23/ctf_platform/internal/response"
	"github.com/festy23/ctf_platform/internal/submission/model"
	"github.com/festy23/ctf_platform/internal/submission/service"
)

// Handler handles HTTP requests for flag submissions.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new submission handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Submit handles POST /problem/:wid request.
// @Summary Submit a flag
// @Tags Problems
// @Accept json
// @Produce json
// @Param wid path int true "Problem id"
// @Param request body problemModel.SubmitRequest true "Flag"
// @Success 200 {object} model.Result
// @Failure 400 {object} response.Envelope "Wrong flag"
// @Failure 404 {object} response.Envelope "Problem not found"
// @Router /problem/{wid} [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Submit(c *gin.Context) {
	id, ok := response.ParamID(c, "wid")
	if !ok {
		return
	}

	var req problemModel.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Param(c, "flag is required")
		return
	}

	p := middleware.MustPrincipal(c)
	result, err := h.service.Evaluate(c.Request.Context(), p.ID, id, req.Flag)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	switch result.Outcome {
	case model.OutcomeCorrect:
		response.OKMessage(c, "correct", result)
	case model.OutcomeAlreadyCorrect:
		response.OKMessage(c, "correct, but points are not awarded twice", result)
	default:
		response.Error(c, h.logger, model.ErrWrongFlag)
	}
}
