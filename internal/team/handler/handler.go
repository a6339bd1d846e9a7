// Package handler provides HTTP handlers for team endpoints.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/apperr"
	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/response"
	teamModel "github.com/festy23/ctf_platform/internal/team/model"
	"github.com/festy23/ctf_platform/internal/team/service"
)

// Handler handles HTTP requests for team endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new team handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Get handles GET /team request.
// @Summary Get the caller's team
// @Tags Teams
// @Produce json
// @Success 200 {object} teamModel.TeamResponse
// @Failure 409 {object} response.Envelope "Not on a team"
// @Router /team [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Get(c *gin.Context) {
	p := middleware.MustPrincipal(c)

	resp, err := h.service.Get(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, resp)
}

// Action handles POST /team request.
// @Summary Create, join, transfer or rename a team
// @Tags Teams
// @Accept json
// @Produce json
// @Param action body string true "create_team, join_team, trans_team or change_team_name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Invalid parameters"
// @Failure 409 {object} response.Envelope "Membership conflict"
// @Router /team [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Action(c *gin.Context) {
	p := middleware.MustPrincipal(c)
	ctx := c.Request.Context()

	action, ok := response.BindAction(c)
	if !ok {
		return
	}

	var (
		err     error
		message string
	)
	switch action {
	case teamModel.ActionCreate:
		var req teamModel.CreateRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.Create(ctx, p.ID, &req)
		message = "team created"
	case teamModel.ActionJoin:
		var req teamModel.JoinRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.Join(ctx, p.ID, &req)
		message = "team joined"
	case teamModel.ActionTransfer:
		var req teamModel.TransferRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.TransferCaptaincy(ctx, p.ID, &req)
		message = "captaincy transferred"
	case teamModel.ActionRename:
		var req teamModel.RenameRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.Rename(ctx, p.ID, &req)
		message = "team renamed"
	default:
		err = apperr.ErrUnknownAction
	}

	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OKMessage(c, message, nil)
}

// Quit handles DELETE /team request.
// @Summary Leave the caller's team, dissolving it when the caller is its only member
// @Tags Teams
// @Produce json
// @Success 200 {object} teamModel.LeaveResult
// @Failure 409 {object} response.Envelope "Captain must transfer first"
// @Router /team [delete] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Quit(c *gin.Context) {
	p := middleware.MustPrincipal(c)

	result, err := h.service.Quit(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	message := "left the team"
	if result.Dissolved {
		message = "team dissolved"
	}
	response.OKMessage(c, message, result)
}
