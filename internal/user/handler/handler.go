// Package handler provides HTTP handlers for user endpoints.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/apperr"
	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/response"
	"github.com/festy23/ctf_platform/internal/user/model"
	"github.com/festy23/ctf_platform/internal/user/service"
)

// Handler handles HTTP requests for user endpoints.
type Handler struct {
	service service.Service
	cookie  middleware.SessionCookie
	logger  *zap.SugaredLogger
}

// New creates a new user handler instance.
func New(svc service.Service, cookie middleware.SessionCookie, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, cookie: cookie, logger: logger}
}

// Profile handles GET /user request.
// @Summary Get the caller's profile
// @Tags Users
// @Produce json
// @Success 200 {object} model.ProfileResponse
// @Failure 401 {object} response.Envelope "Not logged in"
// @Router /user [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Profile(c *gin.Context) {
	p := middleware.MustPrincipal(c)

	resp, err := h.service.Profile(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, resp)
}

// Action handles POST /user request.
// @Summary Change profile information, password or email
// @Tags Users
// @Accept json
// @Produce json
// @Param action body string true "change_information, change_password or change_email"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Invalid parameters"
// @Failure 403 {object} response.Envelope "Wrong password"
// @Failure 409 {object} response.Envelope "Name or email already exists"
// @Router /user [post] //nolint:godot // Swagger annotation should not end with period
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
	case model.ActionChangeInformation:
		var req model.ChangeInformationRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.ChangeInformation(ctx, p.ID, &req)
		message = "information updated"
	case model.ActionChangePassword:
		var req model.ChangePasswordRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.ChangePassword(ctx, p.ID, &req)
		message = "password updated"
	case model.ActionChangeEmail:
		var req model.ChangeEmailRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.ChangeEmail(ctx, p.ID, &req)
		message = "email updated, check your inbox to verify it"
	default:
		err = apperr.ErrUnknownAction
	}

	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OKMessage(c, message, nil)
}

// Delete handles DELETE /user request.
// @Summary Delete the caller's account
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Captain must transfer first"
// @Router /user [delete] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Delete(c *gin.Context) {
	p := middleware.MustPrincipal(c)

	if err := h.service.Delete(c.Request.Context(), p); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.cookie.Clear(c)
	response.OKMessage(c, "account deleted", nil)
}
