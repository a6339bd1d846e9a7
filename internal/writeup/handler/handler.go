// Package handler provides HTTP handlers for writeup endpoints.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/apperr"
	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/response"
	"github.com/festy23/ctf_platform/internal/writeup/model"
	"github.com/festy23/ctf_platform/internal/writeup/service"
)

// Handler handles HTTP requests for writeup endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new writeup handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Menu handles GET /writeup_menu request.
// @Summary List all writeups
// @Tags Writeups
// @Produce json
// @Success 200 {array} model.Summary
// @Router /writeup_menu [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Menu(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, list)
}

// Get handles GET /writeup/:id request.
// @Summary Get a writeup
// @Tags Writeups
// @Produce json
// @Param id path int true "Writeup ID"
// @Success 200 {object} model.Detail
// @Failure 404 {object} response.Envelope "Writeup not found"
// @Router /writeup/{id} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Get(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, detail)
}

// Mine handles GET /writeup/my_writeup request.
// @Summary List the caller's writeups
// @Tags Writeups
// @Produce json
// @Success 200 {array} model.Summary
// @Router /writeup/my_writeup [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Mine(c *gin.Context) {
	p := middleware.MustPrincipal(c)

	list, err := h.service.ListMine(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, list)
}

// Action handles POST /writeup/my_writeup request.
// @Summary Add, change or delete one of the caller's writeups
// @Tags Writeups
// @Accept json
// @Produce json
// @Param action body string true "add_my_writeup, change_my_writeup or delete_my_writeup"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Invalid parameters or unknown problem"
// @Failure 403 {object} response.Envelope "Not the author"
// @Failure 404 {object} response.Envelope "Writeup not found"
// @Router /writeup/my_writeup [post] //nolint:godot // Swagger annotation should not end with period
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
	case model.ActionAdd:
		var req model.AddRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.Add(ctx, p.ID, &req)
		message = "writeup published"
	case model.ActionChange:
		var req model.ChangeRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.Change(ctx, p.ID, &req)
		message = "writeup changed"
	case model.ActionDelete:
		var req model.DeleteRequest
		if !response.BindBody(c, &req) {
			return
		}
		err = h.service.Delete(ctx, p.ID, &req)
		message = "writeup deleted"
	default:
		err = apperr.ErrUnknownAction
	}

	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OKMessage(c, message, nil)
}
