// Package handler provides HTTP handlers for problem catalog endpoints.
package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/problem/model"
	"github.com/festy23/ctf_platform/internal/problem/service"
	"github.com/festy23/ctf_platform/internal/response"
)

// Handler handles HTTP requests for problem endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new problem handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Menu handles GET /problem_menu request.
// @Summary List every problem
// @Tags Problems
// @Produce json
// @Success 200 {array} model.Summary
// @Failure 401 {object} response.Envelope "Not logged in"
// @Router /problem_menu [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Menu(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, items)
}

// MenuByTag handles POST /problem_menu request.
// @Summary List the problems of one category
// @Tags Problems
// @Accept json
// @Produce json
// @Param request body model.MenuRequest true "Category"
// @Success 200 {array} model.Summary
// @Failure 400 {object} response.Envelope "Invalid parameters"
// @Router /problem_menu [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) MenuByTag(c *gin.Context) {
	var req model.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Param(c, "tag is required")
		return
	}

	items, err := h.service.ListByTag(c.Request.Context(), req.Tag)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, items)
}

// Get handles GET /problem/:wid request.
// @Summary Open a problem
// @Tags Problems
// @Produce json
// @Param wid path int true "Problem id"
// @Success 200 {object} model.Detail
// @Failure 404 {object} response.Envelope "Problem not found"
// @Router /problem/{wid} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Get(c *gin.Context) {
	id, ok := response.ParamID(c, "wid")
	if !ok {
		return
	}
	p := middleware.MustPrincipal(c)

	detail, err := h.service.Get(c.Request.Context(), p.ID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, detail)
}

// AdminGet handles GET /admin/problem/:wid request.
// @Summary Inspect a problem
// @Tags Admin
// @Produce json
// @Param wid path int true "Problem id"
// @Success 200 {object} model.Detail
// @Failure 404 {object} response.Envelope "Problem not found"
// @Router /admin/problem/{wid} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) AdminGet(c *gin.Context) {
	id, ok := response.ParamID(c, "wid")
	if !ok {
		return
	}

	detail, err := h.service.AdminGet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, detail)
}

// Create handles POST /admin/problem request.
// @Summary Upload a problem
// @Tags Admin
// @Accept mpfd
// @Produce json
// @Param tag formData string true "Category"
// @Param name formData string true "Name"
// @Param flag formData string true "Flag"
// @Param content formData string true "Statement"
// @Param points formData int false "Points"
// @Param link formData string false "Environment link"
// @Param file formData file false "Attachment, required unless the category is web"
// @Success 200 {object} model.Detail
// @Failure 400 {object} response.Envelope "Invalid parameters"
// @Failure 409 {object} response.Envelope "Name or flag already exists"
// @Router /admin/problem [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		response.Param(c, "invalid parameters")
		return
	}

	detail, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OKMessage(c, "problem created", detail)
}

// Delete handles DELETE /admin/problem/:wid request.
// @Summary Delete a problem
// @Tags Admin
// @Produce json
// @Param wid path int true "Problem id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Problem not found"
// @Router /admin/problem/{wid} [delete] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Delete(c *gin.Context) {
	id, ok := response.ParamID(c, "wid")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OKMessage(c, "problem deleted", nil)
}

// Download handles GET /download/:wid request.
// @Summary Download a problem attachment
// @Tags Problems
// @Produce octet-stream
// @Param wid path int true "Problem id"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope "No attachment"
// @Router /download/{wid} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Download(c *gin.Context) {
	id, ok := response.ParamID(c, "wid")
	if !ok {
		return
	}

	att, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	defer att.Body.Close()

	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", att.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", att.Filename),
	})
}

// Assign handles GET /assign/problem/:wid request.
// @Summary Get the environment of a web problem
// @Tags Problems
// @Produce json
// @Param wid path int true "Problem id"
// @Success 200 {object} model.AssignResponse
// @Failure 400 {object} response.Envelope "Not a web problem"
// @Router /assign/problem/{wid} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Assign(c *gin.Context) {
	id, ok := response.ParamID(c, "wid")
	if !ok {
		return
	}

	resp, err := h.service.Assign(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}
