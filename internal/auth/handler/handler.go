// Package handler provides HTTP handlers for registration and sessions.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/auth/service"
	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/response"
)

// Handler handles HTTP requests for auth endpoints.
type Handler struct {
	service service.Service
	cookie  middleware.SessionCookie
	logger  *zap.SugaredLogger
}

// New creates a new auth handler instance.
func New(svc service.Service, cookie middleware.SessionCookie, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, cookie: cookie, logger: logger}
}

// Register handles POST /register request.
// @Summary Register a competitor account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Account"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Invalid parameters"
// @Failure 409 {object} response.Envelope "Email or name taken"
// @Router /register [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Param(c, "invalid registration parameters")
		return
	}

	if err := h.service.Register(c.Request.Context(), &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OKMessage(c, "confirmation mail sent, check your inbox", nil)
}

// Confirm handles GET /confirm/:token request.
// @Summary Confirm an email address
// @Tags Auth
// @Produce json
// @Param token path string true "Confirmation token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Invalid or expired link"
// @Router /confirm/{token} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Confirm(c *gin.Context) {
	if err := h.service.Confirm(c.Request.Context(), c.Param("token")); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OKMessage(c, "email confirmed", nil)
}

// Resend handles POST /confirm request.
// @Summary Send a new confirmation mail
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.ResendRequest true "Email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Unknown email"
// @Router /confirm [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Resend(c *gin.Context) {
	var req model.ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Param(c, "invalid email")
		return
	}

	if err := h.service.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OKMessage(c, "confirmation mail sent, check your inbox", nil)
}

// Login handles POST /session request.
// @Summary Log in as a competitor
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} model.SessionResponse
// @Failure 401 {object} response.Envelope "Wrong email or password"
// @Failure 429 {object} response.Envelope "Too many failures"
// @Router /session [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Param(c, "email and password are required")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.cookie.Set(c, resp.Token, int(resp.ExpiresIn))
	response.OKMessage(c, "logged in", resp)
}

// AdminLogin handles POST /admin/session request.
// @Summary Log in as an administrator
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.AdminLoginRequest true "Credentials"
// @Success 200 {object} model.SessionResponse
// @Failure 401 {object} response.Envelope "Wrong name or password"
// @Failure 429 {object} response.Envelope "Too many failures"
// @Router /admin/session [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Param(c, "name and password are required")
		return
	}

	resp, err := h.service.AdminLogin(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.cookie.Set(c, resp.Token, int(resp.ExpiresIn))
	response.OKMessage(c, "logged in", resp)
}

// Status handles GET /session request.
// @Summary Report the caller's session
// @Tags Auth
// @Produce json
// @Success 200 {object} model.StatusResponse
// @Failure 401 {object} response.Envelope "Not logged in"
// @Router /session [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Status(c *gin.Context) {
	var principal *model.Principal
	if p, ok := middleware.PrincipalFrom(c); ok {
		principal = &p
	}

	status, err := h.service.Status(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if !status.LoggedIn {
		response.Error(c, h.logger, model.ErrNotLoggedIn)
		return
	}

	response.OK(c, status)
}

// Logout handles DELETE /session and DELETE /admin/session requests.
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [delete] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Logout(c *gin.Context) {
	if p, ok := middleware.PrincipalFrom(c); ok {
		if err := h.service.Logout(c.Request.Context(), p); err != nil {
			response.Error(c, h.logger, err)
			return
		}
	}

	h.cookie.Clear(c)
	response.OK(c, nil)
}
