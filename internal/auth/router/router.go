// Package router provides auth routes registration.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/festy23/ctf_platform/internal/auth/handler"
	"github.com/festy23/ctf_platform/internal/middleware"
)

// RegisterRoutes registers registration, confirmation and session routes.
func RegisterRoutes(r gin.IRouter, h *handler.Handler, auth *middleware.Auth) {
	r.POST("/register", h.Register)
	r.GET("/confirm/:token", h.Confirm)
	r.POST("/confirm", h.Resend)

	r.POST("/session", h.Login)
	r.GET("/session", auth.Authenticate(), h.Status)
	r.DELETE("/session", auth.Authenticate(), h.Logout)

	r.POST("/admin/session", h.AdminLogin)
	r.DELETE("/admin/session", auth.Authenticate(), h.Logout)
}
