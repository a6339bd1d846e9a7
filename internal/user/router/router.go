// Package router provides user module routes registration.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/user/handler"
)

// RegisterRoutes registers user module routes. Every route needs a user session.
func RegisterRoutes(r gin.IRouter, h *handler.Handler, auth *middleware.Auth) {
	user := r.Group("/user", auth.RequireUser())
	user.GET("", h.Profile)
	user.POST("", h.Action)
	user.DELETE("", h.Delete)
}
