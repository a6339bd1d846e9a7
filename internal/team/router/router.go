// Package router provides team module routes registration.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/team/handler"
)

// RegisterRoutes registers team module routes. Every route needs a user session.
func RegisterRoutes(r gin.IRouter, h *handler.Handler, auth *middleware.Auth) {
	team := r.Group("/team", auth.RequireUser())
	team.GET("", h.Get)
	team.POST("", h.Action)
	team.DELETE("", h.Quit)
}
