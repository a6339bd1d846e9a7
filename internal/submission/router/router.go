// Package router provides flag submission routes registration.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/submission/handler"
)

// RegisterRoutes registers the flag submission route.
func RegisterRoutes(r gin.IRouter, h *handler.Handler, auth *middleware.Auth) {
	r.POST("/problem/:wid", auth.RequireUser(), h.Submit)
}
