// Package router provides leaderboard routes registration.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/scoring/handler"
)

// RegisterRoutes registers leaderboard routes.
func RegisterRoutes(r gin.IRouter, h *handler.Handler, auth *middleware.Auth) {
	r.GET("/rank/:type", auth.RequireAny(), h.Rank)
	r.GET("/admin/rank/:type/export", auth.RequireAdmin(), h.Export)
}
