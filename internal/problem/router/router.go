// Package router provides problem catalog routes registration.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/problem/handler"
)

// RegisterRoutes registers competitor and admin problem routes.
func RegisterRoutes(r gin.IRouter, h *handler.Handler, auth *middleware.Auth) {
	r.GET("/problem_menu", auth.RequireAny(), h.Menu)
	r.POST("/problem_menu", auth.RequireUser(), h.MenuByTag)
	r.GET("/problem/:wid", auth.RequireUser(), h.Get)
	r.GET("/download/:wid", auth.RequireAny(), h.Download)
	r.GET("/assign/problem/:wid", auth.RequireUser(), h.Assign)

	admin := r.Group("/admin", auth.RequireAdmin())
	admin.GET("/problem_menu", h.Menu)
	admin.GET("/problem/:wid", h.AdminGet)
	admin.POST("/problem", h.Create)
	admin.DELETE("/problem/:wid", h.Delete)
}
