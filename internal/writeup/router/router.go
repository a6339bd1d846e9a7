// Package router provides writeup routes registration.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/writeup/handler"
)

// RegisterRoutes registers writeup routes. Every route needs a user session.
func RegisterRoutes(r gin.IRouter, h *handler.Handler, auth *middleware.Auth) {
	r.GET("/writeup_menu", auth.RequireUser(), h.Menu)

	writeup := r.Group("/writeup", auth.RequireUser())
	writeup.GET("/my_writeup", h.Mine)
	writeup.POST("/my_writeup", h.Action)
	writeup.GET("/:id", h.Get)
}
