// Package router provides statistics module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/statistics/handler"
	"github.com/festy23/ctf_platform/internal/statistics/repository"
	"github.com/festy23/ctf_platform/internal/statistics/service"
)

// RegisterRoutes registers statistics module routes behind the admin guard.
func RegisterRoutes(r gin.IRouter, db *gorm.DB, auth *middleware.Auth, logger *zap.SugaredLogger) {
	repo := repository.New(db, logger)
	svc := service.New(repo, logger)
	h := handler.New(svc, logger)

	stats := r.Group("/admin/statistics", auth.RequireAdmin())
	stats.GET("/problems", h.GetProblemsStatistics)
	stats.GET("/overview", h.GetOverview)
}
