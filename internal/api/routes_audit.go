package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
)

func registerAuditRoutes(api *gin.RouterGroup, db *gorm.DB, checker *permissions.Checker) error {
	handler, err := handlers.NewAuditHandler(db)
	if err != nil {
		return err
	}

	api.GET("/audit", middleware.RequirePermission(checker, "admin.settings"), handler.List)
	return nil
}
