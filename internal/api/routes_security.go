package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/app"
	iauth "github.com/virtualstage/backlot/internal/auth"
	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
	"github.com/virtualstage/backlot/internal/security"
)

func registerSecurityRoutes(api *gin.RouterGroup, db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, checker *permissions.Checker) error {
	handler, err := handlers.NewSecurityHandler(security.NewAuditService(db, jwt, cfg))
	if err != nil {
		return err
	}

	api.GET("/security/audit", middleware.RequirePermission(checker, "admin.settings"), handler.Audit)
	return nil
}
