package api

import (
	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
)

func registerRoleRoutes(api *gin.RouterGroup, handler *handlers.RoleHandler, checker *permissions.Checker) {
	manage := middleware.RequirePermission(checker, "admin.roles")

	roles := api.Group("/auth/roles")
	roles.Use(manage)
	{
		roles.GET("", handler.List)
		roles.POST("", handler.Create)
		roles.GET("/:id", handler.Get)
		roles.PUT("/:id", handler.Update)
		roles.DELETE("/:id", handler.Delete)
	}

	api.GET("/auth/permissions", manage, handler.Permissions)
}
