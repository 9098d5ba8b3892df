package api

import (
	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler, checker *permissions.Checker) {
	users := api.Group("/auth/users")
	users.Use(middleware.RequirePermission(checker, "admin.users"))
	{
		users.GET("", handler.List)
		users.POST("", handler.Create)
		users.GET("/:id", handler.Get)
		users.PUT("/:id/update", handler.Update)
		users.DELETE("/:id/delete", handler.Delete)
	}
}
