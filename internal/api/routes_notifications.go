package api

import (
	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/handlers"
)

// registerNotificationRoutes needs no permission gate: the service only ever
// touches rows belonging to the authenticated user.
func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler) {
	notifications := api.Group("/notifications")
	{
		notifications.GET("", handler.List)
		notifications.POST("/read-all", handler.MarkAllRead)
		notifications.POST("/:id/read", handler.MarkRead)
		notifications.DELETE("/:id", handler.Delete)
	}
}
