package api

import (
	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/handlers"
)

// registerStoryAccessRoutes wires the per-story sharing endpoints. The handler
// resolves the caller's standing itself: only the owner or an admin may view
// or change a story's collaborator list.
func registerStoryAccessRoutes(api *gin.RouterGroup, handler *handlers.StoryAccessHandler) {
	access := api.Group("/auth/stories/:storyID/access")
	{
		access.GET("", handler.List)
		access.POST("", handler.Grant)
		access.PUT("/:accessID", handler.Update)
		access.DELETE("/:accessID", handler.Revoke)
	}
}
