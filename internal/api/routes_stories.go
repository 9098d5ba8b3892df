package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
)

type storyRouteDeps struct {
	Stories    *handlers.StoryHandler
	Media      *handlers.MediaHandler
	ArtControl *handlers.ArtControlHandler
	Chats      *handlers.ChatHandler
	Checker    *permissions.Checker
	DB         *gorm.DB
}

// registerStoryRoutes wires the /ai-machines tree: story parsing and browsing,
// the parsed breakdown entities, per-scope art control and chat transcripts.
// Story-scoped routes load the story once via RequireStoryAccess, which hides
// stories the caller cannot see and rejects mutations below editor standing.
func registerStoryRoutes(api *gin.RouterGroup, deps storyRouteDeps) {
	view := middleware.RequireStoryAccess(deps.DB, deps.Checker, "stories.view")
	edit := middleware.RequireStoryAccess(deps.DB, deps.Checker, "stories.edit")
	remove := middleware.RequireStoryAccess(deps.DB, deps.Checker, "stories.delete")

	machines := api.Group("/ai-machines")

	machines.POST("/parse-story", middleware.RequirePermission(deps.Checker, "stories.create"), deps.Stories.ParseStory)
	machines.GET("/stories", deps.Stories.List)

	stories := machines.Group("/stories/:storyID")
	{
		stories.GET("", view, deps.Stories.Get)
		stories.DELETE("", remove, deps.Stories.Delete)
		stories.POST("/regenerate", edit, deps.Stories.Regenerate)
		stories.GET("/cost-breakdown", view, deps.Stories.CostBreakdown)

		stories.GET("/characters/:characterID", view, deps.Stories.GetCharacter)
		stories.PUT("/characters/:characterID/update", edit, deps.Stories.UpdateCharacter)
		stories.POST("/characters/:characterID/upload-images", edit, deps.Media.UploadCharacterImages)
		stories.DELETE("/characters/:characterID/images/:imageID", edit, deps.Media.DeleteCharacterImage)

		stories.GET("/locations/:locationID", view, deps.Stories.GetLocation)
		stories.PUT("/locations/:locationID/update", edit, deps.Stories.UpdateLocation)
		stories.POST("/locations/:locationID/upload-images", edit, deps.Media.UploadLocationImages)
		stories.DELETE("/locations/:locationID/images/:imageID", edit, deps.Media.DeleteLocationImage)

		stories.GET("/assets/:assetID", view, deps.Stories.GetStoryAsset)
		stories.PUT("/assets/:assetID/update", edit, deps.Stories.UpdateStoryAsset)
		stories.POST("/assets/:assetID/upload-images", edit, deps.Media.UploadAssetImages)
		stories.DELETE("/assets/:assetID/images/:imageID", edit, deps.Media.DeleteAssetImage)

		stories.GET("/sequences/:sequenceID", view, deps.Stories.GetSequence)
		stories.PUT("/sequences/:sequenceID/update", edit, deps.Stories.UpdateSequence)

		stories.GET("/art-control", view, deps.ArtControl.Get)
		stories.POST("/art-control", edit, deps.ArtControl.Create)
		stories.PUT("/art-control", edit, deps.ArtControl.Update)
		stories.DELETE("/art-control/reset", edit, deps.ArtControl.Reset)

		stories.GET("/sequences/:sequenceID/art-control", view, deps.ArtControl.Get)
		stories.POST("/sequences/:sequenceID/art-control", edit, deps.ArtControl.Create)
		stories.PUT("/sequences/:sequenceID/art-control", edit, deps.ArtControl.Update)
		stories.DELETE("/sequences/:sequenceID/art-control", edit, deps.ArtControl.Reset)

		stories.GET("/shots/:shotID/art-control", view, deps.ArtControl.Get)
		stories.POST("/shots/:shotID/art-control", edit, deps.ArtControl.Create)
		stories.PUT("/shots/:shotID/art-control", edit, deps.ArtControl.Update)
		stories.DELETE("/shots/:shotID/art-control", edit, deps.ArtControl.Reset)
	}

	// Chats are scoped to the calling user inside the service, so the group
	// needs nothing beyond authentication.
	chats := machines.Group("/chats")
	{
		chats.GET("", deps.Chats.List)
		chats.POST("/create", deps.Chats.Create)
		chats.GET("/:chatID", deps.Chats.Get)
		chats.PUT("/:chatID/update", deps.Chats.Update)
		chats.PATCH("/:chatID/update", deps.Chats.Update)
		chats.DELETE("/:chatID/delete", deps.Chats.Delete)
	}
}
