package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
)

func registerTalentRoutes(api *gin.RouterGroup, handler *handlers.TalentHandler, db *gorm.DB, checker *permissions.Checker) {
	view := middleware.RequireStoryAccess(db, checker, "stories.view")
	edit := middleware.RequireStoryAccess(db, checker, "stories.edit")

	pool := api.Group("/talent-pool")

	talent := pool.Group("/talent")
	{
		talent.GET("", middleware.RequirePermission(checker, "talent.view"), handler.List)
		talent.POST("", middleware.RequirePermission(checker, "talent.manage"), handler.Create)
		talent.GET("/:talentID", middleware.RequirePermission(checker, "talent.view"), handler.Get)
		talent.PUT("/:talentID", middleware.RequirePermission(checker, "talent.manage"), handler.Update)
		talent.DELETE("/:talentID", middleware.RequirePermission(checker, "talent.manage"), handler.Delete)
	}

	stories := pool.Group("/stories/:storyID")
	{
		stories.GET("/characters/:characterID/talent", view, handler.ListCharacterAssignments)
		stories.POST("/characters/:characterID/talent", edit, handler.AssignToCharacter)
		stories.GET("/assets/:assetID/talent", view, handler.ListAssetAssignments)
		stories.POST("/assets/:assetID/talent", edit, handler.AssignToAsset)
		stories.GET("/shots/:shotID/talent", view, handler.ListShotAssignments)
		stories.POST("/shots/:shotID/talent", edit, handler.AssignToShot)
	}

	// Same shape as department assignments: the ID is enough, ownership is
	// enforced in the service.
	assignments := pool.Group("/talent-assignments")
	{
		assignments.PUT("/character/:assignmentID", handler.UpdateCharacterAssignment)
		assignments.DELETE("/character/:assignmentID", handler.DeleteCharacterAssignment)
		assignments.PUT("/asset/:assignmentID", handler.UpdateAssetAssignment)
		assignments.DELETE("/asset/:assignmentID", handler.DeleteAssetAssignment)
		assignments.PUT("/shot/:assignmentID", handler.UpdateShotAssignment)
		assignments.DELETE("/shot/:assignmentID", handler.DeleteShotAssignment)
	}
}
