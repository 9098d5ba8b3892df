package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
)

func registerDepartmentRoutes(api *gin.RouterGroup, handler *handlers.DepartmentHandler, db *gorm.DB, checker *permissions.Checker) {
	view := middleware.RequireStoryAccess(db, checker, "stories.view")
	edit := middleware.RequireStoryAccess(db, checker, "stories.edit")

	departments := api.Group("/departments")

	// The catalog is shared across productions; only managers reshape it.
	departments.GET("", middleware.RequirePermission(checker, "departments.view"), handler.List)
	departments.POST("", middleware.RequirePermission(checker, "departments.manage"), handler.Create)
	departments.GET("/:departmentID", middleware.RequirePermission(checker, "departments.view"), handler.Get)
	departments.PUT("/:departmentID", middleware.RequirePermission(checker, "departments.manage"), handler.Update)
	departments.DELETE("/:departmentID", middleware.RequirePermission(checker, "departments.manage"), handler.Delete)

	stories := departments.Group("/stories/:storyID")
	{
		stories.GET("", view, handler.ListStoryDepartments)
		stories.POST("", edit, handler.AssignToStory)
		stories.DELETE("/:departmentID", edit, handler.RemoveFromStory)
		stories.GET("/:departmentID/stats", view, handler.Stats)
		stories.GET("/:departmentID/assets", view, handler.AssetsForDepartment)
		stories.GET("/:departmentID/shots", view, handler.ShotsForDepartment)

		stories.GET("/assets/:assetID", view, handler.ListAssetAssignments)
		stories.POST("/assets/:assetID", edit, handler.UpsertAssetAssignment)
		stories.GET("/shots/:shotID", view, handler.ListShotAssignments)
		stories.POST("/shots/:shotID", edit, handler.UpsertShotAssignment)
	}

	// Assignment mutations carry only the assignment ID; the service resolves
	// the owning story and checks the caller against it.
	assignments := departments.Group("/assignments")
	{
		assignments.PUT("/asset/:assignmentID", handler.UpdateAssetAssignment)
		assignments.DELETE("/asset/:assignmentID", handler.DeleteAssetAssignment)
		assignments.PUT("/shot/:assignmentID", handler.UpdateShotAssignment)
		assignments.DELETE("/shot/:assignmentID", handler.DeleteShotAssignment)
	}
}
