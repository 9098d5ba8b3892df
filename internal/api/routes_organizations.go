package api

import (
	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
)

func registerOrganizationRoutes(api *gin.RouterGroup, orgs *handlers.OrganizationHandler, teams *handlers.TeamHandler, checker *permissions.Checker) {
	manage := middleware.RequirePermission(checker, "admin.teams")

	orgGroup := api.Group("/auth/organizations")
	orgGroup.Use(manage)
	{
		orgGroup.GET("", orgs.List)
		orgGroup.POST("", orgs.Create)
		orgGroup.GET("/:id", orgs.Get)
		orgGroup.PUT("/:id", orgs.Update)
		orgGroup.DELETE("/:id", orgs.Delete)
	}

	teamGroup := api.Group("/auth/teams")
	teamGroup.Use(manage)
	{
		teamGroup.GET("", teams.List)
		teamGroup.POST("", teams.Create)
		teamGroup.GET("/:id", teams.Get)
		teamGroup.PUT("/:id", teams.Update)
		teamGroup.DELETE("/:id", teams.Delete)
		teamGroup.GET("/:id/members", teams.ListMembers)
		teamGroup.POST("/:id/members", teams.AddMember)
		teamGroup.DELETE("/:id/members/:userID/remove", teams.RemoveMember)
	}
}
