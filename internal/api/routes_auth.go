package api

import (
	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
)

type authRouteDeps struct {
	AuthHandler       *handlers.AuthHandler
	InvitationHandler *handlers.InvitationHandler
	PermissionChecker *permissions.Checker
}

func registerAuthRoutes(engine *gin.Engine, api *gin.RouterGroup, deps authRouteDeps) {
	// Public endpoints bypass the authenticated /api group: registration,
	// credential exchange and the emailed recovery/invitation links.
	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
		auth.POST("/refresh", deps.AuthHandler.Refresh)
		auth.POST("/forgot-password", deps.AuthHandler.ForgotPassword)
		auth.POST("/reset-password", deps.AuthHandler.ResetPassword)
		auth.GET("/invitations/:token", deps.InvitationHandler.GetByToken)
	}

	api.POST("/auth/logout", deps.AuthHandler.Logout)
	api.GET("/auth/me", deps.AuthHandler.Me)
	api.GET("/auth/profile", deps.AuthHandler.Me)
	api.PUT("/auth/profile/update", deps.AuthHandler.UpdateProfile)
	api.POST("/auth/change-password", deps.AuthHandler.ChangePassword)

	invitations := api.Group("/auth/invitations")
	{
		manage := middleware.RequirePermission(deps.PermissionChecker, "admin.users")
		invitations.GET("", manage, deps.InvitationHandler.List)
		invitations.POST("", manage, deps.InvitationHandler.Create)
		invitations.GET("/:token/qr", manage, deps.InvitationHandler.QRCode)

		// Accept needs a logged-in invitee; Cancel checks inviter-or-admin
		// inside the handler so team leads can withdraw their own invites.
		invitations.POST("/:token/accept", deps.InvitationHandler.Accept)
		invitations.POST("/:token/cancel", deps.InvitationHandler.Cancel)
	}
}
