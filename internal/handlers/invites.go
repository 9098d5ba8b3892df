package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/internal/permissions"
	"github.com/virtualstage/backlot/internal/realtime"
	"github.com/virtualstage/backlot/internal/services"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/mail"
	"github.com/virtualstage/backlot/pkg/response"
)

// InvitationHandler covers issuing, inspecting, accepting and cancelling
// organization invitations.
type InvitationHandler struct {
	db      *gorm.DB
	invites *services.InvitationService
	checker *permissions.Checker
}

// NewInvitationHandler wires the invitation service with mail and realtime
// notification delivery. baseURL feeds the emailed invitation links.
func NewInvitationHandler(db *gorm.DB, mailer mail.Mailer, hub *realtime.Hub, baseURL string) (*InvitationHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	notifications, err := services.NewNotificationService(db, hub)
	if err != nil {
		return nil, err
	}

	var opts []services.InvitationOption
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, services.WithInvitationBaseURL(baseURL))
	}
	invites, err := services.NewInvitationService(db, mailer, notifications, audit, opts...)
	if err != nil {
		return nil, err
	}

	checker, err := permissions.NewChecker(db)
	if err != nil {
		return nil, err
	}

	return &InvitationHandler{db: db, invites: invites, checker: checker}, nil
}

type createInvitationRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	OrganizationID string  `json:"organization_id"`
	TeamID         *string `json:"team_id"`
	RoleID         *string `json:"role_id"`
}

// POST /api/auth/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req createInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	orgID := strings.TrimSpace(req.OrganizationID)
	if orgID == "" {
		// Default to the inviter's own organization.
		var inviter models.User
		if err := h.db.WithContext(requestContext(c)).First(&inviter, "id = ?", userID).Error; err == nil && inviter.OrganizationID != nil {
			orgID = *inviter.OrganizationID
		}
	}
	if orgID == "" {
		response.Error(c, apperrors.NewBadRequest("organization id is required"))
		return
	}

	invitation, err := h.invites.Create(requestContext(c), services.CreateInvitationInput{
		Email:          req.Email,
		OrganizationID: orgID,
		TeamID:         req.TeamID,
		RoleID:         req.RoleID,
		InvitedByID:    userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invitation)
}

// GET /api/auth/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	orgID := strings.TrimSpace(c.Query("organization_id"))
	if orgID == "" {
		var caller models.User
		if err := h.db.WithContext(requestContext(c)).First(&caller, "id = ?", userID).Error; err == nil && caller.OrganizationID != nil {
			orgID = *caller.OrganizationID
		}
	}
	if orgID == "" {
		response.Success(c, http.StatusOK, []models.Invitation{})
		return
	}

	invitations, err := h.invites.List(requestContext(c), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitations)
}

// GET /api/auth/invitations/:token
//
// Public: the emailed link lands here before the invitee has an account.
func (h *InvitationHandler) GetByToken(c *gin.Context) {
	invitation, err := h.invites.GetByToken(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitation)
}

// POST /api/auth/invitations/:token/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.invites.Accept(requestContext(c), c.Param("token"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Invitation accepted",
		"user":    user,
	})
}

// POST /api/auth/invitations/:token/cancel
//
// The path segment carries the invitation ID here; it shares the :token
// position with the public lookup route.
func (h *InvitationHandler) Cancel(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	invitationID := strings.TrimSpace(c.Param("token"))

	var invitation models.Invitation
	if err := h.db.WithContext(requestContext(c)).First(&invitation, "id = ?", invitationID).Error; err != nil {
		response.Error(c, services.ErrInvitationNotFound)
		return
	}

	if invitation.InvitedByID != userID {
		allowed, err := h.checker.Check(requestContext(c), userID, "admin.users")
		if err != nil || !allowed {
			response.Error(c, apperrors.ErrForbidden)
			return
		}
	}

	cancelled, err := h.invites.Cancel(requestContext(c), invitationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cancelled)
}

// GET /api/auth/invitations/:token/qr
//
// Serves the invitation link as a PNG; the path segment carries the ID.
func (h *InvitationHandler) QRCode(c *gin.Context) {
	png, err := h.invites.QRCode(requestContext(c), strings.TrimSpace(c.Param("token")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
