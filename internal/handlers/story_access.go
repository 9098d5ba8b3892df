package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/internal/permissions"
	"github.com/virtualstage/backlot/internal/services"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/response"
)

// StoryAccessHandler manages per-story sharing grants. Only the story owner
// and holders of admin.settings may inspect or change them.
type StoryAccessHandler struct {
	db      *gorm.DB
	access  *services.StoryAccessService
	checker *permissions.Checker
}

func NewStoryAccessHandler(db *gorm.DB) (*StoryAccessHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	access, err := services.NewStoryAccessService(db, audit)
	if err != nil {
		return nil, err
	}
	checker, err := permissions.NewChecker(db)
	if err != nil {
		return nil, err
	}
	return &StoryAccessHandler{db: db, access: access, checker: checker}, nil
}

type grantStoryAccessRequest struct {
	UserID    *string `json:"user_id"`
	TeamID    *string `json:"team_id"`
	CanView   *bool   `json:"can_view"`
	CanEdit   *bool   `json:"can_edit"`
	CanDelete *bool   `json:"can_delete"`
}

type updateStoryAccessRequest struct {
	CanView   *bool `json:"can_view"`
	CanEdit   *bool `json:"can_edit"`
	CanDelete *bool `json:"can_delete"`
}

// requireManager loads the story and rejects callers who are neither its
// owner nor settings administrators. Missing stories surface as 404.
func (h *StoryAccessHandler) requireManager(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return "", false
	}

	storyID := c.Param("storyID")
	var story models.Story
	err := h.db.WithContext(requestContext(c)).First(&story, "id = ?", storyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, apperrors.ErrNotFound)
		return "", false
	}
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return "", false
	}

	if story.UserID == userID {
		return userID, true
	}
	allowed, err := h.checker.Check(requestContext(c), userID, "admin.settings")
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return "", false
	}
	if !allowed {
		response.Error(c, apperrors.ErrForbidden)
		return "", false
	}
	return userID, true
}

// GET /api/auth/stories/:storyID/access
func (h *StoryAccessHandler) List(c *gin.Context) {
	if _, ok := h.requireManager(c); !ok {
		return
	}

	grants, err := h.access.List(requestContext(c), c.Param("storyID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, grants)
}

// POST /api/auth/stories/:storyID/access
func (h *StoryAccessHandler) Grant(c *gin.Context) {
	userID, ok := h.requireManager(c)
	if !ok {
		return
	}

	var req grantStoryAccessRequest
	if !bindAndValidate(c, &req) {
		return
	}

	grant, err := h.access.Grant(requestContext(c), services.GrantStoryAccessInput{
		StoryID:     c.Param("storyID"),
		UserID:      req.UserID,
		TeamID:      req.TeamID,
		CanView:     req.CanView,
		CanEdit:     req.CanEdit,
		CanDelete:   req.CanDelete,
		GrantedByID: userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, grant)
}

// PUT /api/auth/stories/:storyID/access/:accessID
func (h *StoryAccessHandler) Update(c *gin.Context) {
	if _, ok := h.requireManager(c); !ok {
		return
	}

	var req updateStoryAccessRequest
	if !bindAndValidate(c, &req) {
		return
	}

	grant, err := h.access.Update(requestContext(c), c.Param("storyID"), c.Param("accessID"), services.UpdateStoryAccessInput{
		CanView:   req.CanView,
		CanEdit:   req.CanEdit,
		CanDelete: req.CanDelete,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, grant)
}

// DELETE /api/auth/stories/:storyID/access/:accessID
func (h *StoryAccessHandler) Revoke(c *gin.Context) {
	if _, ok := h.requireManager(c); !ok {
		return
	}

	if err := h.access.Revoke(requestContext(c), c.Param("storyID"), c.Param("accessID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Access revoked"})
}
