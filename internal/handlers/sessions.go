package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/virtualstage/backlot/internal/auth"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/models"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/response"
)

// SessionHandler lets users inspect and revoke their own refresh sessions.
type SessionHandler struct {
	db       *gorm.DB
	sessions *iauth.SessionService
}

func NewSessionHandler(db *gorm.DB, sessions *iauth.SessionService) *SessionHandler {
	return &SessionHandler{db: db, sessions: sessions}
}

// GET /api/sessions/me
func (h *SessionHandler) ListMySessions(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var sessions []models.Session
	if err := h.db.WithContext(requestContext(c)).
		Where("user_id = ?", userID).
		Order("last_used_at DESC").
		Find(&sessions).Error; err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, sessions)
}

// POST /api/sessions/revoke/:id
func (h *SessionHandler) Revoke(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	// Sessions are personal; a foreign ID looks like a missing one.
	var session models.Session
	err := h.db.WithContext(requestContext(c)).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, apperrors.ErrNotFound)
		return
	}
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	if err := h.sessions.RevokeSession(session.ID); err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// POST /api/sessions/revoke_all
func (h *SessionHandler) RevokeAll(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeUserSessions(userID); err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}
