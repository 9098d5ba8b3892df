package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/internal/permissions"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/metrics"
	"github.com/virtualstage/backlot/pkg/response"
)

// CtxStoryKey holds the story loaded by RequireStoryAccess.
const CtxStoryKey = "story"

// RequireStoryAccess loads the story named by the :storyID route parameter
// and verifies the caller may act on it at the level implied by
// permissionID (stories.view, stories.edit or stories.delete). Denied view
// checks surface as 404 so callers cannot probe for story existence; denied
// mutations surface as 403. The loaded story is stored under CtxStoryKey.
func RequireStoryAccess(db *gorm.DB, checker *permissions.Checker, permissionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserIDKey)
		if userID == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		storyID := strings.TrimSpace(c.Param("storyID"))
		var story models.Story
		err := db.WithContext(c.Request.Context()).First(&story, "id = ?", storyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, apperrors.ErrNotFound)
			c.Abort()
			return
		}
		if err != nil {
			response.Error(c, apperrors.ErrInternalServer)
			c.Abort()
			return
		}

		allowed, err := checker.CheckStoryAccess(c.Request.Context(), userID, &story, permissionID)
		if err != nil {
			metrics.PermissionChecks.WithLabelValues(permissionID, "error").Inc()
			response.Error(c, apperrors.ErrInternalServer)
			c.Abort()
			return
		}
		if !allowed {
			metrics.PermissionChecks.WithLabelValues(permissionID, "denied").Inc()
			// Hide stories the caller cannot see; reject mutations openly.
			if permissionID == "stories.view" {
				response.Error(c, apperrors.ErrNotFound)
			} else {
				response.Error(c, apperrors.ErrForbidden)
			}
			c.Abort()
			return
		}
		metrics.PermissionChecks.WithLabelValues(permissionID, "allowed").Inc()

		c.Set(CtxStoryKey, &story)
		c.Next()
	}
}

// StoryFromContext returns the story placed in the context by RequireStoryAccess.
func StoryFromContext(c *gin.Context) (*models.Story, bool) {
	v, ok := c.Get(CtxStoryKey)
	if !ok {
		return nil, false
	}
	story, ok := v.(*models.Story)
	if !ok || story == nil {
		return nil, false
	}
	return story, true
}
