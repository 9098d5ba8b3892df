package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/permissions"
	"github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/metrics"
	"github.com/virtualstage/backlot/pkg/response"
)

// RequirePermission checks that the authenticated user holds the given
// permission ID before the handler runs. Story-level grants are checked in
// the services where the story row is already loaded.
func RequirePermission(checker *permissions.Checker, permissionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)
		allowed, err := checker.Check(c.Request.Context(), userID, permissionID)
		if err != nil {
			metrics.PermissionChecks.WithLabelValues(permissionID, "error").Inc()
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": gin.H{"code": errors.ErrInternalServer.Code, "message": "permission check failed"}})
			return
		}
		if !allowed {
			metrics.PermissionChecks.WithLabelValues(permissionID, "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		metrics.PermissionChecks.WithLabelValues(permissionID, "allowed").Inc()
		c.Next()
	}
}
