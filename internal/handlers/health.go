package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/pkg/response"
)

// Health returns a simple status payload useful for readiness checks. It
// backs /api/health when the full health-check manager is disabled.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
