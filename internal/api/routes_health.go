package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/app"
	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/monitoring"
)

// registerHealthRoutes exposes health probes at the root and under /api so
// both load balancers and the frontend proxy can reach them. Without a
// manager (tests, or health disabled in config) a static OK handler stands in.
func registerHealthRoutes(r *gin.Engine, cfg *app.Config, manager *monitoring.HealthManager) {
	if cfg == nil || !cfg.Monitoring.Health.Enabled || manager == nil {
		fallback := handlers.Health()
		r.GET("/health", fallback)
		r.GET("/api/health", fallback)
		return
	}

	registerHealthEndpoints(r, manager)
	registerHealthEndpoints(r.Group("/api"), manager)
}

func registerHealthEndpoints(router gin.IRouter, manager *monitoring.HealthManager) {
	router.GET("/health", func(c *gin.Context) {
		report := manager.EvaluateReadiness(c.Request.Context())
		status := http.StatusOK
		if !report.Success {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"success":    report.Success,
			"status":     report.Status,
			"checked_at": time.Now().UTC(),
		})
	})

	router.GET("/health/live", func(c *gin.Context) {
		writeHealthReport(c, manager.EvaluateLiveness(c.Request.Context()))
	})

	router.GET("/health/ready", func(c *gin.Context) {
		writeHealthReport(c, manager.EvaluateReadiness(c.Request.Context()))
	})
}

func writeHealthReport(c *gin.Context, report monitoring.HealthReport) {
	status := http.StatusOK
	if !report.Success {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checks":     report.Checks,
		"checked_at": time.Now().UTC(),
	})
}
