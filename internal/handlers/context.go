package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/auditctx"
	"github.com/virtualstage/backlot/internal/middleware"
)

// requestContext returns the request's context with the acting user attached
// for audit attribution. It falls back to a background context when handlers
// run outside a real HTTP request (tests mostly).
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	req := c.Request
	if req == nil {
		return context.Background()
	}

	actor := auditctx.Actor{
		UserID:    c.GetString(middleware.CtxUserIDKey),
		IPAddress: c.ClientIP(),
		UserAgent: req.UserAgent(),
	}
	if actor.IsZero() {
		return req.Context()
	}
	return auditctx.WithActor(req.Context(), actor)
}
