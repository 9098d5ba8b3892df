package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/services"
	"github.com/virtualstage/backlot/pkg/response"
)

type AuditHandler struct {
	svc *services.AuditService
}

func NewAuditHandler(db *gorm.DB) (*AuditHandler, error) {
	svc, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	return &AuditHandler{svc: svc}, nil
}

// GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 50)

	var filters services.AuditFilters
	filters.UserID = c.Query("user_id")
	filters.Action = c.Query("action")
	filters.Result = c.Query("result")
	filters.Resource = c.Query("resource")

	if s := c.Query("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filters.Since = &t
		}
	}
	if u := c.Query("until"); u != "" {
		if t, err := time.Parse(time.RFC3339, u); err == nil {
			filters.Until = &t
		}
	}

	logs, total, err := h.svc.List(requestContext(c), services.AuditListOptions{Page: page, PageSize: perPage, Filters: filters})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, logs, response.PageMeta(page, perPage, total))
}
