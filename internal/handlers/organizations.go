package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/services"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/response"
)

type OrganizationHandler struct {
	orgs *services.OrganizationService
}

func NewOrganizationHandler(db *gorm.DB) (*OrganizationHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	orgs, err := services.NewOrganizationService(db, audit)
	if err != nil {
		return nil, err
	}
	return &OrganizationHandler{orgs: orgs}, nil
}

type createOrganizationRequest struct {
	Name        string         `json:"name" validate:"required,min=2,max=128"`
	Slug        string         `json:"slug" validate:"omitempty,max=128"`
	Description string         `json:"description" validate:"omitempty,max=512"`
	LogoURL     string         `json:"logo_url" validate:"omitempty,max=512"`
	Settings    map[string]any `json:"settings"`
}

type updateOrganizationRequest struct {
	Name        *string        `json:"name" validate:"omitempty,min=2,max=128"`
	Description *string        `json:"description" validate:"omitempty,max=512"`
	LogoURL     *string        `json:"logo_url" validate:"omitempty,max=512"`
	Settings    map[string]any `json:"settings"`
}

// GET /api/auth/organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	orgs, err := h.orgs.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, orgs)
}

// GET /api/auth/organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.orgs.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, org)
}

// POST /api/auth/organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req createOrganizationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		response.Error(c, apperrors.NewBadRequest("name is required"))
		return
	}

	org, err := h.orgs.Create(requestContext(c), services.CreateOrganizationInput{
		Name:        name,
		Slug:        strings.TrimSpace(req.Slug),
		Description: strings.TrimSpace(req.Description),
		LogoURL:     strings.TrimSpace(req.LogoURL),
		Settings:    req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, org)
}

// PUT /api/auth/organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	var req updateOrganizationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	org, err := h.orgs.Update(requestContext(c), c.Param("id"), services.UpdateOrganizationInput{
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Settings:    req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, org)
}

// DELETE /api/auth/organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	if err := h.orgs.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Organization deleted successfully"})
}
