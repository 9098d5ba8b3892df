package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/permissions"
	"github.com/virtualstage/backlot/internal/services"
	"github.com/virtualstage/backlot/pkg/response"
)

type RoleHandler struct {
	roles *services.RoleService
}

func NewRoleHandler(db *gorm.DB) (*RoleHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	roles, err := services.NewRoleService(db, audit)
	if err != nil {
		return nil, err
	}
	return &RoleHandler{roles: roles}, nil
}

type createRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=128"`
	Description string   `json:"description" validate:"omitempty,max=512"`
	Permissions []string `json:"permissions"`
}

type updateRoleRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=128"`
	Description *string  `json:"description" validate:"omitempty,max=512"`
	Permissions []string `json:"permissions"`
}

// GET /api/auth/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roles.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// GET /api/auth/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roles.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/auth/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req createRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.roles.Create(requestContext(c), services.CreateRoleInput{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Permissions: req.Permissions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}

// PUT /api/auth/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	var req updateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.roles.Update(requestContext(c), c.Param("id"), services.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// DELETE /api/auth/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.roles.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Role deleted successfully"})
}

// GET /api/auth/permissions
//
// Lists the registered permission catalog so role editors can offer the
// full set of grantable IDs.
func (h *RoleHandler) Permissions(c *gin.Context) {
	response.Success(c, http.StatusOK, permissions.List())
}
