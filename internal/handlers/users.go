package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/services"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/response"
)

// UserHandler exposes the administrative user endpoints.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(db *gorm.DB) (*UserHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(db, audit)
	if err != nil {
		return nil, err
	}
	return &UserHandler{users: users}, nil
}

// GET /api/auth/users
func (h *UserHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	filters := services.UserFilters{
		Query:          strings.TrimSpace(c.Query("q")),
		OrganizationID: strings.TrimSpace(c.Query("organization_id")),
		TeamID:         strings.TrimSpace(c.Query("team_id")),
		RoleID:         strings.TrimSpace(c.Query("role_id")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active := raw == "true" || raw == "1"
		filters.IsActive = &active
	}

	users, total, err := h.users.List(requestContext(c), services.ListUsersOptions{
		Page:    page,
		PerPage: perPage,
		Filters: filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, response.PageMeta(page, perPage, total))
}

// GET /api/auth/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

type adminCreateUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"omitempty,max=128"`
	LastName  string `json:"last_name" validate:"omitempty,max=128"`

	IsSuperuser bool `json:"is_superuser"`

	OrganizationID *string `json:"organization_id"`
	TeamID         *string `json:"team_id"`
	RoleID         *string `json:"role_id"`
}

// POST /api/auth/users
func (h *UserHandler) Create(c *gin.Context) {
	var req adminCreateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Create(requestContext(c), services.CreateUserInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		IsSuperuser:    req.IsSuperuser,
		OrganizationID: req.OrganizationID,
		TeamID:         req.TeamID,
		RoleID:         req.RoleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

type adminUpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=128"`
	LastName  *string `json:"last_name" validate:"omitempty,max=128"`
	Avatar    *string `json:"avatar" validate:"omitempty,max=512"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Bio       *string `json:"bio" validate:"omitempty,max=2048"`

	IsActive    *bool `json:"is_active"`
	IsSuperuser *bool `json:"is_superuser"`

	OrganizationID *string `json:"organization_id"`
	TeamID         *string `json:"team_id"`
	RoleID         *string `json:"role_id"`
}

// PUT /api/auth/users/:id/update
func (h *UserHandler) Update(c *gin.Context) {
	var req adminUpdateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Update(requestContext(c), c.Param("id"), services.UpdateUserInput{
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Avatar:         req.Avatar,
		Phone:          req.Phone,
		Bio:            req.Bio,
		IsActive:       req.IsActive,
		IsSuperuser:    req.IsSuperuser,
		OrganizationID: req.OrganizationID,
		TeamID:         req.TeamID,
		RoleID:         req.RoleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// DELETE /api/auth/users/:id/delete
func (h *UserHandler) Delete(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.users.Delete(requestContext(c), c.Param("id"), actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "User deleted successfully"})
}
