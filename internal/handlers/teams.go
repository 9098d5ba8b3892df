package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/services"
	"github.com/virtualstage/backlot/pkg/response"
)

type TeamHandler struct {
	teams *services.TeamService
}

func NewTeamHandler(db *gorm.DB) (*TeamHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	teams, err := services.NewTeamService(db, audit)
	if err != nil {
		return nil, err
	}
	return &TeamHandler{teams: teams}, nil
}

type createTeamRequest struct {
	OrganizationID string `json:"organization_id" validate:"required"`
	Name           string `json:"name" validate:"required,min=2,max=128"`
	Description    string `json:"description" validate:"omitempty,max=512"`
}

type updateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
}

type teamMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// GET /api/auth/teams
func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.teams.List(requestContext(c), strings.TrimSpace(c.Query("organization_id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, teams)
}

// GET /api/auth/teams/:id
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.teams.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// POST /api/auth/teams
func (h *TeamHandler) Create(c *gin.Context) {
	var req createTeamRequest
	if !bindAndValidate(c, &req) {
		return
	}

	team, err := h.teams.Create(requestContext(c), services.CreateTeamInput{
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		Name:           strings.TrimSpace(req.Name),
		Description:    strings.TrimSpace(req.Description),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, team)
}

// PUT /api/auth/teams/:id
func (h *TeamHandler) Update(c *gin.Context) {
	var req updateTeamRequest
	if !bindAndValidate(c, &req) {
		return
	}

	team, err := h.teams.Update(requestContext(c), c.Param("id"), services.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// DELETE /api/auth/teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	if err := h.teams.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Team deleted successfully"})
}

// GET /api/auth/teams/:id/members
func (h *TeamHandler) ListMembers(c *gin.Context) {
	members, err := h.teams.ListMembers(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}

// POST /api/auth/teams/:id/members
func (h *TeamHandler) AddMember(c *gin.Context) {
	var req teamMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.teams.AddMember(requestContext(c), c.Param("id"), strings.TrimSpace(req.UserID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// DELETE /api/auth/teams/:id/members/:userID/remove
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	if err := h.teams.RemoveMember(requestContext(c), c.Param("id"), c.Param("userID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Member removed from team"})
}
