package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/realtime"
	"github.com/virtualstage/backlot/internal/services"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/response"
)

// TalentHandler serves the shared contractor pool and the assignments binding
// talent to characters, assets and shots.
type TalentHandler struct {
	talent *services.TalentService
}

func NewTalentHandler(db *gorm.DB, hub *realtime.Hub) (*TalentHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	notifications, err := services.NewNotificationService(db, hub)
	if err != nil {
		return nil, err
	}
	talent, err := services.NewTalentService(db, audit, notifications)
	if err != nil {
		return nil, err
	}
	return &TalentHandler{talent: talent}, nil
}

type createTalentRequest struct {
	Name               string   `json:"name" validate:"required,max=255"`
	TalentType         string   `json:"talent_type" validate:"required,max=64"`
	Email              string   `json:"email" validate:"omitempty,email"`
	Phone              string   `json:"phone" validate:"omitempty,max=32"`
	PortfolioURL       string   `json:"portfolio_url" validate:"omitempty,max=512"`
	Notes              string   `json:"notes" validate:"omitempty,max=2048"`
	HourlyRate         *float64 `json:"hourly_rate" validate:"omitempty,min=0"`
	DailyRate          *float64 `json:"daily_rate" validate:"omitempty,min=0"`
	AvailabilityStatus string   `json:"availability_status" validate:"omitempty,max=64"`
	Specializations    []string `json:"specializations"`
	Languages          []string `json:"languages"`
}

type updateTalentRequest struct {
	Name               *string  `json:"name" validate:"omitempty,max=255"`
	TalentType         *string  `json:"talent_type" validate:"omitempty,max=64"`
	Email              *string  `json:"email" validate:"omitempty,email"`
	Phone              *string  `json:"phone" validate:"omitempty,max=32"`
	PortfolioURL       *string  `json:"portfolio_url" validate:"omitempty,max=512"`
	Notes              *string  `json:"notes" validate:"omitempty,max=2048"`
	HourlyRate         *float64 `json:"hourly_rate" validate:"omitempty,min=0"`
	DailyRate          *float64 `json:"daily_rate" validate:"omitempty,min=0"`
	AvailabilityStatus *string  `json:"availability_status" validate:"omitempty,max=64"`
	Specializations    []string `json:"specializations"`
	Languages          []string `json:"languages"`
}

type createTalentAssignmentRequest struct {
	TalentID       string   `json:"talent_id" validate:"required"`
	RoleType       string   `json:"role_type" validate:"omitempty,max=64"`
	Status         string   `json:"status" validate:"omitempty,max=64"`
	RateAgreed     *float64 `json:"rate_agreed" validate:"omitempty,min=0"`
	EstimatedHours *int     `json:"estimated_hours" validate:"omitempty,min=0"`
	Notes          string   `json:"notes" validate:"omitempty,max=2048"`
}

func (r createTalentAssignmentRequest) toInput() services.CreateTalentAssignmentInput {
	return services.CreateTalentAssignmentInput{
		TalentID:       r.TalentID,
		RoleType:       r.RoleType,
		Status:         r.Status,
		RateAgreed:     r.RateAgreed,
		EstimatedHours: r.EstimatedHours,
		Notes:          r.Notes,
	}
}

type updateTalentAssignmentRequest struct {
	RoleType       *string  `json:"role_type" validate:"omitempty,max=64"`
	Status         *string  `json:"status" validate:"omitempty,max=64"`
	RateAgreed     *float64 `json:"rate_agreed" validate:"omitempty,min=0"`
	EstimatedHours *int     `json:"estimated_hours" validate:"omitempty,min=0"`
	ActualHours    *int     `json:"actual_hours" validate:"omitempty,min=0"`
	Notes          *string  `json:"notes" validate:"omitempty,max=2048"`
}

func (r updateTalentAssignmentRequest) toInput() services.UpdateTalentAssignmentInput {
	return services.UpdateTalentAssignmentInput{
		RoleType:       r.RoleType,
		Status:         r.Status,
		RateAgreed:     r.RateAgreed,
		EstimatedHours: r.EstimatedHours,
		ActualHours:    r.ActualHours,
		Notes:          r.Notes,
	}
}

// GET /api/talent-pool/talent
func (h *TalentHandler) List(c *gin.Context) {
	entries, err := h.talent.List(requestContext(c), services.ListTalentInput{
		TalentType:         c.Query("talent_type"),
		AvailabilityStatus: c.Query("availability_status"),
		Search:             c.Query("search"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

// POST /api/talent-pool/talent
func (h *TalentHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req createTalentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	talent, err := h.talent.Create(requestContext(c), services.CreateTalentInput{
		Name:               req.Name,
		TalentType:         req.TalentType,
		Email:              req.Email,
		Phone:              req.Phone,
		PortfolioURL:       req.PortfolioURL,
		Notes:              req.Notes,
		HourlyRate:         req.HourlyRate,
		DailyRate:          req.DailyRate,
		AvailabilityStatus: req.AvailabilityStatus,
		Specializations:    req.Specializations,
		Languages:          req.Languages,
	}, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, talent)
}

// GET /api/talent-pool/talent/:talentID
func (h *TalentHandler) Get(c *gin.Context) {
	talent, err := h.talent.GetByID(requestContext(c), c.Param("talentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, talent)
}

// PUT /api/talent-pool/talent/:talentID
func (h *TalentHandler) Update(c *gin.Context) {
	var req updateTalentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	talent, err := h.talent.Update(requestContext(c), c.Param("talentID"), services.UpdateTalentInput{
		Name:               req.Name,
		TalentType:         req.TalentType,
		Email:              req.Email,
		Phone:              req.Phone,
		PortfolioURL:       req.PortfolioURL,
		Notes:              req.Notes,
		HourlyRate:         req.HourlyRate,
		DailyRate:          req.DailyRate,
		AvailabilityStatus: req.AvailabilityStatus,
		Specializations:    req.Specializations,
		Languages:          req.Languages,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, talent)
}

// DELETE /api/talent-pool/talent/:talentID
func (h *TalentHandler) Delete(c *gin.Context) {
	if err := h.talent.Delete(requestContext(c), c.Param("talentID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Talent deleted successfully"})
}

// GET /api/talent-pool/stories/:storyID/characters/:characterID/talent
func (h *TalentHandler) ListCharacterAssignments(c *gin.Context) {
	assignments, err := h.talent.ListCharacterAssignments(requestContext(c), c.Param("storyID"), c.Param("characterID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignments)
}

// POST /api/talent-pool/stories/:storyID/characters/:characterID/talent
func (h *TalentHandler) AssignToCharacter(c *gin.Context) {
	var req createTalentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.talent.AssignToCharacter(requestContext(c), c.Param("storyID"), c.Param("characterID"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, assignment)
}

// PUT /api/talent-pool/talent-assignments/character/:assignmentID
func (h *TalentHandler) UpdateCharacterAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req updateTalentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.talent.UpdateCharacterAssignment(requestContext(c), c.Param("assignmentID"), userID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignment)
}

// DELETE /api/talent-pool/talent-assignments/character/:assignmentID
func (h *TalentHandler) DeleteCharacterAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.talent.DeleteCharacterAssignment(requestContext(c), c.Param("assignmentID"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}

// GET /api/talent-pool/stories/:storyID/assets/:assetID/talent
func (h *TalentHandler) ListAssetAssignments(c *gin.Context) {
	assignments, err := h.talent.ListAssetAssignments(requestContext(c), c.Param("storyID"), c.Param("assetID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignments)
}

// POST /api/talent-pool/stories/:storyID/assets/:assetID/talent
func (h *TalentHandler) AssignToAsset(c *gin.Context) {
	var req createTalentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.talent.AssignToAsset(requestContext(c), c.Param("storyID"), c.Param("assetID"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, assignment)
}

// PUT /api/talent-pool/talent-assignments/asset/:assignmentID
func (h *TalentHandler) UpdateAssetAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req updateTalentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.talent.UpdateAssetAssignment(requestContext(c), c.Param("assignmentID"), userID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignment)
}

// DELETE /api/talent-pool/talent-assignments/asset/:assignmentID
func (h *TalentHandler) DeleteAssetAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.talent.DeleteAssetAssignment(requestContext(c), c.Param("assignmentID"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}

// GET /api/talent-pool/stories/:storyID/shots/:shotID/talent
func (h *TalentHandler) ListShotAssignments(c *gin.Context) {
	assignments, err := h.talent.ListShotAssignments(requestContext(c), c.Param("storyID"), c.Param("shotID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignments)
}

// POST /api/talent-pool/stories/:storyID/shots/:shotID/talent
func (h *TalentHandler) AssignToShot(c *gin.Context) {
	var req createTalentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.talent.AssignToShot(requestContext(c), c.Param("storyID"), c.Param("shotID"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, assignment)
}

// PUT /api/talent-pool/talent-assignments/shot/:assignmentID
func (h *TalentHandler) UpdateShotAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req updateTalentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.talent.UpdateShotAssignment(requestContext(c), c.Param("assignmentID"), userID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignment)
}

// DELETE /api/talent-pool/talent-assignments/shot/:assignmentID
func (h *TalentHandler) DeleteShotAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.talent.DeleteShotAssignment(requestContext(c), c.Param("assignmentID"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}
