package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/realtime"
	"github.com/virtualstage/backlot/internal/services"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/response"
)

// DepartmentHandler serves the department catalog, story-department links and
// the per-asset/per-shot department assignments.
type DepartmentHandler struct {
	departments *services.DepartmentService
}

func NewDepartmentHandler(db *gorm.DB, hub *realtime.Hub) (*DepartmentHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	notifications, err := services.NewNotificationService(db, hub)
	if err != nil {
		return nil, err
	}
	departments, err := services.NewDepartmentService(db, audit, notifications)
	if err != nil {
		return nil, err
	}
	return &DepartmentHandler{departments: departments}, nil
}

type createDepartmentRequest struct {
	Name           string `json:"name" validate:"required,max=128"`
	DepartmentType string `json:"department_type" validate:"required,max=64"`
	Description    string `json:"description" validate:"omitempty,max=512"`
	Icon           string `json:"icon" validate:"omitempty,max=64"`
	Color          string `json:"color" validate:"omitempty,max=16"`
	DisplayOrder   int    `json:"display_order"`
	IsActive       *bool  `json:"is_active"`
}

type updateDepartmentRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=128"`
	DepartmentType *string `json:"department_type" validate:"omitempty,max=64"`
	Description    *string `json:"description" validate:"omitempty,max=512"`
	Icon           *string `json:"icon" validate:"omitempty,max=64"`
	Color          *string `json:"color" validate:"omitempty,max=16"`
	DisplayOrder   *int    `json:"display_order"`
	IsActive       *bool   `json:"is_active"`
}

type assignDepartmentRequest struct {
	DepartmentID string `json:"department_id" validate:"required"`
	Notes        string `json:"notes" validate:"omitempty,max=2048"`
}

type departmentAssignmentRequest struct {
	DepartmentID string     `json:"department_id"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	Notes        *string    `json:"notes" validate:"omitempty,max=2048"`
}

func (r departmentAssignmentRequest) toInput() services.DepartmentAssignmentInput {
	return services.DepartmentAssignmentInput{
		Status:   r.Status,
		Priority: r.Priority,
		DueDate:  r.DueDate,
		Notes:    r.Notes,
	}
}

// GET /api/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	departments, err := h.departments.ListDepartments(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, departments)
}

// POST /api/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req createDepartmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	department, err := h.departments.CreateDepartment(requestContext(c), services.CreateDepartmentInput{
		Name:           req.Name,
		DepartmentType: req.DepartmentType,
		Description:    req.Description,
		Icon:           req.Icon,
		Color:          req.Color,
		DisplayOrder:   req.DisplayOrder,
		IsActive:       req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, department)
}

// GET /api/departments/:departmentID
func (h *DepartmentHandler) Get(c *gin.Context) {
	department, err := h.departments.GetDepartment(requestContext(c), c.Param("departmentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, department)
}

// PUT /api/departments/:departmentID
func (h *DepartmentHandler) Update(c *gin.Context) {
	var req updateDepartmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	department, err := h.departments.UpdateDepartment(requestContext(c), c.Param("departmentID"), services.UpdateDepartmentInput{
		Name:           req.Name,
		DepartmentType: req.DepartmentType,
		Description:    req.Description,
		Icon:           req.Icon,
		Color:          req.Color,
		DisplayOrder:   req.DisplayOrder,
		IsActive:       req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, department)
}

// DELETE /api/departments/:departmentID
func (h *DepartmentHandler) Delete(c *gin.Context) {
	if err := h.departments.DeleteDepartment(requestContext(c), c.Param("departmentID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Department deleted successfully"})
}

// GET /api/departments/stories/:storyID
func (h *DepartmentHandler) ListStoryDepartments(c *gin.Context) {
	links, err := h.departments.ListStoryDepartments(requestContext(c), c.Param("storyID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, links)
}

// POST /api/departments/stories/:storyID
func (h *DepartmentHandler) AssignToStory(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req assignDepartmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	link, err := h.departments.AssignDepartment(requestContext(c), c.Param("storyID"), req.DepartmentID, req.Notes, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, link)
}

// DELETE /api/departments/stories/:storyID/:departmentID
func (h *DepartmentHandler) RemoveFromStory(c *gin.Context) {
	err := h.departments.RemoveDepartment(requestContext(c), c.Param("storyID"), c.Param("departmentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Department removed from story"})
}

// GET /api/departments/stories/:storyID/:departmentID/stats
func (h *DepartmentHandler) Stats(c *gin.Context) {
	stats, err := h.departments.DepartmentStats(requestContext(c), c.Param("storyID"), c.Param("departmentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GET /api/departments/stories/:storyID/:departmentID/assets
func (h *DepartmentHandler) AssetsForDepartment(c *gin.Context) {
	assignments, err := h.departments.DepartmentAssets(requestContext(c), c.Param("storyID"), c.Param("departmentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignments)
}

// GET /api/departments/stories/:storyID/:departmentID/shots
func (h *DepartmentHandler) ShotsForDepartment(c *gin.Context) {
	assignments, err := h.departments.DepartmentShots(requestContext(c), c.Param("storyID"), c.Param("departmentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignments)
}

// GET /api/departments/stories/:storyID/assets/:assetID
func (h *DepartmentHandler) ListAssetAssignments(c *gin.Context) {
	assignments, err := h.departments.ListAssetAssignments(requestContext(c), c.Param("storyID"), c.Param("assetID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignments)
}

// POST /api/departments/stories/:storyID/assets/:assetID
func (h *DepartmentHandler) UpsertAssetAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req departmentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.departments.UpsertAssetAssignment(requestContext(c), c.Param("storyID"), c.Param("assetID"), req.DepartmentID, req.toInput(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, assignment)
}

// PUT /api/departments/assignments/asset/:assignmentID
func (h *DepartmentHandler) UpdateAssetAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req departmentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.departments.UpdateAssetAssignment(requestContext(c), c.Param("assignmentID"), userID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignment)
}

// DELETE /api/departments/assignments/asset/:assignmentID
func (h *DepartmentHandler) DeleteAssetAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.departments.DeleteAssetAssignment(requestContext(c), c.Param("assignmentID"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}

// GET /api/departments/stories/:storyID/shots/:shotID
func (h *DepartmentHandler) ListShotAssignments(c *gin.Context) {
	assignments, err := h.departments.ListShotAssignments(requestContext(c), c.Param("storyID"), c.Param("shotID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignments)
}

// POST /api/departments/stories/:storyID/shots/:shotID
func (h *DepartmentHandler) UpsertShotAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req departmentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.departments.UpsertShotAssignment(requestContext(c), c.Param("storyID"), c.Param("shotID"), req.DepartmentID, req.toInput(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, assignment)
}

// PUT /api/departments/assignments/shot/:assignmentID
func (h *DepartmentHandler) UpdateShotAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req departmentAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.departments.UpdateShotAssignment(requestContext(c), c.Param("assignmentID"), userID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignment)
}

// DELETE /api/departments/assignments/shot/:assignmentID
func (h *DepartmentHandler) DeleteShotAssignment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.departments.DeleteShotAssignment(requestContext(c), c.Param("assignmentID"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}
