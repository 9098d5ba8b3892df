package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
)

var (
	// ErrDepartmentNotFound is returned when a catalog entry does not exist.
	ErrDepartmentNotFound = apperrors.New("DEPARTMENT_NOT_FOUND", "Department not found", http.StatusNotFound)
	// ErrDepartmentAssigned rejects assigning the same department to a story twice.
	ErrDepartmentAssigned = apperrors.New("DEPARTMENT_ALREADY_ASSIGNED", "Department already assigned to this story", http.StatusBadRequest)
	// ErrStoryDepartmentNotFound is returned when a department is not active on a story.
	ErrStoryDepartmentNotFound = apperrors.New("STORY_DEPARTMENT_NOT_FOUND", "Department is not assigned to this story", http.StatusNotFound)
	// ErrAssignmentNotFound is returned for missing asset or shot assignments.
	ErrAssignmentNotFound = apperrors.New("ASSIGNMENT_NOT_FOUND", "Assignment not found", http.StatusNotFound)
)

// CreateDepartmentInput defines a new catalog entry.
type CreateDepartmentInput struct {
	Name           string
	DepartmentType string
	Description    string
	Icon           string
	Color          string
	DisplayOrder   int
	IsActive       *bool
}

// UpdateDepartmentInput applies a partial catalog edit.
type UpdateDepartmentInput struct {
	Name           *string
	DepartmentType *string
	Description    *string
	Icon           *string
	Color          *string
	DisplayOrder   *int
	IsActive       *bool
}

// DepartmentAssignmentInput carries the mutable fields of an asset or shot
// assignment. Nil fields keep their current (or default) values.
type DepartmentAssignmentInput struct {
	Status   *string
	Priority *string
	DueDate  *time.Time
	Notes    *string
}

// DepartmentRef identifies a department inside a stats payload.
type DepartmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// DepartmentStatsSection counts one entity kind's assignments by state.
type DepartmentStatsSection struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
}

// DepartmentOverdue counts assignments past their due date that are still
// pending or in progress.
type DepartmentOverdue struct {
	Assets int `json:"assets"`
	Shots  int `json:"shots"`
}

// DepartmentCosts sums the estimated costs of the assigned entities.
type DepartmentCosts struct {
	Total  float64 `json:"total"`
	Assets float64 `json:"assets"`
	Shots  float64 `json:"shots"`
}

// DepartmentStats is the workload report for one department on one story.
type DepartmentStats struct {
	Department DepartmentRef          `json:"department"`
	Assets     DepartmentStatsSection `json:"assets"`
	Shots      DepartmentStatsSection `json:"shots"`
	Overdue    DepartmentOverdue      `json:"overdue"`
	Costs      DepartmentCosts        `json:"costs"`
}

// DepartmentService manages the department catalog, per-story activation and
// the asset/shot work queues.
type DepartmentService struct {
	db            *gorm.DB
	auditService  *AuditService
	notifications *NotificationService
}

// NewDepartmentService constructs a DepartmentService. Notifications may be
// nil; assignment events are then not delivered.
func NewDepartmentService(db *gorm.DB, auditService *AuditService, notifications *NotificationService) (*DepartmentService, error) {
	if db == nil {
		return nil, errors.New("department service: db is required")
	}
	return &DepartmentService{db: db, auditService: auditService, notifications: notifications}, nil
}

// ListDepartments returns the active catalog in display order.
func (s *DepartmentService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	ctx = ensureContext(ctx)

	var departments []models.Department
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC, name ASC").
		Find(&departments).Error; err != nil {
		return nil, fmt.Errorf("department service: list departments: %w", err)
	}
	return departments, nil
}

// CreateDepartment adds a catalog entry. Department types are unique.
func (s *DepartmentService) CreateDepartment(ctx context.Context, input CreateDepartmentInput) (*models.Department, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	departmentType := strings.TrimSpace(input.DepartmentType)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if departmentType == "" {
		return nil, apperrors.NewBadRequest("department_type is required")
	}

	department := models.Department{
		Name:           name,
		DepartmentType: departmentType,
		Description:    input.Description,
		Icon:           strings.TrimSpace(input.Icon),
		Color:          defaultIfEmpty(strings.TrimSpace(input.Color), "#1976d2"),
		IsActive:       true,
		DisplayOrder:   input.DisplayOrder,
	}
	if input.IsActive != nil {
		department.IsActive = *input.IsActive
	}

	err := s.db.WithContext(ctx).
		Select("ID", "CreatedAt", "UpdatedAt", "Name", "DepartmentType", "Description", "Icon", "Color", "IsActive", "DisplayOrder").
		Create(&department).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("department type already exists")
		}
		return nil, fmt.Errorf("department service: create department: %w", err)
	}
	return &department, nil
}

// GetDepartment returns one catalog entry.
func (s *DepartmentService) GetDepartment(ctx context.Context, departmentID string) (*models.Department, error) {
	ctx = ensureContext(ctx)
	return s.requireDepartment(ctx, departmentID)
}

// UpdateDepartment applies a partial catalog edit.
func (s *DepartmentService) UpdateDepartment(ctx context.Context, departmentID string, input UpdateDepartmentInput) (*models.Department, error) {
	ctx = ensureContext(ctx)

	department, err := s.requireDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("name cannot be empty")
		}
		updates["name"] = name
	}
	if input.DepartmentType != nil {
		departmentType := strings.TrimSpace(*input.DepartmentType)
		if departmentType == "" {
			return nil, apperrors.NewBadRequest("department_type cannot be empty")
		}
		updates["department_type"] = departmentType
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Icon != nil {
		updates["icon"] = strings.TrimSpace(*input.Icon)
	}
	if input.Color != nil {
		updates["color"] = strings.TrimSpace(*input.Color)
	}
	if input.DisplayOrder != nil {
		updates["display_order"] = *input.DisplayOrder
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return department, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.Department{}).
		Where("id = ?", department.ID).
		Updates(updates).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("department type already exists")
		}
		return nil, fmt.Errorf("department service: update department: %w", err)
	}
	return s.requireDepartment(ctx, departmentID)
}

// DeleteDepartment removes a catalog entry along with its story links and
// open assignments.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, departmentID string) error {
	ctx = ensureContext(ctx)

	department, err := s.requireDepartment(ctx, departmentID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.AssetDepartmentAssignment{},
			&models.ShotDepartmentAssignment{},
			&models.StoryDepartment{},
		} {
			if err := tx.Where("department_id = ?", department.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("department service: delete dependents: %w", err)
			}
		}
		if err := tx.Delete(&models.Department{}, "id = ?", department.ID).Error; err != nil {
			return fmt.Errorf("department service: delete department: %w", err)
		}
		return nil
	})
}

// ListStoryDepartments returns the departments activated on a story, newest
// assignment first.
func (s *DepartmentService) ListStoryDepartments(ctx context.Context, storyID string) ([]models.StoryDepartment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStory(ctx, storyID); err != nil {
		return nil, err
	}

	var links []models.StoryDepartment
	if err := s.db.WithContext(ctx).
		Where("story_id = ?", strings.TrimSpace(storyID)).
		Preload("Department").
		Order("assigned_at DESC").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("department service: list story departments: %w", err)
	}
	return links, nil
}

// AssignDepartment activates a department on a story.
func (s *DepartmentService) AssignDepartment(ctx context.Context, storyID, departmentID, notes, assignedByID string) (*models.StoryDepartment, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(departmentID) == "" {
		return nil, apperrors.NewBadRequest("department is required")
	}
	if err := s.requireStory(ctx, storyID); err != nil {
		return nil, err
	}
	department, err := s.requireDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	link := models.StoryDepartment{
		StoryID:      strings.TrimSpace(storyID),
		DepartmentID: department.ID,
		IsActive:     true,
		Notes:        notes,
		AssignedByID: trimPtr(&assignedByID),
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDepartmentAssigned
		}
		return nil, fmt.Errorf("department service: assign department: %w", err)
	}
	link.Department = department

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   trimPtr(&assignedByID),
		Action:   "department.assign",
		Resource: link.StoryID,
		Result:   "success",
		Metadata: map[string]any{"department_id": department.ID},
	})

	return &link, nil
}

// RemoveDepartment deactivates a department on a story. Existing asset and
// shot assignments for that department stay untouched.
func (s *DepartmentService) RemoveDepartment(ctx context.Context, storyID, departmentID string) error {
	ctx = ensureContext(ctx)

	if err := s.requireStory(ctx, storyID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("story_id = ? AND department_id = ?", strings.TrimSpace(storyID), strings.TrimSpace(departmentID)).
		Delete(&models.StoryDepartment{})
	if result.Error != nil {
		return fmt.Errorf("department service: remove department: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStoryDepartmentNotFound
	}
	return nil
}

// DepartmentStats reports assignment counts, overdue work and summed entity
// costs for one department on one story.
func (s *DepartmentService) DepartmentStats(ctx context.Context, storyID, departmentID string) (*DepartmentStats, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStory(ctx, storyID); err != nil {
		return nil, err
	}
	department, err := s.requireDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	assetAssignments, err := s.departmentAssetAssignments(ctx, storyID, department.ID)
	if err != nil {
		return nil, err
	}
	shotAssignments, err := s.departmentShotAssignments(ctx, storyID, department.ID)
	if err != nil {
		return nil, err
	}

	stats := &DepartmentStats{
		Department: DepartmentRef{ID: department.ID, Name: department.Name, Type: department.DepartmentType},
		Assets:     newStatsSection(),
		Shots:      newStatsSection(),
	}

	now := time.Now()
	for _, assignment := range assetAssignments {
		stats.Assets.Total++
		stats.Assets.ByStatus[assignment.Status]++
		stats.Assets.ByPriority[assignment.Priority]++
		if assignmentOverdue(assignment.DueDate, assignment.Status, now) {
			stats.Overdue.Assets++
		}
		if assignment.Asset != nil {
			stats.Costs.Assets += assignment.Asset.EstimatedCost
		}
	}
	for _, assignment := range shotAssignments {
		stats.Shots.Total++
		stats.Shots.ByStatus[assignment.Status]++
		stats.Shots.ByPriority[assignment.Priority]++
		if assignmentOverdue(assignment.DueDate, assignment.Status, now) {
			stats.Overdue.Shots++
		}
		if assignment.Shot != nil {
			stats.Costs.Shots += assignment.Shot.EstimatedCost
		}
	}
	stats.Costs.Total = stats.Costs.Assets + stats.Costs.Shots

	return stats, nil
}

// DepartmentAssets lists a department's asset assignments on a story.
func (s *DepartmentService) DepartmentAssets(ctx context.Context, storyID, departmentID string) ([]models.AssetDepartmentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStory(ctx, storyID); err != nil {
		return nil, err
	}
	department, err := s.requireDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return s.departmentAssetAssignments(ctx, storyID, department.ID)
}

// DepartmentShots lists a department's shot assignments on a story.
func (s *DepartmentService) DepartmentShots(ctx context.Context, storyID, departmentID string) ([]models.ShotDepartmentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStory(ctx, storyID); err != nil {
		return nil, err
	}
	department, err := s.requireDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return s.departmentShotAssignments(ctx, storyID, department.ID)
}

// ListAssetAssignments returns the department queue of one asset.
func (s *DepartmentService) ListAssetAssignments(ctx context.Context, storyID, assetID string) ([]models.AssetDepartmentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStoryAsset(ctx, storyID, assetID); err != nil {
		return nil, err
	}

	var assignments []models.AssetDepartmentAssignment
	if err := s.db.WithContext(ctx).
		Where("asset_id = ?", strings.TrimSpace(assetID)).
		Preload("Department").
		Order("assigned_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("department service: list asset assignments: %w", err)
	}
	return assignments, nil
}

// UpsertAssetAssignment queues an asset for a department, or updates the
// existing queue entry when the pair is already linked.
func (s *DepartmentService) UpsertAssetAssignment(ctx context.Context, storyID, assetID, departmentID string, input DepartmentAssignmentInput, assignedByID string) (*models.AssetDepartmentAssignment, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(departmentID) == "" {
		return nil, apperrors.NewBadRequest("department is required")
	}
	if err := s.requireStoryAsset(ctx, storyID, assetID); err != nil {
		return nil, err
	}
	department, err := s.requireDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if err := validateAssignmentInput(input); err != nil {
		return nil, err
	}

	var assignment models.AssetDepartmentAssignment
	err = s.db.WithContext(ctx).
		Where("asset_id = ? AND department_id = ?", strings.TrimSpace(assetID), department.ID).
		First(&assignment).Error
	switch {
	case err == nil:
		updates := assignmentUpdates(input)
		if len(updates) > 0 {
			if err := s.db.WithContext(ctx).
				Model(&models.AssetDepartmentAssignment{}).
				Where("id = ?", assignment.ID).
				Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("department service: update asset assignment: %w", err)
			}
		}
		return s.getAssetAssignment(ctx, assignment.ID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		assignment = models.AssetDepartmentAssignment{
			AssetID:      strings.TrimSpace(assetID),
			DepartmentID: department.ID,
			Status:       models.AssignmentStatusPending,
			Priority:     models.AssignmentPriorityMedium,
			DueDate:      input.DueDate,
			AssignedByID: trimPtr(&assignedByID),
		}
		if input.Status != nil {
			assignment.Status = strings.TrimSpace(*input.Status)
		}
		if input.Priority != nil {
			assignment.Priority = strings.TrimSpace(*input.Priority)
		}
		if input.Notes != nil {
			assignment.Notes = *input.Notes
		}
		if err := s.db.WithContext(ctx).Create(&assignment).Error; err != nil {
			return nil, fmt.Errorf("department service: create asset assignment: %w", err)
		}
		s.notifyAssignment(ctx, storyID, "asset", assignment.AssetID, department.Name)
		return s.getAssetAssignment(ctx, assignment.ID)
	default:
		return nil, fmt.Errorf("department service: find asset assignment: %w", err)
	}
}

// UpdateAssetAssignment edits a queue entry. Only the story owner may do so.
func (s *DepartmentService) UpdateAssetAssignment(ctx context.Context, assignmentID, actorID string, input DepartmentAssignmentInput) (*models.AssetDepartmentAssignment, error) {
	ctx = ensureContext(ctx)

	assignment, err := s.getAssetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAssignmentOwner(ctx, assignment.Asset.StoryID, actorID); err != nil {
		return nil, err
	}
	if err := validateAssignmentInput(input); err != nil {
		return nil, err
	}

	updates := assignmentUpdates(input)
	if len(updates) == 0 {
		return assignment, nil
	}
	if err := s.db.WithContext(ctx).
		Model(&models.AssetDepartmentAssignment{}).
		Where("id = ?", assignment.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("department service: update asset assignment: %w", err)
	}
	return s.getAssetAssignment(ctx, assignment.ID)
}

// DeleteAssetAssignment removes a queue entry. Only the story owner may do so.
func (s *DepartmentService) DeleteAssetAssignment(ctx context.Context, assignmentID, actorID string) error {
	ctx = ensureContext(ctx)

	assignment, err := s.getAssetAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err := s.requireAssignmentOwner(ctx, assignment.Asset.StoryID, actorID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Delete(&models.AssetDepartmentAssignment{}, "id = ?", assignment.ID).Error; err != nil {
		return fmt.Errorf("department service: delete asset assignment: %w", err)
	}
	return nil
}

// ListShotAssignments returns the department queue of one shot.
func (s *DepartmentService) ListShotAssignments(ctx context.Context, storyID, shotID string) ([]models.ShotDepartmentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStoryShot(ctx, storyID, shotID); err != nil {
		return nil, err
	}

	var assignments []models.ShotDepartmentAssignment
	if err := s.db.WithContext(ctx).
		Where("shot_id = ?", strings.TrimSpace(shotID)).
		Preload("Department").
		Order("assigned_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("department service: list shot assignments: %w", err)
	}
	return assignments, nil
}

// UpsertShotAssignment queues a shot for a department, or updates the
// existing queue entry when the pair is already linked.
func (s *DepartmentService) UpsertShotAssignment(ctx context.Context, storyID, shotID, departmentID string, input DepartmentAssignmentInput, assignedByID string) (*models.ShotDepartmentAssignment, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(departmentID) == "" {
		return nil, apperrors.NewBadRequest("department is required")
	}
	if err := s.requireStoryShot(ctx, storyID, shotID); err != nil {
		return nil, err
	}
	department, err := s.requireDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if err := validateAssignmentInput(input); err != nil {
		return nil, err
	}

	var assignment models.ShotDepartmentAssignment
	err = s.db.WithContext(ctx).
		Where("shot_id = ? AND department_id = ?", strings.TrimSpace(shotID), department.ID).
		First(&assignment).Error
	switch {
	case err == nil:
		updates := assignmentUpdates(input)
		if len(updates) > 0 {
			if err := s.db.WithContext(ctx).
				Model(&models.ShotDepartmentAssignment{}).
				Where("id = ?", assignment.ID).
				Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("department service: update shot assignment: %w", err)
			}
		}
		return s.getShotAssignment(ctx, assignment.ID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		assignment = models.ShotDepartmentAssignment{
			ShotID:       strings.TrimSpace(shotID),
			DepartmentID: department.ID,
			Status:       models.AssignmentStatusPending,
			Priority:     models.AssignmentPriorityMedium,
			DueDate:      input.DueDate,
			AssignedByID: trimPtr(&assignedByID),
		}
		if input.Status != nil {
			assignment.Status = strings.TrimSpace(*input.Status)
		}
		if input.Priority != nil {
			assignment.Priority = strings.TrimSpace(*input.Priority)
		}
		if input.Notes != nil {
			assignment.Notes = *input.Notes
		}
		if err := s.db.WithContext(ctx).Create(&assignment).Error; err != nil {
			return nil, fmt.Errorf("department service: create shot assignment: %w", err)
		}
		s.notifyAssignment(ctx, storyID, "shot", assignment.ShotID, department.Name)
		return s.getShotAssignment(ctx, assignment.ID)
	default:
		return nil, fmt.Errorf("department service: find shot assignment: %w", err)
	}
}

// UpdateShotAssignment edits a queue entry. Only the story owner may do so.
func (s *DepartmentService) UpdateShotAssignment(ctx context.Context, assignmentID, actorID string, input DepartmentAssignmentInput) (*models.ShotDepartmentAssignment, error) {
	ctx = ensureContext(ctx)

	assignment, err := s.getShotAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAssignmentOwner(ctx, assignment.Shot.StoryID, actorID); err != nil {
		return nil, err
	}
	if err := validateAssignmentInput(input); err != nil {
		return nil, err
	}

	updates := assignmentUpdates(input)
	if len(updates) == 0 {
		return assignment, nil
	}
	if err := s.db.WithContext(ctx).
		Model(&models.ShotDepartmentAssignment{}).
		Where("id = ?", assignment.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("department service: update shot assignment: %w", err)
	}
	return s.getShotAssignment(ctx, assignment.ID)
}

// DeleteShotAssignment removes a queue entry. Only the story owner may do so.
func (s *DepartmentService) DeleteShotAssignment(ctx context.Context, assignmentID, actorID string) error {
	ctx = ensureContext(ctx)

	assignment, err := s.getShotAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err := s.requireAssignmentOwner(ctx, assignment.Shot.StoryID, actorID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Delete(&models.ShotDepartmentAssignment{}, "id = ?", assignment.ID).Error; err != nil {
		return fmt.Errorf("department service: delete shot assignment: %w", err)
	}
	return nil
}

func (s *DepartmentService) departmentAssetAssignments(ctx context.Context, storyID, departmentID string) ([]models.AssetDepartmentAssignment, error) {
	var assignments []models.AssetDepartmentAssignment
	err := s.db.WithContext(ctx).
		Joins("JOIN story_assets ON story_assets.id = asset_department_assignments.asset_id").
		Where("story_assets.story_id = ? AND asset_department_assignments.department_id = ?", strings.TrimSpace(storyID), departmentID).
		Preload("Asset").
		Preload("Department").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("department service: list department assets: %w", err)
	}
	return assignments, nil
}

func (s *DepartmentService) departmentShotAssignments(ctx context.Context, storyID, departmentID string) ([]models.ShotDepartmentAssignment, error) {
	var assignments []models.ShotDepartmentAssignment
	err := s.db.WithContext(ctx).
		Joins("JOIN shots ON shots.id = shot_department_assignments.shot_id").
		Where("shots.story_id = ? AND shot_department_assignments.department_id = ?", strings.TrimSpace(storyID), departmentID).
		Preload("Shot").
		Preload("Department").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("department service: list department shots: %w", err)
	}
	return assignments, nil
}

func (s *DepartmentService) getAssetAssignment(ctx context.Context, assignmentID string) (*models.AssetDepartmentAssignment, error) {
	var assignment models.AssetDepartmentAssignment
	err := s.db.WithContext(ctx).
		Preload("Asset").
		Preload("Department").
		First(&assignment, "id = ?", strings.TrimSpace(assignmentID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("department service: find asset assignment: %w", err)
	}
	if assignment.Asset == nil {
		return nil, ErrAssignmentNotFound
	}
	return &assignment, nil
}

func (s *DepartmentService) getShotAssignment(ctx context.Context, assignmentID string) (*models.ShotDepartmentAssignment, error) {
	var assignment models.ShotDepartmentAssignment
	err := s.db.WithContext(ctx).
		Preload("Shot").
		Preload("Department").
		First(&assignment, "id = ?", strings.TrimSpace(assignmentID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("department service: find shot assignment: %w", err)
	}
	if assignment.Shot == nil {
		return nil, ErrAssignmentNotFound
	}
	return &assignment, nil
}

func (s *DepartmentService) requireDepartment(ctx context.Context, departmentID string) (*models.Department, error) {
	var department models.Department
	err := s.db.WithContext(ctx).First(&department, "id = ?", strings.TrimSpace(departmentID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDepartmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("department service: find department: %w", err)
	}
	return &department, nil
}

func (s *DepartmentService) requireStory(ctx context.Context, storyID string) error {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ?", strings.TrimSpace(storyID)).
		Count(&count).Error; err != nil {
		return fmt.Errorf("department service: find story: %w", err)
	}
	if count == 0 {
		return ErrStoryNotFound
	}
	return nil
}

func (s *DepartmentService) requireStoryAsset(ctx context.Context, storyID, assetID string) error {
	if err := s.requireStory(ctx, storyID); err != nil {
		return err
	}
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.StoryAsset{}).
		Where("id = ? AND story_id = ?", strings.TrimSpace(assetID), strings.TrimSpace(storyID)).
		Count(&count).Error; err != nil {
		return fmt.Errorf("department service: find asset: %w", err)
	}
	if count == 0 {
		return ErrStoryAssetNotFound
	}
	return nil
}

func (s *DepartmentService) requireStoryShot(ctx context.Context, storyID, shotID string) error {
	if err := s.requireStory(ctx, storyID); err != nil {
		return err
	}
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Shot{}).
		Where("id = ? AND story_id = ?", strings.TrimSpace(shotID), strings.TrimSpace(storyID)).
		Count(&count).Error; err != nil {
		return fmt.Errorf("department service: find shot: %w", err)
	}
	if count == 0 {
		return ErrShotNotFound
	}
	return nil
}

func (s *DepartmentService) requireAssignmentOwner(ctx context.Context, storyID, actorID string) error {
	var story models.Story
	if err := s.db.WithContext(ctx).First(&story, "id = ?", storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoryNotFound
		}
		return fmt.Errorf("department service: find story: %w", err)
	}
	if story.UserID != strings.TrimSpace(actorID) {
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *DepartmentService) notifyAssignment(ctx context.Context, storyID, entity, entityID, departmentName string) {
	if s.notifications == nil {
		return
	}
	var story models.Story
	if err := s.db.WithContext(ctx).First(&story, "id = ?", strings.TrimSpace(storyID)).Error; err != nil {
		return
	}
	_, _ = s.notifications.Create(ctx, CreateNotificationInput{
		UserID:   story.UserID,
		Type:     "assignment.created",
		Title:    "New department assignment",
		Message:  fmt.Sprintf("A %s was queued for %s", entity, departmentName),
		Severity: "info",
		Metadata: map[string]any{
			"story_id":   story.ID,
			"entity":     entity,
			"entity_id":  entityID,
			"department": departmentName,
		},
	})
}

func newStatsSection() DepartmentStatsSection {
	section := DepartmentStatsSection{
		ByStatus:   make(map[string]int, len(models.DepartmentAssignmentStatuses)),
		ByPriority: make(map[string]int, len(models.DepartmentAssignmentPriorities)),
	}
	for _, status := range models.DepartmentAssignmentStatuses {
		section.ByStatus[status] = 0
	}
	for _, priority := range models.DepartmentAssignmentPriorities {
		section.ByPriority[priority] = 0
	}
	return section
}

func assignmentOverdue(dueDate *time.Time, status string, now time.Time) bool {
	if dueDate == nil || !dueDate.Before(now) {
		return false
	}
	return status == models.AssignmentStatusPending || status == models.AssignmentStatusInProgress
}

func validateAssignmentInput(input DepartmentAssignmentInput) error {
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if !containsString(models.DepartmentAssignmentStatuses, status) {
			return apperrors.NewBadRequest("invalid assignment status")
		}
	}
	if input.Priority != nil {
		priority := strings.TrimSpace(*input.Priority)
		if !containsString(models.DepartmentAssignmentPriorities, priority) {
			return apperrors.NewBadRequest("invalid assignment priority")
		}
	}
	return nil
}

func assignmentUpdates(input DepartmentAssignmentInput) map[string]any {
	updates := map[string]any{}
	if input.Status != nil {
		updates["status"] = strings.TrimSpace(*input.Status)
	}
	if input.Priority != nil {
		updates["priority"] = strings.TrimSpace(*input.Priority)
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	return updates
}
