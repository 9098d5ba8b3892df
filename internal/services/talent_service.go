package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
)

// ErrTalentNotFound is returned when a pool entry does not exist.
var ErrTalentNotFound = apperrors.New("TALENT_NOT_FOUND", "Talent not found", http.StatusNotFound)

// ListTalentInput filters the talent pool. Search matches name, email and
// notes case-insensitively.
type ListTalentInput struct {
	TalentType         string
	AvailabilityStatus string
	Search             string
}

// CreateTalentInput defines a new pool entry.
type CreateTalentInput struct {
	Name               string
	TalentType         string
	Email              string
	Phone              string
	PortfolioURL       string
	Notes              string
	HourlyRate         *float64
	DailyRate          *float64
	AvailabilityStatus string
	Specializations    []string
	Languages          []string
}

// UpdateTalentInput applies a partial pool edit.
type UpdateTalentInput struct {
	Name               *string
	TalentType         *string
	Email              *string
	Phone              *string
	PortfolioURL       *string
	Notes              *string
	HourlyRate         *float64
	DailyRate          *float64
	AvailabilityStatus *string
	Specializations    []string
	Languages          []string
}

// CreateTalentAssignmentInput links a talent to a character, asset or shot.
type CreateTalentAssignmentInput struct {
	TalentID       string
	RoleType       string
	Status         string
	RateAgreed     *float64
	EstimatedHours *int
	Notes          string
}

// UpdateTalentAssignmentInput applies a partial assignment edit.
type UpdateTalentAssignmentInput struct {
	RoleType       *string
	Status         *string
	RateAgreed     *float64
	EstimatedHours *int
	ActualHours    *int
	Notes          *string
}

// TalentService manages the shared contractor pool and its assignments to
// story entities.
type TalentService struct {
	db            *gorm.DB
	auditService  *AuditService
	notifications *NotificationService
}

// NewTalentService constructs a TalentService. Notifications may be nil.
func NewTalentService(db *gorm.DB, auditService *AuditService, notifications *NotificationService) (*TalentService, error) {
	if db == nil {
		return nil, errors.New("talent service: db is required")
	}
	return &TalentService{db: db, auditService: auditService, notifications: notifications}, nil
}

// List returns pool entries matching the filters, ordered by name.
func (s *TalentService) List(ctx context.Context, input ListTalentInput) ([]models.Talent, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Talent{})
	if talentType := strings.TrimSpace(input.TalentType); talentType != "" {
		query = query.Where("talent_type = ?", talentType)
	}
	if availability := strings.TrimSpace(input.AvailabilityStatus); availability != "" {
		query = query.Where("availability_status = ?", availability)
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(notes) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var talent []models.Talent
	if err := query.Order("name ASC").Find(&talent).Error; err != nil {
		return nil, fmt.Errorf("talent service: list talent: %w", err)
	}
	return talent, nil
}

// Create adds a pool entry.
func (s *TalentService) Create(ctx context.Context, input CreateTalentInput, createdByID string) (*models.Talent, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	talentType := strings.TrimSpace(input.TalentType)
	if talentType == "" {
		return nil, apperrors.NewBadRequest("talent_type is required")
	}
	if !containsString(models.TalentTypes, talentType) {
		return nil, apperrors.NewBadRequest("invalid talent_type")
	}
	availability := defaultIfEmpty(strings.TrimSpace(input.AvailabilityStatus), models.TalentAvailable)
	if !containsString(models.TalentAvailabilityStatuses, availability) {
		return nil, apperrors.NewBadRequest("invalid availability_status")
	}

	talent := models.Talent{
		Name:               name,
		TalentType:         talentType,
		Email:              strings.TrimSpace(strings.ToLower(input.Email)),
		Phone:              strings.TrimSpace(input.Phone),
		PortfolioURL:       strings.TrimSpace(input.PortfolioURL),
		Notes:              input.Notes,
		HourlyRate:         input.HourlyRate,
		DailyRate:          input.DailyRate,
		AvailabilityStatus: availability,
		CreatedByID:        trimPtr(&createdByID),
	}
	if input.Specializations != nil {
		encoded, err := encodeJSON(input.Specializations)
		if err != nil {
			return nil, fmt.Errorf("talent service: encode specializations: %w", err)
		}
		talent.Specializations = encoded
	}
	if input.Languages != nil {
		encoded, err := encodeJSON(input.Languages)
		if err != nil {
			return nil, fmt.Errorf("talent service: encode languages: %w", err)
		}
		talent.Languages = encoded
	}

	if err := s.db.WithContext(ctx).Create(&talent).Error; err != nil {
		return nil, fmt.Errorf("talent service: create talent: %w", err)
	}
	return &talent, nil
}

// GetByID returns one pool entry.
func (s *TalentService) GetByID(ctx context.Context, talentID string) (*models.Talent, error) {
	ctx = ensureContext(ctx)
	return s.requireTalent(ctx, talentID)
}

// Update applies a partial pool edit.
func (s *TalentService) Update(ctx context.Context, talentID string, input UpdateTalentInput) (*models.Talent, error) {
	ctx = ensureContext(ctx)

	talent, err := s.requireTalent(ctx, talentID)
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
	if input.TalentType != nil {
		talentType := strings.TrimSpace(*input.TalentType)
		if !containsString(models.TalentTypes, talentType) {
			return nil, apperrors.NewBadRequest("invalid talent_type")
		}
		updates["talent_type"] = talentType
	}
	if input.Email != nil {
		updates["email"] = strings.TrimSpace(strings.ToLower(*input.Email))
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.PortfolioURL != nil {
		updates["portfolio_url"] = strings.TrimSpace(*input.PortfolioURL)
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.HourlyRate != nil {
		updates["hourly_rate"] = *input.HourlyRate
	}
	if input.DailyRate != nil {
		updates["daily_rate"] = *input.DailyRate
	}
	if input.AvailabilityStatus != nil {
		availability := strings.TrimSpace(*input.AvailabilityStatus)
		if !containsString(models.TalentAvailabilityStatuses, availability) {
			return nil, apperrors.NewBadRequest("invalid availability_status")
		}
		updates["availability_status"] = availability
	}
	if input.Specializations != nil {
		encoded, err := encodeJSON(input.Specializations)
		if err != nil {
			return nil, fmt.Errorf("talent service: encode specializations: %w", err)
		}
		updates["specializations"] = encoded
	}
	if input.Languages != nil {
		encoded, err := encodeJSON(input.Languages)
		if err != nil {
			return nil, fmt.Errorf("talent service: encode languages: %w", err)
		}
		updates["languages"] = encoded
	}
	if len(updates) == 0 {
		return talent, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Talent{}).
		Where("id = ?", talent.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("talent service: update talent: %w", err)
	}
	return s.requireTalent(ctx, talentID)
}

// Delete removes a pool entry along with its assignments.
func (s *TalentService) Delete(ctx context.Context, talentID string) error {
	ctx = ensureContext(ctx)

	talent, err := s.requireTalent(ctx, talentID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.CharacterTalentAssignment{},
			&models.AssetTalentAssignment{},
			&models.ShotTalentAssignment{},
		} {
			if err := tx.Where("talent_id = ?", talent.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("talent service: delete assignments: %w", err)
			}
		}
		if err := tx.Delete(&models.Talent{}, "id = ?", talent.ID).Error; err != nil {
			return fmt.Errorf("talent service: delete talent: %w", err)
		}
		return nil
	})
}

// ListCharacterAssignments returns a character's talent assignments, newest
// first. The character must belong to the story.
func (s *TalentService) ListCharacterAssignments(ctx context.Context, storyID, characterID string) ([]models.CharacterTalentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStoryChild(ctx, &models.Character{}, storyID, characterID, ErrCharacterNotFound); err != nil {
		return nil, err
	}

	var assignments []models.CharacterTalentAssignment
	if err := s.db.WithContext(ctx).
		Where("character_id = ?", strings.TrimSpace(characterID)).
		Preload("Talent").
		Order("assigned_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("talent service: list character assignments: %w", err)
	}
	return assignments, nil
}

// AssignToCharacter links a talent to a character.
func (s *TalentService) AssignToCharacter(ctx context.Context, storyID, characterID string, input CreateTalentAssignmentInput) (*models.CharacterTalentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStoryChild(ctx, &models.Character{}, storyID, characterID, ErrCharacterNotFound); err != nil {
		return nil, err
	}
	talent, err := s.requireTalent(ctx, input.TalentID)
	if err != nil {
		return nil, err
	}
	roleType, status, err := resolveAssignmentRole(input.RoleType, input.Status, "voice_actor", models.CharacterAssignmentRoles, models.CharacterAssignmentStatuses)
	if err != nil {
		return nil, err
	}

	assignment := models.CharacterTalentAssignment{
		CharacterID: strings.TrimSpace(characterID),
		TalentID:    talent.ID,
		RoleType:    roleType,
		Status:      status,
		RateAgreed:  input.RateAgreed,
		Notes:       input.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&assignment).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("talent already assigned to this character in that role")
		}
		return nil, fmt.Errorf("talent service: assign character talent: %w", err)
	}
	assignment.Talent = talent

	s.notifyTalentAssignment(ctx, storyID, "character", assignment.CharacterID, talent.Name)
	return &assignment, nil
}

// UpdateCharacterAssignment edits an assignment. Only the story owner may do so.
func (s *TalentService) UpdateCharacterAssignment(ctx context.Context, assignmentID, actorID string, input UpdateTalentAssignmentInput) (*models.CharacterTalentAssignment, error) {
	ctx = ensureContext(ctx)

	assignment, storyID, err := s.getCharacterAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStoryOwner(ctx, storyID, actorID); err != nil {
		return nil, err
	}

	// Character assignments carry no hour columns.
	input.EstimatedHours = nil
	input.ActualHours = nil
	updates, err := talentAssignmentUpdates(input, models.CharacterAssignmentRoles, models.CharacterAssignmentStatuses)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return assignment, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.CharacterTalentAssignment{}).
		Where("id = ?", assignment.ID).
		Updates(updates).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("talent already assigned to this character in that role")
		}
		return nil, fmt.Errorf("talent service: update character assignment: %w", err)
	}
	refreshed, _, err := s.getCharacterAssignment(ctx, assignmentID)
	return refreshed, err
}

// DeleteCharacterAssignment removes an assignment. Only the story owner may
// do so.
func (s *TalentService) DeleteCharacterAssignment(ctx context.Context, assignmentID, actorID string) error {
	ctx = ensureContext(ctx)

	assignment, storyID, err := s.getCharacterAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err := s.requireStoryOwner(ctx, storyID, actorID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Delete(&models.CharacterTalentAssignment{}, "id = ?", assignment.ID).Error; err != nil {
		return fmt.Errorf("talent service: delete character assignment: %w", err)
	}
	return nil
}

// ListAssetAssignments returns an asset's talent assignments, newest first.
func (s *TalentService) ListAssetAssignments(ctx context.Context, storyID, assetID string) ([]models.AssetTalentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStoryChild(ctx, &models.StoryAsset{}, storyID, assetID, ErrStoryAssetNotFound); err != nil {
		return nil, err
	}

	var assignments []models.AssetTalentAssignment
	if err := s.db.WithContext(ctx).
		Where("asset_id = ?", strings.TrimSpace(assetID)).
		Preload("Talent").
		Order("assigned_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("talent service: list asset assignments: %w", err)
	}
	return assignments, nil
}

// AssignToAsset links a talent to an asset.
func (s *TalentService) AssignToAsset(ctx context.Context, storyID, assetID string, input CreateTalentAssignmentInput) (*models.AssetTalentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStoryChild(ctx, &models.StoryAsset{}, storyID, assetID, ErrStoryAssetNotFound); err != nil {
		return nil, err
	}
	talent, err := s.requireTalent(ctx, input.TalentID)
	if err != nil {
		return nil, err
	}
	roleType, status, err := resolveAssignmentRole(input.RoleType, input.Status, "modeler", models.AssetAssignmentRoles, models.WorkAssignmentStatuses)
	if err != nil {
		return nil, err
	}

	assignment := models.AssetTalentAssignment{
		AssetID:        strings.TrimSpace(assetID),
		TalentID:       talent.ID,
		RoleType:       roleType,
		Status:         status,
		RateAgreed:     input.RateAgreed,
		EstimatedHours: input.EstimatedHours,
		Notes:          input.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&assignment).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("talent already assigned to this asset in that role")
		}
		return nil, fmt.Errorf("talent service: assign asset talent: %w", err)
	}
	assignment.Talent = talent

	s.notifyTalentAssignment(ctx, storyID, "asset", assignment.AssetID, talent.Name)
	return &assignment, nil
}

// UpdateAssetAssignment edits an assignment. Only the story owner may do so.
func (s *TalentService) UpdateAssetAssignment(ctx context.Context, assignmentID, actorID string, input UpdateTalentAssignmentInput) (*models.AssetTalentAssignment, error) {
	ctx = ensureContext(ctx)

	assignment, storyID, err := s.getAssetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStoryOwner(ctx, storyID, actorID); err != nil {
		return nil, err
	}

	updates, err := talentAssignmentUpdates(input, models.AssetAssignmentRoles, models.WorkAssignmentStatuses)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return assignment, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.AssetTalentAssignment{}).
		Where("id = ?", assignment.ID).
		Updates(updates).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("talent already assigned to this asset in that role")
		}
		return nil, fmt.Errorf("talent service: update asset assignment: %w", err)
	}
	refreshed, _, err := s.getAssetAssignment(ctx, assignmentID)
	return refreshed, err
}

// DeleteAssetAssignment removes an assignment. Only the story owner may do so.
func (s *TalentService) DeleteAssetAssignment(ctx context.Context, assignmentID, actorID string) error {
	ctx = ensureContext(ctx)

	assignment, storyID, err := s.getAssetAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err := s.requireStoryOwner(ctx, storyID, actorID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Delete(&models.AssetTalentAssignment{}, "id = ?", assignment.ID).Error; err != nil {
		return fmt.Errorf("talent service: delete asset assignment: %w", err)
	}
	return nil
}

// ListShotAssignments returns a shot's talent assignments, newest first.
func (s *TalentService) ListShotAssignments(ctx context.Context, storyID, shotID string) ([]models.ShotTalentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStoryChild(ctx, &models.Shot{}, storyID, shotID, ErrShotNotFound); err != nil {
		return nil, err
	}

	var assignments []models.ShotTalentAssignment
	if err := s.db.WithContext(ctx).
		Where("shot_id = ?", strings.TrimSpace(shotID)).
		Preload("Talent").
		Order("assigned_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("talent service: list shot assignments: %w", err)
	}
	return assignments, nil
}

// AssignToShot links a talent to a shot.
func (s *TalentService) AssignToShot(ctx context.Context, storyID, shotID string, input CreateTalentAssignmentInput) (*models.ShotTalentAssignment, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStoryChild(ctx, &models.Shot{}, storyID, shotID, ErrShotNotFound); err != nil {
		return nil, err
	}
	talent, err := s.requireTalent(ctx, input.TalentID)
	if err != nil {
		return nil, err
	}
	roleType, status, err := resolveAssignmentRole(input.RoleType, input.Status, "animator", models.ShotAssignmentRoles, models.WorkAssignmentStatuses)
	if err != nil {
		return nil, err
	}

	assignment := models.ShotTalentAssignment{
		ShotID:         strings.TrimSpace(shotID),
		TalentID:       talent.ID,
		RoleType:       roleType,
		Status:         status,
		RateAgreed:     input.RateAgreed,
		EstimatedHours: input.EstimatedHours,
		Notes:          input.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&assignment).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("talent already assigned to this shot in that role")
		}
		return nil, fmt.Errorf("talent service: assign shot talent: %w", err)
	}
	assignment.Talent = talent

	s.notifyTalentAssignment(ctx, storyID, "shot", assignment.ShotID, talent.Name)
	return &assignment, nil
}

// UpdateShotAssignment edits an assignment. Only the story owner may do so.
func (s *TalentService) UpdateShotAssignment(ctx context.Context, assignmentID, actorID string, input UpdateTalentAssignmentInput) (*models.ShotTalentAssignment, error) {
	ctx = ensureContext(ctx)

	assignment, storyID, err := s.getShotAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStoryOwner(ctx, storyID, actorID); err != nil {
		return nil, err
	}

	updates, err := talentAssignmentUpdates(input, models.ShotAssignmentRoles, models.WorkAssignmentStatuses)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return assignment, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.ShotTalentAssignment{}).
		Where("id = ?", assignment.ID).
		Updates(updates).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("talent already assigned to this shot in that role")
		}
		return nil, fmt.Errorf("talent service: update shot assignment: %w", err)
	}
	refreshed, _, err := s.getShotAssignment(ctx, assignmentID)
	return refreshed, err
}

// DeleteShotAssignment removes an assignment. Only the story owner may do so.
func (s *TalentService) DeleteShotAssignment(ctx context.Context, assignmentID, actorID string) error {
	ctx = ensureContext(ctx)

	assignment, storyID, err := s.getShotAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err := s.requireStoryOwner(ctx, storyID, actorID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Delete(&models.ShotTalentAssignment{}, "id = ?", assignment.ID).Error; err != nil {
		return fmt.Errorf("talent service: delete shot assignment: %w", err)
	}
	return nil
}

func (s *TalentService) requireTalent(ctx context.Context, talentID string) (*models.Talent, error) {
	var talent models.Talent
	err := s.db.WithContext(ctx).First(&talent, "id = ?", strings.TrimSpace(talentID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTalentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("talent service: find talent: %w", err)
	}
	return &talent, nil
}

func (s *TalentService) requireStoryChild(ctx context.Context, model any, storyID, childID string, notFound error) error {
	var storyCount int64
	if err := s.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ?", strings.TrimSpace(storyID)).
		Count(&storyCount).Error; err != nil {
		return fmt.Errorf("talent service: find story: %w", err)
	}
	if storyCount == 0 {
		return ErrStoryNotFound
	}

	var childCount int64
	if err := s.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND story_id = ?", strings.TrimSpace(childID), strings.TrimSpace(storyID)).
		Count(&childCount).Error; err != nil {
		return fmt.Errorf("talent service: find child: %w", err)
	}
	if childCount == 0 {
		return notFound
	}
	return nil
}

func (s *TalentService) requireStoryOwner(ctx context.Context, storyID, actorID string) error {
	var story models.Story
	if err := s.db.WithContext(ctx).First(&story, "id = ?", storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoryNotFound
		}
		return fmt.Errorf("talent service: find story: %w", err)
	}
	if story.UserID != strings.TrimSpace(actorID) {
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *TalentService) getCharacterAssignment(ctx context.Context, assignmentID string) (*models.CharacterTalentAssignment, string, error) {
	var assignment models.CharacterTalentAssignment
	err := s.db.WithContext(ctx).
		Preload("Character").
		Preload("Talent").
		First(&assignment, "id = ?", strings.TrimSpace(assignmentID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrAssignmentNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("talent service: find character assignment: %w", err)
	}
	if assignment.Character == nil {
		return nil, "", ErrAssignmentNotFound
	}
	return &assignment, assignment.Character.StoryID, nil
}

func (s *TalentService) getAssetAssignment(ctx context.Context, assignmentID string) (*models.AssetTalentAssignment, string, error) {
	var assignment models.AssetTalentAssignment
	err := s.db.WithContext(ctx).
		Preload("Asset").
		Preload("Talent").
		First(&assignment, "id = ?", strings.TrimSpace(assignmentID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrAssignmentNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("talent service: find asset assignment: %w", err)
	}
	if assignment.Asset == nil {
		return nil, "", ErrAssignmentNotFound
	}
	return &assignment, assignment.Asset.StoryID, nil
}

func (s *TalentService) getShotAssignment(ctx context.Context, assignmentID string) (*models.ShotTalentAssignment, string, error) {
	var assignment models.ShotTalentAssignment
	err := s.db.WithContext(ctx).
		Preload("Shot").
		Preload("Talent").
		First(&assignment, "id = ?", strings.TrimSpace(assignmentID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrAssignmentNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("talent service: find shot assignment: %w", err)
	}
	if assignment.Shot == nil {
		return nil, "", ErrAssignmentNotFound
	}
	return &assignment, assignment.Shot.StoryID, nil
}

func (s *TalentService) notifyTalentAssignment(ctx context.Context, storyID, entity, entityID, talentName string) {
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
		Title:    "New talent assignment",
		Message:  fmt.Sprintf("%s was assigned to a %s", talentName, entity),
		Severity: "info",
		Metadata: map[string]any{
			"story_id":  story.ID,
			"entity":    entity,
			"entity_id": entityID,
			"talent":    talentName,
		},
	})
}

func resolveAssignmentRole(roleType, status, defaultRole string, roles, statuses []string) (string, string, error) {
	roleType = defaultIfEmpty(strings.TrimSpace(roleType), defaultRole)
	if !containsString(roles, roleType) {
		return "", "", apperrors.NewBadRequest("invalid role_type")
	}
	status = defaultIfEmpty(strings.TrimSpace(status), models.TalentStatusProposed)
	if !containsString(statuses, status) {
		return "", "", apperrors.NewBadRequest("invalid status")
	}
	return roleType, status, nil
}

func talentAssignmentUpdates(input UpdateTalentAssignmentInput, roles, statuses []string) (map[string]any, error) {
	updates := map[string]any{}
	if input.RoleType != nil {
		roleType := strings.TrimSpace(*input.RoleType)
		if !containsString(roles, roleType) {
			return nil, apperrors.NewBadRequest("invalid role_type")
		}
		updates["role_type"] = roleType
	}
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if !containsString(statuses, status) {
			return nil, apperrors.NewBadRequest("invalid status")
		}
		updates["status"] = status
	}
	if input.RateAgreed != nil {
		updates["rate_agreed"] = *input.RateAgreed
	}
	if input.EstimatedHours != nil {
		updates["estimated_hours"] = *input.EstimatedHours
	}
	if input.ActualHours != nil {
		updates["actual_hours"] = *input.ActualHours
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	return updates, nil
}
