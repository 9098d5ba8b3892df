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

// ErrStoryAccessNotFound is returned when an access grant does not exist on
// the story it was addressed through.
var ErrStoryAccessNotFound = apperrors.New("STORY_ACCESS_NOT_FOUND", "Access grant not found", http.StatusNotFound)

// GrantStoryAccessInput creates an access grant. Exactly one of UserID and
// TeamID must be set. Nil capability flags fall back to the defaults
// (view on, edit and delete off).
type GrantStoryAccessInput struct {
	StoryID     string
	UserID      *string
	TeamID      *string
	CanView     *bool
	CanEdit     *bool
	CanDelete   *bool
	GrantedByID string
}

// UpdateStoryAccessInput adjusts the capability flags of a grant. Nil fields
// stay untouched; the grantee cannot be changed after creation.
type UpdateStoryAccessInput struct {
	CanView   *bool
	CanEdit   *bool
	CanDelete *bool
}

// StoryAccessService manages per-story sharing grants.
type StoryAccessService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewStoryAccessService constructs a StoryAccessService.
func NewStoryAccessService(db *gorm.DB, auditService *AuditService) (*StoryAccessService, error) {
	if db == nil {
		return nil, errors.New("story access service: db is required")
	}
	return &StoryAccessService{db: db, auditService: auditService}, nil
}

// List returns every grant on a story.
func (s *StoryAccessService) List(ctx context.Context, storyID string) ([]models.StoryAccess, error) {
	ctx = ensureContext(ctx)

	if err := s.requireStory(ctx, s.db, storyID); err != nil {
		return nil, err
	}

	var grants []models.StoryAccess
	if err := s.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Preload("User").
		Preload("Team").
		Order("created_at ASC").
		Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("story access service: list grants: %w", err)
	}
	return grants, nil
}

// Grant shares a story with a user or a team.
func (s *StoryAccessService) Grant(ctx context.Context, input GrantStoryAccessInput) (*models.StoryAccess, error) {
	ctx = ensureContext(ctx)

	userID := trimPtr(input.UserID)
	teamID := trimPtr(input.TeamID)
	if (userID == nil) == (teamID == nil) {
		return nil, apperrors.NewBadRequest("grant must reference exactly one of user_id or team_id")
	}

	grant := models.StoryAccess{
		StoryID:   strings.TrimSpace(input.StoryID),
		UserID:    userID,
		TeamID:    teamID,
		CanView:   true,
		CanEdit:   false,
		CanDelete: false,
	}
	if input.CanView != nil {
		grant.CanView = *input.CanView
	}
	if input.CanEdit != nil {
		grant.CanEdit = *input.CanEdit
	}
	if input.CanDelete != nil {
		grant.CanDelete = *input.CanDelete
	}
	if actor := strings.TrimSpace(input.GrantedByID); actor != "" {
		grant.GrantedByID = &actor
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireStory(ctx, tx, grant.StoryID); err != nil {
			return err
		}
		if userID != nil {
			if err := tx.First(&models.User{}, "id = ?", *userID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return fmt.Errorf("story access service: find user: %w", err)
			}
		}
		if teamID != nil {
			if err := tx.First(&models.Team{}, "id = ?", *teamID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTeamNotFound
				}
				return fmt.Errorf("story access service: find team: %w", err)
			}
		}

		// Select forces the capability columns into the insert so an
		// explicit can_view=false is not swallowed by the column default.
		if err := tx.Select("ID", "CreatedAt", "UpdatedAt", "StoryID", "UserID", "TeamID",
			"CanView", "CanEdit", "CanDelete", "GrantedByID").
			Create(&grant).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewBadRequest("access grant already exists for this user or team")
			}
			return fmt.Errorf("story access service: create grant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "story_access.grant",
		Resource: grant.StoryID,
		Result:   "success",
		Metadata: map[string]any{"access_id": grant.ID},
	})

	return s.getByID(ctx, grant.StoryID, grant.ID)
}

// Update changes the capability flags of a grant.
func (s *StoryAccessService) Update(ctx context.Context, storyID, accessID string, input UpdateStoryAccessInput) (*models.StoryAccess, error) {
	ctx = ensureContext(ctx)

	grant, err := s.getByID(ctx, storyID, accessID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.CanView != nil {
		updates["can_view"] = *input.CanView
	}
	if input.CanEdit != nil {
		updates["can_edit"] = *input.CanEdit
	}
	if input.CanDelete != nil {
		updates["can_delete"] = *input.CanDelete
	}
	if len(updates) == 0 {
		return grant, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.StoryAccess{}).
		Where("id = ?", grant.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("story access service: update grant: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "story_access.update",
		Resource: storyID,
		Result:   "success",
		Metadata: map[string]any{"access_id": grant.ID},
	})

	return s.getByID(ctx, storyID, accessID)
}

// Revoke removes a grant from a story.
func (s *StoryAccessService) Revoke(ctx context.Context, storyID, accessID string) error {
	ctx = ensureContext(ctx)

	grant, err := s.getByID(ctx, storyID, accessID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.StoryAccess{}, "id = ?", grant.ID).Error; err != nil {
		return fmt.Errorf("story access service: delete grant: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "story_access.revoke",
		Resource: storyID,
		Result:   "success",
		Metadata: map[string]any{"access_id": grant.ID},
	})

	return nil
}

func (s *StoryAccessService) getByID(ctx context.Context, storyID, accessID string) (*models.StoryAccess, error) {
	var grant models.StoryAccess
	err := s.db.WithContext(ctx).
		Where("id = ? AND story_id = ?", strings.TrimSpace(accessID), strings.TrimSpace(storyID)).
		Preload("User").
		Preload("Team").
		First(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoryAccessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("story access service: find grant: %w", err)
	}
	return &grant, nil
}

func (s *StoryAccessService) requireStory(ctx context.Context, tx *gorm.DB, storyID string) error {
	err := tx.WithContext(ctx).First(&models.Story{}, "id = ?", strings.TrimSpace(storyID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStoryNotFound
	}
	if err != nil {
		return fmt.Errorf("story access service: find story: %w", err)
	}
	return nil
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
