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

var (
	// ErrTeamNotFound indicates the requested team does not exist.
	ErrTeamNotFound = apperrors.New("TEAM_NOT_FOUND", "Team not found", http.StatusNotFound)
	// ErrTeamMemberNotFound indicates the user is not assigned to the team.
	ErrTeamMemberNotFound = apperrors.New("TEAM_MEMBER_NOT_FOUND", "User is not a member of this team", http.StatusBadRequest)
)

// CreateTeamInput captures new team metadata.
type CreateTeamInput struct {
	OrganizationID string
	Name           string
	Description    string
}

// UpdateTeamInput describes mutable team fields.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// TeamService handles team lifecycle and membership management. Membership
// is the user's single team link, so adding a member reassigns them.
type TeamService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewTeamService constructs a TeamService instance.
func NewTeamService(db *gorm.DB, auditService *AuditService) (*TeamService, error) {
	if db == nil {
		return nil, errors.New("team service: db is required")
	}
	return &TeamService{
		db:           db,
		auditService: auditService,
	}, nil
}

// Create registers a new team inside an organization.
func (s *TeamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("team name is required")
	}
	orgID := strings.TrimSpace(input.OrganizationID)
	if orgID == "" {
		return nil, apperrors.NewBadRequest("organization id is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Organization{}).Where("id = ?", orgID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("team service: check organization: %w", err)
	}
	if count == 0 {
		return nil, ErrOrganizationNotFound
	}

	team := &models.Team{
		OrganizationID: orgID,
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
	}

	if err := s.db.WithContext(ctx).Create(team).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("team name already exists in this organization")
		}
		return nil, fmt.Errorf("team service: create team: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "team.create",
		Resource: team.ID,
		Result:   "success",
		Metadata: map[string]any{
			"name":            team.Name,
			"organization_id": orgID,
		},
	})

	return team, nil
}

// GetByID loads a team with its organization and members.
func (s *TeamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	var team models.Team
	err := s.db.WithContext(ctx).
		Preload("Organization").
		Preload("Members").
		First(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team service: get team: %w", err)
	}
	return &team, nil
}

// List returns teams, optionally scoped to a single organization.
func (s *TeamService) List(ctx context.Context, organizationID string) ([]models.Team, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Organization").
		Order("created_at ASC")

	if orgID := strings.TrimSpace(organizationID); orgID != "" {
		query = query.Where("organization_id = ?", orgID)
	}

	var teams []models.Team
	if err := query.Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("team service: list teams: %w", err)
	}
	return teams, nil
}

// Update modifies team metadata.
func (s *TeamService) Update(ctx context.Context, id string, input UpdateTeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	var team models.Team
	err := s.db.WithContext(ctx).First(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team service: load team: %w", err)
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != team.Name {
			updates["name"] = name
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}

	if len(updates) == 0 {
		return &team, nil
	}

	if err := s.db.WithContext(ctx).Model(&team).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("team name already exists in this organization")
		}
		return nil, fmt.Errorf("team service: update team: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&team, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("team service: reload team: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "team.update",
		Resource: team.ID,
		Result:   "success",
	})

	return &team, nil
}

// Delete removes a team. Member links are cleared first so users survive the
// removal of their team.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var team models.Team
	err := s.db.WithContext(ctx).First(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTeamNotFound
	}
	if err != nil {
		return fmt.Errorf("team service: load team: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("team_id = ?", team.ID).
			Update("team_id", nil).Error; err != nil {
			return fmt.Errorf("team service: clear members: %w", err)
		}
		if err := tx.Delete(&team).Error; err != nil {
			return fmt.Errorf("team service: delete team: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "team.delete",
		Resource: team.ID,
		Result:   "success",
	})

	return nil
}

// AddMember assigns a user to the team, moving them into the team's
// organization at the same time.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	teamID = strings.TrimSpace(teamID)
	userID = strings.TrimSpace(userID)
	if teamID == "" {
		return nil, apperrors.NewBadRequest("team id is required")
	}
	if userID == "" {
		return nil, apperrors.NewBadRequest("user_id is required")
	}

	var team models.Team
	if err := s.db.WithContext(ctx).First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("team service: load team: %w", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("team service: load user: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"team_id":         team.ID,
		"organization_id": team.OrganizationID,
	}).Error; err != nil {
		return nil, fmt.Errorf("team service: assign member: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "team.add_member",
		Resource: teamID,
		Result:   "success",
		Metadata: map[string]any{"user_id": userID},
	})

	return s.reloadMember(ctx, userID)
}

// RemoveMember detaches a user from the team when they belong to it.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	ctx = ensureContext(ctx)

	teamID = strings.TrimSpace(teamID)
	userID = strings.TrimSpace(userID)
	if teamID == "" || userID == "" {
		return apperrors.NewBadRequest("team id and user id are required")
	}

	var team models.Team
	if err := s.db.WithContext(ctx).First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("team service: load team: %w", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("team service: load user: %w", err)
	}

	if user.TeamID == nil || *user.TeamID != team.ID {
		return ErrTeamMemberNotFound
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("team_id", nil).Error; err != nil {
		return fmt.Errorf("team service: remove member: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "team.remove_member",
		Resource: teamID,
		Result:   "success",
		Metadata: map[string]any{"user_id": userID},
	})

	return nil
}

// ListMembers returns the users assigned to a team.
func (s *TeamService) ListMembers(ctx context.Context, teamID string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	team, err := s.GetByID(ctx, strings.TrimSpace(teamID))
	if err != nil {
		return nil, err
	}
	return team.Members, nil
}

func (s *TeamService) reloadMember(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Organization").
		Preload("Team").
		Preload("Role").
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("team service: reload member: %w", err)
	}
	return &user, nil
}
