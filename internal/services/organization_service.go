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

// ErrOrganizationNotFound indicates the requested organization does not exist.
var ErrOrganizationNotFound = apperrors.New("ORGANIZATION_NOT_FOUND", "Organization not found", http.StatusNotFound)

// CreateOrganizationInput captures the attributes required to register an organization.
type CreateOrganizationInput struct {
	Name        string
	Slug        string
	Description string
	LogoURL     string
	Settings    map[string]any
}

// UpdateOrganizationInput represents mutable organization fields.
type UpdateOrganizationInput struct {
	Name        *string
	Description *string
	LogoURL     *string
	Settings    map[string]any
}

// OrganizationService manages lifecycle operations for organizations.
type OrganizationService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewOrganizationService constructs an OrganizationService instance.
func NewOrganizationService(db *gorm.DB, auditService *AuditService) (*OrganizationService, error) {
	if db == nil {
		return nil, errors.New("organization service: db is required")
	}
	return &OrganizationService{
		db:           db,
		auditService: auditService,
	}, nil
}

// Create registers a new organization. The slug derives from the name when
// not supplied.
func (s *OrganizationService) Create(ctx context.Context, input CreateOrganizationInput) (*models.Organization, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("organization name is required")
	}

	org := &models.Organization{
		Name:        name,
		Slug:        models.SlugifyName(defaultIfEmpty(input.Slug, name)),
		Description: strings.TrimSpace(input.Description),
		LogoURL:     strings.TrimSpace(input.LogoURL),
	}

	if input.Settings != nil {
		settings, err := encodeJSON(input.Settings)
		if err != nil {
			return nil, fmt.Errorf("organization service: marshal settings: %w", err)
		}
		org.Settings = settings
	}

	if err := s.db.WithContext(ctx).Create(org).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("organization slug already exists")
		}
		return nil, fmt.Errorf("organization service: create organization: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "org.create",
		Resource: org.ID,
		Result:   "success",
		Metadata: map[string]any{
			"name": name,
			"slug": org.Slug,
		},
	})

	return org, nil
}

// GetByID loads an organization and its related members and teams.
func (s *OrganizationService) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	ctx = ensureContext(ctx)

	var org models.Organization
	err := s.db.WithContext(ctx).
		Preload("Members").
		Preload("Teams").
		First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("organization service: get organization: %w", err)
	}
	return &org, nil
}

// List returns all organizations ordered by creation date.
func (s *OrganizationService) List(ctx context.Context) ([]models.Organization, error) {
	ctx = ensureContext(ctx)

	var orgs []models.Organization
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("organization service: list organizations: %w", err)
	}
	return orgs, nil
}

// Update modifies metadata for an organization. Renaming never touches the
// slug so invite links and bookmarks stay valid.
func (s *OrganizationService) Update(ctx context.Context, id string, input UpdateOrganizationInput) (*models.Organization, error) {
	ctx = ensureContext(ctx)

	var org models.Organization
	err := s.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("organization service: load organization: %w", err)
	}

	updates := map[string]any{}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != org.Name {
			updates["name"] = name
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.LogoURL != nil {
		updates["logo_url"] = strings.TrimSpace(*input.LogoURL)
	}
	if input.Settings != nil {
		settings, err := encodeJSON(input.Settings)
		if err != nil {
			return nil, fmt.Errorf("organization service: marshal settings: %w", err)
		}
		updates["settings"] = settings
	}

	if len(updates) == 0 {
		return &org, nil
	}

	if err := s.db.WithContext(ctx).Model(&org).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("organization service: update organization: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("organization service: reload organization: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "org.update",
		Resource: org.ID,
		Result:   "success",
	})

	return &org, nil
}

// Delete removes an organization by identifier.
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var org models.Organization
	err := s.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrganizationNotFound
	}
	if err != nil {
		return fmt.Errorf("organization service: load organization: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&org).Error; err != nil {
		return fmt.Errorf("organization service: delete organization: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "org.delete",
		Resource: org.ID,
		Result:   "success",
	})

	return nil
}
