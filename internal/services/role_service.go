package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/internal/permissions"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
)

var (
	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = apperrors.New("ROLE_NOT_FOUND", "Role not found", http.StatusNotFound)
	// ErrSystemRoleImmutable rejects updates to seeded system roles.
	ErrSystemRoleImmutable = apperrors.New("SYSTEM_ROLE_IMMUTABLE", "Cannot modify system roles", http.StatusBadRequest)
	// ErrSystemRoleDelete rejects deletion of seeded system roles.
	ErrSystemRoleDelete = apperrors.New("SYSTEM_ROLE_DELETE", "Cannot delete system roles", http.StatusBadRequest)
)

// CreateRoleInput captures new role metadata.
type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// UpdateRoleInput describes mutable role fields. A non-nil Permissions slice
// replaces the grant list wholesale.
type UpdateRoleInput struct {
	Name        *string
	Description *string
	Permissions []string
}

// RoleService manages custom roles and their permission grants.
type RoleService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewRoleService constructs a RoleService instance.
func NewRoleService(db *gorm.DB, auditService *AuditService) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	return &RoleService{
		db:           db,
		auditService: auditService,
	}, nil
}

// Create registers a custom role with a validated permission list.
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("role name is required")
	}

	perms, err := validatedPermissions(input.Permissions)
	if err != nil {
		return nil, err
	}

	encoded, err := models.PermissionsJSON(perms)
	if err != nil {
		return nil, fmt.Errorf("role service: marshal permissions: %w", err)
	}

	role := &models.Role{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Permissions: encoded,
	}

	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("role name already exists")
		}
		return nil, fmt.Errorf("role service: create role: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "role.create",
		Resource: role.ID,
		Result:   "success",
		Metadata: map[string]any{
			"name":        role.Name,
			"permissions": perms,
		},
	})

	return role, nil
}

// GetByID loads a role by identifier.
func (s *RoleService) GetByID(ctx context.Context, id string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("role service: get role: %w", err)
	}
	return &role, nil
}

// List returns all roles, system roles first.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	var roles []models.Role
	if err := s.db.WithContext(ctx).
		Order("is_system DESC, name ASC").
		Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("role service: list roles: %w", err)
	}
	return roles, nil
}

// Update modifies a custom role. System roles are immutable.
func (s *RoleService) Update(ctx context.Context, id string, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("role service: load role: %w", err)
	}

	if role.IsSystem {
		return nil, ErrSystemRoleImmutable
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != role.Name {
			updates["name"] = name
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Permissions != nil {
		perms, err := validatedPermissions(input.Permissions)
		if err != nil {
			return nil, err
		}
		encoded, err := models.PermissionsJSON(perms)
		if err != nil {
			return nil, fmt.Errorf("role service: marshal permissions: %w", err)
		}
		updates["permissions"] = encoded
	}

	if len(updates) == 0 {
		return &role, nil
	}

	if err := s.db.WithContext(ctx).Model(&role).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("role name already exists")
		}
		return nil, fmt.Errorf("role service: update role: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("role service: reload role: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "role.update",
		Resource: role.ID,
		Result:   "success",
	})

	return &role, nil
}

// Delete removes a custom role and clears it from any users holding it.
// System roles cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRoleNotFound
	}
	if err != nil {
		return fmt.Errorf("role service: load role: %w", err)
	}

	if role.IsSystem {
		return ErrSystemRoleDelete
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("role_id = ?", role.ID).
			Update("role_id", nil).Error; err != nil {
			return fmt.Errorf("role service: clear holders: %w", err)
		}
		if err := tx.Delete(&role).Error; err != nil {
			return fmt.Errorf("role service: delete role: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "role.delete",
		Resource: role.ID,
		Result:   "success",
		Metadata: map[string]any{"name": role.Name},
	})

	return nil
}

// validatedPermissions normalises permission IDs and rejects any that the
// registry does not know. Wildcards are accepted per module ("stories.*").
func validatedPermissions(ids []string) ([]string, error) {
	clean := normaliseIDs(ids)
	for _, id := range clean {
		if module, ok := strings.CutSuffix(id, ".*"); ok {
			if len(permissions.GetByModule(module)) == 0 {
				return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown permission module %q", module))
			}
			continue
		}
		if _, ok := permissions.Get(id); !ok {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown permission %q", id))
		}
	}
	if clean == nil {
		clean = []string{}
	}
	return clean, nil
}
