package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/pkg/crypto"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
)

// DefaultRoleName is assigned to self-registered users when the role table
// has been seeded.
const DefaultRoleName = "Viewer"

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrCannotDeleteSelf rejects account self-deletion.
	ErrCannotDeleteSelf = apperrors.New("USER_DELETE_SELF", "Cannot delete your own account", http.StatusBadRequest)
	// ErrCannotDeleteSuperuser rejects deleting superuser accounts.
	ErrCannotDeleteSuperuser = apperrors.New("USER_DELETE_SUPERUSER", "Cannot delete superuser accounts", http.StatusBadRequest)
)

// CreateUserInput captures attributes accepted when registering a user.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Bio       string

	IsSuperuser bool

	OrganizationID *string
	TeamID         *string
	RoleID         *string

	// AssignDefaultRole attaches the seeded default role when RoleID is not
	// supplied. Self-registration sets this; administrative creation does not.
	AssignDefaultRole bool
}

// UpdateUserInput represents mutable user fields. Nil pointers leave the
// field untouched; pointing at an empty string clears nullable links.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Avatar    *string
	Phone     *string
	Bio       *string

	IsActive    *bool
	IsSuperuser *bool

	OrganizationID *string
	TeamID         *string
	RoleID         *string
}

// UserFilters narrows user listings.
type UserFilters struct {
	Query          string
	IsActive       *bool
	OrganizationID string
	TeamID         string
	RoleID         string
}

// ListUsersOptions controls pagination and filtering for user queries.
type ListUsersOptions struct {
	Page    int
	PerPage int
	Filters UserFilters
}

// UserService implements user management workflows.
type UserService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, auditService *AuditService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{
		db:           db,
		auditService: auditService,
	}, nil
}

// Create registers a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" {
		return nil, apperrors.NewBadRequest("username is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if input.Password == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		Password:    hashed,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Phone:       strings.TrimSpace(input.Phone),
		Bio:         strings.TrimSpace(input.Bio),
		IsActive:    true,
		IsSuperuser: input.IsSuperuser,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.OrganizationID != nil {
			id, err := resolveLink(tx, &models.Organization{}, *input.OrganizationID, ErrOrganizationNotFound)
			if err != nil {
				return err
			}
			user.OrganizationID = id
		}
		if input.TeamID != nil {
			id, err := resolveLink(tx, &models.Team{}, *input.TeamID, ErrTeamNotFound)
			if err != nil {
				return err
			}
			user.TeamID = id
		}
		switch {
		case input.RoleID != nil:
			id, err := resolveLink(tx, &models.Role{}, *input.RoleID, ErrRoleNotFound)
			if err != nil {
				return err
			}
			user.RoleID = id
		case input.AssignDefaultRole:
			var role models.Role
			err := tx.Where("name = ?", DefaultRoleName).First(&role).Error
			switch {
			case err == nil:
				user.RoleID = &role.ID
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("user service: load default role: %w", err)
			}
		}

		if err := tx.Create(user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewBadRequest("username or email already exists")
			}
			return fmt.Errorf("user service: create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.create",
		Resource: user.ID,
		Result:   "success",
		Metadata: map[string]any{
			"username": user.Username,
			"email":    user.Email,
		},
	})

	return s.GetByID(ctx, user.ID)
}

// GetByID loads a user together with their organization, team and role.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Organization").
		Preload("Team").
		Preload("Role").
		First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return &user, nil
}

// List returns users matching the provided filters along with the total count.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.User{})

	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like, like,
		)
	}
	if opts.Filters.IsActive != nil {
		query = query.Where("is_active = ?", *opts.Filters.IsActive)
	}
	if id := strings.TrimSpace(opts.Filters.OrganizationID); id != "" {
		query = query.Where("organization_id = ?", id)
	}
	if id := strings.TrimSpace(opts.Filters.TeamID); id != "" {
		query = query.Where("team_id = ?", id)
	}
	if id := strings.TrimSpace(opts.Filters.RoleID); id != "" {
		query = query.Where("role_id = ?", id)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Preload("Organization").
		Preload("Team").
		Preload("Role").
		Order("created_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// Update modifies user attributes, including organization, team and role links.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}

		if input.Email != nil {
			if email := strings.ToLower(strings.TrimSpace(*input.Email)); email != "" && email != user.Email {
				updates["email"] = email
			}
		}
		if input.FirstName != nil {
			updates["first_name"] = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			updates["last_name"] = strings.TrimSpace(*input.LastName)
		}
		if input.Avatar != nil {
			updates["avatar"] = strings.TrimSpace(*input.Avatar)
		}
		if input.Phone != nil {
			updates["phone"] = strings.TrimSpace(*input.Phone)
		}
		if input.Bio != nil {
			updates["bio"] = strings.TrimSpace(*input.Bio)
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}
		if input.IsSuperuser != nil {
			updates["is_superuser"] = *input.IsSuperuser
		}

		if input.OrganizationID != nil {
			id, err := resolveLink(tx, &models.Organization{}, *input.OrganizationID, ErrOrganizationNotFound)
			if err != nil {
				return err
			}
			updates["organization_id"] = id
		}
		if input.TeamID != nil {
			id, err := resolveLink(tx, &models.Team{}, *input.TeamID, ErrTeamNotFound)
			if err != nil {
				return err
			}
			updates["team_id"] = id
		}
		if input.RoleID != nil {
			id, err := resolveLink(tx, &models.Role{}, *input.RoleID, ErrRoleNotFound)
			if err != nil {
				return err
			}
			updates["role_id"] = id
		}

		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewBadRequest("username or email already exists")
			}
			return fmt.Errorf("user service: update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.update",
		Resource: user.ID,
		Result:   "success",
	})

	return s.GetByID(ctx, id)
}

// Delete removes a user account. Self-deletion and superuser deletion are
// rejected.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id != "" && id == strings.TrimSpace(actorID) {
		return ErrCannotDeleteSelf
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("user service: load user: %w", err)
	}

	if user.IsSuperuser {
		return ErrCannotDeleteSuperuser
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("user service: delete sessions: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("user service: delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.delete",
		Resource: user.ID,
		Result:   "success",
		Metadata: map[string]any{"username": user.Username},
	})

	return nil
}

// SetActive toggles the active flag for a user account.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("user service: set active: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.set_active",
		Resource: id,
		Result:   "success",
		Metadata: map[string]any{"active": active},
	})

	return nil
}

// resolveLink validates that a referenced row exists and returns its ID, or
// nil when the raw value is empty (clearing the link).
func resolveLink(tx *gorm.DB, model any, raw string, notFound error) (*string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return nil, nil
	}

	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("user service: resolve reference: %w", err)
	}
	if count == 0 {
		return nil, notFound
	}
	return &id, nil
}
