package permissions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
)

// ErrUnknownPermission indicates a permission lookup failed because it has not been registered.
var ErrUnknownPermission = errors.New("permission: unknown permission")

// Checker evaluates role grants and per-story access rows.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// Check determines whether the user holds the permission through their role.
// Superusers hold every permission, including unregistered ones.
func (c *Checker) Check(ctx context.Context, userID, permissionID string) (bool, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, errors.New("permission checker: user id is required")
	}
	permissionID = strings.TrimSpace(permissionID)
	if permissionID == "" {
		return false, errors.New("permission checker: permission id is required")
	}

	user, err := c.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if user.IsSuperuser {
		return true, nil
	}

	if _, ok := Get(permissionID); !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownPermission, permissionID)
	}

	if user.Role == nil {
		return false, nil
	}
	return user.Role.HasPermission(permissionID), nil
}

// CheckStoryAccess determines whether the user may act on the story at the
// level implied by permissionID (stories.view, stories.edit or
// stories.delete). Superusers and the story owner always may; other users
// need both the role permission and a matching user or team grant.
func (c *Checker) CheckStoryAccess(ctx context.Context, userID string, story *models.Story, permissionID string) (bool, error) {
	ctx = ensureContext(ctx)

	if story == nil {
		return false, errors.New("permission checker: story is required")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, errors.New("permission checker: user id is required")
	}
	permissionID = strings.TrimSpace(permissionID)
	if permissionID == "" {
		return false, errors.New("permission checker: permission id is required")
	}

	user, err := c.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if user.IsSuperuser {
		return true, nil
	}
	if story.UserID == user.ID {
		return true, nil
	}

	if user.Role == nil || !user.Role.HasPermission(permissionID) {
		return false, nil
	}

	var grant models.StoryAccess
	err = c.db.WithContext(ctx).
		Where("story_id = ? AND user_id = ?", story.ID, user.ID).
		First(&grant).Error
	switch {
	case err == nil:
		if grantAllows(&grant, permissionID) {
			return true, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("permission checker: load user grant: %w", err)
	}

	if user.TeamID != nil {
		var teamGrant models.StoryAccess
		err = c.db.WithContext(ctx).
			Where("story_id = ? AND team_id = ?", story.ID, *user.TeamID).
			First(&teamGrant).Error
		switch {
		case err == nil:
			if grantAllows(&teamGrant, permissionID) {
				return true, nil
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return false, fmt.Errorf("permission checker: load team grant: %w", err)
		}
	}

	return false, nil
}

// GetUserPermissions returns the distinct permission IDs granted to the user.
func (c *Checker) GetUserPermissions(ctx context.Context, userID string) ([]string, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("permission checker: user id is required")
	}

	user, err := c.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.IsSuperuser {
		perms := GetAll()
		ids := make([]string, 0, len(perms))
		for id := range perms {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return ids, nil
	}

	if user.Role == nil {
		return []string{}, nil
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, id := range user.Role.PermissionList() {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (c *Checker) loadUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).
		Preload("Role").
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("permission checker: load user: %w", err)
	}
	return &user, nil
}

// grantAllows maps the story permission level onto the grant's flags. Only
// the three story levels ever match; any other permission ID falls through.
func grantAllows(access *models.StoryAccess, permissionID string) bool {
	switch permissionID {
	case "stories.view":
		return access.CanView
	case "stories.edit":
		return access.CanEdit
	case "stories.delete":
		return access.CanDelete
	default:
		return false
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
