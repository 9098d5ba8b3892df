package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
)

func TestCheckerSuperuserBypassesAllChecks(t *testing.T) {
	db := setupPermissionTestDB(t)

	root := &models.User{
		Username:    "root",
		Email:       "root@example.com",
		Password:    "hashed",
		IsSuperuser: true,
	}
	require.NoError(t, db.Create(root).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ok, err := checker.Check(context.Background(), root.ID, "non.existent.permission")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCheckerUsesRoleMembership(t *testing.T) {
	db := setupPermissionTestDB(t)

	role := createTestRole(t, db, "Story Crew", "stories.view", "stories.edit")
	user := createTestUser(t, db, "crew", &role.ID)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ok, err := checker.Check(context.Background(), user.ID, "stories.edit")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = checker.Check(context.Background(), user.ID, "stories.delete")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckerWithoutRoleDeniesEverything(t *testing.T) {
	db := setupPermissionTestDB(t)

	user := createTestUser(t, db, "roleless", nil)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ok, err := checker.Check(context.Background(), user.ID, "stories.view")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckerRejectsUnknownPermission(t *testing.T) {
	db := setupPermissionTestDB(t)

	role := createTestRole(t, db, "Unknown Holder", "stories.view")
	user := createTestUser(t, db, "unknown", &role.ID)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	_, err = checker.Check(context.Background(), user.ID, "nope.missing")
	require.ErrorIs(t, err, ErrUnknownPermission)
}

func TestCheckStoryAccessOwnerAlwaysAllowed(t *testing.T) {
	db := setupPermissionTestDB(t)

	owner := createTestUser(t, db, "owner", nil)
	story := createTestStory(t, db, owner.ID)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ok, err := checker.CheckStoryAccess(context.Background(), owner.ID, story, "stories.delete")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCheckStoryAccessRequiresRolePermission(t *testing.T) {
	db := setupPermissionTestDB(t)

	owner := createTestUser(t, db, "story-owner", nil)
	story := createTestStory(t, db, owner.ID)

	viewer := createTestUser(t, db, "no-role-viewer", nil)
	require.NoError(t, db.Create(&models.StoryAccess{
		StoryID: story.ID,
		UserID:  &viewer.ID,
		CanView: true,
	}).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	// Grant exists, but without the role permission access is denied.
	ok, err := checker.CheckStoryAccess(context.Background(), viewer.ID, story, "stories.view")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckStoryAccessUserGrantLevels(t *testing.T) {
	db := setupPermissionTestDB(t)

	owner := createTestUser(t, db, "grant-owner", nil)
	story := createTestStory(t, db, owner.ID)

	role := createTestRole(t, db, "Grant Crew", "stories.view", "stories.edit", "stories.delete")
	member := createTestUser(t, db, "grant-member", &role.ID)

	require.NoError(t, db.Create(&models.StoryAccess{
		StoryID: story.ID,
		UserID:  &member.ID,
		CanView: true,
		CanEdit: true,
	}).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ok, err := checker.CheckStoryAccess(context.Background(), member.ID, story, "stories.view")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = checker.CheckStoryAccess(context.Background(), member.ID, story, "stories.edit")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = checker.CheckStoryAccess(context.Background(), member.ID, story, "stories.delete")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckStoryAccessFallsBackToTeamGrant(t *testing.T) {
	db := setupPermissionTestDB(t)

	owner := createTestUser(t, db, "team-owner", nil)
	story := createTestStory(t, db, owner.ID)

	org := &models.Organization{Name: "Team Org"}
	require.NoError(t, db.Create(org).Error)
	team := &models.Team{OrganizationID: org.ID, Name: "Lighting"}
	require.NoError(t, db.Create(team).Error)

	role := createTestRole(t, db, "Team Crew", "stories.view")
	member := createTestUser(t, db, "team-member", &role.ID)
	require.NoError(t, db.Model(member).Update("team_id", team.ID).Error)

	require.NoError(t, db.Create(&models.StoryAccess{
		StoryID: story.ID,
		TeamID:  &team.ID,
		CanView: true,
	}).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ok, err := checker.CheckStoryAccess(context.Background(), member.ID, story, "stories.view")
	require.NoError(t, err)
	require.True(t, ok)

	// Team grant only covers viewing.
	ok, err = checker.CheckStoryAccess(context.Background(), member.ID, story, "stories.edit")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetUserPermissionsSortsAndDedupes(t *testing.T) {
	db := setupPermissionTestDB(t)

	role := createTestRole(t, db, "Dup Role", "stories.view", "assets.view", "stories.view")
	user := createTestUser(t, db, "dup-user", &role.ID)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	perms, err := checker.GetUserPermissions(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"assets.view", "stories.view"}, perms)
}

func TestGetUserPermissionsSuperuserGetsCatalog(t *testing.T) {
	db := setupPermissionTestDB(t)

	root := &models.User{
		Username:    "super",
		Email:       "super@example.com",
		Password:    "hashed",
		IsSuperuser: true,
	}
	require.NoError(t, db.Create(root).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	perms, err := checker.GetUserPermissions(context.Background(), root.ID)
	require.NoError(t, err)
	require.Contains(t, perms, "admin.roles")
	require.Contains(t, perms, "art_control.edit")
	require.Contains(t, perms, "generation.create")
}

func setupPermissionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Team{},
		&models.Role{},
		&models.Permission{},
		&models.Story{},
		&models.StoryAccess{},
	))
	require.NoError(t, Sync(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func createTestRole(t *testing.T, db *gorm.DB, name string, permissionIDs ...string) *models.Role {
	t.Helper()

	perms, err := models.PermissionsJSON(permissionIDs)
	require.NoError(t, err)

	role := &models.Role{
		Name:        name,
		Permissions: perms,
	}
	require.NoError(t, db.Create(role).Error)
	return role
}

func createTestUser(t *testing.T, db *gorm.DB, username string, roleID *string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		RoleID:   roleID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestStory(t *testing.T, db *gorm.DB, ownerID string) *models.Story {
	t.Helper()

	story := &models.Story{
		UserID: ownerID,
		Title:  "Test Story",
	}
	require.NoError(t, db.Create(story).Error)
	return story
}

func removePermission(id string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.permissions, id)
}
