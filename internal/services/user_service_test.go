package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/database/testutil"
	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/pkg/crypto"
)

func TestUserServiceCreateHashesPassword(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Username: "ripley",
		Email:    "Ripley@Example.com",
		Password: "nostromo-1979",
	})
	require.NoError(t, err)
	require.Equal(t, "ripley", user.Username)
	require.Equal(t, "ripley@example.com", user.Email)
	require.True(t, user.IsActive)
	require.NotEqual(t, "nostromo-1979", user.Password)
	require.True(t, crypto.VerifyPassword("nostromo-1979", user.Password))
}

func TestUserServiceCreateRequiresFields(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{Email: "a@example.com", Password: "pw"})
	requireBadRequest(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{Username: "a", Password: "pw"})
	requireBadRequest(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{Username: "a", Email: "a@example.com"})
	requireBadRequest(t, err)
}

func TestUserServiceCreateRejectsDuplicates(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{
		Username: "dallas",
		Email:    "dallas@example.com",
		Password: "pw",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{
		Username: "dallas",
		Email:    "other@example.com",
		Password: "pw",
	})
	requireBadRequest(t, err)
}

func TestUserServiceCreateAssignsDefaultRole(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Username:          "lambert",
		Email:             "lambert@example.com",
		Password:          "pw",
		AssignDefaultRole: true,
	})
	require.NoError(t, err)
	require.NotNil(t, user.RoleID)
	require.NotNil(t, user.Role)
	require.Equal(t, "Viewer", user.Role.Name)
}

func TestUserServiceCreateValidatesLinks(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	missing := "00000000-0000-0000-0000-000000000000"
	_, err = svc.Create(context.Background(), CreateUserInput{
		Username:       "kane",
		Email:          "kane@example.com",
		Password:       "pw",
		OrganizationID: &missing,
	})
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	org := createTestOrganization(t, db, "Weyland")
	user, err := svc.Create(context.Background(), CreateUserInput{
		Username:       "kane",
		Email:          "kane@example.com",
		Password:       "pw",
		OrganizationID: &org.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, user.OrganizationID)
	require.Equal(t, org.ID, *user.OrganizationID)
}

func TestUserServiceListFilters(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Nostromo Crew")

	active := models.User{
		Username:       "ash",
		Email:          "ash@example.com",
		Password:       "pw",
		IsActive:       true,
		OrganizationID: &org.ID,
	}
	require.NoError(t, db.Create(&active).Error)

	inactive := models.User{
		Username: "parker",
		Email:    "parker@example.com",
		Password: "pw",
		IsActive: false,
	}
	require.NoError(t, db.Create(&inactive).Error)

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	users, total, err := svc.List(context.Background(), ListUsersOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, users, 2)

	isActive := true
	users, total, err = svc.List(context.Background(), ListUsersOptions{
		Filters: UserFilters{IsActive: &isActive},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "ash", users[0].Username)

	users, total, err = svc.List(context.Background(), ListUsersOptions{
		Filters: UserFilters{OrganizationID: org.ID},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "ash", users[0].Username)

	users, total, err = svc.List(context.Background(), ListUsersOptions{
		Filters: UserFilters{Query: "PARK"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "parker", users[0].Username)
}

func TestUserServiceListPaginates(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	for _, name := range []string{"crew-a", "crew-b", "crew-c"} {
		createTestUser(t, db, name)
	}

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	users, total, err := svc.List(context.Background(), ListUsersOptions{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, users, 1)
}

func TestUserServiceUpdatePartial(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "brett")

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	firstName := "Samuel"
	bio := "Engineering technician"
	updated, err := svc.Update(context.Background(), user.ID, UpdateUserInput{
		FirstName: &firstName,
		Bio:       &bio,
	})
	require.NoError(t, err)
	require.Equal(t, "Samuel", updated.FirstName)
	require.Equal(t, "Engineering technician", updated.Bio)
	require.Equal(t, "brett@example.com", updated.Email)
}

func TestUserServiceUpdateMovesOrganization(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "First Org")
	user := createTestUser(t, db, "vasquez")

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), user.ID, UpdateUserInput{
		OrganizationID: &org.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.OrganizationID)
	require.Equal(t, org.ID, *updated.OrganizationID)

	// A blank link clears the association.
	empty := ""
	updated, err = svc.Update(context.Background(), user.ID, UpdateUserInput{
		OrganizationID: &empty,
	})
	require.NoError(t, err)
	require.Nil(t, updated.OrganizationID)
}

func TestUserServiceUpdateMissingUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	name := "Ghost"
	_, err = svc.Update(context.Background(), "missing-id", UpdateUserInput{FirstName: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceDeleteGuards(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	admin := createTestUser(t, db, "admin-actor")

	super := models.User{
		Username:    "root-owner",
		Email:       "root-owner@example.com",
		Password:    "pw",
		IsActive:    true,
		IsSuperuser: true,
	}
	require.NoError(t, db.Create(&super).Error)

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), admin.ID, admin.ID)
	require.ErrorIs(t, err, ErrCannotDeleteSelf)

	err = svc.Delete(context.Background(), super.ID, admin.ID)
	require.ErrorIs(t, err, ErrCannotDeleteSuperuser)
}

func TestUserServiceDeleteRemovesSessions(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	actor := createTestUser(t, db, "delete-actor")
	target := createTestUser(t, db, "delete-target")

	session := models.Session{
		UserID:       target.ID,
		RefreshToken: "refresh-token-1",
	}
	require.NoError(t, db.Create(&session).Error)

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), target.ID, actor.ID))

	_, err = svc.GetByID(context.Background(), target.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	var sessionCount int64
	require.NoError(t, db.Model(&models.Session{}).Where("user_id = ?", target.ID).Count(&sessionCount).Error)
	require.Zero(t, sessionCount)
}

func TestUserServiceSetActive(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "toggle-user")

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(context.Background(), user.ID, false))

	reloaded, err := svc.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsActive)

	err = svc.SetActive(context.Background(), "missing-id", true)
	require.ErrorIs(t, err, ErrUserNotFound)
}
