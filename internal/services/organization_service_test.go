package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/database/testutil"
	"github.com/virtualstage/backlot/internal/models"
)

func TestOrganizationServiceCreateDerivesSlug(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewOrganizationService(db, nil)
	require.NoError(t, err)

	org, err := svc.Create(context.Background(), CreateOrganizationInput{
		Name: "One World Studio",
	})
	require.NoError(t, err)
	require.Equal(t, "One World Studio", org.Name)
	require.Equal(t, "one-world-studio", org.Slug)

	explicit, err := svc.Create(context.Background(), CreateOrganizationInput{
		Name: "Second Studio",
		Slug: "Custom Slug",
	})
	require.NoError(t, err)
	require.Equal(t, "custom-slug", explicit.Slug)
}

func TestOrganizationServiceCreateRequiresName(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewOrganizationService(db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateOrganizationInput{Name: "   "})
	requireBadRequest(t, err)
}

func TestOrganizationServiceCreateRejectsDuplicateSlug(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewOrganizationService(db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateOrganizationInput{Name: "Twin Studio"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateOrganizationInput{Name: "Twin Studio"})
	requireBadRequest(t, err)
}

func TestOrganizationServiceCreateStoresSettings(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewOrganizationService(db, nil)
	require.NoError(t, err)

	org, err := svc.Create(context.Background(), CreateOrganizationInput{
		Name:     "Settings Studio",
		Settings: map[string]any{"default_currency": "USD"},
	})
	require.NoError(t, err)
	require.Contains(t, string(org.Settings), "default_currency")
}

func TestOrganizationServiceUpdateKeepsSlug(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewOrganizationService(db, nil)
	require.NoError(t, err)

	org, err := svc.Create(context.Background(), CreateOrganizationInput{Name: "Rename Studio"})
	require.NoError(t, err)

	name := "Renamed Pictures"
	description := "Feature animation house"
	updated, err := svc.Update(context.Background(), org.ID, UpdateOrganizationInput{
		Name:        &name,
		Description: &description,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed Pictures", updated.Name)
	require.Equal(t, "Feature animation house", updated.Description)
	require.Equal(t, "rename-studio", updated.Slug)
}

func TestOrganizationServiceUpdateNoFields(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewOrganizationService(db, nil)
	require.NoError(t, err)

	org, err := svc.Create(context.Background(), CreateOrganizationInput{Name: "Idle Studio"})
	require.NoError(t, err)

	same, err := svc.Update(context.Background(), org.ID, UpdateOrganizationInput{})
	require.NoError(t, err)
	require.Equal(t, org.Name, same.Name)
}

func TestOrganizationServiceGetMissing(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewOrganizationService(db, nil)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), "missing-id")
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestOrganizationServiceListOrdersByCreation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewOrganizationService(db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateOrganizationInput{Name: "First Listed"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateOrganizationInput{Name: "Second Listed"})
	require.NoError(t, err)

	orgs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	require.Equal(t, "First Listed", orgs[0].Name)
}

func TestOrganizationServiceDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewOrganizationService(db, nil)
	require.NoError(t, err)

	org, err := svc.Create(context.Background(), CreateOrganizationInput{Name: "Doomed Studio"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), org.ID))

	var count int64
	require.NoError(t, db.Model(&models.Organization{}).Where("id = ?", org.ID).Count(&count).Error)
	require.Zero(t, count)

	err = svc.Delete(context.Background(), org.ID)
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}
