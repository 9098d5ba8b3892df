package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/database/testutil"
	"github.com/virtualstage/backlot/internal/models"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
)

func createTestDepartment(t *testing.T, svc *DepartmentService, name, departmentType string) *models.Department {
	t.Helper()

	department, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{
		Name:           name,
		DepartmentType: departmentType,
	})
	require.NoError(t, err)
	return department
}

func TestDepartmentServiceCatalog(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewDepartmentService(db, nil, nil)
	require.NoError(t, err)

	department, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{
		Name:           "Modeling",
		DepartmentType: "modeling",
		DisplayOrder:   2,
	})
	require.NoError(t, err)
	require.Equal(t, "#1976d2", department.Color)
	require.True(t, department.IsActive)

	_, err = svc.CreateDepartment(context.Background(), CreateDepartmentInput{DepartmentType: "rigging"})
	requireBadRequest(t, err)
	_, err = svc.CreateDepartment(context.Background(), CreateDepartmentInput{Name: "Rigging"})
	requireBadRequest(t, err)

	_, err = svc.CreateDepartment(context.Background(), CreateDepartmentInput{
		Name:           "Modeling Again",
		DepartmentType: "modeling",
	})
	requireBadRequest(t, err)
	require.ErrorContains(t, err, "department type already exists")

	// An inactive entry is stored as inactive despite the column default.
	hidden, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{
		Name:           "Archived",
		DepartmentType: "archived",
		IsActive:       boolPtr(false),
	})
	require.NoError(t, err)
	require.False(t, hidden.IsActive)

	_, err = svc.CreateDepartment(context.Background(), CreateDepartmentInput{
		Name:           "Animation",
		DepartmentType: "animation",
		DisplayOrder:   1,
	})
	require.NoError(t, err)
	_, err = svc.CreateDepartment(context.Background(), CreateDepartmentInput{
		Name:           "Compositing",
		DepartmentType: "compositing",
		DisplayOrder:   1,
	})
	require.NoError(t, err)

	listed, err := svc.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, "Animation", listed[0].Name)
	require.Equal(t, "Compositing", listed[1].Name)
	require.Equal(t, "Modeling", listed[2].Name)

	_, err = svc.GetDepartment(context.Background(), "missing-department")
	require.ErrorIs(t, err, ErrDepartmentNotFound)
}

func TestDepartmentServiceUpdateDepartment(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewDepartmentService(db, nil, nil)
	require.NoError(t, err)

	department := createTestDepartment(t, svc, "Lighting", "lighting")

	updated, err := svc.UpdateDepartment(context.Background(), department.ID, UpdateDepartmentInput{
		Name:         strPtr("Lighting & Rendering"),
		Color:        strPtr("#ffaa00"),
		DisplayOrder: intPtr(7),
	})
	require.NoError(t, err)
	require.Equal(t, "Lighting & Rendering", updated.Name)
	require.Equal(t, "#ffaa00", updated.Color)
	require.Equal(t, 7, updated.DisplayOrder)
	require.Equal(t, "lighting", updated.DepartmentType)

	deactivated, err := svc.UpdateDepartment(context.Background(), department.ID, UpdateDepartmentInput{
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	listed, err := svc.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Empty(t, listed)

	_, err = svc.UpdateDepartment(context.Background(), department.ID, UpdateDepartmentInput{Name: strPtr("  ")})
	requireBadRequest(t, err)

	same, err := svc.UpdateDepartment(context.Background(), department.ID, UpdateDepartmentInput{})
	require.NoError(t, err)
	require.Equal(t, "Lighting & Rendering", same.Name)

	_, err = svc.UpdateDepartment(context.Background(), "missing-department", UpdateDepartmentInput{})
	require.ErrorIs(t, err, ErrDepartmentNotFound)
}

func TestDepartmentServiceStoryAssignment(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewDepartmentService(db, nil, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "dept-owner")
	story := createTestStory(t, db, owner.ID, "Departmental Story")
	department := createTestDepartment(t, svc, "Rigging", "rigging")

	_, err = svc.AssignDepartment(context.Background(), story.ID, "", "", owner.ID)
	requireBadRequest(t, err)
	_, err = svc.AssignDepartment(context.Background(), "missing-story", department.ID, "", owner.ID)
	require.ErrorIs(t, err, ErrStoryNotFound)
	_, err = svc.AssignDepartment(context.Background(), story.ID, "missing-department", "", owner.ID)
	require.ErrorIs(t, err, ErrDepartmentNotFound)

	link, err := svc.AssignDepartment(context.Background(), story.ID, department.ID, "rig hero first", owner.ID)
	require.NoError(t, err)
	require.True(t, link.IsActive)
	require.Equal(t, "rig hero first", link.Notes)
	require.NotNil(t, link.AssignedByID)
	require.Equal(t, owner.ID, *link.AssignedByID)
	require.NotNil(t, link.Department)

	_, err = svc.AssignDepartment(context.Background(), story.ID, department.ID, "", owner.ID)
	require.ErrorIs(t, err, ErrDepartmentAssigned)

	links, err := svc.ListStoryDepartments(context.Background(), story.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.NotNil(t, links[0].Department)
	require.Equal(t, "Rigging", links[0].Department.Name)

	// Open work survives deactivating the department on the story.
	asset := createTestStoryAsset(t, db, story.ID, "Hero Rig")
	_, err = svc.UpsertAssetAssignment(context.Background(), story.ID, asset.ID, department.ID, DepartmentAssignmentInput{}, owner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveDepartment(context.Background(), story.ID, department.ID))
	err = svc.RemoveDepartment(context.Background(), story.ID, department.ID)
	require.ErrorIs(t, err, ErrStoryDepartmentNotFound)

	assignments, err := svc.ListAssetAssignments(context.Background(), story.ID, asset.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
}

func TestDepartmentServiceUpsertAssetAssignment(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	svc, err := NewDepartmentService(db, nil, notifications)
	require.NoError(t, err)

	owner := createTestUser(t, db, "upsert-owner")
	story := createTestStory(t, db, owner.ID, "Queue Story")
	asset := createTestStoryAsset(t, db, story.ID, "Queued Prop")
	department := createTestDepartment(t, svc, "Texturing", "texturing")

	_, err = svc.UpsertAssetAssignment(context.Background(), story.ID, asset.ID, department.ID, DepartmentAssignmentInput{
		Status: strPtr("shipped"),
	}, owner.ID)
	requireBadRequest(t, err)
	_, err = svc.UpsertAssetAssignment(context.Background(), story.ID, asset.ID, department.ID, DepartmentAssignmentInput{
		Priority: strPtr("whenever"),
	}, owner.ID)
	requireBadRequest(t, err)
	_, err = svc.UpsertAssetAssignment(context.Background(), story.ID, "missing-asset", department.ID, DepartmentAssignmentInput{}, owner.ID)
	require.ErrorIs(t, err, ErrStoryAssetNotFound)
	_, err = svc.UpsertAssetAssignment(context.Background(), story.ID, asset.ID, "missing-department", DepartmentAssignmentInput{}, owner.ID)
	require.ErrorIs(t, err, ErrDepartmentNotFound)

	created, err := svc.UpsertAssetAssignment(context.Background(), story.ID, asset.ID, department.ID, DepartmentAssignmentInput{}, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusPending, created.Status)
	require.Equal(t, models.AssignmentPriorityMedium, created.Priority)
	require.NotNil(t, created.Department)

	queued, err := notifications.ListForUser(context.Background(), ListNotificationsInput{UserID: owner.ID})
	require.NoError(t, err)
	require.Len(t, queued, 1)
	require.Equal(t, "assignment.created", queued[0].Type)

	due := time.Now().Add(72 * time.Hour)
	updated, err := svc.UpsertAssetAssignment(context.Background(), story.ID, asset.ID, department.ID, DepartmentAssignmentInput{
		Status:   strPtr(models.AssignmentStatusInProgress),
		Priority: strPtr(models.AssignmentPriorityHigh),
		DueDate:  &due,
		Notes:    strPtr("blocked on references"),
	}, owner.ID)
	require.NoError(t, err)
	// Upserting the same pair edits the row instead of adding one.
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, models.AssignmentStatusInProgress, updated.Status)
	require.Equal(t, models.AssignmentPriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)
	require.Equal(t, "blocked on references", updated.Notes)

	assignments, err := svc.ListAssetAssignments(context.Background(), story.ID, asset.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)

	// The update path sends no further notifications.
	queued, err = notifications.ListForUser(context.Background(), ListNotificationsInput{UserID: owner.ID})
	require.NoError(t, err)
	require.Len(t, queued, 1)
}

func TestDepartmentServiceAssetAssignmentOwnership(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewDepartmentService(db, nil, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "queue-owner")
	outsider := createTestUser(t, db, "queue-outsider")
	story := createTestStory(t, db, owner.ID, "Guarded Story")
	asset := createTestStoryAsset(t, db, story.ID, "Guarded Prop")
	department := createTestDepartment(t, svc, "FX", "fx")

	assignment, err := svc.UpsertAssetAssignment(context.Background(), story.ID, asset.ID, department.ID, DepartmentAssignmentInput{}, owner.ID)
	require.NoError(t, err)

	_, err = svc.UpdateAssetAssignment(context.Background(), assignment.ID, outsider.ID, DepartmentAssignmentInput{
		Status: strPtr(models.AssignmentStatusReview),
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := svc.UpdateAssetAssignment(context.Background(), assignment.ID, owner.ID, DepartmentAssignmentInput{
		Status: strPtr(models.AssignmentStatusReview),
	})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusReview, updated.Status)

	err = svc.DeleteAssetAssignment(context.Background(), assignment.ID, outsider.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.NoError(t, svc.DeleteAssetAssignment(context.Background(), assignment.ID, owner.ID))

	_, err = svc.UpdateAssetAssignment(context.Background(), assignment.ID, owner.ID, DepartmentAssignmentInput{})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDepartmentServiceShotAssignments(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewDepartmentService(db, nil, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "shot-queue-owner")
	outsider := createTestUser(t, db, "shot-queue-outsider")
	story := createTestStory(t, db, owner.ID, "Shot Queue Story")
	otherStory := createTestStory(t, db, owner.ID, "Unrelated Shot Story")
	shot := createTestShot(t, db, story.ID, nil, 1)
	department := createTestDepartment(t, svc, "Animation", "animation")

	_, err = svc.UpsertShotAssignment(context.Background(), otherStory.ID, shot.ID, department.ID, DepartmentAssignmentInput{}, owner.ID)
	require.ErrorIs(t, err, ErrShotNotFound)

	created, err := svc.UpsertShotAssignment(context.Background(), story.ID, shot.ID, department.ID, DepartmentAssignmentInput{
		Priority: strPtr(models.AssignmentPriorityUrgent),
	}, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusPending, created.Status)
	require.Equal(t, models.AssignmentPriorityUrgent, created.Priority)

	upserted, err := svc.UpsertShotAssignment(context.Background(), story.ID, shot.ID, department.ID, DepartmentAssignmentInput{
		Status: strPtr(models.AssignmentStatusCompleted),
	}, owner.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, upserted.ID)
	require.Equal(t, models.AssignmentStatusCompleted, upserted.Status)

	listed, err := svc.ListShotAssignments(context.Background(), story.ID, shot.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = svc.UpdateShotAssignment(context.Background(), created.ID, outsider.ID, DepartmentAssignmentInput{})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, svc.DeleteShotAssignment(context.Background(), created.ID, owner.ID))
	err = svc.DeleteShotAssignment(context.Background(), created.ID, owner.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDepartmentServiceStats(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewDepartmentService(db, nil, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "stats-owner")
	story := createTestStory(t, db, owner.ID, "Stats Story")
	department := createTestDepartment(t, svc, "Surfacing", "surfacing")

	lateProp := models.StoryAsset{StoryID: story.ID, Name: "Late Prop", EstimatedCost: 400}
	require.NoError(t, db.Create(&lateProp).Error)
	doneProp := models.StoryAsset{StoryID: story.ID, Name: "Done Prop", EstimatedCost: 2000}
	require.NoError(t, db.Create(&doneProp).Error)
	shot := models.Shot{StoryID: story.ID, ShotNumber: 1, EstimatedCost: 1500}
	require.NoError(t, db.Create(&shot).Error)

	yesterday := time.Now().Add(-24 * time.Hour)
	nextWeek := time.Now().Add(7 * 24 * time.Hour)

	_, err = svc.UpsertAssetAssignment(context.Background(), story.ID, lateProp.ID, department.ID, DepartmentAssignmentInput{
		DueDate: &yesterday,
	}, owner.ID)
	require.NoError(t, err)
	_, err = svc.UpsertAssetAssignment(context.Background(), story.ID, doneProp.ID, department.ID, DepartmentAssignmentInput{
		Status:  strPtr(models.AssignmentStatusCompleted),
		DueDate: &yesterday,
	}, owner.ID)
	require.NoError(t, err)
	_, err = svc.UpsertShotAssignment(context.Background(), story.ID, shot.ID, department.ID, DepartmentAssignmentInput{
		Status:   strPtr(models.AssignmentStatusInProgress),
		Priority: strPtr(models.AssignmentPriorityHigh),
		DueDate:  &nextWeek,
	}, owner.ID)
	require.NoError(t, err)

	// Spend on another story must stay out of this report.
	otherStory := createTestStory(t, db, owner.ID, "Unrelated Stats Story")
	decoy := models.StoryAsset{StoryID: otherStory.ID, Name: "Decoy Prop", EstimatedCost: 9999}
	require.NoError(t, db.Create(&decoy).Error)
	_, err = svc.UpsertAssetAssignment(context.Background(), otherStory.ID, decoy.ID, department.ID, DepartmentAssignmentInput{}, owner.ID)
	require.NoError(t, err)

	stats, err := svc.DepartmentStats(context.Background(), story.ID, department.ID)
	require.NoError(t, err)

	require.Equal(t, department.ID, stats.Department.ID)
	require.Equal(t, "surfacing", stats.Department.Type)

	require.Equal(t, 2, stats.Assets.Total)
	require.Equal(t, 1, stats.Assets.ByStatus[models.AssignmentStatusPending])
	require.Equal(t, 1, stats.Assets.ByStatus[models.AssignmentStatusCompleted])
	// Every known status appears, counted or not.
	require.Contains(t, stats.Assets.ByStatus, models.AssignmentStatusReview)
	require.Equal(t, 2, stats.Assets.ByPriority[models.AssignmentPriorityMedium])

	require.Equal(t, 1, stats.Shots.Total)
	require.Equal(t, 1, stats.Shots.ByStatus[models.AssignmentStatusInProgress])
	require.Equal(t, 1, stats.Shots.ByPriority[models.AssignmentPriorityHigh])

	// Only late work that is still open counts as overdue.
	require.Equal(t, 1, stats.Overdue.Assets)
	require.Equal(t, 0, stats.Overdue.Shots)

	require.Equal(t, 2400.0, stats.Costs.Assets)
	require.Equal(t, 1500.0, stats.Costs.Shots)
	require.Equal(t, 3900.0, stats.Costs.Total)

	departmentAssets, err := svc.DepartmentAssets(context.Background(), story.ID, department.ID)
	require.NoError(t, err)
	require.Len(t, departmentAssets, 2)
	departmentShots, err := svc.DepartmentShots(context.Background(), story.ID, department.ID)
	require.NoError(t, err)
	require.Len(t, departmentShots, 1)
}
