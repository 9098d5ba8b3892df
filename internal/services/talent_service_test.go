package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/database/testutil"
	"github.com/virtualstage/backlot/internal/models"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
)

func TestTalentServicePoolFilters(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "pool-curator")

	svc, err := NewTalentService(db, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()

	ada, err := svc.Create(ctx, CreateTalentInput{
		Name:       "  Ada Quinn  ",
		TalentType: models.TalentTypeVoiceActor,
		Email:      "  Ada@Example.COM  ",
	}, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada Quinn", ada.Name)
	require.Equal(t, "ada@example.com", ada.Email)
	require.Equal(t, models.TalentAvailable, ada.AvailabilityStatus)

	bo, err := svc.Create(ctx, CreateTalentInput{
		Name:               "Bo Marsh",
		TalentType:         models.TalentTypeModeler,
		AvailabilityStatus: models.TalentBusy,
		Notes:              "Prefers hard-surface modeling.",
	}, user.ID)
	require.NoError(t, err)

	cy, err := svc.Create(ctx, CreateTalentInput{
		Name:       "Cy Verne",
		TalentType: models.TalentTypeAnimator,
	}, user.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, ListTalentInput{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"Ada Quinn", "Bo Marsh", "Cy Verne"}, []string{all[0].Name, all[1].Name, all[2].Name})

	modelers, err := svc.List(ctx, ListTalentInput{TalentType: models.TalentTypeModeler})
	require.NoError(t, err)
	require.Len(t, modelers, 1)
	require.Equal(t, bo.ID, modelers[0].ID)

	available, err := svc.List(ctx, ListTalentInput{AvailabilityStatus: models.TalentAvailable})
	require.NoError(t, err)
	require.Len(t, available, 2)
	require.Equal(t, ada.ID, available[0].ID)
	require.Equal(t, cy.ID, available[1].ID)

	byNotes, err := svc.List(ctx, ListTalentInput{Search: "HARD-SURFACE"})
	require.NoError(t, err)
	require.Len(t, byNotes, 1)
	require.Equal(t, bo.ID, byNotes[0].ID)

	byEmail, err := svc.List(ctx, ListTalentInput{Search: "ada@example"})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	require.Equal(t, ada.ID, byEmail[0].ID)

	byName, err := svc.List(ctx, ListTalentInput{Search: "verne"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, cy.ID, byName[0].ID)

	none, err := svc.List(ctx, ListTalentInput{Search: "nobody-here"})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestTalentServiceCreateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "pool-owner")

	svc, err := NewTalentService(db, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.Create(ctx, CreateTalentInput{TalentType: models.TalentTypeModeler}, user.ID)
	requireBadRequest(t, err)

	_, err = svc.Create(ctx, CreateTalentInput{Name: "No Type"}, user.ID)
	requireBadRequest(t, err)

	_, err = svc.Create(ctx, CreateTalentInput{Name: "Bad Type", TalentType: "stunt_double"}, user.ID)
	requireBadRequest(t, err)

	_, err = svc.Create(ctx, CreateTalentInput{
		Name:               "Bad Availability",
		TalentType:         models.TalentTypeModeler,
		AvailabilityStatus: "retired",
	}, user.ID)
	requireBadRequest(t, err)

	created, err := svc.Create(ctx, CreateTalentInput{
		Name:            "Rena Okafor",
		TalentType:      models.TalentTypeRigger,
		Email:           " Rena@Studio.IO ",
		Phone:           "  555-0101  ",
		PortfolioURL:    "  https://rena.example/reel  ",
		Notes:           "Creature rigs.",
		HourlyRate:      floatPtr(85),
		DailyRate:       floatPtr(600),
		Specializations: []string{"cloth sim", "muscle systems"},
		Languages:       []string{"en", "fr"},
	}, user.ID)
	require.NoError(t, err)
	require.Equal(t, "rena@studio.io", created.Email)
	require.Equal(t, "555-0101", created.Phone)
	require.Equal(t, "https://rena.example/reel", created.PortfolioURL)
	require.NotNil(t, created.HourlyRate)
	require.Equal(t, 85.0, *created.HourlyRate)
	require.NotNil(t, created.DailyRate)
	require.Equal(t, 600.0, *created.DailyRate)
	require.JSONEq(t, `["cloth sim","muscle systems"]`, string(created.Specializations))
	require.JSONEq(t, `["en","fr"]`, string(created.Languages))
	require.NotNil(t, created.CreatedByID)
	require.Equal(t, user.ID, *created.CreatedByID)

	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, "Rena Okafor", fetched.Name)

	_, err = svc.GetByID(ctx, "missing-talent")
	require.ErrorIs(t, err, ErrTalentNotFound)
}

func TestTalentServiceUpdate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "pool-editor")

	svc, err := NewTalentService(db, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()

	talent, err := svc.Create(ctx, CreateTalentInput{
		Name:       "Juno Park",
		TalentType: models.TalentTypeTextureArtist,
		Email:      "juno@studio.io",
		HourlyRate: floatPtr(70),
	}, user.ID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, talent.ID, UpdateTalentInput{
		Name:               strPtr("  Juno Park-Reyes  "),
		HourlyRate:         floatPtr(95),
		AvailabilityStatus: strPtr(models.TalentBusy),
	})
	require.NoError(t, err)
	require.Equal(t, "Juno Park-Reyes", updated.Name)
	require.Equal(t, models.TalentTypeTextureArtist, updated.TalentType)
	require.NotNil(t, updated.HourlyRate)
	require.Equal(t, 95.0, *updated.HourlyRate)
	require.Equal(t, models.TalentBusy, updated.AvailabilityStatus)

	updated, err = svc.Update(ctx, talent.ID, UpdateTalentInput{
		Email:     strPtr(" JUNO+Work@Studio.IO "),
		Languages: []string{"ko", "en"},
	})
	require.NoError(t, err)
	require.Equal(t, "juno+work@studio.io", updated.Email)
	require.JSONEq(t, `["ko","en"]`, string(updated.Languages))

	_, err = svc.Update(ctx, talent.ID, UpdateTalentInput{Name: strPtr("   ")})
	requireBadRequest(t, err)

	_, err = svc.Update(ctx, talent.ID, UpdateTalentInput{TalentType: strPtr("gaffer")})
	requireBadRequest(t, err)

	_, err = svc.Update(ctx, talent.ID, UpdateTalentInput{AvailabilityStatus: strPtr("sabbatical")})
	requireBadRequest(t, err)

	unchanged, err := svc.Update(ctx, talent.ID, UpdateTalentInput{})
	require.NoError(t, err)
	require.Equal(t, "Juno Park-Reyes", unchanged.Name)
	require.Equal(t, models.TalentBusy, unchanged.AvailabilityStatus)

	_, err = svc.Update(ctx, "missing-talent", UpdateTalentInput{Name: strPtr("Ghost")})
	require.ErrorIs(t, err, ErrTalentNotFound)
}

func TestTalentServiceDeleteCascadesAssignments(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	owner := createTestUser(t, db, "cascade-owner")
	story := createTestStory(t, db, owner.ID, "Cascade Story")
	character := createTestCharacter(t, db, story.ID, "Lead")
	asset := createTestStoryAsset(t, db, story.ID, "Hero Prop")
	shot := createTestShot(t, db, story.ID, nil, 1)

	doomed := createTestTalent(t, db, "Doomed Contractor", models.TalentType3DArtist)
	survivor := createTestTalent(t, db, "Surviving Contractor", models.TalentTypeVoiceActor)

	svc, err := NewTalentService(db, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{TalentID: doomed.ID})
	require.NoError(t, err)
	_, err = svc.AssignToAsset(ctx, story.ID, asset.ID, CreateTalentAssignmentInput{TalentID: doomed.ID})
	require.NoError(t, err)
	_, err = svc.AssignToShot(ctx, story.ID, shot.ID, CreateTalentAssignmentInput{TalentID: doomed.ID})
	require.NoError(t, err)
	_, err = svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{TalentID: survivor.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, doomed.ID))

	for _, model := range []any{
		&models.CharacterTalentAssignment{},
		&models.AssetTalentAssignment{},
		&models.ShotTalentAssignment{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Where("talent_id = ?", doomed.ID).Count(&count).Error)
		require.Zero(t, count)
	}

	var survivorCount int64
	require.NoError(t, db.Model(&models.CharacterTalentAssignment{}).
		Where("talent_id = ?", survivor.ID).
		Count(&survivorCount).Error)
	require.EqualValues(t, 1, survivorCount)

	_, err = svc.GetByID(ctx, doomed.ID)
	require.ErrorIs(t, err, ErrTalentNotFound)

	err = svc.Delete(ctx, doomed.ID)
	require.ErrorIs(t, err, ErrTalentNotFound)
}

func TestTalentServiceCharacterAssignments(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	owner := createTestUser(t, db, "casting-owner")
	story := createTestStory(t, db, owner.ID, "Casting Story")
	character := createTestCharacter(t, db, story.ID, "Navigator")
	otherStory := createTestStory(t, db, owner.ID, "Unrelated Story")
	talent := createTestTalent(t, db, "Voice Lead", models.TalentTypeVoiceActor)

	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	svc, err := NewTalentService(db, nil, notifications)
	require.NoError(t, err)

	ctx := context.Background()

	assignment, err := svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{TalentID: talent.ID})
	require.NoError(t, err)
	require.Equal(t, "voice_actor", assignment.RoleType)
	require.Equal(t, models.TalentStatusProposed, assignment.Status)
	require.NotNil(t, assignment.Talent)
	require.Equal(t, "Voice Lead", assignment.Talent.Name)

	_, err = svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{
		TalentID: talent.ID,
		RoleType: "animator",
	})
	requireBadRequest(t, err)

	// Character work has no in-progress stage.
	_, err = svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{
		TalentID: talent.ID,
		RoleType: "motion_capture",
		Status:   models.TalentStatusInProgress,
	})
	requireBadRequest(t, err)

	_, err = svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{TalentID: talent.ID})
	requireBadRequest(t, err)
	require.ErrorContains(t, err, "already assigned")

	second, err := svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{
		TalentID:   talent.ID,
		RoleType:   "motion_capture",
		RateAgreed: floatPtr(400),
	})
	require.NoError(t, err)
	require.Equal(t, "motion_capture", second.RoleType)

	assignments, err := svc.ListCharacterAssignments(ctx, story.ID, character.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	require.Equal(t, second.ID, assignments[0].ID)
	require.Equal(t, assignment.ID, assignments[1].ID)
	require.NotNil(t, assignments[0].Talent)

	_, err = svc.AssignToCharacter(ctx, otherStory.ID, character.ID, CreateTalentAssignmentInput{TalentID: talent.ID})
	require.ErrorIs(t, err, ErrCharacterNotFound)

	_, err = svc.AssignToCharacter(ctx, "missing-story", character.ID, CreateTalentAssignmentInput{TalentID: talent.ID})
	require.ErrorIs(t, err, ErrStoryNotFound)

	_, err = svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{TalentID: "missing-talent"})
	require.ErrorIs(t, err, ErrTalentNotFound)

	inbox, err := notifications.ListForUser(ctx, ListNotificationsInput{UserID: owner.ID})
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	require.Equal(t, "assignment.created", inbox[0].Type)
	require.Contains(t, inbox[0].Message, "Voice Lead")
	require.Contains(t, inbox[0].Message, "character")
}

func TestTalentServiceCharacterAssignmentOwnership(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	owner := createTestUser(t, db, "assignment-owner")
	outsider := createTestUser(t, db, "assignment-outsider")
	story := createTestStory(t, db, owner.ID, "Ownership Story")
	character := createTestCharacter(t, db, story.ID, "Pilot")
	talent := createTestTalent(t, db, "Mocap Performer", models.TalentTypeVoiceActor)

	svc, err := NewTalentService(db, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()

	assignment, err := svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{TalentID: talent.ID})
	require.NoError(t, err)

	_, err = svc.UpdateCharacterAssignment(ctx, assignment.ID, outsider.ID, UpdateTalentAssignmentInput{
		Status: strPtr(models.TalentStatusConfirmed),
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// Hour fields are ignored for character work.
	updated, err := svc.UpdateCharacterAssignment(ctx, assignment.ID, owner.ID, UpdateTalentAssignmentInput{
		Status:         strPtr(models.TalentStatusConfirmed),
		RateAgreed:     floatPtr(500),
		EstimatedHours: intPtr(12),
		Notes:          strPtr("Contract signed."),
	})
	require.NoError(t, err)
	require.Equal(t, models.TalentStatusConfirmed, updated.Status)
	require.NotNil(t, updated.RateAgreed)
	require.Equal(t, 500.0, *updated.RateAgreed)
	require.Equal(t, "Contract signed.", updated.Notes)

	_, err = svc.UpdateCharacterAssignment(ctx, assignment.ID, owner.ID, UpdateTalentAssignmentInput{
		Status: strPtr(models.TalentStatusInProgress),
	})
	requireBadRequest(t, err)

	unchanged, err := svc.UpdateCharacterAssignment(ctx, assignment.ID, owner.ID, UpdateTalentAssignmentInput{})
	require.NoError(t, err)
	require.Equal(t, models.TalentStatusConfirmed, unchanged.Status)

	second, err := svc.AssignToCharacter(ctx, story.ID, character.ID, CreateTalentAssignmentInput{
		TalentID: talent.ID,
		RoleType: "motion_capture",
	})
	require.NoError(t, err)

	_, err = svc.UpdateCharacterAssignment(ctx, second.ID, owner.ID, UpdateTalentAssignmentInput{
		RoleType: strPtr("voice_actor"),
	})
	requireBadRequest(t, err)
	require.ErrorContains(t, err, "already assigned")

	err = svc.DeleteCharacterAssignment(ctx, assignment.ID, outsider.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, svc.DeleteCharacterAssignment(ctx, assignment.ID, owner.ID))

	err = svc.DeleteCharacterAssignment(ctx, assignment.ID, owner.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = svc.UpdateCharacterAssignment(ctx, assignment.ID, owner.ID, UpdateTalentAssignmentInput{
		Notes: strPtr("Too late."),
	})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestTalentServiceAssetAndShotAssignments(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	owner := createTestUser(t, db, "work-owner")
	outsider := createTestUser(t, db, "work-outsider")
	story := createTestStory(t, db, owner.ID, "Work Story")
	asset := createTestStoryAsset(t, db, story.ID, "Creature Model")
	shot := createTestShot(t, db, story.ID, nil, 1)
	modeler := createTestTalent(t, db, "Creature Modeler", models.TalentTypeModeler)
	animator := createTestTalent(t, db, "Shot Animator", models.TalentTypeAnimator)

	svc, err := NewTalentService(db, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()

	assetAssignment, err := svc.AssignToAsset(ctx, story.ID, asset.ID, CreateTalentAssignmentInput{
		TalentID:       modeler.ID,
		EstimatedHours: intPtr(20),
	})
	require.NoError(t, err)
	require.Equal(t, "modeler", assetAssignment.RoleType)
	require.Equal(t, models.TalentStatusProposed, assetAssignment.Status)
	require.NotNil(t, assetAssignment.EstimatedHours)
	require.Equal(t, 20, *assetAssignment.EstimatedHours)

	_, err = svc.AssignToAsset(ctx, story.ID, asset.ID, CreateTalentAssignmentInput{
		TalentID: modeler.ID,
		RoleType: "voice_actor",
	})
	requireBadRequest(t, err)

	// Asset work does have an in-progress stage.
	texturing, err := svc.AssignToAsset(ctx, story.ID, asset.ID, CreateTalentAssignmentInput{
		TalentID: modeler.ID,
		RoleType: "texture_artist",
		Status:   models.TalentStatusInProgress,
	})
	require.NoError(t, err)
	require.Equal(t, models.TalentStatusInProgress, texturing.Status)

	assetAssignments, err := svc.ListAssetAssignments(ctx, story.ID, asset.ID)
	require.NoError(t, err)
	require.Len(t, assetAssignments, 2)
	require.Equal(t, texturing.ID, assetAssignments[0].ID)

	_, err = svc.ListAssetAssignments(ctx, story.ID, "missing-asset")
	require.ErrorIs(t, err, ErrStoryAssetNotFound)

	_, err = svc.UpdateAssetAssignment(ctx, assetAssignment.ID, outsider.ID, UpdateTalentAssignmentInput{
		Status: strPtr(models.TalentStatusConfirmed),
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	shotAssignment, err := svc.AssignToShot(ctx, story.ID, shot.ID, CreateTalentAssignmentInput{TalentID: animator.ID})
	require.NoError(t, err)
	require.Equal(t, "animator", shotAssignment.RoleType)
	require.Equal(t, models.TalentStatusProposed, shotAssignment.Status)

	updatedShot, err := svc.UpdateShotAssignment(ctx, shotAssignment.ID, owner.ID, UpdateTalentAssignmentInput{
		Status:         strPtr(models.TalentStatusInProgress),
		EstimatedHours: intPtr(10),
		ActualHours:    intPtr(6),
		RateAgreed:     floatPtr(1200),
	})
	require.NoError(t, err)
	require.Equal(t, models.TalentStatusInProgress, updatedShot.Status)
	require.NotNil(t, updatedShot.EstimatedHours)
	require.Equal(t, 10, *updatedShot.EstimatedHours)
	require.NotNil(t, updatedShot.ActualHours)
	require.Equal(t, 6, *updatedShot.ActualHours)
	require.NotNil(t, updatedShot.RateAgreed)
	require.Equal(t, 1200.0, *updatedShot.RateAgreed)

	_, err = svc.AssignToShot(ctx, story.ID, "missing-shot", CreateTalentAssignmentInput{TalentID: animator.ID})
	require.ErrorIs(t, err, ErrShotNotFound)

	require.NoError(t, svc.DeleteShotAssignment(ctx, shotAssignment.ID, owner.ID))

	shotAssignments, err := svc.ListShotAssignments(ctx, story.ID, shot.ID)
	require.NoError(t, err)
	require.Empty(t, shotAssignments)

	err = svc.DeleteAssetAssignment(ctx, "missing-assignment", owner.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
