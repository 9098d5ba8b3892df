package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/database/testutil"
	"github.com/virtualstage/backlot/internal/models"
)

func TestInvitationServiceCreateSendsEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Invite Studio")
	inviter := createTestUser(t, db, "inviter-one")
	mailer := &captureMailer{}

	svc, err := NewInvitationService(db, mailer, nil, nil)
	require.NoError(t, err)

	invitation, err := svc.Create(context.Background(), CreateInvitationInput{
		Email:          "NewHire@Example.com",
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "newhire@example.com", invitation.Email)
	require.Equal(t, models.InvitationStatusPending, invitation.Status)
	require.NotEmpty(t, invitation.Token)
	require.True(t, invitation.ExpiresAt.After(time.Now()))

	sent := mailer.sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"newhire@example.com"}, sent[0].To)
	require.Contains(t, sent[0].Subject, "Invite Studio")
	require.Contains(t, sent[0].Body, invitation.Token)
}

func TestInvitationServiceCreateValidatesInput(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Validate Studio")
	otherOrg := createTestOrganization(t, db, "Other Studio")
	inviter := createTestUser(t, db, "inviter-two")
	foreignTeam := createTestTeam(t, db, otherOrg.ID, "Foreign Crew")

	svc, err := NewInvitationService(db, nil, nil, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInvitationInput{
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	requireBadRequest(t, err)

	_, err = svc.Create(context.Background(), CreateInvitationInput{
		Email:          "hire@example.com",
		OrganizationID: "missing-org",
		InvitedByID:    inviter.ID,
	})
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	// Teams must belong to the inviting organization.
	_, err = svc.Create(context.Background(), CreateInvitationInput{
		Email:          "hire@example.com",
		OrganizationID: org.ID,
		TeamID:         &foreignTeam.ID,
		InvitedByID:    inviter.ID,
	})
	require.ErrorIs(t, err, ErrTeamNotFound)

	missingRole := "missing-role"
	_, err = svc.Create(context.Background(), CreateInvitationInput{
		Email:          "hire@example.com",
		OrganizationID: org.ID,
		RoleID:         &missingRole,
		InvitedByID:    inviter.ID,
	})
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestInvitationServiceCreateNotifiesExistingUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Notify Studio")
	inviter := createTestUser(t, db, "inviter-three")
	invitee := createTestUser(t, db, "existing-hire")

	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	svc, err := NewInvitationService(db, nil, notifications, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInvitationInput{
		Email:          "existing-hire@example.com",
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)

	items, err := notifications.ListForUser(context.Background(), ListNotificationsInput{UserID: invitee.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "invitation.received", items[0].Type)
}

func TestInvitationServiceGetByToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Token Studio")
	inviter := createTestUser(t, db, "inviter-four")

	svc, err := NewInvitationService(db, nil, nil, nil)
	require.NoError(t, err)

	invitation, err := svc.Create(context.Background(), CreateInvitationInput{
		Email:          "token@example.com",
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)

	found, err := svc.GetByToken(context.Background(), invitation.Token)
	require.NoError(t, err)
	require.Equal(t, invitation.ID, found.ID)

	_, err = svc.GetByToken(context.Background(), "")
	requireBadRequest(t, err)

	_, err = svc.GetByToken(context.Background(), "unknown-token")
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationServiceExpiredTokenFlipsStatus(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Expiry Studio")
	inviter := createTestUser(t, db, "inviter-five")

	current := time.Now()
	svc, err := NewInvitationService(db, nil, nil, nil,
		WithInvitationClock(func() time.Time { return current }),
	)
	require.NoError(t, err)

	invitation, err := svc.Create(context.Background(), CreateInvitationInput{
		Email:          "late@example.com",
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)

	current = current.Add(8 * 24 * time.Hour)

	_, err = svc.GetByToken(context.Background(), invitation.Token)
	require.ErrorIs(t, err, ErrInvitationExpired)

	var row models.Invitation
	require.NoError(t, db.First(&row, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationStatusExpired, row.Status)
}

func TestInvitationServiceAccept(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Accept Studio")
	team := createTestTeam(t, db, org.ID, "Onboarding Crew")
	inviter := createTestUser(t, db, "inviter-six")
	invitee := createTestUser(t, db, "accepting-hire")

	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	svc, err := NewInvitationService(db, nil, notifications, nil)
	require.NoError(t, err)

	invitation, err := svc.Create(context.Background(), CreateInvitationInput{
		Email:          "accepting-hire@example.com",
		OrganizationID: org.ID,
		TeamID:         &team.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)

	user, err := svc.Accept(context.Background(), invitation.Token, invitee.ID)
	require.NoError(t, err)
	require.NotNil(t, user.OrganizationID)
	require.Equal(t, org.ID, *user.OrganizationID)
	require.NotNil(t, user.TeamID)
	require.Equal(t, team.ID, *user.TeamID)

	var row models.Invitation
	require.NoError(t, db.First(&row, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationStatusAccepted, row.Status)
	require.NotNil(t, row.AcceptedAt)

	items, err := notifications.ListForUser(context.Background(), ListNotificationsInput{UserID: inviter.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "invitation.accepted", items[0].Type)

	// Consumed invitations cannot be accepted twice.
	_, err = svc.Accept(context.Background(), invitation.Token, invitee.ID)
	require.ErrorIs(t, err, ErrInvitationNotPending)
}

func TestInvitationServiceAcceptEmailMismatch(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Mismatch Studio")
	inviter := createTestUser(t, db, "inviter-seven")
	stranger := createTestUser(t, db, "wrong-hire")

	svc, err := NewInvitationService(db, nil, nil, nil)
	require.NoError(t, err)

	invitation, err := svc.Create(context.Background(), CreateInvitationInput{
		Email:          "intended-hire@example.com",
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), invitation.Token, stranger.ID)
	require.ErrorIs(t, err, ErrInvitationEmailMismatch)
}

func TestInvitationServiceCancel(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Cancel Studio")
	inviter := createTestUser(t, db, "inviter-eight")

	svc, err := NewInvitationService(db, nil, nil, nil)
	require.NoError(t, err)

	invitation, err := svc.Create(context.Background(), CreateInvitationInput{
		Email:          "cancel@example.com",
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), invitation.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), invitation.ID)
	require.ErrorIs(t, err, ErrInvitationCancelPending)
}

func TestInvitationServiceQRCode(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "QR Studio")
	inviter := createTestUser(t, db, "inviter-nine")

	svc, err := NewInvitationService(db, nil, nil, nil,
		WithInvitationBaseURL("https://backlot.example.com"),
	)
	require.NoError(t, err)

	invitation, err := svc.Create(context.Background(), CreateInvitationInput{
		Email:          "qr@example.com",
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)

	png, err := svc.QRCode(context.Background(), invitation.ID)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic bytes.
	require.Equal(t, byte(0x89), png[0])
}

func TestInvitationServiceMarkExpired(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	org := createTestOrganization(t, db, "Sweep Studio")
	inviter := createTestUser(t, db, "inviter-ten")

	current := time.Now()
	svc, err := NewInvitationService(db, nil, nil, nil,
		WithInvitationClock(func() time.Time { return current }),
		WithInvitationExpiry(time.Hour),
	)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInvitationInput{
		Email:          "sweep-a@example.com",
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInvitationInput{
		Email:          "sweep-b@example.com",
		OrganizationID: org.ID,
		InvitedByID:    inviter.ID,
	})
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)

	count, err := svc.MarkExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = svc.MarkExpired(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}
