package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/database/testutil"
	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/pkg/crypto"
)

func TestPasswordResetServiceRequestReset(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "reset-user")
	mailer := &captureMailer{}

	svc, err := NewPasswordResetService(db, mailer)
	require.NoError(t, err)

	token, err := svc.RequestReset(context.Background(), "Reset-User@Example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sent := mailer.sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{user.Email}, sent[0].To)
	require.Contains(t, sent[0].Body, token)

	// Plaintext tokens never land in the database.
	var row models.PasswordResetToken
	require.NoError(t, db.First(&row, "user_id = ?", user.ID).Error)
	require.NotEqual(t, token, row.Token)
	require.Len(t, row.Token, 64)
}

func TestPasswordResetServiceUnknownEmailSilent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	mailer := &captureMailer{}
	svc, err := NewPasswordResetService(db, mailer)
	require.NoError(t, err)

	token, err := svc.RequestReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Empty(t, token)
	require.Empty(t, mailer.sent())

	_, err = svc.RequestReset(context.Background(), "  ")
	requireBadRequest(t, err)
}

func TestPasswordResetServiceReplacesExistingTokens(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "replace-user")

	svc, err := NewPasswordResetService(db, nil)
	require.NoError(t, err)

	first, err := svc.RequestReset(context.Background(), user.Email)
	require.NoError(t, err)
	second, err := svc.RequestReset(context.Background(), user.Email)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	var count int64
	require.NoError(t, db.Model(&models.PasswordResetToken{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	// The superseded token no longer works.
	err = svc.ResetPassword(context.Background(), first, "new-password")
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestPasswordResetServiceResetPassword(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "consume-user")

	session := models.Session{UserID: user.ID, RefreshToken: "reset-session-token"}
	require.NoError(t, db.Create(&session).Error)

	svc, err := NewPasswordResetService(db, nil)
	require.NoError(t, err)

	token, err := svc.RequestReset(context.Background(), user.Email)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "fresh-password"))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	require.True(t, crypto.VerifyPassword("fresh-password", reloaded.Password))

	var revoked models.Session
	require.NoError(t, db.First(&revoked, "id = ?", session.ID).Error)
	require.NotNil(t, revoked.RevokedAt)

	// Tokens are single use.
	err = svc.ResetPassword(context.Background(), token, "another-password")
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestPasswordResetServiceRejectsBlankInput(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewPasswordResetService(db, nil)
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), "", "password")
	requireBadRequest(t, err)

	err = svc.ResetPassword(context.Background(), "some-token", "")
	requireBadRequest(t, err)

	err = svc.ResetPassword(context.Background(), "unknown-token", "password")
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestPasswordResetServiceExpiredToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "expired-user")

	current := time.Now()
	svc, err := NewPasswordResetService(db, nil,
		WithResetClock(func() time.Time { return current }),
		WithResetExpiry(30*time.Minute),
	)
	require.NoError(t, err)

	token, err := svc.RequestReset(context.Background(), user.Email)
	require.NoError(t, err)

	current = current.Add(time.Hour)

	err = svc.ResetPassword(context.Background(), token, "too-late")
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestPasswordResetServiceCleanupExpired(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	userA := createTestUser(t, db, "cleanup-user-a")
	userB := createTestUser(t, db, "cleanup-user-b")

	current := time.Now()
	svc, err := NewPasswordResetService(db, nil,
		WithResetClock(func() time.Time { return current }),
	)
	require.NoError(t, err)

	_, err = svc.RequestReset(context.Background(), userA.Email)
	require.NoError(t, err)

	usedToken, err := svc.RequestReset(context.Background(), userB.Email)
	require.NoError(t, err)
	require.NoError(t, svc.ResetPassword(context.Background(), usedToken, "rotated"))

	current = current.Add(2 * time.Hour)

	removed, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	var count int64
	require.NoError(t, db.Model(&models.PasswordResetToken{}).Count(&count).Error)
	require.Zero(t, count)
}
