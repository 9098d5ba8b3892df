package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/auditctx"
	"github.com/virtualstage/backlot/internal/database/testutil"
	"github.com/virtualstage/backlot/internal/models"
)

func TestAuditServiceLogRequiresActionAndResult(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	err = svc.Log(context.Background(), AuditEntry{Result: "success"})
	require.Error(t, err)

	err = svc.Log(context.Background(), AuditEntry{Action: "story.parse"})
	require.Error(t, err)

	err = svc.Log(context.Background(), AuditEntry{
		Action:   "story.parse",
		Result:   "success",
		Metadata: map[string]any{"story_id": "s-1"},
	})
	require.NoError(t, err)

	var log models.AuditLog
	require.NoError(t, db.First(&log).Error)
	require.Equal(t, "story.parse", log.Action)
	require.Contains(t, log.Metadata, "story_id")
}

func TestAuditServiceLogBackfillsActorFromContext(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	ctx := auditctx.WithActor(context.Background(), auditctx.Actor{
		UserID:    "actor-1",
		Username:  "gaffer",
		IPAddress: "203.0.113.7",
		UserAgent: "backlot-tests/1.0",
	})

	require.NoError(t, svc.Log(ctx, AuditEntry{
		Action: "story.parse",
		Result: "success",
	}))

	var log models.AuditLog
	require.NoError(t, db.First(&log).Error)
	require.NotNil(t, log.UserID)
	require.Equal(t, "actor-1", *log.UserID)
	require.Equal(t, "gaffer", log.Username)
	require.Equal(t, "203.0.113.7", log.IPAddress)
	require.Equal(t, "backlot-tests/1.0", log.UserAgent)

	// Explicit entry values win over the context actor.
	other := "actor-2"
	require.NoError(t, svc.Log(ctx, AuditEntry{
		UserID:    &other,
		Username:  "bestboy",
		Action:    "story.delete",
		Result:    "success",
		IPAddress: "198.51.100.9",
	}))

	var second models.AuditLog
	require.NoError(t, db.Where("action = ?", "story.delete").First(&second).Error)
	require.Equal(t, "actor-2", *second.UserID)
	require.Equal(t, "bestboy", second.Username)
	require.Equal(t, "198.51.100.9", second.IPAddress)
	require.Equal(t, "backlot-tests/1.0", second.UserAgent)
}

func TestAuditServiceListFilters(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "audit-actor")

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		UserID: &user.ID,
		Action: "story.parse",
		Result: "success",
	}))
	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		UserID: &user.ID,
		Action: "story.delete",
		Result: "success",
	}))
	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		Action: "story.parse",
		Result: "failure",
	}))

	logs, total, err := svc.List(context.Background(), AuditListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, logs, 3)

	logs, total, err = svc.List(context.Background(), AuditListOptions{
		Filters: AuditFilters{Action: "story.parse"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	logs, total, err = svc.List(context.Background(), AuditListOptions{
		Filters: AuditFilters{Action: "story.parse", Result: "failure"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Nil(t, logs[0].UserID)

	logs, total, err = svc.List(context.Background(), AuditListOptions{
		Filters: AuditFilters{UserID: user.ID},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, logs, 2)
}

func TestAuditServiceListPaginates(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Log(context.Background(), AuditEntry{
			Action: "user.create",
			Result: "success",
		}))
	}

	logs, total, err := svc.List(context.Background(), AuditListOptions{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, logs, 2)

	logs, total, err = svc.List(context.Background(), AuditListOptions{Page: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	_, err = svc.CleanupOlderThan(context.Background(), 0)
	require.Error(t, err)

	old := models.AuditLog{
		Action:    "user.create",
		Result:    "success",
		CreatedAt: time.Now().AddDate(0, 0, -120),
	}
	require.NoError(t, db.Create(&old).Error)

	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		Action: "user.create",
		Result: "success",
	}))

	removed, err := svc.CleanupOlderThan(context.Background(), 90)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, total, err := svc.List(context.Background(), AuditListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}
