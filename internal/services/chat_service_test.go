package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/database/testutil"
)

func TestChatServiceCreateDefaults(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "chat-owner")

	svc, err := NewChatService(db)
	require.NoError(t, err)

	chat, err := svc.Create(context.Background(), user.ID, "   ")
	require.NoError(t, err)
	require.Equal(t, user.ID, chat.UserID)
	require.Equal(t, "New Chat", chat.Title)
	require.JSONEq(t, "[]", string(chat.Messages))

	named, err := svc.Create(context.Background(), user.ID, "  Props review  ")
	require.NoError(t, err)
	require.Equal(t, "Props review", named.Title)
}

func TestChatServiceOwnershipScoping(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	owner := createTestUser(t, db, "chat-author")
	intruder := createTestUser(t, db, "chat-intruder")

	svc, err := NewChatService(db)
	require.NoError(t, err)

	chat, err := svc.Create(context.Background(), owner.ID, "Private notes")
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), intruder.ID, chat.ID)
	require.ErrorIs(t, err, ErrChatNotFound)

	_, err = svc.Update(context.Background(), intruder.ID, chat.ID, UpdateChatInput{Title: strPtr("hijacked")})
	require.ErrorIs(t, err, ErrChatNotFound)

	err = svc.Delete(context.Background(), intruder.ID, chat.ID)
	require.ErrorIs(t, err, ErrChatNotFound)

	found, err := svc.GetByID(context.Background(), owner.ID, chat.ID)
	require.NoError(t, err)
	require.Equal(t, "Private notes", found.Title)
}

func TestChatServiceUpdateReplacesMessages(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "chat-editor")

	svc, err := NewChatService(db)
	require.NoError(t, err)

	chat, err := svc.Create(context.Background(), user.ID, "Storyboard chat")
	require.NoError(t, err)

	messages := []map[string]any{
		{"id": "m1", "role": "user", "content": "How many shots does sequence one need?"},
		{"id": "m2", "role": "assistant", "content": "Sequence one breaks down into four shots."},
	}
	updated, err := svc.Update(context.Background(), user.ID, chat.ID, UpdateChatInput{Messages: messages})
	require.NoError(t, err)
	require.Contains(t, string(updated.Messages), "four shots")
	require.Equal(t, "Storyboard chat", updated.Title)

	// A blank title falls back to the default; messages stay put.
	renamed, err := svc.Update(context.Background(), user.ID, chat.ID, UpdateChatInput{Title: strPtr("  ")})
	require.NoError(t, err)
	require.Equal(t, "New Chat", renamed.Title)
	require.Contains(t, string(renamed.Messages), "four shots")

	same, err := svc.Update(context.Background(), user.ID, chat.ID, UpdateChatInput{})
	require.NoError(t, err)
	require.Equal(t, renamed.Title, same.Title)
}

func TestChatServiceListOrdersByActivity(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "chat-lister")
	other := createTestUser(t, db, "chat-other")

	svc, err := NewChatService(db)
	require.NoError(t, err)

	first, err := svc.Create(context.Background(), user.ID, "First chat")
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), user.ID, "Second chat")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), other.ID, "Someone else's chat")
	require.NoError(t, err)

	chats, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	require.Equal(t, second.ID, chats[0].ID)

	// Touching the older chat moves it to the front.
	_, err = svc.Update(context.Background(), user.ID, first.ID, UpdateChatInput{Title: strPtr("First chat, revised")})
	require.NoError(t, err)

	chats, err = svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, chats[0].ID)
}

func TestChatServiceDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := createTestUser(t, db, "chat-remover")

	svc, err := NewChatService(db)
	require.NoError(t, err)

	chat, err := svc.Create(context.Background(), user.ID, "Disposable")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), user.ID, chat.ID))

	_, err = svc.GetByID(context.Background(), user.ID, chat.ID)
	require.ErrorIs(t, err, ErrChatNotFound)

	err = svc.Delete(context.Background(), user.ID, chat.ID)
	require.ErrorIs(t, err, ErrChatNotFound)
}
