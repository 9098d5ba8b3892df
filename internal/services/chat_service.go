package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
)

// ErrChatNotFound covers both missing chats and chats owned by another user,
// so callers cannot probe for other people's conversations.
var ErrChatNotFound = apperrors.New("CHAT_NOT_FOUND", "Chat not found", http.StatusNotFound)

// UpdateChatInput carries a partial chat edit. Messages, when set, replace
// the stored array wholesale.
type UpdateChatInput struct {
	Title    *string
	Messages []map[string]any
}

// ChatService stores per-user assistant conversations.
type ChatService struct {
	db *gorm.DB
}

// NewChatService constructs a ChatService.
func NewChatService(db *gorm.DB) (*ChatService, error) {
	if db == nil {
		return nil, errors.New("chat service: db is required")
	}
	return &ChatService{db: db}, nil
}

// List returns the user's chats, most recently updated first.
func (s *ChatService) List(ctx context.Context, userID string) ([]models.Chat, error) {
	ctx = ensureContext(ctx)

	var chats []models.Chat
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("updated_at DESC").
		Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("chat service: list chats: %w", err)
	}
	return chats, nil
}

// Create starts a new chat with an empty message list.
func (s *ChatService) Create(ctx context.Context, userID, title string) (*models.Chat, error) {
	ctx = ensureContext(ctx)

	chat := models.Chat{
		UserID:   strings.TrimSpace(userID),
		Title:    defaultIfEmpty(strings.TrimSpace(title), "New Chat"),
		Messages: datatypes.JSON("[]"),
	}
	if err := s.db.WithContext(ctx).Create(&chat).Error; err != nil {
		return nil, fmt.Errorf("chat service: create chat: %w", err)
	}
	return &chat, nil
}

// GetByID returns one of the user's chats.
func (s *ChatService) GetByID(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	ctx = ensureContext(ctx)
	return s.findOwned(ctx, userID, chatID)
}

// Update applies a partial edit to one of the user's chats.
func (s *ChatService) Update(ctx context.Context, userID, chatID string, input UpdateChatInput) (*models.Chat, error) {
	ctx = ensureContext(ctx)

	chat, err := s.findOwned(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = defaultIfEmpty(strings.TrimSpace(*input.Title), "New Chat")
	}
	if input.Messages != nil {
		encoded, err := encodeJSON(input.Messages)
		if err != nil {
			return nil, fmt.Errorf("chat service: encode messages: %w", err)
		}
		updates["messages"] = encoded
	}
	if len(updates) == 0 {
		return chat, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", chat.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("chat service: update chat: %w", err)
	}
	return s.findOwned(ctx, userID, chatID)
}

// Delete removes one of the user's chats.
func (s *ChatService) Delete(ctx context.Context, userID, chatID string) error {
	ctx = ensureContext(ctx)

	chat, err := s.findOwned(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Chat{}, "id = ?", chat.ID).Error; err != nil {
		return fmt.Errorf("chat service: delete chat: %w", err)
	}
	return nil
}

func (s *ChatService) findOwned(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", strings.TrimSpace(chatID), strings.TrimSpace(userID)).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("chat service: find chat: %w", err)
	}
	return &chat, nil
}
