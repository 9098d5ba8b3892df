package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/services"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/response"
)

// ChatHandler stores per-user assistant conversations. The server never talks
// to the model here; clients persist the transcript they accumulated.
type ChatHandler struct {
	chats *services.ChatService
}

func NewChatHandler(db *gorm.DB) (*ChatHandler, error) {
	chats, err := services.NewChatService(db)
	if err != nil {
		return nil, err
	}
	return &ChatHandler{chats: chats}, nil
}

type createChatRequest struct {
	Title string `json:"title" validate:"omitempty,max=255"`
}

type updateChatRequest struct {
	Title    *string          `json:"title" validate:"omitempty,max=255"`
	Messages []map[string]any `json:"messages"`
}

// GET /api/ai-machines/chats
func (h *ChatHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	chats, err := h.chats.List(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, chats)
}

// POST /api/ai-machines/chats/create
func (h *ChatHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req createChatRequest
	if !bindAndValidate(c, &req) {
		return
	}

	chat, err := h.chats.Create(requestContext(c), userID, req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, chat)
}

// GET /api/ai-machines/chats/:chatID
func (h *ChatHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	chat, err := h.chats.GetByID(requestContext(c), userID, c.Param("chatID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, chat)
}

// PUT|PATCH /api/ai-machines/chats/:chatID/update
func (h *ChatHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req updateChatRequest
	if !bindAndValidate(c, &req) {
		return
	}

	chat, err := h.chats.Update(requestContext(c), userID, c.Param("chatID"), services.UpdateChatInput{
		Title:    req.Title,
		Messages: req.Messages,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, chat)
}

// DELETE /api/ai-machines/chats/:chatID/delete
func (h *ChatHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.chats.Delete(requestContext(c), userID, c.Param("chatID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Chat deleted successfully"})
}
