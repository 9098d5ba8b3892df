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

// StoryHandler turns raw screenplay text into structured stories and serves
// the parsed results.
type StoryHandler struct {
	stories *services.StoryService
	costs   *services.CostService
}

func NewStoryHandler(db *gorm.DB, parser services.StoryParser) (*StoryHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	stories, err := services.NewStoryService(db, parser, audit)
	if err != nil {
		return nil, err
	}
	costs, err := services.NewCostService(db)
	if err != nil {
		return nil, err
	}
	return &StoryHandler{stories: stories, costs: costs}, nil
}

type parseStoryRequest struct {
	StoryText string `json:"story_text" validate:"required"`
}

// POST /api/ai-machines/parse-story
func (h *StoryHandler) ParseStory(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req parseStoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	story, err := h.stories.ParseStory(requestContext(c), userID, req.StoryText)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"story_id":    story.ID,
		"parsed_data": story.ParsedData,
		"message":     "Story parsed successfully",
	})
}

// GET /api/ai-machines/stories
func (h *StoryHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	stories, err := h.stories.List(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stories": stories})
}

// GET /api/ai-machines/stories/:storyID
func (h *StoryHandler) Get(c *gin.Context) {
	story, err := h.stories.GetByID(requestContext(c), c.Param("storyID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, story)
}

// DELETE /api/ai-machines/stories/:storyID
func (h *StoryHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.stories.Delete(requestContext(c), c.Param("storyID"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Story deleted successfully"})
}

// POST /api/ai-machines/stories/:storyID/regenerate
func (h *StoryHandler) Regenerate(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	story, err := h.stories.Regenerate(requestContext(c), c.Param("storyID"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "Story regenerated successfully",
		"story":   story,
	})
}

// GET /api/ai-machines/stories/:storyID/cost-breakdown
func (h *StoryHandler) CostBreakdown(c *gin.Context) {
	breakdown, err := h.costs.StoryBreakdown(requestContext(c), c.Param("storyID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, breakdown)
}
