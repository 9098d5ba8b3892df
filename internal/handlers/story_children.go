package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/services"
	"github.com/virtualstage/backlot/pkg/response"
)

type updateCharacterRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Role        *string `json:"role" validate:"omitempty,max=100"`
	Appearances *int    `json:"appearances" validate:"omitempty,min=0"`
}

type updateLocationRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Description  *string `json:"description"`
	LocationType *string `json:"location_type" validate:"omitempty,max=100"`
	Scenes       *int    `json:"scenes" validate:"omitempty,min=0"`
}

type updateStoryAssetRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	AssetType   *string `json:"asset_type" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Complexity  *string `json:"complexity" validate:"omitempty,oneof=low medium high"`
}

type updateSequenceRequest struct {
	Title         *string `json:"title" validate:"omitempty,max=255"`
	Description   *string `json:"description"`
	EstimatedTime *string `json:"estimated_time" validate:"omitempty,max=100"`
	LocationID    *string `json:"location_id"`
}

// GET /api/ai-machines/stories/:storyID/characters/:characterID
func (h *StoryHandler) GetCharacter(c *gin.Context) {
	character, err := h.stories.GetCharacter(requestContext(c), c.Param("storyID"), c.Param("characterID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, character)
}

// PUT /api/ai-machines/stories/:storyID/characters/:characterID/update
func (h *StoryHandler) UpdateCharacter(c *gin.Context) {
	var req updateCharacterRequest
	if !bindAndValidate(c, &req) {
		return
	}

	character, err := h.stories.UpdateCharacter(requestContext(c), c.Param("storyID"), c.Param("characterID"), services.UpdateCharacterInput{
		Name:        req.Name,
		Description: req.Description,
		Role:        req.Role,
		Appearances: req.Appearances,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, character)
}

// GET /api/ai-machines/stories/:storyID/locations/:locationID
func (h *StoryHandler) GetLocation(c *gin.Context) {
	location, err := h.stories.GetLocation(requestContext(c), c.Param("storyID"), c.Param("locationID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, location)
}

// PUT /api/ai-machines/stories/:storyID/locations/:locationID/update
func (h *StoryHandler) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	location, err := h.stories.UpdateLocation(requestContext(c), c.Param("storyID"), c.Param("locationID"), services.UpdateLocationInput{
		Name:         req.Name,
		Description:  req.Description,
		LocationType: req.LocationType,
		Scenes:       req.Scenes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, location)
}

// GET /api/ai-machines/stories/:storyID/assets/:assetID
func (h *StoryHandler) GetStoryAsset(c *gin.Context) {
	asset, err := h.stories.GetStoryAsset(requestContext(c), c.Param("storyID"), c.Param("assetID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, asset)
}

// PUT /api/ai-machines/stories/:storyID/assets/:assetID/update
func (h *StoryHandler) UpdateStoryAsset(c *gin.Context) {
	var req updateStoryAssetRequest
	if !bindAndValidate(c, &req) {
		return
	}

	asset, err := h.stories.UpdateStoryAsset(requestContext(c), c.Param("storyID"), c.Param("assetID"), services.UpdateStoryAssetInput{
		Name:        req.Name,
		AssetType:   req.AssetType,
		Description: req.Description,
		Complexity:  req.Complexity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, asset)
}

// GET /api/ai-machines/stories/:storyID/sequences/:sequenceID
func (h *StoryHandler) GetSequence(c *gin.Context) {
	sequence, err := h.stories.GetSequence(requestContext(c), c.Param("storyID"), c.Param("sequenceID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, sequence)
}

// PUT /api/ai-machines/stories/:storyID/sequences/:sequenceID/update
func (h *StoryHandler) UpdateSequence(c *gin.Context) {
	var req updateSequenceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	sequence, err := h.stories.UpdateSequence(requestContext(c), c.Param("storyID"), c.Param("sequenceID"), services.UpdateSequenceInput{
		Title:         req.Title,
		Description:   req.Description,
		EstimatedTime: req.EstimatedTime,
		LocationID:    req.LocationID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, sequence)
}
