package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/services"
	"github.com/virtualstage/backlot/internal/storage"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/response"
)

// MediaHandler serves reference-image uploads for characters, locations and
// assets. Files arrive as a multipart "images" field with an optional
// "description".
type MediaHandler struct {
	media *services.MediaService
}

func NewMediaHandler(db *gorm.DB, store *storage.MediaStore) (*MediaHandler, error) {
	media, err := services.NewMediaService(db, store)
	if err != nil {
		return nil, err
	}
	return &MediaHandler{media: media}, nil
}

// collectImages opens every uploaded "images" part. The returned closer must
// run after the service has drained the readers.
func collectImages(c *gin.Context) ([]services.UploadImageInput, func(), bool) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, apperrors.NewBadRequest("No images provided"))
		return nil, nil, false
	}

	files := form.File["images"]
	inputs := make([]services.UploadImageInput, 0, len(files))
	opened := make([]multipart.File, 0, len(files))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			closeAll()
			response.Error(c, apperrors.NewBadRequest("could not read uploaded file: "+header.Filename))
			return nil, nil, false
		}
		opened = append(opened, file)
		inputs = append(inputs, services.UploadImageInput{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		})
	}
	return inputs, closeAll, true
}

// POST /api/ai-machines/stories/:storyID/characters/:characterID/upload-images
func (h *MediaHandler) UploadCharacterImages(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	inputs, closeAll, ok := collectImages(c)
	if !ok {
		return
	}
	defer closeAll()

	images, err := h.media.UploadCharacterImages(requestContext(c), c.Param("storyID"), c.Param("characterID"), inputs, c.PostForm("description"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"images": images})
}

// DELETE /api/ai-machines/stories/:storyID/characters/:characterID/images/:imageID
func (h *MediaHandler) DeleteCharacterImage(c *gin.Context) {
	err := h.media.DeleteCharacterImage(requestContext(c), c.Param("storyID"), c.Param("characterID"), c.Param("imageID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Image deleted successfully"})
}

// POST /api/ai-machines/stories/:storyID/locations/:locationID/upload-images
func (h *MediaHandler) UploadLocationImages(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	inputs, closeAll, ok := collectImages(c)
	if !ok {
		return
	}
	defer closeAll()

	images, err := h.media.UploadLocationImages(requestContext(c), c.Param("storyID"), c.Param("locationID"), inputs, c.PostForm("description"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"images": images})
}

// DELETE /api/ai-machines/stories/:storyID/locations/:locationID/images/:imageID
func (h *MediaHandler) DeleteLocationImage(c *gin.Context) {
	err := h.media.DeleteLocationImage(requestContext(c), c.Param("storyID"), c.Param("locationID"), c.Param("imageID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Image deleted successfully"})
}

// POST /api/ai-machines/stories/:storyID/assets/:assetID/upload-images
func (h *MediaHandler) UploadAssetImages(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	inputs, closeAll, ok := collectImages(c)
	if !ok {
		return
	}
	defer closeAll()

	images, err := h.media.UploadAssetImages(requestContext(c), c.Param("storyID"), c.Param("assetID"), inputs, c.PostForm("description"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"images": images})
}

// DELETE /api/ai-machines/stories/:storyID/assets/:assetID/images/:imageID
func (h *MediaHandler) DeleteAssetImage(c *gin.Context) {
	err := h.media.DeleteAssetImage(requestContext(c), c.Param("storyID"), c.Param("assetID"), c.Param("imageID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
