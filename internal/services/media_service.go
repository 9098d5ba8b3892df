package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/internal/storage"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/metrics"
)

var (
	// ErrMediaNotConfigured is returned from upload paths when no bucket is
	// configured.
	ErrMediaNotConfigured = apperrors.New("MEDIA_NOT_CONFIGURED", "media storage not configured", http.StatusServiceUnavailable)
	// ErrImageNotFound is returned for missing reference images.
	ErrImageNotFound = apperrors.New("IMAGE_NOT_FOUND", "Image not found", http.StatusNotFound)
)

// UploadImageInput is one file in an upload batch.
type UploadImageInput struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// MediaService stores reference images for characters, locations and assets.
// The store may be nil when no bucket is configured; uploads then fail with
// a configuration error while deletes still remove the database rows.
type MediaService struct {
	db    *gorm.DB
	store *storage.MediaStore
}

// NewMediaService constructs a MediaService.
func NewMediaService(db *gorm.DB, store *storage.MediaStore) (*MediaService, error) {
	if db == nil {
		return nil, errors.New("media service: db is required")
	}
	return &MediaService{db: db, store: store}, nil
}

// UploadCharacterImages stores a batch of reference images for a character.
func (s *MediaService) UploadCharacterImages(ctx context.Context, storyID, characterID string, files []UploadImageInput, description, uploadedByID string) ([]models.CharacterImage, error) {
	ctx = ensureContext(ctx)

	if err := s.requireChild(ctx, &models.Character{}, storyID, characterID, ErrCharacterNotFound); err != nil {
		return nil, err
	}
	if err := s.validateBatch(files); err != nil {
		return nil, err
	}

	images := make([]models.CharacterImage, 0, len(files))
	for _, file := range files {
		key, url, err := s.putObject(ctx, storyID, "characters", characterID, file)
		if err != nil {
			return nil, err
		}
		image := models.CharacterImage{
			CharacterID:  strings.TrimSpace(characterID),
			ObjectKey:    key,
			URL:          url,
			ImageType:    "uploaded",
			Description:  description,
			UploadedByID: trimPtr(&uploadedByID),
		}
		if err := s.db.WithContext(ctx).Create(&image).Error; err != nil {
			s.discardObject(ctx, key)
			return nil, fmt.Errorf("media service: create character image: %w", err)
		}
		metrics.MediaUploads.WithLabelValues("character", "success").Inc()
		images = append(images, image)
	}
	return images, nil
}

// DeleteCharacterImage removes one character image row and its stored object.
func (s *MediaService) DeleteCharacterImage(ctx context.Context, storyID, characterID, imageID string) error {
	ctx = ensureContext(ctx)

	if err := s.requireChild(ctx, &models.Character{}, storyID, characterID, ErrCharacterNotFound); err != nil {
		return err
	}

	var image models.CharacterImage
	err := s.db.WithContext(ctx).
		Where("id = ? AND character_id = ?", strings.TrimSpace(imageID), strings.TrimSpace(characterID)).
		First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrImageNotFound
	}
	if err != nil {
		return fmt.Errorf("media service: find character image: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.CharacterImage{}, "id = ?", image.ID).Error; err != nil {
		return fmt.Errorf("media service: delete character image: %w", err)
	}
	s.discardObject(ctx, image.ObjectKey)
	return nil
}

// UploadLocationImages stores a batch of reference images for a location.
func (s *MediaService) UploadLocationImages(ctx context.Context, storyID, locationID string, files []UploadImageInput, description, uploadedByID string) ([]models.LocationImage, error) {
	ctx = ensureContext(ctx)

	if err := s.requireChild(ctx, &models.Location{}, storyID, locationID, ErrLocationNotFound); err != nil {
		return nil, err
	}
	if err := s.validateBatch(files); err != nil {
		return nil, err
	}

	images := make([]models.LocationImage, 0, len(files))
	for _, file := range files {
		key, url, err := s.putObject(ctx, storyID, "locations", locationID, file)
		if err != nil {
			return nil, err
		}
		image := models.LocationImage{
			LocationID:   strings.TrimSpace(locationID),
			ObjectKey:    key,
			URL:          url,
			ImageType:    "uploaded",
			Description:  description,
			UploadedByID: trimPtr(&uploadedByID),
		}
		if err := s.db.WithContext(ctx).Create(&image).Error; err != nil {
			s.discardObject(ctx, key)
			return nil, fmt.Errorf("media service: create location image: %w", err)
		}
		metrics.MediaUploads.WithLabelValues("location", "success").Inc()
		images = append(images, image)
	}
	return images, nil
}

// DeleteLocationImage removes one location image row and its stored object.
func (s *MediaService) DeleteLocationImage(ctx context.Context, storyID, locationID, imageID string) error {
	ctx = ensureContext(ctx)

	if err := s.requireChild(ctx, &models.Location{}, storyID, locationID, ErrLocationNotFound); err != nil {
		return err
	}

	var image models.LocationImage
	err := s.db.WithContext(ctx).
		Where("id = ? AND location_id = ?", strings.TrimSpace(imageID), strings.TrimSpace(locationID)).
		First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrImageNotFound
	}
	if err != nil {
		return fmt.Errorf("media service: find location image: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.LocationImage{}, "id = ?", image.ID).Error; err != nil {
		return fmt.Errorf("media service: delete location image: %w", err)
	}
	s.discardObject(ctx, image.ObjectKey)
	return nil
}

// UploadAssetImages stores a batch of reference images for an asset.
func (s *MediaService) UploadAssetImages(ctx context.Context, storyID, assetID string, files []UploadImageInput, description, uploadedByID string) ([]models.AssetImage, error) {
	ctx = ensureContext(ctx)

	if err := s.requireChild(ctx, &models.StoryAsset{}, storyID, assetID, ErrStoryAssetNotFound); err != nil {
		return nil, err
	}
	if err := s.validateBatch(files); err != nil {
		return nil, err
	}

	images := make([]models.AssetImage, 0, len(files))
	for _, file := range files {
		key, url, err := s.putObject(ctx, storyID, "assets", assetID, file)
		if err != nil {
			return nil, err
		}
		image := models.AssetImage{
			AssetID:      strings.TrimSpace(assetID),
			ObjectKey:    key,
			URL:          url,
			ImageType:    "uploaded",
			Description:  description,
			UploadedByID: trimPtr(&uploadedByID),
		}
		if err := s.db.WithContext(ctx).Create(&image).Error; err != nil {
			s.discardObject(ctx, key)
			return nil, fmt.Errorf("media service: create asset image: %w", err)
		}
		metrics.MediaUploads.WithLabelValues("asset", "success").Inc()
		images = append(images, image)
	}
	return images, nil
}

// DeleteAssetImage removes one asset image row and its stored object.
func (s *MediaService) DeleteAssetImage(ctx context.Context, storyID, assetID, imageID string) error {
	ctx = ensureContext(ctx)

	if err := s.requireChild(ctx, &models.StoryAsset{}, storyID, assetID, ErrStoryAssetNotFound); err != nil {
		return err
	}

	var image models.AssetImage
	err := s.db.WithContext(ctx).
		Where("id = ? AND asset_id = ?", strings.TrimSpace(imageID), strings.TrimSpace(assetID)).
		First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrImageNotFound
	}
	if err != nil {
		return fmt.Errorf("media service: find asset image: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.AssetImage{}, "id = ?", image.ID).Error; err != nil {
		return fmt.Errorf("media service: delete asset image: %w", err)
	}
	s.discardObject(ctx, image.ObjectKey)
	return nil
}

// validateBatch rejects empty, oversized or non-image uploads before
// anything touches the bucket.
func (s *MediaService) validateBatch(files []UploadImageInput) error {
	if s.store == nil {
		return ErrMediaNotConfigured
	}
	if len(files) == 0 {
		return apperrors.NewBadRequest("No images provided")
	}
	for _, file := range files {
		if !storage.ValidateImageType(file.ContentType, file.Filename) {
			return apperrors.NewBadRequest(fmt.Sprintf("unsupported image type: %s", file.Filename))
		}
		if file.Size > storage.MaxImageSize {
			return apperrors.NewBadRequest(fmt.Sprintf("image too large: %s", file.Filename))
		}
	}
	return nil
}

func (s *MediaService) putObject(ctx context.Context, storyID, entity, entityID string, file UploadImageInput) (string, string, error) {
	contentType := file.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(file.Filename)
	}
	key := storage.MediaKey(strings.TrimSpace(storyID), entity, strings.TrimSpace(entityID), file.Filename)
	url, err := s.store.Upload(ctx, key, contentType, file.Reader, file.Size)
	if err != nil {
		metrics.MediaUploads.WithLabelValues(strings.TrimSuffix(entity, "s"), "failure").Inc()
		return "", "", apperrors.ErrUpstreamUnavailable.WithInternal(fmt.Errorf("media service: upload %s: %w", file.Filename, err))
	}
	return key, url, nil
}

func (s *MediaService) discardObject(ctx context.Context, key string) {
	if s.store == nil || key == "" {
		return
	}
	_ = s.store.Delete(ctx, key)
}

func (s *MediaService) requireChild(ctx context.Context, model any, storyID, childID string, notFound error) error {
	var storyCount int64
	if err := s.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ?", strings.TrimSpace(storyID)).
		Count(&storyCount).Error; err != nil {
		return fmt.Errorf("media service: find story: %w", err)
	}
	if storyCount == 0 {
		return ErrStoryNotFound
	}

	var childCount int64
	if err := s.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND story_id = ?", strings.TrimSpace(childID), strings.TrimSpace(storyID)).
		Count(&childCount).Error; err != nil {
		return fmt.Errorf("media service: find child: %w", err)
	}
	if childCount == 0 {
		return notFound
	}
	return nil
}
