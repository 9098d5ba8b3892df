package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxImageSize is the maximum allowed size for reference image uploads (10MB).
	MaxImageSize = 10 * 1024 * 1024
	// FolderStories is the bucket prefix for story-scoped media.
	FolderStories = "stories"
)

// Allowed reference image MIME types and extensions.
var (
	AllowedImageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	}
	AllowedImageExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "image/gif",
	}
)

// S3Config holds media bucket configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	Bucket               string
	PresignExpireMinutes int
	PublicRead           bool
}

// MediaStore provides S3 operations for story reference images.
type MediaStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewMediaStore creates an S3-backed media store. Credentials come from the
// config or fall back to the standard AWS environment chain.
func NewMediaStore(ctx context.Context, cfg S3Config, logger *zap.Logger) (*MediaStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
	} else if logger != nil {
		logger.Warn("media store using default AWS credential chain")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})

	if logger != nil {
		logger.Info("media store ready",
			zap.String("region", cfg.Region),
			zap.String("bucket", cfg.Bucket),
		)
	}

	return &MediaStore{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ValidateImageType returns true if the content type and/or extension are
// allowed for reference images.
func ValidateImageType(contentType, filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	if contentType != "" {
		if _, ok := AllowedImageTypes[strings.ToLower(contentType)]; ok {
			return true
		}
	}
	if ext != "" {
		if _, ok := AllowedImageExtensions[ext]; ok {
			return true
		}
	}
	return false
}

// ContentTypeForFilename returns the MIME type for an image filename extension.
func ContentTypeForFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ct, ok := AllowedImageExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// MediaKey returns the object key for an uploaded reference image:
// stories/{story}/{entity}/{entityID}/{uuid}{ext}. The random component keeps
// repeated uploads of the same filename from clobbering each other.
func MediaKey(storyID, entity, entityID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := AllowedImageExtensions[ext]; !ok {
		ext = ""
	}
	return path.Join(FolderStories, storyID, entity, entityID, uuid.NewString()+ext)
}

// Upload streams a reader into the media bucket and returns the public URL.
func (s *MediaStore) Upload(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) (string, error) {
	var contentLengthPtr *int64
	if contentLength > 0 {
		contentLengthPtr = &contentLength
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: contentLengthPtr,
	}
	if s.cfg.PublicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("storage: upload: %w", err)
	}
	return s.PublicURL(key), nil
}

// Delete removes an object from the media bucket.
func (s *MediaStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete object: %w", err)
	}
	return nil
}

// PresignDownload returns a pre-signed GET URL for a private object.
func (s *MediaStore) PresignDownload(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.PresignExpire()
	})
	if err != nil {
		return "", fmt.Errorf("storage: presign get: %w", err)
	}
	return req.URL, nil
}

// PresignExpire returns the configured presign duration.
func (s *MediaStore) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// PublicURL returns the public URL for an object. Use when the bucket serves
// objects directly.
func (s *MediaStore) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
