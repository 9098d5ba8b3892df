package app

import (
	"strings"

	"github.com/virtualstage/backlot/internal/storage"
)

// BucketConfig converts StorageConfig into the media store representation.
func (c StorageConfig) BucketConfig() storage.S3Config {
	return storage.S3Config{
		Region:               strings.TrimSpace(c.S3.Region),
		AccessKeyID:          strings.TrimSpace(c.S3.AccessKeyID),
		SecretAccessKey:      c.S3.SecretAccessKey,
		Bucket:               strings.TrimSpace(c.S3.Bucket),
		PresignExpireMinutes: c.S3.PresignExpireMinutes,
		PublicRead:           c.S3.PublicRead,
	}
}
