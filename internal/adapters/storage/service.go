// Package storage provides an S3-compatible object store for report images.
// Citizens upload photos through presigned URLs so image bytes never pass
// through the API process.
package storage

import (
	"context"
	"time"
)

// PresignedURL carries a time-limited URL together with the object key it
// resolves to.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore defines the storage operations the platform needs.
type ObjectStore interface {
	// GenerateUploadURL creates a presigned PUT URL. The folder parameter is
	// the key prefix (e.g. the report id). The returned FileKey is what gets
	// persisted on the report.
	GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error)

	// GenerateDownloadURL creates a presigned GET URL for a stored key.
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*PresignedURL, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, bucket, fileKey string) error

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// ValidateContentType checks if the content type is an accepted image type.
	ValidateContentType(contentType string) error

	// ValidateFileSize checks if the file size is within limits.
	ValidateFileSize(sizeBytes int64) error
}

// Config defines the configuration surface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOPresignTTL() time.Duration
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}
