package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the object storage operations used for profile images.
// Clients upload and download directly against the presigned URLs, so the
// API never proxies image bytes.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a URL accepting a single PUT with the
	// given content type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error
}
