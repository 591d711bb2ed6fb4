package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ReportStorage defines the interface for the session-report archive.
type ReportStorage interface {
	// PutObject writes an archived report (JSON snapshot of a finished
	// group session) under the given key.
	PutObject(ctx context.Context, objectKey string, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for an archived report directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an archived report.
	DeleteObject(ctx context.Context, objectKey string) error
}
