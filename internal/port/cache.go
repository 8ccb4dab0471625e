package port

import (
	"context"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// Cache provides caching for file details and download links.
type Cache interface {
	GetFileDetails(ctx context.Context, id uuid.UUID) ([]byte, error)
	GetEtagFileDetails(ctx context.Context, id uuid.UUID) (string, error)
	SetFileDetails(ctx context.Context, id uuid.UUID, data []byte, validUntil time.Time)
	SetEtagFileDetails(ctx context.Context, id uuid.UUID, etag string, validUntil time.Time)
	DeleteFileDetails(ctx context.Context, id uuid.UUID) error
	DeleteEtagFileDetails(ctx context.Context, id uuid.UUID) error

	GetDownloadURL(ctx context.Context, id uuid.UUID, download bool) (string, error)
	SetDownloadURL(ctx context.Context, id uuid.UUID, download bool, url string, ttl time.Duration)
	DeleteDownloadURLs(ctx context.Context, id uuid.UUID) error
}
