package cache

import (
	"context"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type NoopCache struct{}

// compile-time check: *NoopCache must satisfy port.Cache
var _ port.Cache = (*NoopCache)(nil)

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) GetFileDetails(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return nil, nil // always cache miss
}

func (n *NoopCache) GetEtagFileDetails(ctx context.Context, id uuid.UUID) (string, error) {
	return "", nil
}

func (n *NoopCache) SetFileDetails(ctx context.Context, id uuid.UUID, data []byte, validUntil time.Time) {
}

func (n *NoopCache) SetEtagFileDetails(ctx context.Context, id uuid.UUID, etag string, validUntil time.Time) {
}

func (n *NoopCache) DeleteFileDetails(ctx context.Context, id uuid.UUID) error { return nil }

func (n *NoopCache) DeleteEtagFileDetails(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (n *NoopCache) GetDownloadURL(ctx context.Context, id uuid.UUID, download bool) (string, error) {
	return "", nil
}

func (n *NoopCache) SetDownloadURL(ctx context.Context, id uuid.UUID, download bool, url string, ttl time.Duration) {
}

func (n *NoopCache) DeleteDownloadURLs(ctx context.Context, id uuid.UUID) error { return nil }
