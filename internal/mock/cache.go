package mock

import (
	"context"
	"sync"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// Cache implements port.Cache for tests.
type Cache struct {
	mu sync.Mutex

	// stored values
	FileOut []byte
	URLs    map[string]string

	// etag values
	EtagFile string

	// captured inputs
	URLTTL time.Duration

	// errors
	GetFileErr     error
	GetEtagFileErr error
	DelFileErr     error
	DelEtagFileErr error
	GetURLErr      error

	// call flags
	GetFileCalled     bool
	GetEtagFileCalled bool
	SetFileCalled     bool
	SetEtagFileCalled bool
	DelFileCalled     bool
	DelEtagFileCalled bool
	SetURLCalled      bool
	DelURLsCalled     bool
}

var _ port.Cache = (*Cache)(nil)

func urlKey(id uuid.UUID, download bool) string {
	if download {
		return "DOWNLOAD_" + id.String()
	}
	return "INLINE_" + id.String()
}

func (c *Cache) GetFileDetails(ctx context.Context, id uuid.UUID) ([]byte, error) {
	c.GetFileCalled = true
	if c.GetFileErr != nil {
		return nil, c.GetFileErr
	}
	return c.FileOut, nil
}

func (c *Cache) GetEtagFileDetails(ctx context.Context, id uuid.UUID) (string, error) {
	c.GetEtagFileCalled = true
	if c.GetEtagFileErr != nil {
		return "", c.GetEtagFileErr
	}
	return c.EtagFile, nil
}

func (c *Cache) SetFileDetails(ctx context.Context, id uuid.UUID, data []byte, validUntil time.Time) {
	c.SetFileCalled = true
	c.FileOut = data
}

func (c *Cache) SetEtagFileDetails(ctx context.Context, id uuid.UUID, etag string, validUntil time.Time) {
	c.SetEtagFileCalled = true
	c.EtagFile = etag
}

func (c *Cache) DeleteFileDetails(ctx context.Context, id uuid.UUID) error {
	c.DelFileCalled = true
	return c.DelFileErr
}

func (c *Cache) DeleteEtagFileDetails(ctx context.Context, id uuid.UUID) error {
	c.DelEtagFileCalled = true
	return c.DelEtagFileErr
}

func (c *Cache) GetDownloadURL(ctx context.Context, id uuid.UUID, download bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetURLErr != nil {
		return "", c.GetURLErr
	}
	return c.URLs[urlKey(id, download)], nil
}

func (c *Cache) SetDownloadURL(ctx context.Context, id uuid.UUID, download bool, url string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetURLCalled = true
	c.URLTTL = ttl
	if c.URLs == nil {
		c.URLs = map[string]string{}
	}
	c.URLs[urlKey(id, download)] = url
}

func (c *Cache) DeleteDownloadURLs(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DelURLsCalled = true
	delete(c.URLs, urlKey(id, true))
	delete(c.URLs, urlKey(id, false))
	return nil
}
