package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type Cache struct {
	client *redis.Client
}

// compile-time check: *Cache must satisfy port.Cache
var _ port.Cache = (*Cache)(nil)

func NewCache(addr, password string) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	return &Cache{client: rdb}
}

func (c *Cache) GetFileDetails(ctx context.Context, id uuid.UUID) ([]byte, error) {
	log.Printf("getting entry in cache for file #%s...", id)

	val, err := c.client.Get(ctx, getCacheKey(id.String(), false)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (c *Cache) GetEtagFileDetails(ctx context.Context, id uuid.UUID) (string, error) {
	val, err := c.client.Get(ctx, getCacheKey(id.String(), true)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (c *Cache) SetFileDetails(ctx context.Context, id uuid.UUID, data []byte, validUntil time.Time) {
	log.Printf("creating entry in cache for file #%s, valid until %s...", id, validUntil.Format(time.RFC1123))

	if err := c.client.Set(ctx, getCacheKey(id.String(), false), data, time.Until(validUntil)).Err(); err != nil {
		log.Printf("redis set failed for file #%s: %v", id, err)
	}
}

func (c *Cache) SetEtagFileDetails(ctx context.Context, id uuid.UUID, etag string, validUntil time.Time) {
	if err := c.client.Set(ctx, getCacheKey(id.String(), true), etag, time.Until(validUntil)).Err(); err != nil {
		log.Printf("redis set failed for etag of file #%s: %v", id, err)
	}
}

func (c *Cache) DeleteFileDetails(ctx context.Context, id uuid.UUID) error {
	log.Printf("deleting entry in cache for file #%s...", id)

	if err := c.client.Del(ctx, getCacheKey(id.String(), false)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (c *Cache) DeleteEtagFileDetails(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, getCacheKey(id.String(), true)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (c *Cache) GetDownloadURL(ctx context.Context, id uuid.UUID, download bool) (string, error) {
	val, err := c.client.Get(ctx, downloadURLKey(id.String(), download)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (c *Cache) SetDownloadURL(ctx context.Context, id uuid.UUID, download bool, url string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, downloadURLKey(id.String(), download), url, ttl).Err(); err != nil {
		log.Printf("redis set failed for download url of file #%s: %v", id, err)
	}
}

func (c *Cache) DeleteDownloadURLs(ctx context.Context, id uuid.UUID) error {
	log.Printf("deleting cached download urls for file #%s...", id)

	keys := []string{downloadURLKey(id.String(), true), downloadURLKey(id.String(), false)}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func getCacheKey(id string, etag bool) string {
	if etag {
		return "file:etag:" + id
	}
	return "file:" + id
}

func downloadURLKey(id string, download bool) string {
	if download {
		return "download_url_DOWNLOAD_" + id
	}
	return "download_url_INLINE_" + id
}
