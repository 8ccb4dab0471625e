package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// downloadURLMargin keeps cached links from being served right before they expire.
const downloadURLMargin = time.Minute

type downloadLinkSrv struct {
	files    port.FileRepository
	storages port.StorageRepository
	media    port.MediaRepository
	drivers  port.DriverFactory
	cache    port.Cache
	expiry   time.Duration
	now      func() time.Time
}

// compile-time check: *downloadLinkSrv must satisfy port.DownloadLinkGenerator
var _ port.DownloadLinkGenerator = (*downloadLinkSrv)(nil)

func NewDownloadLinkGenerator(
	files port.FileRepository,
	storages port.StorageRepository,
	media port.MediaRepository,
	drivers port.DriverFactory,
	cache port.Cache,
	expiry time.Duration,
) port.DownloadLinkGenerator {
	return &downloadLinkSrv{
		files:    files,
		storages: storages,
		media:    media,
		drivers:  drivers,
		cache:    cache,
		expiry:   expiry,
		now:      time.Now,
	}
}

// GenerateDownloadLink returns a time-limited link to the file. When a size is
// requested, the link points to the smallest derived asset covering it, or to
// the largest one when none does.
func (s *downloadLinkSrv) GenerateDownloadLink(ctx context.Context, in port.DownloadLinkInput) (port.DownloadLinkOutput, error) {
	file, err := s.files.GetByID(ctx, in.FileID)
	if err != nil {
		return port.DownloadLinkOutput{}, err
	}
	if !isServable(file) {
		return port.DownloadLinkOutput{}, fmt.Errorf("%w: file #%s", ErrFileUnavailable, file.ID)
	}

	target := file
	if (in.Width > 0 || in.Height > 0) && file.GenericType == model.GenericTypeImage {
		if target, err = s.bestAsset(ctx, file, in.Width, in.Height); err != nil {
			return port.DownloadLinkOutput{}, err
		}
	}

	if url, expiresAt, ok := s.cached(ctx, target.ID, in.Download); ok {
		return port.DownloadLinkOutput{URL: url, FileID: target.ID, ExpiresAt: expiresAt}, nil
	}

	storage, err := s.storages.GetByID(ctx, target.StorageID)
	if err != nil {
		return port.DownloadLinkOutput{}, fmt.Errorf("failed to load storage #%s: %w", target.StorageID, err)
	}
	driver, err := s.drivers.ForStorage(ctx, storage)
	if err != nil {
		return port.DownloadLinkOutput{}, fmt.Errorf("failed to resolve driver of storage #%s: %w", storage.ID, err)
	}

	expiresAt := s.now().Add(s.expiry)
	url, err := driver.DownloadURL(ctx, target, s.expiry, in.Download)
	if err != nil {
		return port.DownloadLinkOutput{}, fmt.Errorf("failed to generate download url of file #%s: %w", target.ID, err)
	}
	s.cache.SetDownloadURL(ctx, target.ID, in.Download, encodeCachedURL(url, expiresAt), s.expiry-downloadURLMargin)

	return port.DownloadLinkOutput{URL: url, FileID: target.ID, ExpiresAt: expiresAt}, nil
}

func (s *downloadLinkSrv) cached(ctx context.Context, id uuid.UUID, download bool) (string, time.Time, bool) {
	raw, err := s.cache.GetDownloadURL(ctx, id, download)
	if err != nil {
		logger.Warnf(ctx, "⚠️ failed to read cached download url of file #%s: %v", id, err)
		return "", time.Time{}, false
	}
	if raw == "" {
		return "", time.Time{}, false
	}
	return decodeCachedURL(raw)
}

type assetCandidate struct {
	fileID        uuid.UUID
	width, height int
}

func (c assetCandidate) area() int { return c.width * c.height }

// bestAsset picks among the original, its renditions and its thumbnails.
// A zero width or height leaves that dimension unconstrained.
func (s *downloadLinkSrv) bestAsset(ctx context.Context, file *model.StoredFile, width, height int) (*model.StoredFile, error) {
	mo, err := loadMedia(ctx, s.media, file.ID)
	if err != nil {
		return nil, err
	}
	if mo == nil || mo.Image == nil {
		return file, nil
	}

	candidates := []assetCandidate{{fileID: file.ID, width: mo.Image.Width, height: mo.Image.Height}}
	for _, sz := range mo.Sized {
		candidates = append(candidates, assetCandidate{sz.StorageFileID, sz.Width, sz.Height})
	}
	for _, th := range mo.Thumbnails {
		candidates = append(candidates, assetCandidate{th.StorageFileID, th.Width, th.Height})
	}

	chosen := pickAsset(candidates, width, height)
	if chosen.fileID == file.ID {
		return file, nil
	}
	asset, err := s.files.GetByID(ctx, chosen.fileID)
	if err != nil || !isServable(asset) {
		logger.Warnf(ctx, "⚠️ asset #%s of file #%s cannot be served, falling back to the original", chosen.fileID, file.ID)
		return file, nil
	}
	return asset, nil
}

func pickAsset(candidates []assetCandidate, width, height int) assetCandidate {
	var best, largest *assetCandidate
	for i := range candidates {
		c := &candidates[i]
		if largest == nil || c.area() > largest.area() {
			largest = c
		}
		if c.width >= width && c.height >= height && (best == nil || c.area() < best.area()) {
			best = c
		}
	}
	if best != nil {
		return *best
	}
	return *largest
}

func isServable(f *model.StoredFile) bool {
	return f.Available && !f.Excluded && f.Status != model.FileStatusDeleted
}

// cached links are stored as "<unix expiry> <url>"
func encodeCachedURL(url string, expiresAt time.Time) string {
	return strconv.FormatInt(expiresAt.Unix(), 10) + " " + url
}

func decodeCachedURL(raw string) (string, time.Time, bool) {
	ts, url, ok := strings.Cut(raw, " ")
	if !ok || url == "" {
		return "", time.Time{}, false
	}
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return url, time.Unix(sec, 0), true
}
