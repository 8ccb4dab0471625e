package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type fileDeleterSrv struct {
	files    port.FileRepository
	storages port.StorageRepository
	media    port.MediaRepository
	drivers  port.DriverFactory
	cache    port.Cache
}

// compile-time check: *fileDeleterSrv must satisfy port.FileDeleter
var _ port.FileDeleter = (*fileDeleterSrv)(nil)

func NewFileDeleter(
	files port.FileRepository,
	storages port.StorageRepository,
	media port.MediaRepository,
	drivers port.DriverFactory,
	cache port.Cache,
) port.FileDeleter {
	return &fileDeleterSrv{files: files, storages: storages, media: media, drivers: drivers, cache: cache}
}

// TrashFile hides the file from listings and download links. It can still be restored or deleted.
func (s *fileDeleterSrv) TrashFile(ctx context.Context, id uuid.UUID) error {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if file.Status == model.FileStatusDeleted {
		return port.ErrRecordNotFound
	}
	if file.Excluded {
		return nil
	}

	file.Excluded = true
	if err := s.files.Update(ctx, file); err != nil {
		return fmt.Errorf("failed to trash file #%s: %w", file.ID, err)
	}
	s.invalidate(ctx, file.ID)
	logger.Infof(ctx, "file #%s moved to trash", file.ID)
	return nil
}

// DeleteFile removes a trashed file and every asset derived from it, remotely and logically.
func (s *fileDeleterSrv) DeleteFile(ctx context.Context, id uuid.UUID) error {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if file.Status == model.FileStatusDeleted {
		return port.ErrRecordNotFound
	}
	if !file.Excluded {
		return fmt.Errorf("%w: file #%s", ErrNotInTrash, file.ID)
	}

	storage, err := s.storages.GetByID(ctx, file.StorageID)
	if err != nil {
		return fmt.Errorf("failed to load storage #%s: %w", file.StorageID, err)
	}
	driver, err := s.drivers.ForStorage(ctx, storage)
	if err != nil {
		return fmt.Errorf("failed to resolve driver of storage #%s: %w", storage.ID, err)
	}

	derived, err := s.derivedFileIDs(ctx, file)
	if err != nil {
		return err
	}
	for _, assetID := range derived {
		asset, err := s.files.GetByID(ctx, assetID)
		if errors.Is(err, port.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load asset #%s: %w", assetID, err)
		}
		if err := s.remove(ctx, driver, asset); err != nil {
			return err
		}
	}
	if err := s.remove(ctx, driver, file); err != nil {
		return err
	}

	logger.Infof(ctx, "✅ file #%s and %d derived assets deleted", file.ID, len(derived))
	return nil
}

func (s *fileDeleterSrv) derivedFileIDs(ctx context.Context, file *model.StoredFile) ([]uuid.UUID, error) {
	if !file.IsMedia() {
		return nil, nil
	}
	mo, err := loadMedia(ctx, s.media, file.ID)
	if err != nil || mo == nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(mo.Sized)+len(mo.Thumbnails))
	for _, sz := range mo.Sized {
		ids = append(ids, sz.StorageFileID)
	}
	for _, th := range mo.Thumbnails {
		ids = append(ids, th.StorageFileID)
	}
	return ids, nil
}

func (s *fileDeleterSrv) remove(ctx context.Context, driver port.StorageDriver, file *model.StoredFile) error {
	if file.Status == model.FileStatusDeleted {
		return nil
	}
	if file.RealPath != "" {
		if err := driver.Delete(ctx, file.RealPath); err != nil && !errors.Is(err, port.ErrObjectNotFound) {
			return fmt.Errorf("failed to delete remote object %q: %w", file.RealPath, err)
		}
	}
	file.Available = false
	if err := setStatus(ctx, s.files, file, model.FileStatusDeleted); err != nil {
		return err
	}
	s.invalidate(ctx, file.ID)
	return nil
}

func (s *fileDeleterSrv) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.DeleteFileDetails(ctx, id); err != nil {
		logger.Warnf(ctx, "⚠️ failed deleting cache for file #%s: %v", id, err)
	}
	if err := s.cache.DeleteEtagFileDetails(ctx, id); err != nil {
		logger.Warnf(ctx, "⚠️ failed deleting etag cache for file #%s: %v", id, err)
	}
	if err := s.cache.DeleteDownloadURLs(ctx, id); err != nil {
		logger.Warnf(ctx, "⚠️ failed deleting cached download urls for file #%s: %v", id, err)
	}
}
