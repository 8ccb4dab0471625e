package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fhuszti/filemgr-ms-go/internal/event"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/metrics"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/photo"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

type fileUploaderSrv struct {
	files     port.FileRepository
	storages  port.StorageRepository
	drivers   port.DriverFactory
	pub       port.EventPublisher
	media     port.MediaFileProcessor
	extractor *photo.Extractor
	tempDir   string
	newID     port.UUIDGen
}

// compile-time check: *fileUploaderSrv must satisfy port.FileUploader
var _ port.FileUploader = (*fileUploaderSrv)(nil)

func NewFileUploader(
	files port.FileRepository,
	storages port.StorageRepository,
	drivers port.DriverFactory,
	pub port.EventPublisher,
	media port.MediaFileProcessor,
	extractor *photo.Extractor,
	tempDir string,
	newID port.UUIDGen,
) port.FileUploader {
	return &fileUploaderSrv{
		files:     files,
		storages:  storages,
		drivers:   drivers,
		pub:       pub,
		media:     media,
		extractor: extractor,
		tempDir:   tempDir,
		newID:     newID,
	}
}

// UploadFile stores the bytes held at in.LocalPath as a new file of the storage,
// then hands it over to media processing.
func (s *fileUploaderSrv) UploadFile(ctx context.Context, in port.UploadFileInput) (*model.StoredFile, error) {
	defer removeQuietly(ctx, in.LocalPath)

	storage, err := s.storages.GetByID(ctx, in.StorageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage #%s: %w", in.StorageID, err)
	}
	driver, err := s.drivers.ForStorage(ctx, storage)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve driver of storage #%s: %w", storage.ID, err)
	}

	virtualPath := normaliseVirtualPath(in.VirtualPath, in.Name)
	taken, err := s.files.VirtualPathExists(ctx, storage.ID, virtualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to check virtual path %q: %w", virtualPath, err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %q", ErrVirtualPathTaken, virtualPath)
	}

	file := s.newEmptyFile(in, virtualPath)
	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	// Cleanup function
	var finalErr error
	defer func() {
		if finalErr != nil {
			metrics.RecordUpload(string(file.GenericType), "error", 0)
			if err := setStatus(context.WithoutCancel(ctx), s.files, file, model.FileStatusError); err != nil {
				logger.Errorf(ctx, "❌ failed to mark file #%s as errored: %v", file.ID, err)
			}
		}
	}()

	if finalErr = setStatus(ctx, s.files, file, model.FileStatusUploading); finalErr != nil {
		return nil, finalErr
	}

	if finalErr = s.describe(ctx, file, in); finalErr != nil {
		return nil, finalErr
	}

	file.RealPath = driver.RealRemotePath(file, "")
	exists, err := driver.Exists(ctx, file.RealPath)
	if err != nil {
		finalErr = fmt.Errorf("failed to check remote object %q: %w", file.RealPath, err)
		return nil, finalErr
	}
	if exists {
		finalErr = fmt.Errorf("%w: %q", ErrRemoteExists, file.RealPath)
		return nil, finalErr
	}
	if err := driver.UploadFromPath(ctx, in.LocalPath, file.RealPath, file.MimeType); err != nil {
		finalErr = fmt.Errorf("%w: upload of %q: %w", ErrStorageWrite, file.RealPath, err)
		return nil, finalErr
	}

	file.Available = true
	if finalErr = setStatus(ctx, s.files, file, model.FileStatusUploaded); finalErr != nil {
		return nil, finalErr
	}
	metrics.RecordUpload(string(file.GenericType), "success", file.Size)
	logger.Infof(ctx, "✅ file #%s uploaded to %q", file.ID, file.RealPath)
	publish(ctx, s.pub, event.FileUploadedTopic(storage.ID), file)

	s.keepForProcessing(ctx, file, in.LocalPath)

	if err := s.media.ProcessIfMedia(ctx, file, false); err != nil {
		// the file stays UPLOADED and is picked up by the backlog run
		logger.Errorf(ctx, "❌ media dispatch of file #%s failed: %v", file.ID, err)
	}
	return file, nil
}

// newEmptyFile builds the record of a file whose bytes are not uploaded yet.
func (s *fileUploaderSrv) newEmptyFile(in port.UploadFileInput, virtualPath string) *model.StoredFile {
	custom := in.CustomMetadata.Clone()
	visibility := in.Visibility
	if visibility == "" {
		visibility = model.VisibilityUser
	}
	return &model.StoredFile{
		ID:             s.newID(),
		StorageID:      in.StorageID,
		OwnerID:        in.OwnerID,
		Name:           in.Name,
		Status:         model.FileStatusNotUploaded,
		Visibility:     visibility,
		GenericType:    model.GenericTypeOther,
		ExifMetadata:   model.JSONMap{},
		CustomMetadata: custom,
		Origin:         model.OriginLocal,
		OriginalPath:   in.OriginalPath,
		VirtualPath:    virtualPath,
		CreatedBy:      in.OwnerID,
		UpdatedBy:      in.OwnerID,
	}
}

// describe fills the content derived fields: type, extension, size, hash and EXIF.
func (s *fileUploaderSrv) describe(ctx context.Context, file *model.StoredFile, in port.UploadFileInput) error {
	mt, err := mimetype.DetectFile(in.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to detect mime type of %q: %w", in.Name, err)
	}
	file.MimeType = mt.String()
	file.GenericType = model.GenericTypeOf(file.MimeType)

	file.Extension = strings.ToLower(filepath.Ext(in.Name))
	if file.Extension == "" {
		file.Extension = mt.Extension()
	}

	hash, size, err := hashFile(in.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to hash %q: %w", in.Name, err)
	}
	file.Hash, file.Size = hash, size

	if file.GenericType == model.GenericTypeImage {
		rec, err := s.extractor.Extract(ctx, in.LocalPath)
		if err != nil {
			logger.Warnf(ctx, "⚠️ failed to read exif of file #%s: %v", file.ID, err)
		} else {
			file.ExifMetadata = model.JSONMap(rec.Values())
		}
	}
	return nil
}

// keepForProcessing moves the uploaded bytes to the processing cache, saving a download.
func (s *fileUploaderSrv) keepForProcessing(ctx context.Context, file *model.StoredFile, localPath string) {
	if file.GenericType != model.GenericTypeImage {
		return
	}
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		logger.Warnf(ctx, "⚠️ failed to create %q: %v", s.tempDir, err)
		return
	}
	dst := filepath.Join(s.tempDir, file.ID.String())
	if err := os.Rename(localPath, dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf(ctx, "⚠️ failed to cache original of file #%s: %v", file.ID, err)
	}
}

// normaliseVirtualPath returns a clean absolute path, /<name> when none is given.
func normaliseVirtualPath(virtualPath, name string) string {
	if strings.TrimSpace(virtualPath) == "" {
		virtualPath = name
	}
	return path.Clean("/" + virtualPath)
}
