package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fhuszti/filemgr-ms-go/internal/api_context"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/metrics"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/photo"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type assetInput struct {
	Tag     model.SizeTag
	Format  model.OutputFormat
	Quality int
	MediaID uuid.UUID
	// ImageID is only set for renditions.
	ImageID uuid.UUID
}

// persist encodes img, uploads it next to the parent file and records it as a
// rendition or a thumbnail of the parent, depending on the size tag.
// A lost race on the record's unique key returns port.ErrDuplicateAsset once
// the orphaned upload has been cleaned up.
func (s *imageProcessorSrv) persist(ctx context.Context, driver port.StorageDriver, parent *model.StoredFile, img image.Image, in assetInput) (*model.StoredFile, error) {
	id := s.newID()

	dir := filepath.Join(s.tempDir, "resized", string(in.Tag))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %q: %w", dir, err)
	}
	tmpPath := filepath.Join(dir, id.String())
	defer removeQuietly(ctx, tmpPath)

	if err := encodeToFile(tmpPath, img, in.Format, in.Quality); err != nil {
		return nil, err
	}
	hash, size, err := hashFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %q: %w", tmpPath, err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	user := api_context.UserOrSystem(ctx)
	file := &model.StoredFile{
		ID:             id,
		StorageID:      parent.StorageID,
		OwnerID:        parent.OwnerID,
		Name:           parent.Name,
		Status:         model.FileStatusPublished,
		Visibility:     parent.Visibility,
		Size:           size,
		Hash:           hash,
		MimeType:       photo.ContentType(in.Format),
		GenericType:    model.GenericTypeImage,
		Extension:      photo.Extension(in.Format),
		ExifMetadata:   parent.ExifMetadata.Clone(),
		CustomMetadata: parent.CustomMetadata.Clone(),
		Origin:         model.OriginSystem,
		OriginalPath:   parent.OriginalPath,
		Available:      true,
		CreatedBy:      user,
		UpdatedBy:      user,
	}
	file.RealPath = driver.RealRemotePath(file, "resized/"+string(in.Tag))

	if err := driver.UploadFromPath(ctx, tmpPath, file.RealPath, file.MimeType); err != nil {
		return nil, fmt.Errorf("%w: upload of %q: %w", ErrStorageWrite, file.RealPath, err)
	}
	if err := s.files.Create(ctx, file); err != nil {
		if delErr := driver.Delete(ctx, file.RealPath); delErr != nil {
			logger.Warnf(ctx, "⚠️ failed to remove unrecorded asset %q: %v", file.RealPath, delErr)
		}
		return nil, fmt.Errorf("failed to record asset file %q: %w", file.RealPath, err)
	}

	if err := s.createAssetRecord(ctx, file, in, w, h); err != nil {
		s.discardOrphan(ctx, driver, file)
		return nil, err
	}

	metrics.RecordAssetCreated(string(in.Tag))
	logger.Infof(ctx, "✅ stored %s asset %dx%d of file #%s as #%s", in.Tag, w, h, parent.ID, file.ID)
	return file, nil
}

func (s *imageProcessorSrv) createAssetRecord(ctx context.Context, file *model.StoredFile, in assetInput, w, h int) error {
	if in.Tag.IsThumbnail() {
		err := s.media.CreateThumbnail(ctx, &model.MediaThumbnail{
			ID:            s.newID(),
			MediaID:       in.MediaID,
			StorageFileID: file.ID,
			SizeTag:       in.Tag,
			Width:         w,
			Height:        h,
			Megapixels:    photo.Megapixels(w, h),
		})
		if err != nil {
			return fmt.Errorf("failed to record %s thumbnail of media #%s: %w", in.Tag, in.MediaID, err)
		}
		return nil
	}

	err := s.media.CreateSized(ctx, &model.MediaImageSized{
		ID:            s.newID(),
		MediaImageID:  in.ImageID,
		StorageFileID: file.ID,
		SizeTag:       in.Tag,
		Width:         w,
		Height:        h,
		Megapixels:    photo.Megapixels(w, h),
	})
	if err != nil {
		return fmt.Errorf("failed to record %dx%d rendition of image #%s: %w", w, h, in.ImageID, err)
	}
	return nil
}

// discardOrphan removes an uploaded asset whose metadata record could not be created.
func (s *imageProcessorSrv) discardOrphan(ctx context.Context, driver port.StorageDriver, file *model.StoredFile) {
	if err := driver.Delete(ctx, file.RealPath); err != nil && !errors.Is(err, port.ErrObjectNotFound) {
		logger.Warnf(ctx, "⚠️ failed to remove orphan asset %q: %v", file.RealPath, err)
	}
	file.Available = false
	if err := setStatus(ctx, s.files, file, model.FileStatusDeleted); err != nil {
		logger.Warnf(ctx, "⚠️ failed to mark orphan asset #%s as deleted: %v", file.ID, err)
	}
}

func encodeToFile(path string, img image.Image, format model.OutputFormat, quality int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %q: %w", path, cerr)
		}
	}()

	if err := photo.Encode(f, img, format, quality); err != nil {
		return fmt.Errorf("failed to encode %q: %w", path, err)
	}
	return nil
}
