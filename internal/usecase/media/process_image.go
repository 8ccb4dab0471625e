package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/event"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/metrics"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/photo"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type imageProcessorSrv struct {
	files     port.FileRepository
	storages  port.StorageRepository
	media     port.MediaRepository
	drivers   port.DriverFactory
	pub       port.EventPublisher
	cache     port.Cache
	extractor *photo.Extractor
	overlay   *photo.Overlay
	tempDir   string
	newID     port.UUIDGen
}

// compile-time check: *imageProcessorSrv must satisfy port.ImageProcessor
var _ port.ImageProcessor = (*imageProcessorSrv)(nil)

// NewImageProcessor constructs the derivation pipeline.
// tempDir holds the cached originals, as left there by the uploader, and the encoded assets before upload.
func NewImageProcessor(
	files port.FileRepository,
	storages port.StorageRepository,
	media port.MediaRepository,
	drivers port.DriverFactory,
	pub port.EventPublisher,
	cache port.Cache,
	extractor *photo.Extractor,
	overlay *photo.Overlay,
	tempDir string,
	newID port.UUIDGen,
) port.ImageProcessor {
	return &imageProcessorSrv{
		files:     files,
		storages:  storages,
		media:     media,
		drivers:   drivers,
		pub:       pub,
		cache:     cache,
		extractor: extractor,
		overlay:   overlay,
		tempDir:   tempDir,
		newID:     newID,
	}
}

// ProcessImage derives the EXIF details, renditions and thumbnails of one uploaded image.
// Running it again on a published file is a no-op unless force is set, and every
// derived asset is created at most once, so at-least-once delivery is safe.
// A forced run only derives the assets the current configuration adds.
func (s *imageProcessorSrv) ProcessImage(ctx context.Context, fileID uuid.UUID, force bool) (err error) {
	start := time.Now()

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to load file #%s: %w", fileID, err)
	}
	switch file.Status {
	case model.FileStatusPublished:
		if !force {
			logger.Infof(ctx, "file #%s is already published, nothing to do", file.ID)
			return nil
		}
		logger.Infof(ctx, "🚀 reprocessing published file #%s", file.ID)
	case model.FileStatusUploaded, model.FileStatusProcessing, model.FileStatusError:
	default:
		return fmt.Errorf("%w: file #%s is %s", ErrInvalidStatus, file.ID, file.Status)
	}

	defer func() {
		if err == nil {
			metrics.RecordProcess("success", time.Since(start).Seconds())
			return
		}
		metrics.RecordProcess("error", time.Since(start).Seconds())
		s.markAsFailed(context.WithoutCancel(ctx), file, err)
	}()

	storage, err := s.storages.GetByID(ctx, file.StorageID)
	if err != nil {
		return fmt.Errorf("failed to load storage #%s: %w", file.StorageID, err)
	}
	cfg, err := model.ParseMediaConvertConfig(storage.MediaConvertConfiguration)
	if err != nil {
		return fmt.Errorf("%w: storage #%s: %w", ErrUnsupportedConfiguration, storage.ID, err)
	}
	driver, err := s.drivers.ForStorage(ctx, storage)
	if err != nil {
		return fmt.Errorf("failed to resolve driver of storage #%s: %w", storage.ID, err)
	}

	// OPENING
	localPath := filepath.Join(s.tempDir, file.ID.String())
	src, err := s.openSource(ctx, driver, file, localPath)
	if err != nil {
		return err
	}
	width, height := src.Bounds().Dx(), src.Bounds().Dy()

	// HASHING
	hash, size, err := hashFile(localPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if file.Hash != hash || file.Size != size {
		file.Hash, file.Size = hash, size
		if err := s.files.Update(ctx, file); err != nil {
			return fmt.Errorf("failed to store hash of file #%s: %w", file.ID, err)
		}
	}

	// METADATA_RECORD_CREATED
	item, err := s.getOrCreateItem(ctx, file)
	if err != nil {
		return err
	}
	img, err := s.getOrCreateImage(ctx, item, width, height)
	if err != nil {
		return err
	}

	// PROCESSING
	if err := reopen(ctx, s.files, file); err != nil {
		return err
	}
	publish(ctx, s.pub, event.TopicProcessingStarted, file)

	if err := s.fillMetadata(ctx, img, localPath, width, height); err != nil {
		return err
	}

	// RESIZING
	format := cfg.ImageResizer.OutputFormat()
	for _, target := range cfg.ImageResizer.Targets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.resize(ctx, driver, file, img, src, target, cfg.ImageInfoBar, format); err != nil {
			return err
		}
	}

	// THUMBNAILING
	for _, thumb := range photo.Thumbnails {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.thumbnail(ctx, driver, file, item, src, thumb, format); err != nil {
			return err
		}
	}

	// PUBLISHED
	if err := setStatus(ctx, s.files, file, model.FileStatusPublished); err != nil {
		return err
	}
	publish(ctx, s.pub, event.TopicProcessingFinished, file)
	removeQuietly(ctx, localPath)
	s.invalidate(ctx, file)

	logger.Infof(ctx, "✅ file #%s processed in %s", file.ID, time.Since(start).Round(time.Millisecond))
	return nil
}

// openSource decodes the local copy of the original, downloading it when missing.
// A local copy that does not decode is replaced by a fresh download once.
func (s *imageProcessorSrv) openSource(ctx context.Context, driver port.StorageDriver, file *model.StoredFile, localPath string) (image.Image, error) {
	if fileExists(localPath) {
		src, err := photo.Open(localPath)
		if err == nil {
			return src, nil
		}
		logger.Warnf(ctx, "⚠️ local copy of file #%s is unreadable, downloading it again: %v", file.ID, err)
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to remove broken copy %q: %w", ErrSourceUnavailable, localPath, err)
		}
	}

	logger.Infof(ctx, "downloading original of file #%s to %s...", file.ID, localPath)
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	if err := driver.DownloadToPath(ctx, file, localPath); err != nil {
		removeQuietly(ctx, localPath)
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	src, err := photo.Open(localPath)
	if err != nil {
		removeQuietly(ctx, localPath)
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return src, nil
}

func (s *imageProcessorSrv) markAsFailed(ctx context.Context, file *model.StoredFile, cause error) {
	logger.Errorf(ctx, "❌ processing of file #%s failed: %v", file.ID, cause)

	if err := setStatus(ctx, s.files, file, model.FileStatusError); err != nil {
		logger.Errorf(ctx, "❌ failed to mark file #%s as errored: %v", file.ID, err)
	}
	publish(ctx, s.pub, event.TopicProcessingFailed, file)
	s.invalidate(ctx, file)
}

// invalidate drops the cached details of file, which now list a new status and new assets.
func (s *imageProcessorSrv) invalidate(ctx context.Context, file *model.StoredFile) {
	if err := s.cache.DeleteFileDetails(ctx, file.ID); err != nil {
		logger.Warnf(ctx, "⚠️ failed deleting cache for file #%s: %v", file.ID, err)
	}
	if err := s.cache.DeleteEtagFileDetails(ctx, file.ID); err != nil {
		logger.Warnf(ctx, "⚠️ failed deleting etag cache for file #%s: %v", file.ID, err)
	}
}

func (s *imageProcessorSrv) getOrCreateItem(ctx context.Context, file *model.StoredFile) (*model.MediaItem, error) {
	item, err := s.media.GetItemByFileID(ctx, file.ID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, port.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load media of file #%s: %w", file.ID, err)
	}

	item = &model.MediaItem{
		ID:            s.newID(),
		StorageFileID: file.ID,
		Title:         file.Name,
		Type:          model.MediaTypeImage,
		CreatedBy:     file.OwnerID,
		UpdatedBy:     file.OwnerID,
	}
	if err := s.media.CreateItem(ctx, item); err != nil {
		if errors.Is(err, port.ErrDuplicateAsset) {
			// created concurrently
			return s.media.GetItemByFileID(ctx, file.ID)
		}
		return nil, fmt.Errorf("failed to create media of file #%s: %w", file.ID, err)
	}
	return item, nil
}

func (s *imageProcessorSrv) getOrCreateImage(ctx context.Context, item *model.MediaItem, width, height int) (*model.MediaImage, error) {
	img, err := s.media.GetImageByMediaID(ctx, item.ID)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, port.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load image of media #%s: %w", item.ID, err)
	}

	img = &model.MediaImage{
		ID:         s.newID(),
		MediaID:    item.ID,
		SizeTag:    photo.Classify(width, height),
		Width:      width,
		Height:     height,
		Megapixels: photo.Megapixels(width, height),
	}
	if err := s.media.CreateImage(ctx, img); err != nil {
		if errors.Is(err, port.ErrDuplicateAsset) {
			return s.media.GetImageByMediaID(ctx, item.ID)
		}
		return nil, fmt.Errorf("failed to create image of media #%s: %w", item.ID, err)
	}
	return img, nil
}

// fillMetadata copies the EXIF details onto img. Unreadable EXIF data only leaves the fields empty.
func (s *imageProcessorSrv) fillMetadata(ctx context.Context, img *model.MediaImage, localPath string, width, height int) error {
	img.SizeTag = photo.Classify(width, height)
	img.Width, img.Height = width, height
	img.Megapixels = photo.Megapixels(width, height)

	rec, err := s.extractor.Extract(ctx, localPath)
	if err != nil {
		logger.Warnf(ctx, "⚠️ failed to extract exif of image #%s: %v", img.ID, err)
	} else {
		img.FocalLength = rec.FocalLength()
		img.Aperture = rec.Aperture()
		img.FlashFired = rec.FlashFired()
		img.ISO = rec.ISO()
		img.OrientationAngle = rec.OrientationAngle()
		img.IsFlipped = rec.IsFlipped()
		img.Exposure = rec.Exposure()
		img.DatetimeTaken = rec.DatetimeTaken()
		img.CameraMake = rec.CameraMake()
		img.CameraModel = rec.CameraModel()
		img.ExifWidth = rec.ExifWidth()
		img.ExifHeight = rec.ExifHeight()
	}

	if err := s.media.UpdateImage(ctx, img); err != nil {
		return fmt.Errorf("failed to update image #%s: %w", img.ID, err)
	}
	return nil
}

func (s *imageProcessorSrv) resize(
	ctx context.Context,
	driver port.StorageDriver,
	file *model.StoredFile,
	img *model.MediaImage,
	src image.Image,
	target model.Dimensions,
	bar *model.InfoBarConfig,
	format model.OutputFormat,
) error {
	w, h := photo.Fit(img.Width, img.Height, target.Width, target.Height)
	if photo.RequiresUpscale(img.Width, img.Height, w, h) {
		logger.Warnf(ctx, "⚠️ skipping %dx%d rendition of file #%s: it would upscale the %dx%d original",
			target.Width, target.Height, file.ID, img.Width, img.Height)
		metrics.RecordAssetSkipped(metrics.SkipUpscale)
		return nil
	}

	if _, err := s.media.FindSized(ctx, img.ID, w, h); err == nil {
		logger.Infof(ctx, "%dx%d rendition of file #%s already exists", w, h, file.ID)
		metrics.RecordAssetSkipped(metrics.SkipExisting)
		return nil
	} else if !errors.Is(err, port.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up %dx%d rendition of image #%s: %w", w, h, img.ID, err)
	}

	out := photo.Render(src, w, h)
	if err := s.overlay.Apply(out, bar, file.CustomMetadata); err != nil {
		return fmt.Errorf("failed to draw info bar on %dx%d rendition: %w", w, h, err)
	}

	_, err := s.persist(ctx, driver, file, out, assetInput{
		Tag:     photo.Classify(w, h),
		Format:  format,
		Quality: photo.RenditionQuality,
		MediaID: img.MediaID,
		ImageID: img.ID,
	})
	if errors.Is(err, port.ErrDuplicateAsset) {
		logger.Warnf(ctx, "⚠️ %dx%d rendition of file #%s was created concurrently, skipping", w, h, file.ID)
		metrics.RecordAssetSkipped(metrics.SkipDuplicate)
		return nil
	}
	return err
}

func (s *imageProcessorSrv) thumbnail(
	ctx context.Context,
	driver port.StorageDriver,
	file *model.StoredFile,
	item *model.MediaItem,
	src image.Image,
	thumb photo.ThumbnailSpec,
	format model.OutputFormat,
) error {
	if _, err := s.media.FindThumbnail(ctx, item.ID, thumb.Tag); err == nil {
		logger.Infof(ctx, "%s thumbnail of file #%s already exists", thumb.Tag, file.ID)
		metrics.RecordAssetSkipped(metrics.SkipExisting)
		return nil
	} else if !errors.Is(err, port.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up %s thumbnail of media #%s: %w", thumb.Tag, item.ID, err)
	}

	out := photo.Thumbnail(src, thumb.Width, thumb.Height)
	_, err := s.persist(ctx, driver, file, out, assetInput{
		Tag:     thumb.Tag,
		Format:  format,
		Quality: photo.ThumbnailQuality,
		MediaID: item.ID,
	})
	if errors.Is(err, port.ErrDuplicateAsset) {
		logger.Warnf(ctx, "⚠️ %s thumbnail of file #%s was created concurrently, skipping", thumb.Tag, file.ID)
		metrics.RecordAssetSkipped(metrics.SkipDuplicate)
		return nil
	}
	return err
}
