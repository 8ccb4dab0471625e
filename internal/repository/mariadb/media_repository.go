package mariadb

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type MediaRepository struct {
	db *sql.DB
}

// compile-time check: *MediaRepository must satisfy port.MediaRepository
var _ port.MediaRepository = (*MediaRepository)(nil)

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) CreateItem(ctx context.Context, item *model.MediaItem) error {
	log.Printf("creating media record for file #%s...", item.StorageFileID)

	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now

	const query = `
      INSERT INTO storage_media
        (id, storage_file_id, title, type, description, created_by, updated_by, created_at, updated_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.StorageFileID, item.Title, item.Type, item.Description,
		item.CreatedBy, item.UpdatedBy, item.CreatedAt, item.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *MediaRepository) GetItemByFileID(ctx context.Context, fileID uuid.UUID) (*model.MediaItem, error) {
	const query = `
      SELECT id, storage_file_id, title, type, description, created_by, updated_by, created_at, updated_at
      FROM storage_media
      WHERE storage_file_id = ?
    `
	var item model.MediaItem
	err := r.db.QueryRowContext(ctx, query, fileID).Scan(
		&item.ID, &item.StorageFileID, &item.Title, &item.Type, &item.Description,
		&item.CreatedBy, &item.UpdatedBy, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &item, nil
}

const imageColumns = `id, media_id, size_tag, height, width, megapixels, focal_length, aperture, flash_fired, iso,
        orientation_angle, is_flipped, exposure, datetime_taken, camera_make, camera_model, exif_width, exif_height,
        created_at, updated_at`

func (r *MediaRepository) CreateImage(ctx context.Context, img *model.MediaImage) error {
	log.Printf("creating image record for media #%s, tagged %s...", img.MediaID, img.SizeTag)

	now := time.Now().UTC()
	img.CreatedAt, img.UpdatedAt = now, now

	const query = `
      INSERT INTO storage_media_images
        (` + imageColumns + `)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		img.ID, img.MediaID, img.SizeTag, img.Height, img.Width, img.Megapixels,
		img.FocalLength, img.Aperture, img.FlashFired, img.ISO,
		img.OrientationAngle, img.IsFlipped, img.Exposure, img.DatetimeTaken,
		img.CameraMake, img.CameraModel, img.ExifWidth, img.ExifHeight,
		img.CreatedAt, img.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *MediaRepository) UpdateImage(ctx context.Context, img *model.MediaImage) error {
	log.Printf("updating image record #%s...", img.ID)

	img.UpdatedAt = time.Now().UTC()

	const query = `
      UPDATE storage_media_images
      SET
        size_tag          = ?,
        height            = ?,
        width             = ?,
        megapixels        = ?,
        focal_length      = ?,
        aperture          = ?,
        flash_fired       = ?,
        iso               = ?,
        orientation_angle = ?,
        is_flipped        = ?,
        exposure          = ?,
        datetime_taken    = ?,
        camera_make       = ?,
        camera_model      = ?,
        exif_width        = ?,
        exif_height       = ?,
        updated_at        = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		img.SizeTag, img.Height, img.Width, img.Megapixels,
		img.FocalLength, img.Aperture, img.FlashFired, img.ISO,
		img.OrientationAngle, img.IsFlipped, img.Exposure, img.DatetimeTaken,
		img.CameraMake, img.CameraModel, img.ExifWidth, img.ExifHeight,
		img.UpdatedAt,
		img.ID, // WHERE clause
	)
	return mapWriteErr(err)
}

func (r *MediaRepository) GetImageByMediaID(ctx context.Context, mediaID uuid.UUID) (*model.MediaImage, error) {
	const query = `
      SELECT ` + imageColumns + `
      FROM storage_media_images
      WHERE media_id = ?
    `
	var img model.MediaImage
	err := r.db.QueryRowContext(ctx, query, mediaID).Scan(
		&img.ID, &img.MediaID, &img.SizeTag, &img.Height, &img.Width, &img.Megapixels,
		&img.FocalLength, &img.Aperture, &img.FlashFired, &img.ISO,
		&img.OrientationAngle, &img.IsFlipped, &img.Exposure, &img.DatetimeTaken,
		&img.CameraMake, &img.CameraModel, &img.ExifWidth, &img.ExifHeight,
		&img.CreatedAt, &img.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &img, nil
}

func (r *MediaRepository) CreateSized(ctx context.Context, s *model.MediaImageSized) error {
	log.Printf("creating %dx%d rendition record for image #%s...", s.Width, s.Height, s.MediaImageID)

	s.CreatedAt = time.Now().UTC()

	const query = `
      INSERT INTO storage_media_image_sized
        (id, media_image_id, storage_file_id, size_tag, height, width, megapixels, created_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.MediaImageID, s.StorageFileID, s.SizeTag, s.Height, s.Width, s.Megapixels, s.CreatedAt,
	)
	return mapWriteErr(err)
}

const sizedColumns = `id, media_image_id, storage_file_id, size_tag, height, width, megapixels, created_at`

func scanSized(row interface{ Scan(...any) error }) (*model.MediaImageSized, error) {
	var s model.MediaImageSized
	if err := row.Scan(&s.ID, &s.MediaImageID, &s.StorageFileID, &s.SizeTag, &s.Height, &s.Width, &s.Megapixels, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MediaRepository) FindSized(ctx context.Context, imageID uuid.UUID, width, height int) (*model.MediaImageSized, error) {
	const query = `
      SELECT ` + sizedColumns + `
      FROM storage_media_image_sized
      WHERE media_image_id = ? AND width = ? AND height = ?
    `
	s, err := scanSized(r.db.QueryRowContext(ctx, query, imageID, width, height))
	if err != nil {
		return nil, mapReadErr(err)
	}
	return s, nil
}

func (r *MediaRepository) ListSized(ctx context.Context, imageID uuid.UUID) ([]model.MediaImageSized, error) {
	const query = `
      SELECT ` + sizedColumns + `
      FROM storage_media_image_sized
      WHERE media_image_id = ?
      ORDER BY width DESC, height DESC
    `
	rows, err := r.db.QueryContext(ctx, query, imageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.MediaImageSized
	for rows.Next() {
		s, err := scanSized(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *MediaRepository) CreateThumbnail(ctx context.Context, t *model.MediaThumbnail) error {
	log.Printf("creating %s thumbnail record for media #%s...", t.SizeTag, t.MediaID)

	t.CreatedAt = time.Now().UTC()

	const query = `
      INSERT INTO storage_media_thumbnails
        (id, media_id, storage_file_id, size_tag, height, width, megapixels, created_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.MediaID, t.StorageFileID, t.SizeTag, t.Height, t.Width, t.Megapixels, t.CreatedAt,
	)
	return mapWriteErr(err)
}

const thumbnailColumns = `id, media_id, storage_file_id, size_tag, height, width, megapixels, created_at`

func scanThumbnail(row interface{ Scan(...any) error }) (*model.MediaThumbnail, error) {
	var t model.MediaThumbnail
	if err := row.Scan(&t.ID, &t.MediaID, &t.StorageFileID, &t.SizeTag, &t.Height, &t.Width, &t.Megapixels, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *MediaRepository) FindThumbnail(ctx context.Context, mediaID uuid.UUID, tag model.SizeTag) (*model.MediaThumbnail, error) {
	const query = `
      SELECT ` + thumbnailColumns + `
      FROM storage_media_thumbnails
      WHERE media_id = ? AND size_tag = ?
    `
	t, err := scanThumbnail(r.db.QueryRowContext(ctx, query, mediaID, tag))
	if err != nil {
		return nil, mapReadErr(err)
	}
	return t, nil
}

func (r *MediaRepository) ListThumbnails(ctx context.Context, mediaID uuid.UUID) ([]model.MediaThumbnail, error) {
	const query = `
      SELECT ` + thumbnailColumns + `
      FROM storage_media_thumbnails
      WHERE media_id = ?
      ORDER BY width DESC
    `
	rows, err := r.db.QueryContext(ctx, query, mediaID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.MediaThumbnail
	for rows.Next() {
		t, err := scanThumbnail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
