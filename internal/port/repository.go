package port

import (
	"context"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// FileRepository defines persistence operations for stored files.
type FileRepository interface {
	Create(ctx context.Context, file *model.StoredFile) error
	Update(ctx context.Context, file *model.StoredFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.StoredFile, error)
	VirtualPathExists(ctx context.Context, storageID uuid.UUID, virtualPath string) (bool, error)
	ListByStatusBefore(ctx context.Context, statuses []model.FileStatus, genericType model.GenericType, before time.Time) ([]uuid.UUID, error)
}

// StorageRepository reads storage backend definitions.
type StorageRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Storage, error)
}

// MediaRepository defines persistence operations for media records and their derived assets.
// Create* methods return ErrDuplicateAsset when the record's idempotency key is already taken.
type MediaRepository interface {
	CreateItem(ctx context.Context, item *model.MediaItem) error
	GetItemByFileID(ctx context.Context, fileID uuid.UUID) (*model.MediaItem, error)

	CreateImage(ctx context.Context, img *model.MediaImage) error
	UpdateImage(ctx context.Context, img *model.MediaImage) error
	GetImageByMediaID(ctx context.Context, mediaID uuid.UUID) (*model.MediaImage, error)

	CreateSized(ctx context.Context, s *model.MediaImageSized) error
	FindSized(ctx context.Context, imageID uuid.UUID, width, height int) (*model.MediaImageSized, error)
	ListSized(ctx context.Context, imageID uuid.UUID) ([]model.MediaImageSized, error)

	CreateThumbnail(ctx context.Context, t *model.MediaThumbnail) error
	FindThumbnail(ctx context.Context, mediaID uuid.UUID, tag model.SizeTag) (*model.MediaThumbnail, error)
	ListThumbnails(ctx context.Context, mediaID uuid.UUID) ([]model.MediaThumbnail, error)
}
