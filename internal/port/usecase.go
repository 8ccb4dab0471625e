package port

import (
	"context"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type UUIDGen func() uuid.UUID

// ImageProcessor runs the derivation pipeline on one uploaded image.
// force reopens a published image so that missing assets get derived.
type ImageProcessor interface {
	ProcessImage(ctx context.Context, fileID uuid.UUID, force bool) error
}

// MediaFileProcessor dispatches media work for an uploaded file when it is eligible.
type MediaFileProcessor interface {
	ProcessIfMedia(ctx context.Context, file *model.StoredFile, force bool) error
}

// FileUploader stores a new file into a storage.
type FileUploader interface {
	UploadFile(ctx context.Context, in UploadFileInput) (*model.StoredFile, error)
}
type UploadFileInput struct {
	StorageID      uuid.UUID
	OwnerID        string
	Name           string
	VirtualPath    string
	Visibility     model.Visibility
	CustomMetadata model.JSONMap
	OriginalPath   string
	// LocalPath holds the uploaded bytes. The uploader takes ownership of it.
	LocalPath string
}

// FileGetter returns a file with its derived media assets.
type FileGetter interface {
	GetFile(ctx context.Context, id uuid.UUID) (*GetFileOutput, error)
}
type MediaOutput struct {
	Item       *model.MediaItem        `json:"item"`
	Image      *model.MediaImage       `json:"image,omitempty"`
	Sized      []model.MediaImageSized `json:"sized"`
	Thumbnails []model.MediaThumbnail  `json:"thumbnails"`
}
type GetFileOutput struct {
	ValidUntil time.Time         `json:"valid_until"`
	File       *model.StoredFile `json:"file"`
	Media      *MediaOutput      `json:"media,omitempty"`
}

// DownloadLinkGenerator returns a time-limited link to a file or its best fitting derived asset.
type DownloadLinkGenerator interface {
	GenerateDownloadLink(ctx context.Context, in DownloadLinkInput) (DownloadLinkOutput, error)
}
type DownloadLinkInput struct {
	FileID   uuid.UUID
	Download bool
	Width    int
	Height   int
}
type DownloadLinkOutput struct {
	URL       string    `json:"url"`
	FileID    uuid.UUID `json:"file_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileDeleter moves files to trash and removes them for good.
type FileDeleter interface {
	TrashFile(ctx context.Context, id uuid.UUID) error
	DeleteFile(ctx context.Context, id uuid.UUID) error
}

// BacklogReprocessor re-dispatches images stuck before publication.
type BacklogReprocessor interface {
	ReprocessBacklog(ctx context.Context) error
}
