package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// FileDetailsTTL is how long a rendered file details document stays valid.
const FileDetailsTTL = 5 * time.Minute

type fileGetterSrv struct {
	files port.FileRepository
	media port.MediaRepository
}

// compile-time check: *fileGetterSrv must satisfy port.FileGetter
var _ port.FileGetter = (*fileGetterSrv)(nil)

func NewFileGetter(files port.FileRepository, media port.MediaRepository) port.FileGetter {
	return &fileGetterSrv{files: files, media: media}
}

func (s *fileGetterSrv) GetFile(ctx context.Context, id uuid.UUID) (*port.GetFileOutput, error) {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.Status == model.FileStatusDeleted {
		return nil, port.ErrRecordNotFound
	}

	out := &port.GetFileOutput{
		ValidUntil: time.Now().Add(FileDetailsTTL),
		File:       file,
	}
	if !file.IsMedia() {
		return out, nil
	}

	mo, err := loadMedia(ctx, s.media, file.ID)
	if err != nil {
		return nil, err
	}
	out.Media = mo
	return out, nil
}

// loadMedia returns the media records derived from a file, nil when it has none yet.
func loadMedia(ctx context.Context, repo port.MediaRepository, fileID uuid.UUID) (*port.MediaOutput, error) {
	item, err := repo.GetItemByFileID(ctx, fileID)
	if errors.Is(err, port.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load media of file #%s: %w", fileID, err)
	}

	out := &port.MediaOutput{
		Item:       item,
		Sized:      []model.MediaImageSized{},
		Thumbnails: []model.MediaThumbnail{},
	}

	img, err := repo.GetImageByMediaID(ctx, item.ID)
	switch {
	case errors.Is(err, port.ErrRecordNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load image of media #%s: %w", item.ID, err)
	default:
		out.Image = img
		sized, err := repo.ListSized(ctx, img.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list renditions of image #%s: %w", img.ID, err)
		}
		if sized != nil {
			out.Sized = sized
		}
	}

	thumbs, err := repo.ListThumbnails(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list thumbnails of media #%s: %w", item.ID, err)
	}
	if thumbs != nil {
		out.Thumbnails = thumbs
	}
	return out, nil
}
