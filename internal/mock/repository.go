package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// FileRepo is an in-memory port.FileRepository. Records are stored by value so
// callers never share pointers with the store.
type FileRepo struct {
	mu    sync.Mutex
	Files map[uuid.UUID]model.StoredFile

	// captured inputs
	StatusHistory map[uuid.UUID][]model.FileStatus
	ListedBefore  time.Time

	// errors
	CreateErr error
	UpdateErr error
	GetErr    error
	ListErr   error
	// UpdateErrOn fails Update when the file is moved to this status.
	UpdateErrOn model.FileStatus

	// stored values
	ListOut []uuid.UUID

	// call flags
	CreateCalled bool
	UpdateCalled bool
}

var _ port.FileRepository = (*FileRepo)(nil)

func NewFileRepo(files ...*model.StoredFile) *FileRepo {
	r := &FileRepo{Files: map[uuid.UUID]model.StoredFile{}, StatusHistory: map[uuid.UUID][]model.FileStatus{}}
	for _, f := range files {
		r.Files[f.ID] = *f
	}
	return r
}

func (r *FileRepo) Create(ctx context.Context, f *model.StoredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CreateCalled = true
	if r.CreateErr != nil {
		return r.CreateErr
	}
	if _, ok := r.Files[f.ID]; ok {
		return port.ErrDuplicateAsset
	}
	for _, other := range r.Files {
		if other.StorageID == f.StorageID && other.RealPath != "" && other.RealPath == f.RealPath {
			return port.ErrDuplicateAsset
		}
	}
	now := time.Now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now
	r.Files[f.ID] = *f
	r.StatusHistory[f.ID] = append(r.StatusHistory[f.ID], f.Status)
	return nil
}

func (r *FileRepo) Update(ctx context.Context, f *model.StoredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalled = true
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if r.UpdateErrOn != "" && f.Status == r.UpdateErrOn {
		return port.ErrInternal
	}
	if _, ok := r.Files[f.ID]; !ok {
		return port.ErrRecordNotFound
	}
	f.UpdatedAt = time.Now().UTC()
	r.Files[f.ID] = *f
	r.StatusHistory[f.ID] = append(r.StatusHistory[f.ID], f.Status)
	return nil
}

func (r *FileRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	f, ok := r.Files[id]
	if !ok {
		return nil, port.ErrRecordNotFound
	}
	return &f, nil
}

func (r *FileRepo) VirtualPathExists(ctx context.Context, storageID uuid.UUID, virtualPath string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.Files {
		if f.StorageID == storageID && f.VirtualPath == virtualPath && f.Status != model.FileStatusDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *FileRepo) ListByStatusBefore(ctx context.Context, statuses []model.FileStatus, genericType model.GenericType, before time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ListedBefore = before
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	if r.ListOut != nil {
		return r.ListOut, nil
	}
	var out []uuid.UUID
	for _, f := range r.Files {
		if f.GenericType != genericType || !f.UpdatedAt.Before(before) {
			continue
		}
		for _, s := range statuses {
			if f.Status == s {
				out = append(out, f.ID)
				break
			}
		}
	}
	return out, nil
}

// Count returns how many stored files satisfy keep.
func (r *FileRepo) Count(keep func(model.StoredFile) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.Files {
		if keep(f) {
			n++
		}
	}
	return n
}

// StorageRepo is an in-memory port.StorageRepository.
type StorageRepo struct {
	Storages map[uuid.UUID]model.Storage
	GetErr   error
}

var _ port.StorageRepository = (*StorageRepo)(nil)

func NewStorageRepo(storages ...*model.Storage) *StorageRepo {
	r := &StorageRepo{Storages: map[uuid.UUID]model.Storage{}}
	for _, s := range storages {
		r.Storages[s.ID] = *s
	}
	return r
}

func (r *StorageRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Storage, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	s, ok := r.Storages[id]
	if !ok {
		return nil, port.ErrRecordNotFound
	}
	return &s, nil
}

// MediaRepo is an in-memory port.MediaRepository enforcing the same unique keys as the schema.
type MediaRepo struct {
	mu         sync.Mutex
	Items      map[uuid.UUID]model.MediaItem
	Images     map[uuid.UUID]model.MediaImage
	Sized      map[uuid.UUID]model.MediaImageSized
	Thumbnails map[uuid.UUID]model.MediaThumbnail

	// errors
	CreateItemErr      error
	CreateImageErr     error
	UpdateImageErr     error
	CreateSizedErr     error
	CreateThumbnailErr error

	// RaceOnCreate makes the next CreateSized/CreateThumbnail report a duplicate, as if a
	// concurrent run had won the unique key.
	RaceOnCreate bool

	// call flags
	UpdateImageCalled bool
}

var _ port.MediaRepository = (*MediaRepo)(nil)

func NewMediaRepo() *MediaRepo {
	return &MediaRepo{
		Items:      map[uuid.UUID]model.MediaItem{},
		Images:     map[uuid.UUID]model.MediaImage{},
		Sized:      map[uuid.UUID]model.MediaImageSized{},
		Thumbnails: map[uuid.UUID]model.MediaThumbnail{},
	}
}

func (r *MediaRepo) CreateItem(ctx context.Context, item *model.MediaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateItemErr != nil {
		return r.CreateItemErr
	}
	for _, it := range r.Items {
		if it.StorageFileID == item.StorageFileID {
			return port.ErrDuplicateAsset
		}
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	r.Items[item.ID] = *item
	return nil
}

func (r *MediaRepo) GetItemByFileID(ctx context.Context, fileID uuid.UUID) (*model.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.Items {
		if it.StorageFileID == fileID {
			return &it, nil
		}
	}
	return nil, port.ErrRecordNotFound
}

func (r *MediaRepo) CreateImage(ctx context.Context, img *model.MediaImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateImageErr != nil {
		return r.CreateImageErr
	}
	for _, im := range r.Images {
		if im.MediaID == img.MediaID {
			return port.ErrDuplicateAsset
		}
	}
	now := time.Now().UTC()
	img.CreatedAt, img.UpdatedAt = now, now
	r.Images[img.ID] = *img
	return nil
}

func (r *MediaRepo) UpdateImage(ctx context.Context, img *model.MediaImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateImageCalled = true
	if r.UpdateImageErr != nil {
		return r.UpdateImageErr
	}
	if _, ok := r.Images[img.ID]; !ok {
		return port.ErrRecordNotFound
	}
	img.UpdatedAt = time.Now().UTC()
	r.Images[img.ID] = *img
	return nil
}

func (r *MediaRepo) GetImageByMediaID(ctx context.Context, mediaID uuid.UUID) (*model.MediaImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, im := range r.Images {
		if im.MediaID == mediaID {
			return &im, nil
		}
	}
	return nil, port.ErrRecordNotFound
}

func (r *MediaRepo) CreateSized(ctx context.Context, s *model.MediaImageSized) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateSizedErr != nil {
		return r.CreateSizedErr
	}
	if r.RaceOnCreate {
		r.RaceOnCreate = false
		return port.ErrDuplicateAsset
	}
	for _, other := range r.Sized {
		if other.MediaImageID == s.MediaImageID && other.Width == s.Width && other.Height == s.Height {
			return port.ErrDuplicateAsset
		}
	}
	s.CreatedAt = time.Now().UTC()
	r.Sized[s.ID] = *s
	return nil
}

func (r *MediaRepo) FindSized(ctx context.Context, imageID uuid.UUID, width, height int) (*model.MediaImageSized, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.Sized {
		if s.MediaImageID == imageID && s.Width == width && s.Height == height {
			return &s, nil
		}
	}
	return nil, port.ErrRecordNotFound
}

func (r *MediaRepo) ListSized(ctx context.Context, imageID uuid.UUID) ([]model.MediaImageSized, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MediaImageSized
	for _, s := range r.Sized {
		if s.MediaImageID == imageID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Width > out[j].Width })
	return out, nil
}

func (r *MediaRepo) CreateThumbnail(ctx context.Context, t *model.MediaThumbnail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateThumbnailErr != nil {
		return r.CreateThumbnailErr
	}
	if r.RaceOnCreate {
		r.RaceOnCreate = false
		return port.ErrDuplicateAsset
	}
	for _, other := range r.Thumbnails {
		if other.MediaID == t.MediaID && other.SizeTag == t.SizeTag {
			return port.ErrDuplicateAsset
		}
	}
	t.CreatedAt = time.Now().UTC()
	r.Thumbnails[t.ID] = *t
	return nil
}

func (r *MediaRepo) FindThumbnail(ctx context.Context, mediaID uuid.UUID, tag model.SizeTag) (*model.MediaThumbnail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.Thumbnails {
		if t.MediaID == mediaID && t.SizeTag == tag {
			return &t, nil
		}
	}
	return nil, port.ErrRecordNotFound
}

func (r *MediaRepo) ListThumbnails(ctx context.Context, mediaID uuid.UUID) ([]model.MediaThumbnail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MediaThumbnail
	for _, t := range r.Thumbnails {
		if t.MediaID == mediaID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Width > out[j].Width })
	return out, nil
}
