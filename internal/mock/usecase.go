package mock

import (
	"context"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// FileGetter implements port.FileGetter for tests.
type FileGetter struct {
	Out    *port.GetFileOutput
	Err    error
	Called bool
	ID     uuid.UUID
}

func (m *FileGetter) GetFile(ctx context.Context, id uuid.UUID) (*port.GetFileOutput, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Err
}

// ImageProcessor implements port.ImageProcessor for tests.
type ImageProcessor struct {
	Err    error
	Called bool
	ID     uuid.UUID
	Force  bool
}

func (m *ImageProcessor) ProcessImage(ctx context.Context, fileID uuid.UUID, force bool) error {
	m.Called = true
	m.ID = fileID
	m.Force = force
	return m.Err
}

// MediaFileProcessor implements port.MediaFileProcessor for tests.
type MediaFileProcessor struct {
	Err    error
	Called bool
	File   *model.StoredFile
	Force  bool
}

func (m *MediaFileProcessor) ProcessIfMedia(ctx context.Context, file *model.StoredFile, force bool) error {
	m.Called = true
	m.File = file
	m.Force = force
	return m.Err
}

// FileUploader implements port.FileUploader for tests.
type FileUploader struct {
	Out    *model.StoredFile
	Err    error
	Called bool
	In     port.UploadFileInput
}

func (m *FileUploader) UploadFile(ctx context.Context, in port.UploadFileInput) (*model.StoredFile, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// DownloadLinkGenerator implements port.DownloadLinkGenerator for tests.
type DownloadLinkGenerator struct {
	Out    port.DownloadLinkOutput
	Err    error
	Called bool
	In     port.DownloadLinkInput
}

func (m *DownloadLinkGenerator) GenerateDownloadLink(ctx context.Context, in port.DownloadLinkInput) (port.DownloadLinkOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// FileDeleter implements port.FileDeleter for tests.
type FileDeleter struct {
	TrashErr     error
	DeleteErr    error
	TrashCalled  bool
	DeleteCalled bool
	ID           uuid.UUID
}

func (m *FileDeleter) TrashFile(ctx context.Context, id uuid.UUID) error {
	m.TrashCalled = true
	m.ID = id
	return m.TrashErr
}

func (m *FileDeleter) DeleteFile(ctx context.Context, id uuid.UUID) error {
	m.DeleteCalled = true
	m.ID = id
	return m.DeleteErr
}

// BacklogReprocessor implements port.BacklogReprocessor for tests.
type BacklogReprocessor struct {
	Err    error
	Called bool
}

func (m *BacklogReprocessor) ReprocessBacklog(ctx context.Context) error {
	m.Called = true
	return m.Err
}

// HTTPRenderer implements port.HTTPRenderer for tests.
type HTTPRenderer struct {
	Out    []byte
	Etag   string
	Err    error
	Called bool
	ID     uuid.UUID
}

func (m *HTTPRenderer) RenderGetFile(ctx context.Context, getter port.FileGetter, id uuid.UUID) ([]byte, string, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Etag, m.Err
}
