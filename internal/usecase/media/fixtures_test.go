package media

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/fhuszti/filemgr-ms-go/internal/mock"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/photo"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solidImage(w, h, color.White), &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(w, h, color.NRGBA{R: 200, A: 255})); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// pipeline wires a processor to in-memory collaborators around one uploaded image.
type pipeline struct {
	files    *mock.FileRepo
	storages *mock.StorageRepo
	media    *mock.MediaRepo
	driver   *mock.Driver
	factory  *mock.DriverFactory
	pub      *mock.Publisher
	cache    *mock.Cache
	tempDir  string
	file     *model.StoredFile
	storage  *model.Storage
	proc     *imageProcessorSrv
}

func newPipeline(t *testing.T, w, h int, convertConfig string) *pipeline {
	t.Helper()

	storage := &model.Storage{ID: uuid.NewUUID(), Name: "main", Type: model.StorageTypeLocal}
	if convertConfig != "" {
		storage.MediaConvertConfiguration = model.RawJSON(convertConfig)
	}
	file := &model.StoredFile{
		ID:             uuid.NewUUID(),
		StorageID:      storage.ID,
		OwnerID:        "user-1",
		Name:           "holiday.jpg",
		Status:         model.FileStatusUploaded,
		Visibility:     model.VisibilityUser,
		MimeType:       "image/jpeg",
		GenericType:    model.GenericTypeImage,
		Extension:      ".jpg",
		CustomMetadata: model.JSONMap{"place": "Lyon"},
		Origin:         model.OriginLocal,
		VirtualPath:    "/holiday.jpg",
		Available:      true,
	}
	file.RealPath = file.ID.String() + file.Extension

	p := &pipeline{
		files:    mock.NewFileRepo(file),
		storages: mock.NewStorageRepo(storage),
		media:    mock.NewMediaRepo(),
		driver:   mock.NewDriver(),
		pub:      &mock.Publisher{},
		cache:    &mock.Cache{},
		tempDir:  t.TempDir(),
		file:     file,
		storage:  storage,
	}
	p.factory = &mock.DriverFactory{Driver: p.driver}
	if w > 0 && h > 0 {
		p.driver.Put(file, jpegBytes(t, w, h))
	}

	overlay, err := photo.NewOverlay()
	if err != nil {
		t.Fatalf("NewOverlay: %v", err)
	}
	p.proc = NewImageProcessor(
		p.files, p.storages, p.media, p.factory, p.pub, p.cache,
		photo.NewExtractor(""), overlay, p.tempDir, uuid.NewUUID,
	).(*imageProcessorSrv)
	return p
}

func (p *pipeline) current(t *testing.T) model.StoredFile {
	t.Helper()
	f, ok := p.files.Files[p.file.ID]
	if !ok {
		t.Fatalf("file #%s vanished", p.file.ID)
	}
	return f
}

func (p *pipeline) derived() []model.StoredFile {
	var out []model.StoredFile
	for _, f := range p.files.Files {
		if f.ID != p.file.ID {
			out = append(out, f)
		}
	}
	return out
}
