package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fhuszti/filemgr-ms-go/internal/event"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

const twoSizesConfig = `{"image_resizer":{"sizes":["1280x864","800x600"]}}`

func TestProcessImage_EndToEnd(t *testing.T) {
	p := newPipeline(t, 4000, 3000, twoSizesConfig)

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	if len(p.media.Items) != 1 {
		t.Fatalf("media items = %d; want 1", len(p.media.Items))
	}
	if len(p.media.Images) != 1 {
		t.Fatalf("media images = %d; want 1", len(p.media.Images))
	}
	for _, img := range p.media.Images {
		if img.SizeTag != model.SizeTag3K || img.Width != 4000 || img.Height != 3000 {
			t.Errorf("image = %s %dx%d; want SIZE_3K 4000x3000", img.SizeTag, img.Width, img.Height)
		}
		if img.Megapixels != 12 {
			t.Errorf("megapixels = %v; want 12", img.Megapixels)
		}
	}

	if len(p.media.Sized) != 2 {
		t.Fatalf("renditions = %d; want 2", len(p.media.Sized))
	}
	dims := map[[2]int]bool{}
	for _, s := range p.media.Sized {
		dims[[2]int{s.Width, s.Height}] = true
	}
	if !dims[[2]int{1152, 864}] || !dims[[2]int{800, 600}] {
		t.Errorf("rendition sizes = %v; want 1152x864 and 800x600", dims)
	}

	if len(p.media.Thumbnails) != 3 {
		t.Fatalf("thumbnails = %d; want 3", len(p.media.Thumbnails))
	}
	tags := map[model.SizeTag]bool{}
	for _, th := range p.media.Thumbnails {
		tags[th.SizeTag] = true
	}
	for _, tag := range []model.SizeTag{model.SizeTagThumbLarge, model.SizeTagThumbMedium, model.SizeTagThumbSmall} {
		if !tags[tag] {
			t.Errorf("missing %s thumbnail", tag)
		}
	}

	got := p.current(t)
	if got.Status != model.FileStatusPublished {
		t.Errorf("status = %s; want PUBLISHED", got.Status)
	}
	if got.Hash == "" || got.Size == 0 {
		t.Errorf("hash/size not recorded: %q / %d", got.Hash, got.Size)
	}

	derived := p.derived()
	if len(derived) != 5 {
		t.Fatalf("derived files = %d; want 5", len(derived))
	}
	for _, f := range derived {
		if f.Status != model.FileStatusPublished || f.Origin != model.OriginSystem || !f.Available {
			t.Errorf("derived #%s = %s/%s available=%v", f.ID, f.Status, f.Origin, f.Available)
		}
		if f.Extension != ".jpg" || f.MimeType != "image/jpeg" || f.GenericType != model.GenericTypeImage {
			t.Errorf("derived #%s type = %s %s %s", f.ID, f.Extension, f.MimeType, f.GenericType)
		}
		if f.OwnerID != "user-1" || f.Name != "holiday.jpg" || f.CustomMetadata["place"] != "Lyon" {
			t.Errorf("derived #%s did not inherit from parent: %+v", f.ID, f)
		}
		if !strings.HasPrefix(f.RealPath, "resized/SIZE_") {
			t.Errorf("derived real path = %q", f.RealPath)
		}
		if _, ok := p.driver.Objects[f.RealPath]; !ok {
			t.Errorf("derived #%s was not uploaded", f.ID)
		}
	}

	topics := p.pub.Topics()
	if len(topics) != 2 || topics[0] != event.TopicProcessingStarted || topics[1] != event.TopicProcessingFinished {
		t.Errorf("topics = %v", topics)
	}
	if _, err := os.Stat(filepath.Join(p.tempDir, p.file.ID.String())); !os.IsNotExist(err) {
		t.Error("local copy of the original should be removed once published")
	}
	if !p.cache.DelFileCalled || !p.cache.DelEtagFileCalled {
		t.Error("file details cache should be invalidated")
	}
}

func TestProcessImage_SkipsUpscale(t *testing.T) {
	p := newPipeline(t, 1600, 1200, `{"image_resizer":{"sizes":["9000x9000"]}}`)

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if len(p.media.Sized) != 0 {
		t.Errorf("renditions = %d; want 0", len(p.media.Sized))
	}
	if len(p.media.Thumbnails) != 3 {
		t.Errorf("thumbnails = %d; want 3", len(p.media.Thumbnails))
	}
	if got := p.current(t); got.Status != model.FileStatusPublished {
		t.Errorf("status = %s; want PUBLISHED", got.Status)
	}
}

func TestProcessImage_RetryCreatesEachAssetOnce(t *testing.T) {
	p := newPipeline(t, 1600, 1200, twoSizesConfig)
	ctx := context.Background()

	// the first thumbnail upload fails
	p.driver.UploadErrAfter = 2
	err := p.proc.ProcessImage(ctx, p.file.ID, false)
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("first run error = %v; want ErrStorageWrite", err)
	}
	if got := p.current(t); got.Status != model.FileStatusError {
		t.Fatalf("status after failure = %s; want ERROR", got.Status)
	}
	if len(p.media.Sized) != 2 || len(p.media.Thumbnails) != 0 {
		t.Fatalf("after failure: %d renditions, %d thumbnails", len(p.media.Sized), len(p.media.Thumbnails))
	}

	p.driver.UploadErrAfter = 0
	if err := p.proc.ProcessImage(ctx, p.file.ID, false); err != nil {
		t.Fatalf("retry: %v", err)
	}
	// a redelivery after success changes nothing
	if err := p.proc.ProcessImage(ctx, p.file.ID, false); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	if len(p.media.Items) != 1 || len(p.media.Images) != 1 {
		t.Errorf("items/images = %d/%d; want 1/1", len(p.media.Items), len(p.media.Images))
	}
	if len(p.media.Sized) != 2 {
		t.Errorf("renditions = %d; want 2", len(p.media.Sized))
	}
	if len(p.media.Thumbnails) != 3 {
		t.Errorf("thumbnails = %d; want 3", len(p.media.Thumbnails))
	}
	if n := len(p.derived()); n != 5 {
		t.Errorf("derived files = %d; want 5", n)
	}
	if got := p.current(t); got.Status != model.FileStatusPublished {
		t.Errorf("status = %s; want PUBLISHED", got.Status)
	}
}

func TestProcessImage_AlreadyPublished(t *testing.T) {
	p := newPipeline(t, 1600, 1200, twoSizesConfig)
	f := p.files.Files[p.file.ID]
	f.Status = model.FileStatusPublished
	p.files.Files[p.file.ID] = f

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if p.driver.DownloadCalled || len(p.pub.Events) != 0 || len(p.media.Items) != 0 {
		t.Error("a published file should not be processed again")
	}
}

func TestProcessImage_InvalidStatus(t *testing.T) {
	for _, status := range []model.FileStatus{model.FileStatusNotUploaded, model.FileStatusUploading, model.FileStatusDeleted} {
		t.Run(string(status), func(t *testing.T) {
			p := newPipeline(t, 1600, 1200, twoSizesConfig)
			f := p.files.Files[p.file.ID]
			f.Status = status
			p.files.Files[p.file.ID] = f

			err := p.proc.ProcessImage(context.Background(), p.file.ID, false)
			if !errors.Is(err, ErrInvalidStatus) {
				t.Fatalf("error = %v; want ErrInvalidStatus", err)
			}
			if got := p.current(t); got.Status != status {
				t.Errorf("status = %s; want unchanged %s", got.Status, status)
			}
			if len(p.pub.Events) != 0 {
				t.Errorf("events = %v; want none", p.pub.Topics())
			}
		})
	}
}

func TestProcessImage_FileNotFound(t *testing.T) {
	p := newPipeline(t, 0, 0, twoSizesConfig)
	delete(p.files.Files, p.file.ID)

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); !errors.Is(err, port.ErrRecordNotFound) {
		t.Fatalf("error = %v; want ErrRecordNotFound", err)
	}
}

func TestProcessImage_UnsupportedConfiguration(t *testing.T) {
	tests := map[string]string{
		"missing":   "",
		"malformed": `{"image_resizer":{"sizes":["big"]}}`,
		"no sizes":  `{"image_info_bar":{}}`,
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			p := newPipeline(t, 1600, 1200, cfg)

			err := p.proc.ProcessImage(context.Background(), p.file.ID, false)
			if !errors.Is(err, ErrUnsupportedConfiguration) || !errors.Is(err, model.ErrInvalidConvertConfig) {
				t.Fatalf("error = %v; want ErrUnsupportedConfiguration", err)
			}
			if got := p.current(t); got.Status != model.FileStatusError {
				t.Errorf("status = %s; want ERROR", got.Status)
			}
			if topics := p.pub.Topics(); len(topics) != 1 || topics[0] != event.TopicProcessingFailed {
				t.Errorf("topics = %v; want [%s]", topics, event.TopicProcessingFailed)
			}
		})
	}
}

func TestProcessImage_SourceUnavailable(t *testing.T) {
	p := newPipeline(t, 0, 0, twoSizesConfig)

	err := p.proc.ProcessImage(context.Background(), p.file.ID, false)
	if !errors.Is(err, ErrSourceUnavailable) || !errors.Is(err, port.ErrObjectNotFound) {
		t.Fatalf("error = %v; want ErrSourceUnavailable", err)
	}
	if got := p.current(t); got.Status != model.FileStatusError {
		t.Errorf("status = %s; want ERROR", got.Status)
	}
}

func TestProcessImage_UndecodableSource(t *testing.T) {
	p := newPipeline(t, 0, 0, twoSizesConfig)
	p.driver.Put(p.file, []byte("definitely not an image"))

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("error = %v; want ErrSourceUnavailable", err)
	}
}

func TestProcessImage_UsesLocalCopy(t *testing.T) {
	p := newPipeline(t, 0, 0, `{"image_resizer":{"sizes":[]}}`)
	writeTemp(t, p.tempDir, p.file.ID.String(), jpegBytes(t, 800, 600))

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if p.driver.DownloadCalled {
		t.Error("the local copy should be used instead of downloading")
	}
	for _, img := range p.media.Images {
		if img.SizeTag != model.SizeTagVGA {
			t.Errorf("size tag = %s; want SIZE_VGA", img.SizeTag)
		}
	}
}

func TestProcessImage_ReplacesBrokenLocalCopy(t *testing.T) {
	p := newPipeline(t, 4000, 3000, twoSizesConfig)
	writeTemp(t, p.tempDir, p.file.ID.String(), []byte("\xff\xd8\xff"))

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if !p.driver.DownloadCalled {
		t.Error("a broken local copy should be downloaded again")
	}
	if got := p.current(t).Status; got != model.FileStatusPublished {
		t.Errorf("status = %s; want PUBLISHED", got)
	}
	if len(p.media.Sized) != 2 {
		t.Errorf("renditions = %d; want 2", len(p.media.Sized))
	}
}

func TestProcessImage_UndecodableDownloadIsRemoved(t *testing.T) {
	p := newPipeline(t, 0, 0, twoSizesConfig)
	p.driver.Put(p.file, []byte("\xff\xd8\xff"))

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("error = %v; want ErrSourceUnavailable", err)
	}
	if _, err := os.Stat(filepath.Join(p.tempDir, p.file.ID.String())); !os.IsNotExist(err) {
		t.Error("an undecodable download should not be kept for the next attempt")
	}
}

func TestProcessImage_ForcedRunAddsNewSizes(t *testing.T) {
	p := newPipeline(t, 4000, 3000, `{"image_resizer":{"sizes":["800x600"]}}`)
	ctx := context.Background()

	if err := p.proc.ProcessImage(ctx, p.file.ID, false); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(p.media.Sized) != 1 {
		t.Fatalf("renditions = %d; want 1", len(p.media.Sized))
	}

	p.storage.MediaConvertConfiguration = model.RawJSON(twoSizesConfig)
	p.storages.Storages[p.storage.ID] = *p.storage

	if err := p.proc.ProcessImage(ctx, p.file.ID, false); err != nil {
		t.Fatalf("unforced rerun: %v", err)
	}
	if len(p.media.Sized) != 1 {
		t.Fatalf("renditions after unforced rerun = %d; want 1", len(p.media.Sized))
	}

	uploadsBefore := len(p.derived())
	if err := p.proc.ProcessImage(ctx, p.file.ID, true); err != nil {
		t.Fatalf("forced rerun: %v", err)
	}
	if len(p.media.Sized) != 2 {
		t.Fatalf("renditions after forced rerun = %d; want 2", len(p.media.Sized))
	}
	if len(p.media.Thumbnails) != 3 || len(p.media.Items) != 1 || len(p.media.Images) != 1 {
		t.Errorf("thumbnails=%d items=%d images=%d; want 3 1 1",
			len(p.media.Thumbnails), len(p.media.Items), len(p.media.Images))
	}
	if got := len(p.derived()) - uploadsBefore; got != 1 {
		t.Errorf("new derived files = %d; want 1", got)
	}
	if got := p.current(t).Status; got != model.FileStatusPublished {
		t.Errorf("status = %s; want PUBLISHED", got)
	}
}

func TestProcessImage_DuplicateAssetRace(t *testing.T) {
	p := newPipeline(t, 1600, 1200, `{"image_resizer":{"sizes":["800x600"]}}`)
	p.media.RaceOnCreate = true

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if len(p.driver.Deleted) != 1 {
		t.Fatalf("deleted objects = %v; want the orphan only", p.driver.Deleted)
	}
	orphans := 0
	for _, f := range p.derived() {
		if f.RealPath == p.driver.Deleted[0] {
			orphans++
			if f.Status != model.FileStatusDeleted || f.Available {
				t.Errorf("orphan = %s available=%v; want DELETED and unavailable", f.Status, f.Available)
			}
		}
	}
	if orphans != 1 {
		t.Errorf("orphans = %d; want 1", orphans)
	}
	if got := p.current(t); got.Status != model.FileStatusPublished {
		t.Errorf("status = %s; want PUBLISHED", got.Status)
	}
}

func TestProcessImage_CanceledContextMarksError(t *testing.T) {
	p := newPipeline(t, 1600, 1200, twoSizesConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.proc.ProcessImage(ctx, p.file.ID, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v; want context.Canceled", err)
	}
	if got := p.current(t); got.Status != model.FileStatusError {
		t.Errorf("status = %s; want ERROR", got.Status)
	}
	topics := p.pub.Topics()
	if len(topics) == 0 || topics[len(topics)-1] != event.TopicProcessingFailed {
		t.Errorf("topics = %v; want a trailing %s", topics, event.TopicProcessingFailed)
	}
}

func TestProcessImage_InfoBarOnRenditions(t *testing.T) {
	cfg := `{"image_resizer":{"sizes":["800x600"]},"image_info_bar":{"position":"BOTTOM","background_color":"#000000","height_ratio":0.1}}`
	p := newPipeline(t, 1600, 1200, cfg)

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	var sizedPath string
	for _, s := range p.media.Sized {
		sizedPath = p.files.Files[s.StorageFileID].RealPath
	}
	img, _, err := image.Decode(bytes.NewReader(p.driver.Objects[sizedPath]))
	if err != nil {
		t.Fatalf("decode rendition: %v", err)
	}
	if r, _, _, _ := img.At(400, 590).RGBA(); r>>8 > 60 {
		t.Errorf("bar pixel red = %d; want dark", r>>8)
	}
	if r, _, _, _ := img.At(400, 100).RGBA(); r>>8 < 200 {
		t.Errorf("image pixel red = %d; want white", r>>8)
	}
}

func TestProcessImage_WebpOutput(t *testing.T) {
	p := newPipeline(t, 1600, 1200, `{"image_resizer":{"sizes":["800x600"],"format":"WEBP"}}`)

	if err := p.proc.ProcessImage(context.Background(), p.file.ID, false); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	for _, f := range p.derived() {
		if f.Extension != ".webp" || f.MimeType != "image/webp" {
			t.Errorf("derived #%s = %s %s; want .webp image/webp", f.ID, f.Extension, f.MimeType)
		}
		if p.driver.Types[f.RealPath] != "image/webp" {
			t.Errorf("uploaded content type = %q", p.driver.Types[f.RealPath])
		}
	}
}
