package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/mock"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

func TestPickAsset(t *testing.T) {
	orig := assetCandidate{uuid.NewUUID(), 4000, 3000}
	r1 := assetCandidate{uuid.NewUUID(), 1152, 864}
	r2 := assetCandidate{uuid.NewUUID(), 800, 600}
	th := assetCandidate{uuid.NewUUID(), 240, 180}
	all := []assetCandidate{orig, r1, r2, th}

	tests := []struct {
		name          string
		width, height int
		want          assetCandidate
	}{
		{"tiny request", 100, 100, th},
		{"exact rendition", 800, 600, r2},
		{"between renditions", 900, 600, r1},
		{"width only", 1000, 0, r1},
		{"height only", 0, 700, r1},
		{"bigger than everything", 9000, 9000, orig},
		{"original size", 4000, 3000, orig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pickAsset(all, tc.width, tc.height)
			if got.fileID != tc.want.fileID {
				t.Errorf("pickAsset(%d, %d) = %dx%d; want %dx%d", tc.width, tc.height, got.width, got.height, tc.want.width, tc.want.height)
			}
		})
	}
}

func TestCachedURLEncoding(t *testing.T) {
	exp := time.Unix(1714564800, 0)
	url, got, ok := decodeCachedURL(encodeCachedURL("https://x/y?a=1 b", exp))
	if !ok || url != "https://x/y?a=1 b" || !got.Equal(exp) {
		t.Errorf("decode = %q %v %v", url, got, ok)
	}
	for _, raw := range []string{"https://x/y", "abc https://x/y", "123 "} {
		if _, _, ok := decodeCachedURL(raw); ok {
			t.Errorf("decodeCachedURL(%q) should fail", raw)
		}
	}
}

type linkFixture struct {
	files  *mock.FileRepo
	media  *mock.MediaRepo
	driver *mock.Driver
	cache  *mock.Cache
	parent model.StoredFile
	svc    *downloadLinkSrv
	now    time.Time
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()
	storage := &model.Storage{ID: uuid.NewUUID(), Type: model.StorageTypeLocal}
	f := &linkFixture{
		files:  mock.NewFileRepo(),
		media:  mock.NewMediaRepo(),
		driver: mock.NewDriver(),
		cache:  &mock.Cache{},
		parent: publishedImage(storage.ID),
		now:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.files.Files[f.parent.ID] = f.parent
	f.svc = NewDownloadLinkGenerator(
		f.files, mock.NewStorageRepo(storage), f.media, &mock.DriverFactory{Driver: f.driver}, f.cache, time.Hour,
	).(*downloadLinkSrv)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestGenerateDownloadLink_Original(t *testing.T) {
	f := newLinkFixture(t)

	out, err := f.svc.GenerateDownloadLink(context.Background(), port.DownloadLinkInput{FileID: f.parent.ID, Download: true})
	if err != nil {
		t.Fatalf("GenerateDownloadLink: %v", err)
	}
	if out.URL != "https://example.com/orig.jpg?download=1" || out.FileID != f.parent.ID {
		t.Errorf("out = %+v", out)
	}
	if !out.ExpiresAt.Equal(f.now.Add(time.Hour)) {
		t.Errorf("expires at = %v; want %v", out.ExpiresAt, f.now.Add(time.Hour))
	}
	if f.driver.URLExpiry != time.Hour || !f.driver.URLForced {
		t.Errorf("driver called with %v forced=%v", f.driver.URLExpiry, f.driver.URLForced)
	}
	if f.cache.URLTTL != time.Hour-time.Minute {
		t.Errorf("cache ttl = %v; want 59m", f.cache.URLTTL)
	}
}

func TestGenerateDownloadLink_CacheHit(t *testing.T) {
	f := newLinkFixture(t)
	exp := f.now.Add(30 * time.Minute)
	f.cache.URLs = map[string]string{"INLINE_" + f.parent.ID.String(): encodeCachedURL("https://cached/url", exp)}

	out, err := f.svc.GenerateDownloadLink(context.Background(), port.DownloadLinkInput{FileID: f.parent.ID})
	if err != nil {
		t.Fatalf("GenerateDownloadLink: %v", err)
	}
	if out.URL != "https://cached/url" || !out.ExpiresAt.Equal(exp) {
		t.Errorf("out = %+v", out)
	}
	if f.driver.URLCalled {
		t.Error("a cached link should not be signed again")
	}
}

func TestGenerateDownloadLink_CacheErrorFallsBack(t *testing.T) {
	f := newLinkFixture(t)
	f.cache.GetURLErr = errors.New("redis down")

	if _, err := f.svc.GenerateDownloadLink(context.Background(), port.DownloadLinkInput{FileID: f.parent.ID}); err != nil {
		t.Fatalf("GenerateDownloadLink: %v", err)
	}
	if !f.driver.URLCalled {
		t.Error("the driver should sign a link when the cache fails")
	}
}

func TestGenerateDownloadLink_BestAsset(t *testing.T) {
	f := newLinkFixture(t)
	sized, thumb := seedMedia(f.files, f.media, f.parent)

	tests := []struct {
		name          string
		width, height int
		want          uuid.UUID
	}{
		{"thumbnail", 200, 150, thumb.ID},
		{"rendition", 1000, 0, sized.ID},
		{"original", 2000, 1500, f.parent.ID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := f.svc.GenerateDownloadLink(context.Background(), port.DownloadLinkInput{FileID: f.parent.ID, Width: tc.width, Height: tc.height})
			if err != nil {
				t.Fatalf("GenerateDownloadLink: %v", err)
			}
			if out.FileID != tc.want {
				t.Errorf("file id = %s; want %s", out.FileID, tc.want)
			}
		})
	}
}

func TestGenerateDownloadLink_UnavailableAssetFallsBack(t *testing.T) {
	f := newLinkFixture(t)
	_, thumb := seedMedia(f.files, f.media, f.parent)
	thumb.Available = false
	f.files.Files[thumb.ID] = thumb

	out, err := f.svc.GenerateDownloadLink(context.Background(), port.DownloadLinkInput{FileID: f.parent.ID, Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("GenerateDownloadLink: %v", err)
	}
	if out.FileID != f.parent.ID {
		t.Errorf("file id = %s; want the original", out.FileID)
	}
}

func TestGenerateDownloadLink_Unavailable(t *testing.T) {
	tests := map[string]func(*model.StoredFile){
		"trashed":       func(f *model.StoredFile) { f.Excluded = true },
		"not available": func(f *model.StoredFile) { f.Available = false },
		"deleted":       func(f *model.StoredFile) { f.Status = model.FileStatusDeleted },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			f := newLinkFixture(t)
			p := f.files.Files[f.parent.ID]
			mutate(&p)
			f.files.Files[p.ID] = p

			_, err := f.svc.GenerateDownloadLink(context.Background(), port.DownloadLinkInput{FileID: p.ID})
			if !errors.Is(err, ErrFileUnavailable) {
				t.Fatalf("error = %v; want ErrFileUnavailable", err)
			}
		})
	}
}

func TestGenerateDownloadLink_NotFound(t *testing.T) {
	f := newLinkFixture(t)
	if _, err := f.svc.GenerateDownloadLink(context.Background(), port.DownloadLinkInput{FileID: uuid.NewUUID()}); !errors.Is(err, port.ErrRecordNotFound) {
		t.Fatalf("error = %v; want ErrRecordNotFound", err)
	}
}
