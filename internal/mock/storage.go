package mock

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

// Driver is an in-memory port.StorageDriver. Objects are keyed by remote path.
type Driver struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string

	// captured inputs
	Uploaded   []string
	Deleted    []string
	URLExpiry  time.Duration
	URLForced  bool
	Downloaded []string

	// errors
	DownloadErr error
	UploadErr   error
	ExistsErr   error
	DeleteErr   error
	URLErr      error
	// UploadErrAfter fails every upload once that many uploads succeeded. Zero disables it.
	UploadErrAfter int
	// AlwaysExists makes Exists report every remote path as taken.
	AlwaysExists bool

	// call flags
	DownloadCalled bool
	URLCalled      bool
}

var _ port.StorageDriver = (*Driver)(nil)

func NewDriver() *Driver {
	return &Driver{Objects: map[string][]byte{}, Types: map[string]string{}}
}

// Put stores data at the file's real path.
func (d *Driver) Put(file *model.StoredFile, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Objects[file.RealPath] = data
}

func (d *Driver) DownloadToPath(ctx context.Context, file *model.StoredFile, localPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.DownloadCalled = true
	d.Downloaded = append(d.Downloaded, file.RealPath)
	if d.DownloadErr != nil {
		return d.DownloadErr
	}
	data, ok := d.Objects[file.RealPath]
	if !ok {
		return port.ErrObjectNotFound
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(localPath, data, 0o644)
}

func (d *Driver) UploadFromPath(ctx context.Context, localPath, remotePath, contentType string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.UploadErr != nil {
		return d.UploadErr
	}
	if d.UploadErrAfter > 0 && len(d.Uploaded) >= d.UploadErrAfter {
		return port.ErrInternal
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	d.Objects[remotePath] = data
	d.Types[remotePath] = contentType
	d.Uploaded = append(d.Uploaded, remotePath)
	return nil
}

func (d *Driver) RealRemotePath(file *model.StoredFile, subfolder string) string {
	if subfolder = strings.Trim(subfolder, "/"); subfolder != "" {
		return subfolder + "/" + file.ID.String() + file.Extension
	}
	return file.ID.String() + file.Extension
}

func (d *Driver) Exists(ctx context.Context, remotePath string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ExistsErr != nil {
		return false, d.ExistsErr
	}
	_, ok := d.Objects[remotePath]
	return ok || d.AlwaysExists, nil
}

func (d *Driver) Delete(ctx context.Context, remotePath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Deleted = append(d.Deleted, remotePath)
	if d.DeleteErr != nil {
		return d.DeleteErr
	}
	delete(d.Objects, remotePath)
	return nil
}

func (d *Driver) DownloadURL(ctx context.Context, file *model.StoredFile, expiry time.Duration, forceDownload bool) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.URLCalled = true
	d.URLExpiry = expiry
	d.URLForced = forceDownload
	if d.URLErr != nil {
		return "", d.URLErr
	}
	u := "https://example.com/" + file.RealPath
	if forceDownload {
		u += "?download=1"
	}
	return u, nil
}

// DriverFactory returns the same Driver for every storage.
type DriverFactory struct {
	Driver port.StorageDriver
	Err    error
	Called bool
}

var _ port.DriverFactory = (*DriverFactory)(nil)

func (f *DriverFactory) ForStorage(ctx context.Context, storage *model.Storage) (port.StorageDriver, error) {
	f.Called = true
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Driver, nil
}
