package port

import (
	"context"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
)

// StorageDriver moves file bytes between the local disk and one storage backend.
type StorageDriver interface {
	// DownloadToPath copies the remote object of file to localPath.
	DownloadToPath(ctx context.Context, file *model.StoredFile, localPath string) error
	UploadFromPath(ctx context.Context, localPath, remotePath, contentType string) error
	// RealRemotePath returns [root/][subfolder/]<id><ext>.
	RealRemotePath(file *model.StoredFile, subfolder string) string
	Exists(ctx context.Context, remotePath string) (bool, error)
	Delete(ctx context.Context, remotePath string) error
	DownloadURL(ctx context.Context, file *model.StoredFile, expiry time.Duration, forceDownload bool) (string, error)
}

// DriverFactory resolves the driver of a storage.
type DriverFactory interface {
	ForStorage(ctx context.Context, storage *model.Storage) (StorageDriver, error)
}
