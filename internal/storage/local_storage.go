package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// LocalStorage is the driver of LOCAL storages.
// Remote paths live in fs, local paths (temp copies) in disk.
type LocalStorage struct {
	fs        afero.Fs
	disk      afero.Fs
	storageID uuid.UUID
	rootPath  string
	signer    *URLSigner
	baseURL   string
}

// compile-time check: *LocalStorage must satisfy port.StorageDriver
var _ port.StorageDriver = (*LocalStorage)(nil)

func NewLocalStorage(fs, disk afero.Fs, storageID uuid.UUID, rootPath string, signer *URLSigner, baseURL string) *LocalStorage {
	return &LocalStorage{
		fs:        fs,
		disk:      disk,
		storageID: storageID,
		rootPath:  rootPath,
		signer:    signer,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (s *LocalStorage) DownloadToPath(ctx context.Context, file *model.StoredFile, localPath string) error {
	log.Printf("copying local file %q to %q...", file.RealPath, localPath)

	if err := s.disk.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create local directory: %w", err)
	}
	return copyFile(ctx, s.fs, file.RealPath, s.disk, localPath)
}

func (s *LocalStorage) UploadFromPath(ctx context.Context, localPath, remotePath, contentType string) error {
	log.Printf("storing local file %q as %q...", localPath, remotePath)

	if err := s.fs.MkdirAll(path.Dir(remotePath), 0o755); err != nil {
		return mapFsErr(err)
	}
	return copyFile(ctx, s.disk, localPath, s.fs, remotePath)
}

func (s *LocalStorage) RealRemotePath(file *model.StoredFile, subfolder string) string {
	return realRemotePath(s.rootPath, subfolder, file)
}

func (s *LocalStorage) Exists(ctx context.Context, remotePath string) (bool, error) {
	ok, err := afero.Exists(s.fs, remotePath)
	if err != nil {
		return false, mapFsErr(err)
	}
	return ok, nil
}

func (s *LocalStorage) Delete(ctx context.Context, remotePath string) error {
	log.Printf("removing local file %q...", remotePath)

	return mapFsErr(s.fs.Remove(remotePath))
}

// DownloadURL points at the API's local-files route with a signed token.
func (s *LocalStorage) DownloadURL(ctx context.Context, file *model.StoredFile, expiry time.Duration, forceDownload bool) (string, error) {
	token, err := s.signer.Sign(s.storageID, file.RealPath, expiry)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("token", token)
	if forceDownload {
		q.Set("download", "1")
	}
	return fmt.Sprintf("%s/local-files/%s/%s?%s", s.baseURL, s.storageID, file.RealPath, q.Encode()), nil
}

// Open returns a reader on a stored file.
func (s *LocalStorage) Open(remotePath string) (afero.File, error) {
	f, err := s.fs.Open(remotePath)
	if err != nil {
		return nil, mapFsErr(err)
	}
	return f, nil
}

// copyFile writes dst through a ".part" file renamed on success, so a failed
// copy never leaves a truncated dst behind.
func copyFile(ctx context.Context, srcFs afero.Fs, src string, dstFs afero.Fs, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := srcFs.Open(src)
	if err != nil {
		return mapFsErr(err)
	}
	defer in.Close()

	part := dst + ".part"
	out, err := dstFs.Create(part)
	if err != nil {
		return mapFsErr(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = dstFs.Remove(part)
		return fmt.Errorf("%w: %v", port.ErrInternal, err)
	}
	if err := out.Close(); err != nil {
		_ = dstFs.Remove(part)
		return mapFsErr(err)
	}
	if err := dstFs.Rename(part, dst); err != nil {
		_ = dstFs.Remove(part)
		return mapFsErr(err)
	}
	return nil
}
