package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/afero"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type cachedS3 struct {
	credentials string
	driver      port.StorageDriver
}

// Factory selects the driver matching a storage's type.
// S3 drivers are cached per storage and rebuilt when its credentials change.
type Factory struct {
	localFs       afero.Fs
	disk          afero.Fs
	signer        *URLSigner
	publicBaseURL string
	newS3         func(ctx context.Context, creds S3Credentials) (port.StorageDriver, error)

	mu sync.Mutex
	s3 map[uuid.UUID]cachedS3
}

// compile-time check: *Factory must satisfy port.DriverFactory
var _ port.DriverFactory = (*Factory)(nil)

func NewFactory(localFs afero.Fs, signer *URLSigner, publicBaseURL string) *Factory {
	return &Factory{
		localFs:       localFs,
		disk:          afero.NewOsFs(),
		signer:        signer,
		publicBaseURL: publicBaseURL,
		newS3: func(ctx context.Context, creds S3Credentials) (port.StorageDriver, error) {
			return NewMinioStorage(ctx, creds)
		},
		s3: make(map[uuid.UUID]cachedS3),
	}
}

// LocalFs is the filesystem backing every LOCAL storage.
func (f *Factory) LocalFs() afero.Fs {
	return f.localFs
}

func (f *Factory) ForStorage(ctx context.Context, st *model.Storage) (port.StorageDriver, error) {
	switch st.Type {
	case model.StorageTypeLocal:
		creds, err := parseLocalCredentials(st.Credentials)
		if err != nil {
			return nil, err
		}
		return NewLocalStorage(f.localFs, f.disk, st.ID, creds.RootPath, f.signer, f.publicBaseURL), nil

	case model.StorageTypeAmazonS3:
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.s3[st.ID]; ok && c.credentials == string(st.Credentials) {
			return c.driver, nil
		}
		creds, err := parseS3Credentials(st.Credentials)
		if err != nil {
			return nil, err
		}
		drv, err := f.newS3(ctx, creds)
		if err != nil {
			return nil, err
		}
		f.s3[st.ID] = cachedS3{credentials: string(st.Credentials), driver: drv}
		return drv, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStorage, st.Type)
	}
}
