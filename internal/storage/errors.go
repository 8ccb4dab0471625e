package storage

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/minio/minio-go/v7"

	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

var (
	ErrUnsupportedStorage = errors.New("unsupported storage type")
	ErrInvalidCredentials = errors.New("invalid storage credentials")
	ErrInvalidToken       = errors.New("invalid local file token")
)

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey":
		return port.ErrObjectNotFound
	case "NoSuchBucket":
		return fmt.Errorf("%w: bucket %q", port.ErrObjectNotFound, resp.BucketName)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return port.ErrUnauthorized
	default:
		// catch everything else
		return fmt.Errorf("%w: %v", port.ErrInternal, err)
	}
}

func mapFsErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return port.ErrObjectNotFound
	}
	if errors.Is(err, fs.ErrPermission) {
		return port.ErrUnauthorized
	}
	return fmt.Errorf("%w: %v", port.ErrInternal, err)
}
