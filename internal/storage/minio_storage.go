package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

// MinioStorage is the driver of AMAZON_S3 storages.
type MinioStorage struct {
	client     minioClient
	bucketName string
	rootFolder string
}

// compile-time check: *MinioStorage must satisfy port.StorageDriver
var _ port.StorageDriver = (*MinioStorage)(nil)

func NewMinioStorage(ctx context.Context, creds S3Credentials) (*MinioStorage, error) {
	log.Printf("initialising minio client for endpoint %q...", creds.Endpoint)
	client, err := minio.New(creds.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure: creds.UseSSL,
		Region: creds.Region,
	})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return newMinioStorage(ctx, client, creds.Bucket, creds.RootFolder)
}

func newMinioStorage(ctx context.Context, client minioClient, bucket, rootFolder string) (*MinioStorage, error) {
	ok, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, mapMinioErr(err)
	}
	if !ok {
		log.Printf("bucket %q does not exist, creating it...", bucket)
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, mapMinioErr(err)
		}
	}
	return &MinioStorage{client: client, bucketName: bucket, rootFolder: rootFolder}, nil
}

func (s *MinioStorage) DownloadToPath(ctx context.Context, file *model.StoredFile, localPath string) error {
	log.Printf("downloading file %q from bucket %q...", file.RealPath, s.bucketName)

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create local directory: %w", err)
	}
	if err := s.client.FGetObject(ctx, s.bucketName, file.RealPath, localPath, minio.GetObjectOptions{}); err != nil {
		return mapMinioErr(err)
	}
	return nil
}

func (s *MinioStorage) UploadFromPath(ctx context.Context, localPath, remotePath, contentType string) error {
	log.Printf("uploading file %q into bucket %q...", remotePath, s.bucketName)

	_, err := s.client.FPutObject(ctx, s.bucketName, remotePath, localPath, minio.PutObjectOptions{ContentType: contentType})
	return mapMinioErr(err)
}

func (s *MinioStorage) RealRemotePath(file *model.StoredFile, subfolder string) string {
	return realRemotePath(s.rootFolder, subfolder, file)
}

func (s *MinioStorage) Exists(ctx context.Context, remotePath string) (bool, error) {
	log.Printf("checking if file %q exists in bucket %q...", remotePath, s.bucketName)

	_, err := s.client.StatObject(ctx, s.bucketName, remotePath, minio.StatObjectOptions{})
	err = mapMinioErr(err)
	if errors.Is(err, port.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MinioStorage) Delete(ctx context.Context, remotePath string) error {
	log.Printf("removing file %q from bucket %q...", remotePath, s.bucketName)

	return mapMinioErr(s.client.RemoveObject(ctx, s.bucketName, remotePath, minio.RemoveObjectOptions{}))
}

func (s *MinioStorage) DownloadURL(ctx context.Context, file *model.StoredFile, expiry time.Duration, forceDownload bool) (string, error) {
	log.Printf("generating a presigned download link for file %q in bucket %q...", file.RealPath, s.bucketName)

	disposition := "inline"
	if forceDownload {
		disposition = "attachment"
	}
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("%s; filename=%q", disposition, file.Name))

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucketName, file.RealPath, expiry, params)
	if err != nil {
		return "", mapMinioErr(err)
	}
	return presignedURL.String(), nil
}
