package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// S3Storage describes a storage row backed by a MinIO bucket.
type S3Storage struct {
	ID            uuid.UUID
	Endpoint      string
	Bucket        string
	ConvertConfig string
}

// InsertS3Storage writes the storage row. Storages are managed outside this service,
// so there is no repository method for it.
func InsertS3Storage(t *testing.T, db *sql.DB, s S3Storage) {
	t.Helper()
	creds, err := json.Marshal(map[string]any{
		"endpoint":   s.Endpoint,
		"access_key": MinioAccessKey,
		"secret_key": MinioSecretKey,
		"bucket":     s.Bucket,
		"use_ssl":    false,
	})
	if err != nil {
		t.Fatalf("marshal credentials: %v", err)
	}
	var convert any
	if s.ConvertConfig != "" {
		convert = s.ConvertConfig
	}
	_, err = db.ExecContext(context.Background(),
		`INSERT INTO storages (id, name, type, credentials, media_convert_configuration) VALUES (?, ?, ?, ?, ?)`,
		s.ID, "it-"+s.Bucket, model.StorageTypeAmazonS3, string(creds), convert,
	)
	if err != nil {
		t.Fatalf("insert storage: %v", err)
	}
}
