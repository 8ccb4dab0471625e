package mariadb

import (
	"context"
	"database/sql"
	"log"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type StorageRepository struct {
	db *sql.DB
}

// compile-time check: *StorageRepository must satisfy port.StorageRepository
var _ port.StorageRepository = (*StorageRepository)(nil)

func NewStorageRepository(db *sql.DB) *StorageRepository {
	return &StorageRepository{db: db}
}

func (r *StorageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Storage, error) {
	log.Printf("fetching storage #%s from the database...", id)

	const query = `
      SELECT id, name, type, credentials, media_convert_configuration, created_at, updated_at
      FROM storages
      WHERE id = ?
    `
	var s model.Storage
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Type, &s.Credentials, &s.MediaConvertConfiguration, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &s, nil
}
