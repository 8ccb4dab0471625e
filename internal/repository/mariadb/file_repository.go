package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type FileRepository struct {
	db *sql.DB
}

// compile-time check: *FileRepository must satisfy port.FileRepository
var _ port.FileRepository = (*FileRepository)(nil)

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

const fileColumns = `id, storage_id, owner_id, name, status, visibility, size, hash, mime_type, generic_type, extension,
        exif_metadata, custom_metadata, origin, original_path, real_path, virtual_path, available, excluded,
        created_by, updated_by, created_at, updated_at`

func (r *FileRepository) Create(ctx context.Context, f *model.StoredFile) error {
	log.Printf("creating database record for file #%s, at status %q...", f.ID, f.Status)

	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	const query = `
      INSERT INTO storage_files
        (` + fileColumns + `)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.StorageID, f.OwnerID, f.Name, f.Status, f.Visibility,
		f.Size, f.Hash, f.MimeType, f.GenericType, f.Extension,
		f.ExifMetadata, f.CustomMetadata, f.Origin, f.OriginalPath,
		f.RealPath, f.VirtualPath, f.Available, f.Excluded,
		f.CreatedBy, f.UpdatedBy, f.CreatedAt, f.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *FileRepository) Update(ctx context.Context, f *model.StoredFile) error {
	log.Printf("updating database record for file #%s, with status %q...", f.ID, f.Status)

	f.UpdatedAt = time.Now().UTC()

	const query = `
      UPDATE storage_files
      SET
        name            = ?,
        status          = ?,
        visibility      = ?,
        size            = ?,
        hash            = ?,
        mime_type       = ?,
        generic_type    = ?,
        extension       = ?,
        exif_metadata   = ?,
        custom_metadata = ?,
        original_path   = ?,
        real_path       = ?,
        virtual_path    = ?,
        available       = ?,
        excluded        = ?,
        updated_by      = ?,
        updated_at      = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		f.Name, f.Status, f.Visibility, f.Size, f.Hash,
		f.MimeType, f.GenericType, f.Extension,
		f.ExifMetadata, f.CustomMetadata, f.OriginalPath,
		f.RealPath, f.VirtualPath, f.Available, f.Excluded,
		f.UpdatedBy, f.UpdatedAt,
		f.ID, // WHERE clause
	)
	return mapWriteErr(err)
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StoredFile, error) {
	log.Printf("fetching file #%s from the database...", id)

	const query = `
      SELECT ` + fileColumns + `
      FROM storage_files
      WHERE id = ?
    `
	var f model.StoredFile
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.StorageID, &f.OwnerID, &f.Name, &f.Status, &f.Visibility,
		&f.Size, &f.Hash, &f.MimeType, &f.GenericType, &f.Extension,
		&f.ExifMetadata, &f.CustomMetadata, &f.Origin, &f.OriginalPath,
		&f.RealPath, &f.VirtualPath, &f.Available, &f.Excluded,
		&f.CreatedBy, &f.UpdatedBy, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &f, nil
}

func (r *FileRepository) VirtualPathExists(ctx context.Context, storageID uuid.UUID, virtualPath string) (bool, error) {
	const query = `
      SELECT EXISTS(
        SELECT 1 FROM storage_files
        WHERE storage_id = ? AND virtual_path = ? AND status <> 'DELETED'
      )
    `
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, storageID, virtualPath).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *FileRepository) ListByStatusBefore(ctx context.Context, statuses []model.FileStatus, genericType model.GenericType, before time.Time) ([]uuid.UUID, error) {
	log.Printf("listing %s files in status %v not updated since %s...", genericType, statuses, before.Format(time.RFC3339))

	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	query := fmt.Sprintf(`
      SELECT id
      FROM storage_files
      WHERE generic_type = ? AND status IN (%s) AND updated_at < ?
      ORDER BY updated_at
    `, placeholders)

	args := make([]any, 0, len(statuses)+2)
	args = append(args, genericType)
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, before)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
