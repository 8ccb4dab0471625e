package mariadb

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

func TestStorageRepository_GetByID(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewStorageRepository(sqlDB)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM storages`)).WithArgs(storageID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "credentials", "media_convert_configuration", "created_at", "updated_at"}).
			AddRow(idBytes(storageID), "main", "LOCAL", []byte(`{"root_path":"a"}`), nil, now, now))

	s, err := repo.GetByID(context.Background(), storageID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if s.Type != model.StorageTypeLocal || string(s.Credentials) != `{"root_path":"a"}` {
		t.Errorf("storage = %+v", s)
	}
	if s.MediaConvertConfiguration != nil {
		t.Errorf("media convert configuration = %s; want nil", s.MediaConvertConfiguration)
	}
}

func TestStorageRepository_GetByID_NotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewStorageRepository(sqlDB)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM storages`)).WithArgs(storageID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), storageID); !errors.Is(err, port.ErrRecordNotFound) {
		t.Errorf("error = %v; want ErrRecordNotFound", err)
	}
}
