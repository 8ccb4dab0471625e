package mariadb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fhuszti/filemgr-ms-go/internal/db"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if db.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %v", port.ErrDuplicateAsset, err)
	}
	return err
}

func mapReadErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return port.ErrRecordNotFound
	}
	return err
}
