package model

import (
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type StorageType string

const (
	StorageTypeLocal    StorageType = "LOCAL"
	StorageTypeAmazonS3 StorageType = "AMAZON_S3"
)

// Storage is one configured backend. Credentials are decoded by the driver factory
// according to Type.
type Storage struct {
	ID                        uuid.UUID   `json:"id"`
	Name                      string      `json:"name"`
	Type                      StorageType `json:"type"`
	Credentials               RawJSON     `json:"-"`
	MediaConvertConfiguration RawJSON     `json:"media_convert_configuration"`
	CreatedAt                 time.Time   `json:"created_at"`
	UpdatedAt                 time.Time   `json:"updated_at"`
}
