package event

import (
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// Version is the schema version stamped on every FileEvent.
const Version = 1

const (
	TopicProcessingStarted  = "storage_file_processing_started"
	TopicProcessingFinished = "storage_file_processing_finished"
	TopicProcessingFailed   = "storage_file_processing_failed"
	TopicPublished          = "storage_file_published"
)

// FileUploadedTopic is scoped to the storage the file landed in.
func FileUploadedTopic(storageID uuid.UUID) string {
	return "storages." + storageID.String() + ".file_uploaded"
}

// FileSnapshot is the subset of a stored file consumers are allowed to rely on.
type FileSnapshot struct {
	ID             uuid.UUID         `json:"id"`
	StorageID      uuid.UUID         `json:"storage_id"`
	OwnerID        string            `json:"owner_id"`
	Name           string            `json:"name"`
	Status         model.FileStatus  `json:"status"`
	Visibility     model.Visibility  `json:"visibility"`
	Size           int64             `json:"size"`
	Hash           string            `json:"hash"`
	MimeType       string            `json:"mime_type"`
	GenericType    model.GenericType `json:"generic_type"`
	Extension      string            `json:"extension"`
	CustomMetadata model.JSONMap     `json:"custom_metadata"`
	RealPath       string            `json:"real_path"`
	VirtualPath    string            `json:"virtual_path"`
	Available      bool              `json:"available"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type FileEvent struct {
	Version    int          `json:"version"`
	Topic      string       `json:"topic"`
	OccurredAt time.Time    `json:"occurred_at"`
	File       FileSnapshot `json:"file"`
}

// NewFileEvent snapshots f under topic.
func NewFileEvent(topic string, f *model.StoredFile) FileEvent {
	return FileEvent{
		Version:    Version,
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		File: FileSnapshot{
			ID:             f.ID,
			StorageID:      f.StorageID,
			OwnerID:        f.OwnerID,
			Name:           f.Name,
			Status:         f.Status,
			Visibility:     f.Visibility,
			Size:           f.Size,
			Hash:           f.Hash,
			MimeType:       f.MimeType,
			GenericType:    f.GenericType,
			Extension:      f.Extension,
			CustomMetadata: f.CustomMetadata.Clone(),
			RealPath:       f.RealPath,
			VirtualPath:    f.VirtualPath,
			Available:      f.Available,
			UpdatedAt:      f.UpdatedAt,
		},
	}
}
