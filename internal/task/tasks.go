package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/fhuszti/filemgr-ms-go/internal/validation"
)

const TypeProcessImage = "media:process-image"

type ProcessImagePayload struct {
	FileID string `json:"file_id" validate:"required,uuid"`
	Force  bool   `json:"force,omitempty"`
}

// NewProcessImageTask creates an Asynq task running the derivation pipeline on a stored file.
func NewProcessImageTask(fileID string, force bool) (*asynq.Task, error) {
	p := ProcessImagePayload{FileID: fileID, Force: force}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal process-image payload: %w", err)
	}
	return asynq.NewTask(TypeProcessImage, data), nil
}

// ParseProcessImagePayload parses and validates the task payload.
func ParseProcessImagePayload(t *asynq.Task) (ProcessImagePayload, error) {
	var p ProcessImagePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return ProcessImagePayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	if err := validation.ValidateStruct(p); err != nil {
		return ProcessImagePayload{}, fmt.Errorf("invalid payload: %w", err)
	}
	return p, nil
}
