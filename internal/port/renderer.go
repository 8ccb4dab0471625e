package port

import (
	"context"

	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// HTTPRenderer mediates between HTTP handlers and the file getter use case.
// It returns the JSON representation of the result and an ETag derived from it,
// serving both from cache when possible.
type HTTPRenderer interface {
	RenderGetFile(ctx context.Context, getter FileGetter, id uuid.UUID) ([]byte, string, error)
}
