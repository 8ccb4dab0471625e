package port

import (
	"context"

	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// TaskDispatcher enqueues asynchronous media processing tasks.
type TaskDispatcher interface {
	EnqueueProcessImage(ctx context.Context, fileID uuid.UUID, force bool) error
}
