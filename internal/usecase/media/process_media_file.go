package media

import (
	"context"
	"fmt"

	"github.com/fhuszti/filemgr-ms-go/internal/event"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

type mediaFileSrv struct {
	tasks port.TaskDispatcher
	pub   port.EventPublisher
}

// compile-time check: *mediaFileSrv must satisfy port.MediaFileProcessor
var _ port.MediaFileProcessor = (*mediaFileSrv)(nil)

func NewMediaFileProcessor(tasks port.TaskDispatcher, pub port.EventPublisher) port.MediaFileProcessor {
	return &mediaFileSrv{tasks: tasks, pub: pub}
}

// ProcessIfMedia dispatches the derivation of an image once it is uploaded.
// force re-dispatches regardless of the current status.
func (s *mediaFileSrv) ProcessIfMedia(ctx context.Context, file *model.StoredFile, force bool) error {
	if !file.IsMedia() {
		logger.Infof(ctx, "file #%s is a %s, no media processing needed", file.ID, file.GenericType)
		return nil
	}

	switch file.GenericType {
	case model.GenericTypeImage:
		if force || file.Status == model.FileStatusUploaded {
			logger.Infof(ctx, "🚀 dispatching image processing for file #%s", file.ID)
			if err := s.tasks.EnqueueProcessImage(ctx, file.ID, force); err != nil {
				return fmt.Errorf("failed to enqueue processing of file #%s: %w", file.ID, err)
			}
		} else {
			logger.Warnf(ctx, "⚠️ file #%s is %s, expected %s: not dispatching", file.ID, file.Status, model.FileStatusUploaded)
		}
	case model.GenericTypeVideo:
		logger.Infof(ctx, "video processing is not supported, file #%s left as is", file.ID)
	}

	publish(ctx, s.pub, event.TopicPublished, file)
	return nil
}
