package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/task"
	"github.com/fhuszti/filemgr-ms-go/internal/usecase/media"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// ProcessImageHandler handles a process-image task.
// Failures that another attempt cannot fix are wrapped with asynq.SkipRetry.
func ProcessImageHandler(ctx context.Context, p task.ProcessImagePayload, svc port.ImageProcessor) error {
	id, err := uuid.Parse(p.FileID)
	if err != nil {
		logger.Errorf(ctx, "❌  Invalid file ID %q: %v", p.FileID, err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := svc.ProcessImage(ctx, id, p.Force); err != nil {
		logger.Errorf(ctx, "❌  Failed to process image #%s: %v", id, err)
		if isPermanent(err) {
			return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		return err
	}

	logger.Infof(ctx, "✅  Successfully processed image #%s", id)
	return nil
}

func isPermanent(err error) bool {
	return errors.Is(err, port.ErrRecordNotFound) ||
		errors.Is(err, media.ErrInvalidStatus) ||
		errors.Is(err, media.ErrUnsupportedConfiguration)
}
