package media

import (
	"context"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

// BacklogAge is how long an image may stay unpublished before it is re-dispatched.
const BacklogAge = time.Hour

var backlogStatuses = []model.FileStatus{
	model.FileStatusUploaded,
	model.FileStatusProcessing,
	model.FileStatusError,
}

type backlogReprocessorSrv struct {
	files port.FileRepository
	tasks port.TaskDispatcher
	now   func() time.Time
}

// compile-time check: *backlogReprocessorSrv must satisfy port.BacklogReprocessor
var _ port.BacklogReprocessor = (*backlogReprocessorSrv)(nil)

// NewBacklogReprocessor constructs a BacklogReprocessor implementation.
func NewBacklogReprocessor(files port.FileRepository, tasks port.TaskDispatcher) port.BacklogReprocessor {
	return &backlogReprocessorSrv{files: files, tasks: tasks, now: time.Now}
}

// ReprocessBacklog looks for images older than BacklogAge that never got published
// and enqueues processing tasks for them.
func (s *backlogReprocessorSrv) ReprocessBacklog(ctx context.Context) error {
	cutoff := s.now().Add(-BacklogAge)
	ids, err := s.files.ListByStatusBefore(ctx, backlogStatuses, model.GenericTypeImage, cutoff)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		logger.Info(ctx, "no images found to reprocess")
		return nil
	}

	enqueued := 0
	for _, id := range ids {
		logger.Infof(ctx, "re-dispatching processing for file #%s", id)
		if err := s.tasks.EnqueueProcessImage(ctx, id, false); err != nil {
			logger.Errorf(ctx, "❌ failed to enqueue processing for file #%s: %v", id, err)
			continue
		}
		enqueued++
	}
	logger.Infof(ctx, "✅ %d/%d backlog images re-dispatched", enqueued, len(ids))
	return nil
}
