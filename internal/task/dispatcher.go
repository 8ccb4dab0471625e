package task

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Dispatcher struct {
	client   enqueuer
	timeout  time.Duration
	maxRetry int
}

// compile-time check
var _ port.TaskDispatcher = (*Dispatcher)(nil)

func NewDispatcher(addr, password string, timeout time.Duration, maxRetry int) *Dispatcher {
	c := asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password})
	return &Dispatcher{client: c, timeout: timeout, maxRetry: maxRetry}
}

func (d *Dispatcher) EnqueueProcessImage(ctx context.Context, fileID uuid.UUID, force bool) error {
	t, err := NewProcessImageTask(fileID.String(), force)
	if err != nil {
		return err
	}
	opts := []asynq.Option{asynq.MaxRetry(d.maxRetry)}
	if d.timeout > 0 {
		opts = append(opts, asynq.Timeout(d.timeout))
	}
	if _, err := d.client.EnqueueContext(ctx, t, opts...); err != nil {
		return err
	}
	return nil
}
