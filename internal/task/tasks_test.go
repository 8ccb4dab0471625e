package task

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

func TestProcessImageTask_RoundTrip(t *testing.T) {
	id := uuid.NewUUID()
	tk, err := NewProcessImageTask(id.String(), true)
	if err != nil {
		t.Fatalf("NewProcessImageTask: %v", err)
	}
	if tk.Type() != TypeProcessImage {
		t.Errorf("Type() = %q; want %q", tk.Type(), TypeProcessImage)
	}
	p, err := ParseProcessImagePayload(tk)
	if err != nil {
		t.Fatalf("ParseProcessImagePayload: %v", err)
	}
	if p.FileID != id.String() {
		t.Errorf("FileID = %q; want %q", p.FileID, id.String())
	}
	if !p.Force {
		t.Error("Force should survive the round trip")
	}
}

func TestParseProcessImagePayload_Invalid(t *testing.T) {
	tests := map[string][]byte{
		"not json":  []byte("{"),
		"missing":   []byte(`{}`),
		"not uuid":  []byte(`{"file_id":"abc"}`),
		"wrong key": []byte(`{"media_id":"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"}`),
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseProcessImagePayload(asynq.NewTask(TypeProcessImage, payload)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

type stubEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, t)
	s.opts = append(s.opts, opts)
	return &asynq.TaskInfo{}, nil
}

func TestDispatcher_EnqueueProcessImage(t *testing.T) {
	stub := &stubEnqueuer{}
	d := &Dispatcher{client: stub, timeout: 5 * time.Minute, maxRetry: 3}
	id := uuid.NewUUID()

	if err := d.EnqueueProcessImage(context.Background(), id, false); err != nil {
		t.Fatalf("EnqueueProcessImage: %v", err)
	}
	if len(stub.tasks) != 1 {
		t.Fatalf("enqueued %d tasks; want 1", len(stub.tasks))
	}
	if stub.tasks[0].Type() != TypeProcessImage {
		t.Errorf("task type = %q", stub.tasks[0].Type())
	}

	var gotRetry, gotTimeout bool
	for _, o := range stub.opts[0] {
		switch o.Type() {
		case asynq.MaxRetryOpt:
			gotRetry = o.Value().(int) == 3
		case asynq.TimeoutOpt:
			gotTimeout = o.Value().(time.Duration) == 5*time.Minute
		}
	}
	if !gotRetry || !gotTimeout {
		t.Errorf("options = %v; want MaxRetry(3) and Timeout(5m)", stub.opts[0])
	}
}
