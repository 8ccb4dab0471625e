package media

import (
	"context"
	"errors"
	"testing"

	"github.com/fhuszti/filemgr-ms-go/internal/event"
	"github.com/fhuszti/filemgr-ms-go/internal/mock"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

func TestProcessIfMedia(t *testing.T) {
	tests := []struct {
		name         string
		genericType  model.GenericType
		status       model.FileStatus
		force        bool
		wantEnqueued bool
		wantEvent    bool
	}{
		{"text file", model.GenericTypeText, model.FileStatusUploaded, false, false, false},
		{"forced document", model.GenericTypeDocument, model.FileStatusUploaded, true, false, false},
		{"uploaded image", model.GenericTypeImage, model.FileStatusUploaded, false, true, true},
		{"processing image", model.GenericTypeImage, model.FileStatusProcessing, false, false, true},
		{"forced published image", model.GenericTypeImage, model.FileStatusPublished, true, true, true},
		{"video", model.GenericTypeVideo, model.FileStatusUploaded, false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tasks := &mock.Dispatcher{}
			pub := &mock.Publisher{}
			svc := NewMediaFileProcessor(tasks, pub)
			file := &model.StoredFile{ID: uuid.NewUUID(), GenericType: tc.genericType, Status: tc.status}

			if err := svc.ProcessIfMedia(context.Background(), file, tc.force); err != nil {
				t.Fatalf("ProcessIfMedia: %v", err)
			}

			if got := len(tasks.IDs) == 1; got != tc.wantEnqueued {
				t.Errorf("enqueued = %v; want %v", got, tc.wantEnqueued)
			}
			if tc.wantEnqueued && (tasks.IDs[0] != file.ID || tasks.Forced[0] != tc.force) {
				t.Errorf("enqueued %s force=%v; want %s force=%v", tasks.IDs[0], tasks.Forced[0], file.ID, tc.force)
			}
			topics := pub.Topics()
			if got := len(topics) == 1 && topics[0] == event.TopicPublished; got != tc.wantEvent {
				t.Errorf("topics = %v; want published event = %v", topics, tc.wantEvent)
			}
		})
	}
}

func TestProcessIfMedia_EnqueueError(t *testing.T) {
	tasks := &mock.Dispatcher{Err: errors.New("redis down")}
	pub := &mock.Publisher{}
	svc := NewMediaFileProcessor(tasks, pub)
	file := &model.StoredFile{ID: uuid.NewUUID(), GenericType: model.GenericTypeImage, Status: model.FileStatusUploaded}

	if err := svc.ProcessIfMedia(context.Background(), file, false); err == nil {
		t.Fatal("expected an error when the task cannot be enqueued")
	}
	if len(pub.Events) != 0 {
		t.Errorf("events = %v; want none", pub.Topics())
	}
}

func TestProcessIfMedia_PublishFailureIsNotFatal(t *testing.T) {
	tasks := &mock.Dispatcher{}
	pub := &mock.Publisher{Err: errors.New("broker down")}
	svc := NewMediaFileProcessor(tasks, pub)
	file := &model.StoredFile{ID: uuid.NewUUID(), GenericType: model.GenericTypeImage, Status: model.FileStatusUploaded}

	if err := svc.ProcessIfMedia(context.Background(), file, false); err != nil {
		t.Fatalf("ProcessIfMedia: %v", err)
	}
	if len(tasks.IDs) != 1 {
		t.Errorf("enqueued = %d; want 1", len(tasks.IDs))
	}
}
