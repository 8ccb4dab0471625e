package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fhuszti/filemgr-ms-go/internal/event"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

func makeTestPublisher(t *testing.T) (*RedisPublisher, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &RedisPublisher{client: rdb, exchange: "userver-filemgr"}, rdb
}

func TestPublish_DeliversOnTopicChannel(t *testing.T) {
	p, rdb := makeTestPublisher(t)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, "userver-filemgr."+event.TopicProcessingStarted)
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	f := &model.StoredFile{ID: uuid.NewUUID(), Status: model.FileStatusProcessing}
	if err := p.Publish(ctx, event.TopicProcessingStarted, event.NewFileEvent(event.TopicProcessingStarted, f)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got event.FileEvent
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Version != 1 || got.File.ID != f.ID || got.File.Status != model.FileStatusProcessing {
			t.Errorf("event = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestPublish_MarshalError(t *testing.T) {
	p, _ := makeTestPublisher(t)
	if err := p.Publish(context.Background(), "x", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestChannel(t *testing.T) {
	p := &RedisPublisher{exchange: "ex"}
	if got := p.Channel("storages.abc.file_uploaded"); got != "ex.storages.abc.file_uploaded" {
		t.Errorf("Channel = %q", got)
	}
}
