package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fhuszti/filemgr-ms-go/internal/event"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/metrics"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

// publish sends a v1 file event. Failures are logged and counted, never returned.
func publish(ctx context.Context, pub port.EventPublisher, topic string, file *model.StoredFile) {
	if err := pub.Publish(ctx, topic, event.NewFileEvent(topic, file)); err != nil {
		logger.Warnf(ctx, "⚠️ failed to publish %q for file #%s: %v", topic, file.ID, err)
		metrics.RecordPublishFailure(topic)
	}
}

// setStatus moves file to next and persists it.
func setStatus(ctx context.Context, files port.FileRepository, file *model.StoredFile, next model.FileStatus) error {
	if !file.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move file #%s from %s to %s", ErrInvalidStatus, file.ID, file.Status, next)
	}
	prev := file.Status
	file.Status = next
	if err := files.Update(ctx, file); err != nil {
		file.Status = prev
		return fmt.Errorf("failed updating status of file #%s: %w", file.ID, err)
	}
	return nil
}

// reopen moves file to PROCESSING. A published file is let through as well,
// which only a forced run reaches.
func reopen(ctx context.Context, files port.FileRepository, file *model.StoredFile) error {
	if file.Status != model.FileStatusPublished {
		return setStatus(ctx, files, file, model.FileStatusProcessing)
	}
	file.Status = model.FileStatusProcessing
	if err := files.Update(ctx, file); err != nil {
		file.Status = model.FileStatusPublished
		return fmt.Errorf("failed updating status of file #%s: %w", file.ID, err)
	}
	return nil
}

// hashFile returns the sha256 hex digest and the size of the file at path.
func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func removeQuietly(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warnf(ctx, "⚠️ failed to remove temp file %q: %v", path, err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
