package testutil

import (
	"context"
	"database/sql"

	"github.com/hibiken/asynq"
	"github.com/spf13/afero"

	"github.com/fhuszti/filemgr-ms-go/internal/broker"
	"github.com/fhuszti/filemgr-ms-go/internal/cache"
	workerHandler "github.com/fhuszti/filemgr-ms-go/internal/handler/worker"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/photo"
	"github.com/fhuszti/filemgr-ms-go/internal/repository/mariadb"
	"github.com/fhuszti/filemgr-ms-go/internal/storage"
	"github.com/fhuszti/filemgr-ms-go/internal/task"
	mediaSvc "github.com/fhuszti/filemgr-ms-go/internal/usecase/media"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// StartWorker starts an asynq worker running the image pipeline.
// It returns a function to gracefully shut down the worker.
func StartWorker(db *sql.DB, redisAddr, tempDir string) (func(), error) {
	overlay, err := photo.NewOverlay()
	if err != nil {
		return nil, err
	}
	svc := mediaSvc.NewImageProcessor(
		mariadb.NewFileRepository(db),
		mariadb.NewStorageRepository(db),
		mariadb.NewMediaRepository(db),
		storage.NewFactory(afero.NewMemMapFs(), storage.NewURLSigner("it"), "http://localhost"),
		broker.NewRedisPublisher(redisAddr, "", "filemgr-it"),
		cache.NewCache(redisAddr, ""),
		photo.NewExtractor(""),
		overlay,
		tempDir,
		uuid.NewUUID,
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeProcessImage, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseProcessImagePayload(t)
		if err != nil {
			return err
		}
		return workerHandler.ProcessImageHandler(ctx, p, svc)
	})

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 2})
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "worker stopped: %v", err)
		}
	}()

	return srv.Shutdown, nil
}
