package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"

	"github.com/fhuszti/filemgr-ms-go/internal/broker"
	"github.com/fhuszti/filemgr-ms-go/internal/cache"
	"github.com/fhuszti/filemgr-ms-go/internal/config"
	"github.com/fhuszti/filemgr-ms-go/internal/db"
	workerHandler "github.com/fhuszti/filemgr-ms-go/internal/handler/worker"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/photo"
	"github.com/fhuszti/filemgr-ms-go/internal/repository/mariadb"
	"github.com/fhuszti/filemgr-ms-go/internal/storage"
	"github.com/fhuszti/filemgr-ms-go/internal/task"
	mediaSvc "github.com/fhuszti/filemgr-ms-go/internal/usecase/media"
	msuuid "github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}
	if cfg.RedisAddr == "" {
		logger.Error(ctx, "⚠️  REDIS_ADDR must be set to run the worker")
		os.Exit(1)
	}

	logger.Init()

	database := initDb(cfg)

	overlay, err := photo.NewOverlay()
	if err != nil {
		logger.Errorf(ctx, "❌  %v", err)
		os.Exit(1)
	}

	signer := storage.NewURLSigner(cfg.LocalURLSigningKey)
	localFs := afero.NewBasePathFs(afero.NewOsFs(), cfg.LocalStorageRoot)
	processSvc := mediaSvc.NewImageProcessor(
		mariadb.NewFileRepository(database.DB),
		mariadb.NewStorageRepository(database.DB),
		mariadb.NewMediaRepository(database.DB),
		storage.NewFactory(localFs, signer, cfg.LocalPublicBaseURL),
		broker.NewRedisPublisher(cfg.RedisAddr, cfg.RedisPassword, cfg.EventExchange),
		cache.NewCache(cfg.RedisAddr, cfg.RedisPassword),
		photo.NewExtractor(cfg.ExifOrientationTag),
		overlay,
		cfg.TempDir,
		msuuid.NewUUID,
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeProcessImage, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseProcessImagePayload(t)
		if err != nil {
			logger.Errorf(ctx, "❌  %v", err)
			return errors.Join(asynq.SkipRetry, err)
		}
		return workerHandler.ProcessImageHandler(ctx, p, processSvc)
	})

	serveMetrics(ctx, cfg.MetricsPort)
	runWorker(ctx, mux, cfg, database)
}

func initDb(cfg *config.Settings) *db.Database {
	ctx := context.Background()
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	return database
}

// serveMetrics exposes the Prometheus registry when a port is configured.
func serveMetrics(ctx context.Context, port int) {
	if port == 0 {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + strconv.Itoa(port), Handler: mux}
	go func() {
		logger.Infof(ctx, "📈 Worker metrics on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Metrics listener failed: %v", err)
		}
	}()
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, cfg *config.Settings, database *db.Database) {
	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			logger.Warnf(ctx, "task %s failed: %v", t.Type(), err)
		}),
	})

	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "❌  Worker failed: %v", err)
			os.Exit(1)
		}
	}()
	logger.Info(ctx, "🚀 Worker started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// stops fetching and waits for in-flight tasks up to Config.ShutdownTimeout
	srv.Shutdown()

	if err := database.Close(); err != nil {
		logger.Warnf(ctx, "DB close error: %v", err)
	}
	logger.Info(ctx, "✅  Worker gracefully stopped")
}
