package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"

	"github.com/fhuszti/filemgr-ms-go/internal/broker"
	"github.com/fhuszti/filemgr-ms-go/internal/cache"
	"github.com/fhuszti/filemgr-ms-go/internal/config"
	"github.com/fhuszti/filemgr-ms-go/internal/db"
	"github.com/fhuszti/filemgr-ms-go/internal/handler/api"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/metrics"
	cMiddleware "github.com/fhuszti/filemgr-ms-go/internal/middleware"
	"github.com/fhuszti/filemgr-ms-go/internal/photo"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/renderer"
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

	logger.Init()

	database := initDb(ctx, cfg)

	ca, dispatcher, pub := initRedis(ctx, cfg)

	files := mariadb.NewFileRepository(database.DB)
	storages := mariadb.NewStorageRepository(database.DB)
	mediaRepo := mariadb.NewMediaRepository(database.DB)

	signer := storage.NewURLSigner(cfg.LocalURLSigningKey)
	localFs := afero.NewBasePathFs(afero.NewOsFs(), cfg.LocalStorageRoot)
	drivers := storage.NewFactory(localFs, signer, cfg.LocalPublicBaseURL)
	extractor := photo.NewExtractor(cfg.ExifOrientationTag)

	mediaProcessorSvc := mediaSvc.NewMediaFileProcessor(dispatcher, pub)
	uploaderSvc := mediaSvc.NewFileUploader(files, storages, drivers, pub, mediaProcessorSvc, extractor, cfg.TempDir, msuuid.NewUUID)
	getterSvc := mediaSvc.NewFileGetter(files, mediaRepo)
	linkSvc := mediaSvc.NewDownloadLinkGenerator(files, storages, mediaRepo, drivers, ca, cfg.DownloadURLExpiry)
	deleterSvc := mediaSvc.NewFileDeleter(files, storages, mediaRepo, drivers, ca)
	rendererSvc := renderer.NewHTTPRenderer(ca)

	r := initRouter(ctx)

	// signed links carry their own credential
	r.Get("/local-files/{storageID}/*", api.LocalFilesHandler(signer, drivers.LocalFs()))
	r.Handle("/metrics", promhttp.Handler())

	auth, err := cMiddleware.WithBearerAuth(cfg.JWTPublicKey)
	if err != nil {
		logger.Errorf(ctx, "❌  %v", err)
		os.Exit(1)
	}
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.With(cMiddleware.WithStorageID()).
			Post("/storages/{storageID}/files", api.UploadFileHandler(uploaderSvc, filepath.Join(cfg.TempDir, "uploads"), cfg.MaxUploadSize))

		r.Route("/files/{id}", func(r chi.Router) {
			r.Use(cMiddleware.WithFileID())
			r.Get("/", api.GetFileHandler(rendererSvc, getterSvc))
			r.Get("/download_link", api.DownloadLinkHandler(linkSvc))
			r.Post("/process", api.ProcessFileHandler(getterSvc, mediaProcessorSvc))
			r.Post("/trash", api.TrashFileHandler(deleterSvc))
			r.Delete("/", api.DeleteFileHandler(deleterSvc))
		})
	})

	listenRouter(ctx, r, cfg, database)
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	return database
}

func initRedis(ctx context.Context, cfg *config.Settings) (port.Cache, port.TaskDispatcher, port.EventPublisher) {
	if cfg.RedisAddr == "" {
		logger.Warn(ctx, "⚠️  Redis not configured, caching, processing and events are disabled")
		return cache.NewNoop(), task.NewNoopDispatcher(), broker.NewNoop()
	}

	logger.Info(ctx, "✅  Redis cache enabled")
	return cache.NewCache(cfg.RedisAddr, cfg.RedisPassword),
		task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword, cfg.ProcessTimeout, cfg.ProcessMaxRetry),
		broker.NewRedisPublisher(cfg.RedisAddr, cfg.RedisPassword, cfg.EventExchange)
}

func initRouter(ctx context.Context) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
