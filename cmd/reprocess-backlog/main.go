package main

import (
	"context"
	"os"

	"github.com/fhuszti/filemgr-ms-go/internal/config"
	"github.com/fhuszti/filemgr-ms-go/internal/db"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/repository/mariadb"
	"github.com/fhuszti/filemgr-ms-go/internal/task"
	mediaSvc "github.com/fhuszti/filemgr-ms-go/internal/usecase/media"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}
	if cfg.RedisAddr == "" {
		logger.Error(ctx, "❌  Redis not configured: this command requires a running Redis instance")
		os.Exit(1)
	}

	logger.Init()

	logger.Info(ctx, "initialising database...")
	database, err := db.NewFromConfig(db.MariaDbConfig{
		DSN:             cfg.MariaDBDSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warnf(ctx, "DB close error: %v", err)
		}
	}()

	dispatcher := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword, cfg.ProcessTimeout, cfg.ProcessMaxRetry)
	svc := mediaSvc.NewBacklogReprocessor(mariadb.NewFileRepository(database.DB), dispatcher)
	if err := svc.ReprocessBacklog(ctx); err != nil {
		logger.Errorf(ctx, "❌  Backlog reprocessing failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Backlog reprocessing completed")
}
