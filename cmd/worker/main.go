package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-suite/meridian/internal/app"
	"github.com/meridian-suite/meridian/internal/platform/db"
	"github.com/meridian-suite/meridian/internal/posting"
	"github.com/meridian-suite/meridian/internal/shared"
	"github.com/meridian-suite/meridian/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchemaVersion(ctx, pool); err != nil {
		logger.Error("schema check", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	auditLogger := shared.NewAuditLogger(pool)
	postingRepo := posting.NewRepository(pool)
	postingService := posting.NewService(postingRepo, auditLogger, logger)

	retentionTask, err := jobs.NewAuditRetentionTask(cfg.AuditRetention)
	if err != nil {
		logger.Error("build retention task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSalePosting, Handler: jobs.NewSalePostingHandler(postingService, logger)},
			{Type: jobs.TaskTypeAuditRetention, Handler: jobs.NewAuditRetentionHandler(auditLogger, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: retentionTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
