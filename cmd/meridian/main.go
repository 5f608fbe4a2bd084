package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridian-suite/meridian/internal/app"
	"github.com/meridian-suite/meridian/internal/inventory"
	"github.com/meridian-suite/meridian/internal/platform/db"
	"github.com/meridian-suite/meridian/internal/posting"
	"github.com/meridian-suite/meridian/internal/shared"
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

	auditLogger := shared.NewAuditLogger(pool)

	postingRepo := posting.NewRepository(pool)
	postingService := posting.NewService(postingRepo, auditLogger, logger)
	postingHandler := posting.NewHandler(logger, postingService, cfg.PostingRetryAttempts, cfg.PostingRetryDelay)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryHandler := inventory.NewHandler(logger, inventoryRepo)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		PostingHandler:   postingHandler,
		InventoryHandler: inventoryHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
