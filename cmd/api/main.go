package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"counsel_portal_backend/internal/auth"
	apphttp "counsel_portal_backend/internal/http"
	"counsel_portal_backend/internal/http/router"
	"counsel_portal_backend/internal/importer"
	"counsel_portal_backend/internal/leads"
	"counsel_portal_backend/internal/notification"
	"counsel_portal_backend/internal/storage"
	"counsel_portal_backend/platform/config"
	"counsel_portal_backend/platform/db"
	"counsel_portal_backend/platform/events"
	"counsel_portal_backend/platform/logger"
	"counsel_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Object storage for lead documents and staged import files.
	var docStorage *storage.Client
	if cfg.IsMinIOEnabled() {
		docStorage, err = storage.New(cfg)
		if err != nil {
			log.Error("failed to initialize storage client", "error", err)
			panic("failed to initialize storage client: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure documents bucket", 5, 2*time.Second, func() error {
			return docStorage.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure documents bucket exists", "error", err)
			panic("failed to ensure documents bucket exists: " + err.Error())
		}
		log.Info("storage client initialized", "bucket", cfg.GetMinioBucketLeadDocuments())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; document uploads and CSV import disabled")
	}

	importClient, closeImportClient := initImportClient(cfg, log)
	if closeImportClient != nil {
		defer closeImportClient()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, val, log)
	leadsModule := leads.NewModule(pool, eventBus, val, log)

	var sender notification.Sender
	if cfg.IsEmailEnabled() {
		sender = notification.NewSMTPSender(cfg)
		log.Info("email sender initialized", "host", cfg.GetSMTPHost())
	} else {
		log.Warn("SMTP not configured; counselor emails disabled")
	}
	notificationModule := notification.New(authModule.Repository(), sender, log)
	notificationModule.RegisterHandlers(eventBus)

	modules := []apphttp.Module{authModule, leadsModule}

	if docStorage != nil {
		leadsModule.SetStorage(docStorage)
		modules = append(modules, importer.NewModule(importClient, docStorage, log))
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

func initImportClient(cfg *config.Config, log *logger.Logger) (*importer.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; CSV import queue disabled")
		return nil, nil
	}

	client, err := importer.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize import queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
