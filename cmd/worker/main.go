// The worker consumes queued CSV import jobs and writes leads into the
// pipeline, so large imports never block an HTTP request.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	authrepo "counsel_portal_backend/internal/auth/repository"
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
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting import worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	docStorage, err := storage.New(cfg)
	if err != nil {
		log.Error("failed to initialize storage client", "error", err)
		panic("failed to initialize storage client: " + err.Error())
	}

	users := authrepo.New(pool)

	var sender notification.Sender
	if cfg.IsEmailEnabled() {
		sender = notification.NewSMTPSender(cfg)
	}
	notificationModule := notification.New(users, sender, log)
	notificationModule.RegisterHandlers(eventBus)

	leadsModule := leads.NewModule(pool, eventBus, val, log)
	importSvc := importer.NewService(leadsModule.Service(), users, eventBus, log)

	worker, err := importer.NewWorker(cfg, importSvc, docStorage, log)
	if err != nil {
		log.Error("failed to initialize import worker", "error", err)
		panic("failed to initialize import worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("import worker stopped")
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
