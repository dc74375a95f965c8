package importer

import (
	"context"
	"fmt"
	"io"

	"counsel_portal_backend/platform/config"
	"counsel_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const workerConcurrency = 5

// FileStore fetches staged import files from object storage.
type FileStore interface {
	OpenObject(ctx context.Context, fileKey string) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, fileKey string) error
}

// Worker consumes import tasks from the redis queue and runs them.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	svc    *Service
	files  FileStore
	log    *logger.Logger
}

func NewWorker(cfg config.RedisConfig, svc *Service, files FileStore, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: workerConcurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		svc:    svc,
		files:  files,
		log:    log,
	}

	mux.HandleFunc(TaskLeadImport, w.handleLeadImport)

	return w, nil
}

func (w *Worker) handleLeadImport(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadImportPayload(task)
	if err != nil {
		return err
	}

	file, err := w.files.OpenObject(ctx, payload.FileKey)
	if err != nil {
		return fmt.Errorf("failed to open import file %s: %w", payload.FileKey, err)
	}
	defer file.Close()

	summary, err := w.svc.Run(ctx, payload, file)
	if err != nil {
		return err
	}

	// The staged CSV is not needed once the rows are in the database.
	if err := w.files.RemoveObject(ctx, payload.FileKey); err != nil {
		w.log.Warn("failed to clean up import file", "fileKey", payload.FileKey, "error", err)
	}

	w.log.Info("lead import task processed",
		"jobId", summary.JobID,
		"total", summary.Total,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
	)
	return nil
}

// Run serves the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("import worker stopped", "error", err)
	}
}
