package importer

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"counsel_portal_backend/platform/apperr"
	"counsel_portal_backend/platform/httpkit"
	"counsel_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxImportFileSize caps uploaded CSV files at 10 MiB.
const maxImportFileSize = 10 << 20

// Uploader stages an import file in object storage before it is queued.
type Uploader interface {
	UploadObject(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
}

// Enqueuer pushes an import job onto the task queue.
type Enqueuer interface {
	EnqueueLeadImport(ctx context.Context, payload LeadImportPayload) error
}

// Handler accepts CSV uploads and enqueues import jobs.
type Handler struct {
	enq   Enqueuer
	files Uploader
	log   *logger.Logger
}

func NewHandler(enq Enqueuer, files Uploader, log *logger.Logger) *Handler {
	return &Handler{enq: enq, files: files, log: log}
}

// ImportQueuedResponse acknowledges an accepted import job.
type ImportQueuedResponse struct {
	JobID    string `json:"jobId"`
	FileName string `json:"fileName"`
}

func (h *Handler) Upload(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if h.enq == nil || h.files == nil {
		httpkit.HandleError(c, apperr.Internal("lead import is not configured on this deployment"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("a csv file upload named 'file' is required"))
		return
	}
	if fileHeader.Size > maxImportFileSize {
		httpkit.HandleError(c, apperr.Validation("import file exceeds the 10 MiB limit"))
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		httpkit.HandleError(c, apperr.Validation("import file must be a .csv"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to read uploaded file", err))
		return
	}
	defer file.Close()

	ctx := c.Request.Context()

	fileKey, err := h.files.UploadObject(ctx, "imports", fileHeader.Filename, "text/csv", file, fileHeader.Size)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to stage import file", err))
		return
	}

	jobID := uuid.New().String()
	payload := LeadImportPayload{
		JobID:         jobID,
		FileKey:       fileKey,
		FileName:      fileHeader.Filename,
		RequestedByID: identity.UserID(),
		RequestedBy:   identity.Name(),
	}

	if err := h.enq.EnqueueLeadImport(ctx, payload); err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to enqueue import job", err))
		return
	}

	h.log.Info("lead import queued", "jobId", jobID, "file", fileHeader.Filename, "userId", identity.UserID())

	httpkit.JSON(c, http.StatusAccepted, ImportQueuedResponse{
		JobID:    jobID,
		FileName: fileHeader.Filename,
	})
}
