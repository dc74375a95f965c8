package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"counsel_portal_backend/internal/leads/transport"
	"counsel_portal_backend/platform/apperr"
	"counsel_portal_backend/platform/httpkit"
)

func (h *Handler) RecordDocument(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.RecordDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	doc, err := h.svc.RecordDocument(c.Request.Context(), id, req.Type, req.URL, req.Remarks, actorFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	docs, err := h.svc.ListDocuments(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, docs)
}

func (h *Handler) DocumentChecklist(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	status, err := h.svc.DocumentChecklist(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"submitted": status.Submitted, "missing": status.Missing})
}

// DocumentUploadURL hands out a presigned PUT URL so the browser uploads
// straight to object storage. The returned fileKey is what RecordDocument
// expects as the document url.
func (h *Handler) DocumentUploadURL(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	if h.storage == nil {
		httpkit.HandleError(c, apperr.Internal("document storage is not configured on this deployment"))
		return
	}

	var req transport.DocumentUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	// Ensure the lead exists before handing out a key under its folder.
	if _, err := h.svc.GetLead(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	signed, err := h.storage.PresignedUploadURL(c.Request.Context(), fmt.Sprintf("documents/lead-%d", id), req.FileName)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to create upload url", err))
		return
	}
	httpkit.OK(c, signed)
}

// DocumentDownloadURL presigns a GET URL for a stored document.
func (h *Handler) DocumentDownloadURL(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	if h.storage == nil {
		httpkit.HandleError(c, apperr.Internal("document storage is not configured on this deployment"))
		return
	}

	fileKey := c.Query("fileKey")
	if fileKey == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "fileKey query parameter is required")
		return
	}

	if _, err := h.svc.GetLead(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	signed, err := h.storage.PresignedDownloadURL(c.Request.Context(), fileKey)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to create download url", err))
		return
	}
	httpkit.OK(c, signed)
}
