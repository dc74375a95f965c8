// Package handler exposes the leads bounded context over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/internal/leads/repository"
	"counsel_portal_backend/internal/leads/service"
	"counsel_portal_backend/internal/leads/transport"
	"counsel_portal_backend/internal/storage"
	"counsel_portal_backend/platform/httpkit"
	"counsel_portal_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// DocumentStorage presigns object storage URLs for lead documents.
type DocumentStorage interface {
	PresignedUploadURL(ctx context.Context, folder, fileName string) (*storage.PresignedURL, error)
	PresignedDownloadURL(ctx context.Context, fileKey string) (*storage.PresignedURL, error)
}

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
	storage  DocumentStorage
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

// SetStorage enables the presigned document URL endpoints.
func (h *Handler) SetStorage(st DocumentStorage) {
	h.storage = st
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.PUT("/:id/assign", h.Assign)
	rg.POST("/:id/tasks", h.SubmitTask)
	rg.GET("/:id/tasks", h.ListTasks)
	rg.POST("/:id/stage-override", httpkit.RequireRole("admin"), h.OverrideStage)
	rg.GET("/:id/stage-history", h.StageHistory)
	rg.GET("/:id/remarks", h.ListRemarks)
	rg.POST("/:id/remarks", h.AddRemark)
	rg.GET("/:id/documents", h.ListDocuments)
	rg.POST("/:id/documents", h.RecordDocument)
	rg.GET("/:id/documents/checklist", h.DocumentChecklist)
	rg.POST("/:id/documents/upload-url", h.DocumentUploadURL)
	rg.GET("/:id/documents/download-url", h.DocumentDownloadURL)
	rg.GET("/:id/applications", h.ListApplications)
	rg.POST("/:id/applications", h.UpsertApplication)
	rg.PUT("/:id/applications/:appId", h.SaveApplication)
	rg.PUT("/:id/applications/:appId/activate", h.SetActiveApplication)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.CreateLead(c.Request.Context(), service.CreateLeadInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Country: req.Country,
		Course:  req.Course,
		Intake:  req.Intake,
		Source:  req.Source,
	}, actorFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.NewLeadResponse(lead))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	lead, err := h.svc.GetLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.NewLeadResponse(lead))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.UpdateLead(c.Request.Context(), id, repository.UpdateLeadParams{
		Name:    req.Name,
		Email:   req.Email,
		Country: req.Country,
		Course:  req.Course,
		Intake:  req.Intake,
		Source:  req.Source,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.NewLeadResponse(lead))
}

func (h *Handler) List(c *gin.Context) {
	params := repository.ListParams{
		Stage:  c.Query("stage"),
		Search: c.Query("search"),
	}
	if v := c.Query("assignedTo"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		params.AssignedTo = &id
	}
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	params.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	leads, total, err := h.svc.ListLeads(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ListLeadsResponse{Items: transport.NewLeadResponses(leads), Total: total})
}

func (h *Handler) Assign(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.AssignCounselorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	err := h.svc.AssignCounselor(c.Request.Context(), id, req.CounselorID, req.CounselorName, actorFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) OverrideStage(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.OverrideStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	res, err := h.svc.OverrideStage(c.Request.Context(), id, req.TargetStage, req.Reason, actorFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.TransitionResponse{Changed: res.Changed, Stage: res.Stage})
}

func (h *Handler) StageHistory(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	entries, err := h.svc.StageHistory(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, entries)
}

func (h *Handler) AddRemark(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.AddRemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	remark, err := h.svc.AddRemark(c.Request.Context(), id, req.Body, actorFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, remark)
}

func (h *Handler) ListRemarks(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	remarks, err := h.svc.ListRemarks(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, remarks)
}

func leadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return 0, false
	}
	return id, true
}

func actorFrom(c *gin.Context) domain.Actor {
	ident := httpkit.MustGetIdentity(c)
	return domain.Actor{ID: ident.UserID(), Name: ident.Name(), Role: ident.Role()}
}
