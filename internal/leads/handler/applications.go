package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"counsel_portal_backend/internal/leads/service"
	"counsel_portal_backend/internal/leads/transport"
	"counsel_portal_backend/platform/httpkit"
)

func (h *Handler) UpsertApplication(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.UpsertApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	app, err := h.svc.UpsertApplication(c.Request.Context(), id, req.UniversityName, actorFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, app)
}

func (h *Handler) SaveApplication(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	appID, ok := applicationID(c)
	if !ok {
		return
	}
	var req transport.SaveApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	app, err := h.svc.SaveApplication(c.Request.Context(), id, appID, service.ApplicationPatch{
		PortalURL:       req.PortalURL,
		Username:        req.Username,
		Password:        req.Password,
		Status:          req.Status,
		DepositProof:    req.DepositProof,
		DepositDate:     req.DepositDate,
		TuitionProof:    req.TuitionProof,
		TuitionDate:     req.TuitionDate,
		CommissionProof: req.CommissionProof,
		CommissionDate:  req.CommissionDate,
	}, actorFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, app)
}

func (h *Handler) SetActiveApplication(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	appID, ok := applicationID(c)
	if !ok {
		return
	}
	err := h.svc.SetActiveApplication(c.Request.Context(), id, appID, actorFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListApplications(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	apps, err := h.svc.ListApplications(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, apps)
}

func applicationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("appId"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return 0, false
	}
	return id, true
}
