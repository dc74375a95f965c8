package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"counsel_portal_backend/internal/leads/transport"
	"counsel_portal_backend/platform/httpkit"
)

func (h *Handler) SubmitTask(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.SubmitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	payload, ok := req.Payload()
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "unknown task type", nil)
		return
	}

	res, err := h.svc.SubmitTask(c.Request.Context(), id, payload, req.Remarks, actorFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, gin.H{
		"task":       res.Task,
		"transition": transport.TransitionResponse{Changed: res.Transition.Changed, Stage: res.Transition.Stage},
	})
}

func (h *Handler) ListTasks(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	tasks, err := h.svc.ListTasks(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tasks)
}
