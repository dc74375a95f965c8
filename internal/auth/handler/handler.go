// Package handler exposes authentication endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"counsel_portal_backend/internal/auth/service"
	"counsel_portal_backend/internal/auth/transport"
	"counsel_portal_backend/platform/httpkit"
	"counsel_portal_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	token, user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LoginResponse{
		AccessToken: token,
		User:        transport.NewUserResponse(user),
	})
}

func (h *Handler) Me(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	user, err := h.svc.GetUser(c.Request.Context(), ident.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.NewUserResponse(user))
}

func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.NewUserResponse(user))
}

func (h *Handler) ListCounselors(c *gin.Context) {
	users, err := h.svc.ListCounselors(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, transport.NewUserResponse(u))
	}
	httpkit.OK(c, out)
}
