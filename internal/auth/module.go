// Package auth provides the authentication bounded context module.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"counsel_portal_backend/internal/auth/handler"
	"counsel_portal_backend/internal/auth/repository"
	"counsel_portal_backend/internal/auth/service"
	apphttp "counsel_portal_backend/internal/http"
	"counsel_portal_backend/platform/config"
	"counsel_portal_backend/platform/logger"
	"counsel_portal_backend/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	return &Module{handler: handler.New(svc, val), repo: repo}
}

func (m *Module) Name() string {
	return "auth"
}

// Repository exposes user lookups for other modules, such as the importer's
// counselor matching.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.POST("/login", ctx.AuthRateLimiter.RateLimit(), m.handler.Login)
	authGroup.GET("/me", ctx.AuthMiddleware, m.handler.Me)

	ctx.Protected.GET("/counselors", m.handler.ListCounselors)
	ctx.Admin.POST("/users", m.handler.Register)
}

var _ apphttp.Module = (*Module)(nil)
