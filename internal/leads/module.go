// Package leads provides the lead counseling bounded context module.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "counsel_portal_backend/internal/http"
	"counsel_portal_backend/internal/leads/handler"
	"counsel_portal_backend/internal/leads/repository"
	"counsel_portal_backend/internal/leads/service"
	"counsel_portal_backend/platform/events"
	"counsel_portal_backend/platform/logger"
	"counsel_portal_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	engine  *service.Engine
}

// NewModule wires the repository, transition engine, service, and handler.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	engine := service.NewEngine(repo, log)
	svc := service.New(repo, engine, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		engine:  engine,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the leads service for other modules, such as the importer.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetStorage enables presigned document upload and download URLs.
func (m *Module) SetStorage(st handler.DocumentStorage) {
	m.handler.SetStorage(st)
}

// RegisterRoutes mounts leads routes on the provided router context. All
// leads routes require authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
