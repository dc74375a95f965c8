package importer

import (
	apphttp "counsel_portal_backend/internal/http"
	"counsel_portal_backend/platform/logger"
)

// Module exposes the admin CSV import endpoint.
type Module struct {
	handler *Handler
}

func NewModule(enq Enqueuer, files Uploader, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(enq, files, log)}
}

func (m *Module) Name() string {
	return "importer"
}

// RegisterRoutes mounts the import upload endpoint for admins only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.POST("/leads/import", m.handler.Upload)
}

var _ apphttp.Module = (*Module)(nil)
