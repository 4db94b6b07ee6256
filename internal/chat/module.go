// Package chat provides the report-scoped chat module.
package chat

import (
	"cityreport_backend/internal/chat/handler"
	"cityreport_backend/internal/chat/repository"
	"cityreport_backend/internal/chat/service"
	"cityreport_backend/internal/events"
	apphttp "cityreport_backend/internal/http"
	"cityreport_backend/platform/logger"
	"cityreport_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the chat domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new chat module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, notifier service.MessageNotifier, eventBus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, notifier, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes registers the module's routes under /api/v1/chats
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	chats := ctx.Protected.Group("/chats")
	chats.GET("", m.handler.ListMine)
	chats.GET("/:id/messages", m.handler.ListMessages)
	chats.POST("/:id/messages", m.handler.SendMessage)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
