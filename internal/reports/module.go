// Package reports provides the report lifecycle domain module: intake,
// triage, assignment routing, and staff progress tracking.
package reports

import (
	"cityreport_backend/internal/events"
	apphttp "cityreport_backend/internal/http"
	"cityreport_backend/internal/reports/handler"
	"cityreport_backend/internal/reports/ports"
	"cityreport_backend/internal/reports/repository"
	"cityreport_backend/internal/reports/service"
	"cityreport_backend/platform/httpkit"
	"cityreport_backend/platform/logger"
	"cityreport_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the reports domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new reports module with all dependencies wired.
// The directory and side effect ports are implemented by the adapters
// package against the users, categories, chat, and notification modules.
func NewModule(
	pool *pgxpool.Pool,
	val *validator.Validator,
	categories ports.CategoryDirectory,
	users ports.UserDirectory,
	chats ports.ChatProvisioner,
	notifier ports.NotificationEmitter,
	eventBus events.Bus,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, categories, users, chats, notifier, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "reports"
}

// RegisterRoutes registers the module's routes under /api/v1/reports
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	reports := ctx.Protected.Group("/reports")

	reports.POST("", ctx.SubmitRateLimiter.RateLimit(), m.handler.Create)
	reports.GET("", httpkit.RequireRole("pro", "admin", "technical_staff"), m.handler.ListByStatus)
	reports.GET("/mine", m.handler.ListMine)
	reports.GET("/assigned", httpkit.RequireRole("technical_staff"), m.handler.ListAssigned)
	reports.GET("/:id", m.handler.GetByID)
	reports.PATCH("/:id/category", httpkit.RequireRole("pro", "admin"), m.handler.UpdateCategory)
	reports.POST("/:id/decision", httpkit.RequireRole("pro", "admin"), m.handler.Decide)
	reports.PATCH("/:id/status", httpkit.RequireRole("technical_staff"), m.handler.UpdateStatus)
	reports.POST("/:id/maintainer", httpkit.RequireRole("technical_staff"), m.handler.AssignMaintainer)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
