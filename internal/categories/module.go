// Package categories provides the category and office management module.
package categories

import (
	"cityreport_backend/internal/categories/handler"
	"cityreport_backend/internal/categories/repository"
	"cityreport_backend/internal/categories/service"
	apphttp "cityreport_backend/internal/http"
	"cityreport_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the categories domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new categories module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, staff service.StaffDirectory) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, staff)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "categories"
}

// RegisterRoutes registers the module's routes. Category listing is available
// to every authenticated user; management is admin-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/categories", m.handler.ListCategories)

	admin := ctx.Admin
	admin.POST("/categories", m.handler.CreateCategory)
	admin.PATCH("/categories/:id", m.handler.UpdateCategory)
	admin.GET("/offices", m.handler.ListOffices)
	admin.POST("/offices", m.handler.CreateOffice)
	admin.GET("/offices/:id/members", m.handler.ListMembers)
	admin.POST("/offices/:id/members", m.handler.AddMember)
	admin.DELETE("/offices/:id/members/:userId", m.handler.RemoveMember)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
