// Package users provides account management and credential authentication.
package users

import (
	apphttp "cityreport_backend/internal/http"
	"cityreport_backend/internal/users/handler"
	"cityreport_backend/internal/users/repository"
	"cityreport_backend/internal/users/service"
	"cityreport_backend/platform/config"
	"cityreport_backend/platform/httpkit"
	"cityreport_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the users domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new users module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg config.AuthConfig) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "users"
}

// RegisterRoutes registers the module's routes. Auth endpoints are public;
// account listing is limited to roles that hand work to other accounts.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	auth := ctx.V1.Group("/auth")
	auth.POST("/register", m.handler.Register)
	auth.POST("/login", m.handler.Login)
	auth.POST("/refresh", m.handler.Refresh)
	auth.POST("/logout", m.handler.Logout)

	users := ctx.Protected.Group("/users")
	users.GET("/me", m.handler.Me)
	users.GET("", httpkit.RequireRole("technical_staff", "pro", "admin"), m.handler.ListByType)

	ctx.Admin.POST("/users", m.handler.CreateAccount)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
