package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bara-directory/seeder/internal/auth"
	"github.com/bara-directory/seeder/internal/config"
	"github.com/bara-directory/seeder/internal/handler"
	middlewarepkg "github.com/bara-directory/seeder/internal/middleware"
	"github.com/bara-directory/seeder/internal/service"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Businesses *handler.BusinessesHandler
	Imports    *handler.ImportHandler
	Generate   *handler.GenerateHandler
	SQL        *handler.SQLHandler
	// Metrics serves the Prometheus registry; nil disables /metrics.
	Metrics http.Handler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	if handlers.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(handlers.Metrics))
	}

	e.POST("/auth/login", handlers.Auth.Login, middlewarepkg.RateLimiter(cfg.RateLimitLogin))
	e.GET("/businesses", handlers.Businesses.List)

	admin := e.Group("/admin", middlewarepkg.JWT(jwtManager), middlewarepkg.RequireRole(service.AdminRole))
	admin.GET("/profiles", handlers.Generate.Profiles)
	admin.GET("/totals", handlers.Businesses.Totals)
	admin.POST("/generate/:kind", handlers.Generate.Generate)
	admin.POST("/sql", handlers.SQL.Render)
	admin.POST("/imports/:kind", handlers.Imports.Import, middlewarepkg.RateLimiter(cfg.RateLimitImport))
}
