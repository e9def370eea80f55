package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Skotchmaster/storefront/internal/graph"
	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/jobs"
	"github.com/Skotchmaster/storefront/internal/metrics"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/permissions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Deps struct {
	Logger      *slog.Logger
	FrontendURL string
	Session     *authmw.SessionAuth
	GraphQL     *graph.Handler
	Upload      *handlers.UploadHTTP
	Jobs        *jobs.Scheduler
	Ready       func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(d.Logger),
		metrics.Middleware(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{d.FrontendURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID},
			AllowCredentials: true,
		}),
	)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", metrics.Handler())

	api := e.Group("")
	api.Use(csrf.Middleware(csrf.Config{AllowedOrigins: []string{d.FrontendURL}}))
	api.Use(d.Session.Middleware)

	api.POST("/graphql", d.GraphQL.Serve)

	if d.Upload != nil {
		api.POST("/upload", d.Upload.UploadImage, authmw.RequireLogin, middleware.BodyLimit("11M"))
	}

	if d.Jobs != nil {
		admin := api.Group("/admin", authmw.RequirePermission(permissions.Admin))
		admin.POST("/jobs/:name", func(c echo.Context) error {
			if err := d.Jobs.RunNow(c.Request().Context(), c.Param("name")); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return c.JSON(http.StatusOK, echo.Map{"job": c.Param("name"), "status": "completed"})
		})
	}
}
