package httpapi

import (
	"net/http"
	"time"

	"filevault/internal/metrics"

	"github.com/labstack/echo/v4"
)

func (a *API) registerRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":        true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.POST("/users", a.handler.Register)
	a.registerAuthRoutes(e)
}

// Authenticated routes are registered one by one so that unmatched paths
// keep returning 404 instead of a Basic-auth challenge.
func (a *API) registerAuthRoutes(e *echo.Echo) {
	e.POST("/configs", a.handler.SetConfig, a.auth.Middleware)
	e.POST("/upload/:filename", a.handler.Upload, a.auth.Middleware)
	e.GET("/download/:filename", a.handler.Download, a.auth.Middleware)
	e.GET("/files", a.handler.ListFiles, a.auth.Middleware)
}
