package httpapi

import (
	"net/http"

	"filevault/internal/auth"
	"filevault/internal/config"
	"filevault/internal/httpapi/handlers"
	"filevault/internal/httpapi/middlewares"
	"filevault/internal/logging"
	"filevault/internal/metrics"
	"filevault/internal/ratelimit"
	"filevault/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type API struct {
	cfg     config.Config
	auth    *auth.Authenticator
	handler *handlers.Handler
	logger  *zap.Logger
}

func New(cfg config.Config, svc *service.Service, authn *auth.Authenticator, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		cfg:     cfg,
		auth:    authn,
		handler: handlers.New(svc, logger),
		logger:  logger,
	}
}

func (a *API) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(a.logger))
	e.Use(metrics.Middleware)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: a.cfg.CORSAllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderAccept,
			echo.HeaderContentType,
			echo.HeaderAuthorization,
		},
		ExposeHeaders: []string{
			echo.HeaderContentDisposition,
			"RateLimit-Limit",
			"RateLimit-Remaining",
			"RateLimit-Reset",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 600,
	}))
	e.Use(middlewares.NewRateLimitMiddleware(a.auth, rateLimitConfig(a.cfg)))

	a.registerRoutes(e)
	return e
}

func rateLimitConfig(cfg config.Config) ratelimit.Config {
	return ratelimit.Config{
		Window: cfg.RateLimitWindow,
		Limits: map[ratelimit.Rule]int{
			{Scope: ratelimit.ScopeRead, Kind: ratelimit.BucketIP}:    cfg.RateLimitReadIP,
			{Scope: ratelimit.ScopeRead, Kind: ratelimit.BucketUser}:  cfg.RateLimitReadUser,
			{Scope: ratelimit.ScopeWrite, Kind: ratelimit.BucketIP}:   cfg.RateLimitWriteIP,
			{Scope: ratelimit.ScopeWrite, Kind: ratelimit.BucketUser}: cfg.RateLimitWriteUser,
		},
	}
}
