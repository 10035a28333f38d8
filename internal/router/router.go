package router // package router builds the echo instance and registers the API routes

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iliyamo/patient-dashboard-api/internal/config"
	"github.com/iliyamo/patient-dashboard-api/internal/handler"
	"github.com/iliyamo/patient-dashboard-api/internal/middleware"
)

// Deps are the collaborators New wires into the routes.  Zero values are
// valid: no cache store means no response caching, no publisher means no
// lab-report events.
type Deps struct {
	Logger     zerolog.Logger
	CacheStore middleware.CacheStore
	Events     handler.EventPublisher
}

// New returns a fully configured echo instance.  Global middleware runs in
// this order: panic recovery, request id, access log, metrics, CORS.
func New(cfg config.Config, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(deps.Logger))
	if cfg.MetricsEnabled {
		e.Use(middleware.Metrics())
	}
	e.Use(echomw.CORSWithConfig(CORSConfig()))

	RegisterRoutes(e, handler.NewUploadHandler(deps.Events), middleware.ResponseCache(cfg.Cache, deps.CacheStore))
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	return e
}

// CORSConfig allows every origin, method and header, credentials included.
// The wildcard origin is reflected back as the caller's Origin because
// browsers refuse "*" on credentialed responses.
func CORSConfig() echomw.CORSConfig {
	return echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		// empty AllowHeaders: echo echoes Access-Control-Request-Headers back
		AllowCredentials:                         true,
		UnsafeWildcardOriginWithAllowCredentials: true,
	}
}

// RegisterRoutes maps the public API.  cache wraps GET / only; the upload
// route always runs the handler.
func RegisterRoutes(e *echo.Echo, uploads *handler.UploadHandler, cache echo.MiddlewareFunc) {
	e.GET("/", handler.Welcome, cache)
	e.POST("/upload-lab-report", uploads.UploadLabReport)
	e.GET("/healthz", handler.Health)
}
