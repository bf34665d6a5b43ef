// Package api implements the HTTP API for the EcoAtlas server, exposing
// species, occurrence, search and admin endpoints under /api/v2.
package api

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ecoatlas/ecoatlas-go/internal/buildinfo"
	"github.com/ecoatlas/ecoatlas-go/internal/conf"
	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/enrichment"
	"github.com/ecoatlas/ecoatlas-go/internal/gbif"
	"github.com/ecoatlas/ecoatlas-go/internal/logging"
)

// Controller handles API routes and dependencies.
type Controller struct {
	Echo       *echo.Echo
	Group      *echo.Group
	DS         datastore.Interface
	Settings   *conf.Settings
	Enrichment *enrichment.Service
	Importer   *gbif.Importer

	apiLogger      *slog.Logger
	apiLoggerClose func() error
	startTime      time.Time
}

// New creates a Controller, registers middleware and initializes routes.
// Enrichment and Importer may be nil; their routes then return 503.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	enrichSvc *enrichment.Service, importer *gbif.Importer) *Controller {

	c := &Controller{
		Echo:       e,
		DS:         ds,
		Settings:   settings,
		Enrichment: enrichSvc,
		Importer:   importer,
		startTime:  time.Now(),
	}

	logFilePath := filepath.Join("logs", "api.log")
	apiLogger, closeFunc, err := logging.NewFileLogger(logFilePath, "api", slog.LevelInfo)
	if err != nil {
		logging.Warn("Failed to initialize API file logger, file logging disabled", "error", err)
	} else {
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeFunc
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(c.LoggingMiddleware())

	c.Group = e.Group("/api/v2")
	c.initRoutes()

	return c
}

// initRoutes registers all API endpoints.
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	c.Group.GET("/species", c.GetSpeciesList)
	c.Group.GET("/species/:id", c.GetSpeciesDetail)
	c.Group.GET("/species/:id/bio", c.GetSpeciesBio)
	c.Group.GET("/species/:id/images", c.GetSpeciesImages)
	c.Group.GET("/species/:id/occurrences", c.GetSpeciesOccurrences)

	c.Group.GET("/search/species", c.SearchSpecies)

	c.Group.POST("/admin/reload", c.ReloadSpeciesData)
	c.Group.POST("/admin/import", c.ImportFromGBIF)
}

// Shutdown releases controller resources.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			logging.Error("Failed to close API log file", "error", err)
		}
	}
}

// LoggingMiddleware logs every request through the API file logger.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)

			if c.apiLogger != nil {
				req := ctx.Request()
				res := ctx.Response()
				c.apiLogger.Info("Request",
					"method", req.Method,
					"path", req.URL.Path,
					"status", res.Status,
					"ip", ctx.RealIP(),
					"elapsed_ms", time.Since(start).Milliseconds())
			}

			return err
		}
	}
}

// HealthCheck returns server liveness plus database connectivity.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":     "healthy",
		"version":    buildinfo.Get().Version,
		"uptime_sec": int(time.Since(c.startTime).Seconds()),
	}

	if _, err := c.DS.CountSpecies(); err != nil {
		response["status"] = "degraded"
		response["database"] = "unreachable"
		return ctx.JSON(http.StatusServiceUnavailable, response)
	}
	response["database"] = "ok"

	return ctx.JSON(http.StatusOK, response)
}

// ErrorResponse is the API error payload.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	correlationID := generateCorrelationID()

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// generateCorrelationID creates a unique identifier for error tracking
// using cryptographic randomness.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}

	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError logs an error with a correlation id and sends the error
// response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	if c.apiLogger != nil {
		var errorStr string
		if err != nil {
			errorStr = err.Error()
		} else {
			errorStr = message
		}

		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", errorStr,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ctx.RealIP())
	}

	return ctx.JSON(code, errorResp)
}
