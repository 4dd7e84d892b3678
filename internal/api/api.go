// Package api serves the batch estimation operations over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/timbermetrics/timbervol-go/internal/conf"
	"github.com/timbermetrics/timbervol-go/internal/errors"
	"github.com/timbermetrics/timbervol-go/internal/estimate"
	"github.com/timbermetrics/timbervol-go/internal/logging"
)

// Controller manages the API routes and handlers.
type Controller struct {
	Echo      *echo.Echo
	estimator *estimate.Estimator
	settings  *conf.Settings
	metrics   *Metrics
	logger    *slog.Logger
}

// New builds the controller and registers all routes.
func New(settings *conf.Settings, estimator *estimate.Estimator) *Controller {
	logger := logging.ForService("api")
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		Echo:      echo.New(),
		estimator: estimator,
		settings:  settings,
		metrics:   NewMetrics(),
		logger:    logger,
	}

	c.Echo.HideBanner = true
	c.Echo.Use(middleware.Recover())

	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	c.Echo.GET("/healthz", c.Health)
	c.Echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
		c.metrics.Registry(), promhttp.HandlerOpts{})))

	v1 := c.Echo.Group("/api/v1")
	v1.POST("/estimate/height", c.EstimateHeight)
	v1.POST("/estimate/volume", c.EstimateVolume)
	v1.POST("/estimate/biomass", c.EstimateBiomass)
	v1.GET("/species/groups", c.SpeciesGroups)
	v1.GET("/species/resolve", c.ResolveSpecies)
}

// Start runs the server on the configured host and port, blocking until
// shutdown.
func (c *Controller) Start() error {
	addr := fmt.Sprintf("%s:%d", c.settings.HTTP.Host, c.settings.HTTP.Port)
	c.logger.Info("starting estimation API", "addr", addr)
	return c.Echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (c *Controller) Shutdown(ctx context.Context) error {
	return c.Echo.Shutdown(ctx)
}

// Health reports service liveness.
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the JSON error body for failed requests.
type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

// fail maps an estimation error to an HTTP response: caller mistakes
// (validation, unresolved species) are 400s, reference-data defects and
// everything else 500s.
func (c *Controller) fail(ctx echo.Context, operation string, err error) error {
	category := errors.CategoryGeneric
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		category = ee.Category
	}
	c.metrics.BatchFailures.WithLabelValues(operation, string(category)).Inc()

	status := http.StatusInternalServerError
	switch category {
	case errors.CategoryValidation, errors.CategorySpeciesResolution:
		status = http.StatusBadRequest
	case errors.CategoryNotFound:
		status = http.StatusNotFound
	}

	c.logger.Error("estimation request failed",
		"operation", operation, "category", string(category), "error", err)
	return ctx.JSON(status, errorResponse{Error: err.Error(), Category: string(category)})
}

func (c *Controller) observeBatch(operation string, trees int) {
	c.metrics.EstimatesTotal.WithLabelValues(operation).Add(float64(trees))
	c.metrics.BatchSize.Observe(float64(trees))
}
