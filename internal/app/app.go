package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/energy-monitor/energy-dashboard/internal/client/httpclient"
	"github.com/energy-monitor/energy-dashboard/internal/client/querycache"
	"github.com/energy-monitor/energy-dashboard/internal/client/telemetry"
	"github.com/energy-monitor/energy-dashboard/internal/config"
	"github.com/energy-monitor/energy-dashboard/internal/dashboard"
	"github.com/energy-monitor/energy-dashboard/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
)

// RequestIDHeader echoes the id assigned to every request.
const RequestIDHeader = "X-Request-Id"

// CreateWebServer wires the telemetry client, the query cache and the
// dashboard service into the public API. ctx bounds long-lived streams.
func CreateWebServer(ctx context.Context, logger *zerolog.Logger, settings *config.Settings, m *metrics.Metrics) (*fiber.App, error) {
	service, err := setupService(logger, settings, m)
	if err != nil {
		return nil, fmt.Errorf("failed to setup dashboard service: %w", err)
	}
	ctrlLogger := logger.With().Str("component", "controller").Logger()
	ctrl, err := NewController(ctx, service, settings, &ctrlLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup controller: %w", err)
	}
	return createApp(logger, ctrl), nil
}

// CreateMonitoringServer serves the Prometheus collectors at /metrics.
func CreateMonitoringServer(logger *zerolog.Logger, m *metrics.Metrics) *fiber.App {
	monApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return ErrorHandler(c, err, logger)
		},
		DisableStartupMessage: true,
	})
	monApp.Get("/", HealthCheck)
	monApp.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	return monApp
}

// setupService creates the client chain behind the dashboard views.
func setupService(logger *zerolog.Logger, settings *config.Settings, m *metrics.Metrics) (*dashboard.Service, error) {
	httpLogger := logger.With().Str("component", "httpclient").Logger()
	httpClient, err := httpclient.New(httpclient.Options{
		BaseURL:  settings.TelemetryAPIURL,
		APIKey:   settings.APIKey,
		Timeout:  settings.RequestTimeout,
		Observer: m,
		Logger:   &httpLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	telemetryClient, err := telemetry.NewClient(httpClient)
	if err != nil {
		return nil, err
	}

	cache := querycache.New(settings.CacheTTL, settings.CacheCleanupInterval, m)
	cachedClient := querycache.NewClient(telemetryClient, cache)

	return dashboard.NewService(cachedClient, settings.Location(), logger.With().Str("component", "dashboard").Logger())
}

func createApp(logger *zerolog.Logger, ctrl *Controller) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return ErrorHandler(c, err, logger)
		},
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{
		Next:              nil,
		EnableStackTrace:  true,
		StackTraceHandler: nil,
	}))

	app.Use(func(c *fiber.Ctx) error {
		requestID := ksuid.New().String()
		c.Set(RequestIDHeader, requestID)
		userCtx := logger.With().Str("httpPath", strings.TrimPrefix(c.Path(), "/")).
			Str("httpMethod", c.Method()).
			Str("requestId", requestID).Logger().WithContext(c.UserContext())
		c.SetUserContext(userCtx)
		return c.Next()
	})

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/", HealthCheck)

	api := app.Group("/api")
	api.Get("/devices", ctrl.GetDevices)
	api.Get("/devices/:id", ctrl.GetDevice)
	api.Get("/devices/:id/summary", ctrl.GetSummary)
	api.Get("/devices/:id/summary/stream", ctrl.StreamSummary)
	api.Get("/devices/:id/charts", ctrl.GetCharts)
	api.Get("/devices/:id/charts/:metric", ctrl.GetChart)
	api.Get("/settings", ctrl.GetSettings)
	api.Post("/settings", ctrl.PostSettings)
	return app
}

// HealthCheck godoc
// @Summary Show the status of server.
// @Description get the status of server.
// @Tags root
// @Accept */*
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func HealthCheck(ctx *fiber.Ctx) error {
	res := map[string]any{
		"data": "Server is up and running",
	}

	return ctx.JSON(res)
}

// ErrorHandler custom handler to log recovered errors using our logger and return json instead of string.
func ErrorHandler(ctx *fiber.Ctx, err error, logger *zerolog.Logger) error {
	code := fiber.StatusInternalServerError // Default 500 statuscode
	message := "Internal error."

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// don't log not found errors
	if code != fiber.StatusNotFound {
		logger.Err(err).Int("httpStatusCode", code).
			Str("httpPath", strings.TrimPrefix(ctx.Path(), "/")).
			Str("httpMethod", ctx.Method()).
			Msg("caught an error from http request")
	}

	return ctx.Status(code).JSON(codeResp{Code: code, Message: message})
}

type codeResp struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
