package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	// import docs for swagger generation.
	_ "github.com/energy-monitor/energy-dashboard/docs"
	"github.com/energy-monitor/energy-dashboard/internal/app"
	"github.com/energy-monitor/energy-dashboard/internal/config"
	"github.com/energy-monitor/energy-dashboard/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

//go:generate go tool swag init -g cmd/energy-dashboard/main.go -d ../../ -o ../../docs

// @title Energy Dashboard API
// @version 1.0
// @description Device grid, summary cards and chart panels built from the telemetry API
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-KEY
const appName = "energy-dashboard"

func main() {
	cfgPath := flag.String("config", "", "Path to an optional YAML settings file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	group, gCtx := errgroup.WithContext(ctx)

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", appName).Logger()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Received signal, shutting down...")
	}()

	settings, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load settings.")
	}

	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to parse log level.")
	}
	logger = logger.Level(level)
	zerolog.DefaultContextLogger = &logger

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	webApp, err := app.CreateWebServer(gCtx, &logger, settings, m)
	if err != nil {
		logger.Fatal().Err(err).Msg("Couldn't create web server.")
	}
	monApp := app.CreateMonitoringServer(&logger, m)

	listener, err := net.Listen("tcp", ":"+strconv.Itoa(settings.Port))
	if err != nil {
		logger.Fatal().Err(err).Msgf("Couldn't listen on port %d.", settings.Port)
	}
	monListener, err := net.Listen("tcp", ":"+strconv.Itoa(settings.MonPort))
	if err != nil {
		_ = listener.Close()
		logger.Fatal().Err(err).Msgf("Couldn't listen on port %d.", settings.MonPort)
	}
	logger.Info().Str("environment", settings.Environment).Msgf("Listening on %s, monitoring on %s", listener.Addr(), monListener.Addr())

	RunFiberWithListener(gCtx, webApp, listener, group)
	RunFiberWithListener(gCtx, monApp, monListener, group)

	err = group.Wait()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to run servers.")
	}
}

// RunFiberWithListener serves fiberApp on listener until ctx is done.
func RunFiberWithListener(ctx context.Context, fiberApp *fiber.App, listener net.Listener, group *errgroup.Group) {
	group.Go(func() error {
		if err := fiberApp.Listener(listener); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		if err := fiberApp.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})
}
