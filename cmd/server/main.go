package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloud-ru/mcp-investment-sim-go/internal/config"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/server"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/tools"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/tracing"
	"github.com/cloud-ru/mcp-investment-sim-go/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting investment simulation service")

	shutdownTracing, err := tracing.InitTracing(cfg.OTELServiceName, cfg.OTELEndpoint, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	srv := server.New(server.Config{
		Log:    log,
		Config: cfg,
		Tools:  tools.Registry(cfg, tracing.Tracer, log),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
	case <-quit:
		log.Info().Msg("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Server stopped")
}
