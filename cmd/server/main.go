package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bpp-notes/internal/config"
	"bpp-notes/internal/logger"
	"bpp-notes/internal/server"
	"bpp-notes/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bpp-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	appConfig, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(os.Stderr, appConfig.Logging.Level, appConfig.Logging.Pretty)
	if err != nil {
		return err
	}

	shutdownTracer, err := tracing.Init(context.Background(), appConfig.Service.Name)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown error", logger.Err(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, appConfig, log)
	if err != nil {
		return err
	}

	log.Info("starting notes server",
		"service", appConfig.Service.Name,
		"port_grpc", appConfig.Server.PortGRPC,
		"gateway", appConfig.Gateway.Enabled,
	)

	if err := srv.Run(ctx); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		return err
	}

	log.Info("notes server stopped")
	return nil
}
