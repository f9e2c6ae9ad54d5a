package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	environment "staysee-store/internal/env"
)

func main() {
	ctx := context.Background()

	env, err := environment.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup environment: %v", err)
	}

	logger := env.Logger
	logger.Info("Starting staysee storefront")

	if env.Servers.HTTP.Observability != nil {
		go func() {
			logger.Info("Starting observability server", slog.String("addr", env.Servers.HTTP.Observability.Addr))
			if err := env.Servers.HTTP.Observability.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Observability server error", slog.Any("error", err))
			}
		}()
	}

	apiErr := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", slog.String("addr", env.Servers.HTTP.API.Addr))
		if err := env.Servers.HTTP.API.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			apiErr <- err
		}
	}()

	if err := env.Services.Workers.Start(); err != nil {
		logger.Error("Failed to start workers", slog.Any("error", err))
		shutdown(env)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-apiErr:
		logger.Error("API server error", slog.Any("error", err))
	}

	shutdown(env)
}

func shutdown(env *environment.Env) {
	logger := env.Logger
	logger.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), env.Config.ShutdownDuration)
	defer cancel()

	// stop accepting requests before the workers go, then drain
	if err := env.Servers.HTTP.API.Shutdown(ctx); err != nil {
		logger.Error("API server shutdown error", slog.Any("error", err))
	}

	env.Services.Workers.Stop()

	if env.Servers.HTTP.Observability != nil {
		if err := env.Servers.HTTP.Observability.Shutdown(ctx); err != nil {
			logger.Error("Observability server shutdown error", slog.Any("error", err))
		}
	}

	for _, closer := range env.Closers {
		closer()
	}

	logger.Info("Application stopped")
}
