package environment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"staysee-store/internal/config"
)

type closer func()

type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Servers  *Servers
	Clients  *Clients
	Services *Services

	Closers []closer
}

func Setup(ctx context.Context) (*Env, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg config.Config
	err := envconfig.Process(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("env processing: %w", err)
	}

	var e Env

	logger, err := initLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	clients, err := newClients(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("newClients: %w", err)
	}
	e.Closers = append(e.Closers, func() {
		if err := clients.JournalDB.Close(); err != nil {
			logger.Error("Failed to close journal", "error", err)
		}
	})
	if clients.Redis != nil {
		e.Closers = append(e.Closers, func() {
			if err := clients.Redis.Close(); err != nil {
				logger.Error("Failed to close redis", "error", err)
			}
		})
	}

	services, err := newServices(ctx, clients, &cfg, logger)
	if err != nil {
		for _, c := range e.Closers {
			c()
		}
		return nil, fmt.Errorf("newServices: %w", err)
	}

	e.Servers = newServers(ctx, cfg, logger, clients, services)
	e.Config = &cfg
	e.Logger = logger
	e.Clients = clients
	e.Services = services

	return &e, nil
}
