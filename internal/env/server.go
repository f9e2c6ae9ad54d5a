package environment

import (
	"context"
	"log/slog"
	"net/http"

	"staysee-store/internal/api"
	"staysee-store/internal/config"
)

type Servers struct {
	HTTP struct {
		Observability *http.Server
		API           *http.Server
	}
}

func newServers(ctx context.Context, cfg config.Config, logger *slog.Logger, clients *Clients, services *Services) *Servers {
	var servers Servers

	handler := api.NewHandler(api.Services{
		Products:    services.Products,
		Filters:     services.Filters,
		Collections: services.Collections,
		Projects:    services.Projects,
		Orders:      services.Orders,
		Users:       services.Users,
		Payment:     services.Payment,
	}, logger.WithGroup("api"))

	servers.HTTP.API = &http.Server{
		Handler:           api.NewRouter(handler),
		Addr:              cfg.HTTP.ADDR(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	}
	servers.HTTP.Observability = initObservability(ctx, logger.WithGroup("http"), clients, cfg)

	return &servers
}
