package environment

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"staysee-store/internal/config"
	"staysee-store/internal/localization"
	"staysee-store/internal/storage"
	"staysee-store/internal/stories/collections"
	"staysee-store/internal/stories/filters"
	"staysee-store/internal/stories/orders"
	"staysee-store/internal/stories/payment"
	"staysee-store/internal/stories/products"
	"staysee-store/internal/stories/projects"
	"staysee-store/internal/stories/users"
	"staysee-store/internal/workers"
	"staysee-store/internal/workers/paymentautocheck"
)

type Services struct {
	Localization *localization.Service
	Products     *products.Service
	Filters      *filters.Service
	Collections  *collections.Service
	Projects     *projects.Service
	Orders       *orders.Service
	Users        *users.Service
	Payment      *payment.Service
	Workers      *workers.Manager
}

func newServices(ctx context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	store := storage.New(clients.KV, clients.JournalDB)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to prepare journal schema")
	}

	loc, err := localization.NewService(cfg.Language)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load translations")
	}

	paymentService, err := payment.NewService(
		store,
		store,
		clients.YooKassa,
		loc,
		cfg.Language,
		cfg.AppURL,
		logger.WithGroup("payment"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create payment service")
	}

	var background []workers.Worker
	if cfg.PaymentAutocheck.Enabled {
		background = append(background, paymentautocheck.NewWorker(
			paymentService,
			cfg.PaymentAutocheck.Interval,
			cfg.PaymentAutocheck.MaxAge,
			logger.WithGroup("autocheck"),
		))
	}

	return &Services{
		Localization: loc,
		Products:     products.NewService(store),
		Filters:      filters.NewService(store, loc, cfg.Language, logger.WithGroup("filters")),
		Collections:  collections.NewService(store),
		Projects:     projects.NewService(store),
		Orders:       orders.NewService(store, loc, cfg.Language, logger.WithGroup("orders")),
		Users:        users.NewService(store),
		Payment:      paymentService,
		Workers:      workers.NewManager(logger.WithGroup("workers"), background...),
	}, nil
}
