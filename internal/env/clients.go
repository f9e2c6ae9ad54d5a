package environment

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"staysee-store/internal/config"
	"staysee-store/internal/infra/kvrest"
	"staysee-store/internal/infra/rediscache"
	"staysee-store/internal/infra/sqlite3"
	"staysee-store/internal/infra/yookassa"
	"staysee-store/internal/kvstore"
	"staysee-store/internal/storage"
)

type Clients struct {
	Registry  *prometheus.Registry
	KV        *kvstore.Store
	Redis     *rediscache.Cache
	JournalDB *sqlx.DB
	YooKassa  *yookassa.Client
}

func newClients(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Clients, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var c Clients
	c.Registry = registry

	kv, cache, err := provideKVStore(cfg, logger, registry)
	if err != nil {
		return nil, err
	}
	c.KV = kv
	c.Redis = cache

	db, err := provideJournalDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.JournalDB = db

	c.YooKassa = provideYooKassa(cfg, logger)

	return &c, nil
}

// provideKVStore builds the tier chain. Only the local tier is mandatory.
func provideKVStore(cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*kvstore.Store, *rediscache.Cache, error) {
	var remote, cache kvstore.Backend

	if cfg.KV.Enabled() {
		remote = kvrest.New(cfg.KV.BaseURL(), cfg.KV.AccessToken(), logger.With("tier", "kv-rest"),
			kvrest.WithHTTPClient(&http.Client{Timeout: cfg.KV.Client.Timeout}),
			kvrest.WithRateLimit(cfg.KV.Client.RateLimit.RPS, cfg.KV.Client.RateLimit.Burst),
		)
	}

	var redisCache *rediscache.Cache
	if url := cfg.Redis.ConnURL(); url != "" {
		redisCache = rediscache.New(url, cfg.Redis.ConnTimeout, logger.With("tier", "redis"))
		cache = redisCache
	}

	local, err := provideLocalBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	tiers := kvstore.Select(remote, cache, local)
	store := kvstore.New(logger.WithGroup("kvstore"), kvstore.NewMetrics(reg), tiers...)
	logger.Info("Storage tiers selected", "tiers", store.Tiers())

	return store, redisCache, nil
}

func provideLocalBackend(cfg config.Config) (kvstore.Backend, error) {
	switch cfg.Storage.Local {
	case "memory":
		return kvstore.NewMemoryBackend(), nil
	case "file", "":
		fb, err := kvstore.NewFileBackend(cfg.Storage.DataDir, storage.CollectionKeys...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open data directory")
		}
		return fb, nil
	default:
		return nil, errors.Errorf("unknown local storage %q", cfg.Storage.Local)
	}
}

func provideJournalDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := sqlite3.New(ctx,
		sqlite3.WithPath(cfg.Journal.DBPath),
		sqlite3.WithMaxOpenConns(cfg.Journal.MaxOpenConns),
		sqlite3.WithMaxIdleConns(cfg.Journal.MaxIdleConns),
		sqlite3.WithConnMaxLifetime(cfg.Journal.MaxLifetime),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open payment journal")
	}
	return db, nil
}

func provideYooKassa(cfg config.Config, logger *slog.Logger) *yookassa.Client {
	client := yookassa.NewClient(cfg.YooKassa.ShopID, cfg.YooKassa.SecretKey, logger.WithGroup("yookassa"),
		yookassa.WithBaseURL(cfg.YooKassa.APIURL),
		yookassa.WithHTTPClient(&http.Client{Timeout: cfg.YooKassa.Client.Timeout}),
		yookassa.WithRateLimit(cfg.YooKassa.Client.RateLimit.RPS, cfg.YooKassa.Client.RateLimit.Burst),
	)
	if client.MockMode() {
		logger.Warn("YooKassa credentials are not set, payments run in mock mode")
	}
	return client
}
