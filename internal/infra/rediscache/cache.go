package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"staysee-store/internal/kvstore"
)

const backendName = "redis"

// Cache is a kvstore backend over a single shared redis connection.
//
// The connection is opened on first use. Concurrent first callers wait on the
// same attempt; if it fails the tier stays unavailable until the process
// restarts.
type Cache struct {
	url         string
	connTimeout time.Duration
	logger      *slog.Logger

	once    sync.Once
	client  *redis.Client
	connErr error
}

func New(url string, connTimeout time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		url:         url,
		connTimeout: connTimeout,
		logger:      logger,
	}
}

func (c *Cache) Name() string {
	return backendName
}

func (c *Cache) connect() (*redis.Client, error) {
	c.once.Do(func() {
		opts, err := redis.ParseURL(c.url)
		if err != nil {
			c.connErr = fmt.Errorf("parse redis url: %w", err)
			c.logger.Error("Redis disabled", "error", c.connErr)
			return
		}

		client := redis.NewClient(opts)

		// not bound to any request context: one caller going away must not
		// fail the attempt for everyone else
		ctx, cancel := context.WithTimeout(context.Background(), c.connTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			c.connErr = fmt.Errorf("ping redis: %w", err)
			c.logger.Error("Redis disabled", "error", c.connErr)
			return
		}

		c.logger.Info("Redis connection established", "addr", opts.Addr)
		c.client = client
	})

	if c.connErr != nil {
		return nil, fmt.Errorf("%w: %v", kvstore.ErrUnavailable, c.connErr)
	}
	return c.client, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}

	val, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value; a zero ttl keeps the key forever.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	client, err := c.connect()
	if err != nil {
		return err
	}

	if err := client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the connection if one was opened.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
