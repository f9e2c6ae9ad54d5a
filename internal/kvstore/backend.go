package kvstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by a Backend when the key holds no value.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrUnavailable is returned by a Backend that is configured but cannot be reached.
	ErrUnavailable = errors.New("kvstore: backend unavailable")
)

// Backend is one storage tier. Values are raw JSON documents.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Tier is a Backend placed in the fallback chain.
type Tier struct {
	Backend Backend
	// Authoritative stops a read at this tier when the key is absent
	// instead of falling through to lower tiers.
	Authoritative bool
}
