package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Store reads and writes JSON values through an ordered chain of tiers.
// Reads take the first tier that yields a well-formed value; writes stop at
// the first tier that accepts the value, so lower tiers are never written
// after a higher one succeeded.
type Store struct {
	tiers   []Tier
	logger  *slog.Logger
	metrics *Metrics
}

func New(logger *slog.Logger, metrics *Metrics, tiers ...Tier) *Store {
	return &Store{
		tiers:   tiers,
		logger:  logger,
		metrics: metrics,
	}
}

// Tiers returns the backend names in fallback order.
func (s *Store) Tiers() []string {
	names := make([]string, 0, len(s.tiers))
	for _, t := range s.tiers {
		names = append(names, t.Backend.Name())
	}
	return names
}

// Get feeds the stored document to decode and reports whether any tier
// produced a value decode accepted. A decode error marks the tier's data as
// malformed and the next tier is tried.
func (s *Store) Get(ctx context.Context, key string, decode func(raw []byte) error) bool {
	for _, t := range s.tiers {
		name := t.Backend.Name()

		raw, err := t.Backend.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			s.metrics.observe(name, opGet, resultMiss)
			if t.Authoritative {
				return false
			}
			continue
		}
		if err != nil {
			s.metrics.observe(name, opGet, resultError)
			s.logger.Warn("Storage tier read failed", "tier", name, "key", key, "error", err)
			continue
		}

		if err := decode(raw); err != nil {
			s.metrics.observe(name, opGet, resultMalformed)
			s.logger.Error("Malformed stored data", "tier", name, "key", key, "error", err)
			continue
		}

		s.metrics.observe(name, opGet, resultOK)
		return true
	}

	return false
}

// Set marshals value once and offers it to the tiers in order.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Failed to encode value", "key", key, "error", err)
		return false
	}

	for _, t := range s.tiers {
		name := t.Backend.Name()
		if err := t.Backend.Set(ctx, key, raw, ttl); err != nil {
			s.metrics.observe(name, opSet, resultError)
			s.logger.Warn("Storage tier write failed", "tier", name, "key", key, "error", err)
			continue
		}
		s.metrics.observe(name, opSet, resultOK)
		return true
	}

	s.logger.Error("All storage tiers rejected write", "key", key)
	return false
}

// GetJSON decodes the value under key into a T.
func GetJSON[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var out T
	ok := s.Get(ctx, key, func(raw []byte) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, ok
}
