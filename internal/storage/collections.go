package storage

import (
	"context"

	"staysee-store/internal/stories/collections"
)

func (s *storageImpl) collections() collection[collections.Collection] {
	return newCollection(s.kv, collectionsKey, func(c collections.Collection) string { return c.ID })
}

func (s *storageImpl) ListCollections(ctx context.Context) ([]collections.Collection, error) {
	return s.collections().all(ctx), nil
}

func (s *storageImpl) SaveCollection(ctx context.Context, c collections.Collection) error {
	return s.collections().save(ctx, c)
}

func (s *storageImpl) SaveCollections(ctx context.Context, list []collections.Collection) error {
	return s.collections().replace(ctx, list)
}

func (s *storageImpl) DeleteCollection(ctx context.Context, id string) error {
	return s.collections().delete(ctx, id)
}
