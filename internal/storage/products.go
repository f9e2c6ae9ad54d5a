package storage

import (
	"context"

	"staysee-store/internal/stories/products"
)

func (s *storageImpl) products() collection[products.Product] {
	return newCollection(s.kv, productsKey, func(p products.Product) string { return p.ID })
}

func (s *storageImpl) ListProducts(ctx context.Context) ([]products.Product, error) {
	return s.products().all(ctx), nil
}

func (s *storageImpl) SaveProduct(ctx context.Context, p products.Product) error {
	return s.products().save(ctx, p)
}

func (s *storageImpl) SaveProducts(ctx context.Context, list []products.Product) error {
	return s.products().replace(ctx, list)
}

func (s *storageImpl) DeleteProduct(ctx context.Context, id string) error {
	return s.products().delete(ctx, id)
}
