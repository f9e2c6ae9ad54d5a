package storage

import (
	"context"

	"github.com/samber/lo"

	"staysee-store/internal/stories/orders"
)

func (s *storageImpl) orders() collection[orders.Order] {
	return newCollection(s.kv, ordersKey, func(o orders.Order) string { return o.ID })
}

func (s *storageImpl) ListOrders(ctx context.Context) ([]orders.Order, error) {
	return s.orders().all(ctx), nil
}

func (s *storageImpl) ListUserOrders(ctx context.Context, userID string) ([]orders.Order, error) {
	return lo.Filter(s.orders().all(ctx), func(o orders.Order, _ int) bool { return o.UserID == userID }), nil
}

func (s *storageImpl) CreateOrder(ctx context.Context, order orders.Order) error {
	return s.orders().save(ctx, order)
}

func (s *storageImpl) UpdateOrder(ctx context.Context, order orders.Order) error {
	return s.orders().update(ctx, order)
}
