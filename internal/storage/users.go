package storage

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"staysee-store/internal/stories/orders"
	"staysee-store/internal/stories/users"
)

func (s *storageImpl) users() collection[users.User] {
	return newCollection(s.kv, usersKey, func(u users.User) string { return u.ID })
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *storageImpl) ListUsers(ctx context.Context) ([]users.User, error) {
	return s.users().all(ctx), nil
}

func (s *storageImpl) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	want := normalizeEmail(email)
	u, ok := lo.Find(s.users().all(ctx), func(u users.User) bool { return normalizeEmail(u.Email) == want })
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *storageImpl) UserExists(ctx context.Context, email string) (bool, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

func (s *storageImpl) CreateUser(ctx context.Context, user users.User) error {
	return s.users().save(ctx, user)
}

func (s *storageImpl) SaveUsers(ctx context.Context, list []users.User) error {
	return s.users().replace(ctx, list)
}

// ListOrderTotals projects the stored orders onto owner and total.
func (s *storageImpl) ListOrderTotals(ctx context.Context) ([]users.OrderTotal, error) {
	list, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(o orders.Order, _ int) users.OrderTotal {
		return users.OrderTotal{UserID: o.UserID, Total: o.Total}
	}), nil
}
