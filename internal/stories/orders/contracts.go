package orders

import (
	"context"

	"staysee-store/internal/stories/users"
)

type (
	Storage interface {
		ListOrders(ctx context.Context) ([]Order, error)
		ListUserOrders(ctx context.Context, userID string) ([]Order, error)
		CreateOrder(ctx context.Context, order Order) error
		ListUsers(ctx context.Context) ([]users.User, error)
	}

	Localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
