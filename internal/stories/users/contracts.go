package users

import "context"

type (
	Storage interface {
		ListUsers(ctx context.Context) ([]User, error)
		ListOrderTotals(ctx context.Context) ([]OrderTotal, error)
		// GetUserByEmail matches emails case-insensitively; nil when absent.
		GetUserByEmail(ctx context.Context, email string) (*User, error)
		UserExists(ctx context.Context, email string) (bool, error)
		CreateUser(ctx context.Context, user User) error
	}
)
