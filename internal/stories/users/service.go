package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidInput = errors.New("email is required")

// Service provides business logic for user operations
type Service struct {
	storage Storage
	now     func() time.Time
}

// NewService creates a new user service
func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
	}
}

// ListWithStats returns every user with the number of orders they placed and
// the sum of those orders. Orders of unknown users are ignored.
func (s *Service) ListWithStats(ctx context.Context) ([]UserStats, error) {
	list, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	totals, err := s.storage.ListOrderTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	type agg struct {
		count int
		sum   float64
	}
	byUser := make(map[string]agg, len(list))
	for _, t := range totals {
		a := byUser[t.UserID]
		a.count++
		a.sum += t.Total
		byUser[t.UserID] = a
	}

	out := make([]UserStats, 0, len(list))
	for _, u := range list {
		a := byUser[u.ID]
		out = append(out, UserStats{User: u, OrdersCount: a.count, TotalSpent: a.sum})
	}
	return out, nil
}

// FindByEmail returns the user registered under email, or nil.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidInput
	}
	u, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Register returns the user with the given email, creating it first when it
// does not exist. created reports whether a new record was written.
func (s *Service) Register(ctx context.Context, email, name string) (u *User, created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false, ErrInvalidInput
	}

	exists, err := s.storage.UserExists(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("check user: %w", err)
	}
	if exists {
		u, err := s.storage.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, false, fmt.Errorf("get user: %w", err)
		}
		return u, false, nil
	}

	now := s.now().UTC()
	user := User{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
	}
	if user.Name == "" {
		user.Name = strings.SplitN(email, "@", 2)[0]
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return &user, true, nil
}
