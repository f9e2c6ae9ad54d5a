package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"

	"staysee-store/internal/stories/users"
)

var ErrInvalidInput = errors.New("invalid order")

type Service struct {
	storage   Storage
	localizer Localizer
	lang      string
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(storage Storage, localizer Localizer, lang string, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		localizer: localizer,
		lang:      lang,
		logger:    logger,
		now:       time.Now,
		newID:     sixDigitID,
	}
}

func sixDigitID() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}

// Create places an order. Missing owner, status and date get defaults.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidInput)
	}

	order := Order{
		ID:       s.newID(),
		UserID:   lo.Ternary(req.UserID != "", req.UserID, GuestUserID),
		Items:    req.Items,
		Total:    req.Total,
		Address:  req.Address,
		Status:   req.Status,
		Customer: req.Customer,
	}
	if order.Status == "" {
		order.Status = s.localizer.Get(s.lang, "order.status.processing", nil)
	}
	if req.CreatedAt != nil {
		order.CreatedAt = *req.CreatedAt
	} else {
		order.CreatedAt = s.now().UTC()
	}

	if err := s.storage.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("Order created", "order_id", order.ID, "user_id", order.UserID, "total", order.Total)
	return &order, nil
}

// List returns every order with its owner attached, newest first.
func (s *Service) List(ctx context.Context) ([]OrderView, error) {
	list, err := s.storage.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	owners, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	byID := lo.KeyBy(owners, func(u users.User) string { return u.ID })
	unknown := UserRef{Name: s.localizer.Get(s.lang, "user.unknown", nil)}

	views := lo.Map(list, func(o Order, _ int) OrderView {
		ref := unknown
		if u, ok := byID[o.UserID]; ok {
			ref = UserRef{Name: u.Name, Email: u.Email}
		}
		return OrderView{Order: o, User: ref}
	})

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	list, err := s.storage.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders of %s: %w", userID, err)
	}
	return list, nil
}
