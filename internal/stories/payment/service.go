package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	yoopayment "github.com/rvinnie/yookassa-sdk-go/yookassa/payment"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"staysee-store/internal/infra/yookassa"
	"staysee-store/internal/stories/orders"
)

const instrumentationName = "staysee-store/payment"

var (
	ErrInvalidInput      = errors.New("missing required fields")
	ErrMissingIdentifier = errors.New("missing payment identifier")
	ErrAlreadyPaid       = errors.New("order is already paid")
)

// Service creates payments and keeps orders and transactions in line with
// the provider.
type Service struct {
	storage   Storage
	journal   Journal
	gateway   Gateway
	localizer Localizer
	lang      string
	appURL    string
	logger    *slog.Logger
	now       func() time.Time

	tracer      trace.Tracer
	transitions metric.Int64Counter
}

// NewService creates a new payment service
func NewService(
	storage Storage,
	journal Journal,
	gateway Gateway,
	localizer Localizer,
	lang, appURL string,
	logger *slog.Logger,
) (*Service, error) {
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"storefront.payment.transitions",
		metric.WithDescription("Applied payment status transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("create transitions counter: %w", err)
	}

	return &Service{
		storage:     storage,
		journal:     journal,
		gateway:     gateway,
		localizer:   localizer,
		lang:        lang,
		appURL:      strings.TrimRight(appURL, "/"),
		logger:      logger,
		now:         time.Now,
		tracer:      otel.Tracer(instrumentationName),
		transitions: counter,
	}, nil
}

// MapStatus folds provider statuses into the three local ones.
func MapStatus(providerStatus string) orders.PaymentStatus {
	switch yoopayment.Status(providerStatus) {
	case yoopayment.Succeeded:
		return orders.PaymentSucceeded
	case yoopayment.Canceled:
		return orders.PaymentCanceled
	default:
		return orders.PaymentPending
	}
}

// CreatePayment starts a provider payment for an order, records a pending
// transaction and links the order to the payment. Failures of the two local
// writes are logged only: the payment already exists at the provider.
func (s *Service) CreatePayment(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.OrderID == "" || req.Amount <= 0 {
		return nil, ErrInvalidInput
	}

	list, err := s.storage.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if o, ok := lo.Find(list, func(o orders.Order) bool { return o.ID == req.OrderID }); ok && o.PaymentStatus == orders.PaymentSucceeded {
		return nil, ErrAlreadyPaid
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = s.appURL + "/profile"
	}

	p, err := s.gateway.CreatePayment(ctx, yookassa.CreateParams{
		Amount:         req.Amount,
		Currency:       "RUB",
		Capture:        true,
		Description:    s.localizer.Get(s.lang, "payment.description", map[string]interface{}{"order_id": req.OrderID}),
		ReturnURL:      returnURL,
		Metadata:       map[string]string{"order_id": req.OrderID},
		IdempotenceKey: req.IdempotenceKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider payment: %w", err)
	}

	s.logger.Info("Payment created", "payment_id", p.ID, "order_id", req.OrderID, "amount", req.Amount)

	if err := s.storage.CreateTransaction(ctx, Transaction{
		ID:        p.ID,
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Status:    orders.PaymentPending,
		PaymentID: p.ID,
		CreatedAt: s.now().UTC(),
		Type:      TransactionTypePayment,
	}); err != nil {
		s.logger.Error("Failed to record transaction", "payment_id", p.ID, "error", err)
	}

	if err := s.linkOrder(ctx, req.OrderID, p.ID); err != nil {
		s.logger.Error("Failed to link order to payment", "order_id", req.OrderID, "payment_id", p.ID, "error", err)
	}

	return &CreateResult{
		PaymentID:       p.ID,
		ConfirmationURL: p.Confirmation.ConfirmationURL,
	}, nil
}

func (s *Service) linkOrder(ctx context.Context, orderID, paymentID string) error {
	list, err := s.storage.ListOrders(ctx)
	if err != nil {
		return err
	}
	o, ok := lo.Find(list, func(o orders.Order) bool { return o.ID == orderID })
	if !ok {
		s.logger.Warn("Payment created for unknown order", "order_id", orderID, "payment_id", paymentID)
		return nil
	}

	o.PaymentID = paymentID
	o.PaymentStatus = orders.PaymentPending
	return s.storage.UpdateOrder(ctx, o)
}

// ListTransactions returns all transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context) ([]Transaction, error) {
	list, err := s.storage.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	sortNewestFirst(list)
	return list, nil
}

// PendingTransactions returns pending transactions created after since.
func (s *Service) PendingTransactions(ctx context.Context, since time.Time) ([]Transaction, error) {
	list, err := s.storage.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return lo.Filter(list, func(tx Transaction, _ int) bool {
		return tx.Status == orders.PaymentPending && tx.PaymentID != "" && tx.CreatedAt.After(since)
	}), nil
}

// Events returns the journal of a payment.
func (s *Service) Events(ctx context.Context, paymentID string) ([]Transition, error) {
	if paymentID == "" {
		return nil, ErrMissingIdentifier
	}
	if s.journal == nil {
		return []Transition{}, nil
	}
	events, err := s.journal.ListTransitions(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	return events, nil
}
