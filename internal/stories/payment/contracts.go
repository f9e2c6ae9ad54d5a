package payment

import (
	"context"

	"staysee-store/internal/infra/yookassa"
	"staysee-store/internal/stories/orders"
)

type (
	// Storage is the order and transaction part of the repository.
	Storage interface {
		ListOrders(ctx context.Context) ([]orders.Order, error)
		// UpdateOrder replaces a stored order and does nothing if it is gone.
		UpdateOrder(ctx context.Context, order orders.Order) error
		ListTransactions(ctx context.Context) ([]Transaction, error)
		CreateTransaction(ctx context.Context, tx Transaction) error
		// UpdateTransaction replaces a stored transaction and does nothing if it is gone.
		UpdateTransaction(ctx context.Context, tx Transaction) error
	}

	Journal interface {
		RecordTransition(ctx context.Context, t Transition) error
		ListTransitions(ctx context.Context, paymentID string) ([]Transition, error)
	}

	Gateway interface {
		CreatePayment(ctx context.Context, params yookassa.CreateParams) (*yookassa.Payment, error)
		GetPayment(ctx context.Context, id string) (*yookassa.Payment, error)
	}

	Localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
