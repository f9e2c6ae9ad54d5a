package paymentautocheck

import (
	"context"
	"time"

	"staysee-store/internal/stories/payment"
)

type (
	// PaymentService lists pending payments and reconciles one of them.
	PaymentService interface {
		PendingTransactions(ctx context.Context, since time.Time) ([]payment.Transaction, error)
		Poll(ctx context.Context, req payment.PollRequest) (*payment.PollResult, error)
	}
)
