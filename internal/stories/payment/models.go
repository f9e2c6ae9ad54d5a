package payment

import (
	"time"

	"staysee-store/internal/infra/yookassa"
	"staysee-store/internal/stories/orders"
)

const TransactionTypePayment = "payment"

// StatusUnknown is reported by a poll that cannot resolve a payment.
const StatusUnknown = "unknown"

type Transaction struct {
	ID        string               `json:"id"`
	OrderID   string               `json:"orderId"`
	Amount    float64              `json:"amount"`
	Status    orders.PaymentStatus `json:"status"`
	PaymentID string               `json:"paymentId"`
	CreatedAt time.Time            `json:"createdAt"`
	Type      string               `json:"type"`
}

// Source names what triggered a reconciliation.
type Source string

const (
	SourcePoll      Source = "poll"
	SourceWebhook   Source = "webhook"
	SourceAutocheck Source = "autocheck"
)

type Entity string

const (
	EntityTransaction Entity = "transaction"
	EntityOrder       Entity = "order"
)

// Transition is one applied status change, as kept in the journal.
type Transition struct {
	ID         int64                `json:"id"`
	PaymentID  string               `json:"paymentId"`
	Entity     Entity               `json:"entity"`
	EntityID   string               `json:"entityId"`
	Source     Source               `json:"source"`
	FromStatus orders.PaymentStatus `json:"fromStatus"`
	ToStatus   orders.PaymentStatus `json:"toStatus"`
	CreatedAt  time.Time            `json:"createdAt"`
}

type CreateRequest struct {
	OrderID        string
	Amount         float64
	ReturnURL      string
	IdempotenceKey string
}

type CreateResult struct {
	PaymentID       string `json:"paymentId"`
	ConfirmationURL string `json:"confirmation_url"`
}

type PollRequest struct {
	PaymentID string
	OrderID   string
	Source    Source
}

type PollResult struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Payment *yookassa.Payment `json:"payment,omitempty"`
}

// Notification is the part of a provider push the reconciliation uses.
type Notification struct {
	Type      string
	PaymentID string
	Status    string
	OrderID   string
}

// Outcome describes what a reconciliation did.
type Outcome struct {
	Status             orders.PaymentStatus
	TransactionUpdated bool
	OrderUpdated       bool
}
