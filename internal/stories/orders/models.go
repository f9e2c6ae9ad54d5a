package orders

import (
	"encoding/json"
	"time"
)

// PaymentStatus mirrors the provider state of the order's payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentCanceled  PaymentStatus = "canceled"
)

// Terminal reports whether no further transition is accepted.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSucceeded || s == PaymentCanceled
}

const GuestUserID = "guest"

type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Items         []OrderItem   `json:"items"`
	Total         float64       `json:"total"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	Address       string        `json:"address"`
	Customer      *Customer     `json:"customer,omitempty"`
	PaymentID     string        `json:"paymentId,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
}

// OrderItem.ID is kept as sent by the client: catalog ids are sometimes
// numbers and sometimes strings.
type OrderItem struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Price    float64         `json:"price"`
	Quantity *int            `json:"quantity,omitempty"`
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type UserRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderView is an order with its owner's contact data attached.
type OrderView struct {
	Order
	User UserRef `json:"user"`
}

type CreateRequest struct {
	UserID    string
	Items     []OrderItem
	Total     float64
	Address   string
	Status    string
	CreatedAt *time.Time
	Customer  *Customer
}
