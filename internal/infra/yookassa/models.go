package yookassa

import (
	yoocommon "github.com/rvinnie/yookassa-sdk-go/yookassa/common"
	yoopayment "github.com/rvinnie/yookassa-sdk-go/yookassa/payment"
)

type CreateParams struct {
	Amount         float64
	Currency       string
	Capture        bool
	Description    string
	ReturnURL      string
	Metadata       map[string]string
	IdempotenceKey string
}

// Payment is the provider's view of a payment, as returned by /payments.
type Payment struct {
	ID           string            `json:"id"`
	Status       yoopayment.Status `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       yoocommon.Amount  `json:"amount"`
	Description  string            `json:"description,omitempty"`
	Confirmation Confirmation      `json:"confirmation"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    string            `json:"created_at,omitempty"`
	Test         bool              `json:"test"`
}

type Confirmation struct {
	Type            string `json:"type"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}
