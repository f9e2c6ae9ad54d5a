package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	yoocommon "github.com/rvinnie/yookassa-sdk-go/yookassa/common"
	yoopayment "github.com/rvinnie/yookassa-sdk-go/yookassa/payment"
	"golang.org/x/time/rate"
)

// MockPrefix marks payment ids produced without provider credentials.
const MockPrefix = "mock_payment_"

var ErrCredentialsMissing = errors.New("yookassa credentials are not configured")

// GatewayError is a non-2xx answer from the provider. Body is kept verbatim.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("yookassa: status %d: %s", e.StatusCode, e.Body)
}

// Client is a thin YooKassa REST client. Without credentials it runs in mock
// mode and never touches the network.
type Client struct {
	baseURL   string
	shopID    string
	secretKey string
	http      *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a new YooKassa client
func NewClient(shopID, secretKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:   "https://api.yookassa.ru/v3",
		shopID:    shopID,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MockMode reports whether the client fakes provider responses.
func (c *Client) MockMode() bool {
	return c.shopID == "" || c.secretKey == ""
}

// CreatePayment creates a payment. An empty IdempotenceKey gets a fresh one,
// which makes a retry of the call a new payment at the provider.
func (c *Client) CreatePayment(ctx context.Context, p CreateParams) (*Payment, error) {
	if c.MockMode() {
		c.logger.Warn("YooKassa credentials missing, creating mock payment", "amount", p.Amount)
		return c.mockPayment(MockPrefix+uuid.NewString(), yoopayment.Pending, p), nil
	}

	key := p.IdempotenceKey
	if key == "" {
		key = uuid.NewString()
	}

	currency := p.Currency
	if currency == "" {
		currency = "RUB"
	}

	body, err := json.Marshal(&yoopayment.Payment{
		Amount: &yoocommon.Amount{
			Value:    formatAmount(p.Amount),
			Currency: currency,
		},
		Confirmation: &yoopayment.Redirect{
			Type:      yoopayment.TypeRedirect,
			ReturnURL: p.ReturnURL,
		},
		Description: p.Description,
		Metadata:    p.Metadata,
		Capture:     p.Capture,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode payment")
	}

	c.logger.Info("Creating payment in YooKassa", "amount", p.Amount, "idempotence_key", key)

	var out Payment
	if err := c.do(ctx, http.MethodPost, "/payments", body, key, &out); err != nil {
		return nil, errors.Wrap(err, "create payment")
	}

	c.logger.Info("Payment created in YooKassa", "payment_id", out.ID, "status", out.Status)
	return &out, nil
}

// GetPayment fetches the current state of a payment.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if c.MockMode() {
		if !strings.HasPrefix(id, MockPrefix) {
			return nil, ErrCredentialsMissing
		}
		return c.mockPayment(id, yoopayment.Succeeded, CreateParams{}), nil
	}

	var out Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(id), nil, "", &out); err != nil {
		return nil, errors.Wrapf(err, "get payment %s", id)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, idempotenceKey string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limit")
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	if idempotenceKey != "" {
		req.Header.Set("Idempotence-Key", idempotenceKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("YooKassa request failed", "method", method, "path", path, "status", resp.StatusCode)
		return &GatewayError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func (c *Client) mockPayment(id string, status yoopayment.Status, p CreateParams) *Payment {
	return &Payment{
		ID:     id,
		Status: status,
		Paid:   status == yoopayment.Succeeded,
		Amount: yoocommon.Amount{
			Value:    formatAmount(p.Amount),
			Currency: "RUB",
		},
		Description: p.Description,
		Confirmation: Confirmation{
			Type:            string(yoopayment.TypeRedirect),
			ConfirmationURL: p.ReturnURL,
		},
		Metadata:  p.Metadata,
		CreatedAt: c.now().UTC().Format(time.RFC3339),
		Test:      true,
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
