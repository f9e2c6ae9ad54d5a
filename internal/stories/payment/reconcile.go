package payment

import (
	"context"
	"fmt"
	"sort"
	"strings"

	yoopayment "github.com/rvinnie/yookassa-sdk-go/yookassa/payment"
	yoowebhook "github.com/rvinnie/yookassa-sdk-go/yookassa/webhook"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"staysee-store/internal/infra/yookassa"
	"staysee-store/internal/stories/orders"
)

// statusUpdate is the input shared by every reconciliation trigger.
type statusUpdate struct {
	paymentID      string
	providerStatus string
	orderHint      string
	source         Source
}

// Poll fetches the live status of a payment and applies it locally. A poll
// by order id whose order has no payment yet answers "unknown" and changes
// nothing.
func (s *Service) Poll(ctx context.Context, req PollRequest) (*PollResult, error) {
	if req.PaymentID == "" && req.OrderID == "" {
		return nil, ErrMissingIdentifier
	}
	if req.Source == "" {
		req.Source = SourcePoll
	}

	paymentID := req.PaymentID
	if paymentID == "" {
		list, err := s.storage.ListOrders(ctx)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		o, ok := lo.Find(list, func(o orders.Order) bool { return o.ID == req.OrderID })
		if !ok || o.PaymentID == "" {
			return &PollResult{Status: StatusUnknown, Message: "Order or payment not found"}, nil
		}
		paymentID = o.PaymentID
	}

	p, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		if !strings.HasPrefix(paymentID, yookassa.MockPrefix) {
			return nil, fmt.Errorf("get payment %s: %w", paymentID, err)
		}
		s.logger.Warn("Mock payment lookup failed, treating as paid", "payment_id", paymentID, "error", err)
		p = &yookassa.Payment{ID: paymentID, Status: yoopayment.Succeeded, Paid: true, Test: true}
	}

	if _, err := s.apply(ctx, statusUpdate{
		paymentID:      paymentID,
		providerStatus: string(p.Status),
		orderHint:      req.OrderID,
		source:         req.Source,
	}); err != nil {
		return nil, err
	}

	return &PollResult{Status: string(p.Status), Payment: p}, nil
}

// HandleNotification applies a provider push. The push is trusted as is,
// the provider is not asked again. ignored is true for event types other
// than payment notifications.
func (s *Service) HandleNotification(ctx context.Context, n Notification) (ignored bool, err error) {
	if yoowebhook.WebhookType(n.Type) != yoowebhook.WebhookTypeNotification {
		s.logger.Debug("Ignoring webhook event", "type", n.Type)
		return true, nil
	}
	if n.PaymentID == "" {
		return false, ErrMissingIdentifier
	}

	s.logger.Info("Webhook received", "payment_id", n.PaymentID, "status", n.Status, "order_id", n.OrderID)

	_, err = s.apply(ctx, statusUpdate{
		paymentID:      n.PaymentID,
		providerStatus: n.Status,
		orderHint:      n.OrderID,
		source:         SourceWebhook,
	})
	return false, err
}

// apply moves the transaction and the order of a payment to the mapped
// status. Records already in a terminal status, or already in the target
// status, are left untouched, so repeating a call writes nothing.
func (s *Service) apply(ctx context.Context, u statusUpdate) (out Outcome, err error) {
	target := MapStatus(u.providerStatus)
	out.Status = target

	ctx, span := s.tracer.Start(ctx, "payment.reconcile", trace.WithAttributes(
		attribute.String("payment.id", u.paymentID),
		attribute.String("payment.provider_status", u.providerStatus),
		attribute.String("payment.source", string(u.source)),
	))
	defer func() {
		span.SetAttributes(
			attribute.Bool("payment.transaction_updated", out.TransactionUpdated),
			attribute.Bool("payment.order_updated", out.OrderUpdated),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	out.TransactionUpdated, err = s.applyToTransaction(ctx, u, target)
	if err != nil {
		return out, err
	}

	out.OrderUpdated, err = s.applyToOrder(ctx, u, target)
	if err != nil {
		return out, err
	}

	return out, nil
}

func (s *Service) applyToTransaction(ctx context.Context, u statusUpdate, target orders.PaymentStatus) (bool, error) {
	list, err := s.storage.ListTransactions(ctx)
	if err != nil {
		return false, fmt.Errorf("list transactions: %w", err)
	}

	tx, ok := lo.Find(list, func(tx Transaction) bool { return tx.PaymentID == u.paymentID })
	if !ok {
		s.logger.Debug("No transaction for payment", "payment_id", u.paymentID)
		return false, nil
	}
	if tx.Status == target || tx.Status.Terminal() {
		return false, nil
	}

	from := tx.Status
	tx.Status = target
	if err := s.storage.UpdateTransaction(ctx, tx); err != nil {
		return false, fmt.Errorf("update transaction %s: %w", tx.ID, err)
	}

	s.record(ctx, u, EntityTransaction, tx.ID, from, target)
	return true, nil
}

func (s *Service) applyToOrder(ctx context.Context, u statusUpdate, target orders.PaymentStatus) (bool, error) {
	list, err := s.storage.ListOrders(ctx)
	if err != nil {
		return false, fmt.Errorf("list orders: %w", err)
	}

	o, ok := resolveOrder(list, u.paymentID, u.orderHint)
	if !ok {
		s.logger.Debug("No order for payment", "payment_id", u.paymentID, "order_id", u.orderHint)
		return false, nil
	}

	link := o.PaymentID == ""
	if o.PaymentStatus.Terminal() || (o.PaymentStatus == target && !link) {
		return false, nil
	}

	from := o.PaymentStatus
	o.PaymentID = u.paymentID
	o.PaymentStatus = target
	if target == orders.PaymentSucceeded {
		o.Status = s.localizer.Get(s.lang, "order.status.paid", nil)
	}

	if err := s.storage.UpdateOrder(ctx, o); err != nil {
		return false, fmt.Errorf("update order %s: %w", o.ID, err)
	}

	if from != target {
		s.record(ctx, u, EntityOrder, o.ID, from, target)
	}
	return true, nil
}

// resolveOrder finds the order of a payment. The payment id wins; the hint
// is only consulted when no order carries the payment id, and only matches
// an order that is not linked to another payment.
func resolveOrder(list []orders.Order, paymentID, hint string) (orders.Order, bool) {
	if o, ok := lo.Find(list, func(o orders.Order) bool { return o.PaymentID == paymentID }); ok {
		return o, true
	}
	if hint == "" {
		return orders.Order{}, false
	}
	return lo.Find(list, func(o orders.Order) bool {
		return o.ID == hint && (o.PaymentID == "" || o.PaymentID == paymentID)
	})
}

func (s *Service) record(ctx context.Context, u statusUpdate, entity Entity, entityID string, from, to orders.PaymentStatus) {
	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", string(entity)),
		attribute.String("source", string(u.source)),
		attribute.String("to", string(to)),
	))

	s.logger.Info("Payment status applied",
		"payment_id", u.paymentID,
		"entity", entity,
		"entity_id", entityID,
		"from", from,
		"to", to,
		"source", u.source,
	)

	if s.journal == nil {
		return
	}
	if err := s.journal.RecordTransition(ctx, Transition{
		PaymentID:  u.paymentID,
		Entity:     entity,
		EntityID:   entityID,
		Source:     u.source,
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  s.now().UTC(),
	}); err != nil {
		s.logger.Error("Failed to journal payment transition", "payment_id", u.paymentID, "error", err)
	}
}

func sortNewestFirst(list []Transaction) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
