package paymentautocheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"staysee-store/internal/stories/payment"
)

// Worker periodically asks the provider about pending payments, so orders
// get settled even when a webhook is lost and the buyer never returns.
type Worker struct {
	payments PaymentService
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
	cron     *cron.Cron
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	// payment ids with a check in flight
	inFlight sync.Map
}

func NewWorker(payments PaymentService, interval, maxAge time.Duration, logger *slog.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		payments: payments,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) Name() string {
	return "payment-autocheck"
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc("@every "+w.interval.String(), func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("Panic in payment autocheck worker", "panic", r)
			}
		}()
		if err := w.run(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("Payment autocheck worker failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule payment autocheck worker: %w", err)
	}

	w.cron.Start()
	w.logger.Info("Payment autocheck worker started", "interval", w.interval, "max_age", w.maxAge)
	return nil
}

// Stop cancels the running check and waits for the tick to return.
func (w *Worker) Stop() {
	done := w.cron.Stop()
	w.cancel()
	<-done.Done()
}

// run checks the pending payments younger than maxAge one after another.
// Every check rewrites the whole orders and transactions collections, so
// two checks running side by side could drop each other's update. A payment
// whose previous check has not finished is skipped.
func (w *Worker) run(ctx context.Context) error {
	pending, err := w.payments.PendingTransactions(ctx, w.now().Add(-w.maxAge))
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}

	for _, tx := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.check(ctx, tx)
	}

	return nil
}

func (w *Worker) check(ctx context.Context, tx payment.Transaction) {
	if _, loaded := w.inFlight.LoadOrStore(tx.PaymentID, struct{}{}); loaded {
		return
	}
	defer w.inFlight.Delete(tx.PaymentID)

	res, err := w.payments.Poll(ctx, payment.PollRequest{
		PaymentID: tx.PaymentID,
		OrderID:   tx.OrderID,
		Source:    payment.SourceAutocheck,
	})
	if err != nil {
		w.logger.Error("Failed to check payment",
			"payment_id", tx.PaymentID,
			"order_id", tx.OrderID,
			"error", err)
		return
	}
	w.logger.Debug("Payment checked", "payment_id", tx.PaymentID, "status", res.Status)
}
