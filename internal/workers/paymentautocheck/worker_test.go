package paymentautocheck

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staysee-store/internal/stories/payment"
)

type paymentsStub struct {
	pending []payment.Transaction
	listErr error
	pollErr error

	mu     sync.Mutex
	since  time.Time
	polled []payment.PollRequest
}

func (s *paymentsStub) PendingTransactions(_ context.Context, since time.Time) ([]payment.Transaction, error) {
	s.since = since
	return s.pending, s.listErr
}

func (s *paymentsStub) Poll(_ context.Context, req payment.PollRequest) (*payment.PollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polled = append(s.polled, req)
	if s.pollErr != nil {
		return nil, s.pollErr
	}
	return &payment.PollResult{Status: "succeeded"}, nil
}

func newTestWorker(stub *paymentsStub) *Worker {
	w := NewWorker(stub, time.Minute, 48*time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.now = func() time.Time { return time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC) }
	return w
}

func TestRunPollsPendingPayments(t *testing.T) {
	stub := &paymentsStub{pending: []payment.Transaction{
		{ID: "P1", PaymentID: "P1", OrderID: "O1"},
		{ID: "P2", PaymentID: "P2", OrderID: "O2"},
	}}
	w := newTestWorker(stub)

	require.NoError(t, w.run(context.Background()))

	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), stub.since)
	assert.Equal(t, []payment.PollRequest{
		{PaymentID: "P1", OrderID: "O1", Source: payment.SourceAutocheck},
		{PaymentID: "P2", OrderID: "O2", Source: payment.SourceAutocheck},
	}, stub.polled)

	_, busy := w.inFlight.Load("P1")
	assert.False(t, busy)
}

func TestRunSkipsPaymentsInFlight(t *testing.T) {
	stub := &paymentsStub{pending: []payment.Transaction{
		{ID: "P1", PaymentID: "P1"},
		{ID: "P2", PaymentID: "P2"},
	}}
	w := newTestWorker(stub)
	w.inFlight.Store("P1", struct{}{})

	require.NoError(t, w.run(context.Background()))

	require.Len(t, stub.polled, 1)
	assert.Equal(t, "P2", stub.polled[0].PaymentID)
}

func TestRunErrors(t *testing.T) {
	t.Run("listing fails", func(t *testing.T) {
		w := newTestWorker(&paymentsStub{listErr: errors.New("kv down")})
		assert.ErrorContains(t, w.run(context.Background()), "kv down")
	})

	t.Run("poll failure is logged and released", func(t *testing.T) {
		stub := &paymentsStub{pending: []payment.Transaction{{PaymentID: "P1"}}, pollErr: errors.New("timeout")}
		w := newTestWorker(stub)

		require.NoError(t, w.run(context.Background()))
	
		_, busy := w.inFlight.Load("P1")
		assert.False(t, busy)
	})
}

func TestStartStop(t *testing.T) {
	w := newTestWorker(&paymentsStub{})
	require.NoError(t, w.Start())
	w.Stop()

	assert.ErrorIs(t, w.ctx.Err(), context.Canceled)
}
