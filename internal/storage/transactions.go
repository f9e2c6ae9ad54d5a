package storage

import (
	"context"

	"staysee-store/internal/stories/payment"
)

func (s *storageImpl) transactions() collection[payment.Transaction] {
	return newCollection(s.kv, transactionsKey, func(tx payment.Transaction) string { return tx.ID })
}

func (s *storageImpl) ListTransactions(ctx context.Context) ([]payment.Transaction, error) {
	return s.transactions().all(ctx), nil
}

func (s *storageImpl) CreateTransaction(ctx context.Context, tx payment.Transaction) error {
	return s.transactions().save(ctx, tx)
}

func (s *storageImpl) UpdateTransaction(ctx context.Context, tx payment.Transaction) error {
	return s.transactions().update(ctx, tx)
}
