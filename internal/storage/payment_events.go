package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"staysee-store/internal/stories/orders"
	"staysee-store/internal/stories/payment"
)

const paymentTransitionsTable = "payment_transitions"

var errNoJournal = errors.New("payment journal database is not configured")

const paymentTransitionsSchema = `
CREATE TABLE IF NOT EXISTS payment_transitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	payment_id  TEXT     NOT NULL,
	entity      TEXT     NOT NULL,
	entity_id   TEXT     NOT NULL,
	source      TEXT     NOT NULL,
	from_status TEXT     NOT NULL,
	to_status   TEXT     NOT NULL,
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payment_transitions_payment_id ON payment_transitions (payment_id);
`

var transitionRowFields = fields(transitionRow{})

type transitionRow struct {
	ID         int64     `db:"id"`
	PaymentID  string    `db:"payment_id"`
	Entity     string    `db:"entity"`
	EntityID   string    `db:"entity_id"`
	Source     string    `db:"source"`
	FromStatus string    `db:"from_status"`
	ToStatus   string    `db:"to_status"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r transitionRow) ToModel() payment.Transition {
	return payment.Transition{
		ID:         r.ID,
		PaymentID:  r.PaymentID,
		Entity:     payment.Entity(r.Entity),
		EntityID:   r.EntityID,
		Source:     payment.Source(r.Source),
		FromStatus: orders.PaymentStatus(r.FromStatus),
		ToStatus:   orders.PaymentStatus(r.ToStatus),
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

// EnsureSchema creates the journal table when it does not exist yet.
func (s *storageImpl) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return errNoJournal
	}
	if _, err := s.db.ExecContext(ctx, paymentTransitionsSchema); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}
	return nil
}

func (s *storageImpl) RecordTransition(ctx context.Context, t payment.Transition) error {
	if s.db == nil {
		return errNoJournal
	}

	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	params := map[string]interface{}{
		"payment_id":  t.PaymentID,
		"entity":      string(t.Entity),
		"entity_id":   t.EntityID,
		"source":      string(t.Source),
		"from_status": string(t.FromStatus),
		"to_status":   string(t.ToStatus),
		"created_at":  createdAt.UTC(),
	}

	q, args, err := s.stmpBuilder().
		Insert(paymentTransitionsTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}
	return nil
}

// ListTransitions returns the journal of a payment, oldest first.
func (s *storageImpl) ListTransitions(ctx context.Context, paymentID string) ([]payment.Transition, error) {
	if s.db == nil {
		return nil, errNoJournal
	}

	q, args, err := s.stmpBuilder().
		Select(transitionRowFields).
		From(paymentTransitionsTable).
		Where(sq.Eq{"payment_id": paymentID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []transitionRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	return lo.Map(rows, func(r transitionRow, _ int) payment.Transition { return r.ToModel() }), nil
}
