package storage

import (
	"context"
	"errors"
	"reflect"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"staysee-store/internal/kvstore"
)

// ErrWriteFailed is returned when no storage tier accepted a write.
var ErrWriteFailed = errors.New("storage: every tier rejected the write")

const (
	usersKey        = "users"
	ordersKey       = "orders"
	productsKey     = "products"
	filtersKey      = "filters"
	collectionsKey  = "collections"
	projectsKey     = "projects"
	transactionsKey = "transactions"
)

// CollectionKeys lists every key holding a collection, for seeding the local tier.
var CollectionKeys = []string{
	usersKey,
	ordersKey,
	productsKey,
	filtersKey,
	collectionsKey,
	projectsKey,
	transactionsKey,
}

type storageImpl struct {
	kv  *kvstore.Store
	db  *sqlx.DB
	now func() time.Time
}

// New returns the repository. db backs the payment journal and may be nil,
// in which case journal calls fail.
func New(kv *kvstore.Store, db *sqlx.DB) *storageImpl {
	return &storageImpl{kv: kv, db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *storageImpl) stmpBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// fields returns the comma separated db tags of a row struct.
func fields(data any) string {
	var s string
	r := reflect.TypeOf(data)
	for i := 0; i < r.NumField(); i++ {
		tag := r.Field(i).Tag.Get("db")
		if tag != "" {
			s += tag + ","
		}
	}
	return s[:len(s)-1]
}

// collection is a typed view of the whole JSON array stored under one key.
// Every mutation reads the array, changes it in memory and writes it back,
// so concurrent writers of the same key can overwrite each other.
type collection[T any] struct {
	kv  *kvstore.Store
	key string
	id  func(T) string
}

func newCollection[T any](kv *kvstore.Store, key string, id func(T) string) collection[T] {
	return collection[T]{kv: kv, key: key, id: id}
}

// all never returns nil: an absent or unreadable collection is empty.
func (c collection[T]) all(ctx context.Context) []T {
	list, ok := kvstore.GetJSON[[]T](ctx, c.kv, c.key)
	if !ok || list == nil {
		return []T{}
	}
	return list
}

func (c collection[T]) replace(ctx context.Context, list []T) error {
	if list == nil {
		list = []T{}
	}
	if !c.kv.Set(ctx, c.key, list, 0) {
		return ErrWriteFailed
	}
	return nil
}

// save replaces the item with the same id in place or appends it.
func (c collection[T]) save(ctx context.Context, item T) error {
	list := c.all(ctx)
	_, idx, found := lo.FindIndexOf(list, func(x T) bool { return c.id(x) == c.id(item) })
	if found {
		list[idx] = item
	} else {
		list = append(list, item)
	}
	return c.replace(ctx, list)
}

// update replaces the item with the same id and does nothing when it is absent.
func (c collection[T]) update(ctx context.Context, item T) error {
	list := c.all(ctx)
	_, idx, found := lo.FindIndexOf(list, func(x T) bool { return c.id(x) == c.id(item) })
	if !found {
		return nil
	}
	list[idx] = item
	return c.replace(ctx, list)
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	list := c.all(ctx)
	return c.replace(ctx, lo.Reject(list, func(x T, _ int) bool { return c.id(x) == id }))
}
