package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staysee-store/internal/infra/sqlite3"
	"staysee-store/internal/kvstore"
	"staysee-store/internal/stories/collections"
	"staysee-store/internal/stories/filters"
	"staysee-store/internal/stories/orders"
	"staysee-store/internal/stories/payment"
	"staysee-store/internal/stories/products"
	"staysee-store/internal/stories/projects"
	"staysee-store/internal/stories/users"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemoryStorage(t *testing.T, backends ...kvstore.Backend) *storageImpl {
	t.Helper()
	if len(backends) == 0 {
		backends = []kvstore.Backend{kvstore.NewMemoryBackend()}
	}
	tiers := make([]kvstore.Tier, 0, len(backends))
	for _, b := range backends {
		tiers = append(tiers, kvstore.Tier{Backend: b, Authoritative: true})
	}
	return New(kvstore.New(discard(), nil, tiers...), nil)
}

type rejectingBackend struct{}

func (rejectingBackend) Name() string { return "rejecting" }

func (rejectingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, kvstore.ErrNotFound
}

func (rejectingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("read-only")
}

func TestCollectionRoundTrip(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()

	empty, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	p1 := products.Product{ID: "1", Name: "Китель", Price: 4500, FilterIDs: []string{"filter-kiteli"}}
	p2 := products.Product{ID: "2", Name: "Фартук", Price: 1200}
	require.NoError(t, s.SaveProduct(ctx, p1))
	require.NoError(t, s.SaveProduct(ctx, p2))

	p1.Price = 4900
	require.NoError(t, s.SaveProduct(ctx, p1))

	list, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, 4900.0, list[0].Price)

	require.NoError(t, s.DeleteProduct(ctx, "1"))
	require.NoError(t, s.DeleteProduct(ctx, "missing"))

	list, err = s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2", list[0].ID)
}

func TestUpdateIsNoopWhenAbsent(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateOrder(ctx, orders.Order{ID: "100001", UserID: "u1", Total: 10}))
	require.NoError(t, s.UpdateOrder(ctx, orders.Order{ID: "999999", Total: 99}))
	require.NoError(t, s.UpdateTransaction(ctx, payment.Transaction{ID: "P404"}))

	list, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "100001", list[0].ID)

	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	require.NoError(t, s.UpdateOrder(ctx, orders.Order{ID: "100001", UserID: "u1", Total: 10, PaymentID: "P1"}))
	list, err = s.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, "P1", list[0].PaymentID)
}

func TestListUserOrders(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateOrder(ctx, orders.Order{ID: "1", UserID: "u1", Total: 100}))
	require.NoError(t, s.CreateOrder(ctx, orders.Order{ID: "2", UserID: "u2", Total: 200}))
	require.NoError(t, s.CreateOrder(ctx, orders.Order{ID: "3", UserID: "u1", Total: 300}))

	mine, err := s.ListUserOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	totals, err := s.ListOrderTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []users.OrderTotal{{UserID: "u1", Total: 100}, {UserID: "u2", Total: 200}, {UserID: "u1", Total: 300}}, totals)
}

func TestUserExists(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, users.User{ID: "u1", Email: " Anna@Example.COM "}))

	tests := []struct {
		email string
		want  bool
	}{
		{email: "anna@example.com", want: true},
		{email: "  ANNA@example.com", want: true},
		{email: "anna@example.org", want: false},
		{email: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got, err := s.UserExists(ctx, tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	u, err := s.GetUserByEmail(ctx, "ANNA@EXAMPLE.COM")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
}

func TestDeleteFilterUnlinksProducts(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveFilters(ctx, []filters.Filter{
		{ID: "filter-kiteli", Name: "Кители", Slug: "kiteli"},
		{ID: "filter-bryuki", Name: "Брюки", Slug: "bryuki"},
	}))
	require.NoError(t, s.SaveProducts(ctx, []products.Product{
		{ID: "1", FilterIDs: []string{"filter-kiteli", "filter-bryuki"}},
		{ID: "2", FilterIDs: []string{"filter-bryuki"}},
		{ID: "3", FilterIDs: []string{}},
	}))

	require.NoError(t, s.DeleteFilter(ctx, "filter-bryuki"))

	fs, err := s.ListFilters(ctx)
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, "filter-kiteli", fs[0].ID)

	ps, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"filter-kiteli"}, ps[0].FilterIDs)
	assert.Empty(t, ps[1].FilterIDs)
	assert.Empty(t, ps[2].FilterIDs)
}

func TestSaveProjectKeepsOrder(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProject(ctx, projects.Project{ID: "1", Type: projects.TypePortfolio, Order: 2}))
	require.NoError(t, s.SaveProject(ctx, projects.Project{ID: "2", Type: projects.TypePromo, Order: 0}))
	require.NoError(t, s.SaveProject(ctx, projects.Project{ID: "3", Type: projects.TypePortfolio, Order: 1}))
	require.NoError(t, s.SaveProject(ctx, projects.Project{ID: "2", Type: projects.TypePromo, Order: 5}))

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)
}

func TestSaveCollectionsReplacesWholeArray(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCollection(ctx, collections.Collection{ID: "1", Title: "Повара"}))
	require.NoError(t, s.SaveCollection(ctx, collections.Collection{ID: "2", Title: "Официанты"}))
	require.NoError(t, s.SaveCollections(ctx, []collections.Collection{{ID: "2", Title: "Официанты"}, {ID: "1", Title: "Повара"}}))

	list, err := s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID)

	require.NoError(t, s.DeleteCollection(ctx, "2"))
	list, err = s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWriteFailed(t *testing.T) {
	s := newMemoryStorage(t, rejectingBackend{})

	err := s.CreateOrder(context.Background(), orders.Order{ID: "1"})
	assert.ErrorIs(t, err, ErrWriteFailed)
}

// gatedBackend holds every read until the expected number of readers arrived.
type gatedBackend struct {
	*kvstore.MemoryBackend
	reads sync.WaitGroup
}

func (g *gatedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := g.MemoryBackend.Get(ctx, key)
	g.reads.Done()
	g.reads.Wait()
	return raw, err
}

func TestConcurrentWritersLoseUpdate(t *testing.T) {
	gated := &gatedBackend{MemoryBackend: kvstore.NewMemoryBackend()}
	gated.reads.Add(2)
	s := newMemoryStorage(t, gated)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"A", "B"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.CreateOrder(ctx, orders.Order{ID: id}))
		}()
	}
	wg.Wait()

	raw, err := gated.MemoryBackend.Get(ctx, ordersKey)
	require.NoError(t, err)

	var stored []orders.Order
	require.NoError(t, json.Unmarshal(raw, &stored))
	// Both writers read the empty array, so the later write drops the other order.
	require.Len(t, stored, 1)
	assert.Contains(t, []string{"A", "B"}, stored[0].ID)
}

func TestPaymentJournal(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite3.New(ctx, sqlite3.WithPath(filepath.Join(t.TempDir(), "journal.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(kvstore.New(discard(), nil), db)
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordTransition(ctx, payment.Transition{
		PaymentID: "P1", Entity: payment.EntityTransaction, EntityID: "T1", Source: payment.SourceWebhook,
		FromStatus: orders.PaymentPending, ToStatus: orders.PaymentSucceeded, CreatedAt: at,
	}))
	require.NoError(t, s.RecordTransition(ctx, payment.Transition{
		PaymentID: "P1", Entity: payment.EntityOrder, EntityID: "O1", Source: payment.SourceWebhook,
		FromStatus: orders.PaymentPending, ToStatus: orders.PaymentSucceeded, CreatedAt: at,
	}))
	require.NoError(t, s.RecordTransition(ctx, payment.Transition{
		PaymentID: "P2", Entity: payment.EntityOrder, EntityID: "O2", Source: payment.SourcePoll,
		FromStatus: orders.PaymentPending, ToStatus: orders.PaymentCanceled, CreatedAt: at,
	}))

	got, err := s.ListTransitions(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, payment.Transition{
		ID: 1, PaymentID: "P1", Entity: payment.EntityTransaction, EntityID: "T1", Source: payment.SourceWebhook,
		FromStatus: orders.PaymentPending, ToStatus: orders.PaymentSucceeded, CreatedAt: at,
	}, got[0])
	assert.Equal(t, payment.EntityOrder, got[1].Entity)

	none, err := s.ListTransitions(ctx, "P404")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournalWithoutDatabase(t *testing.T) {
	s := newMemoryStorage(t)
	assert.ErrorIs(t, s.RecordTransition(context.Background(), payment.Transition{}), errNoJournal)
	_, err := s.ListTransitions(context.Background(), "P1")
	assert.ErrorIs(t, err, errNoJournal)
}
