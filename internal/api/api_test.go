package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staysee-store/internal/infra/sqlite3"
	"staysee-store/internal/infra/yookassa"
	"staysee-store/internal/kvstore"
	"staysee-store/internal/localization"
	"staysee-store/internal/storage"
	"staysee-store/internal/stories/collections"
	"staysee-store/internal/stories/filters"
	"staysee-store/internal/stories/orders"
	"staysee-store/internal/stories/payment"
	"staysee-store/internal/stories/products"
	"staysee-store/internal/stories/projects"
	"staysee-store/internal/stories/users"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite3.New(ctx, sqlite3.WithPath(filepath.Join(t.TempDir(), "journal.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	kv := kvstore.New(logger, nil, kvstore.Tier{Backend: kvstore.NewMemoryBackend(), Authoritative: true})
	repo := storage.New(kv, db)
	require.NoError(t, repo.EnsureSchema(ctx))

	loc, err := localization.NewService("ru")
	require.NoError(t, err)

	paymentService, err := payment.NewService(repo, repo, yookassa.NewClient("", "", logger), loc, "ru", "http://localhost:3000", logger)
	require.NoError(t, err)

	h := NewHandler(Services{
		Products:    products.NewService(repo),
		Filters:     filters.NewService(repo, loc, "ru", logger),
		Collections: collections.NewService(repo),
		Projects:    projects.NewService(repo),
		Orders:      orders.NewService(repo, loc, "ru", logger),
		Users:       users.NewService(repo),
		Payment:     paymentService,
	}, logger)

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

type response struct {
	status int
	body   map[string]any
	list   []any
}

func send(t *testing.T, srv *httptest.Server, method, path, body string, headers ...string) response {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{status: resp.StatusCode}
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		require.NoError(t, json.Unmarshal(raw, &out.list), string(raw))
	} else if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func TestProductsAPI(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "create without name", method: http.MethodPost, path: "/api/products", body: `{"price":100}`, wantStatus: http.StatusBadRequest, wantMsg: "invalid product data"},
		{name: "create with broken json", method: http.MethodPost, path: "/api/products", body: `{"name":`, wantStatus: http.StatusBadRequest},
		{name: "create", method: http.MethodPost, path: "/api/products", body: `{"id":"101","name":" Китель ","price":5500,"image":"/images/products/a.jpg"}`, wantStatus: http.StatusCreated},
		{name: "update missing", method: http.MethodPut, path: "/api/products", body: `{"id":"999","name":"x"}`, wantStatus: http.StatusNotFound, wantMsg: "product not found"},
		{name: "update", method: http.MethodPut, path: "/api/products", body: `{"id":"101","name":"Китель Pro","tags":["хит"]}`, wantStatus: http.StatusOK},
		{name: "delete without id", method: http.MethodDelete, path: "/api/products", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := send(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.body["message"])
			}
		})
	}

	list := send(t, srv, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, list.status)
	require.Len(t, list.list, 1)
	p := list.list[0].(map[string]any)
	assert.Equal(t, "Китель Pro", p["name"])
	assert.Equal(t, 5500.0, p["price"])
	assert.Equal(t, []any{"/images/catalog-product.jpg"}, p["images"])
	assert.Equal(t, []any{"хит"}, p["tags"])
	assert.Equal(t, map[string]any{}, p["details"])

	del := send(t, srv, http.MethodDelete, "/api/products?id=101", "")
	assert.Equal(t, http.StatusOK, del.status)
	assert.Equal(t, "Product deleted successfully", del.body["message"])
}

func TestFiltersAPI(t *testing.T) {
	srv := newTestServer(t)

	seeded := send(t, srv, http.MethodGet, "/api/filters", "")
	require.Equal(t, http.StatusOK, seeded.status)
	require.Len(t, seeded.list, 4)
	assert.Equal(t, "кители", seeded.list[0].(map[string]any)["slug"])

	created := send(t, srv, http.MethodPost, "/api/filters", `{"name":"Кители"}`)
	require.Equal(t, http.StatusOK, created.status)
	assert.Equal(t, "кители-2", created.body["slug"])

	renamed := send(t, srv, http.MethodPut, "/api/filters", `{"id":"filter-кители","name":"Кители"}`)
	require.Equal(t, http.StatusOK, renamed.status)
	assert.Equal(t, "кители", renamed.body["slug"])

	missing := send(t, srv, http.MethodPut, "/api/filters", `{"id":"filter-none","name":"Шапки"}`)
	assert.Equal(t, http.StatusNotFound, missing.status)

	deleted := send(t, srv, http.MethodDelete, "/api/filters?id="+url.QueryEscape("filter-брюки"), "")
	require.Equal(t, http.StatusOK, deleted.status)
	assert.Equal(t, true, deleted.body["ok"])

	after := send(t, srv, http.MethodGet, "/api/filters", "")
	assert.Len(t, after.list, 4)
}

func TestCollectionsAndProjectsAPI(t *testing.T) {
	srv := newTestServer(t)

	bad := send(t, srv, http.MethodPost, "/api/collections", `{"title":"Повара"}`)
	assert.Equal(t, http.StatusBadRequest, bad.status)

	first := send(t, srv, http.MethodPost, "/api/collections", `{"title":"Повара","description":"Для кухни","slug":"chefs"}`)
	require.Equal(t, http.StatusCreated, first.status)
	assert.Equal(t, "1", first.body["id"])
	assert.Equal(t, []any{}, first.body["sections"])

	second := send(t, srv, http.MethodPost, "/api/collections", `{"title":"Официанты","description":"Для зала","slug":"waiters"}`)
	require.Equal(t, http.StatusCreated, second.status)
	assert.Equal(t, "2", second.body["id"])

	reordered := send(t, srv, http.MethodPut, "/api/collections", ` [{"id":"2","title":"Официанты","description":"Для зала","slug":"waiters","sections":[]},{"id":"1","title":"Повара","description":"Для кухни","slug":"chefs","sections":[]}]`)
	require.Equal(t, http.StatusOK, reordered.status)
	assert.Len(t, reordered.list, 2)

	list := send(t, srv, http.MethodGet, "/api/collections", "")
	assert.Equal(t, "2", list.list[0].(map[string]any)["id"])

	patched := send(t, srv, http.MethodPut, "/api/collections", `{"id":"1","title":"Шеф-повара"}`)
	require.Equal(t, http.StatusOK, patched.status)
	assert.Equal(t, "Шеф-повара", patched.body["title"])
	assert.Equal(t, "Для кухни", patched.body["description"])

	noID := send(t, srv, http.MethodPut, "/api/collections", `{"title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, noID.status)

	project := send(t, srv, http.MethodPost, "/api/projects", `{"type":"promo","title":"Весна"}`)
	require.Equal(t, http.StatusCreated, project.status)
	assert.Equal(t, "1", project.body["id"])
	assert.Equal(t, 0.0, project.body["order"])

	noType := send(t, srv, http.MethodPost, "/api/projects", `{"title":"Весна"}`)
	assert.Equal(t, http.StatusBadRequest, noType.status)

	moved := send(t, srv, http.MethodPut, "/api/projects", `{"id":"1","order":3}`)
	require.Equal(t, http.StatusOK, moved.status)
	assert.Equal(t, 3.0, moved.body["order"])
	assert.Equal(t, "Весна", moved.body["title"])

	gone := send(t, srv, http.MethodDelete, "/api/projects?id=1", "")
	assert.Equal(t, http.StatusOK, gone.status)
}

func TestOrdersAPI(t *testing.T) {
	srv := newTestServer(t)

	empty := send(t, srv, http.MethodPost, "/api/orders", `{"items":[],"total":0}`)
	assert.Equal(t, http.StatusBadRequest, empty.status)

	created := send(t, srv, http.MethodPost, "/api/orders", `{"items":[{"id":101,"name":"Китель","price":5500,"quantity":1}],"total":5500,"address":"Москва"}`)
	require.Equal(t, http.StatusCreated, created.status)
	assert.Equal(t, "Order created successfully", created.body["message"])
	order := created.body["order"].(map[string]any)
	assert.Equal(t, "guest", order["userId"])
	assert.Equal(t, "В обработке", order["status"])
	assert.Len(t, order["id"], 6)
	assert.Equal(t, 101.0, order["items"].([]any)[0].(map[string]any)["id"])

	all := send(t, srv, http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, all.status)
	views := all.body["orders"].([]any)
	require.Len(t, views, 1)
	assert.Equal(t, map[string]any{"name": "Неизвестный", "email": ""}, views[0].(map[string]any)["user"])

	mine := send(t, srv, http.MethodGet, "/api/orders?userId=u1", "")
	assert.Empty(t, mine.body["orders"])
}

func TestUsersAPI(t *testing.T) {
	srv := newTestServer(t)

	created := send(t, srv, http.MethodPost, "/api/users", `{"email":" Anna@Example.com ","name":"Анна"}`)
	require.Equal(t, http.StatusCreated, created.status)
	assert.Equal(t, "anna@example.com", created.body["email"])

	again := send(t, srv, http.MethodPost, "/api/users", `{"email":"anna@example.com"}`)
	require.Equal(t, http.StatusOK, again.status)
	assert.Equal(t, created.body["id"], again.body["id"])

	found := send(t, srv, http.MethodGet, "/api/users?email=ANNA@example.com", "")
	assert.Equal(t, http.StatusOK, found.status)

	missing := send(t, srv, http.MethodGet, "/api/users?email=nobody@example.com", "")
	assert.Equal(t, http.StatusNotFound, missing.status)

	list := send(t, srv, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, list.status)
	stats := list.body["users"].([]any)
	require.Len(t, stats, 1)
	assert.Equal(t, 0.0, stats[0].(map[string]any)["ordersCount"])
}

func TestPaymentFlow(t *testing.T) {
	srv := newTestServer(t)

	created := send(t, srv, http.MethodPost, "/api/orders", `{"userId":"u1","items":[{"id":"k1","name":"Китель","price":1500}],"total":1500}`)
	require.Equal(t, http.StatusCreated, created.status)
	orderID := created.body["order"].(map[string]any)["id"].(string)

	invalid := send(t, srv, http.MethodPost, "/api/payment/create", `{"orderId":"`+orderID+`"}`)
	assert.Equal(t, http.StatusBadRequest, invalid.status)
	assert.Equal(t, "missing required fields", invalid.body["message"])

	pay := send(t, srv, http.MethodPost, "/api/payment/create", `{"orderId":"`+orderID+`","amount":1500}`, "Idempotence-Key", "checkout-1")
	require.Equal(t, http.StatusOK, pay.status)
	paymentID := pay.body["paymentId"].(string)
	assert.True(t, strings.HasPrefix(paymentID, yookassa.MockPrefix))
	assert.Equal(t, "http://localhost:3000/profile", pay.body["confirmation_url"])

	txs := send(t, srv, http.MethodGet, "/api/transactions", "")
	require.Len(t, txs.list, 1)
	assert.Equal(t, "pending", txs.list[0].(map[string]any)["status"])

	status := send(t, srv, http.MethodGet, "/api/payment/status?orderId="+orderID, "")
	require.Equal(t, http.StatusOK, status.status)
	assert.Equal(t, "succeeded", status.body["status"])

	orderList := send(t, srv, http.MethodGet, "/api/orders?userId=u1", "")
	paid := orderList.body["orders"].([]any)[0].(map[string]any)
	assert.Equal(t, "Оплачен", paid["status"])
	assert.Equal(t, "succeeded", paid["paymentStatus"])
	assert.Equal(t, paymentID, paid["paymentId"])

	events := send(t, srv, http.MethodGet, "/api/payment/events?paymentId="+paymentID, "")
	require.Equal(t, http.StatusOK, events.status)
	assert.Len(t, events.body["events"], 2)

	conflict := send(t, srv, http.MethodPost, "/api/payment/create", `{"orderId":"`+orderID+`","amount":1500}`)
	assert.Equal(t, http.StatusConflict, conflict.status)

	unknown := send(t, srv, http.MethodGet, "/api/payment/status?orderId=000000", "")
	require.Equal(t, http.StatusOK, unknown.status)
	assert.Equal(t, "unknown", unknown.body["status"])
	assert.Equal(t, "Order or payment not found", unknown.body["message"])

	noID := send(t, srv, http.MethodGet, "/api/payment/status", "")
	assert.Equal(t, http.StatusBadRequest, noID.status)

	realID := send(t, srv, http.MethodGet, "/api/payment/status?paymentId=2d6e1a2c-000f-5000-9000-1b68e7b15f3f", "")
	assert.Equal(t, http.StatusInternalServerError, realID.status)
	assert.Contains(t, realID.body["message"], "credentials")
}

func TestPaymentWebhookAPI(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "other event type",
			body:       `{"type":"refund","object":{"id":"P1"}}`,
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"message": "Ignored"},
		},
		{
			name:       "other event type with null object",
			body:       `{"type":"ping","object":null}`,
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"message": "Ignored"},
		},
		{
			name:       "notification with null object",
			body:       `{"type":"notification","object":null}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"message": "missing payment identifier"},
		},
		{
			name:       "missing payment id",
			body:       `{"type":"notification","object":{"status":"succeeded"}}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"message": "missing payment identifier"},
		},
		{
			name:       "unknown payment",
			body:       `{"type":"notification","event":"payment.succeeded","object":{"id":"P404","status":"succeeded","metadata":{"order_id":"O404"}}}`,
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"status": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := send(t, srv, http.MethodPost, "/api/payment/webhook", tt.body)
			assert.Equal(t, tt.wantStatus, resp.status)
			assert.Equal(t, tt.wantBody, resp.body)
		})
	}

	broken := send(t, srv, http.MethodPost, "/api/payment/webhook", `{"type":`)
	assert.Equal(t, http.StatusBadRequest, broken.status)
}

func TestParseNotification(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    payment.Notification
		wantErr bool
	}{
		{
			name: "full payload",
			data: `{"type":"notification","event":"payment.succeeded","object":{"id":"P1","status":"succeeded","paid":true,"amount":{"value":"10.00","currency":"RUB"},"metadata":{"cms_name":"x","order_id":"O1"}}}`,
			want: payment.Notification{Type: "notification", PaymentID: "P1", Status: "succeeded", OrderID: "O1"},
		},
		{
			name: "null metadata",
			data: `{"type":"notification","object":{"id":"P1","status":"canceled","metadata":null}}`,
			want: payment.Notification{Type: "notification", PaymentID: "P1", Status: "canceled"},
		},
		{
			name: "numeric order id is ignored",
			data: `{"type":"notification","object":{"id":"P1","metadata":{"order_id":42}}}`,
			want: payment.Notification{Type: "notification", PaymentID: "P1"},
		},
		{
			name: "object that is not an object",
			data: `{"type":"ping","object":"x"}`,
			want: payment.Notification{Type: "ping"},
		},
		{name: "not an object", data: `[]`, wantErr: true},
		{name: "id is not a string", data: `{"object":{"id":5}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNotification([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
