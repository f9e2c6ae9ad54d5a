package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"staysee-store/internal/stories/collections"
	"staysee-store/internal/stories/filters"
	"staysee-store/internal/stories/orders"
	"staysee-store/internal/stories/payment"
	"staysee-store/internal/stories/products"
	"staysee-store/internal/stories/projects"
	"staysee-store/internal/stories/users"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

type Services struct {
	Products    *products.Service
	Filters     *filters.Service
	Collections *collections.Service
	Projects    *projects.Service
	Orders      *orders.Service
	Users       *users.Service
	Payment     *payment.Service
}

// Handler serves the storefront API on top of the stories.
type Handler struct {
	products    *products.Service
	filters     *filters.Service
	collections *collections.Service
	projects    *projects.Service
	orders      *orders.Service
	users       *users.Service
	payment     *payment.Service
	logger      *slog.Logger
}

func NewHandler(s Services, logger *slog.Logger) *Handler {
	return &Handler{
		products:    s.Products,
		filters:     s.Filters,
		collections: s.Collections,
		projects:    s.Projects,
		orders:      s.Orders,
		users:       s.Users,
		payment:     s.Payment,
		logger:      logger,
	}
}

func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Put("/", h.updateProduct)
			r.Delete("/", h.deleteProduct)
		})
		r.Route("/filters", func(r chi.Router) {
			r.Get("/", h.listFilters)
			r.Post("/", h.createFilter)
			r.Put("/", h.renameFilter)
			r.Delete("/", h.deleteFilter)
		})
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", h.listCollections)
			r.Post("/", h.createCollection)
			r.Put("/", h.updateCollection)
			r.Delete("/", h.deleteCollection)
		})
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.listProjects)
			r.Post("/", h.createProject)
			r.Put("/", h.updateProject)
			r.Delete("/", h.deleteProject)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Post("/", h.createOrder)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.registerUser)
		})
		r.Get("/transactions", h.listTransactions)
		r.Route("/payment", func(r chi.Router) {
			r.Post("/create", h.createPayment)
			r.Get("/status", h.paymentStatus)
			r.Post("/webhook", h.paymentWebhook)
			r.Get("/events", h.paymentEvents)
		})
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
