package api

import (
	"net/http"
	"time"

	"staysee-store/internal/stories/orders"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	if userID := r.URL.Query().Get("userId"); userID != "" {
		list, err := h.orders.ListByUser(r.Context(), userID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": list})
		return
	}

	list, err := h.orders.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list})
}

type createOrderRequest struct {
	UserID    string             `json:"userId"`
	Items     []orders.OrderItem `json:"items"`
	Total     float64            `json:"total"`
	Address   string             `json:"address"`
	Status    string             `json:"status"`
	CreatedAt *time.Time         `json:"createdAt"`
	Customer  *orders.Customer   `json:"customer"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	order, err := h.orders.Create(r.Context(), orders.CreateRequest{
		UserID:    req.UserID,
		Items:     req.Items,
		Total:     req.Total,
		Address:   req.Address,
		Status:    req.Status,
		CreatedAt: req.CreatedAt,
		Customer:  req.Customer,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created successfully",
		"order":   order,
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		u, err := h.users.FindByEmail(r.Context(), email)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if u == nil {
			writeJSON(w, http.StatusNotFound, message{Message: "User not found"})
			return
		}
		writeJSON(w, http.StatusOK, u)
		return
	}

	list, err := h.users.ListWithStats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": list})
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, created, err := h.users.Register(r.Context(), req.Email, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, u)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	list, err := h.payment.ListTransactions(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
