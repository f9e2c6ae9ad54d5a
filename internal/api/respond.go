package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"staysee-store/internal/infra/yookassa"
	"staysee-store/internal/stories/collections"
	"staysee-store/internal/stories/filters"
	"staysee-store/internal/stories/orders"
	"staysee-store/internal/stories/payment"
	"staysee-store/internal/stories/products"
	"staysee-store/internal/stories/projects"
	"staysee-store/internal/stories/users"
)

var errBadJSON = errors.New("invalid JSON body")

type message struct {
	Message string `json:"message"`
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{errBadJSON, http.StatusBadRequest},
	{products.ErrInvalidInput, http.StatusBadRequest},
	{filters.ErrInvalidInput, http.StatusBadRequest},
	{collections.ErrInvalidInput, http.StatusBadRequest},
	{projects.ErrInvalidInput, http.StatusBadRequest},
	{orders.ErrInvalidInput, http.StatusBadRequest},
	{users.ErrInvalidInput, http.StatusBadRequest},
	{payment.ErrInvalidInput, http.StatusBadRequest},
	{payment.ErrMissingIdentifier, http.StatusBadRequest},
	{products.ErrNotFound, http.StatusNotFound},
	{filters.ErrNotFound, http.StatusNotFound},
	{collections.ErrNotFound, http.StatusNotFound},
	{projects.ErrNotFound, http.StatusNotFound},
	{payment.ErrAlreadyPaid, http.StatusConflict},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps err to a status code. Client errors carry the error text;
// server errors carry it only for payment provider failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, message{Message: err.Error()})
			return
		}
	}

	h.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)

	text := "Internal server error"
	var gwErr *yookassa.GatewayError
	if errors.As(err, &gwErr) || errors.Is(err, yookassa.ErrCredentialsMissing) {
		text = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, message{Message: text})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return body, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}
