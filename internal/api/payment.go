package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"staysee-store/internal/stories/payment"
)

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID   string  `json:"orderId"`
		Amount    float64 `json:"amount"`
		ReturnURL string  `json:"returnUrl"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.payment.CreatePayment(r.Context(), payment.CreateRequest{
		OrderID:        req.OrderID,
		Amount:         req.Amount,
		ReturnURL:      req.ReturnURL,
		IdempotenceKey: r.Header.Get("Idempotence-Key"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.payment.Poll(r.Context(), payment.PollRequest{
		PaymentID: q.Get("paymentId"),
		OrderID:   q.Get("orderId"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	n, err := parseNotification(body)
	if err != nil {
		h.fail(w, r, errors.Wrap(errBadJSON, err.Error()))
		return
	}

	ignored, err := h.payment.HandleNotification(r.Context(), n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if ignored {
		writeJSON(w, http.StatusOK, message{Message: "Ignored"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) paymentEvents(w http.ResponseWriter, r *http.Request) {
	paymentID := r.URL.Query().Get("paymentId")
	events, err := h.payment.Events(r.Context(), paymentID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paymentId": paymentID, "events": events})
}

// parseNotification reads the fields of a provider push that reconciliation
// needs and skips everything else.
//
//	{"type":"notification","event":"payment.succeeded",
//	 "object":{"id":"...","status":"succeeded","metadata":{"order_id":"..."}}}
func parseNotification(data []byte) (payment.Notification, error) {
	var n payment.Notification
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "type":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "type")
			}
			n.Type = v
		case "object":
			if d.Next() != jx.Object {
				return d.Skip()
			}
			return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				switch string(key) {
				case "id":
					v, err := d.Str()
					if err != nil {
						return errors.Wrap(err, "object.id")
					}
					n.PaymentID = v
				case "status":
					v, err := d.Str()
					if err != nil {
						return errors.Wrap(err, "object.status")
					}
					n.Status = v
				case "metadata":
					if d.Next() != jx.Object {
						return d.Skip()
					}
					return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
						if string(key) != "order_id" || d.Next() != jx.String {
							return d.Skip()
						}
						v, err := d.Str()
						if err != nil {
							return errors.Wrap(err, "object.metadata.order_id")
						}
						n.OrderID = v
						return nil
					})
				default:
					return d.Skip()
				}
				return nil
			})
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return payment.Notification{}, errors.Wrap(err, "decode notification")
	}
	return n, nil
}
