package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/order"
	"github.com/Homd11/CAFESYSTEM/internal/domain/payment"
)

type checkoutBody struct {
	studentID int64
	method    string
	items     []order.Selection
}

func (b *checkoutBody) decode(d *jx.Decoder, key string) error {
	switch key {
	case "studentId":
		v, err := d.Int64()
		b.studentID = v
		return err
	case "paymentMethod":
		v, err := d.Str()
		b.method = v
		return err
	case "items":
		return d.Arr(func(d *jx.Decoder) error {
			var s order.Selection
			err := d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "menuItemId":
					v, err := d.Int64()
					s.ItemID = v
					return err
				case "quantity":
					v, err := d.Int()
					s.Qty = v
					return err
				default:
					return d.Skip()
				}
			})
			b.items = append(b.items, s)
			return err
		})
	default:
		return d.Skip()
	}
}

// PlaceOrder handles POST /api/orders. The student's pending loyalty
// discounts are applied automatically.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var body checkoutBody
	if err := decodeBody(w, r, body.decode); err != nil {
		writeError(w, r, err)
		return
	}
	if body.studentID <= 0 {
		writeError(w, r, domainerr.Invalid("studentId", "required"))
		return
	}
	tag, err := payment.ParseTag(body.method)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	st, err := h.students.FindByID(ctx, body.studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.orders.PlaceOrderWithPayment(ctx, order.CheckoutRequest{
		Student:    st,
		Selections: body.items,
		Method:     tag,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCheckout(&e, res)
	writeJSON(w, http.StatusCreated, &e)
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusOK, &e)
}

// ListOrders handles GET /api/orders with an optional ?status= filter.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []*order.Order
		err    error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		var status order.Status
		if status, err = order.ParseStatus(raw); err == nil {
			orders, err = h.orders.GetOrdersByStatus(r.Context(), status)
		}
	} else {
		orders, err = h.orders.GetAllOrders(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOrders(&e, orders)
	writeJSON(w, http.StatusOK, &e)
}

// ListPendingOrders handles GET /api/orders/pending.
func (h *Handler) ListPendingOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.GetPendingOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOrders(&e, orders)
	writeJSON(w, http.StatusOK, &e)
}

// UpdateOrderStatus handles PATCH /api/orders/{id}/status with
// {"status":"READY"}.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var raw string
	err = decodeBody(w, r, func(d *jx.Decoder, key string) error {
		if key != "status" {
			return d.Skip()
		}
		v, err := d.Str()
		raw = v
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := order.ParseStatus(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if err := h.orders.UpdateOrderStatus(ctx, id, status); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusOK, &e)
}

// ListPayments handles GET /api/orders/{id}/payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := h.payments.FindByOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for _, p := range payments {
		encodePayment(&e, p)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}
