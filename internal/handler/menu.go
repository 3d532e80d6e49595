package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
)

// ListMenu handles GET /api/menu.
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListItems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for _, item := range items {
		encodeMenuItem(&e, item)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// ListPaymentMethods handles GET /api/payment-methods.
func (h *Handler) ListPaymentMethods(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.ArrStart()
	for _, tag := range h.methods {
		e.ObjStart()
		e.FieldStart("tag")
		e.Str(string(tag))
		e.FieldStart("name")
		e.Str(tag.DisplayName())
		e.ObjEnd()
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// LastPayment handles GET /api/payments/last.
func (h *Handler) LastPayment(w http.ResponseWriter, r *http.Request) {
	c, ok := h.receipts.Last()
	if !ok {
		writeError(w, r, errors.Wrap(domainerr.ErrNotFound, "last payment"))
		return
	}

	var e jx.Encoder
	encodeConfirmation(&e, c)
	writeJSON(w, http.StatusOK, &e)
}

// LastReceipt handles GET /api/payments/last/receipt with a plain-text receipt
// for the kiosk printer.
func (h *Handler) LastReceipt(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.receipts.Receipt() + "\n"))
}
