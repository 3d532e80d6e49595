package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/loyalty"
	"github.com/Homd11/CAFESYSTEM/internal/domain/student"
)

// FindStudent handles GET /api/students?code=.
func (h *Handler) FindStudent(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, r, domainerr.Invalid("code", "required"))
		return
	}
	st, err := h.students.FindByCode(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	h.encodeStudent(&e, st)
	writeJSON(w, http.StatusOK, &e)
}

// GetLoyalty handles GET /api/students/{id}/loyalty.
func (h *Handler) GetLoyalty(w http.ResponseWriter, r *http.Request) {
	st, err := h.loadStudent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	h.encodeStudent(&e, st)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) encodeStudent(e *jx.Encoder, st *student.Student) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(st.ID)
	e.FieldStart("code")
	e.Str(st.Code)
	e.FieldStart("name")
	e.Str(st.Name)
	e.FieldStart("points")
	e.Int(h.loyalty.Balance(st))
	encodeAmount(e, "pendingDiscount", h.loyalty.PendingTotal(st.ID))
	e.FieldStart("pointsPerUnit")
	e.Int(loyalty.PointsPerDiscountUnit)
	e.ObjEnd()
}

// Redeem handles POST /api/students/{id}/redemptions with {"points":N}.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	st, err := h.loadStudent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var points int
	err = decodeBody(w, r, func(d *jx.Decoder, key string) error {
		if key != "points" {
			return d.Skip()
		}
		v, err := d.Int()
		points = v
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	discount, err := h.loyalty.Redeem(r.Context(), st, points)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("points")
	e.Int(points)
	encodeAmount(&e, "discount", discount.Amount)
	e.FieldStart("description")
	e.Str(discount.Description)
	e.FieldStart("balance")
	e.Int(h.loyalty.Balance(st))
	encodeAmount(&e, "pendingDiscount", h.loyalty.PendingTotal(st.ID))
	e.ObjEnd()
	writeJSON(w, http.StatusCreated, &e)
}

// ListStudentOrders handles GET /api/students/{id}/orders.
func (h *Handler) ListStudentOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orders, err := h.orders.GetOrderHistory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOrders(&e, orders)
	writeJSON(w, http.StatusOK, &e)
}
