// Package handler exposes the cafeteria checkout and loyalty operations as a
// JSON HTTP API.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/loyalty"
	"github.com/Homd11/CAFESYSTEM/internal/domain/menu"
	"github.com/Homd11/CAFESYSTEM/internal/domain/order"
	"github.com/Homd11/CAFESYSTEM/internal/domain/payment"
	"github.com/Homd11/CAFESYSTEM/internal/domain/student"
	"github.com/Homd11/CAFESYSTEM/pkg/httpmiddleware"
)

// maxBodySize bounds request bodies.
const maxBodySize = 64 << 10

// Loyalty is the points ledger used by the API.
type Loyalty interface {
	Balance(st *student.Student) int
	Redeem(ctx context.Context, st *student.Student, points int) (loyalty.Discount, error)
	PendingTotal(studentID int64) decimal.Decimal
}

// Orders is the checkout workflow used by the API.
type Orders interface {
	PlaceOrderWithPayment(ctx context.Context, req order.CheckoutRequest) (*order.CheckoutResult, error)
	UpdateOrderStatus(ctx context.Context, id int64, status order.Status) error
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	GetOrderHistory(ctx context.Context, studentID int64) ([]*order.Order, error)
	GetAllOrders(ctx context.Context) ([]*order.Order, error)
	GetPendingOrders(ctx context.Context) ([]*order.Order, error)
	GetOrdersByStatus(ctx context.Context, status order.Status) ([]*order.Order, error)
}

// PaymentHistory lists the payment records of an order.
type PaymentHistory interface {
	FindByOrder(ctx context.Context, orderID int64) ([]payment.Payment, error)
}

// Receipts reports the most recent successful payment authorization.
type Receipts interface {
	Last() (payment.Confirmation, bool)
	Receipt() string
}

// Handler serves the cafeteria API.
type Handler struct {
	catalog  menu.Catalog
	students student.Repository
	loyalty  Loyalty
	orders   Orders
	payments PaymentHistory
	receipts Receipts
	methods  []payment.Tag
}

// NewHandler constructs a Handler with the required domain dependencies.
// methods lists the payment tags advertised to clients.
func NewHandler(
	catalog menu.Catalog,
	students student.Repository,
	loyalty Loyalty,
	orders Orders,
	payments PaymentHistory,
	receipts Receipts,
	methods []payment.Tag,
) *Handler {
	return &Handler{
		catalog:  catalog,
		students: students,
		loyalty:  loyalty,
		orders:   orders,
		payments: payments,
		receipts: receipts,
		methods:  methods,
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpmiddleware.Route(fn))
	}
	route("GET /api/menu", h.ListMenu)
	route("GET /api/payment-methods", h.ListPaymentMethods)
	route("GET /api/payments/last", h.LastPayment)
	route("GET /api/payments/last/receipt", h.LastReceipt)

	route("GET /api/students", h.FindStudent)
	route("GET /api/students/{id}/loyalty", h.GetLoyalty)
	route("POST /api/students/{id}/redemptions", h.Redeem)
	route("GET /api/students/{id}/orders", h.ListStudentOrders)

	route("POST /api/orders", h.PlaceOrder)
	route("GET /api/orders", h.ListOrders)
	route("GET /api/orders/pending", h.ListPendingOrders)
	route("GET /api/orders/{id}", h.GetOrder)
	route("PATCH /api/orders/{id}/status", h.UpdateOrderStatus)
	route("GET /api/orders/{id}/payments", h.ListPayments)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerr.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

// loadStudent resolves the {id} path value to a student.
func (h *Handler) loadStudent(r *http.Request) (*student.Student, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	return h.students.FindByID(r.Context(), id)
}

// decodeBody reads a JSON object from the request body, calling fn per field.
func decodeBody(w http.ResponseWriter, r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := jx.Decode(body, 512).Obj(fn); err != nil {
		return &domainerr.ValidationError{Field: "body", Reason: "malformed JSON: " + err.Error()}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, domainerr.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domainerr.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, domainerr.ErrInsufficientPoints):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domainerr.ErrPaymentDeclined):
		status, msg = http.StatusPaymentRequired, err.Error()
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()
	writeJSON(w, status, &e)
}
