package handler

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/Homd11/CAFESYSTEM/internal/domain/menu"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
	"github.com/Homd11/CAFESYSTEM/internal/domain/order"
	"github.com/Homd11/CAFESYSTEM/internal/domain/payment"
)

// Amounts are encoded as fixed two-decimal strings so clients never see
// binary floating point.

func encodeAmount(e *jx.Encoder, field string, d decimal.Decimal) {
	e.FieldStart(field)
	e.Str(d.StringFixed(2))
}

func encodeMoney(e *jx.Encoder, field string, m money.Money) {
	encodeAmount(e, field, m.Amount())
}

func encodeTime(e *jx.Encoder, field string, t time.Time) {
	e.FieldStart(field)
	e.Str(t.UTC().Format(time.RFC3339))
}

func encodeMenuItem(e *jx.Encoder, item menu.MenuItem) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(item.ID)
	e.FieldStart("name")
	e.Str(item.Name)
	e.FieldStart("description")
	e.Str(item.Description)
	encodeMoney(e, "price", item.Price)
	e.FieldStart("currency")
	e.Str(string(item.Price.Currency()))
	e.FieldStart("category")
	e.Str(string(item.Category))
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("studentId")
	e.Int64(o.StudentID)
	e.FieldStart("status")
	e.Str(string(o.Status()))
	encodeTime(e, "createdAt", o.CreatedAt)

	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items() {
		e.ObjStart()
		e.FieldStart("menuItemId")
		e.Int64(it.MenuItemID)
		e.FieldStart("name")
		e.Str(it.NameSnapshot)
		encodeMoney(e, "unitPrice", it.UnitPrice)
		e.FieldStart("quantity")
		e.Int(it.Qty)
		encodeMoney(e, "lineTotal", it.LineTotal())
		e.ObjEnd()
	}
	e.ArrEnd()

	if total, ok := o.Total(); ok {
		encodeMoney(e, "total", total)
		e.FieldStart("currency")
		e.Str(string(total.Currency()))
	}
	e.ObjEnd()
}

func encodeOrders(e *jx.Encoder, orders []*order.Order) {
	e.ArrStart()
	for _, o := range orders {
		encodeOrder(e, o)
	}
	e.ArrEnd()
}

func encodeCheckout(e *jx.Encoder, res *order.CheckoutResult) {
	e.ObjStart()
	e.FieldStart("order")
	encodeOrder(e, res.Order)
	encodeMoney(e, "gross", res.Gross)
	encodeMoney(e, "discount", res.Discount)
	encodeMoney(e, "payable", res.Payable)
	e.FieldStart("currency")
	e.Str(string(res.Payable.Currency()))
	e.FieldStart("paymentSkipped")
	e.Bool(res.PaymentSkipped)
	e.FieldStart("pointsAwarded")
	e.Int(res.PointsAwarded)

	e.FieldStart("payment")
	encodeConfirmation(e, res.Confirmation)
	e.ObjEnd()
}

func encodeConfirmation(e *jx.Encoder, c payment.Confirmation) {
	e.ObjStart()
	e.FieldStart("method")
	e.Str(string(c.Method))
	encodeMoney(e, "amount", c.Amount)
	if c.TransactionID != "" {
		e.FieldStart("transactionId")
		e.Str(c.TransactionID)
	}
	if c.AuthorizationCode != "" {
		e.FieldStart("authorizationCode")
		e.Str(c.AuthorizationCode)
	}
	e.FieldStart("details")
	e.Str(c.Details)
	e.ObjEnd()
}

func encodePayment(e *jx.Encoder, p payment.Payment) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("orderId")
	e.Int64(p.OrderID)
	e.FieldStart("method")
	e.Str(string(p.Method))
	encodeMoney(e, "amount", p.Amount)
	e.FieldStart("currency")
	e.Str(string(p.Amount.Currency()))
	e.FieldStart("transactionId")
	e.Str(p.TransactionID)
	e.FieldStart("authorizationCode")
	e.Str(p.AuthorizationCode)
	e.FieldStart("successful")
	e.Bool(p.Successful)
	encodeTime(e, "createdAt", p.CreatedAt)
	e.ObjEnd()
}
