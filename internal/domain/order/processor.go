package order

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/loyalty"
	"github.com/Homd11/CAFESYSTEM/internal/domain/menu"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
	"github.com/Homd11/CAFESYSTEM/internal/domain/payment"
	"github.com/Homd11/CAFESYSTEM/internal/domain/student"
)

const instrumentationName = "github.com/Homd11/CAFESYSTEM/internal/domain/order"

// Authorizer charges an amount with the method named by tag.
type Authorizer interface {
	Authorize(ctx context.Context, amount money.Money, tag payment.Tag) (payment.Confirmation, bool)
}

// Ledger credits loyalty points for a paid amount.
type Ledger interface {
	Award(ctx context.Context, st *student.Student, paid money.Money) (int, error)
}

// PendingDiscounts hands out a student's redeemed discounts. TakePending must
// remove what it returns atomically so two checkouts never share a discount.
type PendingDiscounts interface {
	TakePending(studentID int64) []loyalty.Discount
	Restore(studentID int64, discounts []loyalty.Discount)
}

// PaymentRecorder stores payment confirmations.
type PaymentRecorder interface {
	Save(ctx context.Context, p *payment.Payment) error
}

// CheckoutRequest holds the input for a paid checkout. The student's pending
// loyalty discounts are always applied; Discount is an extra amount taken off
// on top of them, and a non-positive value means none.
type CheckoutRequest struct {
	Student    *student.Student
	Selections []Selection
	Method     payment.Tag
	Discount   decimal.Decimal
}

// CheckoutResult holds the output of a successful checkout.
type CheckoutResult struct {
	Order          *Order
	Gross          money.Money
	Discount       money.Money
	Payable        money.Money
	Confirmation   payment.Confirmation
	PointsAwarded  int
	PaymentSkipped bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock overrides the time source used for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Processor) { p.tracer = tp.Tracer(instrumentationName) }
}

// WithMeterProvider sets the meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Processor) { p.meter = mp.Meter(instrumentationName) }
}

// Processor runs the checkout workflow: resolve selections against the menu,
// apply the pending discount, authorize payment, persist the order, record the
// payment and award loyalty points.
type Processor struct {
	catalog   menu.Catalog
	orders    Repository
	payments  Authorizer
	records   PaymentRecorder
	ledger    Ledger
	discounts PendingDiscounts

	now    func() time.Time
	tracer trace.Tracer
	meter  metric.Meter

	checkouts     metric.Int64Counter
	pointsAwarded metric.Int64Counter
}

// NewProcessor creates an order Processor with the required dependencies.
func NewProcessor(
	catalog menu.Catalog,
	orders Repository,
	payments Authorizer,
	records PaymentRecorder,
	ledger Ledger,
	discounts PendingDiscounts,
	opts ...Option,
) *Processor {
	p := &Processor{
		catalog:   catalog,
		orders:    orders,
		payments:  payments,
		records:   records,
		ledger:    ledger,
		discounts: discounts,
		now:       time.Now,
		tracer:    otel.GetTracerProvider().Tracer(instrumentationName),
		meter:     otel.GetMeterProvider().Meter(instrumentationName),
	}
	for _, o := range opts {
		o(p)
	}

	var err error
	if p.checkouts, err = p.meter.Int64Counter("cafeteria.checkouts",
		metric.WithDescription("Checkout attempts by outcome"),
	); err != nil {
		p.checkouts = noop.Int64Counter{}
	}
	if p.pointsAwarded, err = p.meter.Int64Counter("cafeteria.loyalty.points_awarded",
		metric.WithDescription("Loyalty points credited at checkout"),
	); err != nil {
		p.pointsAwarded = noop.Int64Counter{}
	}
	return p
}

// PlaceOrderWithPayment runs a full checkout. Nothing is persisted when
// validation fails, an item is unknown or the payment is declined. Failures
// after the order is saved (payment record, points award) are logged and do
// not fail the checkout.
func (p *Processor) PlaceOrderWithPayment(ctx context.Context, req CheckoutRequest) (_ *CheckoutResult, rerr error) {
	ctx, span := p.tracer.Start(ctx, "order.PlaceOrderWithPayment",
		trace.WithAttributes(attribute.String("payment.method", string(req.Method))),
	)
	defer func() { p.finish(ctx, span, rerr) }()

	if !slices.Contains(payment.Tags(), req.Method) {
		return nil, domainerr.Invalid("paymentMethod", "unsupported: "+string(req.Method))
	}
	o, gross, err := p.assemble(ctx, req.Student, req.Selections)
	if err != nil {
		return nil, err
	}

	discount := req.Discount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	pending := p.discounts.TakePending(req.Student.ID)
	// Put the taken discounts back unless the order is saved.
	saved := false
	defer func() {
		if !saved && len(pending) > 0 {
			p.discounts.Restore(req.Student.ID, pending)
		}
	}()
	discount = discount.Add(loyalty.Total(pending))
	payable := gross.SubFloor(discount)
	// Gross >= payable always holds, so the difference is never negative.
	applied, _ := gross.Sub(payable)

	lg := zctx.From(ctx).With(
		zap.Int64("student_id", req.Student.ID),
		zap.String("payment_method", string(req.Method)),
	)

	var (
		conf    payment.Confirmation
		skipped bool
	)
	if payable.IsZero() {
		// Fully covered by discounts: there is nothing to charge.
		skipped = true
		conf = payment.Confirmation{
			Method:  req.Method,
			Amount:  payable,
			Details: "Covered by loyalty discount: " + applied.String(),
		}
	} else {
		c, ok := p.payments.Authorize(ctx, payable, req.Method)
		if !ok {
			lg.Warn("Payment declined", zap.Stringer("amount", payable))
			return nil, errors.Wrapf(domainerr.ErrPaymentDeclined, "%s payment of %s", req.Method, payable)
		}
		conf = c
	}

	if err := p.orders.Save(ctx, o); err != nil {
		return nil, domainerr.Persistence(err, "save order")
	}
	saved = true
	lg = lg.With(zap.Int64("order_id", o.ID))

	p.recordPayment(ctx, lg, o.ID, conf)
	points := p.award(ctx, lg, req.Student, payable)

	lg.Info("Order placed",
		zap.Stringer("gross", gross),
		zap.Stringer("discount", applied),
		zap.Stringer("payable", payable),
		zap.Int("points_awarded", points),
	)
	return &CheckoutResult{
		Order:          o,
		Gross:          gross,
		Discount:       applied,
		Payable:        payable,
		Confirmation:   conf,
		PointsAwarded:  points,
		PaymentSkipped: skipped,
	}, nil
}

// PlaceOrder records an order without payment and awards points on its gross
// total.
func (p *Processor) PlaceOrder(ctx context.Context, st *student.Student, selections []Selection) (_ *Order, rerr error) {
	ctx, span := p.tracer.Start(ctx, "order.PlaceOrder")
	defer func() { p.finish(ctx, span, rerr) }()

	o, gross, err := p.assemble(ctx, st, selections)
	if err != nil {
		return nil, err
	}
	if err := p.orders.Save(ctx, o); err != nil {
		return nil, domainerr.Persistence(err, "save order")
	}

	lg := zctx.From(ctx).With(zap.Int64("student_id", st.ID), zap.Int64("order_id", o.ID))
	points := p.award(ctx, lg, st, gross)
	lg.Info("Order placed without payment", zap.Stringer("gross", gross), zap.Int("points_awarded", points))
	return o, nil
}

// UpdateOrderStatus moves an order forward to status.
func (p *Processor) UpdateOrderStatus(ctx context.Context, id int64, status Status) error {
	ctx, span := p.tracer.Start(ctx, "order.UpdateOrderStatus",
		trace.WithAttributes(attribute.Int64("order.id", id), attribute.String("order.status", string(status))),
	)
	defer span.End()

	o, err := p.orders.FindByID(ctx, id)
	if err != nil {
		return p.lookupErr(err, "find order")
	}
	from := o.Status()
	if err := o.Advance(status); err != nil {
		return err
	}
	if from == status {
		return nil
	}
	if err := p.orders.Update(ctx, o); err != nil {
		return domainerr.Persistence(err, "update order status")
	}
	zctx.From(ctx).Info("Order status updated",
		zap.Int64("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	return nil
}

// GetOrder returns a single order.
func (p *Processor) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o, err := p.orders.FindByID(ctx, id)
	if err != nil {
		return nil, p.lookupErr(err, "find order")
	}
	return o, nil
}

// GetOrderHistory returns the student's orders.
func (p *Processor) GetOrderHistory(ctx context.Context, studentID int64) ([]*Order, error) {
	orders, err := p.orders.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, domainerr.Persistence(err, "find orders by student")
	}
	return orders, nil
}

// GetAllOrders returns every order.
func (p *Processor) GetAllOrders(ctx context.Context) ([]*Order, error) {
	orders, err := p.orders.FindAll(ctx)
	if err != nil {
		return nil, domainerr.Persistence(err, "find orders")
	}
	return orders, nil
}

// GetPendingOrders returns orders that are NEW or PREPARING.
func (p *Processor) GetPendingOrders(ctx context.Context) ([]*Order, error) {
	orders, err := p.orders.FindPending(ctx)
	if err != nil {
		return nil, domainerr.Persistence(err, "find pending orders")
	}
	return orders, nil
}

// GetOrdersByStatus returns orders currently in status.
func (p *Processor) GetOrdersByStatus(ctx context.Context, status Status) ([]*Order, error) {
	all, err := p.GetAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Order
	for _, o := range all {
		if o.Status() == status {
			out = append(out, o)
		}
	}
	return out, nil
}

// assemble validates the selections, resolves them against the menu in one
// fetch and builds an unsaved order.
func (p *Processor) assemble(ctx context.Context, st *student.Student, selections []Selection) (*Order, money.Money, error) {
	if st == nil {
		return nil, money.Money{}, domainerr.Invalid("student", "required")
	}
	if len(selections) == 0 {
		return nil, money.Money{}, ErrEmptySelections
	}
	for _, s := range selections {
		if s.Qty <= 0 {
			return nil, money.Money{}, &InvalidQuantityError{ItemID: s.ItemID}
		}
	}

	items, err := p.catalog.ListItems(ctx)
	if err != nil {
		return nil, money.Money{}, domainerr.Persistence(err, "list menu items")
	}
	byID := make(map[int64]*menu.MenuItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	// Verify every selection before building anything.
	resolved := make([]*menu.MenuItem, len(selections))
	for i, s := range selections {
		item, ok := byID[s.ItemID]
		if !ok {
			return nil, money.Money{}, &ItemNotFoundError{ItemID: s.ItemID}
		}
		resolved[i] = item
	}

	o := New(st.ID, p.now())
	for i, s := range selections {
		if err := o.AddItem(resolved[i], s.Qty); err != nil {
			return nil, money.Money{}, err
		}
	}
	gross, _ := o.Total()
	return o, gross, nil
}

func (p *Processor) recordPayment(ctx context.Context, lg *zap.Logger, orderID int64, c payment.Confirmation) {
	if p.records == nil {
		return
	}
	if err := p.records.Save(ctx, payment.NewRecord(orderID, c, p.now())); err != nil {
		lg.Error("Failed to record payment", zap.Error(err))
	}
}

func (p *Processor) award(ctx context.Context, lg *zap.Logger, st *student.Student, paid money.Money) int {
	points, err := p.ledger.Award(ctx, st, paid)
	if err != nil {
		lg.Error("Failed to award loyalty points", zap.Error(err), zap.Stringer("paid", paid))
		return 0
	}
	if points > 0 {
		p.pointsAwarded.Add(ctx, int64(points))
	}
	return points
}

func (p *Processor) lookupErr(err error, op string) error {
	if errors.Is(err, domainerr.ErrNotFound) {
		return err
	}
	return domainerr.Persistence(err, op)
}

func (p *Processor) finish(ctx context.Context, span trace.Span, err error) {
	outcome := "placed"
	switch {
	case err == nil:
	case errors.Is(err, domainerr.ErrPaymentDeclined):
		outcome = "declined"
	case errors.Is(err, domainerr.ErrValidation), errors.Is(err, domainerr.ErrNotFound):
		outcome = "rejected"
	default:
		outcome = "failed"
	}
	p.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
