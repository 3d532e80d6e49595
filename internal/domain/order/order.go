package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/menu"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
)

// Status is the preparation state of an order.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
)

// ParseStatus validates s as a known status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st.rank() < 0 {
		return "", domainerr.Invalid("status", fmt.Sprintf("unknown status %q", s))
	}
	return st, nil
}

func (s Status) rank() int {
	switch s {
	case StatusNew:
		return 0
	case StatusPreparing:
		return 1
	case StatusReady:
		return 2
	default:
		return -1
	}
}

// Pending reports whether the order still awaits pickup preparation.
func (s Status) Pending() bool {
	return s == StatusNew || s == StatusPreparing
}

// ErrInvalidTransition is returned when a status change would move an order
// backwards.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError describes a rejected status change.
type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() []error {
	return []error{ErrInvalidTransition, domainerr.ErrValidation}
}

// Item is a frozen order line. Name and price are copied from the menu at
// selection time so later catalog edits never change past orders.
type Item struct {
	MenuItemID   int64
	NameSnapshot string
	UnitPrice    money.Money
	Qty          int
}

// LineTotal returns UnitPrice * Qty.
func (i Item) LineTotal() money.Money {
	// Qty is positive for every item accepted by AddItem or Restore.
	total, _ := i.UnitPrice.Mul(i.Qty)
	return total
}

// Order is a student's checkout. Items can only be appended; after
// persistence only the status changes.
type Order struct {
	ID        int64
	StudentID int64
	CreatedAt time.Time

	status Status
	items  []Item
}

// New returns an empty order in status NEW.
func New(studentID int64, createdAt time.Time) *Order {
	return &Order{StudentID: studentID, CreatedAt: createdAt, status: StatusNew}
}

// Restore rebuilds a persisted order.
func Restore(id, studentID int64, status Status, createdAt time.Time, items []Item) (*Order, error) {
	if status.rank() < 0 {
		return nil, domainerr.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	o := &Order{ID: id, StudentID: studentID, CreatedAt: createdAt, status: status}
	for _, it := range items {
		if err := o.append(it); err != nil {
			return nil, errors.Wrapf(err, "restore order %d", id)
		}
	}
	return o, nil
}

// AddItem appends a snapshot of item with the given quantity.
func (o *Order) AddItem(item *menu.MenuItem, qty int) error {
	if item == nil {
		return domainerr.Invalid("item", "required")
	}
	return o.append(Item{
		MenuItemID:   item.ID,
		NameSnapshot: item.Name,
		UnitPrice:    item.Price,
		Qty:          qty,
	})
}

func (o *Order) append(it Item) error {
	if it.Qty <= 0 {
		return &InvalidQuantityError{ItemID: it.MenuItemID}
	}
	if len(o.items) > 0 && o.items[0].UnitPrice.Currency() != it.UnitPrice.Currency() {
		return errors.Wrapf(money.ErrCurrencyMismatch, "item %d priced in %s, order in %s",
			it.MenuItemID, it.UnitPrice.Currency(), o.items[0].UnitPrice.Currency())
	}
	o.items = append(o.items, it)
	return nil
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Status returns the current status.
func (o *Order) Status() Status { return o.status }

// Total sums all line totals. The boolean is false for an order without
// items: no charge has been computed, which differs from a charge of zero.
func (o *Order) Total() (money.Money, bool) {
	if len(o.items) == 0 {
		return money.Money{}, false
	}
	total := money.Zero(o.items[0].UnitPrice.Currency())
	for _, it := range o.items {
		// Currencies were checked on append.
		total, _ = total.Add(it.LineTotal())
	}
	return total, true
}

// Advance moves the order to status. Moving to the current status is a
// no-op; moving backwards fails.
func (o *Order) Advance(status Status) error {
	if status.rank() < 0 {
		return domainerr.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	if status.rank() < o.status.rank() {
		return &TransitionError{From: o.status, To: status}
	}
	o.status = status
	return nil
}

// MarkPreparing advances the order to PREPARING.
func (o *Order) MarkPreparing() error { return o.Advance(StatusPreparing) }

// MarkReady advances the order to READY.
func (o *Order) MarkReady() error { return o.Advance(StatusReady) }

// Selection is a menu item and quantity chosen at checkout.
type Selection struct {
	ItemID int64
	Qty    int
}

// ErrEmptySelections is returned when a checkout has no selections.
var ErrEmptySelections = &domainerr.ValidationError{Field: "selections", Reason: "at least one item required"}

// InvalidQuantityError indicates a selection with a non-positive quantity.
type InvalidQuantityError struct {
	ItemID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for menu item %d", e.ItemID)
}

func (e *InvalidQuantityError) Unwrap() error { return domainerr.ErrValidation }

// ItemNotFoundError indicates a selection referencing an unknown menu item.
type ItemNotFoundError struct {
	ItemID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %d not found", e.ItemID)
}

func (e *ItemNotFoundError) Unwrap() error { return domainerr.ErrNotFound }

// NotFoundError indicates an unknown order.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return domainerr.ErrNotFound }

// Repository persists orders. Save assigns the order ID; FindByID returns a
// *NotFoundError for unknown IDs.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindAll(ctx context.Context) ([]*Order, error)
	FindPending(ctx context.Context) ([]*Order, error)
	FindByStudent(ctx context.Context, studentID int64) ([]*Order, error)
}
