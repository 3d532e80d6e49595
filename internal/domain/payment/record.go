package payment

import (
	"context"
	"time"

	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
)

// Payment is the audit record of a charge made for an order.
type Payment struct {
	ID                int64
	OrderID           int64
	Method            Tag
	Amount            money.Money
	TransactionID     string
	AuthorizationCode string
	Successful        bool
	CreatedAt         time.Time
}

// NewRecord builds a successful payment record for orderID from c.
func NewRecord(orderID int64, c Confirmation, now time.Time) *Payment {
	return &Payment{
		OrderID:           orderID,
		Method:            c.Method,
		Amount:            c.Amount,
		TransactionID:     c.TransactionID,
		AuthorizationCode: c.AuthorizationCode,
		Successful:        true,
		CreatedAt:         now,
	}
}

// Repository stores payment records.
type Repository interface {
	Save(ctx context.Context, p *Payment) error
	FindByOrder(ctx context.Context, orderID int64) ([]Payment, error)
}
