package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
	"github.com/Homd11/CAFESYSTEM/internal/domain/payment"
)

const (
	insertPaymentSQL = `INSERT INTO payments
		(order_id, method, amount, currency, transaction_id, authorization_code, successful, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	listPaymentsByOrderSQL = `SELECT id, order_id, method, amount, currency, transaction_id,
		authorization_code, successful, created_at
		FROM payments WHERE order_id = $1 ORDER BY id DESC`
)

var _ payment.Repository = (*PaymentRepository)(nil)

// PaymentRepository implements payment.Repository backed by PostgreSQL.
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository returns a PaymentRepository that uses the given connection.
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Save inserts the payment record and assigns p.ID.
func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	err := r.db.QueryRow(ctx, insertPaymentSQL,
		p.OrderID, string(p.Method), p.Amount.Amount(), string(p.Amount.Currency()),
		p.TransactionID, p.AuthorizationCode, p.Successful, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("saving payment for order %d: %w", p.OrderID, err)
	}
	return nil
}

// FindByOrder returns the payments of an order, newest first.
func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID int64) ([]payment.Payment, error) {
	rows, err := r.db.Query(ctx, listPaymentsByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing payments of order %d: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanPayment)
}

func scanPayment(row pgx.CollectableRow) (payment.Payment, error) {
	var (
		p        payment.Payment
		method   string
		amount   decimal.Decimal
		currency string
	)
	err := row.Scan(&p.ID, &p.OrderID, &method, &amount, &currency,
		&p.TransactionID, &p.AuthorizationCode, &p.Successful, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	p.Method = payment.Tag(method)
	if p.Amount, err = money.New(amount, money.Currency(currency)); err != nil {
		return p, fmt.Errorf("payment %d amount: %w", p.ID, err)
	}
	return p, nil
}
