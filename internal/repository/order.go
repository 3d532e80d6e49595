package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
	"github.com/Homd11/CAFESYSTEM/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (student_id, status, created_at)
		VALUES ($1, $2, $3) RETURNING id`

	insertOrderItemSQL = `INSERT INTO order_items
		(order_id, menu_item_id, name_snapshot, unit_price, currency, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	selectOrderSQL = `SELECT id, student_id, status, created_at FROM orders`

	getOrderByIDSQL       = selectOrderSQL + ` WHERE id = $1`
	listOrdersSQL         = selectOrderSQL + ` ORDER BY created_at DESC, id DESC`
	listPendingOrdersSQL  = selectOrderSQL + ` WHERE status IN ('NEW', 'PREPARING') ORDER BY created_at, id`
	listStudentOrdersSQL  = selectOrderSQL + ` WHERE student_id = $1 ORDER BY created_at DESC, id DESC`
	listOrderItemsByIDSQL = `SELECT order_id, menu_item_id, name_snapshot, unit_price, currency, quantity
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	db DB
}

// NewOrderRepository returns an OrderRepository that uses the given connection.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save inserts the order and its items in one transaction and assigns o.ID.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	var id int64
	err := withinTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertOrderSQL, o.StudentID, string(o.Status()), o.CreatedAt).Scan(&id); err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}
		for _, it := range o.Items() {
			_, err := tx.Exec(ctx, insertOrderItemSQL,
				id, it.MenuItemID, it.NameSnapshot, it.UnitPrice.Amount(), string(it.UnitPrice.Currency()), it.Qty,
			)
			if err != nil {
				return fmt.Errorf("inserting item %d: %w", it.MenuItemID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving order for student %d: %w", o.StudentID, err)
	}
	o.ID = id
	return nil
}

// Update persists the order status.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := r.db.Exec(ctx, updateOrderStatusSQL, o.ID, string(o.Status()))
	if err != nil {
		return fmt.Errorf("updating order %d: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &order.NotFoundError{ID: o.ID}
	}
	return nil
}

// FindByID returns the order with its items.
func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	orders, err := r.list(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	if len(orders) == 0 {
		return nil, &order.NotFoundError{ID: id}
	}
	return orders[0], nil
}

// FindAll returns every order, newest first.
func (r *OrderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	orders, err := r.list(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// FindPending returns NEW and PREPARING orders, oldest first.
func (r *OrderRepository) FindPending(ctx context.Context) ([]*order.Order, error) {
	orders, err := r.list(ctx, listPendingOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing pending orders: %w", err)
	}
	return orders, nil
}

// FindByStudent returns the student's orders, newest first.
func (r *OrderRepository) FindByStudent(ctx context.Context, studentID int64) ([]*order.Order, error) {
	orders, err := r.list(ctx, listStudentOrdersSQL, studentID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of student %d: %w", studentID, err)
	}
	return orders, nil
}

type orderRow struct {
	id        int64
	studentID int64
	status    string
	createdAt time.Time
}

// list loads order headers with sql and then all their items in a single
// query.
func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]*order.Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	headers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (orderRow, error) {
		var h orderRow
		err := row.Scan(&h.id, &h.studentID, &h.status, &h.createdAt)
		return h, err
	})
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(headers))
	for i, h := range headers {
		ids[i] = h.id
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(headers))
	for _, h := range headers {
		o, err := order.Restore(h.id, h.studentID, order.Status(h.status), h.createdAt, items[h.id])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *OrderRepository) items(ctx context.Context, orderIDs []int64) (map[int64][]order.Item, error) {
	rows, err := r.db.Query(ctx, listOrderItemsByIDSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[int64][]order.Item, len(orderIDs))
	for rows.Next() {
		var (
			orderID  int64
			it       order.Item
			price    decimal.Decimal
			currency string
		)
		if err := rows.Scan(&orderID, &it.MenuItemID, &it.NameSnapshot, &price, &currency, &it.Qty); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		if it.UnitPrice, err = money.New(price, money.Currency(currency)); err != nil {
			return nil, fmt.Errorf("order %d item %d price: %w", orderID, it.MenuItemID, err)
		}
		byOrder[orderID] = append(byOrder[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	return byOrder, nil
}
