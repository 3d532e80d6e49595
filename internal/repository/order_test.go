package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/menu"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
	"github.com/Homd11/CAFESYSTEM/internal/domain/order"
)

var (
	orderColumns     = []string{"id", "student_id", "status", "created_at"}
	orderItemColumns = []string{"order_id", "menu_item_id", "name_snapshot", "unit_price", "currency", "quantity"}
	orderCreatedAt   = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
)

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	o := order.New(5, orderCreatedAt)
	require.NoError(t, o.AddItem(&menu.MenuItem{ID: 2, Name: "Tea", Price: money.MustNew("4.00", money.EGP)}, 2))
	require.NoError(t, o.AddItem(&menu.MenuItem{ID: 3, Name: "Chips", Price: money.MustNew("5.00", money.EGP)}, 1))
	return o
}

func TestOrderRepository_Save(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	o := newTestOrder(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WithArgs(int64(5), "NEW", orderCreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(21), int64(2), "Tea", pgxmock.AnyArg(), "EGP", 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(21), int64(3), "Chips", pgxmock.AnyArg(), "EGP", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), o))
	assert.Equal(t, int64(21), o.ID)
}

func TestOrderRepository_SaveItemFailureRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	o := newTestOrder(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting item 2")
	assert.Zero(t, o.ID, "id is assigned only after commit")
}

func TestOrderRepository_FindByID(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery("SELECT id, student_id, status, created_at FROM orders").WithArgs(int64(21)).
		WillReturnRows(pgxmock.NewRows(orderColumns).AddRow(int64(21), int64(5), "PREPARING", orderCreatedAt))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{21}).
		WillReturnRows(pgxmock.NewRows(orderItemColumns).
			AddRow(int64(21), int64(2), "Tea", decimal.RequireFromString("4.00"), "EGP", 2).
			AddRow(int64(21), int64(3), "Chips", decimal.RequireFromString("5.00"), "EGP", 1))

	o, err := repo.FindByID(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPreparing, o.Status())
	assert.Equal(t, int64(5), o.StudentID)
	assert.Equal(t, orderCreatedAt, o.CreatedAt)
	total, ok := o.Total()
	require.True(t, ok)
	assert.Equal(t, "13.00 EGP", total.String())
}

func TestOrderRepository_FindByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery("FROM orders").WithArgs(int64(8)).WillReturnRows(pgxmock.NewRows(orderColumns))

	_, err := repo.FindByID(context.Background(), 8)
	var nf *order.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.ErrorIs(t, err, domainerr.ErrNotFound)
}

func TestOrderRepository_FindPending(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery("WHERE status IN").
		WillReturnRows(pgxmock.NewRows(orderColumns).
			AddRow(int64(1), int64(5), "NEW", orderCreatedAt).
			AddRow(int64(2), int64(6), "PREPARING", orderCreatedAt.Add(time.Minute)))
	mock.ExpectQuery("FROM order_items").WithArgs([]int64{1, 2}).
		WillReturnRows(pgxmock.NewRows(orderItemColumns).
			AddRow(int64(1), int64(2), "Tea", decimal.RequireFromString("4.00"), "EGP", 1).
			AddRow(int64(2), int64(1), "Koshary", decimal.RequireFromString("25.00"), "EGP", 1))

	orders, err := repo.FindPending(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(1), orders[0].ID)
	assert.Len(t, orders[0].Items(), 1)
	assert.Equal(t, "Koshary", orders[1].Items()[0].NameSnapshot)
}

func TestOrderRepository_FindByStudentEmpty(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery("WHERE student_id =").WithArgs(int64(5)).WillReturnRows(pgxmock.NewRows(orderColumns))

	orders, err := repo.FindByStudent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepository_FindAllErrors(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery("FROM orders ORDER BY").WillReturnError(errors.New("gone"))
	_, err := repo.FindAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing orders")

	mock.ExpectQuery("FROM orders ORDER BY").
		WillReturnRows(pgxmock.NewRows(orderColumns).AddRow(int64(1), int64(5), "SHIPPED", orderCreatedAt))
	mock.ExpectQuery("FROM order_items").WithArgs([]int64{1}).WillReturnRows(pgxmock.NewRows(orderItemColumns))
	_, err = repo.FindAll(context.Background())
	assert.ErrorIs(t, err, domainerr.ErrValidation)
}

func TestOrderRepository_Update(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	o, err := order.Restore(21, 5, order.StatusReady, orderCreatedAt, nil)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE orders SET status").WithArgs(int64(21), "READY").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Update(context.Background(), o))

	mock.ExpectExec("UPDATE orders SET status").WithArgs(int64(21), "READY").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	var nf *order.NotFoundError
	require.ErrorAs(t, repo.Update(context.Background(), o), &nf)
}
