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

	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
	"github.com/Homd11/CAFESYSTEM/internal/domain/payment"
)

func TestPaymentRepository_Save(t *testing.T) {
	mock := newMock(t)
	repo := NewPaymentRepository(mock)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	p := payment.NewRecord(21, payment.Confirmation{
		Method:        payment.TagVisa,
		Amount:        money.MustNew("19.50", money.EGP),
		TransactionID: "VISA-abc",
	}, now)

	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(int64(21), "VISA", pgxmock.AnyArg(), "EGP", "VISA-abc", "", true, now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(4)))
	require.NoError(t, repo.Save(context.Background(), p))
	assert.Equal(t, int64(4), p.ID)

	mock.ExpectQuery("INSERT INTO payments").WillReturnError(errors.New("fk violation"))
	err := repo.Save(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving payment for order 21")
}

func TestPaymentRepository_FindByOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewPaymentRepository(mock)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM payments WHERE order_id").WithArgs(int64(21)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "order_id", "method", "amount", "currency", "transaction_id",
			"authorization_code", "successful", "created_at",
		}).AddRow(int64(4), int64(21), "MASTERCARD", decimal.RequireFromString("19.50"), "EGP", "", "MCAB12CD", true, now))

	payments, err := repo.FindByOrder(context.Background(), 21)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, payment.TagMasterCard, payments[0].Method)
	assert.Equal(t, "19.50 EGP", payments[0].Amount.String())
	assert.Equal(t, "MCAB12CD", payments[0].AuthorizationCode)
	assert.True(t, payments[0].Successful)
}
