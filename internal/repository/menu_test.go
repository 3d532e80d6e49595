package repository

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Homd11/CAFESYSTEM/internal/domain/menu"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
)

var menuColumns = []string{"id", "name", "description", "price", "currency", "category"}

func TestMenuRepository_ListItems(t *testing.T) {
	mock := newMock(t)
	repo := NewMenuRepository(mock)

	mock.ExpectQuery("SELECT id, name, description, price, currency, category FROM menu_items").
		WillReturnRows(pgxmock.NewRows(menuColumns).
			AddRow(int64(1), "Koshary", "Rice and lentils", decimal.RequireFromString("25.00"), "EGP", "MAIN_COURSE").
			AddRow(int64(2), "Tea", "", decimal.RequireFromString("4.00"), "EGP", "DRINK"))

	items, err := repo.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Koshary", items[0].Name)
	assert.Equal(t, menu.CategoryMainCourse, items[0].Category)
	assert.Equal(t, "25.00 EGP", items[0].Price.String())
	assert.Equal(t, menu.CategoryDrink, items[1].Category)
}

func TestMenuRepository_ListItemsErrors(t *testing.T) {
	mock := newMock(t)
	repo := NewMenuRepository(mock)

	mock.ExpectQuery("FROM menu_items").WillReturnError(errors.New("connection refused"))
	_, err := repo.ListItems(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing menu items")

	mock.ExpectQuery("FROM menu_items").
		WillReturnRows(pgxmock.NewRows(menuColumns).
			AddRow(int64(3), "Broken", "", decimal.RequireFromString("-1"), "EGP", "SNACK"))
	_, err = repo.ListItems(context.Background())
	assert.ErrorIs(t, err, money.ErrNegativeResult)
}

func TestMenuRepository_Upsert(t *testing.T) {
	mock := newMock(t)
	repo := NewMenuRepository(mock)

	item := &menu.MenuItem{
		Name:     "Basbousa",
		Price:    money.MustNew("8.00", money.EGP),
		Category: menu.CategoryDessert,
	}
	mock.ExpectQuery("INSERT INTO menu_items").
		WithArgs("Basbousa", "", pgxmock.AnyArg(), "EGP", "DESSERT").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	require.NoError(t, repo.Upsert(context.Background(), item))
	assert.Equal(t, int64(11), item.ID)
}
