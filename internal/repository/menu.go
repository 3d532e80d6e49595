package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Homd11/CAFESYSTEM/internal/domain/menu"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
)

const (
	listMenuItemsSQL = `SELECT id, name, description, price, currency, category
		FROM menu_items ORDER BY category, id`

	upsertMenuItemSQL = `INSERT INTO menu_items (name, description, price, currency, category)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			category = EXCLUDED.category
		RETURNING id`
)

var _ menu.Catalog = (*MenuRepository)(nil)

// MenuRepository implements menu.Catalog backed by PostgreSQL.
type MenuRepository struct {
	db DB
}

// NewMenuRepository returns a MenuRepository that uses the given connection.
func NewMenuRepository(db DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// ListItems returns the full menu grouped by category.
func (r *MenuRepository) ListItems(ctx context.Context) ([]menu.MenuItem, error) {
	rows, err := r.db.Query(ctx, listMenuItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// Upsert inserts item or updates the existing item with the same name, and
// sets item.ID.
func (r *MenuRepository) Upsert(ctx context.Context, item *menu.MenuItem) error {
	err := r.db.QueryRow(ctx, upsertMenuItemSQL,
		item.Name, item.Description, item.Price.Amount(), string(item.Price.Currency()), string(item.Category),
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("upserting menu item %q: %w", item.Name, err)
	}
	return nil
}

func scanMenuItem(row pgx.CollectableRow) (menu.MenuItem, error) {
	var (
		item     menu.MenuItem
		price    decimal.Decimal
		currency string
		category string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &price, &currency, &category); err != nil {
		return item, err
	}
	p, err := money.New(price, money.Currency(currency))
	if err != nil {
		return item, fmt.Errorf("menu item %d price: %w", item.ID, err)
	}
	item.Price = p
	item.Category = menu.Category(category)
	return item, nil
}
