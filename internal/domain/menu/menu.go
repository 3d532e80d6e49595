// Package menu holds the read-only view of the cafeteria catalog.
package menu

import (
	"context"

	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
)

// Category groups menu items for display.
type Category string

const (
	CategoryMainCourse Category = "MAIN_COURSE"
	CategoryDrink      Category = "DRINK"
	CategorySnack      Category = "SNACK"
	CategoryDessert    Category = "DESSERT"
)

// MenuItem is a catalog entry. The catalog owns it; checkout code only reads
// snapshots of it.
type MenuItem struct {
	ID          int64
	Name        string
	Description string
	Price       money.Money
	Category    Category
}

// Catalog lists the items currently on sale.
type Catalog interface {
	ListItems(ctx context.Context) ([]MenuItem, error)
}
