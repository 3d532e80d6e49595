package main

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/Homd11/CAFESYSTEM/internal/domain/menu"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
)

var categories = map[menu.Category]struct{}{
	menu.CategoryMainCourse: {},
	menu.CategoryDrink:      {},
	menu.CategorySnack:      {},
	menu.CategoryDessert:    {},
}

// parseMenu decodes a JSON array of menu items. Prices are decimal strings;
// currency defaults to EGP.
func parseMenu(data []byte) ([]menu.MenuItem, error) {
	var items []menu.MenuItem
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var (
			item     menu.MenuItem
			price    string
			currency = money.EGP
		)
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				item.Name, err = d.Str()
			case "description":
				item.Description, err = d.Str()
			case "price":
				price, err = d.Str()
			case "currency":
				var s string
				s, err = d.Str()
				currency = money.Currency(s)
			case "category":
				var s string
				s, err = d.Str()
				item.Category = menu.Category(s)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}

		if item.Name == "" {
			return errors.Errorf("item %d: name is required", len(items))
		}
		if _, ok := categories[item.Category]; !ok {
			return errors.Errorf("item %q: unknown category %q", item.Name, item.Category)
		}
		amount, err := decimal.NewFromString(price)
		if err != nil {
			return errors.Wrapf(err, "item %q: price", item.Name)
		}
		if !amount.IsPositive() {
			return errors.Errorf("item %q: price must be positive", item.Name)
		}
		if item.Price, err = money.New(amount, currency); err != nil {
			return errors.Wrapf(err, "item %q", item.Name)
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
