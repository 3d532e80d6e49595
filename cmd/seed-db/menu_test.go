package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Homd11/CAFESYSTEM/db"
	"github.com/Homd11/CAFESYSTEM/internal/domain/menu"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
)

func TestParseMenu_Embedded(t *testing.T) {
	items, err := parseMenu(db.MenuSeed)
	require.NoError(t, err)
	require.Len(t, items, 11)

	assert.Equal(t, "Koshary", items[0].Name)
	assert.Equal(t, menu.CategoryMainCourse, items[0].Category)
	assert.True(t, items[0].Price.Equal(money.MustNew("25", money.EGP)))
}

func TestParseMenu_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "NotArray", data: `{"name":"Tea"}`},
		{name: "MissingName", data: `[{"price":"4.00","category":"DRINK"}]`},
		{name: "BadCategory", data: `[{"name":"Tea","price":"4.00","category":"HOT"}]`},
		{name: "BadPrice", data: `[{"name":"Tea","price":"four","category":"DRINK"}]`},
		{name: "ZeroPrice", data: `[{"name":"Tea","price":"0","category":"DRINK"}]`},
		{name: "NumericPrice", data: `[{"name":"Tea","price":4,"category":"DRINK"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMenu([]byte(tt.data))
			require.Error(t, err)
		})
	}
}
